package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review score bounds. One review per (title, author) pair; the store enforces
// the pair uniqueness with a unique index so concurrent creates cannot both
// succeed.
const (
	ScoreMin = 1
	ScoreMax = 10
)

type Review struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TitleID  primitive.ObjectID `bson:"titleId" json:"-"`
	AuthorID primitive.ObjectID `bson:"authorId" json:"-"`
	Text     string             `bson:"text" json:"text"`
	Score    int                `bson:"score" json:"score"`
	PubDate  time.Time          `bson:"pubDate" json:"pub_date"`
}

type Comment struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReviewID primitive.ObjectID `bson:"reviewId" json:"-"`
	AuthorID primitive.ObjectID `bson:"authorId" json:"-"`
	Text     string             `bson:"text" json:"text"`
	PubDate  time.Time          `bson:"pubDate" json:"pub_date"`
}
