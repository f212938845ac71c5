package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NamedSlug is the shared shape of the two taxonomy resources. Categories and
// genres behave identically, so both are instantiations of this one type.
type NamedSlug struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Name string             `bson:"name" json:"name"`
	Slug string             `bson:"slug" json:"slug"`
}

type (
	Category = NamedSlug
	Genre    = NamedSlug
)

type Title struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Year        *int                 `bson:"year,omitempty" json:"year,omitempty"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	CategoryID  *primitive.ObjectID  `bson:"categoryId,omitempty" json:"-"`
	GenreIDs    []primitive.ObjectID `bson:"genreIds,omitempty" json:"-"`
	CreatedAt   time.Time            `bson:"createdAt" json:"-"`
}
