package store

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(ctx context.Context, uri, dbName string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	log.Println("Connected to MongoDB")
	return &DB{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

func (db *DB) Users() *mongo.Collection {
	return db.Database.Collection("users")
}

func (db *DB) Categories() *mongo.Collection {
	return db.Database.Collection("categories")
}

func (db *DB) Genres() *mongo.Collection {
	return db.Database.Collection("genres")
}

func (db *DB) Titles() *mongo.Collection {
	return db.Database.Collection("titles")
}

func (db *DB) Reviews() *mongo.Collection {
	return db.Database.Collection("reviews")
}

func (db *DB) Comments() *mongo.Collection {
	return db.Database.Collection("comments")
}

// EnsureIndexes creates the indexes the service relies on. The compound
// unique index on (titleId, authorId) is what makes review creation safe
// under concurrency: two inserts for the same pair cannot both succeed.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	_, err := db.Users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return err
	}
	for _, col := range []*mongo.Collection{db.Categories(), db.Genres()} {
		_, err = col.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: unique,
		})
		if err != nil {
			return err
		}
	}
	_, err = db.Reviews().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "titleId", Value: 1}, {Key: "authorId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("onereviewpertitle"),
		},
		{Keys: bson.D{{Key: "titleId", Value: 1}, {Key: "pubDate", Value: -1}}},
	})
	if err != nil {
		return err
	}
	_, err = db.Comments().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "reviewId", Value: 1}, {Key: "pubDate", Value: -1}},
	})
	return err
}

func (db *DB) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.Client.Disconnect(ctx)
}
