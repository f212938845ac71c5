package store

import (
	"context"
	"errors"

	"github.com/mishastik78/yamdb-final/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateReview reports a violation of the onereviewpertitle unique
// index: the author already reviewed this title.
var ErrDuplicateReview = errors.New("duplicate review for title and author")

// InsertReview relies on the unique (titleId, authorId) index rather than a
// check-then-insert, so the race between two concurrent creates for the same
// pair resolves inside the database.
func (db *DB) InsertReview(ctx context.Context, review *models.Review) (primitive.ObjectID, error) {
	res, err := db.Reviews().InsertOne(ctx, review)
	if mongo.IsDuplicateKeyError(err) {
		return primitive.NilObjectID, ErrDuplicateReview
	}
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) ReviewByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var review models.Review
	err := db.Reviews().FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (db *DB) ListReviews(ctx context.Context, titleID primitive.ObjectID) ([]models.Review, error) {
	cur, err := db.Reviews().Find(ctx, bson.M{"titleId": titleID},
		options.Find().SetSort(bson.M{"pubDate": -1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var reviews []models.Review
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// UpdateReview changes text and/or score. Title and author are
// server-controlled and never updated here.
func (db *DB) UpdateReview(ctx context.Context, id primitive.ObjectID, text *string, score *int) error {
	updates := bson.M{}
	if text != nil {
		updates["text"] = *text
	}
	if score != nil {
		updates["score"] = *score
	}
	if len(updates) == 0 {
		return nil
	}
	_, err := db.Reviews().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	return err
}

// DeleteReview removes the review and cascades to its comments.
func (db *DB) DeleteReview(ctx context.Context, id primitive.ObjectID) error {
	if _, err := db.Comments().DeleteMany(ctx, bson.M{"reviewId": id}); err != nil {
		return err
	}
	_, err := db.Reviews().DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (db *DB) InsertComment(ctx context.Context, comment *models.Comment) (primitive.ObjectID, error) {
	res, err := db.Comments().InsertOne(ctx, comment)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) CommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	err := db.Comments().FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (db *DB) ListComments(ctx context.Context, reviewID primitive.ObjectID) ([]models.Comment, error) {
	cur, err := db.Comments().Find(ctx, bson.M{"reviewId": reviewID},
		options.Find().SetSort(bson.M{"pubDate": -1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var comments []models.Comment
	if err := cur.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (db *DB) UpdateComment(ctx context.Context, id primitive.ObjectID, text string) error {
	_, err := db.Comments().UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"text": text}})
	return err
}

func (db *DB) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	_, err := db.Comments().DeleteOne(ctx, bson.M{"_id": id})
	return err
}
