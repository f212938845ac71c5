package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// TitleRating computes the live average review score for a title. Nil means
// the title has no reviews. The value is derived on every read and never
// persisted, so it cannot go stale after concurrent review writes.
func (db *DB) TitleRating(ctx context.Context, titleID primitive.ObjectID) (*float64, error) {
	ratings, err := db.TitleRatings(ctx, []primitive.ObjectID{titleID})
	if err != nil {
		return nil, err
	}
	return ratings[titleID], nil
}

// TitleRatings is the batch variant for list endpoints. Titles with no
// reviews are absent from the result map.
func (db *DB) TitleRatings(ctx context.Context, titleIDs []primitive.ObjectID) (map[primitive.ObjectID]*float64, error) {
	ratings := make(map[primitive.ObjectID]*float64, len(titleIDs))
	if len(titleIDs) == 0 {
		return ratings, nil
	}
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"titleId": bson.M{"$in": titleIDs}}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":    "$titleId",
			"rating": bson.M{"$avg": "$score"},
		}}},
	}
	cur, err := db.Reviews().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rows []struct {
		TitleID primitive.ObjectID `bson:"_id"`
		Rating  float64            `bson:"rating"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		rating := row.Rating
		ratings[row.TitleID] = &rating
	}
	return ratings, nil
}
