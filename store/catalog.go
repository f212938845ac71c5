package store

import (
	"context"

	"github.com/mishastik78/yamdb-final/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Taxonomy is the shared persistence surface for the named-slug collections.
// Categories and genres differ only in which collection they live in and how
// titles let go of a deleted entry, so both are instances of this type.
type Taxonomy struct {
	col    *mongo.Collection
	unlink func(ctx context.Context, id primitive.ObjectID) error
}

func (db *DB) CategoryStore() *Taxonomy {
	return &Taxonomy{
		col: db.Categories(),
		unlink: func(ctx context.Context, id primitive.ObjectID) error {
			_, err := db.Titles().UpdateMany(ctx, bson.M{"categoryId": id},
				bson.M{"$unset": bson.M{"categoryId": ""}})
			return err
		},
	}
}

func (db *DB) GenreStore() *Taxonomy {
	return &Taxonomy{
		col: db.Genres(),
		unlink: func(ctx context.Context, id primitive.ObjectID) error {
			_, err := db.Titles().UpdateMany(ctx, bson.M{"genreIds": id},
				bson.M{"$pull": bson.M{"genreIds": id}})
			return err
		},
	}
}

func (t *Taxonomy) Insert(ctx context.Context, name, slug string) (*models.NamedSlug, error) {
	item := &models.NamedSlug{Name: name, Slug: slug}
	res, err := t.col.InsertOne(ctx, item)
	if err != nil {
		return nil, err
	}
	item.ID = res.InsertedID.(primitive.ObjectID)
	return item, nil
}

// List returns all entries, newest-first. A non-empty search filters by exact
// name match.
func (t *Taxonomy) List(ctx context.Context, search string) ([]models.NamedSlug, error) {
	filter := bson.M{}
	if search != "" {
		filter["name"] = search
	}
	cur, err := t.col.Find(ctx, filter, options.Find().SetSort(bson.M{"_id": -1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var items []models.NamedSlug
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (t *Taxonomy) BySlug(ctx context.Context, slug string) (*models.NamedSlug, error) {
	var item models.NamedSlug
	err := t.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&item)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (t *Taxonomy) ByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.NamedSlug, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := t.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var items []models.NamedSlug
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteBySlug detaches the entry from any titles referencing it, then
// removes it. Unlink runs first so a failure cannot leave titles pointing at
// a deleted id. Returns false when no entry has that slug.
func (t *Taxonomy) DeleteBySlug(ctx context.Context, slug string) (bool, error) {
	var item models.NamedSlug
	err := t.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&item)
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := t.unlink(ctx, item.ID); err != nil {
		return false, err
	}
	_, err = t.col.DeleteOne(ctx, bson.M{"_id": item.ID})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (db *DB) InsertTitle(ctx context.Context, title *models.Title) (primitive.ObjectID, error) {
	res, err := db.Titles().InsertOne(ctx, title)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) TitleByID(ctx context.Context, id primitive.ObjectID) (*models.Title, error) {
	var title models.Title
	err := db.Titles().FindOne(ctx, bson.M{"_id": id}).Decode(&title)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &title, nil
}

func (db *DB) ListTitles(ctx context.Context) ([]models.Title, error) {
	cur, err := db.Titles().Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"_id": -1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var titles []models.Title
	if err := cur.All(ctx, &titles); err != nil {
		return nil, err
	}
	return titles, nil
}

// TitleFields holds the client-writable title fields for a partial update.
type TitleFields struct {
	Name        *string
	Year        *int
	Description *string
	CategoryID  *primitive.ObjectID
	GenreIDs    *[]primitive.ObjectID
}

func (db *DB) UpdateTitle(ctx context.Context, id primitive.ObjectID, fields TitleFields) error {
	updates := bson.M{}
	if fields.Name != nil {
		updates["name"] = *fields.Name
	}
	if fields.Year != nil {
		updates["year"] = *fields.Year
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.CategoryID != nil {
		updates["categoryId"] = *fields.CategoryID
	}
	if fields.GenreIDs != nil {
		updates["genreIds"] = *fields.GenreIDs
	}
	if len(updates) == 0 {
		return nil
	}
	_, err := db.Titles().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	return err
}

// DeleteTitle removes the title and cascades to its reviews and their
// comments. Returns false when the title does not exist.
func (db *DB) DeleteTitle(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := db.Titles().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	if res.DeletedCount == 0 {
		return false, nil
	}

	cur, err := db.Reviews().Find(ctx, bson.M{"titleId": id},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return true, err
	}
	defer cur.Close(ctx)
	var refs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &refs); err != nil {
		return true, err
	}
	if len(refs) > 0 {
		ids := make([]primitive.ObjectID, len(refs))
		for i, r := range refs {
			ids[i] = r.ID
		}
		if _, err := db.Comments().DeleteMany(ctx, bson.M{"reviewId": bson.M{"$in": ids}}); err != nil {
			return true, err
		}
	}
	_, err = db.Reviews().DeleteMany(ctx, bson.M{"titleId": id})
	return true, err
}
