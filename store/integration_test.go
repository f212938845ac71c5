//go:build integration
// +build integration

package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mishastik78/yamdb-final/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// setupTestDB starts a MongoDB container and returns a connected store with
// all indexes in place.
func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("Failed to start MongoDB container: %v", err)
	}
	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	db, err := NewMongoDB(ctx, uri, "yamdb_test")
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	if err := db.EnsureIndexes(ctx); err != nil {
		t.Fatalf("Failed to create indexes: %v", err)
	}

	cleanup := func() {
		if err := db.Disconnect(ctx); err != nil {
			t.Logf("Failed to disconnect: %v", err)
		}
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}
	return db, cleanup
}

func insertTitle(t *testing.T, db *DB, name string) primitive.ObjectID {
	t.Helper()
	id, err := db.InsertTitle(context.Background(), &models.Title{Name: name, CreatedAt: time.Now()})
	require.NoError(t, err)
	return id
}

func insertReview(t *testing.T, db *DB, titleID, authorID primitive.ObjectID, score int) primitive.ObjectID {
	t.Helper()
	id, err := db.InsertReview(context.Background(), &models.Review{
		TitleID:  titleID,
		AuthorID: authorID,
		Text:     "some review",
		Score:    score,
		PubDate:  time.Now(),
	})
	require.NoError(t, err)
	return id
}

func TestTitleRatings(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	rated := insertTitle(t, db, "rated")
	empty := insertTitle(t, db, "unreviewed")
	other := insertTitle(t, db, "other")

	insertReview(t, db, rated, primitive.NewObjectID(), 7)
	insertReview(t, db, rated, primitive.NewObjectID(), 3)
	insertReview(t, db, other, primitive.NewObjectID(), 10)

	rating, err := db.TitleRating(ctx, rated)
	require.NoError(t, err)
	require.NotNil(t, rating)
	assert.Equal(t, 5.0, *rating, "rating is the arithmetic mean of the scores")

	rating, err = db.TitleRating(ctx, empty)
	require.NoError(t, err)
	assert.Nil(t, rating, "a title with zero reviews has no rating")

	batch, err := db.TitleRatings(ctx, []primitive.ObjectID{rated, empty, other})
	require.NoError(t, err)
	require.NotNil(t, batch[rated])
	assert.Equal(t, 5.0, *batch[rated])
	assert.Nil(t, batch[empty])
	require.NotNil(t, batch[other])
	assert.Equal(t, 10.0, *batch[other], "each title averages only its own reviews")
}

func TestTitleRatingReflectsWrites(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	titleID := insertTitle(t, db, "live")
	reviewID := insertReview(t, db, titleID, primitive.NewObjectID(), 4)
	insertReview(t, db, titleID, primitive.NewObjectID(), 8)

	rating, err := db.TitleRating(ctx, titleID)
	require.NoError(t, err)
	assert.Equal(t, 6.0, *rating)

	require.NoError(t, db.DeleteReview(ctx, reviewID))
	rating, err = db.TitleRating(ctx, titleID)
	require.NoError(t, err)
	assert.Equal(t, 8.0, *rating, "the rating is computed from current reviews on every read")
}

func TestInsertReviewUniquePair(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	titleID := insertTitle(t, db, "contested")
	authorID := primitive.NewObjectID()
	insertReview(t, db, titleID, authorID, 7)

	_, err := db.InsertReview(ctx, &models.Review{
		TitleID:  titleID,
		AuthorID: authorID,
		Text:     "again",
		Score:    5,
		PubDate:  time.Now(),
	})
	assert.ErrorIs(t, err, ErrDuplicateReview)

	// The index only binds the (title, author) pair.
	_, err = db.InsertReview(ctx, &models.Review{
		TitleID:  titleID,
		AuthorID: primitive.NewObjectID(),
		Text:     "someone else",
		Score:    5,
		PubDate:  time.Now(),
	})
	assert.NoError(t, err)
}

func TestInsertReviewConcurrent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	titleID := insertTitle(t, db, "raced")
	authorID := primitive.NewObjectID()

	const n = 8
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := db.InsertReview(context.Background(), &models.Review{
				TitleID:  titleID,
				AuthorID: authorID,
				Text:     "race",
				Score:    6,
				PubDate:  time.Now(),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var successes int
	for err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, ErrDuplicateReview)
		}
	}
	assert.Equal(t, 1, successes, "the unique index admits exactly one insert")
}

func TestDeleteTitleCascades(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	doomed := insertTitle(t, db, "doomed")
	kept := insertTitle(t, db, "kept")

	doomedReview := insertReview(t, db, doomed, primitive.NewObjectID(), 7)
	insertReview(t, db, doomed, primitive.NewObjectID(), 3)
	keptReview := insertReview(t, db, kept, primitive.NewObjectID(), 9)

	for _, reviewID := range []primitive.ObjectID{doomedReview, keptReview} {
		_, err := db.InsertComment(ctx, &models.Comment{
			ReviewID: reviewID,
			AuthorID: primitive.NewObjectID(),
			Text:     "a comment",
			PubDate:  time.Now(),
		})
		require.NoError(t, err)
	}

	deleted, err := db.DeleteTitle(ctx, doomed)
	require.NoError(t, err)
	require.True(t, deleted)

	title, err := db.TitleByID(ctx, doomed)
	require.NoError(t, err)
	assert.Nil(t, title)

	reviews, err := db.ListReviews(ctx, doomed)
	require.NoError(t, err)
	assert.Empty(t, reviews, "the title's reviews are gone")

	comments, err := db.ListComments(ctx, doomedReview)
	require.NoError(t, err)
	assert.Empty(t, comments, "their comments are gone too")

	// The cascade stays inside the deleted title.
	reviews, err = db.ListReviews(ctx, kept)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
	comments, err = db.ListComments(ctx, keptReview)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	deleted, err = db.DeleteTitle(ctx, doomed)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestTaxonomyDeleteUnlinksTitles(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	category, err := db.CategoryStore().Insert(ctx, "Books", "books")
	require.NoError(t, err)
	genre, err := db.GenreStore().Insert(ctx, "Drama", "drama")
	require.NoError(t, err)

	titleID, err := db.InsertTitle(ctx, &models.Title{
		Name:       "linked",
		CategoryID: &category.ID,
		GenreIDs:   []primitive.ObjectID{genre.ID},
		CreatedAt:  time.Now(),
	})
	require.NoError(t, err)

	deleted, err := db.CategoryStore().DeleteBySlug(ctx, "books")
	require.NoError(t, err)
	require.True(t, deleted)
	deleted, err = db.GenreStore().DeleteBySlug(ctx, "drama")
	require.NoError(t, err)
	require.True(t, deleted)

	title, err := db.TitleByID(ctx, titleID)
	require.NoError(t, err)
	require.NotNil(t, title)
	assert.Nil(t, title.CategoryID, "category deletion unsets the title's reference")
	assert.Empty(t, title.GenreIDs, "genre deletion pulls the membership")

	deleted, err = db.CategoryStore().DeleteBySlug(ctx, "books")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	_, err := db.CreateUser(ctx, &models.User{
		Email:     "a@x.com",
		Username:  "a@x.com",
		Role:      models.RoleUser,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	_, err = db.CreateUser(ctx, &models.User{
		Email:     "a@x.com",
		Username:  "someone-else",
		Role:      models.RoleUser,
		CreatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}
