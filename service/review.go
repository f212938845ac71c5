package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mishastik78/yamdb-final/models"
	"github.com/mishastik78/yamdb-final/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentStore is the slice of the persistence layer the review service
// needs. *store.DB satisfies it; tests plug in an in-memory fake that honors
// the same contract, including the duplicate-review sentinel.
type ContentStore interface {
	TitleByID(ctx context.Context, id primitive.ObjectID) (*models.Title, error)
	InsertReview(ctx context.Context, review *models.Review) (primitive.ObjectID, error)
	ReviewByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	ListReviews(ctx context.Context, titleID primitive.ObjectID) ([]models.Review, error)
	UpdateReview(ctx context.Context, id primitive.ObjectID, text *string, score *int) error
	DeleteReview(ctx context.Context, id primitive.ObjectID) error
	InsertComment(ctx context.Context, comment *models.Comment) (primitive.ObjectID, error)
	CommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	ListComments(ctx context.Context, reviewID primitive.ObjectID) ([]models.Comment, error)
	UpdateComment(ctx context.Context, id primitive.ObjectID, text string) error
	DeleteComment(ctx context.Context, id primitive.ObjectID) error
}

// ReviewService enforces the review and comment invariants: the score range,
// parent existence, one review per (title, author), and the
// author-or-moderator rule on mutation.
type ReviewService struct {
	Content ContentStore
}

func validScore(score int) bool {
	return score >= models.ScoreMin && score <= models.ScoreMax
}

// CreateReview persists a review by the actor for the title. Uniqueness is
// settled by the store's insert, not by a prior existence check.
func (s *ReviewService) CreateReview(ctx context.Context, actor *models.User, titleID primitive.ObjectID, text string, score int) (*models.Review, error) {
	if actor == nil {
		return nil, forbidden(MsgDenied)
	}
	if !validScore(score) {
		return nil, validation(fmt.Sprintf("score must be between %d and %d.", models.ScoreMin, models.ScoreMax))
	}
	title, err := s.Content.TitleByID(ctx, titleID)
	if err != nil {
		return nil, err
	}
	if title == nil {
		return nil, notFound("title not found.")
	}

	review := &models.Review{
		TitleID:  title.ID,
		AuthorID: actor.ID,
		Text:     text,
		Score:    score,
		PubDate:  time.Now(),
	}
	id, err := s.Content.InsertReview(ctx, review)
	if errors.Is(err, store.ErrDuplicateReview) {
		return nil, validation("You did a review already.")
	}
	if err != nil {
		return nil, err
	}
	review.ID = id
	return review, nil
}

// reviewInTitle resolves a review within the title scope of the request
// path. A review that exists under a different title is not found here.
func (s *ReviewService) reviewInTitle(ctx context.Context, titleID, reviewID primitive.ObjectID) (*models.Review, error) {
	review, err := s.Content.ReviewByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil || review.TitleID != titleID {
		return nil, notFound("review not found.")
	}
	return review, nil
}

func (s *ReviewService) ListReviews(ctx context.Context, titleID primitive.ObjectID) ([]models.Review, error) {
	title, err := s.Content.TitleByID(ctx, titleID)
	if err != nil {
		return nil, err
	}
	if title == nil {
		return nil, notFound("title not found.")
	}
	return s.Content.ListReviews(ctx, titleID)
}

func (s *ReviewService) GetReview(ctx context.Context, titleID, reviewID primitive.ObjectID) (*models.Review, error) {
	return s.reviewInTitle(ctx, titleID, reviewID)
}

// UpdateReview changes text and/or score of an existing review. Title and
// author stay server-controlled.
func (s *ReviewService) UpdateReview(ctx context.Context, actor *models.User, titleID, reviewID primitive.ObjectID, text *string, score *int) (*models.Review, error) {
	review, err := s.reviewInTitle(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if !CanModifyAuthored(actor, review.AuthorID) {
		return nil, forbidden(MsgDenied)
	}
	if score != nil && !validScore(*score) {
		return nil, validation(fmt.Sprintf("score must be between %d and %d.", models.ScoreMin, models.ScoreMax))
	}
	if err := s.Content.UpdateReview(ctx, review.ID, text, score); err != nil {
		return nil, err
	}
	if text != nil {
		review.Text = *text
	}
	if score != nil {
		review.Score = *score
	}
	return review, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, actor *models.User, titleID, reviewID primitive.ObjectID) error {
	review, err := s.reviewInTitle(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if !CanModifyAuthored(actor, review.AuthorID) {
		return forbidden(MsgDenied)
	}
	return s.Content.DeleteReview(ctx, review.ID)
}

// CreateComment requires the target review (and transitively its title) to
// exist. Any authenticated user may comment.
func (s *ReviewService) CreateComment(ctx context.Context, actor *models.User, titleID, reviewID primitive.ObjectID, text string) (*models.Comment, error) {
	if actor == nil {
		return nil, forbidden(MsgDenied)
	}
	review, err := s.reviewInTitle(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	comment := &models.Comment{
		ReviewID: review.ID,
		AuthorID: actor.ID,
		Text:     text,
		PubDate:  time.Now(),
	}
	id, err := s.Content.InsertComment(ctx, comment)
	if err != nil {
		return nil, err
	}
	comment.ID = id
	return comment, nil
}

// commentInReview resolves a comment within the (title, review) scope of the
// request path, so a comment list or lookup can never leak another review's
// comments.
func (s *ReviewService) commentInReview(ctx context.Context, titleID, reviewID, commentID primitive.ObjectID) (*models.Comment, error) {
	if _, err := s.reviewInTitle(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.Content.CommentByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil || comment.ReviewID != reviewID {
		return nil, notFound("comment not found.")
	}
	return comment, nil
}

func (s *ReviewService) ListComments(ctx context.Context, titleID, reviewID primitive.ObjectID) ([]models.Comment, error) {
	if _, err := s.reviewInTitle(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	return s.Content.ListComments(ctx, reviewID)
}

func (s *ReviewService) GetComment(ctx context.Context, titleID, reviewID, commentID primitive.ObjectID) (*models.Comment, error) {
	return s.commentInReview(ctx, titleID, reviewID, commentID)
}

func (s *ReviewService) UpdateComment(ctx context.Context, actor *models.User, titleID, reviewID, commentID primitive.ObjectID, text string) (*models.Comment, error) {
	comment, err := s.commentInReview(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if !CanModifyAuthored(actor, comment.AuthorID) {
		return nil, forbidden(MsgDenied)
	}
	if err := s.Content.UpdateComment(ctx, comment.ID, text); err != nil {
		return nil, err
	}
	comment.Text = text
	return comment, nil
}

func (s *ReviewService) DeleteComment(ctx context.Context, actor *models.User, titleID, reviewID, commentID primitive.ObjectID) error {
	comment, err := s.commentInReview(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if !CanModifyAuthored(actor, comment.AuthorID) {
		return forbidden(MsgDenied)
	}
	return s.Content.DeleteComment(ctx, comment.ID)
}
