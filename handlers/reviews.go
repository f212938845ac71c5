package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mishastik78/yamdb-final/middleware"
	"github.com/mishastik78/yamdb-final/models"
	"github.com/mishastik78/yamdb-final/service"
	"github.com/mishastik78/yamdb-final/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewsHandler struct {
	Svc *service.ReviewService
	DB  *store.DB
}

type ReviewRequest struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

type CommentRequest struct {
	Text string `json:"text"`
}

type ReviewResponse struct {
	ID      string    `json:"id"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

type CommentResponse struct {
	ID      string    `json:"id"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	PubDate time.Time `json:"pub_date"`
}

// pathID parses an object id path segment. A malformed id cannot reference
// anything, so it reads as not found.
func pathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *ReviewsHandler) reviewResponses(r *http.Request, reviews ...models.Review) ([]ReviewResponse, error) {
	ids := make([]primitive.ObjectID, len(reviews))
	for i, rev := range reviews {
		ids[i] = rev.AuthorID
	}
	names, err := h.DB.UsernamesByIDs(r.Context(), ids)
	if err != nil {
		return nil, err
	}
	out := make([]ReviewResponse, len(reviews))
	for i, rev := range reviews {
		out[i] = ReviewResponse{
			ID:      rev.ID.Hex(),
			Author:  names[rev.AuthorID],
			Text:    rev.Text,
			Score:   rev.Score,
			PubDate: rev.PubDate,
		}
	}
	return out, nil
}

func (h *ReviewsHandler) commentResponses(r *http.Request, comments ...models.Comment) ([]CommentResponse, error) {
	ids := make([]primitive.ObjectID, len(comments))
	for i, c := range comments {
		ids[i] = c.AuthorID
	}
	names, err := h.DB.UsernamesByIDs(r.Context(), ids)
	if err != nil {
		return nil, err
	}
	out := make([]CommentResponse, len(comments))
	for i, c := range comments {
		out[i] = CommentResponse{
			ID:      c.ID.Hex(),
			Author:  names[c.AuthorID],
			Text:    c.Text,
			PubDate: c.PubDate,
		}
	}
	return out, nil
}

func (h *ReviewsHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	titleID, ok := pathID(w, r, "titleID")
	if !ok {
		return
	}
	reviews, err := h.Svc.ListReviews(r.Context(), titleID)
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := h.reviewResponses(r, reviews...)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ReviewsHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	titleID, ok := pathID(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := pathID(w, r, "reviewID")
	if !ok {
		return
	}
	review, err := h.Svc.GetReview(r.Context(), titleID, reviewID)
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := h.reviewResponses(r, *review)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out[0])
}

func (h *ReviewsHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	titleID, ok := pathID(w, r, "titleID")
	if !ok {
		return
	}
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Text == nil || req.Score == nil {
		http.Error(w, `{"error":"text and score required"}`, http.StatusBadRequest)
		return
	}
	actor := middleware.UserFromContext(r.Context())
	review, err := h.Svc.CreateReview(r.Context(), actor, titleID, *req.Text, *req.Score)
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := h.reviewResponses(r, *review)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out[0])
}

func (h *ReviewsHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	titleID, ok := pathID(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := pathID(w, r, "reviewID")
	if !ok {
		return
	}
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	actor := middleware.UserFromContext(r.Context())
	review, err := h.Svc.UpdateReview(r.Context(), actor, titleID, reviewID, req.Text, req.Score)
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := h.reviewResponses(r, *review)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out[0])
}

func (h *ReviewsHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	titleID, ok := pathID(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := pathID(w, r, "reviewID")
	if !ok {
		return
	}
	actor := middleware.UserFromContext(r.Context())
	if err := h.Svc.DeleteReview(r.Context(), actor, titleID, reviewID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReviewsHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	titleID, ok := pathID(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := pathID(w, r, "reviewID")
	if !ok {
		return
	}
	comments, err := h.Svc.ListComments(r.Context(), titleID, reviewID)
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := h.commentResponses(r, comments...)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ReviewsHandler) GetComment(w http.ResponseWriter, r *http.Request) {
	titleID, ok := pathID(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := pathID(w, r, "reviewID")
	if !ok {
		return
	}
	commentID, ok := pathID(w, r, "commentID")
	if !ok {
		return
	}
	comment, err := h.Svc.GetComment(r.Context(), titleID, reviewID, commentID)
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := h.commentResponses(r, *comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out[0])
}

func (h *ReviewsHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	titleID, ok := pathID(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := pathID(w, r, "reviewID")
	if !ok {
		return
	}
	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, `{"error":"text required"}`, http.StatusBadRequest)
		return
	}
	actor := middleware.UserFromContext(r.Context())
	comment, err := h.Svc.CreateComment(r.Context(), actor, titleID, reviewID, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := h.commentResponses(r, *comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out[0])
}

func (h *ReviewsHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	titleID, ok := pathID(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := pathID(w, r, "reviewID")
	if !ok {
		return
	}
	commentID, ok := pathID(w, r, "commentID")
	if !ok {
		return
	}
	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, `{"error":"text required"}`, http.StatusBadRequest)
		return
	}
	actor := middleware.UserFromContext(r.Context())
	comment, err := h.Svc.UpdateComment(r.Context(), actor, titleID, reviewID, commentID, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := h.commentResponses(r, *comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out[0])
}

func (h *ReviewsHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	titleID, ok := pathID(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := pathID(w, r, "reviewID")
	if !ok {
		return
	}
	commentID, ok := pathID(w, r, "commentID")
	if !ok {
		return
	}
	actor := middleware.UserFromContext(r.Context())
	if err := h.Svc.DeleteComment(r.Context(), actor, titleID, reviewID, commentID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
