package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mishastik78/yamdb-final/middleware"
	"github.com/mishastik78/yamdb-final/models"
	"github.com/mishastik78/yamdb-final/service"
	"github.com/mishastik78/yamdb-final/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TitlesHandler struct {
	DB *store.DB
}

type TitleRequest struct {
	Name        *string  `json:"name"`
	Year        *int     `json:"year"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"` // slug
	Genre       []string `json:"genre"`    // slugs
}

// TitleResponse carries the live rating; null when the title has no reviews.
type TitleResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Year        *int               `json:"year,omitempty"`
	Description string             `json:"description,omitempty"`
	Rating      *float64           `json:"rating"`
	Category    *models.NamedSlug  `json:"category"`
	Genre       []models.NamedSlug `json:"genre"`
}

func (h *TitlesHandler) respond(w http.ResponseWriter, r *http.Request, status int, titles ...models.Title) {
	ids := make([]primitive.ObjectID, len(titles))
	var genreIDs []primitive.ObjectID
	var categoryIDs []primitive.ObjectID
	for i, t := range titles {
		ids[i] = t.ID
		genreIDs = append(genreIDs, t.GenreIDs...)
		if t.CategoryID != nil {
			categoryIDs = append(categoryIDs, *t.CategoryID)
		}
	}
	ratings, err := h.DB.TitleRatings(r.Context(), ids)
	if err != nil {
		writeError(w, err)
		return
	}
	categories, err := h.DB.CategoryStore().ByIDs(r.Context(), categoryIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	genres, err := h.DB.GenreStore().ByIDs(r.Context(), genreIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	categoryByID := make(map[primitive.ObjectID]models.NamedSlug, len(categories))
	for _, c := range categories {
		categoryByID[c.ID] = c
	}
	genreByID := make(map[primitive.ObjectID]models.NamedSlug, len(genres))
	for _, g := range genres {
		genreByID[g.ID] = g
	}

	out := make([]TitleResponse, len(titles))
	for i, t := range titles {
		resp := TitleResponse{
			ID:          t.ID.Hex(),
			Name:        t.Name,
			Year:        t.Year,
			Description: t.Description,
			Rating:      ratings[t.ID],
			Genre:       []models.NamedSlug{},
		}
		if t.CategoryID != nil {
			if c, ok := categoryByID[*t.CategoryID]; ok {
				resp.Category = &c
			}
		}
		for _, gid := range t.GenreIDs {
			if g, ok := genreByID[gid]; ok {
				resp.Genre = append(resp.Genre, g)
			}
		}
		out[i] = resp
	}
	if len(titles) == 1 && status != 0 {
		writeJSON(w, status, out[0])
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *TitlesHandler) List(w http.ResponseWriter, r *http.Request) {
	titles, err := h.DB.ListTitles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, r, 0, titles...)
}

func (h *TitlesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "titleID"))
	if err != nil {
		http.Error(w, `{"error":"title not found"}`, http.StatusNotFound)
		return
	}
	title, err := h.DB.TitleByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if title == nil {
		http.Error(w, `{"error":"title not found"}`, http.StatusNotFound)
		return
	}
	h.respond(w, r, http.StatusOK, *title)
}

// resolveRefs turns category and genre slugs into object ids. Unknown slugs
// are a validation error.
func (h *TitlesHandler) resolveRefs(r *http.Request, req *TitleRequest) (*primitive.ObjectID, *[]primitive.ObjectID, error) {
	var categoryID *primitive.ObjectID
	if req.Category != nil {
		category, err := h.DB.CategoryStore().BySlug(r.Context(), *req.Category)
		if err != nil {
			return nil, nil, err
		}
		if category == nil {
			return nil, nil, &service.Error{Kind: service.ErrValidation, Message: "unknown category: " + *req.Category}
		}
		categoryID = &category.ID
	}
	var genreIDs *[]primitive.ObjectID
	if req.Genre != nil {
		ids := make([]primitive.ObjectID, 0, len(req.Genre))
		for _, slug := range req.Genre {
			genre, err := h.DB.GenreStore().BySlug(r.Context(), slug)
			if err != nil {
				return nil, nil, err
			}
			if genre == nil {
				return nil, nil, &service.Error{Kind: service.ErrValidation, Message: "unknown genre: " + slug}
			}
			ids = append(ids, genre.ID)
		}
		genreIDs = &ids
	}
	return categoryID, genreIDs, nil
}

func yearValid(year int) bool {
	return year <= time.Now().Year()
}

func (h *TitlesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !service.CanWriteCatalog(middleware.UserFromContext(r.Context())) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": service.MsgAdminsOnly})
		return
	}
	var req TitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		http.Error(w, `{"error":"name required"}`, http.StatusBadRequest)
		return
	}
	if req.Year != nil && !yearValid(*req.Year) {
		http.Error(w, `{"error":"year cannot be in the future"}`, http.StatusBadRequest)
		return
	}
	categoryID, genreIDs, err := h.resolveRefs(r, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	title := &models.Title{
		Name:       strings.TrimSpace(*req.Name),
		Year:       req.Year,
		CategoryID: categoryID,
		CreatedAt:  time.Now(),
	}
	if req.Description != nil {
		title.Description = *req.Description
	}
	if genreIDs != nil {
		title.GenreIDs = *genreIDs
	}
	id, err := h.DB.InsertTitle(r.Context(), title)
	if err != nil {
		writeError(w, err)
		return
	}
	title.ID = id
	h.respond(w, r, http.StatusCreated, *title)
}

func (h *TitlesHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !service.CanWriteCatalog(middleware.UserFromContext(r.Context())) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": service.MsgAdminsOnly})
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "titleID"))
	if err != nil {
		http.Error(w, `{"error":"title not found"}`, http.StatusNotFound)
		return
	}
	title, err := h.DB.TitleByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if title == nil {
		http.Error(w, `{"error":"title not found"}`, http.StatusNotFound)
		return
	}
	var req TitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Year != nil && !yearValid(*req.Year) {
		http.Error(w, `{"error":"year cannot be in the future"}`, http.StatusBadRequest)
		return
	}
	categoryID, genreIDs, err := h.resolveRefs(r, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	err = h.DB.UpdateTitle(r.Context(), id, store.TitleFields{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		CategoryID:  categoryID,
		GenreIDs:    genreIDs,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.DB.TitleByID(r.Context(), id)
	if err != nil || updated == nil {
		writeError(w, err)
		return
	}
	h.respond(w, r, http.StatusOK, *updated)
}

func (h *TitlesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !service.CanWriteCatalog(middleware.UserFromContext(r.Context())) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": service.MsgAdminsOnly})
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "titleID"))
	if err != nil {
		http.Error(w, `{"error":"title not found"}`, http.StatusNotFound)
		return
	}
	deleted, err := h.DB.DeleteTitle(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		http.Error(w, `{"error":"title not found"}`, http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
