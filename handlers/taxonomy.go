package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mishastik78/yamdb-final/middleware"
	"github.com/mishastik78/yamdb-final/models"
	"github.com/mishastik78/yamdb-final/service"
	"github.com/mishastik78/yamdb-final/store"
)

// TaxonomyHandler serves one named-slug resource. Categories and genres are
// two instances of the same handler over different collections.
type TaxonomyHandler struct {
	Store *store.Taxonomy
	Label string // "category" or "genre", for error messages
}

type TaxonomyRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// List is public; an optional ?search= filters by exact name.
func (h *TaxonomyHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.NamedSlug{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *TaxonomyHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !service.CanWriteCatalog(middleware.UserFromContext(r.Context())) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": service.MsgAdminsOnly})
		return
	}
	var req TaxonomyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Slug = strings.TrimSpace(req.Slug)
	if req.Name == "" || req.Slug == "" {
		http.Error(w, `{"error":"name and slug required"}`, http.StatusBadRequest)
		return
	}
	existing, err := h.Store.BySlug(r.Context(), req.Slug)
	if err != nil {
		writeError(w, err)
		return
	}
	if existing != nil {
		http.Error(w, `{"error":"slug already in use"}`, http.StatusBadRequest)
		return
	}
	item, err := h.Store.Insert(r.Context(), req.Name, req.Slug)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *TaxonomyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !service.CanWriteCatalog(middleware.UserFromContext(r.Context())) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": service.MsgAdminsOnly})
		return
	}
	deleted, err := h.Store.DeleteBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		http.Error(w, `{"error":"`+h.Label+` not found"}`, http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
