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
)

type UsersHandler struct {
	DB *store.DB
}

type CreateUserRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

type UpdateUserRequest struct {
	Email     *string `json:"email"`
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"`
}

func roleValid(role string) bool {
	for _, r := range models.ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// requireAdmin enforces the user-administration policy; only admins touch
// this resource.
func requireAdmin(w http.ResponseWriter, r *http.Request) *models.User {
	actor := middleware.UserFromContext(r.Context())
	if !service.CanManageUsers(actor) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": service.MsgAdminsOnly})
		return nil
	}
	return actor
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(w, r) == nil {
		return
	}
	users, err := h.DB.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(w, r) == nil {
		return
	}
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" {
		http.Error(w, `{"error":"email required"}`, http.StatusBadRequest)
		return
	}
	if req.Username == "" {
		req.Username = req.Email
	}
	role := strings.TrimSpace(strings.ToLower(req.Role))
	if role == "" {
		role = models.RoleUser
	}
	if !roleValid(role) {
		http.Error(w, `{"error":"invalid role; use user, moderator, or admin"}`, http.StatusBadRequest)
		return
	}
	existing, err := h.DB.UserByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	if existing != nil {
		http.Error(w, `{"error":"email already in use"}`, http.StatusConflict)
		return
	}
	user := &models.User{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      role,
		CreatedAt: time.Now(),
	}
	id, err := h.DB.CreateUser(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	user.ID = id
	writeJSON(w, http.StatusCreated, user)
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(w, r) == nil {
		return
	}
	user, err := h.DB.UserByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		http.Error(w, `{"error":"user not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(w, r) == nil {
		return
	}
	user, err := h.DB.UserByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		http.Error(w, `{"error":"user not found"}`, http.StatusNotFound)
		return
	}
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Role != nil && !roleValid(*req.Role) {
		http.Error(w, `{"error":"invalid role; use user, moderator, or admin"}`, http.StatusBadRequest)
		return
	}
	err = h.DB.UpdateUser(r.Context(), user.ID, store.UserFields{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.DB.UserByID(r.Context(), user.ID)
	if err != nil || updated == nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(w, r) == nil {
		return
	}
	user, err := h.DB.UserByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		http.Error(w, `{"error":"user not found"}`, http.StatusNotFound)
		return
	}
	if err := h.DB.DeleteUser(r.Context(), user.ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated user's own profile.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, actor)
}

// UpdateMe patches the caller's own profile. Role is client-writable only
// for admins; everyone else's role field is ignored.
func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context())
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if !actor.IsAdmin() {
		req.Role = nil
	}
	if req.Role != nil && !roleValid(*req.Role) {
		http.Error(w, `{"error":"invalid role; use user, moderator, or admin"}`, http.StatusBadRequest)
		return
	}
	err := h.DB.UpdateUser(r.Context(), actor.ID, store.UserFields{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.DB.UserByID(r.Context(), actor.ID)
	if err != nil || updated == nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
