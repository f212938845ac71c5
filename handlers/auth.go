package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mishastik78/yamdb-final/service"
)

type AuthHandler struct {
	Auth *service.AuthService
}

type RequestCodeRequest struct {
	Email string `json:"email"`
}

type ExchangeCodeRequest struct {
	Email            string `json:"email"`
	ConfirmationCode string `json:"confirmation_code"`
}

type TokenPairResponse struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

// RequestCode mails a confirmation code to the address, creating the user on
// first contact.
func (h *AuthHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var req RequestCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if err := h.Auth.RequestCode(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": req.Email})
}

// ExchangeCode trades a confirmation code for the refresh/access pair.
func (h *AuthHandler) ExchangeCode(w http.ResponseWriter, r *http.Request) {
	var req ExchangeCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.ConfirmationCode == "" {
		http.Error(w, `{"error":"email and confirmation_code required"}`, http.StatusBadRequest)
		return
	}
	refresh, access, err := h.Auth.ExchangeCode(r.Context(), req.Email, req.ConfirmationCode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenPairResponse{Refresh: refresh, Access: access})
}
