package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/mishastik78/yamdb-final/service"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

// writeError maps the service error taxonomy onto HTTP statuses. The code
// mismatch maps to 400 for parity with the original API.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"
	switch {
	case errors.Is(err, service.ErrValidation):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrForbidden):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrAuthFailed):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrDispatch):
		status, msg = http.StatusBadGateway, err.Error()
	default:
		log.Printf("handler: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
