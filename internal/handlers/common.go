package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"clsh-backend/internal/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse represents a plain success message
type MessageResponse struct {
	Message string `json:"message"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// respondServiceError maps service errors onto the HTTP taxonomy:
// validation 400, duplicate vote 400 with its specific message,
// not-found (including not-owned) 404, everything else 500.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case services.IsValidation(err):
		respondError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrAlreadyVoted):
		respondError(w, "You have already voted", http.StatusBadRequest)
	case errors.Is(err, services.ErrExpired):
		respondError(w, "This clash has expired", http.StatusBadRequest)
	case errors.Is(err, services.ErrInvalidOption):
		respondError(w, "Invalid option", http.StatusBadRequest)
	case errors.Is(err, services.ErrNotFound):
		respondError(w, "Not found", http.StatusNotFound)
	default:
		respondError(w, "Internal server error", http.StatusInternalServerError)
	}
}
