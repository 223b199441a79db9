package handlers

import (
	"encoding/json"
	"net/http"

	"clsh-backend/internal/models"
	"clsh-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// UserHandler handles session HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// SessionRequest represents the request body for starting a session
type SessionRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SessionResponse carries the session token and the stored user
type SessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// StartSession handles POST /api/v1/auth/session
func (h *UserHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.userService.StartSession(ctx, req.Email, req.Name)
	if err != nil {
		log.Error().Err(err).Msg("Failed to start session")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("Session started")

	respondJSON(w, http.StatusOK, SessionResponse{Token: token, User: user})
}
