package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"clsh-backend/internal/middleware"
	"clsh-backend/internal/models"
	"clsh-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// NutritionHandler handles the CalorieAI surface: food-text parsing, food
// logs, and daily goals
type NutritionHandler struct {
	nutritionService *services.NutritionService
}

// NewNutritionHandler creates a new nutrition handler
func NewNutritionHandler(nutritionService *services.NutritionService) *NutritionHandler {
	return &NutritionHandler{
		nutritionService: nutritionService,
	}
}

// ParseRequest represents the request body for food parsing
type ParseRequest struct {
	Text string `json:"text"`
}

// ParseFood handles POST /api/v1/nutrition/parse
func (h *NutritionHandler) ParseFood(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	analysis, err := h.nutritionService.ParseFood(ctx, req.Text)
	if err != nil {
		if services.IsValidation(err) {
			respondServiceError(w, err)
			return
		}
		log.Error().Err(err).Msg("Food parsing failed")
		respondError(w, "Food analysis is unavailable", http.StatusBadGateway)
		return
	}

	respondJSON(w, http.StatusOK, analysis)
}

// CreateLog handles POST /api/v1/nutrition/logs
func (h *NutritionHandler) CreateLog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var input services.LogEntryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := h.nutritionService.LogEntry(ctx, userID, input)
	if err != nil {
		if !services.IsValidation(err) {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to log entry")
		}
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}

// ListLogs handles GET /api/v1/nutrition/logs?date=YYYY-MM-DD
func (h *NutritionHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	day := time.Now().UTC()
	if date := r.URL.Query().Get("date"); date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			respondError(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		day = parsed
	}

	entries, err := h.nutritionService.ListEntries(ctx, userID, day)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list log entries")
		respondServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []*models.NutritionLog{}
	}

	respondJSON(w, http.StatusOK, entries)
}

// GetGoals handles GET /api/v1/nutrition/goals
func (h *NutritionHandler) GetGoals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	goals, err := h.nutritionService.GetGoals(ctx, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, goals)
}

// UpdateGoals handles PUT /api/v1/nutrition/goals
func (h *NutritionHandler) UpdateGoals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var goals models.NutritionGoals
	if err := json.NewDecoder(r.Body).Decode(&goals); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.nutritionService.UpdateGoals(ctx, userID, goals)
	if err != nil {
		if !services.IsValidation(err) {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to update goals")
		}
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}
