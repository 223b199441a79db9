package handlers

import (
	"encoding/json"
	"net/http"

	"clsh-backend/internal/middleware"
	"clsh-backend/internal/models"
	"clsh-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ClashHandler handles owner-scoped clash HTTP requests: CRUD, analytics,
// and option image uploads
type ClashHandler struct {
	clashService     *services.ClashService
	analyticsService *services.AnalyticsService
	uploadService    *services.UploadService
}

// NewClashHandler creates a new clash handler. uploadService may be nil
// when object storage is not configured.
func NewClashHandler(clashService *services.ClashService, analyticsService *services.AnalyticsService, uploadService *services.UploadService) *ClashHandler {
	return &ClashHandler{
		clashService:     clashService,
		analyticsService: analyticsService,
		uploadService:    uploadService,
	}
}

// Create handles POST /api/v1/clashes
func (h *ClashHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := middleware.GetUserID(ctx)

	var input services.CreateClashInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	clash, err := h.clashService.Create(ctx, ownerID, input)
	if err != nil {
		if !services.IsValidation(err) {
			log.Error().Err(err).Str("owner_id", ownerID).Msg("Failed to create clash")
		}
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("clash_id", clash.ID).
		Str("slug", clash.Slug).
		Str("owner_id", ownerID).
		Msg("Clash created")

	respondJSON(w, http.StatusCreated, clash)
}

// List handles GET /api/v1/clashes
func (h *ClashHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := middleware.GetUserID(ctx)

	clashes, err := h.clashService.List(ctx, ownerID)
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID).Msg("Failed to list clashes")
		respondServiceError(w, err)
		return
	}
	if clashes == nil {
		clashes = []*models.Clash{}
	}

	respondJSON(w, http.StatusOK, clashes)
}

// Get handles GET /api/v1/clashes/{clash_id}
func (h *ClashHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := middleware.GetUserID(ctx)
	clashID := chi.URLParam(r, "clash_id")

	clash, err := h.clashService.Get(ctx, clashID, ownerID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, clash)
}

// Update handles PUT /api/v1/clashes/{clash_id}
func (h *ClashHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := middleware.GetUserID(ctx)
	clashID := chi.URLParam(r, "clash_id")

	var input services.UpdateClashInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	clash, err := h.clashService.Update(ctx, clashID, ownerID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("clash_id", clashID).
		Str("owner_id", ownerID).
		Msg("Clash updated")

	respondJSON(w, http.StatusOK, clash)
}

// Delete handles DELETE /api/v1/clashes/{clash_id}
func (h *ClashHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := middleware.GetUserID(ctx)
	clashID := chi.URLParam(r, "clash_id")

	if err := h.clashService.Delete(ctx, clashID, ownerID); err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("clash_id", clashID).
		Str("owner_id", ownerID).
		Msg("Clash deleted")

	w.WriteHeader(http.StatusNoContent)
}

// Analytics handles GET /api/v1/clashes/{clash_id}/analytics
func (h *ClashHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := middleware.GetUserID(ctx)
	clashID := chi.URLParam(r, "clash_id")

	analytics, err := h.analyticsService.ComputeAnalytics(ctx, clashID, ownerID)
	if err != nil {
		if err != services.ErrNotFound {
			log.Error().Err(err).Str("clash_id", clashID).Msg("Failed to compute analytics")
		}
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, analytics)
}

// UploadURLRequest represents the request body for an option upload URL
type UploadURLRequest struct {
	ContentType string `json:"content_type"`
}

// OptionUploadURL handles POST /api/v1/clashes/{clash_id}/options/{option_id}/upload-url
func (h *ClashHandler) OptionUploadURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := middleware.GetUserID(ctx)
	clashID := chi.URLParam(r, "clash_id")
	optionID := chi.URLParam(r, "option_id")

	if h.uploadService == nil {
		respondError(w, "Image uploads are not configured", http.StatusNotImplemented)
		return
	}

	var req UploadURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.uploadService.GetOptionUploadURL(ctx, clashID, ownerID, optionID, req.ContentType)
	if err != nil {
		log.Error().
			Err(err).
			Str("clash_id", clashID).
			Str("option_id", optionID).
			Msg("Failed to generate upload URL")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
