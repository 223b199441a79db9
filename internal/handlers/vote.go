package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"

	"clsh-backend/internal/middleware"
	"clsh-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// VoteHandler handles the public voting surface: clash detail, vote
// submission, the embeddable variant, and view tracking
type VoteHandler struct {
	clashService *services.ClashService
	voteService  *services.VoteService
}

// NewVoteHandler creates a new vote handler
func NewVoteHandler(clashService *services.ClashService, voteService *services.VoteService) *VoteHandler {
	return &VoteHandler{
		clashService: clashService,
		voteService:  voteService,
	}
}

// GetClash handles GET /api/v1/vote/{slug} — public clash detail for the
// voting page. Analytics are never included here.
func (h *VoteHandler) GetClash(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	clash, err := h.clashService.GetPublicBySlug(ctx, slug)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, clash)
}

// VoteRequest represents the request body for submitting a vote. ClashID
// is accepted for older clients; the slug in the URL is authoritative.
type VoteRequest struct {
	Option            int    `json:"option"`
	ClashID           string `json:"clash_id"`
	DeviceFingerprint string `json:"device_fingerprint"`
	UserAgent         string `json:"user_agent"`
}

// SubmitVote handles POST /api/v1/vote/{slug}
func (h *VoteHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = r.UserAgent()
	}

	err := h.voteService.RecordVote(ctx, slug, req.Option, req.DeviceFingerprint, userAgent)
	if err != nil {
		if err != services.ErrAlreadyVoted && err != services.ErrNotFound {
			log.Error().Err(err).Str("slug", slug).Msg("Failed to record vote")
		}
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, MessageResponse{Message: "Vote recorded"})
}

// SubmitEmbedVote handles POST /api/v1/embed/vote/{slug} — the
// iframe-embeddable, IP-rate-limited variant. Form-encoded, permissive
// embedding headers, and a fingerprint fallback hashed from request
// signals when the client sends none.
func (h *VoteHandler) SubmitEmbedVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	// Allow the response to render inside third-party iframes
	w.Header().Del("X-Frame-Options")
	w.Header().Set("Content-Security-Policy", "frame-ancestors *")

	if err := r.ParseForm(); err != nil {
		respondError(w, "Invalid form body", http.StatusBadRequest)
		return
	}

	optionIndex, err := strconv.Atoi(r.PostFormValue("optionId"))
	if err != nil {
		respondError(w, "Invalid option", http.StatusBadRequest)
		return
	}

	fingerprint := r.PostFormValue("device_fingerprint")
	if fingerprint == "" {
		fingerprint = fallbackFingerprint(middleware.ClientIP(r), r.UserAgent())
	}

	err = h.voteService.RecordVote(ctx, slug, optionIndex, fingerprint, r.UserAgent())
	if err != nil {
		if err != services.ErrAlreadyVoted && err != services.ErrNotFound {
			log.Error().Err(err).Str("slug", slug).Msg("Failed to record embed vote")
		}
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, MessageResponse{Message: "Vote recorded"})
}

// TrackViewRequest represents the request body for view tracking
type TrackViewRequest struct {
	ClashID           string `json:"clash_id"`
	DeviceFingerprint string `json:"device_fingerprint"`
	UserAgent         string `json:"user_agent"`
	Referrer          string `json:"referrer"`
}

// TrackView handles POST /api/v1/track-view — fire-and-forget page-view
// insert
func (h *VoteHandler) TrackView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req TrackViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ClashID == "" {
		respondError(w, "clash_id is required", http.StatusBadRequest)
		return
	}

	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = r.UserAgent()
	}

	err := h.voteService.TrackView(ctx, req.ClashID, req.DeviceFingerprint, req.Referrer, userAgent)
	if err != nil {
		if err != services.ErrNotFound {
			log.Error().Err(err).Str("clash_id", req.ClashID).Msg("Failed to track view")
		}
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// fallbackFingerprint derives a stable identifier from request signals
// for clients that cannot run the fingerprint library (embeds)
func fallbackFingerprint(clientIP, userAgent string) string {
	sum := sha256.Sum256([]byte(clientIP + "|" + userAgent))
	return hex.EncodeToString(sum[:])
}
