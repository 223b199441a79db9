package handlers

import (
	"net/http"

	"clsh-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Results frames are public, same as the voting page
	},
}

// WebSocketHandler streams live vote deltas for a clash to its watchers
type WebSocketHandler struct {
	hub          *services.ResultsHub
	clashService *services.ClashService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.ResultsHub, clashService *services.ClashService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:          hub,
		clashService: clashService,
	}
}

// HandleResults handles GET /ws/results?slug={slug}
func (h *WebSocketHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		respondError(w, "slug required", http.StatusBadRequest)
		return
	}

	// Reject unknown slugs before upgrading
	if _, err := h.clashService.GetPublicBySlug(r.Context(), slug); err != nil {
		respondServiceError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Subscribe(slug, conn)
	defer h.hub.Unsubscribe(slug, conn)

	// Drain client frames until the connection closes; watchers only receive
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
