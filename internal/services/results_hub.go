package services

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ResultsMessage is one frame pushed to clients watching a clash. Each
// frame carries the full refreshed tallies, so a watcher who connects
// mid-poll needs no baseline to render totals.
type ResultsMessage struct {
	Type         string      `json:"type"`
	Slug         string      `json:"slug"`
	OptionIndex  int         `json:"option_index"`
	OptionCounts map[int]int `json:"option_counts"`
	TotalVotes   int         `json:"total_votes"`
}

// ResultsHub fans out vote events to WebSocket clients grouped by clash
// slug.
type ResultsHub struct {
	mu    sync.RWMutex
	rooms map[string]map[*websocket.Conn]struct{}
}

// NewResultsHub creates a new results hub
func NewResultsHub() *ResultsHub {
	return &ResultsHub{
		rooms: make(map[string]map[*websocket.Conn]struct{}),
	}
}

// Subscribe registers a connection for a clash slug
func (h *ResultsHub) Subscribe(slug string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[slug]
	if !ok {
		room = make(map[*websocket.Conn]struct{})
		h.rooms[slug] = room
	}
	room[conn] = struct{}{}

	log.Info().Str("slug", slug).Int("watchers", len(room)).Msg("Results watcher subscribed")
}

// Unsubscribe removes a connection; empty rooms are dropped
func (h *ResultsHub) Unsubscribe(slug string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[slug]
	if !ok {
		return
	}
	delete(room, conn)
	if len(room) == 0 {
		delete(h.rooms, slug)
	}
	conn.Close()
}

// NotifyVote broadcasts refreshed tallies to every watcher of a slug.
// Failed writes drop the connection.
func (h *ResultsHub) NotifyVote(slug string, optionIndex int, counts map[int]int, totalVotes int) {
	data, err := json.Marshal(ResultsMessage{
		Type:         "vote",
		Slug:         slug,
		OptionIndex:  optionIndex,
		OptionCounts: counts,
		TotalVotes:   totalVotes,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal results message")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[slug]
	if !ok {
		return
	}
	for conn := range room {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Warn().Err(err).Str("slug", slug).Msg("Dropping dead results watcher")
			conn.Close()
			delete(room, conn)
		}
	}
	if len(room) == 0 {
		delete(h.rooms, slug)
	}
}

// Watchers reports how many connections watch a slug
func (h *ResultsHub) Watchers(slug string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[slug])
}
