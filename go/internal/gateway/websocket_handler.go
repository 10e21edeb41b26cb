package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Presence is what the WebSocket handler needs from room presence tracking
type Presence interface {
	Join(ctx context.Context, roomID, playerID string)
	Leave(ctx context.Context, roomID, playerID string)
}

// WebSocketHandler handles WebSocket upgrade requests and room commands
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	presence          Presence
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cm *ConnectionManager, presence Presence) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
		presence:          presence,
	}
}

// HandleConnection handles GET /ws
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	if _, err := h.connectionManager.UpgradeConnection(w, r, h.handleClientMessage); err != nil {
		// The upgrader has already replied to the client.
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
	}
}

// handleClientMessage runs join_room and leave_room commands. The joiner
// receives its own join status; the leaver does not receive its leave status.
func (h *WebSocketHandler) handleClientMessage(c *Connection, message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Debug().Err(err).Str("connection_id", c.ID).Msg("ignoring malformed client message")
		return
	}
	if !msg.Valid() {
		log.Debug().Str("connection_id", c.ID).Str("type", string(msg.Type)).Msg("ignoring client message without room_id or user_id")
		return
	}

	ctx := context.Background()
	switch msg.Type {
	case ClientMessageJoinRoom:
		h.connectionManager.Subscribe(c, msg.RoomID, msg.UserID)
		h.presence.Join(ctx, msg.RoomID, msg.UserID)
	case ClientMessageLeaveRoom:
		h.connectionManager.Unsubscribe(c, msg.RoomID)
		h.presence.Leave(ctx, msg.RoomID, msg.UserID)
	default:
		log.Debug().Str("connection_id", c.ID).Str("type", string(msg.Type)).Msg("ignoring unknown client message")
	}
}

// HandleConnectionStats handles GET /ws/stats
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.connectionManager.GetConnectionStats()); err != nil {
		log.Error().Err(err).Msg("failed to encode connection stats")
	}
}

// RegisterRoutes registers WebSocket routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", h.HandleConnection)
	mux.HandleFunc("/ws/stats", h.HandleConnectionStats)
}
