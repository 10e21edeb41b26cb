package presence

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/mcdev12/botornot/go/internal/events"
	"github.com/rs/zerolog/log"
)

// Registry tracks which players are joined to each room. The set of joined
// players is who must answer before a submission phase can end early.
type Registry struct {
	publisher events.Publisher

	rooms map[string]*members
	mu    sync.RWMutex
}

type members struct {
	mu    sync.Mutex
	order []string
}

// NewRegistry creates an empty presence registry.
func NewRegistry(publisher events.Publisher) *Registry {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Registry{
		publisher: publisher,
		rooms:     make(map[string]*members),
	}
}

// Join adds the player to the room. Joining twice is a no-op apart from the
// status event.
func (r *Registry) Join(ctx context.Context, roomID, playerID string) {
	m := r.room(roomID, true)

	m.mu.Lock()
	added := !slices.Contains(m.order, playerID)
	if added {
		m.order = append(m.order, playerID)
	}
	count := len(m.order)
	m.mu.Unlock()

	log.Info().
		Str("room_id", roomID).
		Str("player_id", playerID).
		Bool("added", added).
		Int("players", count).
		Msg("player joined room")

	r.status(ctx, roomID, fmt.Sprintf("%s has joined %s.", playerID, roomID))
}

// Leave removes the player from the room. Leaving a room the player is not in
// is a no-op apart from the status event.
func (r *Registry) Leave(ctx context.Context, roomID, playerID string) {
	if m := r.room(roomID, false); m != nil {
		m.mu.Lock()
		if i := slices.Index(m.order, playerID); i >= 0 {
			m.order = slices.Delete(m.order, i, i+1)
		}
		count := len(m.order)
		m.mu.Unlock()

		log.Info().
			Str("room_id", roomID).
			Str("player_id", playerID).
			Int("players", count).
			Msg("player left room")
	}

	r.status(ctx, roomID, fmt.Sprintf("%s has left %s.", playerID, roomID))
}

// ExpectedPlayers returns the room's joined players in join order.
func (r *Registry) ExpectedPlayers(roomID string) []string {
	m := r.room(roomID, false)
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.order)
}

func (r *Registry) room(roomID string, create bool) *members {
	r.mu.RLock()
	m, ok := r.rooms[roomID]
	r.mu.RUnlock()
	if ok || !create {
		return m
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok = r.rooms[roomID]; !ok {
		m = &members{}
		r.rooms[roomID] = m
	}
	return m
}

func (r *Registry) status(ctx context.Context, roomID, msg string) {
	if err := r.publisher.Publish(ctx, roomID, events.TypeStatus, events.StatusPayload{Msg: msg}); err != nil {
		log.Warn().Err(err).Str("room_id", roomID).Msg("failed to publish status")
	}
}
