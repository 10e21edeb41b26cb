package gateway

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Service is the room gateway: WebSocket connections, room subscriptions and,
// when a bus is configured, the consumer feeding them
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	eventConsumer     *EventConsumer
}

// NewService creates a new gateway service. consumer may be nil when events
// are published straight to the connection manager.
func NewService(cm *ConnectionManager, presence Presence, consumer *EventConsumer) *Service {
	return &Service{
		connectionManager: cm,
		wsHandler:         NewWebSocketHandler(cm, presence),
		eventConsumer:     consumer,
	}
}

// Start runs the connection manager and consumer until ctx is cancelled
func (s *Service) Start(ctx context.Context) error {
	log.Info().Bool("bus", s.eventConsumer != nil).Msg("starting room gateway service")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.connectionManager.Start(ctx)
		return nil
	})
	if s.eventConsumer != nil {
		g.Go(func() error {
			return s.eventConsumer.Start(ctx)
		})
	}

	err := g.Wait()
	log.Info().Msg("room gateway service stopped")
	return err
}

// RegisterRoutes registers the WebSocket HTTP routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	log.Info().Msg("room gateway routes registered")
}

// GetStats returns statistics about the gateway service
func (s *Service) GetStats() ConnectionStats {
	return s.connectionManager.GetConnectionStats()
}
