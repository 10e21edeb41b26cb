package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/botornot/go/internal/bus"
	"github.com/mcdev12/botornot/go/internal/config"
	"github.com/mcdev12/botornot/go/internal/events"
	"github.com/mcdev12/botornot/go/internal/game"
	"github.com/mcdev12/botornot/go/internal/gateway"
	"github.com/mcdev12/botornot/go/internal/phasetimer"
	"github.com/mcdev12/botornot/go/internal/presence"
	"github.com/mcdev12/botornot/go/internal/prompts"
	"github.com/mcdev12/botornot/go/internal/synthetic"
)

type Services struct {
	Game    *game.Service
	Gateway *gateway.Service
	Timers  *phasetimer.Registry
	// Bus is nil when NATS is not configured
	Bus *bus.JetStreamPublisher
}

func setupServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	// Prompt catalog → publisher → timers/presence → game App → HTTP service

	catalog, err := prompts.Load(cfg.Prompts.File)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}

	cm := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())

	var (
		publisher events.Publisher = cm
		consumer  *gateway.EventConsumer
		jsPub     *bus.JetStreamPublisher
	)
	if cfg.NATS.URL != "" {
		busCfg := bus.DefaultJetStreamConfig()
		busCfg.URL = cfg.NATS.URL
		busCfg.StreamName = cfg.NATS.StreamName
		busCfg.SubjectPrefix = cfg.NATS.SubjectPrefix

		jsPub, err = bus.NewJetStreamPublisher(busCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream publisher: %w", err)
		}

		consumerCfg := gateway.DefaultJetStreamConsumerConfig()
		consumerCfg.StreamName = busCfg.StreamName
		consumerCfg.SubjectFilter = busCfg.SubjectFilter()
		consumer, err = gateway.NewEventConsumer(ctx, cm, jsPub.JetStream(), consumerCfg)
		if err != nil {
			jsPub.Close()
			return nil, fmt.Errorf("failed to create event consumer: %w", err)
		}
		publisher = jsPub
	}

	timers := phasetimer.NewRegistry(publisher, phasetimer.WithTickInterval(cfg.Game.TickInterval))
	pres := presence.NewRegistry(publisher)

	app := game.NewApp(game.Config{
		MaxRounds:           cfg.Game.MaxRounds,
		AnswerPhaseDuration: cfg.Game.AnswerPhase,
	}, timers, pres, catalog, synthetic.ReversePrompt{})

	log.Info().
		Int("prompts", catalog.Len()).
		Bool("nats", jsPub != nil).
		Msg("services initialized")

	return &Services{
		Game:    game.NewService(app),
		Gateway: gateway.NewService(cm, pres, consumer),
		Timers:  timers,
		Bus:     jsPub,
	}, nil
}

// Close cancels running timers and flushes the bus.
func (s *Services) Close() {
	s.Timers.Shutdown()
	if s.Bus != nil {
		if err := s.Bus.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close JetStream publisher")
		}
	}
}
