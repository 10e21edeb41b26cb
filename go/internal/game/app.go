package game

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/botornot/go/internal/models"
	"github.com/mcdev12/botornot/go/internal/phasetimer"
	"github.com/mcdev12/botornot/go/internal/synthetic"
)

const (
	// PhaseAnswerSubmission is the only timed phase of a round.
	PhaseAnswerSubmission = "answer_submission"

	// MinAnswerWords is the minimum number of whitespace-separated words in an answer.
	MinAnswerWords = 5

	DefaultMaxRounds           = 5
	DefaultAnswerPhaseDuration = 30 * time.Second
)

// TimerRegistry defines what the app layer needs from the phase timer registry
type TimerRegistry interface {
	Replace(roomID, phase string, d time.Duration) *phasetimer.Timer
	End(roomID string) bool
	Active(roomID string) (phasetimer.Snapshot, bool)
	Now() time.Time
}

// PresenceRegistry defines what the app layer needs from room presence
type PresenceRegistry interface {
	ExpectedPlayers(roomID string) []string
}

// PromptSource provides the full prompt catalog
type PromptSource interface {
	All() []string
}

// Config holds the tunable game rules
type Config struct {
	MaxRounds           int
	AnswerPhaseDuration time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxRounds:           DefaultMaxRounds,
		AnswerPhaseDuration: DefaultAnswerPhaseDuration,
	}
}

type room struct {
	mu    sync.Mutex
	state *gameState
}

// App handles room, round and scoring logic. Every operation holds the
// room's lock for its whole critical section.
type App struct {
	config    Config
	timers    TimerRegistry
	presence  PresenceRegistry
	prompts   PromptSource
	generator synthetic.Generator

	rooms   map[string]*room
	roomsMu sync.RWMutex
}

// NewApp creates a new game App
func NewApp(config Config, timers TimerRegistry, presence PresenceRegistry, prompts PromptSource, generator synthetic.Generator) *App {
	if config.MaxRounds <= 0 {
		config.MaxRounds = DefaultMaxRounds
	}
	if config.AnswerPhaseDuration <= 0 {
		config.AnswerPhaseDuration = DefaultAnswerPhaseDuration
	}
	return &App{
		config:    config,
		timers:    timers,
		presence:  presence,
		prompts:   prompts,
		generator: generator,
		rooms:     make(map[string]*room),
	}
}

// StartGame creates a fresh game for the room, discarding any previous one,
// and starts the answer submission timer.
func (a *App) StartGame(ctx context.Context, roomID string) (*StartResult, error) {
	if err := (StartGameRequest{RoomID: roomID}).Validate(); err != nil {
		return nil, err
	}

	r := a.getOrCreateRoom(roomID)
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = newGameState(a.config.MaxRounds, a.prompts.All())
	a.timers.Replace(roomID, PhaseAnswerSubmission, a.config.AnswerPhaseDuration)

	log.Info().
		Str("room_id", roomID).
		Int("max_rounds", a.config.MaxRounds).
		Dur("answer_phase", a.config.AnswerPhaseDuration).
		Msg("game started")

	return &StartResult{RoomID: roomID, MaxRounds: a.config.MaxRounds}, nil
}

// GetCurrentPrompt returns the round's prompt, drawing one on first request.
func (a *App) GetCurrentPrompt(ctx context.Context, roomID string) (*PromptResult, error) {
	var res *PromptResult
	err := a.withRoom(roomID, func(g *gameState) error {
		if g.gameOver() {
			res = &PromptResult{GameOver: true, Scores: g.scoresCopy()}
			return nil
		}
		if g.currentPrompt == "" {
			g.drawPrompt(a.prompts.All())
			log.Debug().Str("room_id", roomID).Int("round", g.round).Msg("prompt drawn")
		}
		res = &PromptResult{Round: g.round, Prompt: g.currentPrompt, MaxRounds: g.maxRounds}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// SubmitAnswer stores a player's answer together with its synthetic
// counterpart. When every expected player has answered the submission phase
// is ended early.
func (a *App) SubmitAnswer(ctx context.Context, roomID, playerID, text string) (*SubmitAnswerResult, error) {
	req := SubmitAnswerRequest{RoomID: roomID, UserID: playerID, Answer: text}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var res *SubmitAnswerResult
	err := a.withRoom(roomID, func(g *gameState) error {
		if len(strings.Fields(text)) < MinAnswerWords {
			return validationError(msgAnswerTooShort)
		}

		snap, ok := a.timers.Active(roomID)
		if !ok || snap.Phase != PhaseAnswerSubmission {
			return phaseClosedError(msgPhaseEnded)
		}
		if a.timers.Now().After(snap.Deadline) {
			return phaseClosedError(msgTimeElapsed)
		}
		if g.currentPrompt == "" {
			return notFoundError(msgNoPrompt)
		}

		synth, err := a.generator.Generate(ctx, playerID, g.currentPrompt)
		if err != nil {
			return fmt.Errorf("failed to generate synthetic answer: %w", err)
		}
		g.recordAnswer(playerID, text, synth)
		res = &SubmitAnswerResult{PlayerID: playerID, SyntheticAnswer: synth}

		if g.allAnswered(a.presence.ExpectedPlayers(roomID)) {
			res.PhaseEnded = a.timers.End(roomID)
			if res.PhaseEnded {
				log.Info().
					Str("room_id", roomID).
					Int("round", g.round).
					Int("answers", len(g.realAnswers)).
					Msg("all expected players answered, phase ended early")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug().Str("room_id", roomID).Str("user_id", playerID).Msg("answer recorded")
	return res, nil
}

// GetAnswers returns every real and synthetic answer of the round in a fresh
// random order.
func (a *App) GetAnswers(ctx context.Context, roomID string) ([]models.Answer, error) {
	var answers []models.Answer
	err := a.withRoom(roomID, func(g *gameState) error {
		answers = g.answers()
		return nil
	})
	if err != nil {
		return nil, err
	}
	rand.Shuffle(len(answers), func(i, j int) {
		answers[i], answers[j] = answers[j], answers[i]
	})
	return answers, nil
}

// SubmitGuess records a guesser's claim that an answer is AI or human and
// updates their score and stats.
func (a *App) SubmitGuess(ctx context.Context, roomID, guesserID, answerID, claimedType string) (*GuessResult, error) {
	req := SubmitGuessRequest{RoomID: roomID, GuessingUser: guesserID, GuessedID: answerID, GuessType: claimedType}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var res *GuessResult
	err := a.withRoom(roomID, func(g *gameState) error {
		correct := g.recordGuess(guesserID, answerID, claimedType)
		res = &GuessResult{Correct: correct, Scores: g.scoresCopy()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("room_id", roomID).
		Str("guessing_user", guesserID).
		Str("guessed_id", answerID).
		Bool("correct", res.Correct).
		Msg("guess recorded")
	return res, nil
}

// AdvanceRound moves the room to its next round and restarts the submission
// timer. At the final round nothing changes and the scores are returned.
func (a *App) AdvanceRound(ctx context.Context, roomID string) (*AdvanceResult, error) {
	var res *AdvanceResult
	err := a.withRoom(roomID, func(g *gameState) error {
		if g.round >= g.maxRounds {
			res = &AdvanceResult{Round: g.round, MaxReached: true, Scores: g.scoresCopy()}
			return nil
		}
		g.advance()
		a.timers.Replace(roomID, PhaseAnswerSubmission, a.config.AnswerPhaseDuration)
		res = &AdvanceResult{Round: g.round}
		log.Info().Str("room_id", roomID).Int("round", g.round).Msg("advanced round")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// FinalSummary returns the leaderboard and awards.
func (a *App) FinalSummary(ctx context.Context, roomID string) (*Summary, error) {
	var res Summary
	err := a.withRoom(roomID, func(g *gameState) error {
		res = g.summary()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// GetState returns a snapshot of the room for clients that (re)connect
// mid-round.
func (a *App) GetState(ctx context.Context, roomID string) (*RoomState, error) {
	var res *RoomState
	err := a.withRoom(roomID, func(g *gameState) error {
		res = &RoomState{
			RoomID:          roomID,
			Round:           g.round,
			MaxRounds:       g.maxRounds,
			Prompt:          g.currentPrompt,
			Answered:        append([]string{}, g.answerOrder...),
			ExpectedPlayers: a.presence.ExpectedPlayers(roomID),
			Scores:          g.scoresCopy(),
		}
		if snap, ok := a.timers.Active(roomID); ok {
			remaining := int(max(snap.Deadline.Sub(a.timers.Now()), 0) / time.Second)
			res.Phase = snap.Phase
			res.TimeRemaining = &remaining
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (a *App) getOrCreateRoom(roomID string) *room {
	a.roomsMu.RLock()
	r, ok := a.rooms[roomID]
	a.roomsMu.RUnlock()
	if ok {
		return r
	}

	a.roomsMu.Lock()
	defer a.roomsMu.Unlock()
	if r, ok = a.rooms[roomID]; !ok {
		r = &room{}
		a.rooms[roomID] = r
	}
	return r
}

// withRoom runs fn with the room's lock held. Unknown rooms, and rooms whose
// first StartGame has not finished yet, are reported as not found.
func (a *App) withRoom(roomID string, fn func(g *gameState) error) error {
	a.roomsMu.RLock()
	r, ok := a.rooms[roomID]
	a.roomsMu.RUnlock()
	if !ok {
		return notFoundError(msgInvalidRoom)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == nil {
		return notFoundError(msgInvalidRoom)
	}
	return fn(r.state)
}
