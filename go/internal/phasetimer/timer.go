package phasetimer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/botornot/go/internal/events"
	"github.com/rs/zerolog/log"
)

// State is the lifecycle state of a Timer. Running is the only non-terminal state.
type State int32

const (
	StateRunning State = iota
	StateExpired
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateExpired:
		return "expired"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Timer counts down one phase of one room. It publishes a timer_update on
// start and on every tick, and a phase_ended exactly once when the deadline
// passes without a Stop.
type Timer struct {
	roomID   string
	phase    string
	deadline time.Time
	registry *Registry
	ticker   clockwork.Ticker

	// state only moves out of Running under emitMu, so a tick that observed
	// Running finishes its publish before Stop can return.
	state  atomic.Int32
	emitMu sync.Mutex
	stopCh chan struct{}
	done   chan struct{}
}

func (t *Timer) RoomID() string      { return t.roomID }
func (t *Timer) Phase() string       { return t.phase }
func (t *Timer) Deadline() time.Time { return t.deadline }
func (t *Timer) State() State        { return State(t.state.Load()) }

// Done is closed once the timer's goroutine has exited.
func (t *Timer) Done() <-chan struct{} { return t.done }

// Remaining returns the whole seconds left before the deadline, never negative.
func (t *Timer) Remaining(now time.Time) int {
	left := t.deadline.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(left / time.Second)
}

// Stop cancels the timer. It returns true only for the call that moved the
// timer out of Running; that caller owns publishing the phase_ended event.
func (t *Timer) Stop() bool {
	t.emitMu.Lock()
	defer t.emitMu.Unlock()

	if !t.state.CompareAndSwap(int32(StateRunning), int32(StateCancelled)) {
		return false
	}
	close(t.stopCh)
	return true
}

func (t *Timer) run() {
	defer close(t.done)
	defer t.ticker.Stop()

	if !t.tick() {
		return
	}
	for {
		select {
		case <-t.stopCh:
			log.Debug().Str("room_id", t.roomID).Str("phase", t.phase).Msg("phase timer stopped")
			return
		case <-t.ticker.Chan():
			if !t.tick() {
				return
			}
		}
	}
}

// tick publishes progress, or expires the timer once the deadline is reached.
// It returns false when the loop should exit.
func (t *Timer) tick() bool {
	t.emitMu.Lock()
	defer t.emitMu.Unlock()

	if t.State() != StateRunning {
		return false
	}

	now := t.registry.clock.Now()
	if !now.Before(t.deadline) {
		if !t.state.CompareAndSwap(int32(StateRunning), int32(StateExpired)) {
			return false
		}
		t.registry.remove(t)
		log.Info().
			Str("room_id", t.roomID).
			Str("phase", t.phase).
			Msg("phase timer expired")
		t.registry.publishEnded(t)
		return false
	}

	err := t.registry.publisher.Publish(context.Background(), t.roomID, events.TypeTimerUpdate, events.TimerUpdatePayload{
		TimeLeft: t.Remaining(now),
		Phase:    t.phase,
	})
	if err != nil {
		log.Warn().Err(err).Str("room_id", t.roomID).Msg("failed to publish timer update")
	}
	return true
}
