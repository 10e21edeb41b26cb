package phasetimer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/botornot/go/internal/events"
	"github.com/rs/zerolog/log"
)

// ErrTimerActive is returned by Start when the room already has a registered
// timer. The existing timer is returned alongside it and keeps running.
var ErrTimerActive = errors.New("phase timer already active for room")

// DefaultTickInterval is how often running timers publish progress.
const DefaultTickInterval = time.Second

// Clock is the interface we use for time operations.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) clockwork.Ticker
}

// Snapshot is a read-only view of a room's running timer.
type Snapshot struct {
	RoomID   string
	Phase    string
	Deadline time.Time
}

// Registry owns the active timer of every room. At most one timer is
// registered per room; the map has its own lock, separate from any room state.
type Registry struct {
	clock     Clock
	publisher events.Publisher
	interval  time.Duration

	active   map[string]*Timer
	activeMu sync.Mutex
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the real clock.
func WithClock(c Clock) Option {
	return func(r *Registry) { r.clock = c }
}

// WithTickInterval overrides DefaultTickInterval.
func WithTickInterval(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.interval = d
		}
	}
}

// NewRegistry creates an empty timer registry publishing through publisher.
func NewRegistry(publisher events.Publisher, opts ...Option) *Registry {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	r := &Registry{
		clock:     clockwork.NewRealClock(),
		publisher: publisher,
		interval:  DefaultTickInterval,
		active:    make(map[string]*Timer),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Now reads the registry clock; deadline comparisons must use the same clock.
func (r *Registry) Now() time.Time {
	return r.clock.Now()
}

// Start registers and starts a timer for the room. If one is already
// registered nothing new is started: the existing timer is returned with
// ErrTimerActive so the caller knows no fresh countdown began.
func (r *Registry) Start(roomID, phase string, d time.Duration) (*Timer, error) {
	r.activeMu.Lock()
	if existing, ok := r.active[roomID]; ok {
		r.activeMu.Unlock()
		log.Debug().
			Str("room_id", roomID).
			Str("phase", phase).
			Str("active_phase", existing.phase).
			Msg("skipping timer start - room already has an active timer")
		return existing, ErrTimerActive
	}
	t := r.newTimer(roomID, phase, d)
	r.active[roomID] = t
	r.activeMu.Unlock()

	r.launch(t, d)
	return t, nil
}

// Replace atomically swaps in a new timer for the room. A replaced timer that
// was still running gets its single phase_ended published here.
func (r *Registry) Replace(roomID, phase string, d time.Duration) *Timer {
	r.activeMu.Lock()
	previous := r.active[roomID]
	t := r.newTimer(roomID, phase, d)
	r.active[roomID] = t
	r.activeMu.Unlock()

	if previous != nil && previous.Stop() {
		log.Debug().Str("room_id", roomID).Str("phase", previous.phase).Msg("replaced existing timer")
		r.publishEnded(previous)
	}

	r.launch(t, d)
	return t
}

// End terminates the room's timer early and publishes phase_ended. It returns
// false when there was no running timer or natural expiry got there first; in
// both cases nothing is published.
func (r *Registry) End(roomID string) bool {
	r.activeMu.Lock()
	t, ok := r.active[roomID]
	if ok {
		delete(r.active, roomID)
	}
	r.activeMu.Unlock()

	if !ok || !t.Stop() {
		return false
	}

	log.Info().Str("room_id", roomID).Str("phase", t.phase).Msg("phase ended early")
	r.publishEnded(t)
	return true
}

// Active returns the room's running timer, if any.
func (r *Registry) Active(roomID string) (Snapshot, bool) {
	r.activeMu.Lock()
	t, ok := r.active[roomID]
	r.activeMu.Unlock()

	if !ok || t.State() != StateRunning {
		return Snapshot{}, false
	}
	return Snapshot{RoomID: t.roomID, Phase: t.phase, Deadline: t.deadline}, true
}

// Count returns the number of registered timers.
func (r *Registry) Count() int {
	r.activeMu.Lock()
	defer r.activeMu.Unlock()
	return len(r.active)
}

// Shutdown stops every registered timer without publishing phase_ended.
func (r *Registry) Shutdown() {
	r.activeMu.Lock()
	timers := make([]*Timer, 0, len(r.active))
	for roomID, t := range r.active {
		timers = append(timers, t)
		delete(r.active, roomID)
	}
	r.activeMu.Unlock()

	for _, t := range timers {
		t.Stop()
		log.Debug().Str("room_id", t.roomID).Msg("cancelled timer on shutdown")
	}
}

func (r *Registry) newTimer(roomID, phase string, d time.Duration) *Timer {
	return &Timer{
		roomID:   roomID,
		phase:    phase,
		deadline: r.clock.Now().Add(d),
		registry: r,
		ticker:   r.clock.NewTicker(r.interval),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (r *Registry) launch(t *Timer, d time.Duration) {
	go t.run()
	log.Debug().
		Str("room_id", t.roomID).
		Str("phase", t.phase).
		Time("deadline", t.deadline).
		Dur("duration", d).
		Msg("started phase timer")
}

// remove deregisters t if it is still the room's registered timer.
func (r *Registry) remove(t *Timer) {
	r.activeMu.Lock()
	defer r.activeMu.Unlock()
	if r.active[t.roomID] == t {
		delete(r.active, t.roomID)
	}
}

func (r *Registry) publishEnded(t *Timer) {
	err := r.publisher.Publish(context.Background(), t.roomID, events.TypePhaseEnded, events.PhaseEndedPayload{
		Phase: t.phase,
	})
	if err != nil {
		log.Warn().Err(err).Str("room_id", t.roomID).Msg("failed to publish phase ended")
	}
}
