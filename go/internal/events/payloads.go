package events

import (
	"context"
)

// Event payload types that are shared between the game core and the gateway

// Type names a push event delivered to room subscribers.
type Type string

const (
	TypeStatus      Type = "status"
	TypeTimerUpdate Type = "timer_update"
	TypePhaseEnded  Type = "phase_ended"
)

// StatusPayload is the payload for a status event (join/leave notices)
type StatusPayload struct {
	Msg string `json:"msg"`
}

// TimerUpdatePayload is the payload for a timer_update event
type TimerUpdatePayload struct {
	TimeLeft int    `json:"time_left"`
	Phase    string `json:"phase"`
}

// PhaseEndedPayload is the payload for a phase_ended event
type PhaseEndedPayload struct {
	Phase string `json:"phase"`
}

// Publisher fans an event out to everyone subscribed to a room.
// Implementations must not block on slow subscribers.
type Publisher interface {
	Publish(ctx context.Context, roomID string, eventType Type, payload any) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Type, any) error { return nil }
