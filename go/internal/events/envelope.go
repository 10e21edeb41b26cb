package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope is the wire form of every pushed event, both on WebSocket
// connections and on the message bus.
type Envelope struct {
	ID        string          `json:"id"`        // Event UUID
	RoomID    string          `json:"room_id"`   // Room the event belongs to
	Type      Type            `json:"type"`      // Event type
	Timestamp time.Time       `json:"timestamp"` // Event creation time
	Data      json.RawMessage `json:"data"`      // Event-specific payload
}

// NewEnvelope wraps payload for delivery to a room.
func NewEnvelope(roomID string, eventType Type, payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Envelope{
		ID:        uuid.New().String(),
		RoomID:    roomID,
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}, nil
}

// DecodePayload parses the envelope data into the payload struct for its type.
func (e *Envelope) DecodePayload() (any, error) {
	switch e.Type {
	case TypeStatus:
		var payload StatusPayload
		if err := json.Unmarshal(e.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case TypeTimerUpdate:
		var payload TimerUpdatePayload
		if err := json.Unmarshal(e.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case TypePhaseEnded:
		var payload PhaseEndedPayload
		if err := json.Unmarshal(e.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	default:
		return nil, fmt.Errorf("unknown event type: %s", e.Type)
	}
}
