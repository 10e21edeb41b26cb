package gateway

// ClientMessageType is the type of a message sent by a WebSocket client
type ClientMessageType string

const (
	ClientMessageJoinRoom  ClientMessageType = "join_room"
	ClientMessageLeaveRoom ClientMessageType = "leave_room"
)

// ClientMessage is a command sent by a client over its WebSocket connection
type ClientMessage struct {
	Type   ClientMessageType `json:"type"`
	RoomID string            `json:"room_id"`
	UserID string            `json:"user_id"`
}

// Valid reports whether the message names both a room and a user. Messages
// missing either are ignored.
func (m ClientMessage) Valid() bool {
	return m.RoomID != "" && m.UserID != ""
}
