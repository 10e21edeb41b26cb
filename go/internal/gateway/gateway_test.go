package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/botornot/go/internal/events"
	"github.com/mcdev12/botornot/go/internal/presence"
)

type harness struct {
	cm       *ConnectionManager
	presence *presence.Registry
	server   *httptest.Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cm := NewConnectionManager(DefaultConnectionConfig())
	pres := presence.NewRegistry(cm)
	svc := NewService(cm, pres, nil)
	go svc.Start(ctx)

	mux := http.NewServeMux()
	svc.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &harness{cm: cm, presence: pres, server: srv}
}

func (h *harness) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg ClientMessage) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

func readEvent(t *testing.T, conn *websocket.Conn) events.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env events.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestGateway_JoinReceivesStatusAndRoomEvents(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t)

	send(t, conn, ClientMessage{Type: ClientMessageJoinRoom, RoomID: "r1", UserID: "A"})

	env := readEvent(t, conn)
	assert.Equal(t, events.TypeStatus, env.Type)
	assert.Equal(t, "r1", env.RoomID)
	assert.JSONEq(t, `{"msg":"A has joined r1."}`, string(env.Data))
	assert.Equal(t, []string{"A"}, h.presence.ExpectedPlayers("r1"))

	require.NoError(t, h.cm.Publish(context.Background(), "r1", events.TypeTimerUpdate, events.TimerUpdatePayload{TimeLeft: 29, Phase: "answer_submission"}))
	env = readEvent(t, conn)
	assert.Equal(t, events.TypeTimerUpdate, env.Type)
	payload, err := env.DecodePayload()
	require.NoError(t, err)
	assert.Equal(t, events.TimerUpdatePayload{TimeLeft: 29, Phase: "answer_submission"}, payload)
}

func TestGateway_EventsStayInTheirRoom(t *testing.T) {
	h := newHarness(t)
	a := h.dial(t)
	b := h.dial(t)

	send(t, a, ClientMessage{Type: ClientMessageJoinRoom, RoomID: "r1", UserID: "A"})
	readEvent(t, a)
	send(t, b, ClientMessage{Type: ClientMessageJoinRoom, RoomID: "r2", UserID: "B"})
	readEvent(t, b)

	require.NoError(t, h.cm.Publish(context.Background(), "r2", events.TypePhaseEnded, events.PhaseEndedPayload{Phase: "answer_submission"}))
	env := readEvent(t, b)
	assert.Equal(t, events.TypePhaseEnded, env.Type)

	require.NoError(t, h.cm.Publish(context.Background(), "r1", events.TypeStatus, events.StatusPayload{Msg: "ping"}))
	env = readEvent(t, a)
	assert.JSONEq(t, `{"msg":"ping"}`, string(env.Data), "r1 must not have seen the r2 event")
}

func TestGateway_LeaveStopsDelivery(t *testing.T) {
	h := newHarness(t)
	stay := h.dial(t)
	leaver := h.dial(t)

	send(t, stay, ClientMessage{Type: ClientMessageJoinRoom, RoomID: "r1", UserID: "A"})
	readEvent(t, stay)
	send(t, leaver, ClientMessage{Type: ClientMessageJoinRoom, RoomID: "r1", UserID: "B"})
	readEvent(t, leaver)
	readEvent(t, stay)

	send(t, leaver, ClientMessage{Type: ClientMessageLeaveRoom, RoomID: "r1", UserID: "B"})
	env := readEvent(t, stay)
	assert.JSONEq(t, `{"msg":"B has left r1."}`, string(env.Data))
	assert.Equal(t, []string{"A"}, h.presence.ExpectedPlayers("r1"))

	require.NoError(t, leaver.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := leaver.ReadMessage()
	assert.Error(t, err, "the leaver must not receive its own leave status")
}

func TestGateway_InvalidMessagesAreIgnored(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	send(t, conn, ClientMessage{Type: ClientMessageJoinRoom, RoomID: "r1"})
	send(t, conn, ClientMessage{Type: "dance", RoomID: "r1", UserID: "A"})
	send(t, conn, ClientMessage{Type: ClientMessageJoinRoom, RoomID: "r1", UserID: "A"})

	env := readEvent(t, conn)
	assert.JSONEq(t, `{"msg":"A has joined r1."}`, string(env.Data))
	assert.Equal(t, []string{"A"}, h.presence.ExpectedPlayers("r1"))
}

func TestGateway_Stats(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t)
	send(t, conn, ClientMessage{Type: ClientMessageJoinRoom, RoomID: "r1", UserID: "A"})
	readEvent(t, conn)

	resp, err := http.Get(h.server.URL + "/ws/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	var stats ConnectionStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 1, stats.TotalConnections)
	assert.Equal(t, 1, stats.ActiveRooms)
	assert.Equal(t, map[string]int{"r1": 1}, stats.RoomConnections)
}

func TestEventConsumer_ProcessMessage(t *testing.T) {
	cm := NewConnectionManager(DefaultConnectionConfig())
	ec := &EventConsumer{connectionManager: cm}

	env, err := events.NewEnvelope("r1", events.TypePhaseEnded, events.PhaseEndedPayload{Phase: "answer_submission"})
	require.NoError(t, err)
	data, err := json.Marshal(env)
	require.NoError(t, err)

	require.NoError(t, ec.processMessage(data))
	select {
	case got := <-cm.broadcastCh:
		assert.Equal(t, env.ID, got.ID)
		assert.Equal(t, "r1", got.RoomID)
	default:
		t.Fatal("event was not queued for broadcast")
	}

	assert.Error(t, ec.processMessage([]byte("garbage")))
	assert.Error(t, ec.processMessage([]byte(`{"id":"x","type":"status","data":{}}`)), "missing room_id")
	assert.Error(t, ec.processMessage([]byte(`{"id":"x","room_id":"r1","type":"mystery","data":{}}`)))
}
