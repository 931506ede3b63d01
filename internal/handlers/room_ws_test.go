// internal/handlers/room_ws_test.go
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newWSServer(t *testing.T) (*httptest.Server, *GameServer) {
	t.Helper()
	logger := newTestLogger()
	gs := NewGameServer(logger, nil)
	srv := httptest.NewServer(RoomWSHandler(logger, gs, []string{"*"}))
	t.Cleanup(srv.Close)
	return srv, gs
}

func dialWS(t *testing.T, ctx context.Context, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	c, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close(websocket.StatusNormalClosure, "test done") })
	return c
}

func sendEvent(t *testing.T, ctx context.Context, c *websocket.Conn, ev map[string]interface{}) {
	t.Helper()
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	require.NoError(t, c.Write(ctx, websocket.MessageText, data))
}

func readEvent(t *testing.T, ctx context.Context, c *websocket.Conn) map[string]interface{} {
	t.Helper()
	_, data, err := c.Read(ctx)
	require.NoError(t, err)
	var ev map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestRoomWSCreateJoinAndDisconnectFlow(t *testing.T) {
	srv, _ := newWSServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c1 := dialWS(t, ctx, srv)

	greeting := readEvent(t, ctx, c1)
	require.Equal(t, "message", greeting["type"])
	assert.NotEmpty(t, greeting["sessionId"])

	// Connectivity smoke test.
	sendEvent(t, ctx, c1, map[string]interface{}{"type": "ping_server", "text": "Olá!"})
	pong := readEvent(t, ctx, c1)
	require.Equal(t, "pong_server", pong["type"])
	assert.Equal(t, "Olá!", pong["text"])

	// Create: room state must arrive before the creation ack.
	sendEvent(t, ctx, c1, map[string]interface{}{"type": "create_room", "nickname": "Ann"})
	update := readEvent(t, ctx, c1)
	require.Equal(t, "update_game", update["type"])
	assert.Equal(t, "waiting", update["status"])
	created := readEvent(t, ctx, c1)
	require.Equal(t, "room_created", created["type"])
	code, ok := created["roomCode"].(string)
	require.True(t, ok)
	require.Len(t, code, 6)

	// Second player joins by code.
	c2 := dialWS(t, ctx, srv)
	readEvent(t, ctx, c2) // greeting
	sendEvent(t, ctx, c2, map[string]interface{}{"type": "join_game", "roomId": code, "nickname": "Bob"})

	update2 := readEvent(t, ctx, c2)
	require.Equal(t, "update_game", update2["type"])
	assert.Equal(t, "playing", update2["status"])
	players, ok := update2["players"].([]interface{})
	require.True(t, ok)
	require.Len(t, players, 2)
	first := players[0].(map[string]interface{})
	assert.Equal(t, "Ann", first["nickname"])
	assert.Equal(t, float64(1000), first["score"])

	success := readEvent(t, ctx, c2)
	require.Equal(t, "join_success", success["type"])
	assert.Equal(t, code, success["roomId"])

	// The creator sees the same broadcast.
	update1 := readEvent(t, ctx, c1)
	require.Equal(t, "update_game", update1["type"])
	assert.Equal(t, "playing", update1["status"])

	// Dropping the first client resets the room to waiting for the second.
	require.NoError(t, c1.Close(websocket.StatusNormalClosure, "bye"))
	update3 := readEvent(t, ctx, c2)
	require.Equal(t, "update_game", update3["type"])
	assert.Equal(t, "waiting", update3["status"])
	players3 := update3["players"].([]interface{})
	require.Len(t, players3, 1)
	assert.Equal(t, "Bob", players3[0].(map[string]interface{})["nickname"])
}

func TestRoomWSStateQueryUnknownRoom(t *testing.T) {
	srv, _ := newWSServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := dialWS(t, ctx, srv)
	readEvent(t, ctx, c) // greeting

	sendEvent(t, ctx, c, map[string]interface{}{"type": "get_game_state", "roomId": "NOPE99"})
	errEv := readEvent(t, ctx, c)
	require.Equal(t, "error", errEv["type"])
	assert.Equal(t, "Sala não encontrada!", errEv["message"])
}

func TestRoomWSAdvisoryErrors(t *testing.T) {
	srv, _ := newWSServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := dialWS(t, ctx, srv)
	readEvent(t, ctx, c) // greeting

	// Unknown event type.
	sendEvent(t, ctx, c, map[string]interface{}{"type": "dance"})
	errEv := readEvent(t, ctx, c)
	require.Equal(t, "error", errEv["type"])
	assert.Contains(t, errEv["message"], "dance")

	// Missing nickname.
	sendEvent(t, ctx, c, map[string]interface{}{"type": "create_room"})
	errEv = readEvent(t, ctx, c)
	require.Equal(t, "error", errEv["type"])

	// Broken JSON.
	require.NoError(t, c.Write(ctx, websocket.MessageText, []byte("{nope")))
	errEv = readEvent(t, ctx, c)
	require.Equal(t, "error", errEv["type"])
}
