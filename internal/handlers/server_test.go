// internal/handlers/server_test.go
package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duelo-gg/duelo-service/internal/room"
)

func TestPingHandler(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	PingHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestListRoomsHandler(t *testing.T) {
	gs := NewGameServer(newTestLogger(), nil)

	conn := &room.Connection{SessionID: "s1", OutChan: make(chan room.Event, 16)}
	gs.Registry.CreateRoom(conn, "Ann")

	req := httptest.NewRequest("GET", "/rooms", nil)
	w := httptest.NewRecorder()
	ListRoomsHandler(gs).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var rooms []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, "waiting", rooms[0]["status"])
	players := rooms[0]["players"].([]interface{})
	require.Len(t, players, 1)

	// The listing reuses the client projection: no owner leaks.
	assert.NotContains(t, w.Body.String(), "owner")
}
