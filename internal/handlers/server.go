// internal/handlers/server.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/duelo-gg/duelo-service/internal/room"
)

// GameServer aggregates the room registry and the dependencies shared by the
// HTTP and websocket handlers.
type GameServer struct {
	Registry *room.Registry
	Logger   *logrus.Logger
}

// NewGameServer builds a GameServer around a fresh registry. journal may be
// nil to disable lifecycle records.
func NewGameServer(logger *logrus.Logger, journal room.Journal) *GameServer {
	return &GameServer{
		Registry: room.NewRegistry(logger, journal),
		Logger:   logger,
	}
}

// PingHandler answers a plain health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("pong"))
}

// ListRoomsHandler returns the projection of every active room. Debugging
// surface only; it exposes nothing the broadcast does not.
func ListRoomsHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(gs.Registry.Rooms()); err != nil {
			gs.Logger.Warnf("failed to encode room list: %v", err)
		}
	}
}
