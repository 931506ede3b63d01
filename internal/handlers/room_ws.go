// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/duelo-gg/duelo-service/internal/middleware"
	"github.com/duelo-gg/duelo-service/internal/room"
)

// RoomWSHandler upgrades the connection, assigns an opaque session ID and
// runs the read/write pumps until the client goes away. Every inbound named
// event is dispatched to the matching registry operation; the registry's
// disconnect path runs once the read pump exits, whatever the reason.
func RoomWSHandler(logger *logrus.Logger, gs *GameServer, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		remoteAddr := r.RemoteAddr

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		sessionID := uuid.NewString()
		middleware.LogWebSocketConnect(logger, remoteAddr, sessionID)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		conn := &room.Connection{
			SessionID: sessionID,
			OutChan:   make(chan room.Event, 16),
		}

		gs.Registry.Connect(sessionID)
		// Connectivity greeting; the frontend logs it and learns its own id.
		conn.Write(room.Event{
			"type":      "message",
			"text":      "Conectado ao servidor!",
			"sessionId": sessionID,
		})

		go writePump(ctx, c, conn, logger)
		readErr := readPump(ctx, c, gs, conn, logger)

		gs.Registry.Disconnect(sessionID)
		middleware.LogWebSocketDisconnect(logger, remoteAddr, sessionID, readErr)
	}
}

// readPump handles incoming frames until the connection closes. Returns nil
// on a normal closure, the read error otherwise.
func readPump(ctx context.Context, c *websocket.Conn, gs *GameServer, conn *room.Connection, logger *logrus.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		typ, msg, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				return nil
			}
			if strings.Contains(err.Error(), "context canceled") {
				return nil
			}
			logger.Warnf("session %s: read error: %v (close status %d)", conn.SessionID, err, closeStatus)
			return err
		}

		if typ != websocket.MessageText {
			logger.Warnf("session %s: ignoring non-text frame type %d", conn.SessionID, typ)
			continue
		}

		var packet map[string]interface{}
		if err := json.Unmarshal(msg, &packet); err != nil {
			logger.Warnf("session %s: invalid json: %v", conn.SessionID, err)
			conn.WriteError("JSON inválido!")
			continue
		}

		dispatch(packet, gs, conn, logger)
	}
}

// dispatch interprets the "type" field and routes to the registry. Missing
// required fields yield an advisory error event and no state change.
func dispatch(packet map[string]interface{}, gs *GameServer, conn *room.Connection, logger *logrus.Logger) {
	action, _ := packet["type"].(string)

	switch action {
	case "create_room":
		nickname, _ := packet["nickname"].(string)
		if nickname == "" {
			conn.WriteError("Apelido inválido!")
			return
		}
		gs.Registry.CreateRoom(conn, nickname)

	case "join_game":
		roomID, _ := packet["roomId"].(string)
		nickname, _ := packet["nickname"].(string)
		if roomID == "" || nickname == "" {
			conn.WriteError("Dados inválidos!")
			return
		}
		gs.Registry.JoinRoom(conn, roomID, nickname)

	case "get_game_state":
		roomID, _ := packet["roomId"].(string)
		if roomID == "" {
			conn.WriteError("Dados inválidos!")
			return
		}
		gs.Registry.GameState(conn, roomID)

	case "leave_game":
		roomID, _ := packet["roomId"].(string)
		if roomID == "" {
			conn.WriteError("Dados inválidos!")
			return
		}
		gs.Registry.LeaveRoom(conn, roomID)

	case "ping_server":
		text, _ := packet["text"].(string)
		conn.Write(room.Event{
			"type": "pong_server",
			"text": text,
		})

	default:
		logger.Warnf("session %s: unknown action %q", conn.SessionID, action)
		conn.WriteError(fmt.Sprintf("Evento desconhecido: %s", action))
	}
}

// writePump drains the session's OutChan back to the websocket and keeps the
// connection alive with periodic pings.
func writePump(ctx context.Context, c *websocket.Conn, conn *room.Connection, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-conn.OutChan:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Warnf("session %s: failed to marshal outgoing event: %v", conn.SessionID, err)
				continue
			}

			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("session %s: websocket write failed: %v", conn.SessionID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("session %s: ping failed: %v, assuming disconnect", conn.SessionID, err)
				return
			}
		}
	}
}
