// internal/room/registry.go
package room

import (
	"context"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Advisory error messages sent to clients. The frontend displays them
// verbatim, so they stay in pt-BR.
const (
	MsgRoomFull      = "Sala cheia!"
	MsgRoomNotFound  = "Sala não encontrada!"
	MsgAlreadyInRoom = "Você já está em outra sala!"
)

// Journal receives room lifecycle records for an external consumer.
// Implementations must tolerate a nil receiver and must not block for long.
type Journal interface {
	Record(ctx context.Context, event, roomCode, sessionID, nickname string)
}

// Lifecycle event names pushed to the journal.
const (
	EventRoomCreated  = "room_created"
	EventPlayerJoined = "player_joined"
	EventPlayerLeft   = "player_left"
	EventRoomDeleted  = "room_deleted"
)

// Registry owns every active room. One lock wraps each mutation together
// with the enqueue of its broadcast, so clients observe state changes in the
// order they happened and the personal ack always trails the room update.
type Registry struct {
	mu       sync.Mutex
	rooms    map[string]*Room
	sessions map[string]string // session ID -> room code
	journal  Journal
	log      *logrus.Logger
}

// NewRegistry builds an empty registry. journal may be nil to disable
// lifecycle records.
func NewRegistry(logger *logrus.Logger, journal Journal) *Registry {
	return &Registry{
		rooms:    make(map[string]*Room),
		sessions: make(map[string]string),
		journal:  journal,
		log:      logger,
	}
}

// Connect records that a new session exists. No state is kept for a session
// until it joins a room.
func (reg *Registry) Connect(sessionID string) {
	reg.log.Infof("session %s connected", sessionID)
}

// CreateRoom generates a fresh unique code, creates the room owned by the
// session and adds the creator as its first player. The room broadcast is
// sent before the personal room_created ack so the creator's client never
// redirects into a room whose state it has not received yet.
func (reg *Registry) CreateRoom(conn *Connection, nickname string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if prev, ok := reg.sessions[conn.SessionID]; ok {
		reg.log.Warnf("session %s tried to create a room while in room %s", conn.SessionID, prev)
		conn.WriteError(MsgAlreadyInRoom)
		return
	}

	code := reg.generateCode()
	r := newRoom(code, conn.SessionID)
	reg.rooms[code] = r
	r.join(conn, nickname)
	reg.sessions[conn.SessionID] = code

	reg.log.Infof("room %s created by %s (%s)", code, nickname, conn.SessionID)
	reg.record(EventRoomCreated, code, conn.SessionID, nickname)
	reg.record(EventPlayerJoined, code, conn.SessionID, nickname)

	r.broadcast(r.Projection())
	conn.Write(Event{
		"type":     "room_created",
		"roomCode": code,
	})
}

// JoinRoom adds the session to the room with the given code, creating the
// room on the fly when the code is unknown (the share-a-code flow). The
// joiner owns an implicitly created room, so no ownerless rooms exist. A
// full room yields only an error to the requester.
func (reg *Registry) JoinRoom(conn *Connection, roomID, nickname string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if prev, ok := reg.sessions[conn.SessionID]; ok && prev != roomID {
		reg.log.Warnf("session %s tried to join %s while in room %s", conn.SessionID, roomID, prev)
		conn.WriteError(MsgAlreadyInRoom)
		return
	}

	r, exists := reg.rooms[roomID]
	if !exists {
		r = newRoom(roomID, conn.SessionID)
		reg.rooms[roomID] = r
		reg.log.Infof("room %s created implicitly by %s (%s)", roomID, nickname, conn.SessionID)
		reg.record(EventRoomCreated, roomID, conn.SessionID, nickname)
	}

	if len(r.players) >= Capacity {
		conn.WriteError(MsgRoomFull)
		return
	}

	r.join(conn, nickname)
	reg.sessions[conn.SessionID] = roomID
	reg.record(EventPlayerJoined, roomID, conn.SessionID, nickname)

	if r.Status == StatusPlaying {
		reg.log.Infof("room %s: match started", roomID)
	}

	r.broadcast(r.Projection())
	conn.Write(Event{
		"type":   "join_success",
		"roomId": roomID,
	})
}

// GameState sends the current projection of the room to the requester only.
func (reg *Registry) GameState(conn *Connection, roomID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[roomID]
	if !ok {
		reg.log.Warnf("session %s requested state of unknown room %s", conn.SessionID, roomID)
		conn.WriteError(MsgRoomNotFound)
		return
	}
	conn.Write(r.Projection())
}

// LeaveRoom removes the session from the room. An unknown room is a silent
// no-op; when the room exists the leave_success ack is sent whether or not
// the session was still a member.
func (reg *Registry) LeaveRoom(conn *Connection, roomID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[roomID]
	if !ok {
		reg.log.Warnf("session %s tried to leave unknown room %s", conn.SessionID, roomID)
		return
	}

	if p, member := r.players[conn.SessionID]; member {
		reg.log.Infof("%s left room %s", p.Nickname, roomID)
		reg.removeLocked(r, conn.SessionID, p.Nickname)
	}

	conn.Write(Event{
		"type":   "leave_success",
		"roomId": roomID,
	})
}

// Disconnect tears down the session's room membership, if any. The session
// index makes this an O(1) lookup instead of a scan over every room.
func (reg *Registry) Disconnect(sessionID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code, ok := reg.sessions[sessionID]
	if !ok {
		reg.log.Infof("session %s disconnected", sessionID)
		return
	}
	r, ok := reg.rooms[code]
	if !ok {
		delete(reg.sessions, sessionID)
		return
	}

	nickname := ""
	if p := r.players[sessionID]; p != nil {
		nickname = p.Nickname
	}
	reg.log.Infof("%s (%s) disconnected from room %s", nickname, sessionID, code)
	reg.removeLocked(r, sessionID, nickname)
}

// removeLocked removes a session from a room, restores the status invariant
// and deletes the room the instant it becomes empty. Assumes the lock is
// held.
func (reg *Registry) removeLocked(r *Room, sessionID, nickname string) {
	r.leave(sessionID)
	delete(reg.sessions, sessionID)
	reg.record(EventPlayerLeft, r.Code, sessionID, nickname)

	if len(r.players) == 0 {
		delete(reg.rooms, r.Code)
		reg.log.Infof("room %s removed (empty)", r.Code)
		reg.record(EventRoomDeleted, r.Code, "", "")
		return
	}

	r.broadcast(r.Projection())
}

// Rooms returns the projection of every active room, sorted by code. Used
// by the debug listing endpoint.
func (reg *Registry) Rooms() []Event {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	out := make([]Event, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		out = append(out, r.Projection())
	}
	sort.Slice(out, func(i, j int) bool {
		ci, _ := out[i]["roomId"].(string)
		cj, _ := out[j]["roomId"].(string)
		return ci < cj
	})
	return out
}

// record hands a lifecycle event to the journal without blocking the
// critical section.
func (reg *Registry) record(event, roomCode, sessionID, nickname string) {
	if reg.journal == nil {
		return
	}
	go reg.journal.Record(context.Background(), event, roomCode, sessionID, nickname)
}
