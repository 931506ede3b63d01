// internal/room/room.go
package room

// Status is the lifecycle state of a room.
type Status string

const (
	StatusWaiting Status = "waiting"
	StatusPlaying Status = "playing"
)

// Character is reserved for the match logic that will sit on top of the
// lobby. It stays empty in this core and is never sent to clients.
type Character string

const (
	// Capacity is the fixed player limit of a room.
	Capacity = 2
	// InitialScore is the score every player starts with.
	InitialScore = 1000
)

// Player is one session's entry in a room roster.
type Player struct {
	Nickname  string
	Score     int
	Character Character
}

// Room is a capacity-2 lobby keyed by its share code. All mutation happens
// under the owning Registry's lock.
type Room struct {
	Code   string
	Status Status
	Owner  string

	players map[string]*Player
	conns   map[string]*Connection

	// order preserves join order for the state projection.
	order []string
}

func newRoom(code, owner string) *Room {
	return &Room{
		Code:    code,
		Status:  StatusWaiting,
		Owner:   owner,
		players: make(map[string]*Player),
		conns:   make(map[string]*Connection),
	}
}

// join adds (or overwrites) the session's player entry and wires its
// connection into the broadcast group.
func (r *Room) join(conn *Connection, nickname string) {
	if _, ok := r.players[conn.SessionID]; !ok {
		r.order = append(r.order, conn.SessionID)
	}
	r.players[conn.SessionID] = &Player{Nickname: nickname, Score: InitialScore}
	r.conns[conn.SessionID] = conn
	r.syncStatus()
}

// leave removes the session from the roster and the broadcast group.
func (r *Room) leave(sessionID string) {
	delete(r.players, sessionID)
	delete(r.conns, sessionID)
	for i, sid := range r.order {
		if sid == sessionID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.syncStatus()
}

// syncStatus restores the invariant: playing iff the room is full.
func (r *Room) syncStatus() {
	if len(r.players) == Capacity {
		r.Status = StatusPlaying
	} else {
		r.Status = StatusWaiting
	}
}

// Projection builds the client-visible view of the room, in join order.
// Character and Owner are deliberately left out so a client cannot inspect
// unrevealed state.
func (r *Room) Projection() Event {
	players := make([]Event, 0, len(r.order))
	for _, sid := range r.order {
		p, ok := r.players[sid]
		if !ok {
			continue
		}
		players = append(players, Event{
			"id":       sid,
			"nickname": p.Nickname,
			"score":    p.Score,
		})
	}
	return Event{
		"type":    "update_game",
		"roomId":  r.Code,
		"status":  string(r.Status),
		"players": players,
	}
}

// broadcast enqueues an event for every connection in the room.
func (r *Room) broadcast(ev Event) {
	for _, conn := range r.conns {
		conn.Write(ev)
	}
}
