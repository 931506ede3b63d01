// internal/journal/journal.go
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultQueue is the Redis list name room lifecycle records are pushed to.
const DefaultQueue = "duelo_room_events"

// RoomEventRecord is the shape an external consumer reads off the queue.
type RoomEventRecord struct {
	Event     string `json:"event"`
	RoomCode  string `json:"room_code"`
	SessionID string `json:"session_id,omitempty"`
	Nickname  string `json:"nickname,omitempty"`
	Timestamp int64  `json:"ts"`
}

// Journal pushes room lifecycle records onto a Redis list, fire-and-forget.
// Room state itself is never stored here; the queue only feeds offline
// consumers (stats, debugging). A nil *Journal drops everything.
type Journal struct {
	rdb   *redis.Client
	queue string
	log   *logrus.Logger
}

// Connect dials Redis at addr and verifies the connection with a ping.
func Connect(addr, queue string, logger *logrus.Logger) (*Journal, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &Journal{rdb: rdb, queue: queue, log: logger}, nil
}

// Record serializes the event and RPushes it onto the queue. Failures are
// logged and swallowed; the lobby never depends on the journal.
func (j *Journal) Record(ctx context.Context, event, roomCode, sessionID, nickname string) {
	if j == nil {
		return
	}
	rec := RoomEventRecord{
		Event:     event,
		RoomCode:  roomCode,
		SessionID: sessionID,
		Nickname:  nickname,
		Timestamp: time.Now().Unix(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		j.log.Warnf("journal: failed to marshal %s record: %v", event, err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := j.rdb.RPush(ctx, j.queue, data).Err(); err != nil {
		j.log.Warnf("journal: failed to push %s record: %v", event, err)
	}
}

// Close releases the underlying Redis client.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.rdb.Close()
}
