// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jason-s-yu/park/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list that room events are pushed onto for the historian.
const DefaultQueueName = "park_room_events"

// ConnectRedis opens a client for addr/db and pings it.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// EventQueue pushes room events onto a Redis list. It satisfies session.Notifier.
type EventQueue struct {
	rdb   *redis.Client
	queue string
}

func NewEventQueue(rdb *redis.Client, queue string) *EventQueue {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &EventQueue{rdb: rdb, queue: queue}
}

// Publish serializes ev to JSON and RPushes it. This is a single network round trip.
func (q *EventQueue) Publish(ctx context.Context, ev models.RoomEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal RoomEvent: %w", err)
	}
	if err := q.rdb.RPush(ctx, q.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", q.queue, err)
	}
	return nil
}

// Queue is the list name events are pushed to.
func (q *EventQueue) Queue() string {
	return q.queue
}
