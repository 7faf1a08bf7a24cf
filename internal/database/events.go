// internal/database/events.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/park/internal/models"
)

// EventSink appends room events to the room_events table.
type EventSink struct {
	pool *pgxpool.Pool
}

func NewEventSink(pool *pgxpool.Pool) *EventSink {
	return &EventSink{pool: pool}
}

// WriteEvents inserts events in one transaction. Events already stored are skipped, so
// a batch may be redelivered safely.
func (s *EventSink) WriteEvents(ctx context.Context, events []models.RoomEvent) error {
	if len(events) == 0 {
		return nil
	}
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			INSERT INTO room_events (id, room_id, kind, actor, amount, room, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO NOTHING
		`
		batch := &pgx.Batch{}
		for _, ev := range events {
			room, err := json.Marshal(ev.Room)
			if err != nil {
				return fmt.Errorf("marshal room of event %s: %w", ev.ID, err)
			}
			amount, err := toBigint(ev.Amount)
			if err != nil {
				return err
			}
			batch.Queue(q, ev.ID, ev.RoomID, string(ev.Kind), ev.Actor.Bytes(), amount, room, ev.Timestamp)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert room events: %w", err)
		}
		return nil
	})
}

// RoomHistory returns the stored events of a room, oldest first.
func (s *EventSink) RoomHistory(ctx context.Context, roomID uuid.UUID) ([]models.RoomEvent, error) {
	q := `SELECT id, kind, actor, amount, room, created_at FROM room_events WHERE room_id = $1 ORDER BY created_at, id`
	rows, err := s.pool.Query(ctx, q, roomID)
	if err != nil {
		return nil, fmt.Errorf("query room events: %w", err)
	}
	defer rows.Close()

	var out []models.RoomEvent
	for rows.Next() {
		var (
			ev     = models.RoomEvent{RoomID: roomID}
			kind   string
			actor  []byte
			amount int64
			room   []byte
		)
		if err := rows.Scan(&ev.ID, &kind, &actor, &amount, &room, &ev.Timestamp); err != nil {
			return nil, err
		}
		ev.Kind = models.EventKind(kind)
		if ev.Actor, err = addressColumn(actor); err != nil {
			return nil, err
		}
		if ev.Amount, err = fromBigint(amount); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(room, &ev.Room); err != nil {
			return nil, fmt.Errorf("decode room of event %s: %w", ev.ID, err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
