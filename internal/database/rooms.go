// internal/database/rooms.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/park/internal/chain"
	"github.com/jason-s-yu/park/internal/game"
	"github.com/jason-s-yu/park/internal/models"
)

const roomColumns = `id, host, players, status, selected_maps, created_at, expires_at, started_at, ended_at, entry_fee`

func (t *pgTx) InsertRoom(ctx context.Context, room *models.Room) error {
	args, err := roomArgs(room)
	if err != nil {
		return err
	}
	q := `INSERT INTO rooms (` + roomColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := t.tx.Exec(ctx, q, args...); err != nil {
		return fmt.Errorf("insert room %s: %w", room.ID, err)
	}
	return nil
}

// GetRoom locks the row for the rest of the transaction.
func (t *pgTx) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1 FOR UPDATE`
	room, err := scanRoom(t.tx.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, game.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get room %s: %w", id, err)
	}
	return room, nil
}

func (t *pgTx) UpdateRoom(ctx context.Context, room *models.Room) error {
	args, err := roomArgs(room)
	if err != nil {
		return err
	}
	q := `
		UPDATE rooms
		SET host = $2, players = $3, status = $4, selected_maps = $5, created_at = $6,
		    expires_at = $7, started_at = $8, ended_at = $9, entry_fee = $10
		WHERE id = $1
	`
	tag, err := t.tx.Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update room %s: %w", room.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return game.ErrRoomNotFound
	}
	return nil
}

func (t *pgTx) ListOverdueRooms(ctx context.Context, now int64) ([]*models.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms WHERE status = $1 AND expires_at < $2 ORDER BY expires_at FOR UPDATE`
	rows, err := t.tx.Query(ctx, q, models.RoomWaiting.String(), now)
	if err != nil {
		return nil, fmt.Errorf("list overdue rooms: %w", err)
	}
	defer rows.Close()

	var out []*models.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

func roomArgs(room *models.Room) ([]interface{}, error) {
	fee, err := toBigint(room.EntryFee)
	if err != nil {
		return nil, err
	}
	players := make([][]byte, len(room.Players))
	for i, p := range room.Players {
		players[i] = p.Bytes()
	}
	maps := []byte(room.SelectedMaps)
	if maps == nil {
		maps = []byte{}
	}
	return []interface{}{
		room.ID, room.Host.Bytes(), players, room.Status.String(), maps,
		room.CreatedAt, room.ExpiresAt, room.StartedAt, room.EndedAt, fee,
	}, nil
}

func scanRoom(row pgx.Row) (*models.Room, error) {
	var (
		room    models.Room
		host    []byte
		players [][]byte
		status  string
		maps    []byte
		fee     int64
	)
	err := row.Scan(&room.ID, &host, &players, &status, &maps,
		&room.CreatedAt, &room.ExpiresAt, &room.StartedAt, &room.EndedAt, &fee)
	if err != nil {
		return nil, err
	}

	if room.Host, err = addressColumn(host); err != nil {
		return nil, err
	}
	room.Players = make([]chain.Address, len(players))
	for i, p := range players {
		if room.Players[i], err = addressColumn(p); err != nil {
			return nil, err
		}
	}
	if room.Status, err = models.ParseRoomStatus(status); err != nil {
		return nil, err
	}
	room.SelectedMaps = models.MapCodes(maps)
	if room.SelectedMaps == nil {
		room.SelectedMaps = models.MapCodes{}
	}
	if room.EntryFee, err = fromBigint(fee); err != nil {
		return nil, err
	}
	return &room, nil
}
