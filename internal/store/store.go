// internal/store/store.go
package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jason-s-yu/park/internal/ledger"
	"github.com/jason-s-yu/park/internal/models"
)

// RoomRepository reads and writes rooms inside one transaction.
// GetRoom returns game.ErrRoomNotFound for unknown ids.
type RoomRepository interface {
	InsertRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
	UpdateRoom(ctx context.Context, room *models.Room) error
	// ListOverdueRooms returns Waiting rooms whose expires_at is before now (unix seconds).
	ListOverdueRooms(ctx context.Context, now int64) ([]*models.Room, error)
}

// RegistryRepository holds the single GameRegistry record.
// GetRegistry returns game.ErrNotInitialized before InsertRegistry; a second
// InsertRegistry returns game.ErrAlreadyInitialized.
type RegistryRepository interface {
	GetRegistry(ctx context.Context) (*models.GameRegistry, error)
	InsertRegistry(ctx context.Context, reg *models.GameRegistry) error
	UpdateRegistry(ctx context.Context, reg *models.GameRegistry) error
}

// Tx is one serializable unit of work. Ledger calls made through Ledger() commit or roll
// back together with the room and registry writes.
type Tx interface {
	RoomRepository
	RegistryRepository
	Ledger() ledger.Ledger
}

// Store runs units of work. If fn returns an error nothing it wrote becomes visible.
type Store interface {
	Atomically(ctx context.Context, fn func(tx Tx) error) error
	Close()
}
