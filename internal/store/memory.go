// internal/store/memory.go
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/park/internal/game"
	"github.com/jason-s-yu/park/internal/ledger"
	"github.com/jason-s-yu/park/internal/models"
)

// MemoryStore keeps rooms, the registry and the ledger in process memory.
// Transactions are fully serialized by one mutex.
type MemoryStore struct {
	mu       sync.Mutex
	rooms    map[uuid.UUID]*models.Room
	registry *models.GameRegistry
	ledger   *ledger.MemoryBackend
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:  make(map[uuid.UUID]*models.Room),
		ledger: ledger.NewMemoryBackend(),
	}
}

func (s *MemoryStore) Atomically(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memoryTx{
		store:   s,
		rooms:   make(map[uuid.UUID]*models.Room),
		staging: s.ledger.Stage(),
	}
	if err := fn(tx); err != nil {
		return err
	}

	for id, r := range tx.rooms {
		s.rooms[id] = r
	}
	if tx.registry != nil {
		s.registry = tx.registry
	}
	tx.staging.Commit()
	return nil
}

func (s *MemoryStore) Close() {}

// memoryTx stages every write; reads prefer staged values.
type memoryTx struct {
	store    *MemoryStore
	rooms    map[uuid.UUID]*models.Room
	registry *models.GameRegistry
	staging  *ledger.MemoryBackend
}

func (tx *memoryTx) Ledger() ledger.Ledger {
	return ledger.NewBook(tx.staging)
}

func (tx *memoryTx) lookupRoom(id uuid.UUID) (*models.Room, bool) {
	if r, ok := tx.rooms[id]; ok {
		return r, true
	}
	r, ok := tx.store.rooms[id]
	return r, ok
}

func (tx *memoryTx) InsertRoom(_ context.Context, room *models.Room) error {
	if _, ok := tx.lookupRoom(room.ID); ok {
		return fmt.Errorf("room %s already exists", room.ID)
	}
	tx.rooms[room.ID] = room.Clone()
	return nil
}

func (tx *memoryTx) GetRoom(_ context.Context, id uuid.UUID) (*models.Room, error) {
	r, ok := tx.lookupRoom(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", game.ErrRoomNotFound, id)
	}
	return r.Clone(), nil
}

func (tx *memoryTx) UpdateRoom(_ context.Context, room *models.Room) error {
	if _, ok := tx.lookupRoom(room.ID); !ok {
		return fmt.Errorf("%w: %s", game.ErrRoomNotFound, room.ID)
	}
	tx.rooms[room.ID] = room.Clone()
	return nil
}

func (tx *memoryTx) ListOverdueRooms(_ context.Context, now int64) ([]*models.Room, error) {
	seen := make(map[uuid.UUID]bool)
	var out []*models.Room
	collect := func(rooms map[uuid.UUID]*models.Room) {
		for id, r := range rooms {
			if seen[id] {
				continue
			}
			seen[id] = true
			if r.Status == models.RoomWaiting && r.ExpiresAt < now {
				out = append(out, r.Clone())
			}
		}
	}
	collect(tx.rooms)
	collect(tx.store.rooms)

	sort.Slice(out, func(i, j int) bool {
		return out[i].ExpiresAt < out[j].ExpiresAt
	})
	return out, nil
}

func (tx *memoryTx) currentRegistry() *models.GameRegistry {
	if tx.registry != nil {
		return tx.registry
	}
	return tx.store.registry
}

func (tx *memoryTx) GetRegistry(_ context.Context) (*models.GameRegistry, error) {
	reg := tx.currentRegistry()
	if reg == nil {
		return nil, game.ErrNotInitialized
	}
	return cloneRegistry(reg), nil
}

func (tx *memoryTx) InsertRegistry(_ context.Context, reg *models.GameRegistry) error {
	if tx.currentRegistry() != nil {
		return game.ErrAlreadyInitialized
	}
	tx.registry = cloneRegistry(reg)
	return nil
}

func (tx *memoryTx) UpdateRegistry(_ context.Context, reg *models.GameRegistry) error {
	if tx.currentRegistry() == nil {
		return game.ErrNotInitialized
	}
	tx.registry = cloneRegistry(reg)
	return nil
}

func cloneRegistry(reg *models.GameRegistry) *models.GameRegistry {
	c := *reg
	c.AuthoritySeed = append([]byte(nil), reg.AuthoritySeed...)
	return &c
}
