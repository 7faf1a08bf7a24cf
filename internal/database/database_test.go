// internal/database/database_test.go
package database

import (
	"context"
	"math"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/park/internal/chain"
	"github.com/jason-s-yu/park/internal/game"
	"github.com/jason-s-yu/park/internal/ledger"
	"github.com/jason-s-yu/park/internal/models"
	"github.com/jason-s-yu/park/internal/registry"
	"github.com/jason-s-yu/park/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBigintRange(t *testing.T) {
	v, err := toBigint(42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	_, err = toBigint(math.MaxInt64 + 1)
	assert.ErrorIs(t, err, ledger.ErrOverflow)

	_, err = fromBigint(-1)
	assert.Error(t, err)
}

func TestOptionalAddress(t *testing.T) {
	a, err := optionalAddress(nil)
	require.NoError(t, err)
	assert.Nil(t, a)

	kp, err := chain.NewKeypair()
	require.NoError(t, err)
	addr := kp.Address()
	got, err := optionalAddress(nullableAddress(&addr))
	require.NoError(t, err)
	assert.Equal(t, addr, *got)

	_, err = optionalAddress([]byte{1, 2, 3})
	assert.ErrorIs(t, err, chain.ErrInvalidAddress)
}

// testStore connects to DATABASE_URL and wipes the tables; without it the test is skipped.
func testStore(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := ConnectDB(ctx, url)
	require.NoError(t, err)
	require.NoError(t, Migrate(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE room_events, token_accounts, mints, rooms, game_registry`)
	require.NoError(t, err)
	st := NewPostgresStore(pool)
	t.Cleanup(st.Close)
	return st
}

func TestPostgresRoomRoundTrip(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	host, err := chain.NewKeypair()
	require.NoError(t, err)
	room := game.NewRoom(host.Address(), time.Unix(1_000, 0))
	room.SelectedMaps = models.MapCodes{1, 2}

	require.NoError(t, st.Atomically(ctx, func(tx store.Tx) error {
		return tx.InsertRoom(ctx, room)
	}))

	var got *models.Room
	require.NoError(t, st.Atomically(ctx, func(tx store.Tx) error {
		got, err = tx.GetRoom(ctx, room.ID)
		return err
	}))
	assert.Equal(t, room, got)

	var overdue []*models.Room
	require.NoError(t, st.Atomically(ctx, func(tx store.Tx) error {
		overdue, err = tx.ListOverdueRooms(ctx, room.ExpiresAt+1)
		return err
	}))
	require.Len(t, overdue, 1)
	assert.Equal(t, room.ID, overdue[0].ID)

	err = st.Atomically(ctx, func(tx store.Tx) error {
		_, err := tx.GetRoom(ctx, uuid.New())
		return err
	})
	assert.ErrorIs(t, err, game.ErrRoomNotFound)
}

func TestPostgresRollbackOnError(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	admin, _ := chain.NewKeypair()
	server, _ := chain.NewKeypair()
	programID := chain.MustParseAddress("PARKv1eW1uZLHJ7R5S5A1cHZb9VrTx5FJ4tJ7xZ8d7F")
	reg, err := registry.New(programID, admin.Address(), server.Address(), time.Now())
	require.NoError(t, err)

	err = st.Atomically(ctx, func(tx store.Tx) error {
		if err := tx.InsertRegistry(ctx, reg); err != nil {
			return err
		}
		return game.ErrInvalidRoomState
	})
	assert.ErrorIs(t, err, game.ErrInvalidRoomState)

	err = st.Atomically(ctx, func(tx store.Tx) error {
		_, err := tx.GetRegistry(ctx)
		return err
	})
	assert.ErrorIs(t, err, game.ErrNotInitialized)
}

func TestPostgresRegistryAndRewardMint(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	admin, _ := chain.NewKeypair()
	server, _ := chain.NewKeypair()
	player, _ := chain.NewKeypair()
	programID := chain.MustParseAddress("PARKv1eW1uZLHJ7R5S5A1cHZb9VrTx5FJ4tJ7xZ8d7F")
	reg, err := registry.New(programID, admin.Address(), server.Address(), time.Now())
	require.NoError(t, err)

	require.NoError(t, st.Atomically(ctx, func(tx store.Tx) error {
		if err := tx.InsertRegistry(ctx, reg); err != nil {
			return err
		}
		if _, err := registry.CreateRewardMint(ctx, tx.Ledger(), reg, admin, ledger.Metadata{Symbol: "PARK"}); err != nil {
			return err
		}
		return tx.UpdateRegistry(ctx, reg)
	}))

	err = st.Atomically(ctx, func(tx store.Tx) error {
		return tx.InsertRegistry(ctx, reg)
	})
	assert.ErrorIs(t, err, game.ErrAlreadyInitialized)

	var bal ledger.TokenAccount
	require.NoError(t, st.Atomically(ctx, func(tx store.Tx) error {
		stored, err := tx.GetRegistry(ctx)
		if err != nil {
			return err
		}
		if _, err := registry.MintReward(ctx, tx.Ledger(), stored, player.Address(), 7); err != nil {
			return err
		}
		bal, err = tx.Ledger().GetAccount(ctx, chain.AssociatedTokenAddress(player.Address(), stored.RewardMint))
		return err
	}))
	assert.Equal(t, uint64(7_000_000), bal.Amount)
}

func TestEventSinkWriteAndHistory(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	sink := NewEventSink(st.pool)

	roomID := uuid.New()
	ev := models.RoomEvent{
		ID:        uuid.New(),
		RoomID:    roomID,
		Kind:      models.EventRoomCreated,
		Room:      models.Room{ID: roomID, Players: []chain.Address{}, SelectedMaps: models.MapCodes{}},
		Timestamp: time.Now().UnixMilli(),
	}
	require.NoError(t, sink.WriteEvents(ctx, []models.RoomEvent{ev}))
	// redelivery is a no-op
	require.NoError(t, sink.WriteEvents(ctx, []models.RoomEvent{ev}))

	history, err := sink.RoomHistory(ctx, roomID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, ev.ID, history[0].ID)
	assert.Equal(t, models.EventRoomCreated, history[0].Kind)
}
