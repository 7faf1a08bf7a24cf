package game

import (
	"errors"
	"testing"
	"time"

	"github.com/jason-s-yu/park/internal/chain"
	"github.com/jason-s-yu/park/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Unix(1_700_000_000, 0)

func addr(t *testing.T) chain.Address {
	t.Helper()
	kp, err := chain.NewKeypair()
	require.NoError(t, err)
	return kp.Address()
}

func roomWithPlayers(t *testing.T, n int) (*models.Room, chain.Address) {
	t.Helper()
	host := addr(t)
	r := NewRoom(host, t0)
	for i := 0; i < n; i++ {
		require.NoError(t, Join(r, addr(t)))
	}
	return r, host
}

func TestNewRoom(t *testing.T) {
	host := addr(t)
	r := NewRoom(host, t0)

	assert.Equal(t, host, r.Host)
	assert.Equal(t, models.RoomWaiting, r.Status)
	assert.Empty(t, r.Players)
	assert.NotNil(t, r.SelectedMaps)
	assert.Equal(t, t0.Unix(), r.CreatedAt)
	assert.Equal(t, t0.Unix()+1800, r.ExpiresAt)
	assert.Zero(t, r.StartedAt)
	assert.Zero(t, r.EndedAt)
}

func TestJoinNeverExceedsMaxPlayers(t *testing.T) {
	r, _ := roomWithPlayers(t, MaxPlayers)
	before := append([]chain.Address(nil), r.Players...)

	err := Join(r, addr(t))
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Equal(t, before, r.Players)
}

func TestJoinRejectsDuplicates(t *testing.T) {
	r, _ := roomWithPlayers(t, 1)
	err := Join(r, r.Players[0])
	assert.ErrorIs(t, err, ErrAlreadyJoined)
	assert.Len(t, r.Players, 1)
}

func TestJoinPreservesOrder(t *testing.T) {
	r := NewRoom(addr(t), t0)
	p1, p2, p3 := addr(t), addr(t), addr(t)
	for _, p := range []chain.Address{p1, p2, p3} {
		require.NoError(t, Join(r, p))
	}
	assert.Equal(t, []chain.Address{p1, p2, p3}, r.Players)
}

func TestJoinRequiresWaiting(t *testing.T) {
	r, host := roomWithPlayers(t, 2)
	require.NoError(t, Start(r, host, []byte{1}, 1, t0))
	assert.ErrorIs(t, Join(r, addr(t)), ErrInvalidRoomState)
}

func TestStartPreconditions(t *testing.T) {
	t.Run("one player", func(t *testing.T) {
		r, host := roomWithPlayers(t, 1)
		err := Start(r, host, []byte{1}, 1, t0)
		assert.ErrorIs(t, err, ErrNotEnoughPlayers)
		assert.Equal(t, models.RoomWaiting, r.Status)
		assert.Empty(t, r.SelectedMaps)
	})
	t.Run("exactly two players", func(t *testing.T) {
		r, host := roomWithPlayers(t, 2)
		require.NoError(t, Start(r, host, []byte{4, 2}, 1_000_000, t0.Add(time.Minute)))
		assert.Equal(t, models.RoomActive, r.Status)
		assert.Equal(t, models.MapCodes{4, 2}, r.SelectedMaps)
		assert.Equal(t, t0.Add(time.Minute).Unix(), r.StartedAt)
		assert.Equal(t, uint64(1_000_000), r.EntryFee)
	})
	t.Run("not host", func(t *testing.T) {
		r, _ := roomWithPlayers(t, 2)
		assert.ErrorIs(t, Start(r, r.Players[0], nil, 1, t0), ErrNotHost)
	})
	t.Run("twice", func(t *testing.T) {
		r, host := roomWithPlayers(t, 2)
		require.NoError(t, Start(r, host, []byte{1}, 1, t0))
		started := r.StartedAt
		assert.ErrorIs(t, Start(r, host, []byte{2}, 1, t0.Add(time.Hour)), ErrInvalidRoomState)
		assert.Equal(t, started, r.StartedAt)
		assert.Equal(t, models.MapCodes{1}, r.SelectedMaps)
	})
}

func TestCompleteStampsEndedAtOnce(t *testing.T) {
	r, host := roomWithPlayers(t, 2)
	assert.ErrorIs(t, Complete(r, t0), ErrInvalidRoomState)

	require.NoError(t, Start(r, host, []byte{1}, 1, t0))
	require.NoError(t, Complete(r, t0.Add(10*time.Minute)))
	assert.Equal(t, models.RoomCompleted, r.Status)
	ended := r.EndedAt
	assert.Equal(t, t0.Add(10*time.Minute).Unix(), ended)

	err := Complete(r, t0.Add(time.Hour))
	assert.ErrorIs(t, err, ErrInvalidRoomState)
	assert.Equal(t, ended, r.EndedAt)
}

func TestExpire(t *testing.T) {
	r, _ := roomWithPlayers(t, 1)

	assert.ErrorIs(t, Expire(r, t0.Add(RoomTTL)), ErrNotExpired)
	assert.False(t, IsOverdue(r, t0.Add(RoomTTL)))

	require.NoError(t, Expire(r, t0.Add(RoomTTL+time.Second)))
	assert.Equal(t, models.RoomExpired, r.Status)
	assert.ErrorIs(t, Join(r, addr(t)), ErrInvalidRoomState)

	active, host := roomWithPlayers(t, 2)
	require.NoError(t, Start(active, host, nil, 1, t0))
	assert.ErrorIs(t, Expire(active, t0.Add(2*RoomTTL)), ErrInvalidRoomState)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(models.RoomWaiting, models.RoomActive))
	assert.True(t, CanTransition(models.RoomWaiting, models.RoomExpired))
	assert.True(t, CanTransition(models.RoomActive, models.RoomCompleted))
	assert.False(t, CanTransition(models.RoomActive, models.RoomExpired))
	assert.False(t, CanTransition(models.RoomCompleted, models.RoomActive))
	assert.False(t, CanTransition(models.RoomExpired, models.RoomWaiting))
}

func TestLedgerErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := WrapLedger("transfer", cause)
	assert.True(t, IsLedgerError(err))
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, WrapLedger("mint", nil))
	assert.False(t, IsLedgerError(cause))
}
