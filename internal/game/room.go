// internal/game/room.go
package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/park/internal/chain"
	"github.com/jason-s-yu/park/internal/models"
)

const (
	MaxPlayers = 4
	MinPlayers = 2

	// RoomTTL is how long a room may wait for its host to start it.
	RoomTTL = 1800 * time.Second
)

// transitions lists every legal status change; anything else is ErrInvalidRoomState.
var transitions = map[models.RoomStatus]map[models.RoomStatus]bool{
	models.RoomWaiting: {
		models.RoomActive:  true,
		models.RoomExpired: true,
	},
	models.RoomActive: {
		models.RoomCompleted: true,
	},
}

// CanTransition reports whether a room may move from one status to another.
func CanTransition(from, to models.RoomStatus) bool {
	return transitions[from][to]
}

func transition(r *models.Room, to models.RoomStatus) error {
	if !CanTransition(r.Status, to) {
		return fmt.Errorf("%w: cannot move room %s from %s to %s", ErrInvalidRoomState, r.ID, r.Status, to)
	}
	r.Status = to
	return nil
}

// NewRoom creates a Waiting room owned by host.
func NewRoom(host chain.Address, now time.Time) *models.Room {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	created := now.Unix()
	return &models.Room{
		ID:           id,
		Host:         host,
		Players:      []chain.Address{},
		Status:       models.RoomWaiting,
		SelectedMaps: models.MapCodes{},
		CreatedAt:    created,
		ExpiresAt:    created + int64(RoomTTL/time.Second),
	}
}

// Join appends player to a Waiting room. The room is left untouched on error.
func Join(r *models.Room, player chain.Address) error {
	if r.Status != models.RoomWaiting {
		return fmt.Errorf("%w: room %s is %s", ErrInvalidRoomState, r.ID, r.Status)
	}
	if len(r.Players) >= MaxPlayers {
		return ErrRoomFull
	}
	if r.HasPlayer(player) {
		return ErrAlreadyJoined
	}
	r.Players = append(r.Players, player)
	return nil
}

// CheckStart validates every precondition of Start without touching the room, so the
// entry fee is only charged for a room that will actually start.
func CheckStart(r *models.Room, caller chain.Address) error {
	if r.Status != models.RoomWaiting {
		return fmt.Errorf("%w: room %s is %s", ErrInvalidRoomState, r.ID, r.Status)
	}
	if caller != r.Host {
		return ErrNotHost
	}
	if len(r.Players) < MinPlayers {
		return fmt.Errorf("%w: have %d, need %d", ErrNotEnoughPlayers, len(r.Players), MinPlayers)
	}
	return nil
}

// Start moves the room to Active and records the maps, the paid fee and the start time.
func Start(r *models.Room, caller chain.Address, maps []byte, fee uint64, now time.Time) error {
	if err := CheckStart(r, caller); err != nil {
		return err
	}
	if err := transition(r, models.RoomActive); err != nil {
		return err
	}
	r.SelectedMaps = append(models.MapCodes{}, maps...)
	r.EntryFee = fee
	r.StartedAt = now.Unix()
	return nil
}

// CheckComplete validates that the room may settle.
func CheckComplete(r *models.Room) error {
	if r.Status != models.RoomActive {
		return fmt.Errorf("%w: room %s is %s", ErrInvalidRoomState, r.ID, r.Status)
	}
	return nil
}

// Complete moves an Active room to Completed. EndedAt is stamped by this single transition.
func Complete(r *models.Room, now time.Time) error {
	if err := CheckComplete(r); err != nil {
		return err
	}
	if err := transition(r, models.RoomCompleted); err != nil {
		return err
	}
	r.EndedAt = now.Unix()
	return nil
}

// IsOverdue reports whether a Waiting room passed its expiry time.
func IsOverdue(r *models.Room, now time.Time) bool {
	return r.Status == models.RoomWaiting && now.Unix() > r.ExpiresAt
}

// Expire moves an overdue Waiting room to Expired.
func Expire(r *models.Room, now time.Time) error {
	if r.Status != models.RoomWaiting {
		return fmt.Errorf("%w: room %s is %s", ErrInvalidRoomState, r.ID, r.Status)
	}
	if !IsOverdue(r, now) {
		return ErrNotExpired
	}
	return transition(r, models.RoomExpired)
}
