// internal/models/event.go
package models

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/park/internal/chain"
)

type EventKind string

const (
	EventRoomCreated   EventKind = "room_created"
	EventPlayerJoined  EventKind = "player_joined"
	EventRoomStarted   EventKind = "room_started"
	EventRewardMinted  EventKind = "reward_minted"
	EventRoomCompleted EventKind = "room_completed"
	EventRoomExpired   EventKind = "room_expired"
)

// RoomEvent is published after a room operation commits. Room is the room as of that commit.
type RoomEvent struct {
	ID        uuid.UUID     `json:"id"`
	RoomID    uuid.UUID     `json:"room_id"`
	Kind      EventKind     `json:"kind"`
	Actor     chain.Address `json:"actor"`
	Amount    uint64        `json:"amount,omitempty"`
	Room      Room          `json:"room"`
	Timestamp int64         `json:"timestamp"` // unix millis
}
