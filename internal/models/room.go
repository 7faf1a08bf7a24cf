// internal/models/room.go
package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jason-s-yu/park/internal/chain"
)

// RoomStatus is the lifecycle state of a Room.
type RoomStatus uint8

const (
	RoomWaiting RoomStatus = iota
	RoomActive
	RoomCompleted
	RoomExpired
)

var roomStatusNames = map[RoomStatus]string{
	RoomWaiting:   "waiting",
	RoomActive:    "active",
	RoomCompleted: "completed",
	RoomExpired:   "expired",
}

func (s RoomStatus) String() string {
	if name, ok := roomStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("RoomStatus(%d)", uint8(s))
}

func (s RoomStatus) MarshalText() ([]byte, error) {
	name, ok := roomStatusNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown room status %d", uint8(s))
	}
	return []byte(name), nil
}

func (s *RoomStatus) UnmarshalText(text []byte) error {
	st, err := ParseRoomStatus(string(text))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// ParseRoomStatus maps the lowercase status name back to a RoomStatus.
func ParseRoomStatus(name string) (RoomStatus, error) {
	for st, n := range roomStatusNames {
		if n == name {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown room status %q", name)
}

// MapCodes are the map identifiers picked when a room starts. They serialize as a JSON
// array of numbers rather than base64.
type MapCodes []byte

func (m MapCodes) MarshalJSON() ([]byte, error) {
	codes := make([]int, len(m))
	for i, c := range m {
		codes[i] = int(c)
	}
	return json.Marshal(codes)
}

func (m *MapCodes) UnmarshalJSON(data []byte) error {
	var codes []int
	if err := json.Unmarshal(data, &codes); err != nil {
		return err
	}
	out := make(MapCodes, len(codes))
	for i, c := range codes {
		if c < 0 || c > 255 {
			return fmt.Errorf("map code %d out of range", c)
		}
		out[i] = byte(c)
	}
	*m = out
	return nil
}

// Room is one game session. Timestamps are unix seconds; StartedAt and EndedAt stay 0
// until the matching transition happens.
type Room struct {
	ID           uuid.UUID       `json:"id"`
	Host         chain.Address   `json:"host"`
	Players      []chain.Address `json:"players"`
	Status       RoomStatus      `json:"status"`
	SelectedMaps MapCodes        `json:"selected_maps"`
	CreatedAt    int64           `json:"created_at"`
	ExpiresAt    int64           `json:"expires_at"`
	StartedAt    int64           `json:"started_at"`
	EndedAt      int64           `json:"ended_at"`

	// EntryFee is the raw amount the host paid when the room started.
	EntryFee uint64 `json:"entry_fee"`
}

// HasPlayer reports whether addr already joined the room.
func (r *Room) HasPlayer(addr chain.Address) bool {
	for _, p := range r.Players {
		if p == addr {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so staged changes never alias stored slices.
func (r *Room) Clone() *Room {
	c := *r
	c.Players = append(make([]chain.Address, 0, len(r.Players)), r.Players...)
	c.SelectedMaps = append(make(MapCodes, 0, len(r.SelectedMaps)), r.SelectedMaps...)
	return &c
}
