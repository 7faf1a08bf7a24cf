// internal/handlers/hub.go
package handlers

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/park/internal/models"
)

const subscriberBuffer = 16

type subscriber struct {
	ch chan models.RoomEvent
}

// RoomHub fans committed room events out to websocket subscribers of that room.
// It satisfies session.Notifier.
type RoomHub struct {
	mu   sync.Mutex
	subs map[uuid.UUID]map[*subscriber]struct{}
}

func NewRoomHub() *RoomHub {
	return &RoomHub{subs: make(map[uuid.UUID]map[*subscriber]struct{})}
}

// Subscribe registers for events of roomID. The channel is closed by cancel, or early
// if the subscriber falls more than a buffer behind.
func (h *RoomHub) Subscribe(roomID uuid.UUID) (<-chan models.RoomEvent, func()) {
	sub := &subscriber{ch: make(chan models.RoomEvent, subscriberBuffer)}

	h.mu.Lock()
	if h.subs[roomID] == nil {
		h.subs[roomID] = make(map[*subscriber]struct{})
	}
	h.subs[roomID][sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.remove(roomID, sub)
		})
	}
	return sub.ch, cancel
}

// remove must be called with h.mu held.
func (h *RoomHub) remove(roomID uuid.UUID, sub *subscriber) {
	set, ok := h.subs[roomID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, roomID)
	}
	close(sub.ch)
}

// Publish never blocks; a subscriber with a full buffer is dropped.
func (h *RoomHub) Publish(_ context.Context, ev models.RoomEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[ev.RoomID] {
		select {
		case sub.ch <- ev:
		default:
			h.remove(ev.RoomID, sub)
		}
	}
	return nil
}

// Subscribers reports how many listeners roomID has.
func (h *RoomHub) Subscribers(roomID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[roomID])
}
