// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/park/internal/middleware"
	"github.com/jason-s-yu/park/internal/models"
)

const wsWriteTimeout = 5 * time.Second

// roomMessage is the envelope sent to room subscribers.
type roomMessage struct {
	Type  string            `json:"type"`
	Room  *models.Room      `json:"room,omitempty"`
	Event *models.RoomEvent `json:"event,omitempty"`
}

// RoomWSHandler streams a room snapshot followed by every committed event of that room.
// Clients must speak the "room" subprotocol; the stream is read-only.
func (s *APIServer) RoomWSHandler(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{"room"},
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.Logger.Warnf("websocket accept error: %v", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler finished")

	if c.Subprotocol() != "room" {
		c.Close(BadSubprotocolError, "client must speak the room subprotocol")
		return
	}

	id, err := roomIDFromPath(r)
	if err != nil {
		c.Close(InvalidRoomIDError, "invalid room id")
		return
	}

	// Subscribe before the snapshot so no event between the two is lost.
	events, cancel := s.Hub.Subscribe(id)
	defer cancel()

	room, err := s.Service.GetRoom(r.Context(), id)
	if err != nil {
		c.Close(InvalidRoomIDError, "room does not exist")
		return
	}

	middleware.LogWebSocketConnect(s.Logger, r.RemoteAddr, r.URL.Path)
	// Discard client frames; ctx is canceled once the peer goes away.
	ctx := c.CloseRead(r.Context())

	err = s.streamRoom(ctx, c, room, events)
	middleware.LogWebSocketDisconnect(s.Logger, r.RemoteAddr, r.URL.Path, err)
}

func (s *APIServer) streamRoom(ctx context.Context, c *websocket.Conn, room *models.Room, events <-chan models.RoomEvent) error {
	if err := writeWS(ctx, c, roomMessage{Type: "snapshot", Room: room}); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				c.Close(SlowConsumerError, "event stream fell behind")
				return nil
			}
			if err := writeWS(ctx, c, roomMessage{Type: string(ev.Kind), Event: &ev}); err != nil {
				return err
			}
			if ev.Kind == models.EventRoomCompleted || ev.Kind == models.EventRoomExpired {
				c.Close(websocket.StatusNormalClosure, "room closed")
				return nil
			}
		}
	}
}

func writeWS(ctx context.Context, c *websocket.Conn, msg roomMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return c.Write(ctx, websocket.MessageText, data)
}
