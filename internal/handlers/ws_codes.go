// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the room event stream.
const (
	BadSubprotocolError = 3000 // Client connected with an unsupported subprotocol.
	InvalidRoomIDError  = 3003 // Target room in the WS URL does not exist or is malformed.
	SlowConsumerError   = 3004 // Client fell too far behind the event stream.
)
