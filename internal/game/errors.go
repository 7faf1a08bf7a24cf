// internal/game/errors.go
package game

import (
	"errors"
	"fmt"
)

// Room and registry precondition failures. Each is distinct so callers can branch with errors.Is.
var (
	ErrRoomFull           = errors.New("room is full")
	ErrNotEnoughPlayers   = errors.New("not enough players")
	ErrInvalidRoomState   = errors.New("invalid room state")
	ErrAlreadyInitialized = errors.New("already initialized")
	ErrAlreadyJoined      = errors.New("player already joined")
	ErrNotHost            = errors.New("caller is not the room host")
	ErrUnauthorized       = errors.New("caller is not authorized")
	ErrNotInitialized     = errors.New("game registry not initialized")
	ErrRoomNotFound       = errors.New("room not found")
	ErrNotExpired         = errors.New("room has not expired yet")
	ErrInvalidRequest     = errors.New("invalid request")
)

// LedgerError wraps a transfer or mint failure reported by the Ledger.
type LedgerError struct {
	Op  string
	Err error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger %s failed: %v", e.Op, e.Err)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

// WrapLedger returns nil for a nil err, otherwise a *LedgerError for op.
func WrapLedger(op string, err error) error {
	if err == nil {
		return nil
	}
	return &LedgerError{Op: op, Err: err}
}

// IsLedgerError reports whether err carries a *LedgerError.
func IsLedgerError(err error) bool {
	var le *LedgerError
	return errors.As(err, &le)
}
