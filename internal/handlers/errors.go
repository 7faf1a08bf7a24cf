// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/jason-s-yu/park/internal/game"
	"github.com/jason-s-yu/park/internal/ledger"
	"github.com/sirupsen/logrus"
)

// errorStatus maps service errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrRoomNotFound),
		errors.Is(err, game.ErrNotInitialized),
		errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrMintNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrRoomFull),
		errors.Is(err, game.ErrAlreadyJoined),
		errors.Is(err, game.ErrInvalidRoomState),
		errors.Is(err, game.ErrAlreadyInitialized):
		return http.StatusConflict
	case errors.Is(err, game.ErrNotEnoughPlayers):
		return http.StatusPreconditionFailed
	case errors.Is(err, game.ErrNotHost), errors.Is(err, game.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, game.ErrInvalidRequest):
		return http.StatusBadRequest
	case game.IsLedgerError(err):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// writeError responds with {"error": ...}. Unexpected errors are logged and not echoed.
func (s *APIServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.Logger.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Errorf("request failed: %v", err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
