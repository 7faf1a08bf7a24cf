// internal/handlers/room.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/jason-s-yu/park/internal/chain"
	"github.com/jason-s-yu/park/internal/game"
	"github.com/jason-s-yu/park/internal/models"
	"github.com/jason-s-yu/park/internal/session"
)

// CreateRoomHandler opens a room hosted by the caller.
func (s *APIServer) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	host, ok := s.requireWallet(w, r)
	if !ok {
		return
	}
	room, err := s.Service.CreateRoom(r.Context(), host)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

// GetRoomHandler returns a room snapshot. No auth required.
func (s *APIServer) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	id, err := roomIDFromPath(r)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", game.ErrInvalidRequest, err))
		return
	}
	room, err := s.Service.GetRoom(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// RoomHistoryHandler returns the archived events of a room, oldest first. No auth required.
func (s *APIServer) RoomHistoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := roomIDFromPath(r)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", game.ErrInvalidRequest, err))
		return
	}
	if _, err := s.Service.GetRoom(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	events, err := s.History.RoomHistory(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if events == nil {
		events = []models.RoomEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

// JoinRoomHandler adds the caller to a waiting room.
func (s *APIServer) JoinRoomHandler(w http.ResponseWriter, r *http.Request) {
	player, ok := s.requireWallet(w, r)
	if !ok {
		return
	}
	id, err := roomIDFromPath(r)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", game.ErrInvalidRequest, err))
		return
	}
	room, err := s.Service.JoinRoom(r.Context(), id, player)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

type startRequest struct {
	// FeeFrom defaults to the host's associated account for FeeMint.
	FeeFrom chain.Address   `json:"fee_from"`
	FeeTo   chain.Address   `json:"fee_to"`
	FeeMint chain.Address   `json:"fee_mint"`
	Maps    models.MapCodes `json:"maps"`
}

// StartRoomHandler charges the host's entry fee and activates the room.
func (s *APIServer) StartRoomHandler(w http.ResponseWriter, r *http.Request) {
	host, ok := s.requireWallet(w, r)
	if !ok {
		return
	}
	id, err := roomIDFromPath(r)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", game.ErrInvalidRequest, err))
		return
	}
	var req startRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", game.ErrInvalidRequest, err))
		return
	}
	if req.FeeMint.IsZero() || req.FeeTo.IsZero() {
		s.writeError(w, r, fmt.Errorf("%w: fee_mint and fee_to are required", game.ErrInvalidRequest))
		return
	}
	if req.FeeFrom.IsZero() {
		req.FeeFrom = chain.AssociatedTokenAddress(host.Address(), req.FeeMint)
	}

	room, err := s.Service.StartRoom(r.Context(), session.StartRequest{
		RoomID:  id,
		Host:    host,
		FeeFrom: req.FeeFrom,
		FeeTo:   req.FeeTo,
		FeeMint: req.FeeMint,
		Maps:    req.Maps,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

type endRequest struct {
	Scores []models.PlayerScore `json:"scores"`
}

// EndGameHandler settles an active room. The caller must be the registry's server wallet.
func (s *APIServer) EndGameHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireWallet(w, r)
	if !ok {
		return
	}
	id, err := roomIDFromPath(r)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", game.ErrInvalidRequest, err))
		return
	}
	var req endRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", game.ErrInvalidRequest, err))
		return
	}
	room, err := s.Service.EndGame(r.Context(), session.EndRequest{
		RoomID: id,
		Caller: caller,
		Scores: req.Scores,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}
