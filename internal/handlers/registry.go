// internal/handlers/registry.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/jason-s-yu/park/internal/chain"
	"github.com/jason-s-yu/park/internal/game"
	"github.com/jason-s-yu/park/internal/ledger"
)

type initializeRequest struct {
	ServerWallet chain.Address `json:"server_wallet"`
}

// InitializeHandler creates the game registry with the caller as admin.
func (s *APIServer) InitializeHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireWallet(w, r)
	if !ok {
		return
	}
	var req initializeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", game.ErrInvalidRequest, err))
		return
	}
	reg, err := s.Service.Initialize(r.Context(), caller, req.ServerWallet)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

// GetRegistryHandler returns the registry record.
func (s *APIServer) GetRegistryHandler(w http.ResponseWriter, r *http.Request) {
	reg, err := s.Service.Registry(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// CreateRewardMintHandler creates the reward mint; only the registry admin may call it.
func (s *APIServer) CreateRewardMintHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireWallet(w, r)
	if !ok {
		return
	}
	var meta ledger.Metadata
	if err := decodeBody(r, &meta); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", game.ErrInvalidRequest, err))
		return
	}
	mint, err := s.Service.CreateRewardMint(r.Context(), caller, meta)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mint)
}
