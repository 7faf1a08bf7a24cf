// internal/handlers/dev.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/jason-s-yu/park/internal/chain"
	"github.com/jason-s-yu/park/internal/game"
	"github.com/jason-s-yu/park/internal/ledger"
	"github.com/shopspring/decimal"
)

type devMintRequest struct {
	Decimals uint8 `json:"decimals"`
	ledger.Metadata
}

// DevCreateMintHandler creates a fresh mint with the caller as mint authority.
func (s *APIServer) DevCreateMintHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireWallet(w, r)
	if !ok {
		return
	}
	var req devMintRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", game.ErrInvalidRequest, err))
		return
	}
	kp, err := chain.NewKeypair()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	mint, err := s.Service.CreateTokenMint(r.Context(), caller, kp.Address(), req.Decimals, req.Metadata)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mint)
}

type devIssueRequest struct {
	Mint  chain.Address `json:"mint"`
	Owner chain.Address `json:"owner"`
	// Amount is in whole-token units and may carry a fraction up to the mint's decimals.
	Amount decimal.Decimal `json:"amount"`
}

// DevIssueHandler mints tokens of a caller-controlled mint to an owner.
func (s *APIServer) DevIssueHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireWallet(w, r)
	if !ok {
		return
	}
	var req devIssueRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", game.ErrInvalidRequest, err))
		return
	}
	mint, err := s.Service.MintInfo(r.Context(), req.Mint)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	raw, err := ledger.FromUIAmount(req.Amount, mint.Decimals)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", game.ErrInvalidRequest, err))
		return
	}
	acct, err := s.Service.IssueTokens(r.Context(), caller, req.Mint, req.Owner, raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse{
		TokenAccount: acct,
		Decimals:     mint.Decimals,
		UIAmount:     ledger.ToUIAmount(acct.Amount, mint.Decimals),
	})
}
