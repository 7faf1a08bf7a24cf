// internal/handlers/account.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/jason-s-yu/park/internal/chain"
	"github.com/jason-s-yu/park/internal/game"
	"github.com/jason-s-yu/park/internal/ledger"
	"github.com/shopspring/decimal"
)

type accountResponse struct {
	ledger.TokenAccount
	Decimals uint8           `json:"decimals"`
	UIAmount decimal.Decimal `json:"ui_amount"`
}

type openAccountRequest struct {
	Mint chain.Address `json:"mint"`
}

// OpenAccountHandler opens the caller's associated token account for a mint.
func (s *APIServer) OpenAccountHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.requireWallet(w, r)
	if !ok {
		return
	}
	var req openAccountRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", game.ErrInvalidRequest, err))
		return
	}
	acct, err := s.Service.OpenAccount(r.Context(), owner.Address(), req.Mint)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}

// GetAccountHandler returns a token account with its balance in whole-token units.
func (s *APIServer) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	addr, err := chain.ParseAddress(r.PathValue("address"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", game.ErrInvalidRequest, err))
		return
	}
	b, err := s.Service.Balance(r.Context(), addr)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse{
		TokenAccount: b.Account,
		Decimals:     b.Mint.Decimals,
		UIAmount:     ledger.ToUIAmount(b.Account.Amount, b.Mint.Decimals),
	})
}
