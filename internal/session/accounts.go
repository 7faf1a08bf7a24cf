// internal/session/accounts.go
package session

import (
	"context"
	"fmt"

	"github.com/jason-s-yu/park/internal/chain"
	"github.com/jason-s-yu/park/internal/game"
	"github.com/jason-s-yu/park/internal/ledger"
	"github.com/jason-s-yu/park/internal/store"
	"github.com/sirupsen/logrus"
)

// Balance is a token account together with the mint it belongs to.
type Balance struct {
	Account ledger.TokenAccount `json:"account"`
	Mint    ledger.Mint         `json:"mint"`
}

// OpenAccount returns owner's associated token account for mint, creating it if needed.
func (s *Service) OpenAccount(ctx context.Context, owner, mint chain.Address) (ledger.TokenAccount, error) {
	var acct ledger.TokenAccount
	err := s.store.Atomically(ctx, func(tx store.Tx) error {
		var err error
		acct, err = tx.Ledger().OpenAccount(ctx, owner, mint)
		return game.WrapLedger("open account", err)
	})
	return acct, err
}

// Balance looks up a token account and its mint.
func (s *Service) Balance(ctx context.Context, account chain.Address) (Balance, error) {
	var b Balance
	err := s.store.Atomically(ctx, func(tx store.Tx) error {
		l := tx.Ledger()
		var err error
		if b.Account, err = l.GetAccount(ctx, account); err != nil {
			return game.WrapLedger("get account", err)
		}
		b.Mint, err = l.GetMint(ctx, b.Account.Mint)
		return game.WrapLedger("get mint", err)
	})
	return b, err
}

// CreateTokenMint registers a key-controlled mint, such as the entry fee token, at
// mintAddress with authority as its mint authority.
func (s *Service) CreateTokenMint(ctx context.Context, authority chain.Signer, mintAddress chain.Address, decimals uint8, meta ledger.Metadata) (ledger.Mint, error) {
	if authority == nil || chain.IsProgramAuthority(authority) {
		return ledger.Mint{}, game.ErrUnauthorized
	}
	auth := authority.Address()
	mint := ledger.Mint{Address: mintAddress, Decimals: decimals, Authority: &auth, Metadata: meta}
	err := s.store.Atomically(ctx, func(tx store.Tx) error {
		return game.WrapLedger("create mint", tx.Ledger().CreateMint(ctx, mint))
	})
	if err != nil {
		return ledger.Mint{}, fmt.Errorf("create token mint: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"mint": mintAddress, "decimals": decimals}).Info("token mint created")
	return mint, nil
}

// IssueTokens mints raw units of a key-controlled mint to owner's associated account,
// signed by authority. Derived authorities are refused; rewards go through EndGame.
func (s *Service) IssueTokens(ctx context.Context, authority chain.Signer, mint, owner chain.Address, amount uint64) (ledger.TokenAccount, error) {
	if authority == nil || chain.IsProgramAuthority(authority) {
		return ledger.TokenAccount{}, fmt.Errorf("issue tokens: %w: signer must be a wallet", game.ErrUnauthorized)
	}
	var acct ledger.TokenAccount
	err := s.store.Atomically(ctx, func(tx store.Tx) error {
		l := tx.Ledger()
		var err error
		if acct, err = l.OpenAccount(ctx, owner, mint); err != nil {
			return game.WrapLedger("open account", err)
		}
		if err := l.MintTo(ctx, mint, acct.Address, amount, authority); err != nil {
			return game.WrapLedger("mint", err)
		}
		acct, err = l.GetAccount(ctx, acct.Address)
		return game.WrapLedger("get account", err)
	})
	if err != nil {
		return ledger.TokenAccount{}, fmt.Errorf("issue tokens: %w", err)
	}
	return acct, nil
}

// MintInfo looks up a mint.
func (s *Service) MintInfo(ctx context.Context, mint chain.Address) (ledger.Mint, error) {
	var m ledger.Mint
	err := s.store.Atomically(ctx, func(tx store.Tx) error {
		var err error
		m, err = tx.Ledger().GetMint(ctx, mint)
		return game.WrapLedger("get mint", err)
	})
	return m, err
}
