// internal/ledger/ledger.go
package ledger

import (
	"context"
	"errors"

	"github.com/jason-s-yu/park/internal/chain"
)

var (
	ErrMintNotFound       = errors.New("mint not found")
	ErrMintExists         = errors.New("mint already exists")
	ErrAccountNotFound    = errors.New("token account not found")
	ErrMintMismatch       = errors.New("token account belongs to a different mint")
	ErrDecimalsMismatch   = errors.New("decimals do not match the mint")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrOwnerMismatch      = errors.New("signer does not own the source account")
	ErrAuthorityMismatch  = errors.New("signer is not the mint authority")
	ErrFixedSupply        = errors.New("mint has no mint authority")
	ErrOverflow           = errors.New("amount overflow")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrSelfTransfer       = errors.New("source and destination are the same account")
	ErrInvalidMintAccount = errors.New("mint address is not usable as a token mint")
)

// Metadata is descriptive, inert information attached to a mint.
type Metadata struct {
	Name   string `json:"name,omitempty"`
	Symbol string `json:"symbol,omitempty"`
	URI    string `json:"uri,omitempty"`
}

// Mint is a fungible token definition. A nil Authority means supply is fixed forever.
type Mint struct {
	Address   chain.Address  `json:"address"`
	Decimals  uint8          `json:"decimals"`
	Authority *chain.Address `json:"authority"`
	Supply    uint64         `json:"supply"`
	Metadata  Metadata       `json:"metadata"`
}

// TokenAccount holds a balance of one mint on behalf of one owner.
type TokenAccount struct {
	Address chain.Address `json:"address"`
	Mint    chain.Address `json:"mint"`
	Owner   chain.Address `json:"owner"`
	Amount  uint64        `json:"amount"`
}

// Ledger is the token transfer and mint primitive. Every call is all-or-nothing; callers
// that need several calls to commit together obtain a Ledger bound to one transaction.
type Ledger interface {
	CreateMint(ctx context.Context, mint Mint) error
	GetMint(ctx context.Context, mint chain.Address) (Mint, error)
	SetMintAuthority(ctx context.Context, mint chain.Address, current chain.Signer, next *chain.Address) error

	// OpenAccount returns the associated token account of owner for mint, creating it when missing.
	OpenAccount(ctx context.Context, owner, mint chain.Address) (TokenAccount, error)
	GetAccount(ctx context.Context, account chain.Address) (TokenAccount, error)

	TransferChecked(ctx context.Context, from, to, mint chain.Address, amount uint64, decimals uint8, signer chain.Signer) error
	MintTo(ctx context.Context, mint, to chain.Address, amount uint64, signer chain.Signer) error
}

// Backend is the record storage a Book applies its rules to. Implementations return
// ErrMintNotFound / ErrAccountNotFound for missing records and ErrMintExists when
// inserting a duplicate mint.
type Backend interface {
	LoadMint(ctx context.Context, mint chain.Address) (Mint, error)
	InsertMint(ctx context.Context, mint Mint) error
	SaveMint(ctx context.Context, mint Mint) error

	LoadAccount(ctx context.Context, account chain.Address) (TokenAccount, error)
	// SaveAccount inserts or replaces the account.
	SaveAccount(ctx context.Context, account TokenAccount) error
}
