// internal/ledger/book.go
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/bits"

	"github.com/jason-s-yu/park/internal/chain"
)

// Book implements the Ledger rules on top of any Backend. It holds no state of its own,
// so a Book over a transactional Backend is exactly as atomic as that transaction.
type Book struct {
	backend Backend
}

// NewBook returns a Ledger that validates and applies operations against backend.
func NewBook(backend Backend) *Book {
	return &Book{backend: backend}
}

func (b *Book) CreateMint(ctx context.Context, mint Mint) error {
	if mint.Address.IsZero() {
		return ErrInvalidMintAccount
	}
	mint.Supply = 0
	if err := b.backend.InsertMint(ctx, mint); err != nil {
		return fmt.Errorf("create mint %s: %w", mint.Address, err)
	}
	return nil
}

func (b *Book) GetMint(ctx context.Context, mint chain.Address) (Mint, error) {
	return b.backend.LoadMint(ctx, mint)
}

func (b *Book) SetMintAuthority(ctx context.Context, mintAddr chain.Address, current chain.Signer, next *chain.Address) error {
	mint, err := b.backend.LoadMint(ctx, mintAddr)
	if err != nil {
		return err
	}
	if err := checkMintAuthority(mint, current); err != nil {
		return err
	}
	if next != nil {
		n := *next
		mint.Authority = &n
	} else {
		mint.Authority = nil
	}
	return b.backend.SaveMint(ctx, mint)
}

func (b *Book) OpenAccount(ctx context.Context, owner, mintAddr chain.Address) (TokenAccount, error) {
	if _, err := b.backend.LoadMint(ctx, mintAddr); err != nil {
		return TokenAccount{}, err
	}

	addr := chain.AssociatedTokenAddress(owner, mintAddr)
	acct, err := b.backend.LoadAccount(ctx, addr)
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return TokenAccount{}, err
	}

	acct = TokenAccount{Address: addr, Mint: mintAddr, Owner: owner}
	if err := b.backend.SaveAccount(ctx, acct); err != nil {
		return TokenAccount{}, fmt.Errorf("open token account: %w", err)
	}
	return acct, nil
}

func (b *Book) GetAccount(ctx context.Context, account chain.Address) (TokenAccount, error) {
	return b.backend.LoadAccount(ctx, account)
}

func (b *Book) TransferChecked(ctx context.Context, fromAddr, toAddr, mintAddr chain.Address, amount uint64, decimals uint8, signer chain.Signer) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	if fromAddr == toAddr {
		return ErrSelfTransfer
	}

	mint, err := b.backend.LoadMint(ctx, mintAddr)
	if err != nil {
		return err
	}
	if mint.Decimals != decimals {
		return fmt.Errorf("%w: mint has %d, got %d", ErrDecimalsMismatch, mint.Decimals, decimals)
	}

	from, err := b.backend.LoadAccount(ctx, fromAddr)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	to, err := b.backend.LoadAccount(ctx, toAddr)
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if from.Mint != mintAddr || to.Mint != mintAddr {
		return ErrMintMismatch
	}
	if signer == nil || from.Owner != signer.Address() {
		return ErrOwnerMismatch
	}
	if from.Amount < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, from.Amount, amount)
	}

	credited, carry := bits.Add64(to.Amount, amount, 0)
	if carry != 0 {
		return ErrOverflow
	}
	from.Amount -= amount
	to.Amount = credited

	if err := b.backend.SaveAccount(ctx, from); err != nil {
		return err
	}
	return b.backend.SaveAccount(ctx, to)
}

func (b *Book) MintTo(ctx context.Context, mintAddr, toAddr chain.Address, amount uint64, signer chain.Signer) error {
	if amount == 0 {
		return ErrInvalidAmount
	}

	mint, err := b.backend.LoadMint(ctx, mintAddr)
	if err != nil {
		return err
	}
	if err := checkMintAuthority(mint, signer); err != nil {
		return err
	}

	to, err := b.backend.LoadAccount(ctx, toAddr)
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if to.Mint != mintAddr {
		return ErrMintMismatch
	}

	supply, carry := bits.Add64(mint.Supply, amount, 0)
	if carry != 0 {
		return ErrOverflow
	}
	balance, carry := bits.Add64(to.Amount, amount, 0)
	if carry != 0 {
		return ErrOverflow
	}
	mint.Supply = supply
	to.Amount = balance

	if err := b.backend.SaveMint(ctx, mint); err != nil {
		return err
	}
	return b.backend.SaveAccount(ctx, to)
}

// checkMintAuthority requires signer to be the mint authority. When the authority is a
// derived address, only a ProgramAuthority can sign for it.
func checkMintAuthority(mint Mint, signer chain.Signer) error {
	if mint.Authority == nil {
		return ErrFixedSupply
	}
	if signer == nil || signer.Address() != *mint.Authority {
		return ErrAuthorityMismatch
	}
	if !mint.Authority.IsOnCurve() && !chain.IsProgramAuthority(signer) {
		return ErrAuthorityMismatch
	}
	return nil
}
