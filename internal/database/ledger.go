// internal/database/ledger.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/park/internal/chain"
	"github.com/jason-s-yu/park/internal/ledger"
)

func (t *pgTx) LoadMint(ctx context.Context, addr chain.Address) (ledger.Mint, error) {
	q := `SELECT decimals, authority, supply, name, symbol, uri FROM mints WHERE address = $1 FOR UPDATE`
	var (
		mint      = ledger.Mint{Address: addr}
		decimals  int16
		authority []byte
		supply    int64
	)
	err := t.tx.QueryRow(ctx, q, addr.Bytes()).Scan(&decimals, &authority, &supply,
		&mint.Metadata.Name, &mint.Metadata.Symbol, &mint.Metadata.URI)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Mint{}, ledger.ErrMintNotFound
	}
	if err != nil {
		return ledger.Mint{}, fmt.Errorf("load mint %s: %w", addr, err)
	}
	mint.Decimals = uint8(decimals)
	if mint.Authority, err = optionalAddress(authority); err != nil {
		return ledger.Mint{}, err
	}
	if mint.Supply, err = fromBigint(supply); err != nil {
		return ledger.Mint{}, err
	}
	return mint, nil
}

func (t *pgTx) InsertMint(ctx context.Context, mint ledger.Mint) error {
	supply, err := toBigint(mint.Supply)
	if err != nil {
		return err
	}
	q := `
		INSERT INTO mints (address, decimals, authority, supply, name, symbol, uri)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (address) DO NOTHING
	`
	tag, err := t.tx.Exec(ctx, q, mint.Address.Bytes(), int16(mint.Decimals), nullableAddress(mint.Authority),
		supply, mint.Metadata.Name, mint.Metadata.Symbol, mint.Metadata.URI)
	if err != nil {
		return fmt.Errorf("insert mint %s: %w", mint.Address, err)
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrMintExists
	}
	return nil
}

func (t *pgTx) SaveMint(ctx context.Context, mint ledger.Mint) error {
	supply, err := toBigint(mint.Supply)
	if err != nil {
		return err
	}
	q := `UPDATE mints SET authority = $2, supply = $3, name = $4, symbol = $5, uri = $6 WHERE address = $1`
	tag, err := t.tx.Exec(ctx, q, mint.Address.Bytes(), nullableAddress(mint.Authority), supply,
		mint.Metadata.Name, mint.Metadata.Symbol, mint.Metadata.URI)
	if err != nil {
		return fmt.Errorf("save mint %s: %w", mint.Address, err)
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrMintNotFound
	}
	return nil
}

func (t *pgTx) LoadAccount(ctx context.Context, addr chain.Address) (ledger.TokenAccount, error) {
	q := `SELECT mint, owner, amount FROM token_accounts WHERE address = $1 FOR UPDATE`
	var (
		acct        = ledger.TokenAccount{Address: addr}
		mint, owner []byte
		amount      int64
	)
	err := t.tx.QueryRow(ctx, q, addr.Bytes()).Scan(&mint, &owner, &amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.TokenAccount{}, ledger.ErrAccountNotFound
	}
	if err != nil {
		return ledger.TokenAccount{}, fmt.Errorf("load account %s: %w", addr, err)
	}
	if acct.Mint, err = addressColumn(mint); err != nil {
		return ledger.TokenAccount{}, err
	}
	if acct.Owner, err = addressColumn(owner); err != nil {
		return ledger.TokenAccount{}, err
	}
	if acct.Amount, err = fromBigint(amount); err != nil {
		return ledger.TokenAccount{}, err
	}
	return acct, nil
}

func (t *pgTx) SaveAccount(ctx context.Context, acct ledger.TokenAccount) error {
	amount, err := toBigint(acct.Amount)
	if err != nil {
		return err
	}
	q := `
		INSERT INTO token_accounts (address, mint, owner, amount)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (address) DO UPDATE SET mint = $2, owner = $3, amount = $4
	`
	if _, err := t.tx.Exec(ctx, q, acct.Address.Bytes(), acct.Mint.Bytes(), acct.Owner.Bytes(), amount); err != nil {
		return fmt.Errorf("save account %s: %w", acct.Address, err)
	}
	return nil
}
