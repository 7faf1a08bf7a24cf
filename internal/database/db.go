// internal/database/db.go
package database

import (
	"context"
	_ "embed"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/park/internal/chain"
	"github.com/jason-s-yu/park/internal/ledger"
)

//go:embed schema.sql
var schema string

// ConnectDB opens a pool for connString and pings it.
func ConnectDB(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return pool, nil
}

// Migrate creates any missing tables. It is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	// No arguments, so pgx uses the simple protocol and runs every statement.
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// toBigint narrows a raw amount to the BIGINT column range.
func toBigint(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d exceeds storage range", ledger.ErrOverflow, v)
	}
	return int64(v), nil
}

func fromBigint(v int64) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("negative amount %d in storage", v)
	}
	return uint64(v), nil
}

func addressColumn(b []byte) (chain.Address, error) {
	return chain.AddressFromBytes(b)
}

// optionalAddress maps a nullable column to *Address.
func optionalAddress(b []byte) (*chain.Address, error) {
	if b == nil {
		return nil, nil
	}
	a, err := chain.AddressFromBytes(b)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func nullableAddress(a *chain.Address) []byte {
	if a == nil {
		return nil
	}
	return a.Bytes()
}
