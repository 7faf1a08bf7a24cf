// internal/database/store.go
package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/park/internal/ledger"
	"github.com/jason-s-yu/park/internal/store"
)

// serializationFailure is the SQLSTATE Postgres returns when a serializable
// transaction loses a conflict.
const serializationFailure = "40001"

// defaultRetries bounds how often a unit of work is rerun after a serialization failure.
const defaultRetries = 3

// PostgresStore runs every unit of work in one SERIALIZABLE transaction. Room rows,
// the registry and ledger records share that transaction, so an operation that fails
// part way leaves nothing behind.
type PostgresStore struct {
	pool    *pgxpool.Pool
	retries int
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, retries: defaultRetries}
}

// Atomically reruns fn when the transaction aborts with a serialization failure, so fn
// must not keep state across attempts.
func (s *PostgresStore) Atomically(ctx context.Context, fn func(tx store.Tx) error) error {
	for attempt := 0; ; attempt++ {
		err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
			return fn(&pgTx{tx: tx})
		})
		if err == nil || attempt >= s.retries || !isSerializationFailure(err) {
			return err
		}
	}
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == serializationFailure
}

// pgTx implements store.Tx and ledger.Backend over one pgx transaction.
type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) Ledger() ledger.Ledger {
	return ledger.NewBook(t)
}
