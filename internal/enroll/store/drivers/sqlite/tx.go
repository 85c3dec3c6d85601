package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/totpenroll/internal/enroll/store"
)

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // outer DB stays open

// Ping is a no-op; the connection is held by the transaction.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Accounts() store.Accounts             { return &accountsRepo{q: t.tx} }
func (t *txStore) Authenticators() store.Authenticators { return &authenticatorsRepo{q: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // applied before any tx
