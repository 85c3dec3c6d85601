package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/totpenroll/internal/enroll/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite) implement
// it and expose sub-repositories so a Tx can hand out the same repos bound to
// the transaction.
type Store interface {
	Accounts() Accounts
	Authenticators() Authenticators

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST call Commit() or
	// Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing if fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Accounts is the local account directory.
type Accounts interface {
	// UpsertAccount creates the account or updates its names.
	UpsertAccount(ctx context.Context, a domain.Account) error

	GetAccount(ctx context.Context, id string) (domain.Account, error)

	// ResolveAccount returns the names used to label provisioning URIs.
	ResolveAccount(ctx context.Context, id string) (domain.AccountProfile, error)

	// DeleteAccount cascades to authenticators (per schema).
	DeleteAccount(ctx context.Context, id string) error
}

type Authenticators interface {
	// CreateAuthenticator inserts a confirmed authenticator. ErrNotFound if
	// the account does not exist, ErrAlreadyExists on an ID collision.
	CreateAuthenticator(ctx context.Context, a domain.StoredAuthenticator) error

	GetAuthenticator(ctx context.Context, accountID, id string) (domain.StoredAuthenticator, error)

	// ListByAccount returns the account's authenticators, oldest first.
	ListByAccount(ctx context.Context, accountID string) ([]domain.StoredAuthenticator, error)

	// TouchAuthenticator records a successful verification.
	TouchAuthenticator(ctx context.Context, accountID, id string) error

	DeleteAuthenticator(ctx context.Context, accountID, id string) error
}
