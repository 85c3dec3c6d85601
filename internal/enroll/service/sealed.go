package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/totpenroll/internal/enroll/domain"
	"github.com/aussiebroadwan/totpenroll/internal/enroll/store"
	"github.com/aussiebroadwan/totpenroll/pkg/cryptox"
	"github.com/aussiebroadwan/totpenroll/pkg/idx"
)

var (
	ErrAccountNotFound       = errors.New("account not found")
	ErrAuthenticatorNotFound = errors.New("authenticator not found")
)

// SealedAuthenticatorStore is the AuthenticatorStore backed by the database.
// Secrets are sealed with the account ID as associated data, so a row copied
// to another account will not open.
type SealedAuthenticatorStore struct {
	Store  store.Store
	Sealer *cryptox.Sealer
}

func (s *SealedAuthenticatorStore) CreateAuthenticator(ctx context.Context, name, secret, accountID string) (domain.Authenticator, error) {
	sealed, err := s.Sealer.Seal([]byte(secret), []byte(accountID))
	if err != nil {
		return domain.Authenticator{}, fmt.Errorf("failed to seal secret: %w", err)
	}

	now := time.Now().UTC()
	rec := domain.StoredAuthenticator{
		ID:           idx.NewAt(now).String(),
		AccountID:    accountID,
		Name:         name,
		SecretSealed: sealed,
		CreatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Accounts().ResolveAccount(ctx, accountID); err != nil {
			return err
		}
		return tx.Authenticators().CreateAuthenticator(ctx, rec)
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.Authenticator{}, ErrAccountNotFound
	}
	if err != nil {
		return domain.Authenticator{}, err
	}

	return domain.Authenticator{
		ID:        rec.ID,
		AccountID: accountID,
		Name:      name,
		Secret:    secret,
		CreatedAt: now,
	}, nil
}

func (s *SealedAuthenticatorStore) FindByAccount(ctx context.Context, accountID string) ([]domain.Authenticator, error) {
	rows, err := s.Store.Authenticators().ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Authenticator, 0, len(rows))
	for _, row := range rows {
		a, err := s.open(row)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Find returns a single authenticator with its secret opened.
func (s *SealedAuthenticatorStore) Find(ctx context.Context, accountID, id string) (domain.Authenticator, error) {
	row, err := s.Store.Authenticators().GetAuthenticator(ctx, accountID, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Authenticator{}, ErrAuthenticatorNotFound
	}
	if err != nil {
		return domain.Authenticator{}, err
	}
	return s.open(row)
}

func (s *SealedAuthenticatorStore) open(row domain.StoredAuthenticator) (domain.Authenticator, error) {
	secret, err := s.Sealer.Open(row.SecretSealed, []byte(row.AccountID))
	if err != nil {
		return domain.Authenticator{}, fmt.Errorf("authenticator %s: %w", row.ID, err)
	}

	return domain.Authenticator{
		ID:         row.ID,
		AccountID:  row.AccountID,
		Name:       row.Name,
		Secret:     string(secret),
		CreatedAt:  row.CreatedAt,
		LastUsedAt: row.LastUsedAt,
	}, nil
}
