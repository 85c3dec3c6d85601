package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/totpenroll/internal/enroll/domain"
	"github.com/aussiebroadwan/totpenroll/internal/enroll/store"
	"github.com/aussiebroadwan/totpenroll/pkg/totpx"
)

// AuthenticatorService manages an account's confirmed authenticators.
type AuthenticatorService struct {
	Store          store.Store
	Authenticators *SealedAuthenticatorStore
	Engine         *totpx.Engine
	Logger         *slog.Logger
	Now            func() time.Time
}

func (s *AuthenticatorService) List(ctx context.Context, accountID string) ([]domain.Authenticator, error) {
	if err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return s.Authenticators.FindByAccount(ctx, accountID)
}

func (s *AuthenticatorService) Delete(ctx context.Context, accountID, id string) error {
	err := s.Store.Authenticators().DeleteAuthenticator(ctx, accountID, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrAuthenticatorNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete authenticator: %w", err)
	}

	s.Logger.Info("authenticator removed", "account_id", accountID, "authenticator_id", id)
	return nil
}

// Verify checks code against each of the account's authenticators and returns
// the first one that accepts it. A miss is (zero, false, nil).
func (s *AuthenticatorService) Verify(ctx context.Context, accountID, code string) (domain.Authenticator, bool, error) {
	auths, err := s.List(ctx, accountID)
	if err != nil {
		return domain.Authenticator{}, false, err
	}

	now := s.now()
	for _, a := range auths {
		ok, err := s.Engine.Verify(a.Secret, code, now)
		if err != nil {
			s.Logger.Error("stored secret is unusable", "authenticator_id", a.ID, "error", err)
			continue
		}
		if !ok {
			continue
		}

		if err := s.Store.Authenticators().TouchAuthenticator(ctx, accountID, a.ID); err != nil {
			return domain.Authenticator{}, false, fmt.Errorf("failed to record use: %w", err)
		}
		used := now.UTC()
		a.LastUsedAt = &used
		return a, true, nil
	}
	return domain.Authenticator{}, false, nil
}

func (s *AuthenticatorService) requireAccount(ctx context.Context, accountID string) error {
	_, err := s.Store.Accounts().ResolveAccount(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrAccountNotFound
	}
	return err
}

func (s *AuthenticatorService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
