package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/totpenroll/internal/enroll/domain"
	"github.com/aussiebroadwan/totpenroll/internal/enroll/store"
	"github.com/aussiebroadwan/totpenroll/pkg/validatex"
)

// AccountService maintains the local account directory.
type AccountService struct {
	Store       store.Store
	Enrollments *EnrollmentService
	Logger      *slog.Logger
}

type accountInput struct {
	ID          string `json:"account" validate:"required,max=256"`
	DisplayName string `json:"display_name" validate:"required,max=256"`
	IssuerName  string `json:"issuer_name" validate:"max=256"`
}

// checkAccountID rejects empty IDs and IDs with surrounding whitespace.
// Account IDs are matched verbatim everywhere else, so they are never trimmed.
func checkAccountID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: account is required", ErrValidation)
	}
	if strings.TrimSpace(id) != id {
		return fmt.Errorf("%w: account must not start or end with whitespace", ErrValidation)
	}
	return nil
}

// Upsert creates the account or renames it. Enrollments already in progress
// keep the issuer they started with.
func (s *AccountService) Upsert(ctx context.Context, id, displayName, issuerName string) (domain.Account, error) {
	if err := checkAccountID(id); err != nil {
		return domain.Account{}, err
	}

	in := accountInput{
		ID:          id,
		DisplayName: strings.TrimSpace(displayName),
		IssuerName:  strings.TrimSpace(issuerName),
	}
	if err := validatex.Struct(in); err != nil {
		return domain.Account{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	var out domain.Account
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().UpsertAccount(ctx, domain.Account{
			ID:          in.ID,
			DisplayName: in.DisplayName,
			IssuerName:  in.IssuerName,
		}); err != nil {
			return err
		}

		var err error
		out, err = tx.Accounts().GetAccount(ctx, in.ID)
		return err
	})
	if err != nil {
		return domain.Account{}, fmt.Errorf("failed to upsert account: %w", err)
	}

	s.Logger.Info("account upserted", "account_id", in.ID)
	return out, nil
}

func (s *AccountService) Get(ctx context.Context, id string) (domain.Account, error) {
	a, err := s.Store.Accounts().GetAccount(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, ErrAccountNotFound
	}
	return a, err
}

// Delete removes the account, its authenticators and any live enrollments.
func (s *AccountService) Delete(ctx context.Context, id string) error {
	err := s.Store.Accounts().DeleteAccount(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	dropped := 0
	if s.Enrollments != nil {
		dropped = s.Enrollments.AbandonAccount(id)
	}
	s.Logger.Info("account deleted", "account_id", id, "abandoned_enrollments", dropped)
	return nil
}
