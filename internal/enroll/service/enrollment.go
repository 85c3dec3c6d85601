package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/totpenroll/internal/enroll/domain"
	"github.com/aussiebroadwan/totpenroll/internal/enroll/store"
	"github.com/aussiebroadwan/totpenroll/pkg/idx"
)

var ErrEnrollmentNotFound = errors.New("enrollment not found")

// EnrollmentService keeps live sessions in memory, keyed by enrollment ID.
// Secrets of unconfirmed sessions are never written to the database.
// Sessions stay registered until they pass their expiry, so a repeated
// confirm on a finished session reports ErrInvalidState instead of not found.
type EnrollmentService struct {
	Enroller      *Enroller
	Accounts      store.Accounts
	DefaultIssuer string
	Logger        *slog.Logger

	mu       sync.Mutex
	sessions map[idx.ID]*Session
}

func NewEnrollmentService(enroller *Enroller, accounts store.Accounts, defaultIssuer string, logger *slog.Logger) *EnrollmentService {
	return &EnrollmentService{
		Enroller:      enroller,
		Accounts:      accounts,
		DefaultIssuer: defaultIssuer,
		Logger:        logger,
		sessions:      make(map[idx.ID]*Session),
	}
}

// Begin resolves the account's issuer and starts a Draft session for it.
func (s *EnrollmentService) Begin(ctx context.Context, accountID, label string) (*Session, error) {
	if err := checkAccountID(accountID); err != nil {
		return nil, err
	}

	profile, err := s.Accounts.ResolveAccount(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}

	issuer := profile.IssuerName
	if strings.TrimSpace(issuer) == "" {
		issuer = s.DefaultIssuer
	}

	sess, err := s.Enroller.Start(accountID, issuer, label)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()

	s.Logger.Info("enrollment started",
		"enrollment_id", sess.ID(),
		"account_id", accountID,
		"account_name", profile.DisplayName,
		"expires_at", sess.ExpiresAt(),
	)
	return sess, nil
}

// Get returns the session if it belongs to accountID.
func (s *EnrollmentService) Get(accountID string, id idx.ID) (*Session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()

	if !ok || sess.AccountID() != accountID {
		return nil, ErrEnrollmentNotFound
	}
	return sess, nil
}

func (s *EnrollmentService) Confirm(ctx context.Context, accountID string, id idx.ID, code string) (domain.Authenticator, error) {
	sess, err := s.Get(accountID, id)
	if err != nil {
		return domain.Authenticator{}, err
	}

	auth, err := sess.Confirm(ctx, code)
	if err != nil {
		s.Logger.Info("enrollment confirmation failed",
			"enrollment_id", id,
			"account_id", accountID,
			"state", sess.State().String(),
			"error", err,
		)
		return domain.Authenticator{}, err
	}

	s.Logger.Info("enrollment confirmed",
		"enrollment_id", id,
		"account_id", accountID,
		"authenticator_id", auth.ID,
	)
	return auth, nil
}

func (s *EnrollmentService) Abandon(accountID string, id idx.ID) error {
	sess, err := s.Get(accountID, id)
	if err != nil {
		return err
	}
	if err := sess.Abandon(); err != nil {
		return err
	}

	s.Logger.Info("enrollment abandoned", "enrollment_id", id, "account_id", accountID)
	return nil
}

// AbandonAccount drops every session of accountID, used when the account is
// deleted.
func (s *EnrollmentService) AbandonAccount(accountID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	for id, sess := range s.sessions {
		if sess.AccountID() != accountID {
			continue
		}
		_ = sess.Abandon()
		delete(s.sessions, id)
		n++
	}
	return n
}

// ExpireStale abandons Draft sessions past their expiry and forgets every
// expired session. It returns how many were removed.
func (s *EnrollmentService) ExpireStale(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	for id, sess := range s.sessions {
		if sess.expireAt(now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Pending returns the number of registered sessions.
func (s *EnrollmentService) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
