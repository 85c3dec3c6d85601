package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/totpenroll/internal/enroll/domain"
	"github.com/aussiebroadwan/totpenroll/pkg/idx"
	"github.com/aussiebroadwan/totpenroll/pkg/totpx"
	"github.com/aussiebroadwan/totpenroll/pkg/validatex"
)

// DefaultDraftTTL bounds how long an unconfirmed secret stays usable.
const DefaultDraftTTL = 10 * time.Minute

var (
	ErrValidation = errors.New("validation failed")

	// ErrConfirmation is safe to show to the user as-is.
	ErrConfirmation = errors.New("the code did not match: make sure the time on your device is set automatically, then enter the latest code shown in your authenticator app")

	// ErrInvalidState means the enrollment is Confirmed or Abandoned and the
	// caller has to start a new one.
	ErrInvalidState = errors.New("enrollment is no longer pending")

	ErrSessionExpired = fmt.Errorf("%w: enrollment expired", ErrInvalidState)
)

type State int

const (
	StateDraft State = iota
	StateConfirmed
	StateAbandoned
)

func (s State) String() string {
	switch s {
	case StateDraft:
		return "draft"
	case StateConfirmed:
		return "confirmed"
	case StateAbandoned:
		return "abandoned"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// AuthenticatorStore persists confirmed authenticators. CreateAuthenticator
// is called exactly once per confirmed session.
type AuthenticatorStore interface {
	CreateAuthenticator(ctx context.Context, name, secret, accountID string) (domain.Authenticator, error)
	FindByAccount(ctx context.Context, accountID string) ([]domain.Authenticator, error)
}

// Enroller starts enrollment sessions. It is safe for concurrent use.
type Enroller struct {
	Engine   *totpx.Engine
	Store    AuthenticatorStore
	DraftTTL time.Duration
	Now      func() time.Time
}

// NewEnroller refuses to build an Enroller if the TOTP primitive does not
// reproduce the RFC 6238 reference codes.
func NewEnroller(engine *totpx.Engine, store AuthenticatorStore, draftTTL time.Duration) (*Enroller, error) {
	if err := totpx.SelfTest(); err != nil {
		return nil, err
	}
	if engine == nil {
		engine = totpx.NewEngine()
	}
	if draftTTL <= 0 {
		draftTTL = DefaultDraftTTL
	}

	return &Enroller{
		Engine:   engine,
		Store:    store,
		DraftTTL: draftTTL,
		Now:      time.Now,
	}, nil
}

type startInput struct {
	AccountID string `json:"account" validate:"required,max=256"`
	Issuer    string `json:"issuer" validate:"required,max=256"`
	Label     string `json:"label" validate:"required,max=128"`
}

// Start creates a Draft session with a fresh secret.
func (e *Enroller) Start(accountID, issuer, label string) (*Session, error) {
	in := startInput{
		AccountID: strings.TrimSpace(accountID),
		Issuer:    strings.TrimSpace(issuer),
		Label:     strings.TrimSpace(label),
	}
	if err := validatex.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	secret, err := totpx.GenerateSecret()
	if err != nil {
		return nil, err
	}

	now := e.Now()
	return &Session{
		enroller:  e,
		id:        idx.NewAt(now),
		accountID: in.AccountID,
		issuer:    in.Issuer,
		label:     in.Label,
		secret:    secret,
		createdAt: now,
		expiresAt: now.Add(e.DraftTTL),
		state:     StateDraft,
	}, nil
}

// Session is one enrollment attempt. The secret is fixed for its lifetime.
type Session struct {
	enroller *Enroller

	id        idx.ID
	accountID string
	issuer    string
	label     string
	secret    string
	createdAt time.Time
	expiresAt time.Time

	mu    sync.Mutex
	state State
}

func (s *Session) ID() idx.ID           { return s.id }
func (s *Session) AccountID() string    { return s.accountID }
func (s *Session) Issuer() string       { return s.issuer }
func (s *Session) Label() string        { return s.label }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// draftAt fails unless the session is Draft and unexpired at now. An
// expired Draft becomes Abandoned. Callers hold s.mu.
func (s *Session) draftAt(now time.Time) error {
	if s.state != StateDraft {
		return ErrInvalidState
	}
	if !now.Before(s.expiresAt) {
		s.state = StateAbandoned
		return ErrSessionExpired
	}
	return nil
}

// ProvisioningURI renders the otpauth URI. It is rebuilt on every call.
func (s *Session) ProvisioningURI() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.draftAt(s.enroller.Now()); err != nil {
		return "", err
	}
	return totpx.BuildURI(s.secret, s.label, s.issuer)
}

// Secret returns the base32 secret for manual entry, only while Draft.
func (s *Session) Secret() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.draftAt(s.enroller.Now()); err != nil {
		return "", err
	}
	return s.secret, nil
}

// Confirm verifies code and, if it matches, persists the authenticator and
// moves the session to Confirmed. A mismatch or a store failure leaves the
// session in Draft so the user can retry with the same secret.
func (s *Session) Confirm(ctx context.Context, code string) (domain.Authenticator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.enroller.Now()
	if err := s.draftAt(now); err != nil {
		return domain.Authenticator{}, err
	}

	ok, err := s.enroller.Engine.Verify(s.secret, code, now)
	if err != nil {
		return domain.Authenticator{}, fmt.Errorf("failed to verify code: %w", err)
	}
	if !ok {
		return domain.Authenticator{}, ErrConfirmation
	}

	auth, err := s.enroller.Store.CreateAuthenticator(ctx, s.label, s.secret, s.accountID)
	if err != nil {
		return domain.Authenticator{}, fmt.Errorf("failed to store authenticator: %w", err)
	}

	s.state = StateConfirmed
	return auth, nil
}

// Abandon discards a Draft session.
func (s *Session) Abandon() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateDraft {
		return ErrInvalidState
	}
	s.state = StateAbandoned
	return nil
}

// expireAt abandons the session if it is still Draft at or past its expiry.
// It reports whether the session has expired, whatever its state.
func (s *Session) expireAt(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Before(s.expiresAt) {
		return false
	}
	if s.state == StateDraft {
		s.state = StateAbandoned
	}
	return true
}
