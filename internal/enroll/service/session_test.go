package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/totpenroll/internal/enroll/domain"
	"github.com/aussiebroadwan/totpenroll/pkg/totpx"
	"github.com/stretchr/testify/require"
)

type fakeAuthStore struct {
	mu      sync.Mutex
	calls   atomic.Int32
	err     error
	delay   time.Duration
	created []domain.Authenticator
}

func (f *fakeAuthStore) CreateAuthenticator(ctx context.Context, name, secret, accountID string) (domain.Authenticator, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.Authenticator{}, f.err
	}

	a := domain.Authenticator{
		ID:        "auth-" + name,
		AccountID: accountID,
		Name:      name,
		Secret:    secret,
		CreatedAt: time.Now(),
	}
	f.created = append(f.created, a)
	return a, nil
}

func (f *fakeAuthStore) FindByAccount(ctx context.Context, accountID string) ([]domain.Authenticator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.Authenticator
	for _, a := range f.created {
		if a.AccountID == accountID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAuthStore) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestEnroller(t *testing.T, st AuthenticatorStore) (*Enroller, *testClock) {
	t.Helper()

	e, err := NewEnroller(totpx.NewEngine(), st, 0)
	require.NoError(t, err)

	clock := &testClock{now: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)}
	e.Now = clock.Now
	return e, clock
}

func currentCode(t *testing.T, s *Session, at time.Time) string {
	t.Helper()

	code, err := s.enroller.Engine.CurrentCode(s.secret, at)
	require.NoError(t, err)
	return code
}

func TestNewEnrollerDefaults(t *testing.T) {
	e, err := NewEnroller(nil, &fakeAuthStore{}, 0)
	require.NoError(t, err)
	require.NotNil(t, e.Engine)
	require.Equal(t, DefaultDraftTTL, e.DraftTTL)
	require.NotNil(t, e.Now)
}

func TestStart(t *testing.T) {
	e, clock := newTestEnroller(t, &fakeAuthStore{})

	s, err := e.Start("user123", "Acme Corp", "My Phone")
	require.NoError(t, err)
	require.Equal(t, StateDraft, s.State())
	require.False(t, s.ID().IsZero())
	require.Equal(t, clock.Now().Add(DefaultDraftTTL), s.ExpiresAt())

	secret, err := s.Secret()
	require.NoError(t, err)
	require.Len(t, secret, 32)

	uri, err := s.ProvisioningURI()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "otpauth://totp/Acme%20Corp:My%20Phone?secret="), uri)
	require.True(t, strings.HasSuffix(uri, "&issuer=Acme%20Corp"), uri)
	require.Contains(t, uri, secret)

	again, err := s.ProvisioningURI()
	require.NoError(t, err)
	require.Equal(t, uri, again, "secret must not be regenerated")
}

func TestStartTrimsInputs(t *testing.T) {
	e, _ := newTestEnroller(t, &fakeAuthStore{})

	s, err := e.Start("  user123 ", " Acme ", " Laptop\t")
	require.NoError(t, err)
	require.Equal(t, "user123", s.AccountID())
	require.Equal(t, "Acme", s.Issuer())
	require.Equal(t, "Laptop", s.Label())
}

func TestStartValidation(t *testing.T) {
	e, _ := newTestEnroller(t, &fakeAuthStore{})

	tests := []struct {
		name, account, issuer, label, field string
	}{
		{"empty account", "", "Acme", "Phone", "account"},
		{"empty issuer", "user123", "", "Phone", "issuer"},
		{"blank label", "user123", "Acme", "   ", "label"},
		{"label too long", "user123", "Acme", strings.Repeat("x", 129), "label"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := e.Start(tt.account, tt.issuer, tt.label)
			require.ErrorIs(t, err, ErrValidation)
			require.Contains(t, err.Error(), tt.field)
			require.Nil(t, s)
		})
	}
}

func TestConfirmSuccess(t *testing.T) {
	st := &fakeAuthStore{}
	e, clock := newTestEnroller(t, st)

	s, err := e.Start("user123", "Acme Corp", "My Phone")
	require.NoError(t, err)
	secret, _ := s.Secret()
	code := currentCode(t, s, clock.Now())

	auth, err := s.Confirm(context.Background(), code)
	require.NoError(t, err)
	require.Equal(t, "My Phone", auth.Name)
	require.Equal(t, "user123", auth.AccountID)
	require.Equal(t, secret, auth.Secret)
	require.Equal(t, StateConfirmed, s.State())
	require.EqualValues(t, 1, st.calls.Load())

	t.Run("second confirm is rejected", func(t *testing.T) {
		_, err := s.Confirm(context.Background(), code)
		require.ErrorIs(t, err, ErrInvalidState)
		require.EqualValues(t, 1, st.calls.Load())
	})

	t.Run("secret and uri are no longer available", func(t *testing.T) {
		_, err := s.Secret()
		require.ErrorIs(t, err, ErrInvalidState)
		_, err = s.ProvisioningURI()
		require.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("abandon after confirm", func(t *testing.T) {
		require.ErrorIs(t, s.Abandon(), ErrInvalidState)
		require.Equal(t, StateConfirmed, s.State())
	})
}

func TestConfirmStaleCode(t *testing.T) {
	st := &fakeAuthStore{}
	e, clock := newTestEnroller(t, st)

	s, err := e.Start("user123", "Acme Corp", "My Phone")
	require.NoError(t, err)
	uri, _ := s.ProvisioningURI()

	_, err = s.Confirm(context.Background(), currentCode(t, s, clock.Now().Add(-5*time.Minute)))
	require.ErrorIs(t, err, ErrConfirmation)
	require.Contains(t, err.Error(), "time on your device")
	require.Equal(t, StateDraft, s.State())
	require.Zero(t, st.calls.Load())

	again, err := s.ProvisioningURI()
	require.NoError(t, err)
	require.Equal(t, uri, again, "retry must reuse the same secret")

	_, err = s.Confirm(context.Background(), currentCode(t, s, clock.Now()))
	require.NoError(t, err)
	require.Equal(t, StateConfirmed, s.State())
}

func TestConfirmMalformedCode(t *testing.T) {
	e, _ := newTestEnroller(t, &fakeAuthStore{})
	s, err := e.Start("user123", "Acme", "Phone")
	require.NoError(t, err)

	for _, code := range []string{"", "12345", "abcdef", "1234567"} {
		_, err := s.Confirm(context.Background(), code)
		require.ErrorIs(t, err, ErrConfirmation, code)
	}
	require.Equal(t, StateDraft, s.State())
}

func TestConfirmStoreFailureKeepsDraft(t *testing.T) {
	boom := errors.New("disk full")
	st := &fakeAuthStore{err: boom}
	e, clock := newTestEnroller(t, st)

	s, err := e.Start("user123", "Acme", "Phone")
	require.NoError(t, err)
	code := currentCode(t, s, clock.Now())

	_, err = s.Confirm(context.Background(), code)
	require.ErrorIs(t, err, boom)
	require.Equal(t, StateDraft, s.State())

	st.setErr(nil)
	_, err = s.Confirm(context.Background(), code)
	require.NoError(t, err)
	require.Equal(t, StateConfirmed, s.State())
	require.Len(t, st.created, 1)
}

func TestConfirmExpired(t *testing.T) {
	st := &fakeAuthStore{}
	e, clock := newTestEnroller(t, st)

	s, err := e.Start("user123", "Acme", "Phone")
	require.NoError(t, err)

	clock.Advance(DefaultDraftTTL)
	_, err = s.Confirm(context.Background(), currentCode(t, s, clock.Now()))
	require.ErrorIs(t, err, ErrSessionExpired)
	require.ErrorIs(t, err, ErrInvalidState)
	require.Equal(t, StateAbandoned, s.State())
	require.Zero(t, st.calls.Load())
}

func TestSecretHiddenAfterExpiry(t *testing.T) {
	e, clock := newTestEnroller(t, &fakeAuthStore{})

	s, err := e.Start("user123", "Acme", "Phone")
	require.NoError(t, err)

	clock.Advance(DefaultDraftTTL - time.Second)
	_, err = s.Secret()
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = s.Secret()
	require.ErrorIs(t, err, ErrSessionExpired)
	require.Equal(t, StateAbandoned, s.State())

	_, err = s.ProvisioningURI()
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestProvisioningURIExpires(t *testing.T) {
	e, clock := newTestEnroller(t, &fakeAuthStore{})

	s, err := e.Start("user123", "Acme", "Phone")
	require.NoError(t, err)

	clock.Advance(DefaultDraftTTL)
	_, err = s.ProvisioningURI()
	require.ErrorIs(t, err, ErrSessionExpired)
	require.ErrorIs(t, s.Abandon(), ErrInvalidState)
}

func TestAbandon(t *testing.T) {
	e, clock := newTestEnroller(t, &fakeAuthStore{})

	s, err := e.Start("user123", "Acme", "Phone")
	require.NoError(t, err)
	code := currentCode(t, s, clock.Now())

	require.NoError(t, s.Abandon())
	require.Equal(t, StateAbandoned, s.State())
	require.ErrorIs(t, s.Abandon(), ErrInvalidState)

	_, err = s.Confirm(context.Background(), code)
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = s.ProvisioningURI()
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestConfirmConcurrent(t *testing.T) {
	st := &fakeAuthStore{delay: 5 * time.Millisecond}
	e, clock := newTestEnroller(t, st)

	s, err := e.Start("user123", "Acme", "Phone")
	require.NoError(t, err)
	code := currentCode(t, s, clock.Now())

	const workers = 16
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		invalid   atomic.Int32
		start     = make(chan struct{})
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := s.Confirm(context.Background(), code)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, ErrInvalidState):
				invalid.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	require.EqualValues(t, 1, successes.Load())
	require.EqualValues(t, workers-1, invalid.Load())
	require.EqualValues(t, 1, st.calls.Load())

	auths, err := st.FindByAccount(context.Background(), "user123")
	require.NoError(t, err)
	require.Len(t, auths, 1)
}

func TestStateString(t *testing.T) {
	require.Equal(t, "draft", StateDraft.String())
	require.Equal(t, "confirmed", StateConfirmed.String())
	require.Equal(t, "abandoned", StateAbandoned.String())
	require.Equal(t, "State(9)", State(9).String())
}
