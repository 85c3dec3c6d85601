// Package totpx wraps github.com/pquerna/otp with the small surface the
// enrollment flow needs: secret generation, code computation and verification
// with skew tolerance, and otpauth provisioning URIs.
package totpx

import (
	"encoding/base32"
	"errors"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	DefaultPeriod = 30 // seconds per time step
	DefaultSkew   = 1  // adjacent steps tolerated either side
)

var (
	// ErrInvalidSecret reports a secret that is not valid base32.
	ErrInvalidSecret = errors.New("totpx: invalid secret encoding")

	// ErrInvalidInput reports a label, issuer or URI that cannot be used.
	ErrInvalidInput = errors.New("totpx: invalid input")
)

// EngineOption customises an Engine.
type EngineOption func(*Engine)

// WithSkew sets how many adjacent time steps Verify accepts on either side.
func WithSkew(skew uint) EngineOption {
	return func(e *Engine) {
		e.skew = skew
	}
}

// WithPeriod overrides the step size in seconds. Zero keeps the default.
func WithPeriod(period uint) EngineOption {
	return func(e *Engine) {
		if period > 0 {
			e.period = period
		}
	}
}

// Engine computes and verifies 6-digit HMAC-SHA1 TOTP codes.
type Engine struct {
	period uint
	skew   uint
}

// NewEngine returns an Engine with a 30 second step and a skew of one step.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		period: DefaultPeriod,
		skew:   DefaultSkew,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Skew returns the configured skew window in steps.
func (e *Engine) Skew() uint { return e.skew }

// Period returns the step size.
func (e *Engine) Period() time.Duration { return time.Duration(e.period) * time.Second }

func (e *Engine) opts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    e.period,
		Skew:      e.skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// CurrentCode returns the zero-padded code for the step containing at.
func (e *Engine) CurrentCode(secret string, at time.Time) (string, error) {
	if _, err := DecodeSecret(secret); err != nil {
		return "", err
	}

	code, err := totp.GenerateCodeCustom(secret, at, e.opts())
	if err != nil {
		return "", ErrInvalidSecret
	}
	return code, nil
}

// Verify reports whether code matches the step containing at or a step
// within the skew window. A malformed code is a mismatch, not an error; only
// a malformed secret yields ErrInvalidSecret.
func (e *Engine) Verify(secret, code string, at time.Time) (bool, error) {
	if _, err := DecodeSecret(secret); err != nil {
		return false, err
	}

	// pquerna trims whitespace before comparing; a padded code is malformed here.
	if !isDigits(code) {
		return false, nil
	}

	// pquerna compares with subtle.ConstantTimeCompare once the length matches.
	ok, err := totp.ValidateCustom(code, secret, at, e.opts())
	if err != nil {
		return false, nil
	}
	return ok, nil
}

func isDigits(code string) bool {
	if code == "" {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

// DecodeSecret normalises and decodes a base32 secret the same way the OTP
// library does: surrounding space trimmed, upper-cased, padding restored.
func DecodeSecret(secret string) ([]byte, error) {
	secret = strings.ToUpper(strings.TrimSpace(secret))
	if secret == "" {
		return nil, ErrInvalidSecret
	}
	if n := len(secret) % 8; n != 0 {
		secret += strings.Repeat("=", 8-n)
	}

	raw, err := base32.StdEncoding.DecodeString(secret)
	if err != nil || len(raw) == 0 {
		return nil, ErrInvalidSecret
	}
	return raw, nil
}
