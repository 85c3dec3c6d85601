package domain

import "time"

// Authenticator is a confirmed TOTP device or app bound to an account.
type Authenticator struct {
	ID         string
	AccountID  string
	Name       string
	Secret     string `json:"-"` // base32, only populated in memory
	CreatedAt  time.Time
	LastUsedAt *time.Time
}

// StoredAuthenticator is the persisted form with the secret sealed at rest.
type StoredAuthenticator struct {
	ID           string
	AccountID    string
	Name         string
	SecretSealed []byte
	CreatedAt    time.Time
	LastUsedAt   *time.Time
}
