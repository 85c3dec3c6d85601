package domain

import "time"

// Account is the local directory record for an account that can own
// authenticators. Deleting it deletes its authenticators.
type Account struct {
	ID          string
	DisplayName string
	IssuerName  string // organisation shown in authenticator apps; empty uses the service default
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AccountProfile is what the enrollment flow needs from the directory.
type AccountProfile struct {
	DisplayName string
	IssuerName  string
}
