package mfasdk

import "time"

// AccountUpsertRequest creates or updates a directory record.
type AccountUpsertRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=256"`
	IssuerName  string `json:"issuer_name" validate:"max=256"`
}

type AccountResponse struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	IssuerName  string    `json:"issuer_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// EnrollmentStartRequest begins a TOTP enrollment.
type EnrollmentStartRequest struct {
	Label string `json:"label"` // user-chosen device/app name, e.g. "My Phone"
}

// EnrollmentResponse describes a pending enrollment. The secret is included
// for manual entry and is only ever returned while the enrollment is pending.
type EnrollmentResponse struct {
	EnrollmentID    string    `json:"enrollment_id"`
	Label           string    `json:"label"`
	Account         string    `json:"account"`
	Issuer          string    `json:"issuer"`
	Secret          string    `json:"secret"`
	ProvisioningURI string    `json:"provisioning_uri"`
	QRImageURL      string    `json:"qr_image_url"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// CodeRequest carries a six digit TOTP code.
type CodeRequest struct {
	Code string `json:"code"`
}

// AuthenticatorResponse describes a confirmed authenticator. It never
// carries the secret.
type AuthenticatorResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	AccountID  string     `json:"account_id"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

type AuthenticatorListResponse struct {
	Authenticators []AuthenticatorResponse `json:"authenticators"`
}

type VerifyResponse struct {
	Valid           bool   `json:"valid"`
	AuthenticatorID string `json:"authenticator_id,omitempty"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	TOTP     string `json:"totp"`
}
