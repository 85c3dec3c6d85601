package totpx

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
)

// SecretSize is the raw secret length in bytes (160 bits, the RFC 4226
// recommendation for HMAC-SHA1). Encoded it is 32 base32 characters.
const SecretSize = 20

var b32NoPadding = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateSecret returns a fresh base32 secret read from crypto/rand.
func GenerateSecret() (string, error) {
	buf := make([]byte, SecretSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate TOTP secret: %w", err)
	}
	return b32NoPadding.EncodeToString(buf), nil
}
