package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// ErrOpen is returned when sealed data fails authentication: wrong key,
// wrong associated data, or tampering.
var ErrOpen = errors.New("cryptox: unable to open sealed data")

const sealInfo = "totpenroll/authenticator-secret/v1"

// Sealer encrypts small secrets at rest with XChaCha20-Poly1305.
// The output format is: [24-byte nonce][ciphertext][16-byte auth tag]
type Sealer struct {
	key [chacha20poly1305.KeySize]byte
}

// NewSealer derives a 256-bit key from keyMaterial with HKDF-SHA256.
func NewSealer(keyMaterial []byte) (*Sealer, error) {
	if len(keyMaterial) < 16 {
		return nil, fmt.Errorf("cryptox: key material must be at least 16 bytes, got %d", len(keyMaterial))
	}

	s := &Sealer{}
	kdf := hkdf.New(sha256.New, keyMaterial, nil, []byte(sealInfo))
	if _, err := io.ReadFull(kdf, s.key[:]); err != nil {
		return nil, fmt.Errorf("cryptox: derive key: %w", err)
	}
	return s, nil
}

// Seal encrypts plaintext bound to aad. The same aad must be supplied to Open.
func (s *Sealer) Seal(plaintext, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return aead.Seal(nonce, nonce, plaintext, aad), nil
}

// Open decrypts data produced by Seal.
func (s *Sealer) Open(sealed, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrOpen
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrOpen
	}
	return plaintext, nil
}

// LoadKeyMaterial returns sealing key material from, in order:
//  1. the file at path (if set)
//  2. the value of envVar (if set)
//  3. 32 fresh random bytes, reported via ephemeral=true
//
// Ephemeral material means sealed secrets will not survive a restart, so it is
// only fit for development.
func LoadKeyMaterial(path, envVar string) (material []byte, ephemeral bool, err error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, false, fmt.Errorf("failed to read key file: %w", err)
		}
		return data, false, nil
	}

	if v := os.Getenv(envVar); v != "" {
		return []byte(v), false, nil
	}

	material = make([]byte, 32)
	if _, err := rand.Read(material); err != nil {
		return nil, false, fmt.Errorf("failed to generate ephemeral key: %w", err)
	}
	return material, true, nil
}
