package cryptox_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/totpenroll/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func newSealer(t *testing.T, material string) *cryptox.Sealer {
	t.Helper()
	s, err := cryptox.NewSealer([]byte(material))
	require.NoError(t, err)
	return s
}

func TestSealOpen(t *testing.T) {
	s := newSealer(t, "test-master-key-for-encryption-12345")
	secret := []byte("GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ")

	sealed, err := s.Seal(secret, []byte("account-1"))
	require.NoError(t, err)
	require.NotContains(t, string(sealed), string(secret))

	opened, err := s.Open(sealed, []byte("account-1"))
	require.NoError(t, err)
	require.Equal(t, secret, opened)
}

func TestSealIsRandomised(t *testing.T) {
	s := newSealer(t, "test-master-key-multiple-times-xyz")
	data := []byte("same plaintext")

	a, err := s.Seal(data, nil)
	require.NoError(t, err)
	b, err := s.Seal(data, nil)
	require.NoError(t, err)
	require.NotEqual(t, a, b, "multiple seals should produce different ciphertexts")
}

func TestOpenFailures(t *testing.T) {
	s := newSealer(t, "test-master-key-failures-0001")
	sealed, err := s.Seal([]byte("secret"), []byte("account-1"))
	require.NoError(t, err)

	t.Run("wrong associated data", func(t *testing.T) {
		_, err := s.Open(sealed, []byte("account-2"))
		require.ErrorIs(t, err, cryptox.ErrOpen)
	})

	t.Run("wrong key", func(t *testing.T) {
		other := newSealer(t, "another-master-key-entirely-9999")
		_, err := other.Open(sealed, []byte("account-1"))
		require.ErrorIs(t, err, cryptox.ErrOpen)
	})

	t.Run("tampered", func(t *testing.T) {
		tampered := append([]byte(nil), sealed...)
		tampered[len(tampered)-1] ^= 0xFF
		_, err := s.Open(tampered, []byte("account-1"))
		require.ErrorIs(t, err, cryptox.ErrOpen)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := s.Open([]byte("short"), []byte("account-1"))
		require.ErrorIs(t, err, cryptox.ErrOpen)
	})
}

func TestNewSealerRejectsShortKey(t *testing.T) {
	_, err := cryptox.NewSealer([]byte("short"))
	require.Error(t, err)
}

func TestLoadKeyMaterial(t *testing.T) {
	t.Run("file wins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "key")
		require.NoError(t, os.WriteFile(path, []byte("from-file"), 0600))
		t.Setenv("TEST_SEAL_KEY", "from-env")

		m, eph, err := cryptox.LoadKeyMaterial(path, "TEST_SEAL_KEY")
		require.NoError(t, err)
		require.False(t, eph)
		require.Equal(t, "from-file", string(m))
	})

	t.Run("env fallback", func(t *testing.T) {
		t.Setenv("TEST_SEAL_KEY", "from-env")

		m, eph, err := cryptox.LoadKeyMaterial("", "TEST_SEAL_KEY")
		require.NoError(t, err)
		require.False(t, eph)
		require.Equal(t, "from-env", string(m))
	})

	t.Run("ephemeral", func(t *testing.T) {
		t.Setenv("TEST_SEAL_KEY", "")

		m, eph, err := cryptox.LoadKeyMaterial("", "TEST_SEAL_KEY")
		require.NoError(t, err)
		require.True(t, eph)
		require.Len(t, m, 32)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := cryptox.LoadKeyMaterial(filepath.Join(t.TempDir(), "nope"), "TEST_SEAL_KEY")
		require.Error(t, err)
	})
}
