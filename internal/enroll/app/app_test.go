package app

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/totpenroll/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Issuer:               "bartab",
		DatabaseFile:         ":memory:",
		DraftTTL:             10 * time.Minute,
		Skew:                 1,
		QREndpoint:           "/report/barcode",
		QRSize:               300,
		Env:                  "dev",
		LogLevel:             "error",
		LogFormat:            "text",
		Port:                 8080,
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Minute,
	}
}

func TestNewAndShutdown(t *testing.T) {
	t.Setenv(SecretKeyEnv, "")

	application, err := New(testConfig())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	application.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	application.housekeepingService.Start()
	require.NoError(t, application.Shutdown())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.QRSize = 0

	_, err := New(cfg)
	require.ErrorContains(t, err, "ENROLL_QR_SIZE")
}

func TestInitSealer(t *testing.T) {
	t.Setenv(SecretKeyEnv, "")

	t.Run("ephemeral key refused outside dev", func(t *testing.T) {
		cfg := testConfig()
		cfg.Env = "prod"
		_, err := InitSealer(cfg, slogx.Discard())
		require.ErrorContains(t, err, "no sealing key configured")
	})

	t.Run("key file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sealing.key")
		require.NoError(t, os.WriteFile(path, []byte("0123456789abcdef0123456789abcdef"), 0o600))

		cfg := testConfig()
		cfg.Env = "prod"
		cfg.SecretKeyFile = path

		a, err := InitSealer(cfg, slogx.Discard())
		require.NoError(t, err)
		b, err := InitSealer(cfg, slogx.Discard())
		require.NoError(t, err)

		sealed, err := a.Seal([]byte("JBSWY3DPEHPK3PXP"), []byte("alice"))
		require.NoError(t, err)
		opened, err := b.Open(sealed, []byte("alice"))
		require.NoError(t, err)
		require.Equal(t, "JBSWY3DPEHPK3PXP", string(opened))
	})

	t.Run("short key", func(t *testing.T) {
		t.Setenv(SecretKeyEnv, "short")
		_, err := InitSealer(testConfig(), slogx.Discard())
		require.ErrorContains(t, err, "invalid sealing key")
	})
}

func TestSQLiteDSN(t *testing.T) {
	require.Equal(t, ":memory:", sqliteDSN(":memory:"))
	require.Equal(t,
		"file:enroll.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		sqliteDSN("enroll.db"),
	)
}
