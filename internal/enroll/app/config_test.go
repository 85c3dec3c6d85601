package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"ENROLL_ISSUER", "ENROLL_DATABASE_FILE", "ENROLL_SECRET_KEY_FILE", "ENROLL_DRAFT_TTL",
		"ENROLL_SKEW", "ENROLL_QR_ENDPOINT", "ENROLL_QR_SIZE", "ENV", "LOG_LEVEL", "LOG_FORMAT",
		"PORT", "SHUTDOWN_GRACE_PERIOD", "HOUSEKEEPING_INTERVAL",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	require.Equal(t, Config{
		Issuer:               "bartab",
		DatabaseFile:         "enroll.db",
		DraftTTL:             10 * time.Minute,
		Skew:                 1,
		QREndpoint:           "/report/barcode",
		QRSize:               300,
		Env:                  "dev",
		LogLevel:             "info",
		LogFormat:            "json",
		Port:                 8080,
		ShutdownGracePeriod:  10 * time.Second,
		HousekeepingInterval: time.Minute,
	}, cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("ENROLL_ISSUER", "Acme Corp")
	t.Setenv("ENROLL_DRAFT_TTL", "5") // bare integers are minutes
	t.Setenv("ENROLL_SKEW", "0")
	t.Setenv("ENROLL_QR_SIZE", "not-a-number")
	t.Setenv("HOUSEKEEPING_INTERVAL", "30s")

	cfg := LoadConfig()
	require.Equal(t, "Acme Corp", cfg.Issuer)
	require.Equal(t, 5*time.Minute, cfg.DraftTTL)
	require.Equal(t, 0, cfg.Skew)
	require.Equal(t, 300, cfg.QRSize, "invalid values fall back to the default")
	require.Equal(t, 30*time.Second, cfg.HousekeepingInterval)
}

func TestConfigValidate(t *testing.T) {
	valid := Config{Issuer: "bartab", DraftTTL: time.Minute, Skew: 1, QRSize: 300, Port: 8080}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"blank issuer", func(c *Config) { c.Issuer = " " }, "ENROLL_ISSUER"},
		{"zero ttl", func(c *Config) { c.DraftTTL = 0 }, "ENROLL_DRAFT_TTL"},
		{"negative skew", func(c *Config) { c.Skew = -1 }, "ENROLL_SKEW"},
		{"huge skew", func(c *Config) { c.Skew = 11 }, "ENROLL_SKEW"},
		{"tiny qr", func(c *Config) { c.QRSize = 10 }, "ENROLL_QR_SIZE"},
		{"bad port", func(c *Config) { c.Port = 0 }, "PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}
