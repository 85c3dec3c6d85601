package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Issuer        string        // Issuer shown in authenticator apps when the account has none (default: bartab)
	DatabaseFile  string        // Path to SQLite database file (default: ./enroll.db)
	SecretKeyFile string        // Optional: file with key material for sealing TOTP secrets (falls back to ENROLL_SECRET_KEY)
	DraftTTL      time.Duration // How long an unconfirmed enrollment stays usable (default: 10m)
	Skew          int           // Accepted time steps either side of now (default: 1)
	QREndpoint    string        // Image endpoint embedded in qr_image_url (default: /report/barcode)
	QRSize        int           // QR image width and height in pixels (default: 300)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // How often stale enrollments are expired (default: 1m)
}

func LoadConfig() Config {
	return Config{
		Issuer:        getEnvOrDefault("ENROLL_ISSUER", "bartab"),
		DatabaseFile:  getEnvOrDefault("ENROLL_DATABASE_FILE", "enroll.db"),
		SecretKeyFile: os.Getenv("ENROLL_SECRET_KEY_FILE"),
		DraftTTL:      getEnvDurationOrDefault("ENROLL_DRAFT_TTL", 10*time.Minute),
		Skew:          getEnvIntOrDefault("ENROLL_SKEW", 1),
		QREndpoint:    getEnvOrDefault("ENROLL_QR_ENDPOINT", "/report/barcode"),
		QRSize:        getEnvIntOrDefault("ENROLL_QR_SIZE", 300),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Minute),
	}
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Issuer) == "" {
		errs = append(errs, errors.New("ENROLL_ISSUER must not be empty"))
	}
	if c.DraftTTL <= 0 {
		errs = append(errs, errors.New("ENROLL_DRAFT_TTL must be positive"))
	}
	if c.Skew < 0 || c.Skew > 10 {
		errs = append(errs, fmt.Errorf("ENROLL_SKEW must be between 0 and 10, got %d", c.Skew))
	}
	if c.QRSize < 64 || c.QRSize > 1024 {
		errs = append(errs, fmt.Errorf("ENROLL_QR_SIZE must be between 64 and 1024, got %d", c.QRSize))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
