package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/totpenroll/pkg/cryptox"
)

// SecretKeyEnv holds sealing key material when no key file is configured.
const SecretKeyEnv = "ENROLL_SECRET_KEY"

// InitSealer loads the key that seals TOTP secrets at rest.
//
// Without a key file or ENROLL_SECRET_KEY a random key is generated, which
// makes every stored authenticator unreadable after a restart. That is
// allowed in dev only.
func InitSealer(cfg Config, logger *slog.Logger) (*cryptox.Sealer, error) {
	material, ephemeral, err := cryptox.LoadKeyMaterial(cfg.SecretKeyFile, SecretKeyEnv)
	if err != nil {
		return nil, err
	}

	if ephemeral {
		if cfg.Env != "dev" {
			return nil, errors.New("no sealing key configured: set ENROLL_SECRET_KEY_FILE or " + SecretKeyEnv)
		}
		logger.Warn("using an ephemeral sealing key, stored authenticators will not survive a restart")
	}

	sealer, err := cryptox.NewSealer(material)
	if err != nil {
		return nil, fmt.Errorf("invalid sealing key: %w", err)
	}
	return sealer, nil
}
