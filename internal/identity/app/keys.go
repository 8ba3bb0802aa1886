package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/passage/pkg/cryptox"
	"github.com/aussiebroadwan/passage/pkg/jwtx"
)

// secretSize is the byte length of generated secret and pepper files.
const secretSize = 48

// Secrets are the two long-lived values the service cannot run without.
type Secrets struct {
	Signing []byte
	Pepper  string
}

// LoadSecrets reads the signing secret and pepper, generating either file on
// first start. Losing the secret invalidates every outstanding token; losing
// the pepper invalidates every stored password hash.
func LoadSecrets(cfg Config, logger *slog.Logger) (Secrets, error) {
	secret, err := cryptox.LoadOrCreateKeyFile(cfg.SecretFile, secretSize)
	if err != nil {
		return Secrets{}, fmt.Errorf("signing secret: %w", err)
	}
	if len(secret) < jwtx.MinSecretSize {
		return Secrets{}, fmt.Errorf("signing secret: %w", jwtx.ErrWeakSecret)
	}

	pepper, err := cryptox.LoadOrCreateKeyFile(cfg.PepperFile, secretSize)
	if err != nil {
		return Secrets{}, fmt.Errorf("pepper: %w", err)
	}

	logger.Info("secrets loaded", "secret_file", cfg.SecretFile, "pepper_file", cfg.PepperFile)
	return Secrets{Signing: []byte(secret), Pepper: pepper}, nil
}
