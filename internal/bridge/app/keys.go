package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/store"
	"github.com/aussiebroadwan/oidcbridge/pkg/cryptox"
	"github.com/aussiebroadwan/oidcbridge/pkg/jwtx"
)

// InitSigningKeys creates the KeyManager that signs ID tokens and access
// tokens.
//
// Storage modes:
//   - "ephemeral": keys are generated on startup and kept in memory only.
//     Tokens issued before a restart stop verifying.
//   - "persistent": keys are sealed with the master key and stored in the
//     database. Retired keys stay published for the grace period.
//   - "file": a single operator-provided PEM key (AUTH_SIGNING_KEY_FILE).
//
// Access tokens carry the client id as audience, so the verifier does not
// check audience.
func InitSigningKeys(ctx context.Context, cfg Config, issuer string, db store.Store, logger *slog.Logger) (*jwtx.KeyManager, error) {
	opts := jwtx.KeyManagerOptions{
		Algorithm: cfg.Algorithm,
		Issuer:    issuer,
		RSABits:   cfg.RSABits,
		NumKeys:   cfg.NumKeys,
	}

	switch cfg.KeyStorageMode {
	case "persistent":
		enc, err := cryptox.LoadKeyEncrypter(cfg.MasterKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load master key: %w", err)
		}
		if enc.Ephemeral {
			logger.Warn("no master key configured, persisted signing keys will not survive a restart")
		}

		logger.Info("initializing persistent key manager",
			"algorithm", cfg.Algorithm,
			"num_keys", cfg.NumKeys,
			"grace_period", cfg.KeyGracePeriod,
		)

		km, err := jwtx.NewPersistentKeyManager(ctx, jwtx.PersistentKeyManagerOptions{
			KeyManagerOptions: opts,
			Store:             store.NewKeyStoreAdapter(db),
			Encrypter:         enc,
			GracePeriod:       cfg.KeyGracePeriod,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize persistent key manager: %w", err)
		}

		logger.Info("persistent signing keys loaded",
			"algorithm", km.Algorithm(),
			"num_keys", km.NumSigners(),
			"issuer", issuer,
		)
		return km, nil

	case "file":
		pemKey, err := os.ReadFile(cfg.SigningKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read signing key: %w", err)
		}

		km, err := jwtx.NewStaticKeyManager(opts, pemKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize static key manager: %w", err)
		}

		logger.Info("signing key loaded from file",
			"algorithm", km.Algorithm(),
			"path", cfg.SigningKeyFile,
		)
		return km, nil

	default:
		km, err := jwtx.NewEphemeralKeyManager(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ephemeral key manager: %w", err)
		}

		logger.Info("generated ephemeral signing keys",
			"algorithm", km.Algorithm(),
			"num_keys", km.NumSigners(),
			"issuer", issuer,
		)
		logger.Warn("tokens issued before this start no longer verify")
		return km, nil
	}
}
