package jwtx

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/oidcbridge/pkg/cryptox"
	"github.com/aussiebroadwan/oidcbridge/pkg/idx"
)

// SigningKeyRecord is the storage form of a signing key; the private key is
// sealed with the master key.
type SigningKeyRecord struct {
	ID                  string
	Kid                 string
	Algorithm           string
	PrivateKeyEncrypted []byte
	CreatedAt           time.Time
	RetiredAt           *time.Time
	ExpiresAt           time.Time
}

// KeyStore is the persistence port of the persistent key manager.
type KeyStore interface {
	// ListAllSigningKeys returns every key still inside its grace period,
	// retired ones included, so older tokens keep verifying.
	ListAllSigningKeys(ctx context.Context) ([]SigningKeyRecord, error)

	// ListActiveSigningKeys returns keys that may sign new tokens.
	ListActiveSigningKeys(ctx context.Context) ([]SigningKeyRecord, error)

	CreateSigningKey(ctx context.Context, key SigningKeyRecord) error
}

type PersistentKeyManagerOptions struct {
	KeyManagerOptions

	Store     KeyStore
	Encrypter *cryptox.KeyEncrypter

	// GracePeriod is how long a key stays published. Defaults to 30 days.
	GracePeriod time.Duration
}

// NewPersistentKeyManager loads sealed keys from the store and tops up the
// active set to NumKeys with freshly generated ones.
func NewPersistentKeyManager(ctx context.Context, opts PersistentKeyManagerOptions) (*KeyManager, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("jwtx: Store is required for persistent key manager")
	}
	if opts.Encrypter == nil {
		return nil, fmt.Errorf("jwtx: Encrypter is required for persistent key manager")
	}
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}
	if _, err := methodFor(opts.Algorithm); err != nil {
		return nil, err
	}
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = 30 * 24 * time.Hour
	}

	allKeys, err := opts.Store.ListAllSigningKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to load keys from database: %w", err)
	}
	activeKeys, err := opts.Store.ListActiveSigningKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to load active keys: %w", err)
	}

	keyset := NewKeySet()
	loaded := make(map[string]Signer, len(allKeys))
	for _, rec := range allKeys {
		signer, err := openSigner(opts.Encrypter, rec)
		if err != nil {
			return nil, err
		}
		if err := keyset.AddSigner(signer); err != nil {
			return nil, fmt.Errorf("jwtx: failed to add key %s to keyset: %w", rec.Kid, err)
		}
		loaded[rec.Kid] = signer
	}

	signers := make([]Signer, 0, opts.numKeys())
	for _, rec := range activeKeys {
		// Keys of another algorithm stay published but no longer sign.
		if rec.Algorithm != opts.Algorithm {
			continue
		}
		signer, ok := loaded[rec.Kid]
		if !ok {
			if signer, err = openSigner(opts.Encrypter, rec); err != nil {
				return nil, err
			}
		}
		signers = append(signers, signer)
	}

	now := time.Now().UTC()
	for len(signers) < opts.numKeys() {
		kid, err := generateRandomKeyID()
		if err != nil {
			return nil, err
		}
		pemKey, err := generateKey(opts.Algorithm, opts.RSABits)
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to generate new key: %w", err)
		}
		signer, err := NewSigner(opts.Algorithm, kid, pemKey)
		if err != nil {
			return nil, err
		}
		sealed, err := opts.Encrypter.Seal(pemKey)
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to encrypt new key: %w", err)
		}

		rec := SigningKeyRecord{
			ID:                  idx.NewAt(now).String(),
			Kid:                 kid,
			Algorithm:           opts.Algorithm,
			PrivateKeyEncrypted: sealed,
			CreatedAt:           now,
			ExpiresAt:           now.Add(opts.GracePeriod),
		}
		if err := opts.Store.CreateSigningKey(ctx, rec); err != nil {
			return nil, fmt.Errorf("jwtx: failed to store new key: %w", err)
		}
		if err := keyset.AddSigner(signer); err != nil {
			return nil, fmt.Errorf("jwtx: failed to add new key to keyset: %w", err)
		}
		signers = append(signers, signer)
	}

	return newKeyManager(opts.KeyManagerOptions, keyset, signers), nil
}

func openSigner(enc *cryptox.KeyEncrypter, rec SigningKeyRecord) (Signer, error) {
	pemKey, err := enc.Open(rec.PrivateKeyEncrypted)
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to decrypt key %s: %w", rec.Kid, err)
	}
	signer, err := NewSigner(rec.Algorithm, rec.Kid, pemKey)
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to create signer for key %s: %w", rec.Kid, err)
	}
	return signer, nil
}
