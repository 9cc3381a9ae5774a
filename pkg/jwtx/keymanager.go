package jwtx

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/aussiebroadwan/oidcbridge/pkg/cryptox"
)

// KeyManager owns the signing keys of the bridge: the active signers used
// for new tokens and the KeySet published at /jwks and used for verification.
type KeyManager struct {
	Verifier Verifier
	KeySet   *KeySet

	algorithm string

	signers []Signer
	mu      sync.RWMutex
}

// KeyManagerOptions configures the KeyManager for a specific use case.
type KeyManagerOptions struct {
	// Algorithm: "RS256", "ES256" or "EdDSA".
	Algorithm string

	// Issuer is the issuer claim (iss) that will be validated in tokens.
	Issuer string

	// Audience values accepted by the verifier. Empty means no audience check.
	Audience []string

	// RSABits for generated RS256 keys. Defaults to 2048.
	RSABits int

	// NumKeys to keep active. Clamped to [1, 10], defaults to 1.
	NumKeys int
}

func (o KeyManagerOptions) numKeys() int {
	return min(max(o.NumKeys, 1), 10)
}

func newKeyManager(opts KeyManagerOptions, keyset *KeySet, signers []Signer) *KeyManager {
	return &KeyManager{
		Verifier: NewVerifier(keyset, VerifyOptions{
			Issuer:   opts.Issuer,
			Audience: opts.Audience,
		}),
		KeySet:    keyset,
		algorithm: opts.Algorithm,
		signers:   signers,
	}
}

// NewEphemeralKeyManager generates keys that only live in memory. Every
// token becomes unverifiable when the process restarts.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}
	if _, err := methodFor(opts.Algorithm); err != nil {
		return nil, err
	}

	keyset := NewKeySet()
	signers := make([]Signer, 0, opts.numKeys())

	for i := range opts.numKeys() {
		kid, err := generateRandomKeyID()
		if err != nil {
			return nil, err
		}
		pemKey, err := generateKey(opts.Algorithm, opts.RSABits)
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to generate signer %d: %w", i+1, err)
		}
		signer, err := NewSigner(opts.Algorithm, kid, pemKey)
		if err != nil {
			return nil, err
		}
		if err := keyset.AddSigner(signer); err != nil {
			return nil, fmt.Errorf("jwtx: failed to add signer %d to keyset: %w", i+1, err)
		}
		signers = append(signers, signer)
	}

	return newKeyManager(opts, keyset, signers), nil
}

// NewStaticKeyManager uses one operator-provided PEM key. The kid is the
// key's RFC 7638 thumbprint so it is stable across restarts.
func NewStaticKeyManager(opts KeyManagerOptions, pemKey []byte) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}

	signer, err := NewSigner(opts.Algorithm, "", pemKey)
	if err != nil {
		return nil, err
	}
	keyset := NewKeySet()
	if err := keyset.AddSigner(signer); err != nil {
		return nil, err
	}
	return newKeyManager(opts, keyset, []Signer{signer}), nil
}

// Algorithm returns the signing algorithm being used.
func (km *KeyManager) Algorithm() string {
	return km.algorithm
}

// IsReady returns true if the KeyManager can both sign and verify.
func (km *KeyManager) IsReady() bool {
	return km.NumSigners() > 0 && km.KeySet.IsReady()
}

// GetSigner returns one of the active signers, chosen at random.
func (km *KeyManager) GetSigner() Signer {
	km.mu.RLock()
	defer km.mu.RUnlock()

	switch len(km.signers) {
	case 0:
		return nil
	case 1:
		return km.signers[0]
	default:
		return km.signers[rand.IntN(len(km.signers))]
	}
}

// NumSigners returns the number of active signing keys.
func (km *KeyManager) NumSigners() int {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return len(km.signers)
}

// generateRandomKeyID creates "oidcbridge-{128-bit token}".
func generateRandomKeyID() (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", fmt.Errorf("jwtx: failed to generate key ID: %w", err)
	}
	return "oidcbridge-" + token, nil
}
