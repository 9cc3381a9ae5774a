package domain

import "time"

// SigningKey is an engine signing key stored sealed with the master key.
// Retired keys stay published until ExpiresAt so tokens they signed keep
// verifying.
type SigningKey struct {
	ID                  string     // ULID
	Kid                 string     // key identifier in the JWKS, e.g. "oidcbridge-3f9a..."
	Algorithm           string     // RS256, ES256, or EdDSA
	PrivateKeyEncrypted []byte     // AES-256-GCM sealed PEM
	CreatedAt           time.Time
	RetiredAt           *time.Time // nil while the key may sign
	ExpiresAt           time.Time  // removed by housekeeping after this
}

// IsActive returns true if the key is not retired and not expired.
func (k *SigningKey) IsActive(now time.Time) bool {
	return k.RetiredAt == nil && now.Before(k.ExpiresAt)
}

// IsExpired returns true if the key has passed its expiration time.
func (k *SigningKey) IsExpired(now time.Time) bool {
	return now.After(k.ExpiresAt)
}
