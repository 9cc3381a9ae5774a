package domain

import "time"

// TokenPair is what the token endpoint returns.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"` // seconds
	Scope        string `json:"scope,omitempty"`
}

// RefreshToken models the stored refresh token record. The opaque token
// itself is never stored, only its fingerprint.
type RefreshToken struct {
	ID        string
	TokenHash string // base64url SHA-256
	ClientID  string
	AccountID string
	Scopes    []string
	AMR       []string
	AuthTime  time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// IsActive reports whether the token can still be exchanged.
func (t RefreshToken) IsActive(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
