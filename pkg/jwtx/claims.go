package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token lifetimes.
const (
	DefaultAccessTokenTTL  = time.Hour
	DefaultIDTokenTTL      = time.Hour
	DefaultRefreshTokenTTL = 14 * 24 * time.Hour
)

// AccessClaims are the claims of the JWT access tokens the bridge issues.
// They are only consumed by the bridge's own userinfo endpoint and by
// resource servers that trust its JWKS.
type AccessClaims struct {
	jwt.RegisteredClaims

	// Space-delimited granted scopes.
	Scope string `json:"scope,omitempty"`

	ClientID string `json:"client_id,omitempty"`
}

// Scopes splits the scope claim.
func (c AccessClaims) Scopes() []string {
	return strings.Fields(c.Scope)
}

// IDTokenClaims are the OpenID Connect ID Token claims.
type IDTokenClaims struct {
	jwt.RegisteredClaims

	AuthTime *jwt.NumericDate `json:"auth_time,omitempty"`
	Nonce    string           `json:"nonce,omitempty"`
	AtHash   string           `json:"at_hash,omitempty"`
	AZP      string           `json:"azp,omitempty"`
	AMR      []string         `json:"amr,omitempty"`

	Email         string `json:"email,omitempty"`
	EmailVerified *bool  `json:"email_verified,omitempty"`
	Name          string `json:"name,omitempty"`
	Picture       string `json:"picture,omitempty"`
}

// NewRegisteredClaims fills the registered claims shared by both token kinds.
func NewRegisteredClaims(issuer, subject string, audience []string, ttl time.Duration, now time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings(audience),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        NewJTI(),
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
