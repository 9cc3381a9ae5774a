package jwtx

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates an access token and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (AccessClaims, error)
}

// VerifyOptions captures common expectations used by verifiers.
type VerifyOptions struct {
	// Issuer the token must have (claims.iss). Empty means "don't care".
	Issuer string

	// Audience values the token must contain one of. Empty means "don't care".
	Audience []string

	// Algorithms accepted in the header. Defaults to all supported ones.
	Algorithms []string

	// Leeway allows small clock skew when validating exp/nbf/iat.
	Leeway time.Duration
}

var (
	ErrMalformed = errors.New("jwtx: malformed token")
	ErrUnknownKID = errors.New("jwtx: unknown kid")
	ErrIssuer    = errors.New("jwtx: issuer mismatch")
	ErrAudience  = errors.New("jwtx: audience mismatch")
	ErrExpired   = errors.New("jwtx: token expired")
)

// KeySetVerifier checks signatures against a KeySet, so keys added to the set
// later are picked up without rebuilding the verifier.
type KeySetVerifier struct {
	keys *KeySet
	opts VerifyOptions
}

func NewVerifier(keys *KeySet, opts VerifyOptions) *KeySetVerifier {
	if len(opts.Algorithms) == 0 {
		opts.Algorithms = []string{AlgorithmRS256, AlgorithmES256, AlgorithmEdDSA}
	}
	return &KeySetVerifier{keys: keys, opts: opts}
}

// Verify validates the JWT string and returns its parsed claims.
func (v *KeySetVerifier) Verify(tokenStr string) (AccessClaims, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods(v.opts.Algorithms),
		jwt.WithLeeway(v.opts.Leeway),
		jwt.WithExpirationRequired(),
	}
	if v.opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.opts.Issuer))
	}

	var claims AccessClaims
	_, err := jwt.NewParser(parserOpts...).ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrUnknownKID
		}
		pub, err := v.keys.Get(kid)
		if err != nil {
			return nil, fmt.Errorf("%w %q", ErrUnknownKID, kid)
		}
		return pub, nil
	})

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return AccessClaims{}, ErrExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return AccessClaims{}, ErrIssuer
	case errors.Is(err, ErrUnknownKID):
		return AccessClaims{}, err
	default:
		return AccessClaims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if len(v.opts.Audience) > 0 && !slices.ContainsFunc(v.opts.Audience, func(a string) bool {
		return slices.Contains(claims.Audience, a)
	}) {
		return AccessClaims{}, ErrAudience
	}

	return claims, nil
}
