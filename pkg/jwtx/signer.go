package jwtx

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/oidcbridge/pkg/cryptox"
)

// Supported JWT signing algorithms
const (
	AlgorithmRS256 = "RS256"
	AlgorithmES256 = "ES256"
	AlgorithmEdDSA = "EdDSA"
)

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	KID() string
	Sign(jwt.Claims) (string, error)
	PublicJWK() JWK
}

// keySigner signs with any private key the supported algorithms accept.
type keySigner struct {
	kid    string
	alg    string
	method jwt.SigningMethod
	key    crypto.Signer
	jwk    JWK
}

// NewSigner loads a private key from PEM and binds it to alg. The key type
// must match: RSA for RS256, P-256 for ES256, Ed25519 for EdDSA.
func NewSigner(alg, kid string, pemKey []byte) (Signer, error) {
	key, err := cryptox.ParsePrivateKeyPEM(pemKey)
	if err != nil {
		return nil, fmt.Errorf("jwtx: %w", err)
	}
	return newKeySigner(alg, kid, key)
}

func newKeySigner(alg, kid string, key crypto.Signer) (*keySigner, error) {
	method, err := methodFor(alg)
	if err != nil {
		return nil, err
	}

	switch k := key.(type) {
	case *rsa.PrivateKey:
		if alg != AlgorithmRS256 {
			return nil, fmt.Errorf("jwtx: RSA key cannot sign %s", alg)
		}
	case *ecdsa.PrivateKey:
		if alg != AlgorithmES256 || k.Curve != elliptic.P256() {
			return nil, fmt.Errorf("jwtx: EC key cannot sign %s", alg)
		}
	case ed25519.PrivateKey:
		if alg != AlgorithmEdDSA {
			return nil, fmt.Errorf("jwtx: Ed25519 key cannot sign %s", alg)
		}
	default:
		return nil, errors.New("jwtx: unsupported key type")
	}

	jwk, err := NewJWK(kid, alg, key.Public())
	if err != nil {
		return nil, err
	}
	if kid == "" {
		kid = jwk.Thumbprint()
		jwk.Kid = kid
	}

	return &keySigner{kid: kid, alg: alg, method: method, key: key, jwk: jwk}, nil
}

func (s *keySigner) Alg() string    { return s.alg }
func (s *keySigner) KID() string    { return s.kid }
func (s *keySigner) PublicJWK() JWK { return s.jwk }

// Sign takes your claims and turns them into a signed JWT string.
func (s *keySigner) Sign(claims jwt.Claims) (string, error) {
	t := jwt.NewWithClaims(s.method, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

func methodFor(alg string) (jwt.SigningMethod, error) {
	switch alg {
	case AlgorithmRS256:
		return jwt.SigningMethodRS256, nil
	case AlgorithmES256:
		return jwt.SigningMethodES256, nil
	case AlgorithmEdDSA:
		return jwt.SigningMethodEdDSA, nil
	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q (supported: RS256, ES256, EdDSA)", alg)
	}
}

// generateKey creates fresh PEM key material for alg.
func generateKey(alg string, rsaBits int) ([]byte, error) {
	switch alg {
	case AlgorithmRS256:
		if rsaBits == 0 {
			rsaBits = 2048
		}
		return cryptox.GenerateRSAKey(rsaBits)
	case AlgorithmES256:
		return cryptox.GenerateES256Key()
	case AlgorithmEdDSA:
		return cryptox.GenerateEd25519Key()
	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q", alg)
	}
}
