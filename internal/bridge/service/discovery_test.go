package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/domain"
	"github.com/aussiebroadwan/oidcbridge/pkg/jwtx"
)

const backendJWKS = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

func TestDiscovery(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t)

	doc, err := e.Discovery(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "https://auth.example.com/test", doc.Issuer)
	assert.Equal(t, "https://auth.example.com/test/auth", doc.AuthorizationEndpoint)
	assert.Equal(t, "https://auth.example.com/test/token", doc.TokenEndpoint)
	assert.Equal(t, "https://auth.example.com/test/me", doc.UserinfoEndpoint)
	assert.Equal(t, "https://auth.example.com/test/jwks", doc.JWKSURI)
	assert.Equal(t, "https://auth.example.com/test/revoke", doc.RevocationEndpoint)
	assert.Equal(t, []string{"S256"}, doc.CodeChallengeMethodsSupported)
	assert.Equal(t, []string{jwtx.AlgorithmES256}, doc.IDTokenSigningAlgValuesSupported)
	assert.Equal(t, []string{"openid", "offline_access", "email", "profile"}, doc.ScopesSupported)
	assert.True(t, doc.AuthorizationResponseISSParameterSupported)
}

func TestDiscoveryWithoutKeys(t *testing.T) {
	t.Parallel()

	e := &Engine{
		Issuer: testIssuer,
		Keys:   &jwtx.KeyManager{KeySet: jwtx.NewKeySet()},
	}
	_, err := e.Discovery(context.Background())
	assert.ErrorIs(t, err, ErrKeysUnavailable)
}

func TestWithJWKSURI(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t)
	before, err := e.Discovery(context.Background())
	require.NoError(t, err)

	after := WithJWKSURI(backendJWKS)(before)
	assert.Equal(t, backendJWKS, after.JWKSURI)

	// only jwks_uri differs
	after.JWKSURI = before.JWKSURI
	assert.Equal(t, before, after)

	assert.Equal(t, before, WithJWKSURI("")(before))
}

func TestComposeDiscovery(t *testing.T) {
	t.Parallel()

	var order []string
	stage := func(name string) DiscoveryStage {
		return func(doc domain.DiscoveryDocument) domain.DiscoveryDocument {
			order = append(order, name)
			return doc
		}
	}

	doc := ComposeDiscovery(stage("a"), nil, WithJWKSURI("https://keys.example"), stage("b"))(domain.DiscoveryDocument{
		Issuer: "https://auth.example.com",
	})

	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, "https://keys.example", doc.JWKSURI)
	assert.Equal(t, "https://auth.example.com", doc.Issuer)
}
