package bridge_test

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const backendJWKS = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

func getJSON(t *testing.T, url string) map[string]any {
	t.Helper()

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(body, &doc))
	return doc
}

func TestDiscoveryDocument(t *testing.T) {
	backend := startFakeBackend(t)
	baseURL, origin := setupBridgeContainer(t, backend, nil)

	doc, err := newClient(baseURL).Discover(t.Context())
	require.NoError(t, err)

	assert.Equal(t, issuer, doc.Issuer)
	assert.Equal(t, issuer+"/auth", doc.AuthorizationEndpoint)
	assert.Equal(t, issuer+"/token", doc.TokenEndpoint)
	assert.Equal(t, issuer+"/me", doc.UserinfoEndpoint)
	assert.Equal(t, backendJWKS, doc.JWKSURI)
	assert.Contains(t, doc.CodeChallengeMethodsSupported, "S256")
	assert.Contains(t, doc.IDTokenSigningAlgValuesSupported, "ES256")

	external := getJSON(t, baseURL+"/.well-known/openid-configuration")
	internal := getJSON(t, origin+internalPrefix+"/.well-known/openid-configuration")
	assert.Equal(t, external, internal)
}

func TestJWKSEndpoint(t *testing.T) {
	backend := startFakeBackend(t)
	baseURL, _ := setupBridgeContainer(t, backend, nil)

	jwks, err := newClient(baseURL).GetJWKS(t.Context())
	require.NoError(t, err)
	require.NotEmpty(t, jwks.Keys)
	for _, key := range jwks.Keys {
		assert.Equal(t, "ES256", key.Alg)
		assert.NotEmpty(t, key.Kid)
	}
}
