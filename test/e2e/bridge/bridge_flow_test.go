package bridge_test

import (
	"strings"
	"testing"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/oidcbridge/pkg/authsdk"
)

// TestCodeFlow consumes the bridge the way a third-party relying party
// does: go-oidc for discovery and ID token verification against /jwks.
func TestCodeFlow(t *testing.T) {
	backend := startFakeBackend(t)
	baseURL, _ := setupBridgeContainer(t, backend, nil)
	client := newClient(baseURL)
	ctx := t.Context()

	req, pkce := authorizeRequest(t)
	code := loginForCode(t, client, req)

	tokens, err := client.ExchangeAuthorizationCode(ctx, authsdk.PublicClient(clientID), code, redirectURI, pkce.Verifier)
	require.NoError(t, err)
	require.Equal(t, "Bearer", tokens.TokenType)
	require.NotEmpty(t, tokens.IDToken)
	assert.Empty(t, tokens.RefreshToken, "no offline_access requested")

	providerCtx := oidc.InsecureIssuerURLContext(ctx, issuer)
	provider, err := oidc.NewProvider(providerCtx, baseURL)
	require.NoError(t, err)

	var meta struct {
		Algs []string `json:"id_token_signing_alg_values_supported"`
	}
	require.NoError(t, provider.Claims(&meta))

	verifier := oidc.NewVerifier(issuer, oidc.NewRemoteKeySet(ctx, baseURL+"/jwks"), &oidc.Config{
		ClientID:             clientID,
		SupportedSigningAlgs: meta.Algs,
	})
	idToken, err := verifier.Verify(ctx, tokens.IDToken)
	require.NoError(t, err)
	assert.Equal(t, userID, idToken.Subject)
	assert.Equal(t, "e2e-nonce", idToken.Nonce)
	require.NoError(t, idToken.VerifyAccessToken(tokens.AccessToken))

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	require.NoError(t, idToken.Claims(&claims))
	assert.Equal(t, userEmail, claims.Email)
	assert.Equal(t, "Alice", claims.Name)

	info, err := client.GetUserInfo(ctx, tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, info.Subject)
	assert.Equal(t, "Alice", info.Name)

	// userinfo reads the backend on every call
	backend.setDisplayName("Alice Liddell")
	info, err = client.GetUserInfo(ctx, tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", info.Name)

	// codes are single use
	_, err = client.ExchangeAuthorizationCode(ctx, authsdk.PublicClient(clientID), code, redirectURI, pkce.Verifier)
	require.ErrorIs(t, err, authsdk.ErrInvalidGrant)
}

func TestPKCEMismatch(t *testing.T) {
	backend := startFakeBackend(t)
	baseURL, _ := setupBridgeContainer(t, backend, nil)
	client := newClient(baseURL)

	req, _ := authorizeRequest(t)
	code := loginForCode(t, client, req)

	other, err := authsdk.GeneratePKCEChallenge()
	require.NoError(t, err)

	_, err = client.ExchangeAuthorizationCode(t.Context(), authsdk.PublicClient(clientID), code, redirectURI, other.Verifier)
	require.ErrorIs(t, err, authsdk.ErrInvalidGrant)
}

func TestRefreshRotation(t *testing.T) {
	backend := startFakeBackend(t)
	baseURL, _ := setupBridgeContainer(t, backend, nil)
	client := newClient(baseURL)
	ctx := t.Context()
	creds := authsdk.PublicClient(clientID)

	req, pkce := authorizeRequest(t, "openid", "email", "offline_access")
	code := loginForCode(t, client, req)

	first, err := client.ExchangeAuthorizationCode(ctx, creds, code, redirectURI, pkce.Verifier)
	require.NoError(t, err)
	require.NotEmpty(t, first.RefreshToken)

	second, err := client.RefreshGrant(ctx, creds, first.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, second.RefreshToken)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// replaying the rotated token revokes the whole family
	_, err = client.RefreshGrant(ctx, creds, first.RefreshToken)
	require.ErrorIs(t, err, authsdk.ErrInvalidGrant)
	_, err = client.RefreshGrant(ctx, creds, second.RefreshToken)
	require.ErrorIs(t, err, authsdk.ErrInvalidGrant)
}

func TestLoginFailureRedirects(t *testing.T) {
	backend := startFakeBackend(t)
	baseURL, _ := setupBridgeContainer(t, backend, nil)
	client := newClient(baseURL)
	ctx := t.Context()

	req, _ := authorizeRequest(t)
	interactionURL, err := client.StartAuthorization(ctx, req)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(interactionURL, issuer+"/interaction/"), interactionURL)

	page, err := client.GetInteraction(ctx, interactionURL)
	require.NoError(t, err)
	assert.Contains(t, page, `name="password"`)

	badCreds, err := client.SubmitLogin(ctx, interactionURL, userEmail, "wrong")
	require.NoError(t, err)
	assert.Equal(t, interactionURL+"?error=login_failed", badCreds.Location)

	backend.down.Store(true)
	unavailable, err := client.SubmitLogin(ctx, interactionURL, userEmail, userPassword)
	require.NoError(t, err)
	assert.Equal(t, badCreds.Location, unavailable.Location)

	// the interaction survives failed attempts
	backend.down.Store(false)
	ok, err := client.SubmitLogin(ctx, interactionURL, userEmail, userPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, ok.Code)
}

func TestMissingFieldSkipsBackend(t *testing.T) {
	backend := startFakeBackend(t)
	baseURL, _ := setupBridgeContainer(t, backend, nil)
	client := newClient(baseURL)

	req, _ := authorizeRequest(t)
	interactionURL, err := client.StartAuthorization(t.Context(), req)
	require.NoError(t, err)

	_, err = client.SubmitLogin(t.Context(), interactionURL, userEmail, "")
	require.ErrorIs(t, err, authsdk.ErrInvalidRequest)
	assert.Zero(t, backend.signIns.Load())
}

func TestAbortInteraction(t *testing.T) {
	backend := startFakeBackend(t)
	baseURL, _ := setupBridgeContainer(t, backend, nil)
	client := newClient(baseURL)

	req, _ := authorizeRequest(t)
	interactionURL, err := client.StartAuthorization(t.Context(), req)
	require.NoError(t, err)

	res, err := client.AbortInteraction(t.Context(), interactionURL)
	require.NoError(t, err)
	assert.Equal(t, "access_denied", res.Error)
	assert.Equal(t, req.State, res.State)
}

func TestTokenCompletionMode(t *testing.T) {
	backend := startFakeBackend(t)
	baseURL, _ := setupBridgeContainer(t, backend, map[string]string{"OIDC_COMPLETION_MODE": "token"})
	client := newClient(baseURL)
	ctx := t.Context()

	req, _ := authorizeRequest(t)
	interactionURL, err := client.StartAuthorization(ctx, req)
	require.NoError(t, err)

	res, err := client.SubmitLogin(ctx, interactionURL, userEmail, userPassword)
	require.NoError(t, err)
	assert.Equal(t, "backend-id-token", res.IDToken)
	assert.Equal(t, req.State, res.State)
	assert.Empty(t, res.Code)

	_, err = client.GetInteraction(ctx, interactionURL)
	assert.NoError(t, err, "interaction stays resolvable in token mode")
}

func TestAuthorizeRejectsUnknownClient(t *testing.T) {
	backend := startFakeBackend(t)
	baseURL, _ := setupBridgeContainer(t, backend, nil)

	req, _ := authorizeRequest(t)
	req.ClientID = "unknown"

	_, err := newClient(baseURL).StartAuthorization(t.Context(), req)
	require.ErrorIs(t, err, authsdk.ErrInvalidClient)
}
