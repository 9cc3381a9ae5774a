package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClient_Allows(t *testing.T) {
	t.Parallel()

	c := Client{
		RedirectURIs:  []string{"http://localhost:3000/callback"},
		ResponseTypes: []string{"code", "code id_token"},
		GrantTypes:    []string{GrantTypeAuthorizationCode},
	}

	require.True(t, c.IsPublic())
	require.True(t, c.AllowsRedirectURI("http://localhost:3000/callback"))
	require.False(t, c.AllowsRedirectURI("http://localhost:3000/callback/"))
	require.False(t, c.AllowsRedirectURI(""))
	require.True(t, c.AllowsResponseType("code"))
	require.True(t, c.AllowsResponseType("id_token code"))
	require.False(t, c.AllowsResponseType("token"))
	require.False(t, c.AllowsResponseType(""))
	require.True(t, c.AllowsGrantType(GrantTypeAuthorizationCode))
	require.False(t, c.AllowsGrantType(GrantTypeRefreshToken))

	c.TokenEndpointAuthMethod = AuthMethodClientSecretBasic
	require.False(t, c.IsPublic())
}

func TestParseScope(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"openid", "email"}, ParseScope("  openid email openid "))
	require.Empty(t, ParseScope(""))
	require.Equal(t, []string{"openid", "email"}, FilterSupportedScopes([]string{"openid", "admin", "email"}))
}

func TestAccountClaims_ForScopes(t *testing.T) {
	t.Parallel()

	claims := Account{
		ID:            "uid-1",
		Email:         "a@example.com",
		EmailVerified: true,
		DisplayName:   "Alice",
	}.Claims()

	require.Equal(t, map[string]any{"sub": "uid-1"}, claims.ForScopes([]string{"openid"}))
	require.Equal(t, map[string]any{
		"sub":            "uid-1",
		"email":          "a@example.com",
		"email_verified": true,
	}, claims.ForScopes([]string{"openid", "email"}))
	require.Equal(t, map[string]any{
		"sub":  "uid-1",
		"name": "Alice",
	}, claims.ForScopes([]string{"openid", "profile"}))
}

func TestInteractionResult_Merge(t *testing.T) {
	t.Parallel()

	last := &InteractionResult{Error: "access_denied"}
	login := InteractionResult{Login: &LoginResult{AccountID: "a"}}

	merged := login.Merge(last)
	require.Equal(t, "a", merged.Login.AccountID)
	require.Equal(t, "access_denied", merged.Error)

	require.Equal(t, login, login.Merge(nil))
}

func TestInteraction_IsActive(t *testing.T) {
	t.Parallel()

	now := time.Now()
	i := Interaction{ExpiresAt: now.Add(time.Minute)}
	require.True(t, i.IsActive(now))
	require.False(t, i.IsActive(now.Add(2*time.Minute)))

	i.ConsumedAt = &now
	require.False(t, i.IsActive(now))
}
