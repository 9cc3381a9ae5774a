package authsdk

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeneratePKCEChallenge(t *testing.T) {
	t.Parallel()

	pkce, err := GeneratePKCEChallenge()
	require.NoError(t, err)
	require.NotNil(t, pkce)

	require.NotEmpty(t, pkce.Verifier)
	require.GreaterOrEqual(t, len(pkce.Verifier), 43)
	require.Equal(t, "S256", pkce.Method)

	hash := sha256.Sum256([]byte(pkce.Verifier))
	expectedChallenge := base64.RawURLEncoding.EncodeToString(hash[:])
	require.Equal(t, expectedChallenge, pkce.Challenge)
}

func TestBuildAuthorizeURL(t *testing.T) {
	t.Parallel()

	client := NewSDKClient("https://auth.example.com/")

	t.Run("minimal parameters", func(t *testing.T) {
		u := client.BuildAuthorizeURL(AuthorizeRequest{
			ClientID:    "test-client",
			RedirectURI: "https://app.example.com/callback",
		})
		require.True(t, strings.HasPrefix(u, "https://auth.example.com/auth?"))
		require.Contains(t, u, "response_type=code")
		require.Contains(t, u, "client_id=test-client")
		require.Contains(t, u, "redirect_uri=https%3A%2F%2Fapp.example.com%2Fcallback")
		require.NotContains(t, u, "state=")
	})

	t.Run("all parameters", func(t *testing.T) {
		pkce, err := GeneratePKCEChallenge()
		require.NoError(t, err)

		u := client.BuildAuthorizeURL(AuthorizeRequest{
			ClientID:    "test-client",
			RedirectURI: "https://app.example.com/callback",
			Scopes:      []string{"openid", "email"},
			State:       "state123",
			Nonce:       "n-0S6",
			Prompt:      "login",
			PKCE:        pkce,
		})

		require.Contains(t, u, "scope=openid+email")
		require.Contains(t, u, "state=state123")
		require.Contains(t, u, "nonce=n-0S6")
		require.Contains(t, u, "prompt=login")
		require.Contains(t, u, "code_challenge="+pkce.Challenge)
		require.Contains(t, u, "code_challenge_method=S256")
	})
}

func TestParseAuthorizationResult(t *testing.T) {
	t.Parallel()

	t.Run("code in query", func(t *testing.T) {
		res, err := ParseAuthorizationResult("https://app.example.com/cb?code=abc&state=xyz&iss=https%3A%2F%2Fidp")
		require.NoError(t, err)
		require.Equal(t, "abc", res.Code)
		require.Equal(t, "xyz", res.State)
		require.Equal(t, "https://idp", res.Issuer)
		require.Empty(t, res.Error)
	})

	t.Run("id_token in fragment", func(t *testing.T) {
		res, err := ParseAuthorizationResult("https://app.example.com/cb#id_token=eyJ.x.y")
		require.NoError(t, err)
		require.Equal(t, "eyJ.x.y", res.IDToken)
		require.Empty(t, res.Code)
	})

	t.Run("login failure back to interaction", func(t *testing.T) {
		res, err := ParseAuthorizationResult("https://idp/interaction/01H?error=login_failed")
		require.NoError(t, err)
		require.Equal(t, "login_failed", res.Error)
	})
}

func TestParseAuthorizationCallback(t *testing.T) {
	t.Parallel()

	t.Run("success with code and state", func(t *testing.T) {
		code, state, err := ParseAuthorizationCallback("https://app.example.com/callback?code=auth-code-123&state=random-state")
		require.NoError(t, err)
		require.Equal(t, "auth-code-123", code)
		require.Equal(t, "random-state", state)
	})

	t.Run("error response", func(t *testing.T) {
		_, _, err := ParseAuthorizationCallback("https://app.example.com/callback?error=access_denied&error_description=User+denied+access")
		require.Error(t, err)
		require.Contains(t, err.Error(), "access_denied")
		require.Contains(t, err.Error(), "User denied access")
	})

	t.Run("missing code", func(t *testing.T) {
		_, _, err := ParseAuthorizationCallback("https://app.example.com/callback?state=random-state")
		require.Error(t, err)
		require.Contains(t, err.Error(), "missing authorization code")
	})

	t.Run("invalid URL", func(t *testing.T) {
		_, _, err := ParseAuthorizationCallback("://invalid-url")
		require.Error(t, err)
		require.Contains(t, strings.ToLower(err.Error()), "parse")
	})
}

func TestAuthorizeWithPassword_RebasesIssuerRedirects(t *testing.T) {
	t.Parallel()

	const issuer = "https://auth.example.com/project/oidc"

	var gotLogin bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/auth":
			http.Redirect(w, r, issuer+"/interaction/abc", http.StatusSeeOther)
		case r.URL.Path == "/interaction/abc/login" && r.Method == http.MethodPost:
			require.NoError(t, r.ParseForm())
			require.Equal(t, "user@example.com", r.PostForm.Get("email"))
			gotLogin = true
			http.Redirect(w, r, "http://localhost:3000/callback?code=c1&state=s1", http.StatusSeeOther)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	client := NewSDKClient(srv.URL).WithIssuer(issuer)
	res, err := client.AuthorizeWithPassword(context.Background(), AuthorizeRequest{
		ClientID:    "oidc_ui_tester",
		RedirectURI: "http://localhost:3000/callback",
		State:       "s1",
	}, "user@example.com", "pw")
	require.NoError(t, err)
	require.True(t, gotLogin)
	require.Equal(t, "c1", res.Code)
	require.Equal(t, "s1", res.State)
}

func TestStartAuthorization_RedirectedError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "http://localhost:3000/callback?error=login_required&state=s", http.StatusSeeOther)
	}))
	t.Cleanup(srv.Close)

	_, err := NewSDKClient(srv.URL).StartAuthorization(context.Background(), AuthorizeRequest{
		ClientID: "c", RedirectURI: "http://localhost:3000/callback", Prompt: "none",
	})
	require.ErrorIs(t, err, ErrLoginRequired)
}

func TestExchangeAuthorizationCode_ErrorMapping(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		require.Equal(t, "public-client", r.PostForm.Get("client_id"))
		ErrInvalidGrant.WriteError(w)
	}))
	t.Cleanup(srv.Close)

	_, err := NewSDKClient(srv.URL).ExchangeAuthorizationCode(
		context.Background(), PublicClient("public-client"), "code", "http://cb", "verifier")
	require.ErrorIs(t, err, ErrInvalidGrant)

	var oauthErr *OAuth2Error
	require.True(t, errors.As(err, &oauthErr))
	require.Equal(t, http.StatusBadRequest, oauthErr.StatusCode)
}

func TestRequestToken_ClientSecretBasic(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, secret, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "conf", id)
		require.Equal(t, "s3cr3t", secret)
		require.NoError(t, r.ParseForm())
		require.Empty(t, r.PostForm.Get("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(TokenResponse{AccessToken: "at", TokenType: "Bearer", ExpiresIn: 3600})
	}))
	t.Cleanup(srv.Close)

	tokens, err := NewSDKClient(srv.URL).RefreshGrant(
		context.Background(), ClientCredentials{ID: "conf", Secret: "s3cr3t"}, "rt")
	require.NoError(t, err)
	require.Equal(t, "at", tokens.AccessToken)
}
