package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/domain"
	"github.com/aussiebroadwan/oidcbridge/internal/bridge/identity"
	"github.com/aussiebroadwan/oidcbridge/internal/bridge/service"
	"github.com/aussiebroadwan/oidcbridge/internal/bridge/store/drivers/sqlite"
	"github.com/aussiebroadwan/oidcbridge/pkg/cryptox"
	"github.com/aussiebroadwan/oidcbridge/pkg/jwtx"
)

const (
	testClientID    = "oidc_ui_tester"
	testRedirectURI = "http://localhost:3000/callback"
	internalPrefix  = "/project/region/oidc"
	backendJWKS     = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"
)

var testIssuer = domain.MustParseIssuer("http://bridge.example/test", internalPrefix)

// fakeBackend plays the identity backend for both login and lookup.
type fakeBackend struct {
	mu        sync.Mutex
	passwords map[string]string
	accounts  map[string]domain.Account
	verifyErr error
	verifies  atomic.Int32
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		passwords: map[string]string{"alice@example.com": "hunter2"},
		accounts: map[string]domain.Account{
			"uid-alice": {ID: "uid-alice", Email: "alice@example.com", EmailVerified: true, DisplayName: "Alice"},
		},
	}
}

func (f *fakeBackend) VerifyPassword(_ context.Context, email, password string) (domain.ResolvedIdentity, error) {
	f.verifies.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.verifyErr != nil {
		return domain.ResolvedIdentity{}, f.verifyErr
	}
	if pw, ok := f.passwords[email]; !ok || pw != password {
		return domain.ResolvedIdentity{}, identity.ErrAuthFailure
	}
	return domain.ResolvedIdentity{AccountID: "uid-alice", Token: "backend-id-token"}, nil
}

func (f *fakeBackend) LookupAccount(_ context.Context, id string) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return domain.Account{}, identity.ErrAccountNotFound
	}
	return a, nil
}

type testEnv struct {
	router  *Router
	engine  *service.Engine
	backend *fakeBackend
	logs    *bytes.Buffer
}

func newTestEnv(t *testing.T, mode CompletionMode) *testEnv {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	now := time.Now().UTC()
	require.NoError(t, s.Clients().UpsertClient(context.Background(), domain.Client{
		ID:                      testClientID,
		RedirectURIs:            []string{testRedirectURI},
		ResponseTypes:           []string{domain.ResponseTypeCode},
		GrantTypes:              []string{domain.GrantTypeAuthorizationCode, domain.GrantTypeRefreshToken},
		TokenEndpointAuthMethod: domain.AuthMethodNone,
		CreatedAt:               now,
		UpdatedAt:               now,
	}))

	keys, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Algorithm: jwtx.AlgorithmES256,
		Issuer:    testIssuer.Issuer(),
	})
	require.NoError(t, err)

	backend := newFakeBackend()
	engine := &service.Engine{
		Store:         s,
		Keys:          keys,
		Issuer:        testIssuer,
		ResolveClaims: service.NewAccountResolver(backend),
	}

	logs := &bytes.Buffer{}
	r := NewRouter(engine, slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	r.Identity = backend
	r.Mode = mode
	r.DiscoveryStage = service.ComposeDiscovery(service.WithJWKSURI(backendJWKS))
	r.ApplyRoutes()

	return &testEnv{router: r, engine: engine, backend: backend, logs: logs}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, "http://internal.local"+path, nil))
}

func (e *testEnv) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "http://internal.local"+path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req)
}

// externalPath turns an absolute issuer URL into the path a request
// arriving at the external prefix would carry.
func externalPath(t *testing.T, abs string) string {
	t.Helper()
	u, err := url.Parse(abs)
	require.NoError(t, err)
	require.Equal(t, "bridge.example", u.Host)
	return u.RequestURI()
}

func authorizeQuery(verifier string) url.Values {
	return url.Values{
		"client_id":             {testClientID},
		"redirect_uri":          {testRedirectURI},
		"response_type":         {"code"},
		"scope":                 {"openid email profile"},
		"state":                 {"st-1"},
		"nonce":                 {"n-1"},
		"code_challenge":        {cryptox.S256Challenge(verifier)},
		"code_challenge_method": {"S256"},
	}
}

// startLogin runs /auth and returns the external path of the interaction.
func (e *testEnv) startLogin(t *testing.T, verifier string) string {
	t.Helper()

	rec := e.get("/test/auth?" + authorizeQuery(verifier).Encode())
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	loc := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, testIssuer.URL("/interaction/")), loc)
	return externalPath(t, loc)
}

func newVerifier(t *testing.T) string {
	t.Helper()
	v, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)
	return v
}

func TestDiscoveryEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, CompletionCode)

	external := env.get("/test/.well-known/openid-configuration")
	require.Equal(t, http.StatusOK, external.Code)
	assert.Contains(t, external.Header().Get("Cache-Control"), "max-age=")

	var doc map[string]any
	require.NoError(t, json.Unmarshal(external.Body.Bytes(), &doc))
	assert.Equal(t, "http://bridge.example/test", doc["issuer"])
	assert.Equal(t, "http://bridge.example/test/auth", doc["authorization_endpoint"])
	assert.Equal(t, "http://bridge.example/test/token", doc["token_endpoint"])
	assert.Equal(t, backendJWKS, doc["jwks_uri"])

	internal := env.get(internalPrefix + "/.well-known/openid-configuration")
	require.Equal(t, http.StatusOK, internal.Code)
	assert.JSONEq(t, external.Body.String(), internal.Body.String())

	stripped := env.get("/.well-known/openid-configuration")
	require.Equal(t, http.StatusOK, stripped.Code)
	assert.JSONEq(t, external.Body.String(), stripped.Body.String())
}

func TestDiscoveryStageSkippedOnError(t *testing.T) {
	t.Parallel()

	engine := &service.Engine{
		Issuer: testIssuer,
		Keys:   &jwtx.KeyManager{KeySet: jwtx.NewKeySet()},
	}

	var calls int
	stage := func(doc domain.DiscoveryDocument) domain.DiscoveryDocument {
		calls++
		return doc
	}

	rec := httptest.NewRecorder()
	DiscoveryHandler(engine, stage).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.well-known/openid-configuration", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Zero(t, calls)
}

func TestJWKSEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, CompletionCode)

	rec := env.get("/test/jwks")
	require.Equal(t, http.StatusOK, rec.Code)

	var set jwtx.JWKS
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &set))
	assert.Len(t, set.Keys, 1)
}

func TestCodeFlow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, CompletionCode)
	verifier := newVerifier(t)

	interaction := env.startLogin(t, verifier)

	page := env.get(interaction)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, page.Body.String(), `action="http://bridge.example/test/interaction/`)
	assert.NotContains(t, page.Body.String(), "Login failed")

	login := env.postForm(interaction+"/login", url.Values{"email": {"alice@example.com"}, "password": {"hunter2"}})
	require.Equal(t, http.StatusSeeOther, login.Code, login.Body.String())

	cb, err := url.Parse(login.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "localhost:3000", cb.Host)
	assert.Equal(t, "st-1", cb.Query().Get("state"))
	assert.Equal(t, "http://bridge.example/test", cb.Query().Get("iss"))
	code := cb.Query().Get("code")
	require.NotEmpty(t, code)

	tokenRec := env.postForm("/test/token", url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {testRedirectURI},
		"code_verifier": {verifier},
		"client_id":     {testClientID},
	})
	require.Equal(t, http.StatusOK, tokenRec.Code, tokenRec.Body.String())
	assert.Equal(t, "no-store", tokenRec.Header().Get("Cache-Control"))

	var tokens struct {
		AccessToken string `json:"access_token"`
		IDToken     string `json:"id_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(tokenRec.Body.Bytes(), &tokens))
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.IDToken)
	assert.Equal(t, "Bearer", tokens.TokenType)

	for _, path := range []string{"/test/me", "/test/userinfo"} {
		req := httptest.NewRequest(http.MethodGet, "http://internal.local"+path, nil)
		req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
		rec := env.do(req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var info map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
		assert.Equal(t, "uid-alice", info["sub"])
		assert.Equal(t, "alice@example.com", info["email"])
		assert.Equal(t, "Alice", info["name"])
	}

	// the code is single use
	replay := env.postForm("/test/token", url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {testRedirectURI},
		"code_verifier": {verifier},
		"client_id":     {testClientID},
	})
	assert.Equal(t, http.StatusBadRequest, replay.Code)
	assert.Contains(t, replay.Body.String(), "invalid_grant")

	// the interaction is gone
	assert.Equal(t, http.StatusBadRequest, env.get(interaction).Code)
}

func TestUserInfoRejectsIDToken(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, CompletionCode)
	verifier := newVerifier(t)

	interaction := env.startLogin(t, verifier)
	login := env.postForm(interaction+"/login", url.Values{"email": {"alice@example.com"}, "password": {"hunter2"}})
	cb, _ := url.Parse(login.Header().Get("Location"))

	tokenRec := env.postForm("/test/token", url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {cb.Query().Get("code")},
		"redirect_uri":  {testRedirectURI},
		"code_verifier": {verifier},
		"client_id":     {testClientID},
	})
	require.Equal(t, http.StatusOK, tokenRec.Code)

	var tokens struct {
		IDToken string `json:"id_token"`
	}
	require.NoError(t, json.Unmarshal(tokenRec.Body.Bytes(), &tokens))

	req := httptest.NewRequest(http.MethodGet, "http://internal.local/test/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.IDToken)
	rec := env.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
}

func TestLoginFailures(t *testing.T) {
	t.Parallel()

	wantRedirect := func(t *testing.T, rec *httptest.ResponseRecorder, interaction string) {
		t.Helper()
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "http://bridge.example"+interaction+"?error=login_failed", rec.Header().Get("Location"))
	}

	t.Run("bad credentials", func(t *testing.T) {
		env := newTestEnv(t, CompletionCode)
		interaction := env.startLogin(t, newVerifier(t))

		rec := env.postForm(interaction+"/login", url.Values{"email": {"alice@example.com"}, "password": {"wrong"}})
		wantRedirect(t, rec, interaction)
		assert.Contains(t, env.logs.String(), `"level":"WARN","msg":"login_failed"`)
		assert.Contains(t, env.logs.String(), `"reason":"auth_failure"`)
		assert.NotContains(t, env.logs.String(), "wrong")

		page := env.get(interaction + "?error=login_failed")
		require.Equal(t, http.StatusOK, page.Code)
		assert.Contains(t, page.Body.String(), "Login failed")
	})

	t.Run("backend unavailable looks the same to the user", func(t *testing.T) {
		env := newTestEnv(t, CompletionCode)
		env.backend.verifyErr = identity.ErrUnavailable
		interaction := env.startLogin(t, newVerifier(t))

		rec := env.postForm(interaction+"/login", url.Values{"email": {"alice@example.com"}, "password": {"hunter2"}})
		wantRedirect(t, rec, interaction)
		assert.Contains(t, env.logs.String(), `"level":"ERROR","msg":"login_failed"`)
		assert.Contains(t, env.logs.String(), `"reason":"upstream_unavailable"`)
	})

	t.Run("missing field never reaches the backend", func(t *testing.T) {
		env := newTestEnv(t, CompletionCode)
		interaction := env.startLogin(t, newVerifier(t))

		rec := env.postForm(interaction+"/login", url.Values{"email": {"alice@example.com"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_request")

		rec = env.postForm(interaction+"/login", url.Values{"email": {"  "}, "password": {"x"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		assert.Zero(t, env.backend.verifies.Load())
	})

	t.Run("unknown interaction", func(t *testing.T) {
		env := newTestEnv(t, CompletionCode)

		rec := env.postForm("/test/interaction/nope/login", url.Values{"email": {"a@b.c"}, "password": {"x"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_request")
		assert.Zero(t, env.backend.verifies.Load())

		assert.Equal(t, http.StatusBadRequest, env.get("/test/interaction/nope").Code)
	})
}

func TestTokenCompletionMode(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, CompletionToken)

	interaction := env.startLogin(t, newVerifier(t))
	rec := env.postForm(interaction+"/login", url.Values{"email": {"alice@example.com"}, "password": {"hunter2"}})
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, testRedirectURI, loc.Scheme+"://"+loc.Host+loc.Path)

	frag, err := url.ParseQuery(loc.Fragment)
	require.NoError(t, err)
	assert.Equal(t, "backend-id-token", frag.Get("id_token"))
	assert.Equal(t, "st-1", frag.Get("state"))

	// the interaction stays resolvable
	assert.Equal(t, http.StatusOK, env.get(interaction).Code)
}

func TestAbort(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, CompletionCode)

	interaction := env.startLogin(t, newVerifier(t))
	rec := env.postForm(interaction+"/abort", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	cb, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "access_denied", cb.Query().Get("error"))
	assert.Equal(t, "st-1", cb.Query().Get("state"))
}

func TestAuthorizeErrors(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, CompletionCode)
	verifier := newVerifier(t)

	t.Run("unknown client", func(t *testing.T) {
		q := authorizeQuery(verifier)
		q.Set("client_id", "nope")
		rec := env.get("/test/auth?" + q.Encode())
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_client")
		assert.Empty(t, rec.Header().Get("Location"))
	})

	t.Run("unregistered redirect", func(t *testing.T) {
		q := authorizeQuery(verifier)
		q.Set("redirect_uri", "https://evil.example/cb")
		rec := env.get("/test/auth?" + q.Encode())
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_request")
	})

	t.Run("prompt none", func(t *testing.T) {
		q := authorizeQuery(verifier)
		q.Set("prompt", "none")
		rec := env.get("/test/auth?" + q.Encode())
		require.Equal(t, http.StatusSeeOther, rec.Code)

		cb, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "localhost:3000", cb.Host)
		assert.Equal(t, "login_required", cb.Query().Get("error"))
		assert.Equal(t, "http://bridge.example/test", cb.Query().Get("iss"))
	})

	t.Run("form post", func(t *testing.T) {
		rec := env.postForm("/test/auth", authorizeQuery(verifier))
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), testIssuer.URL("/interaction/")))
	})
}

func TestRevokeEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, CompletionCode)

	rec := env.postForm("/test/revoke", url.Values{"token": {"unknown"}, "client_id": {testClientID}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())

	rec = env.postForm("/test/revoke", url.Values{"client_id": {testClientID}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTokenCORSPreflight(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, CompletionCode)

	req := httptest.NewRequest(http.MethodOptions, "http://internal.local/test/token", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := env.do(req)

	assert.Less(t, rec.Code, 300)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, CompletionCode)

	assert.Equal(t, http.StatusOK, env.get("/livez").Code)

	rec := env.get("/test/readyz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"keys":"ok"`)
}

func TestNormalizeIssuer(t *testing.T) {
	t.Parallel()

	var seen *http.Request
	h := NormalizeIssuer(testIssuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r
	}))

	req := httptest.NewRequest(http.MethodGet, "http://10.0.0.7:8080"+internalPrefix+"/token?x=1", nil)
	req.Header.Set("X-Forwarded-Host", "spoofed.example")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, seen)
	assert.Equal(t, "bridge.example", seen.Host)
	assert.Equal(t, "http", seen.URL.Scheme)
	assert.Equal(t, "/token", seen.URL.Path)
	assert.Equal(t, "x=1", seen.URL.RawQuery)
	assert.Equal(t, "bridge.example", seen.Header.Get("X-Forwarded-Host"))
	assert.Equal(t, "http", seen.Header.Get("X-Forwarded-Proto"))
	assert.Equal(t, "/test", seen.Header.Get("X-Forwarded-Prefix"))

	// the original request is untouched
	assert.Equal(t, internalPrefix+"/token", req.URL.Path)
}

func TestParseCompletionMode(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]CompletionMode{"": CompletionCode, "code": CompletionCode, "TOKEN": CompletionToken} {
		got, err := ParseCompletionMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseCompletionMode("implicit")
	assert.Error(t, err)
}
