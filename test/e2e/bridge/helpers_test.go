package bridge_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/oidcbridge/pkg/authsdk"
)

/*
 * Common constants and helpers for the bridge end-to-end tests: the
 * container setup, a fake identity backend on the host and assertions.
 */

const (
	testImageName = "oidcbridge-test:latest"

	issuer         = "http://bridge.example/test"
	issuerPath     = "/test"
	internalPrefix = "/project/region/oidc"
	clientID       = "oidc_ui_tester"
	redirectURI    = "http://localhost:3000/callback"

	userEmail    = "alice@example.com"
	userPassword = "hunter2"
	userID       = "uid-alice"
)

// TestMain builds the Docker image once before all tests and removes it
// after they complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building OIDC bridge Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up OIDC bridge Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/oidcbridge/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// fakeBackend speaks the slice of the identity toolkit REST API the bridge
// uses, the way the Auth emulator serves it.
type fakeBackend struct {
	srv  *httptest.Server
	port int

	mu          sync.Mutex
	displayName string
	down        atomic.Bool
	signIns     atomic.Int32
}

func startFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	// The container reaches the host through its gateway, so listen on all
	// interfaces rather than loopback.
	ln, err := net.Listen("tcp", "0.0.0.0:0")
	require.NoError(t, err)

	b := &fakeBackend{displayName: "Alice"}
	b.srv = httptest.NewUnstartedServer(http.HandlerFunc(b.serveHTTP))
	b.srv.Listener = ln
	b.srv.Start()
	t.Cleanup(b.srv.Close)

	b.port = ln.Addr().(*net.TCPAddr).Port
	return b
}

func (b *fakeBackend) setDisplayName(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.displayName = name
}

func writeBackendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *fakeBackend) serveHTTP(w http.ResponseWriter, r *http.Request) {
	if b.down.Load() {
		writeBackendJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error": map[string]any{"code": 503, "message": "UNAVAILABLE"},
		})
		return
	}

	switch {
	case strings.HasSuffix(r.URL.Path, "/v1/accounts:signInWithPassword"):
		b.signIns.Add(1)
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email != userEmail || req.Password != userPassword {
			writeBackendJSON(w, http.StatusBadRequest, map[string]any{
				"error": map[string]any{"code": 400, "message": "INVALID_LOGIN_CREDENTIALS"},
			})
			return
		}
		writeBackendJSON(w, http.StatusOK, map[string]any{
			"localId": userID,
			"email":   userEmail,
			"idToken": "backend-id-token",
		})

	case strings.HasSuffix(r.URL.Path, "/accounts:lookup"):
		var req struct {
			LocalID []string `json:"localId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.LocalID) != 1 || req.LocalID[0] != userID {
			writeBackendJSON(w, http.StatusOK, map[string]any{})
			return
		}
		b.mu.Lock()
		name := b.displayName
		b.mu.Unlock()
		writeBackendJSON(w, http.StatusOK, map[string]any{
			"users": []map[string]any{{
				"localId":       userID,
				"email":         userEmail,
				"emailVerified": true,
				"displayName":   name,
			}},
		})

	default:
		http.NotFound(w, r)
	}
}

// setupBridgeContainer starts the bridge wired to backend and returns the
// URL requests should go to (the container address plus the issuer path)
// along with the bare container origin.
func setupBridgeContainer(t *testing.T, backend *fakeBackend, extraEnv map[string]string) (baseURL, origin string) {
	t.Helper()
	ctx := context.Background()

	env := map[string]string{
		"OIDC_ISSUER":               issuer,
		"OIDC_INTERNAL_PREFIXES":    internalPrefix,
		"OIDC_CLIENT_ID":            clientID,
		"OIDC_CLIENT_REDIRECT_URIS": redirectURI,
		"OIDC_CLIENT_GRANT_TYPES":   "authorization_code,refresh_token",
		"IDENTITY_API_KEY":          "test-api-key",
		"IDENTITY_EMULATOR_HOST":    "host.testcontainers.internal:" + strconv.Itoa(backend.port),
		"IDENTITY_PROJECT_ID":       "demo-project",
		"IDENTITY_TIMEOUT":          "2s",
		"AUTH_ALGORITHM":            "ES256",
		"AUTH_DATABASE_FILE":        "/data/oidcbridge.db",
		"ENV":                       "test",
		"LOG_LEVEL":                 "info",
		"LOG_FORMAT":                "json",
		// Tests make many rapid requests from one address.
		"RATELIMIT_STRICT_REQUESTS":   "1000",
		"RATELIMIT_STRICT_WINDOW_SEC": "60",
		"RATELIMIT_STRICT_BURST":      "1000",
		"RATELIMIT_MODERATE_REQUESTS": "1000",
		"RATELIMIT_MODERATE_BURST":    "1000",
	}
	for k, v := range extraEnv {
		env[k] = v
	}

	req := testcontainers.ContainerRequest{
		Image:           testImageName,
		ExposedPorts:    []string{"8080/tcp"},
		Env:             env,
		HostAccessPorts: []int{backend.port},
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	origin = fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
	return origin + issuerPath, origin
}

func newClient(baseURL string) *authsdk.SDKClient {
	return authsdk.NewSDKClient(baseURL).WithIssuer(issuer)
}

func authorizeRequest(t *testing.T, scopes ...string) (authsdk.AuthorizeRequest, *authsdk.PKCEChallenge) {
	t.Helper()

	pkce, err := authsdk.GeneratePKCEChallenge()
	require.NoError(t, err)

	if len(scopes) == 0 {
		scopes = []string{"openid", "email", "profile"}
	}
	return authsdk.AuthorizeRequest{
		ClientID:    clientID,
		RedirectURI: redirectURI,
		Scopes:      scopes,
		State:       "e2e-state",
		Nonce:       "e2e-nonce",
		PKCE:        pkce,
	}, pkce
}

// loginForCode runs the browser part of the flow and returns the code.
func loginForCode(t *testing.T, client *authsdk.SDKClient, req authsdk.AuthorizeRequest) string {
	t.Helper()

	res, err := client.AuthorizeWithPassword(t.Context(), req, userEmail, userPassword)
	require.NoError(t, err)
	require.Empty(t, res.Error, "login should succeed: %s", res.Location)
	require.True(t, strings.HasPrefix(res.Location, redirectURI), res.Location)
	require.Equal(t, req.State, res.State)
	require.Equal(t, issuer, res.Issuer)
	require.NotEmpty(t, res.Code)
	return res.Code
}

func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
