// Package identity talks to a Firebase Auth compatible REST API: the
// Identity Toolkit endpoints for password sign-in and account lookup.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/domain"
)

const (
	DefaultBaseURL = "https://identitytoolkit.googleapis.com"
	DefaultTimeout = 5 * time.Second

	// emulatorAdminToken is what the Auth emulator accepts as an admin
	// bearer token.
	emulatorAdminToken = "owner"

	maxResponseBytes = 1 << 20
)

var adminScopes = []string{
	"https://www.googleapis.com/auth/identitytoolkit",
	"https://www.googleapis.com/auth/cloud-platform",
}

// Config configures a Client.
type Config struct {
	// APIKey is the web API key used for password sign-in.
	APIKey string

	// BaseURL of the REST API. Ignored when EmulatorHost is set.
	BaseURL string

	// EmulatorHost is the host:port of a local Auth emulator.
	EmulatorHost string

	// ProjectID for account lookups. Taken from the credentials when empty.
	ProjectID string

	// CredentialsJSON is a service account key used to authenticate account
	// lookups. Application default credentials are used when empty.
	CredentialsJSON []byte

	// Timeout bounds every single backend call.
	Timeout time.Duration
}

// Client is safe for concurrent use.
type Client struct {
	apiKey    string
	baseURL   string
	projectID string
	timeout   time.Duration

	http  *http.Client
	admin *http.Client
}

// New builds a Client. Admin credentials are resolved once here; token
// refresh happens lazily inside the oauth2 transport.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("identity: API key is required")
	}

	c := &Client{
		apiKey:    cfg.APIKey,
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		projectID: cfg.ProjectID,
		timeout:   cfg.Timeout,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}

	base := cleanhttp.DefaultPooledTransport()
	c.http = &http.Client{Transport: base}

	var ts oauth2.TokenSource
	switch {
	case cfg.EmulatorHost != "":
		c.baseURL = "http://" + strings.TrimSuffix(cfg.EmulatorHost, "/") + "/identitytoolkit.googleapis.com"
		ts = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: emulatorAdminToken})
	case len(cfg.CredentialsJSON) > 0:
		creds, err := google.CredentialsFromJSON(ctx, cfg.CredentialsJSON, adminScopes...)
		if err != nil {
			return nil, fmt.Errorf("identity: parse credentials: %w", err)
		}
		if c.projectID == "" {
			c.projectID = creds.ProjectID
		}
		ts = creds.TokenSource
	default:
		creds, err := google.FindDefaultCredentials(ctx, adminScopes...)
		if err != nil {
			return nil, fmt.Errorf("identity: no admin credentials for account lookup: %w", err)
		}
		if c.projectID == "" {
			c.projectID = creds.ProjectID
		}
		ts = creds.TokenSource
	}

	if c.projectID == "" {
		return nil, fmt.Errorf("identity: project id is required for account lookup")
	}

	c.admin = &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.ReuseTokenSource(nil, ts),
			Base:   base,
		},
	}

	return c, nil
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID string `json:"localId"`
	IDToken string `json:"idToken"`
}

// VerifyPassword checks an email and password with one call to
// accounts:signInWithPassword. A 4xx answer is ErrAuthFailure; anything
// else that is not a success is ErrUnavailable. There are no retries.
func (c *Client) VerifyPassword(ctx context.Context, email, password string) (domain.ResolvedIdentity, error) {
	endpoint := c.baseURL + "/v1/accounts:signInWithPassword?key=" + url.QueryEscape(c.apiKey)

	var out signInResponse
	err := c.post(ctx, c.http, endpoint, signInRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &out, ErrAuthFailure)
	if err != nil {
		return domain.ResolvedIdentity{}, err
	}
	if out.LocalID == "" {
		return domain.ResolvedIdentity{}, fmt.Errorf("%w: sign-in response without localId", ErrUnavailable)
	}

	return domain.ResolvedIdentity{AccountID: out.LocalID, Token: out.IDToken}, nil
}

type lookupRequest struct {
	LocalID []string `json:"localId"`
}

type lookupResponse struct {
	Users []struct {
		LocalID       string `json:"localId"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"emailVerified"`
		DisplayName   string `json:"displayName"`
		PhotoURL      string `json:"photoUrl"`
		Disabled      bool   `json:"disabled"`
	} `json:"users"`
}

// LookupAccount fetches the current user record for id.
func (c *Client) LookupAccount(ctx context.Context, id string) (domain.Account, error) {
	if id == "" {
		return domain.Account{}, ErrAccountNotFound
	}

	endpoint := c.baseURL + "/v1/projects/" + url.PathEscape(c.projectID) + "/accounts:lookup"

	var out lookupResponse
	if err := c.post(ctx, c.admin, endpoint, lookupRequest{LocalID: []string{id}}, &out, ErrAccountNotFound); err != nil {
		return domain.Account{}, err
	}
	if len(out.Users) == 0 {
		return domain.Account{}, ErrAccountNotFound
	}

	u := out.Users[0]
	return domain.Account{
		ID:            u.LocalID,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		DisplayName:   u.DisplayName,
		PhotoURL:      u.PhotoURL,
		Disabled:      u.Disabled,
	}, nil
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// post sends one JSON request under the client timeout. Client errors are
// reported as clientErrKind except 401 and 403, which mean the bridge
// itself is misconfigured and so count as unavailability.
func (c *Client) post(ctx context.Context, hc *http.Client, endpoint string, in, out any, clientErrKind error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("identity: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("identity: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, redact(err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorResponse
		_ = json.Unmarshal(raw, &e)

		kind := ErrUnavailable
		if resp.StatusCode >= 400 && resp.StatusCode < 500 &&
			resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
			kind = clientErrKind
		}
		return &BackendError{Status: resp.StatusCode, Message: e.Error.Message, kind: kind}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}

// redact strips the request URL, which carries the API key, from transport
// errors before they reach the logs.
func redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}
