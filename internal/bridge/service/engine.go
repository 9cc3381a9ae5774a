package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/domain"
	"github.com/aussiebroadwan/oidcbridge/internal/bridge/store"
	"github.com/aussiebroadwan/oidcbridge/pkg/jwtx"
)

// Protocol errors. The message of each is the OAuth2 error code it maps to.
var (
	ErrUnknownInteraction      = errors.New("unknown_interaction")
	ErrInvalidClient           = errors.New("invalid_client")
	ErrInvalidRedirectURI      = errors.New("invalid_redirect_uri")
	ErrInvalidRequest          = errors.New("invalid_request")
	ErrUnsupportedResponseType = errors.New("unsupported_response_type")
	ErrUnsupportedGrantType    = errors.New("unsupported_grant_type")
	ErrInvalidScope            = errors.New("invalid_scope")
	ErrLoginRequired           = errors.New("login_required")
	ErrInvalidGrant            = errors.New("invalid_grant")
	ErrUnauthorizedClient      = errors.New("unauthorized_client")
	ErrInvalidToken            = errors.New("invalid_token")
	ErrAccessDenied            = errors.New("access_denied")
	ErrKeysUnavailable         = errors.New("signing keys unavailable")
)

// Defaults for Engine lifetimes left at zero.
const (
	DefaultInteractionTTL = time.Hour
	DefaultCodeTTL        = 60 * time.Second
)

// ClaimsResolver returns the current claims for an account, or false when
// the account does not exist (or may not sign in). It is consulted on every
// token issuance and every userinfo call, never cached.
type ClaimsResolver func(ctx context.Context, accountID string) (domain.AccountClaims, bool)

// Engine is the in-process OpenID Provider. It owns interactions,
// authorization codes and tokens; who the user is comes from ResolveClaims.
//
// An Engine is built once by the process entry point and passed to the
// HTTP layer explicitly.
type Engine struct {
	Store         store.Store
	Keys          *jwtx.KeyManager
	Issuer        domain.IssuerContext
	ResolveClaims ClaimsResolver

	InteractionTTL time.Duration
	CodeTTL        time.Duration
	AccessTTL      time.Duration
	IDTokenTTL     time.Duration
	RefreshTTL     time.Duration

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// AuthorizationError is reported to the client by redirecting to its
// (already validated) redirect URI rather than by an error page.
type AuthorizationError struct {
	Err         error
	Description string
	RedirectURI string
	State       string
}

func (e *AuthorizationError) Error() string {
	if e.Description == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Description
}

func (e *AuthorizationError) Unwrap() error { return e.Err }

// Code is the OAuth2 error code sent to the client.
func (e *AuthorizationError) Code() string { return e.Err.Error() }

// Location builds the error redirect, including the RFC 9207 iss parameter.
func (e *AuthorizationError) Location(issuer string) string {
	v := url.Values{}
	v.Set("error", e.Code())
	if e.Description != "" {
		v.Set("error_description", e.Description)
	}
	if e.State != "" {
		v.Set("state", e.State)
	}
	v.Set("iss", issuer)
	return appendQuery(e.RedirectURI, v)
}

// appendQuery adds v to the query of a redirect URI, keeping whatever query
// the registered URI already carries.
func appendQuery(rawURI string, v url.Values) string {
	u, err := url.Parse(rawURI)
	if err != nil {
		return rawURI
	}
	q := u.Query()
	for k, vals := range v {
		q[k] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}
