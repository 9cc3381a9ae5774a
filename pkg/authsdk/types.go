package authsdk

import (
	"github.com/aussiebroadwan/oidcbridge/pkg/jwtx"
)

// ============================================================================
// Internal Response Types (used for JSON unmarshaling)
// ============================================================================

// ErrorResponse represents a standard OAuth2 error response per RFC 6749.
// Client code should use the OAuth2Error type from errors.go instead.
type ErrorResponse struct {
	// Error is the OAuth2 error code (e.g., "invalid_request", "invalid_grant")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// Token Types
// ============================================================================

// TokenResponse represents the token endpoint response per RFC 6749 and
// OpenID Connect Core 1.0 section 3.1.3.3.
type TokenResponse struct {
	// AccessToken is the JWT access token used to call the userinfo endpoint
	AccessToken string `json:"access_token"`

	// IDToken is the signed OpenID Connect ID token
	IDToken string `json:"id_token,omitempty"`

	// RefreshToken is only issued when offline_access was granted
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`

	// Scope is the space-delimited list of scopes granted to this token
	Scope string `json:"scope,omitempty"`
}

// ============================================================================
// Discovery Types
// ============================================================================

// DiscoveryResponse is the OpenID Provider metadata document served at
// /.well-known/openid-configuration.
type DiscoveryResponse struct {
	Issuer                            string   `json:"issuer"`
	AuthorizationEndpoint             string   `json:"authorization_endpoint"`
	TokenEndpoint                     string   `json:"token_endpoint"`
	UserinfoEndpoint                  string   `json:"userinfo_endpoint,omitempty"`
	JWKSURI                           string   `json:"jwks_uri"`
	RevocationEndpoint                string   `json:"revocation_endpoint,omitempty"`
	ScopesSupported                   []string `json:"scopes_supported,omitempty"`
	ResponseTypesSupported            []string `json:"response_types_supported"`
	ResponseModesSupported            []string `json:"response_modes_supported,omitempty"`
	GrantTypesSupported               []string `json:"grant_types_supported,omitempty"`
	SubjectTypesSupported             []string `json:"subject_types_supported"`
	IDTokenSigningAlgValuesSupported  []string `json:"id_token_signing_alg_values_supported"`
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported,omitempty"`
	CodeChallengeMethodsSupported     []string `json:"code_challenge_methods_supported,omitempty"`
	ClaimsSupported                   []string `json:"claims_supported,omitempty"`
	ClaimsParameterSupported          bool     `json:"claims_parameter_supported"`
	RequestParameterSupported         bool     `json:"request_parameter_supported"`
	RequestURIParameterSupported      bool     `json:"request_uri_parameter_supported"`
}

// ============================================================================
// User Types
// ============================================================================

// UserInfoResponse represents the OpenID Connect UserInfo response.
// Only the claims covered by the access token's scopes are present.
type UserInfoResponse struct {
	Subject       string `json:"sub"`
	Email         string `json:"email,omitempty"`
	EmailVerified *bool  `json:"email_verified,omitempty"`
	Name          string `json:"name,omitempty"`
	Picture       string `json:"picture,omitempty"`
}

// ============================================================================
// Authorization Types
// ============================================================================

// AuthorizationResult describes where the bridge sent the browser after an
// interaction step. Exactly one of Code, IDToken or Error is normally set.
type AuthorizationResult struct {
	// Location is the raw redirect target
	Location string

	Code             string
	State            string
	Issuer           string
	IDToken          string
	Error            string
	ErrorDescription string
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status string        `json:"status"`
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks lists the individual readiness checks.
type HealthChecks struct {
	Database string `json:"database,omitempty"`
	Keys     string `json:"keys,omitempty"`
}

// ============================================================================
// JWKS Types
// ============================================================================

// JWKSResponse is the key set served at the jwks_uri.
type JWKSResponse = jwtx.JWKS
