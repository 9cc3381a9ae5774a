package authsdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/oidcbridge/pkg/cryptox"
)

// PKCEChallenge holds the PKCE verifier and challenge pair.
// The verifier is kept secret by the client, and the challenge is sent to the authorization endpoint.
type PKCEChallenge struct {
	// Verifier is the high-entropy cryptographic random string (kept secret)
	Verifier string

	// Challenge is the base64url-encoded SHA256 hash of the verifier (sent to server)
	Challenge string

	// Method is always "S256", the bridge rejects plain
	Method string
}

// GeneratePKCEChallenge creates a new PKCE code verifier and challenge pair.
// Uses cryptox.TokenSize256 (256 bits of entropy) and SHA256 hashing per RFC 7636.
func GeneratePKCEChallenge() (*PKCEChallenge, error) {
	verifier, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PKCE verifier: %w", err)
	}

	return &PKCEChallenge{
		Verifier:  verifier,
		Challenge: cryptox.S256Challenge(verifier),
		Method:    cryptox.PKCEMethodS256,
	}, nil
}

// AuthorizeRequest holds the parameters of an authorization request.
type AuthorizeRequest struct {
	ClientID     string
	RedirectURI  string
	ResponseType string // defaults to "code"
	Scopes       []string
	State        string
	Nonce        string
	Prompt       string
	PKCE         *PKCEChallenge
}

// BuildAuthorizeURL constructs the authorization URL a browser should be
// sent to.
//
// Example:
//
//	pkce, _ := authsdk.GeneratePKCEChallenge()
//	u := client.BuildAuthorizeURL(authsdk.AuthorizeRequest{
//		ClientID:    "oidc_ui_tester",
//		RedirectURI: "http://localhost:3000/callback",
//		Scopes:      []string{"openid", "email"},
//		State:       "random-state",
//		PKCE:        pkce,
//	})
func (c *SDKClient) BuildAuthorizeURL(req AuthorizeRequest) string {
	responseType := req.ResponseType
	if responseType == "" {
		responseType = "code"
	}

	params := url.Values{
		"response_type": {responseType},
		"client_id":     {req.ClientID},
		"redirect_uri":  {req.RedirectURI},
	}
	if len(req.Scopes) > 0 {
		params.Set("scope", strings.Join(req.Scopes, " "))
	}
	if req.State != "" {
		params.Set("state", req.State)
	}
	if req.Nonce != "" {
		params.Set("nonce", req.Nonce)
	}
	if req.Prompt != "" {
		params.Set("prompt", req.Prompt)
	}
	if req.PKCE != nil {
		params.Set("code_challenge", req.PKCE.Challenge)
		params.Set("code_challenge_method", req.PKCE.Method)
	}

	return c.url("/auth") + "?" + params.Encode()
}

// StartAuthorization sends the authorization request and returns the
// interaction URL the bridge redirected to. Errors the bridge reports by
// redirecting back to the client are returned as *OAuth2Error.
func (c *SDKClient) StartAuthorization(ctx context.Context, req AuthorizeRequest) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BuildAuthorizeURL(req), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	location, err := c.followOnce(httpReq)
	if err != nil {
		return "", err
	}

	result, err := ParseAuthorizationResult(location)
	if err != nil {
		return "", err
	}
	if result.Error != "" {
		return "", &OAuth2Error{
			StatusCode:  http.StatusBadRequest,
			Code:        result.Error,
			Description: result.ErrorDescription,
		}
	}

	return location, nil
}

// GetInteraction fetches the login page for an interaction.
func (c *SDKClient) GetInteraction(ctx context.Context, interactionURL string) (string, error) {
	target, err := c.resolve(interactionURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", parseErrorResponse(resp, body)
	}

	return string(body), nil
}

// SubmitLogin posts credentials to an interaction and reports where the
// bridge redirected. A rejected login comes back as a result whose Error is
// "login_failed" and whose Location is the interaction page again.
func (c *SDKClient) SubmitLogin(
	ctx context.Context,
	interactionURL, email, password string,
) (*AuthorizationResult, error) {
	data := url.Values{
		"email":    {email},
		"password": {password},
	}
	return c.postInteraction(ctx, strings.TrimSuffix(interactionURL, "/")+"/login", data)
}

// AbortInteraction cancels an interaction. The bridge finishes it with
// access_denied and redirects to the client.
func (c *SDKClient) AbortInteraction(ctx context.Context, interactionURL string) (*AuthorizationResult, error) {
	return c.postInteraction(ctx, strings.TrimSuffix(interactionURL, "/")+"/abort", url.Values{})
}

// AuthorizeWithPassword runs the browser part of the flow headlessly: it
// starts an authorization and submits the credentials to the resulting
// interaction.
func (c *SDKClient) AuthorizeWithPassword(
	ctx context.Context,
	req AuthorizeRequest,
	email, password string,
) (*AuthorizationResult, error) {
	interactionURL, err := c.StartAuthorization(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.SubmitLogin(ctx, interactionURL, email, password)
}

func (c *SDKClient) postInteraction(ctx context.Context, target string, data url.Values) (*AuthorizationResult, error) {
	target, err := c.resolve(target)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	location, err := c.followOnce(req)
	if err != nil {
		return nil, err
	}

	return ParseAuthorizationResult(location)
}

// followOnce sends req without following redirects and returns the Location
// of a 302 or 303 answer.
func (c *SDKClient) followOnce(req *http.Request) (string, error) {
	resp, err := c.noRedirectClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusFound, http.StatusSeeOther:
		location := resp.Header.Get("Location")
		if location == "" {
			return "", fmt.Errorf("redirect response missing Location header")
		}
		return location, nil
	default:
		return "", parseErrorResponse(resp, body)
	}
}

// ParseAuthorizationResult splits a redirect target into its authorization
// response parameters. Both the query and the fragment are inspected so
// code and id_token completions parse the same way.
func ParseAuthorizationResult(location string) (*AuthorizationResult, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redirect URL: %w", err)
	}

	params := u.Query()
	if u.Fragment != "" {
		fragment, err := url.ParseQuery(u.Fragment)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redirect fragment: %w", err)
		}
		for k, v := range fragment {
			params[k] = v
		}
	}

	return &AuthorizationResult{
		Location:         location,
		Code:             params.Get("code"),
		State:            params.Get("state"),
		Issuer:           params.Get("iss"),
		IDToken:          params.Get("id_token"),
		Error:            params.Get("error"),
		ErrorDescription: params.Get("error_description"),
	}, nil
}

// ParseAuthorizationCallback parses the callback URL from an authorization redirect.
// This extracts the authorization code and state from the redirect URL query parameters.
//
// Returns the authorization code and state, or an error if the callback contains an error response.
//
// Example:
//
//	code, state, err := authsdk.ParseAuthorizationCallback("https://localhost/callback?code=xyz&state=abc")
//	if err != nil {
//	    // Handle error (e.g., user denied authorization)
//	}
//	// Verify state matches what you sent
//	// Exchange code for tokens using ExchangeAuthorizationCode
func ParseAuthorizationCallback(callbackURL string) (code, state string, err error) {
	result, err := ParseAuthorizationResult(callbackURL)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse callback URL: %w", err)
	}

	if result.Error != "" {
		return "", "", fmt.Errorf("authorization error: %s - %s", result.Error, result.ErrorDescription)
	}

	if result.Code == "" {
		return "", "", fmt.Errorf("callback missing authorization code")
	}

	return result.Code, result.State, nil
}
