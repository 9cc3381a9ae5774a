package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// ClientCredentials identifies the client at the token endpoint. A public
// client leaves Secret empty; a confidential one sends it with
// client_secret_basic unless UsePost is set.
type ClientCredentials struct {
	ID      string
	Secret  string
	UsePost bool
}

// PublicClient returns credentials for a client that authenticates with none.
func PublicClient(clientID string) ClientCredentials {
	return ClientCredentials{ID: clientID}
}

// ExchangeAuthorizationCode exchanges an authorization code for tokens.
//
// Example:
//
//	pkce, _ := authsdk.GeneratePKCEChallenge()
//	// ... user logs in and the bridge redirects back with a code ...
//	tokens, err := client.ExchangeAuthorizationCode(ctx, authsdk.PublicClient(clientID), code, redirectURI, pkce.Verifier)
func (c *SDKClient) ExchangeAuthorizationCode(
	ctx context.Context,
	creds ClientCredentials,
	code, redirectURI, codeVerifier string,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {redirectURI},
		"code_verifier": {codeVerifier},
	}

	return c.requestToken(ctx, creds, data)
}

// RefreshGrant requests new tokens using a refresh token. The bridge rotates
// refresh tokens, so the returned RefreshToken replaces the one sent.
func (c *SDKClient) RefreshGrant(
	ctx context.Context,
	creds ClientCredentials,
	refreshToken string,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}

	return c.requestToken(ctx, creds, data)
}

// RevokeToken revokes a refresh or access token per RFC 7009. Unknown tokens
// are not an error.
func (c *SDKClient) RevokeToken(ctx context.Context, creds ClientCredentials, token, tokenTypeHint string) error {
	data := url.Values{
		"token": {token},
	}
	if tokenTypeHint != "" {
		data.Set("token_type_hint", tokenTypeHint)
	}

	resp, err := c.postForm(ctx, "/revoke", authenticate(creds, data), credentialHeaders(creds))
	if err != nil {
		return err
	}

	return checkStatus(resp, http.StatusOK)
}

func (c *SDKClient) requestToken(ctx context.Context, creds ClientCredentials, data url.Values) (*TokenResponse, error) {
	resp, err := c.postForm(ctx, "/token", authenticate(creds, data), credentialHeaders(creds))
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}

	return &tokenResp, nil
}

// authenticate adds the client identity to a form body.
func authenticate(creds ClientCredentials, data url.Values) url.Values {
	if creds.Secret == "" || creds.UsePost {
		data.Set("client_id", creds.ID)
	}
	if creds.Secret != "" && creds.UsePost {
		data.Set("client_secret", creds.Secret)
	}
	return data
}

// credentialHeaders builds the client_secret_basic Authorization header.
func credentialHeaders(creds ClientCredentials) map[string]string {
	if creds.Secret == "" || creds.UsePost {
		return nil
	}
	req := http.Request{Header: http.Header{}}
	req.SetBasicAuth(url.QueryEscape(creds.ID), url.QueryEscape(creds.Secret))
	return map[string]string{"Authorization": req.Header.Get("Authorization")}
}
