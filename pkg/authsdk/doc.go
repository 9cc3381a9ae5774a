/*
Package authsdk provides a Go client for an oidcbridge deployment.

# Overview

oidcbridge is an OpenID Connect provider that delegates the actual password
check to a Firebase-compatible identity backend. The SDK speaks the bridge's
HTTP surface: discovery, the authorization request, the login interaction,
the token endpoint, userinfo, revocation, the key set and the health probes.

The same OAuth2Error type is used by the server to write error responses and
by the client to report them, so callers can match with errors.Is:

	_, err := client.ExchangeAuthorizationCode(ctx, creds, code, redirectURI, verifier)
	if errors.Is(err, authsdk.ErrInvalidGrant) {
		// code already used, expired, or the verifier did not match
	}

# Issuer and Base URL

The bridge builds every absolute URL from its configured issuer. When the
issuer is not the address the SDK talks to (behind a proxy, or a container
with a mapped port), set both:

	client := authsdk.NewSDKClient("http://127.0.0.1:49213").
		WithIssuer("https://auth.example.com/project/oidc")

Redirects under the issuer are then rebased onto the base URL before the SDK
follows them.

# Authorization Code Flow

The browser part of the flow can be driven headlessly:

	pkce, _ := authsdk.GeneratePKCEChallenge()
	req := authsdk.AuthorizeRequest{
		ClientID:    "oidc_ui_tester",
		RedirectURI: "http://localhost:3000/callback",
		Scopes:      []string{"openid", "email", "profile"},
		State:       "xyz",
		PKCE:        pkce,
	}

	result, err := client.AuthorizeWithPassword(ctx, req, "user@example.com", "secret")
	if err != nil {
		return err
	}
	if result.Error != "" {
		// "login_failed" sends the browser back to the interaction page
	}

	tokens, err := client.ExchangeAuthorizationCode(
		ctx, authsdk.PublicClient(req.ClientID), result.Code, req.RedirectURI, pkce.Verifier)

When the bridge runs in token completion mode the result carries IDToken
instead of Code; that token is the identity backend's own ID token.

# Error Handling

Errors the bridge returns as JSON are parsed into *OAuth2Error. Errors it
reports by redirecting to the client (for example access_denied after an
abort) are surfaced in AuthorizationResult.Error.
*/
package authsdk
