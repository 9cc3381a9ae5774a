package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

func newLoginCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Run the authorization code flow and print the tokens and claims",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&opts.scopes, "scopes", []string{oidc.ScopeOpenID, "email", "profile"}, "requested scopes")
	f.BoolVar(&opts.fragment, "fragment", false, "expect the ID token in the redirect fragment (token completion mode)")
	f.BoolVar(&opts.noBrowser, "no-browser", false, "print the authorization URL instead of opening a browser")
	f.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "how long to wait for the redirect")
	return cmd
}

func randomString() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func runLogin(ctx context.Context, opts *options) error {
	provider, err := oidc.NewProvider(ctx, opts.issuer)
	if err != nil {
		return fmt.Errorf("discovery: %w", err)
	}

	redirect, err := url.Parse(opts.redirectURI)
	if err != nil {
		return fmt.Errorf("invalid redirect URI: %w", err)
	}

	authStyle := oauth2.AuthStyleInParams
	if opts.clientSecret != "" {
		authStyle = oauth2.AuthStyleInHeader
	}
	endpoint := provider.Endpoint()
	endpoint.AuthStyle = authStyle

	conf := &oauth2.Config{
		ClientID:     opts.clientID,
		ClientSecret: opts.clientSecret,
		Endpoint:     endpoint,
		RedirectURL:  opts.redirectURI,
		Scopes:       opts.scopes,
	}

	state, err := randomString()
	if err != nil {
		return err
	}
	nonce, err := randomString()
	if err != nil {
		return err
	}
	verifier := oauth2.GenerateVerifier()

	authURL := conf.AuthCodeURL(state, oidc.Nonce(nonce), oauth2.S256ChallengeOption(verifier))

	path := redirect.Path
	if path == "" {
		path = "/"
	}
	handler := newCallbackHandler(opts.fragment)
	mux := http.NewServeMux()
	mux.Handle(path, handler)

	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", redirect.Host, err)
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 3 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if opts.noBrowser {
		fmt.Fprintln(os.Stderr, "Open this URL to log in:")
		fmt.Fprintln(os.Stderr, authURL)
	} else if err := browser.OpenURL(authURL); err != nil {
		slog.Warn("could not open a browser", "err", err)
		fmt.Fprintln(os.Stderr, authURL)
	}

	waitCtx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	var res callbackResult
	select {
	case res = <-handler.results:
	case <-waitCtx.Done():
		return fmt.Errorf("waiting for redirect: %w", waitCtx.Err())
	}

	if res.Error != "" {
		return fmt.Errorf("authorization failed: %s %s", res.Error, res.ErrorDescription)
	}
	if res.State != state {
		return errors.New("state mismatch in redirect")
	}
	if res.Issuer != "" && res.Issuer != opts.issuer {
		return fmt.Errorf("unexpected iss %q in redirect", res.Issuer)
	}

	if opts.fragment {
		return printBackendIDToken(ctx, provider, res.IDToken)
	}
	return exchangeAndPrint(ctx, provider, conf, res.Code, verifier, nonce)
}

// exchangeAndPrint redeems the code. ID tokens are signed by the bridge
// itself, so they verify against its /jwks rather than the discovery jwks_uri.
func exchangeAndPrint(ctx context.Context, provider *oidc.Provider, conf *oauth2.Config, code, verifier, nonce string) error {
	tok, err := conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return fmt.Errorf("code exchange: %w", err)
	}

	rawID, ok := tok.Extra("id_token").(string)
	if !ok || rawID == "" {
		return errors.New("token response has no id_token")
	}

	var meta struct {
		Issuer string   `json:"issuer"`
		Algs   []string `json:"id_token_signing_alg_values_supported"`
	}
	if err := provider.Claims(&meta); err != nil {
		return err
	}

	keys := oidc.NewRemoteKeySet(ctx, meta.Issuer+"/jwks")
	idToken, err := oidc.NewVerifier(meta.Issuer, keys, &oidc.Config{
		ClientID:             conf.ClientID,
		SupportedSigningAlgs: meta.Algs,
	}).Verify(ctx, rawID)
	if err != nil {
		return fmt.Errorf("id_token verification: %w", err)
	}
	if idToken.Nonce != nonce {
		return errors.New("id_token nonce mismatch")
	}
	if err := idToken.VerifyAccessToken(tok.AccessToken); err != nil {
		return fmt.Errorf("at_hash: %w", err)
	}

	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return err
	}

	info, err := provider.UserInfo(ctx, oauth2.StaticTokenSource(tok))
	if err != nil {
		return fmt.Errorf("userinfo: %w", err)
	}
	var infoClaims map[string]any
	if err := info.Claims(&infoClaims); err != nil {
		return err
	}

	return printJSON(map[string]any{
		"token_type":    tok.TokenType,
		"expiry":        tok.Expiry,
		"refresh_token": tok.RefreshToken != "",
		"id_token":      claims,
		"userinfo":      infoClaims,
	})
}

// printBackendIDToken checks a token-mode ID token against the keys
// published at the discovery jwks_uri, which is where the identity
// backend's signing keys live. Issuer and audience are the backend's own.
func printBackendIDToken(ctx context.Context, provider *oidc.Provider, raw string) error {
	if raw == "" {
		return errors.New("redirect fragment has no id_token")
	}

	idToken, err := provider.VerifierContext(ctx, &oidc.Config{
		SkipClientIDCheck: true,
		SkipIssuerCheck:   true,
	}).Verify(ctx, raw)
	if err != nil {
		return fmt.Errorf("id_token verification: %w", err)
	}

	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return err
	}
	return printJSON(map[string]any{"id_token": claims})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
