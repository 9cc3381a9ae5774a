package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/domain"
	"github.com/aussiebroadwan/oidcbridge/internal/bridge/store"
	"github.com/aussiebroadwan/oidcbridge/pkg/cryptox"
	"github.com/aussiebroadwan/oidcbridge/pkg/slogx"
)

// Authorize validates an authorization request and suspends it as an
// interaction waiting for login. It returns the interaction URL the user
// agent is sent to.
//
// Errors before the redirect URI is trusted are returned as ErrInvalidClient
// or ErrInvalidRedirectURI and must be shown to the user agent directly.
// Later errors come back as *AuthorizationError and are redirected to the
// client. The bridge keeps no browser session, so every request needs a
// login and prompt=none always fails with login_required.
func (e *Engine) Authorize(ctx context.Context, p domain.AuthorizationParams) (string, error) {
	log := slogx.FromContext(ctx)

	p.ClientID = strings.TrimSpace(p.ClientID)
	p.RedirectURI = strings.TrimSpace(p.RedirectURI)

	if p.ClientID == "" {
		return "", ErrInvalidClient
	}
	client, err := e.Store.Clients().GetClientByID(ctx, p.ClientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidClient
		}
		return "", err
	}

	if p.RedirectURI == "" || !client.AllowsRedirectURI(p.RedirectURI) {
		log.Info("authorize rejected redirect_uri",
			slog.String("client_id", client.ID),
			slog.String("redirect_uri", p.RedirectURI))
		return "", ErrInvalidRedirectURI
	}

	fail := func(err error, desc string) (string, error) {
		return "", &AuthorizationError{Err: err, Description: desc, RedirectURI: p.RedirectURI, State: p.State}
	}

	switch {
	case p.ResponseType == "":
		return fail(ErrInvalidRequest, "missing required parameter 'response_type'")
	case p.ResponseType != domain.ResponseTypeCode || !client.AllowsResponseType(p.ResponseType):
		return fail(ErrUnsupportedResponseType, "unsupported response_type requested")
	}

	scopes := domain.FilterSupportedScopes(domain.ParseScope(p.Scope))
	if !domain.HasScope(scopes, domain.ScopeOpenID) {
		return fail(ErrInvalidScope, "openid scope must be requested")
	}
	p.Scope = domain.FormatScope(scopes)

	if p.CodeChallenge == "" {
		return fail(ErrInvalidRequest, "Authorization Server policy requires PKCE to be used for this request")
	}
	if p.CodeChallengeMethod != cryptox.PKCEMethodS256 {
		return fail(ErrInvalidRequest, "not supported value of code_challenge_method")
	}

	if p.MaxAge != "" {
		if n, err := strconv.Atoi(p.MaxAge); err != nil || n < 0 {
			return fail(ErrInvalidRequest, "invalid max_age parameter value")
		}
	}

	if slices.Contains(strings.Fields(p.Prompt), "none") {
		return fail(ErrLoginRequired, "End-User authentication is required")
	}

	uid, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", err
	}

	now := e.now()
	interaction := domain.Interaction{
		UID: uid,
		Prompt: domain.Prompt{
			Name:    domain.PromptLogin,
			Reasons: []string{domain.ReasonNoSession},
		},
		Params:    p,
		CreatedAt: now,
		ExpiresAt: now.Add(orDefault(e.InteractionTTL, DefaultInteractionTTL)),
	}
	if err := e.Store.Interactions().CreateInteraction(ctx, interaction); err != nil {
		return "", err
	}

	log.Debug("interaction started", slog.String("uid", uid), slog.String("client_id", client.ID))
	return e.Issuer.URL("/interaction/" + uid), nil
}
