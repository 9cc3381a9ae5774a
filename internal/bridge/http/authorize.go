package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/domain"
	"github.com/aussiebroadwan/oidcbridge/internal/bridge/service"
	"github.com/aussiebroadwan/oidcbridge/pkg/authsdk"
	"github.com/aussiebroadwan/oidcbridge/pkg/httpx"
)

// AuthorizeHandler serves the authorization endpoint. Every valid request
// is suspended as an interaction and the user agent is sent to its login
// form.
type AuthorizeHandler struct {
	Engine *service.Engine
}

// ServeHTTP godoc
//
//	@Summary		Authorization Endpoint
//	@Description	Starts an OpenID Connect authorization code flow. PKCE (S256) and the openid scope are required.
//	@Description	Unknown clients and unregistered redirect URIs are answered with 400; other errors are redirected to the client.
//	@Tags			OIDC
//	@Param			response_type			query	string	true	"Response type"	Enums(code)
//	@Param			client_id				query	string	true	"Client identifier"
//	@Param			redirect_uri			query	string	true	"Registered redirect URI"
//	@Param			scope					query	string	true	"Space-delimited scopes, must include openid"
//	@Param			state					query	string	false	"Opaque client state"
//	@Param			nonce					query	string	false	"ID token nonce"
//	@Param			code_challenge			query	string	true	"PKCE challenge"
//	@Param			code_challenge_method	query	string	true	"PKCE method"	Enums(S256)
//	@Param			prompt					query	string	false	"prompt=none always fails with login_required"
//	@Param			login_hint				query	string	false	"Prefills the email field"
//	@Success		303						"Redirect to the interaction login form"
//	@Failure		303						"Redirect to the client with error, error_description, state and iss"
//	@Failure		400						{object}	authsdk.ErrorResponse	"invalid_client or invalid_request"
//	@Router			/auth [get].
func (h *AuthorizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var form url.Values
	switch r.Method {
	case http.MethodPost:
		if !httpx.IsFormRequest(r) {
			authsdk.ErrInvalidContentType.WriteError(w)
			return
		}
		if err := r.ParseForm(); err != nil {
			authsdk.ErrInvalidFormBody.WriteError(w)
			return
		}
		form = r.PostForm
	default:
		form = r.URL.Query()
	}

	params := domain.AuthorizationParams{
		ClientID:            form.Get("client_id"),
		RedirectURI:         form.Get("redirect_uri"),
		ResponseType:        strings.TrimSpace(form.Get("response_type")),
		Scope:               form.Get("scope"),
		State:               form.Get("state"),
		Nonce:               form.Get("nonce"),
		CodeChallenge:       strings.TrimSpace(form.Get("code_challenge")),
		CodeChallengeMethod: strings.TrimSpace(form.Get("code_challenge_method")),
		Prompt:              form.Get("prompt"),
		MaxAge:              strings.TrimSpace(form.Get("max_age")),
		LoginHint:           form.Get("login_hint"),
	}

	loc, err := h.Engine.Authorize(r.Context(), params)
	if err != nil {
		var ae *service.AuthorizationError
		switch {
		case errors.As(err, &ae):
			http.Redirect(w, r, ae.Location(h.Engine.Issuer.Issuer()), http.StatusSeeOther)
		case errors.Is(err, service.ErrInvalidClient):
			errUnknownClient.WriteError(w)
		case errors.Is(err, service.ErrInvalidRedirectURI):
			errBadRedirectURI.WriteError(w)
		default:
			writeServiceError(w, r, err)
		}
		return
	}

	http.Redirect(w, r, loc, http.StatusSeeOther)
}
