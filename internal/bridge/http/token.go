package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/domain"
	"github.com/aussiebroadwan/oidcbridge/internal/bridge/service"
	"github.com/aussiebroadwan/oidcbridge/pkg/authsdk"
	"github.com/aussiebroadwan/oidcbridge/pkg/httpx"
)

// TokenHandler serves POST /token. Accepts application/x-www-form-urlencoded
// per RFC 6749.
type TokenHandler struct {
	Engine *service.Engine
}

// ServeHTTP godoc
//
//	@Summary		Token Endpoint
//	@Description	Redeems an authorization code (with its PKCE verifier) or rotates a refresh token.
//	@Description	Refresh tokens are only issued when offline_access was granted and the client may use the refresh_token grant.
//	@Tags			OIDC
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			grant_type		formData	string					true	"Grant type"	Enums(authorization_code, refresh_token)
//	@Param			code			formData	string					false	"Authorization code"
//	@Param			redirect_uri	formData	string					false	"Redirect URI the code was issued for"
//	@Param			code_verifier	formData	string					false	"PKCE verifier"
//	@Param			refresh_token	formData	string					false	"Refresh token"
//	@Param			scope			formData	string					false	"Narrowed scope for refresh"
//	@Param			client_id		formData	string					false	"Client identifier (public clients and client_secret_post)"
//	@Param			client_secret	formData	string					false	"Client secret (client_secret_post)"
//	@Success		200				{object}	authsdk.TokenResponse	"access_token, id_token, refresh_token, token_type, expires_in, scope"
//	@Failure		400				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		401				{object}	authsdk.ErrorResponse	"invalid_client"
//	@Failure		429				{object}	authsdk.ErrorResponse	"rate_limit_exceeded"
//	@Header			200				{string}	Cache-Control			"no-store"
//	@Router			/token [post].
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !httpx.IsFormRequest(r) {
		authsdk.ErrInvalidContentType.WriteError(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidFormBody.WriteError(w)
		return
	}

	auth, ok := clientAuth(r)
	if !ok {
		authsdk.ErrInvalidRequest.WithDescription("multiple client authentication methods used").WriteError(w)
		return
	}

	form := r.PostForm
	pair, err := h.Engine.Token(r.Context(), service.TokenRequest{
		GrantType:    form.Get("grant_type"),
		Code:         form.Get("code"),
		RedirectURI:  form.Get("redirect_uri"),
		CodeVerifier: form.Get("code_verifier"),
		RefreshToken: form.Get("refresh_token"),
		Scope:        form.Get("scope"),
		Client:       auth,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidClient) && auth.Method == domain.AuthMethodClientSecretBasic {
			w.Header().Set("WWW-Authenticate", `Basic realm="token"`)
		}
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		IDToken:      pair.IDToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int(pair.ExpiresIn),
		Scope:        pair.Scope,
	})
}

// clientAuth reads client credentials from HTTP Basic (RFC 6749 2.3.1, with
// form-encoded id and secret) or from the form body. ok is false when both
// are used.
func clientAuth(r *http.Request) (service.ClientAuth, bool) {
	formID := r.PostForm.Get("client_id")
	formSecret := r.PostForm.Get("client_secret")

	if user, pass, ok := r.BasicAuth(); ok {
		if formSecret != "" {
			return service.ClientAuth{}, false
		}
		id, err := url.QueryUnescape(user)
		if err != nil {
			id = user
		}
		secret, err := url.QueryUnescape(pass)
		if err != nil {
			secret = pass
		}
		if formID != "" && formID != id {
			return service.ClientAuth{}, false
		}
		return service.ClientAuth{ID: id, Secret: secret, Method: domain.AuthMethodClientSecretBasic}, true
	}

	if formSecret != "" {
		return service.ClientAuth{ID: formID, Secret: formSecret, Method: domain.AuthMethodClientSecretPost}, true
	}
	return service.ClientAuth{ID: formID, Method: domain.AuthMethodNone}, true
}
