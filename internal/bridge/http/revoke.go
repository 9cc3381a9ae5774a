package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/service"
	"github.com/aussiebroadwan/oidcbridge/pkg/authsdk"
	"github.com/aussiebroadwan/oidcbridge/pkg/httpx"
)

// RevokeHandler serves POST /revoke following RFC 7009. Only refresh tokens
// are revocable; access tokens expire naturally. Unknown tokens still get
// 200 OK so the endpoint cannot be used to probe for valid tokens.
type RevokeHandler struct {
	Engine *service.Engine
}

// ServeHTTP godoc
//
//	@Summary		Token Revocation Endpoint
//	@Description	Revokes a refresh token (RFC 7009). Returns 200 OK for unknown tokens and access tokens.
//	@Tags			OIDC
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			token			formData	string	true	"The token to revoke"
//	@Param			token_type_hint	formData	string	false	"Hint about token type"	Enums(access_token, refresh_token)
//	@Param			client_id		formData	string	false	"Client identifier"
//	@Success		200				"Token revoked (or was already invalid)"
//	@Failure		400				{object}	authsdk.ErrorResponse	"invalid_request"
//	@Failure		401				{object}	authsdk.ErrorResponse	"invalid_client"
//	@Header			200				{string}	Cache-Control			"no-store"
//	@Router			/revoke [post].
func (h *RevokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	err := h.Engine.Revoke(r.Context(), auth, r.PostForm.Get("token"), r.PostForm.Get("token_type_hint"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			authsdk.ErrInvalidRequest.WithDescription("missing required parameter 'token'").WriteError(w)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("{}"))
}
