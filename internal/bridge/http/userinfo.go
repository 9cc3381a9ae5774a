package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/service"
	"github.com/aussiebroadwan/oidcbridge/pkg/authsdk"
	"github.com/aussiebroadwan/oidcbridge/pkg/httpx"
)

// UserInfoHandler serves the userinfo endpoint. It must run behind
// httpx.AuthnMiddleware.
type UserInfoHandler struct {
	Engine *service.Engine
}

// ServeHTTP godoc
//
//	@Summary		UserInfo Endpoint
//	@Description	Returns the claims of the access token's subject, read fresh from the identity backend and filtered by the token's scopes.
//	@Tags			OIDC
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.UserInfoResponse	"sub, email, email_verified, name, picture"
//	@Failure		401	{object}	authsdk.ErrorResponse		"invalid_token"
//	@Header			200	{string}	Cache-Control				"no-store"
//	@Router			/me [get].
func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	info, err := h.Engine.UserInfo(r.Context(), claims)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
			authsdk.ErrInvalidToken.WriteError(w)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, info)
}
