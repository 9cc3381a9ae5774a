package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/service"
	"github.com/aussiebroadwan/oidcbridge/pkg/authsdk"
	"github.com/aussiebroadwan/oidcbridge/pkg/slogx"
)

var (
	errUnknownInteraction = authsdk.ErrInvalidRequest.WithDescription("interaction session not found or expired")
	errUnknownClient      = authsdk.NewOAuth2Error(http.StatusBadRequest, authsdk.ErrorCodeInvalidClient, "client is invalid")
	errBadRedirectURI     = authsdk.ErrInvalidRequest.WithDescription("redirect_uri did not match any of the client's registered redirect_uris")
	errMissingCredentials = authsdk.ErrInvalidRequest.WithDescription("email and password are required")
)

// writeServiceError maps engine errors onto RFC 6749 responses. Anything
// unrecognised is logged and reported as server_error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownInteraction):
		errUnknownInteraction.WriteError(w)
	case errors.Is(err, service.ErrInvalidClient):
		authsdk.ErrInvalidClient.WriteError(w)
	case errors.Is(err, service.ErrInvalidGrant):
		authsdk.ErrInvalidGrant.WriteError(w)
	case errors.Is(err, service.ErrInvalidScope):
		authsdk.ErrInvalidScope.WriteError(w)
	case errors.Is(err, service.ErrUnauthorizedClient):
		authsdk.ErrUnauthorizedClient.WriteError(w)
	case errors.Is(err, service.ErrUnsupportedGrantType):
		authsdk.ErrUnsupportedGrantType.WriteError(w)
	case errors.Is(err, service.ErrInvalidRequest):
		authsdk.ErrInvalidRequest.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}
