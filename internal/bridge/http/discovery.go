package http

import (
	"net/http"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/service"
	"github.com/aussiebroadwan/oidcbridge/pkg/authsdk"
	"github.com/aussiebroadwan/oidcbridge/pkg/httpx"
	"github.com/aussiebroadwan/oidcbridge/pkg/jwtx"
	"github.com/aussiebroadwan/oidcbridge/pkg/slogx"
)

const discoveryMaxAge = 300

// DiscoveryHandler serves the provider metadata. stage runs only on a
// document the engine produced without error.
//
//	@Summary		OpenID Provider Configuration
//	@Description	OpenID Connect Discovery 1.0 metadata. jwks_uri points at the identity backend's key set.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	authsdk.DiscoveryResponse	"Provider metadata"
//	@Failure		500	{object}	authsdk.ErrorResponse		"server_error"
//	@Router			/.well-known/openid-configuration [get].
func DiscoveryHandler(engine *service.Engine, stage service.DiscoveryStage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := engine.Discovery(r.Context())
		if err != nil {
			slogx.FromContext(r.Context()).Error("discovery failed", "err", err)
			authsdk.ErrServerError.WriteError(w)
			return
		}
		if stage != nil {
			doc = stage(doc)
		}
		httpx.WriteCachedJSON(w, http.StatusOK, doc, discoveryMaxAge)
	}
}

// JWKSHandler exposes the engine's public keys.
//
//	@Summary		Get JWKS
//	@Description	Returns the JSON Web Key Set of the keys that sign the bridge's access tokens.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	authsdk.JWKSResponse	"The JSON Web Key Set"
//	@Router			/jwks [get].
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.JWKSResponse(keys.PublicJWKS()))
	}
}
