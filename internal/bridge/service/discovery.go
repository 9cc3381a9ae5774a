package service

import (
	"context"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/domain"
	"github.com/aussiebroadwan/oidcbridge/pkg/cryptox"
	"github.com/aussiebroadwan/oidcbridge/pkg/jwtx"
)

// ClaimsSupported lists every claim the bridge can release.
var ClaimsSupported = []string{
	"sub", "iss", "aud", "exp", "iat", "auth_time", "nonce", "at_hash", "amr",
	"email", "email_verified", "name", "picture",
}

// Discovery assembles the provider metadata from the issuer. It fails while
// the engine has no signing key to advertise.
func (e *Engine) Discovery(ctx context.Context) (domain.DiscoveryDocument, error) {
	if e.Keys == nil || !e.Keys.IsReady() {
		return domain.DiscoveryDocument{}, ErrKeysUnavailable
	}

	authMethods := []string{
		domain.AuthMethodNone,
		domain.AuthMethodClientSecretBasic,
		domain.AuthMethodClientSecretPost,
	}

	return domain.DiscoveryDocument{
		Issuer:                                 e.Issuer.Issuer(),
		AuthorizationEndpoint:                  e.Issuer.URL("/auth"),
		TokenEndpoint:                          e.Issuer.URL("/token"),
		UserinfoEndpoint:                       e.Issuer.URL("/me"),
		JWKSURI:                                e.Issuer.URL("/jwks"),
		RevocationEndpoint:                     e.Issuer.URL("/revoke"),
		ScopesSupported:                        domain.SupportedScopes,
		ResponseTypesSupported:                 []string{domain.ResponseTypeCode},
		ResponseModesSupported:                 []string{"query"},
		GrantTypesSupported:                    []string{domain.GrantTypeAuthorizationCode, domain.GrantTypeRefreshToken},
		SubjectTypesSupported:                  []string{"public"},
		IDTokenSigningAlgValuesSupported:       []string{e.Keys.Algorithm()},
		TokenEndpointAuthMethodsSupported:      authMethods,
		RevocationEndpointAuthMethodsSupported: authMethods,
		CodeChallengeMethodsSupported:          []string{cryptox.PKCEMethodS256},
		ClaimsSupported:                        ClaimsSupported,

		AuthorizationResponseISSParameterSupported: true,
	}, nil
}

// JWKS is the engine's public key set, used to verify its access tokens.
func (e *Engine) JWKS() jwtx.JWKS {
	return e.Keys.KeySet.PublicJWKS()
}

// DiscoveryStage transforms the discovery document before it is served.
type DiscoveryStage func(domain.DiscoveryDocument) domain.DiscoveryDocument

// ComposeDiscovery runs stages in order.
func ComposeDiscovery(stages ...DiscoveryStage) DiscoveryStage {
	return func(doc domain.DiscoveryDocument) domain.DiscoveryDocument {
		for _, s := range stages {
			if s != nil {
				doc = s(doc)
			}
		}
		return doc
	}
}

// WithJWKSURI points jwks_uri at the identity backend's key set so relying
// parties verify backend-issued tokens against it. Every other field is
// left as is. An empty uri leaves the document unchanged.
func WithJWKSURI(uri string) DiscoveryStage {
	return func(doc domain.DiscoveryDocument) domain.DiscoveryDocument {
		if uri != "" {
			doc.JWKSURI = uri
		}
		return doc
	}
}
