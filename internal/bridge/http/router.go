package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/aussiebroadwan/oidcbridge/api/oidcbridge" // Swagger docs
	"github.com/aussiebroadwan/oidcbridge/internal/bridge/service"
	"github.com/aussiebroadwan/oidcbridge/pkg/httpx"
	"github.com/aussiebroadwan/oidcbridge/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	engine *service.Engine
	logger *slog.Logger

	// Identity verifies login credentials.
	Identity PasswordVerifier

	// Mode is the completion policy of the login step.
	Mode CompletionMode

	// DiscoveryStage rewrites the discovery document before it is served.
	DiscoveryStage service.DiscoveryStage

	// CORSOrigins may call /token and /userinfo from a browser.
	CORSOrigins []string
}

func NewRouter(engine *service.Engine, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slogx.Discard()
	}

	r := &Router{
		Mux:         http.NewServeMux(),
		engine:      engine,
		logger:      logger,
		Mode:        CompletionCode,
		CORSOrigins: []string{"*"},
	}

	// Normalization runs first so everything after it, logging included,
	// sees the external host and the prefix-free path.
	r.middlewares = []httpx.Middleware{
		NormalizeIssuer(engine.Issuer),
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerWellKnown()
	r.registerAuthorize()
	r.registerInteraction()
	r.registerTokens()
	r.registerSystem()

	r.Mux.Handle("GET /swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			OIDC Bridge API
//	@version		0.1.0
//	@description	OpenID Connect provider that delegates login to a Firebase Auth compatible identity backend.
//	@description
//	@description				ID tokens issued by the bridge are verified with /jwks; the discovery document points jwks_uri at the identity backend.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/oidcbridge
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerWellKnown() {
	// Relying parties poll these, so they get the public tier.
	r.Mux.Handle("GET /.well-known/openid-configuration",
		httpx.Chain(DiscoveryHandler(r.engine, r.DiscoveryStage),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /jwks",
		httpx.Chain(JWKSHandler(r.engine.Keys.KeySet),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerAuthorize() {
	h := httpx.Chain(&AuthorizeHandler{Engine: r.engine},
		httpx.RateLimitByIP(httpx.LenientLimit),
	)
	r.Mux.Handle("GET /auth", h)
	r.Mux.Handle("POST /auth", h)
}

func (r *Router) registerInteraction() {
	h := NewInteractionHandler(r.engine, r.Identity, r.Mode)

	r.Mux.Handle("GET /interaction/{uid}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// Credential submissions are limited per address and email to slow
	// down guessing against a single account.
	r.Mux.Handle("POST /interaction/{uid}/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "email"),
		),
	)

	r.Mux.Handle("POST /interaction/{uid}/abort",
		httpx.Chain(http.HandlerFunc(h.HandleAbort),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerTokens() {
	cors := httpx.CORS(r.CORSOrigins)

	token := httpx.Chain(&TokenHandler{Engine: r.engine},
		cors,
		httpx.RateLimitByIP(httpx.StrictLimit),
	)
	r.Mux.Handle("POST /token", token)
	r.Mux.Handle("OPTIONS /token", token)

	userinfo := httpx.Chain(&UserInfoHandler{Engine: r.engine},
		cors,
		httpx.AuthnMiddleware(r.engine.Keys.Verifier),
		httpx.RateLimitBySubject(httpx.LenientLimit),
	)
	for _, path := range []string{"/me", "/userinfo"} {
		r.Mux.Handle("GET "+path, userinfo)
		r.Mux.Handle("POST "+path, userinfo)
		r.Mux.Handle("OPTIONS "+path, userinfo)
	}

	r.Mux.Handle("POST /revoke",
		httpx.Chain(&RevokeHandler{Engine: r.engine},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler())
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.engine.Store, r.engine.Keys))
}
