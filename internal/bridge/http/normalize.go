package http

import (
	"net/http"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/domain"
	"github.com/aussiebroadwan/oidcbridge/pkg/httpx"
)

// NormalizeIssuer makes every request look as if it arrived at the
// external issuer: host, scheme and forwarded headers are rewritten from
// ic, and the external path prefix or an internal mount prefix is removed
// before routing. Paths carrying neither are routed unchanged.
func NormalizeIssuer(ic domain.IssuerContext) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path, _ := ic.RoutePath(r.URL.Path)

			r2 := r.Clone(r.Context())
			r2.Host = ic.Host()
			r2.URL.Host = ic.Host()
			r2.URL.Scheme = ic.Scheme()
			r2.URL.Path = path
			r2.URL.RawPath = ""
			r2.RequestURI = r2.URL.RequestURI()

			r2.Header.Set("X-Forwarded-Host", ic.Host())
			r2.Header.Set("X-Forwarded-Proto", ic.Scheme())
			if prefix := ic.BasePath(); prefix != "" {
				r2.Header.Set("X-Forwarded-Prefix", prefix)
			} else {
				r2.Header.Del("X-Forwarded-Prefix")
			}

			next.ServeHTTP(w, r2)
		})
	}
}
