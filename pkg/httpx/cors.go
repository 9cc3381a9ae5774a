package httpx

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows cross-origin calls from browser based relying parties. An
// origin of "*" allows every origin.
func CORS(allowedOrigins []string) Middleware {
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "DPoP", "X-Request-ID"},
		ExposedHeaders: []string{"WWW-Authenticate", "X-Request-ID"},
		MaxAge:         300,
	})
}
