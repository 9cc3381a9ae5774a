package httpx

import (
	"net/http"
	"slices"
	"strings"

	"github.com/aussiebroadwan/oidcbridge/pkg/jwtx"
	"github.com/aussiebroadwan/oidcbridge/pkg/slogx"
)

// AuthnMiddleware requires a valid bearer access token, taken from the
// Authorization header or, for form POSTs, the access_token body parameter
// (RFC 6750 section 2.2).
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, ok := BearerToken(r)
			if !ok {
				writeBearerError(w, http.StatusUnauthorized, "invalid_request", "missing bearer token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				slogx.FromContext(ctx).Warn("access token rejected", "err", err)
				writeBearerError(w, http.StatusUnauthorized, "invalid_token", "token verification failed")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithClaims(ctx, claims)))
		})
	}
}

// RequireScope rejects tokens missing any of the listed scopes.
func RequireScope(required ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, _ := ClaimsFromContext(r.Context())
			have := claims.Scopes()
			for _, s := range required {
				if !slices.Contains(have, s) {
					w.Header().Set("WWW-Authenticate",
						`Bearer error="insufficient_scope", scope="`+strings.Join(required, " ")+`"`)
					w.WriteHeader(http.StatusForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken extracts the access token of r.
func BearerToken(r *http.Request) (string, bool) {
	if authz := r.Header.Get("Authorization"); authz != "" {
		scheme, token, ok := strings.Cut(authz, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return "", false
		}
		token = strings.TrimSpace(token)
		return token, token != ""
	}
	if r.Method == http.MethodPost && IsFormRequest(r) {
		if token := r.PostFormValue("access_token"); token != "" {
			return token, true
		}
	}
	return "", false
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, status int, code, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="`+code+`", error_description="`+desc+`"`)
	WriteJSON(w, status, map[string]string{"error": code, "error_description": desc})
}
