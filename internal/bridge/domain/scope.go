package domain

import (
	"slices"
	"strings"
)

const (
	ScopeOpenID        = "openid"
	ScopeOfflineAccess = "offline_access"
	ScopeEmail         = "email"
	ScopeProfile       = "profile"
)

// SupportedScopes is advertised in discovery; other requested scopes are
// dropped when a code is issued.
var SupportedScopes = []string{ScopeOpenID, ScopeOfflineAccess, ScopeEmail, ScopeProfile}

// ParseScope splits a space-delimited scope string, dropping duplicates
// while keeping the request order.
func ParseScope(scope string) []string {
	fields := strings.Fields(scope)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// FormatScope joins scopes with single spaces.
func FormatScope(scopes []string) string {
	return strings.Join(scopes, " ")
}

// HasScope reports whether scopes contains s.
func HasScope(scopes []string, s string) bool {
	return slices.Contains(scopes, s)
}

// FilterSupportedScopes keeps only scopes this provider understands.
func FilterSupportedScopes(scopes []string) []string {
	out := make([]string, 0, len(scopes))
	for _, s := range scopes {
		if slices.Contains(SupportedScopes, s) {
			out = append(out, s)
		}
	}
	return out
}
