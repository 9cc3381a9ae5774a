package service

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/domain"
	"github.com/aussiebroadwan/oidcbridge/pkg/jwtx"
	"github.com/aussiebroadwan/oidcbridge/pkg/slogx"
)

// UserInfo returns the claims released to the holder of a verified access
// token. Claims are resolved from the identity backend on every call.
// ID tokens carry no client_id and are rejected here.
func (e *Engine) UserInfo(ctx context.Context, token jwtx.AccessClaims) (map[string]any, error) {
	if token.ClientID == "" || token.Subject == "" {
		return nil, ErrInvalidToken
	}

	scopes := token.Scopes()
	if !domain.HasScope(scopes, domain.ScopeOpenID) {
		return nil, ErrInvalidToken
	}

	claims, ok := e.ResolveClaims(ctx, token.Subject)
	if !ok {
		slogx.FromContext(ctx).Info("userinfo account not found", slog.String("sub", token.Subject))
		return nil, ErrInvalidToken
	}

	return claims.ForScopes(scopes), nil
}
