package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/store"
	"github.com/aussiebroadwan/oidcbridge/pkg/cryptox"
	"github.com/aussiebroadwan/oidcbridge/pkg/slogx"
)

// Revoke implements RFC 7009 for refresh tokens. Unknown tokens, tokens of
// other clients, and access tokens (which are self-contained JWTs and
// simply expire) succeed without effect.
func (e *Engine) Revoke(ctx context.Context, auth ClientAuth, token, hint string) error {
	client, err := e.authenticateClient(ctx, auth)
	if err != nil {
		return err
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidRequest
	}
	if hint == "access_token" {
		return nil
	}

	hash := cryptox.FingerprintToken(token)
	rt, err := e.Store.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	if rt.ClientID != client.ID {
		return nil
	}

	if err := e.Store.RefreshTokens().RevokeRefreshToken(ctx, hash, e.now()); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	slogx.FromContext(ctx).Info("refresh token revoked",
		slog.String("client_id", client.ID),
		slog.String("account_id", rt.AccountID))
	return nil
}
