package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/domain"
	"github.com/aussiebroadwan/oidcbridge/internal/bridge/store/drivers/sqlite/gen"
)

type refreshTokensRepo struct {
	q *gen.Queries
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	return mapConstraint(r.q.CreateRefreshToken(ctx, gen.CreateRefreshTokenParams{
		ID:        t.ID,
		TokenHash: t.TokenHash,
		ClientID:  t.ClientID,
		AccountID: t.AccountID,
		Scopes:    strings.Join(t.Scopes, " "),
		Amr:       strings.Join(t.AMR, " "),
		AuthTime:  toUnix(t.AuthTime),
		ExpiresAt: toUnix(t.ExpiresAt),
		CreatedAt: toUnix(t.CreatedAt),
	}))
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(
	ctx context.Context,
	hash string,
) (domain.RefreshToken, error) {
	row, err := r.q.GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return mapRefreshToken(row), nil
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, hash string, now time.Time) error {
	return expectOne(r.q.RevokeRefreshToken(ctx, gen.RevokeRefreshTokenParams{
		RevokedAt: nullUnix(now),
		TokenHash: hash,
	}))
}

func (r *refreshTokensRepo) RevokeAccountClientRefreshTokens(
	ctx context.Context,
	accountID, clientID string,
	now time.Time,
) (int64, error) {
	return r.q.RevokeAccountClientRefreshTokens(ctx, gen.RevokeAccountClientRefreshTokensParams{
		RevokedAt: nullUnix(now),
		AccountID: accountID,
		ClientID:  clientID,
	})
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteExpiredRefreshTokens(ctx, toUnix(now))
}
