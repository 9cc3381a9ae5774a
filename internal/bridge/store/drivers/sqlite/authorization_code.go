package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/domain"
	"github.com/aussiebroadwan/oidcbridge/internal/bridge/store/drivers/sqlite/gen"
)

type authorizationCodesRepo struct {
	q *gen.Queries
}

func (r *authorizationCodesRepo) CreateAuthorizationCode(ctx context.Context, code domain.AuthorizationCode) error {
	return mapConstraint(r.q.CreateAuthorizationCode(ctx, gen.CreateAuthorizationCodeParams{
		ID:                  code.ID,
		CodeHash:            code.CodeHash,
		ClientID:            code.ClientID,
		AccountID:           code.AccountID,
		InteractionUid:      code.InteractionUID,
		RedirectUri:         code.RedirectURI,
		Scopes:              strings.Join(code.Scopes, " "),
		Nonce:               code.Nonce,
		CodeChallenge:       code.CodeChallenge,
		CodeChallengeMethod: code.CodeChallengeMethod,
		Amr:                 strings.Join(code.AMR, " "),
		AuthTime:            toUnix(code.AuthTime),
		ExpiresAt:           toUnix(code.ExpiresAt),
		CreatedAt:           toUnix(code.CreatedAt),
	}))
}

func (r *authorizationCodesRepo) GetAuthorizationCodeByHash(ctx context.Context, hash string) (domain.AuthorizationCode, error) {
	row, err := r.q.GetAuthorizationCodeByHash(ctx, hash)
	if err != nil {
		return domain.AuthorizationCode{}, mapNotFound(err)
	}
	return mapAuthorizationCode(row), nil
}

func (r *authorizationCodesRepo) MarkAuthorizationCodeUsed(ctx context.Context, id string, now time.Time) error {
	return expectOne(r.q.MarkAuthorizationCodeUsed(ctx, gen.MarkAuthorizationCodeUsedParams{
		UsedAt: nullUnix(now),
		ID:     id,
	}))
}

func (r *authorizationCodesRepo) DeleteExpiredAuthorizationCodes(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteExpiredAuthorizationCodes(ctx, toUnix(now))
}
