package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/domain"
	"github.com/aussiebroadwan/oidcbridge/internal/bridge/identity"
	"github.com/aussiebroadwan/oidcbridge/pkg/slogx"
)

// AccountLookup fetches an account record from the identity backend.
type AccountLookup interface {
	LookupAccount(ctx context.Context, id string) (domain.Account, error)
}

// NewAccountResolver adapts an AccountLookup into the engine's
// ClaimsResolver. Lookup failures of any kind and disabled accounts
// resolve as absent.
func NewAccountResolver(lookup AccountLookup) ClaimsResolver {
	return func(ctx context.Context, accountID string) (domain.AccountClaims, bool) {
		acct, err := lookup.LookupAccount(ctx, accountID)
		if err != nil {
			if !errors.Is(err, identity.ErrAccountNotFound) {
				slogx.FromContext(ctx).Warn("account lookup failed",
					slog.String("account_id", accountID),
					slog.String("err", err.Error()))
			}
			return domain.AccountClaims{}, false
		}
		if acct.Disabled {
			return domain.AccountClaims{}, false
		}
		return acct.Claims(), true
	}
}
