package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/domain"
	"github.com/aussiebroadwan/oidcbridge/internal/bridge/store"
	"github.com/aussiebroadwan/oidcbridge/pkg/cryptox"
	"github.com/aussiebroadwan/oidcbridge/pkg/idx"
	"github.com/aussiebroadwan/oidcbridge/pkg/slogx"
)

// FinishOptions tune InteractionFinished.
type FinishOptions struct {
	// MergeWithLastSubmission lays the new result over the last one saved
	// for the interaction instead of replacing it.
	MergeWithLastSubmission bool
}

// InteractionDetails returns the pending interaction uid, or
// ErrUnknownInteraction when it does not exist, expired, or was consumed.
func (e *Engine) InteractionDetails(ctx context.Context, uid string) (domain.Interaction, error) {
	if uid == "" {
		return domain.Interaction{}, ErrUnknownInteraction
	}
	i, err := e.Store.Interactions().GetActiveInteraction(ctx, uid, e.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Interaction{}, ErrUnknownInteraction
		}
		return domain.Interaction{}, err
	}
	return i, nil
}

// SaveResult records result as the interaction's last submission without
// resuming the authorization request.
func (e *Engine) SaveResult(ctx context.Context, uid string, result domain.InteractionResult) error {
	err := e.Store.Interactions().SaveInteractionResult(ctx, uid, result, e.now())
	if errors.Is(err, store.ErrNotFound) {
		return ErrUnknownInteraction
	}
	return err
}

// InteractionFinished resumes the authorization request suspended as uid
// and returns the client redirect that completes it.
//
// The interaction is consumed whatever the outcome. A login result whose
// account no longer resolves ends in access_denied. When two submissions
// race, exactly one gets a redirect and the other ErrUnknownInteraction.
func (e *Engine) InteractionFinished(ctx context.Context, uid string, result domain.InteractionResult, opts FinishOptions) (string, error) {
	log := slogx.FromContext(ctx).With(slog.String("uid", uid))

	i, err := e.InteractionDetails(ctx, uid)
	if err != nil {
		return "", err
	}

	if opts.MergeWithLastSubmission {
		result = result.Merge(i.Result)
	}

	if result.Error == "" && (result.Login == nil || result.Login.AccountID == "") {
		return "", ErrInvalidRequest
	}

	if result.Error == "" {
		// Resolved before the transaction: the store may hold a single
		// connection, and the lookup must not run while it is taken.
		if _, ok := e.ResolveClaims(ctx, result.Login.AccountID); !ok {
			log.Info("interaction account not found", slog.String("account_id", result.Login.AccountID))
			result = domain.InteractionResult{
				Error:            ErrAccessDenied.Error(),
				ErrorDescription: "account not found",
			}
		}
	}

	if result.Error != "" {
		if err := e.consume(ctx, uid, result); err != nil {
			return "", err
		}
		ae := &AuthorizationError{
			Err:         errors.New(result.Error),
			Description: result.ErrorDescription,
			RedirectURI: i.Params.RedirectURI,
			State:       i.Params.State,
		}
		return ae.Location(e.Issuer.Issuer()), nil
	}

	code, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", err
	}

	now := e.now()
	login := result.Login
	authTime := login.AuthTime
	if authTime.IsZero() {
		authTime = now
		login.AuthTime = now
	}

	ac := domain.AuthorizationCode{
		ID:                  idx.New().String(),
		CodeHash:            cryptox.FingerprintToken(code),
		ClientID:            i.Params.ClientID,
		AccountID:           login.AccountID,
		InteractionUID:      uid,
		RedirectURI:         i.Params.RedirectURI,
		Scopes:              i.Params.Scopes(),
		Nonce:               i.Params.Nonce,
		CodeChallenge:       i.Params.CodeChallenge,
		CodeChallengeMethod: i.Params.CodeChallengeMethod,
		AMR:                 login.AMR,
		AuthTime:            authTime,
		ExpiresAt:           now.Add(orDefault(e.CodeTTL, DefaultCodeTTL)),
		CreatedAt:           now,
	}

	err = e.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Interactions().ConsumeInteraction(ctx, uid, result, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUnknownInteraction
			}
			return err
		}
		return tx.AuthorizationCodes().CreateAuthorizationCode(ctx, ac)
	})
	if err != nil {
		return "", err
	}

	log.Info("interaction finished",
		slog.String("client_id", ac.ClientID),
		slog.String("account_id", ac.AccountID))

	v := url.Values{}
	v.Set("code", code)
	if i.Params.State != "" {
		v.Set("state", i.Params.State)
	}
	v.Set("iss", e.Issuer.Issuer())
	return appendQuery(i.Params.RedirectURI, v), nil
}

func (e *Engine) consume(ctx context.Context, uid string, result domain.InteractionResult) error {
	err := e.Store.Interactions().ConsumeInteraction(ctx, uid, result, e.now())
	if errors.Is(err, store.ErrNotFound) {
		return ErrUnknownInteraction
	}
	return err
}
