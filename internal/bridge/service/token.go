package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/domain"
	"github.com/aussiebroadwan/oidcbridge/internal/bridge/store"
	"github.com/aussiebroadwan/oidcbridge/pkg/cryptox"
	"github.com/aussiebroadwan/oidcbridge/pkg/idx"
	"github.com/aussiebroadwan/oidcbridge/pkg/jwtx"
	"github.com/aussiebroadwan/oidcbridge/pkg/slogx"
)

// ClientAuth is how a client presented itself at the token or revocation
// endpoint. Method is the domain.AuthMethod* the credentials arrived with.
type ClientAuth struct {
	ID     string
	Secret string
	Method string
}

// TokenRequest is a parsed token endpoint request.
type TokenRequest struct {
	GrantType    string
	Code         string
	RedirectURI  string
	CodeVerifier string
	RefreshToken string
	Scope        string
	Client       ClientAuth
}

// Token dispatches on the grant type.
func (e *Engine) Token(ctx context.Context, req TokenRequest) (domain.TokenPair, error) {
	switch req.GrantType {
	case domain.GrantTypeAuthorizationCode:
		return e.ExchangeAuthorizationCode(ctx, req)
	case domain.GrantTypeRefreshToken:
		return e.ExchangeRefreshToken(ctx, req)
	case "":
		return domain.TokenPair{}, ErrInvalidRequest
	default:
		return domain.TokenPair{}, ErrUnsupportedGrantType
	}
}

// ExchangeAuthorizationCode redeems a code issued by InteractionFinished.
//
// The code must belong to the authenticated client, match the redirect URI
// it was issued for, be unexpired, and satisfy its PKCE challenge. It is
// marked used before any token is signed, so of two concurrent
// redemptions only one succeeds. Presenting an already used code also
// revokes the refresh tokens of that account and client.
func (e *Engine) ExchangeAuthorizationCode(ctx context.Context, req TokenRequest) (domain.TokenPair, error) {
	log := slogx.FromContext(ctx)
	now := e.now()

	client, err := e.authenticateClient(ctx, req.Client)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if !client.AllowsGrantType(domain.GrantTypeAuthorizationCode) {
		return domain.TokenPair{}, ErrUnauthorizedClient
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		return domain.TokenPair{}, ErrInvalidRequest
	}

	ac, err := e.Store.AuthorizationCodes().GetAuthorizationCodeByHash(ctx, cryptox.FingerprintToken(code))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidGrant
		}
		return domain.TokenPair{}, err
	}

	if ac.ClientID != client.ID {
		return domain.TokenPair{}, ErrInvalidGrant
	}
	if ac.UsedAt != nil {
		log.Warn("authorization code replayed",
			slog.String("client_id", client.ID),
			slog.String("account_id", ac.AccountID))
		if _, err := e.Store.RefreshTokens().RevokeAccountClientRefreshTokens(ctx, ac.AccountID, client.ID, now); err != nil {
			log.Error("failed to revoke tokens after code replay", "err", err)
		}
		return domain.TokenPair{}, ErrInvalidGrant
	}
	if !now.Before(ac.ExpiresAt) {
		return domain.TokenPair{}, ErrInvalidGrant
	}
	if ac.RedirectURI != strings.TrimSpace(req.RedirectURI) {
		return domain.TokenPair{}, ErrInvalidGrant
	}
	if !verifyCodeVerifier(ac.CodeChallenge, ac.CodeChallengeMethod, strings.TrimSpace(req.CodeVerifier)) {
		return domain.TokenPair{}, ErrInvalidGrant
	}

	if err := e.Store.AuthorizationCodes().MarkAuthorizationCodeUsed(ctx, ac.ID, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidGrant
		}
		return domain.TokenPair{}, err
	}

	claims, ok := e.ResolveClaims(ctx, ac.AccountID)
	if !ok {
		return domain.TokenPair{}, ErrInvalidGrant
	}

	pair, err := e.issueTokens(client, claims, ac.Scopes, ac.Nonce, ac.AuthTime, ac.AMR, now)
	if err != nil {
		return domain.TokenPair{}, err
	}

	if withRefresh(client, ac.Scopes) {
		rt, opaque, err := e.newRefreshToken(client.ID, ac.AccountID, ac.Scopes, ac.AMR, ac.AuthTime, now)
		if err != nil {
			return domain.TokenPair{}, err
		}
		if err := e.Store.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
			return domain.TokenPair{}, err
		}
		pair.RefreshToken = opaque
	}

	log.Info("authorization code exchanged",
		slog.String("client_id", client.ID),
		slog.String("account_id", ac.AccountID))
	return pair, nil
}

// ExchangeRefreshToken rotates a refresh token: the presented token is
// revoked and a new one issued in the same transaction. Presenting a token
// that was already rotated revokes every refresh token of that account and
// client.
func (e *Engine) ExchangeRefreshToken(ctx context.Context, req TokenRequest) (domain.TokenPair, error) {
	log := slogx.FromContext(ctx)
	now := e.now()

	client, err := e.authenticateClient(ctx, req.Client)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if !client.AllowsGrantType(domain.GrantTypeRefreshToken) {
		return domain.TokenPair{}, ErrUnauthorizedClient
	}

	opaque := strings.TrimSpace(req.RefreshToken)
	if opaque == "" {
		return domain.TokenPair{}, ErrInvalidRequest
	}
	hash := cryptox.FingerprintToken(opaque)

	rt, err := e.Store.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidGrant
		}
		return domain.TokenPair{}, err
	}
	if rt.ClientID != client.ID {
		return domain.TokenPair{}, ErrInvalidGrant
	}
	if rt.RevokedAt != nil {
		n, err := e.Store.RefreshTokens().RevokeAccountClientRefreshTokens(ctx, rt.AccountID, client.ID, now)
		if err != nil {
			log.Error("failed to revoke tokens after refresh replay", "err", err)
		}
		log.Warn("revoked refresh token replayed",
			slog.String("client_id", client.ID),
			slog.String("account_id", rt.AccountID),
			slog.Int64("revoked", n))
		return domain.TokenPair{}, ErrInvalidGrant
	}
	if !rt.IsActive(now) {
		return domain.TokenPair{}, ErrInvalidGrant
	}

	granted := rt.Scopes
	if req.Scope != "" {
		requested := domain.ParseScope(req.Scope)
		for _, s := range requested {
			if !slices.Contains(rt.Scopes, s) {
				return domain.TokenPair{}, ErrInvalidScope
			}
		}
		granted = requested
	}

	claims, ok := e.ResolveClaims(ctx, rt.AccountID)
	if !ok {
		return domain.TokenPair{}, ErrInvalidGrant
	}

	pair, err := e.issueTokens(client, claims, granted, "", rt.AuthTime, rt.AMR, now)
	if err != nil {
		return domain.TokenPair{}, err
	}

	next, nextOpaque, err := e.newRefreshToken(client.ID, rt.AccountID, rt.Scopes, rt.AMR, rt.AuthTime, now)
	if err != nil {
		return domain.TokenPair{}, err
	}

	err = e.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, hash, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidGrant
			}
			return err
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, next)
	})
	if err != nil {
		return domain.TokenPair{}, err
	}

	pair.RefreshToken = nextOpaque
	return pair, nil
}

// authenticateClient checks the presented credentials against the method
// the client is registered with.
func (e *Engine) authenticateClient(ctx context.Context, auth ClientAuth) (domain.Client, error) {
	id := strings.TrimSpace(auth.ID)
	if id == "" {
		return domain.Client{}, ErrInvalidClient
	}

	client, err := e.Store.Clients().GetClientByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, ErrInvalidClient
		}
		return domain.Client{}, err
	}

	switch client.TokenEndpointAuthMethod {
	case domain.AuthMethodNone, "":
		if auth.Method != domain.AuthMethodNone {
			return domain.Client{}, ErrInvalidClient
		}
	case domain.AuthMethodClientSecretBasic, domain.AuthMethodClientSecretPost:
		if auth.Method != client.TokenEndpointAuthMethod || auth.Secret == "" {
			return domain.Client{}, ErrInvalidClient
		}
		if cryptox.VerifySecret(auth.Secret, client.SecretHash) != nil {
			slogx.FromContext(ctx).Info("client authentication failed", slog.String("client_id", id))
			return domain.Client{}, ErrInvalidClient
		}
	default:
		return domain.Client{}, ErrInvalidClient
	}

	return client, nil
}

func withRefresh(client domain.Client, scopes []string) bool {
	return domain.HasScope(scopes, domain.ScopeOfflineAccess) &&
		client.AllowsGrantType(domain.GrantTypeRefreshToken)
}

// issueTokens signs the access token and the ID token. The ID token carries
// the scope claims of the granted scopes.
func (e *Engine) issueTokens(
	client domain.Client,
	claims domain.AccountClaims,
	scopes []string,
	nonce string,
	authTime time.Time,
	amr []string,
	now time.Time,
) (domain.TokenPair, error) {
	signer := e.Keys.GetSigner()
	if signer == nil {
		return domain.TokenPair{}, ErrKeysUnavailable
	}

	issuer := e.Issuer.Issuer()
	accessTTL := orDefault(e.AccessTTL, jwtx.DefaultAccessTokenTTL)

	access, err := signer.Sign(jwtx.AccessClaims{
		RegisteredClaims: jwtx.NewRegisteredClaims(issuer, claims.Subject, []string{client.ID}, accessTTL, now),
		Scope:            domain.FormatScope(scopes),
		ClientID:         client.ID,
	})
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	idc := jwtx.IDTokenClaims{
		RegisteredClaims: jwtx.NewRegisteredClaims(issuer, claims.Subject, []string{client.ID},
			orDefault(e.IDTokenTTL, jwtx.DefaultIDTokenTTL), now),
		Nonce:  nonce,
		AtHash: cryptox.HalfHash(access),
		AMR:    amr,
	}
	idc.NotBefore = nil
	if !authTime.IsZero() {
		idc.AuthTime = jwt.NewNumericDate(authTime)
	}
	if domain.HasScope(scopes, domain.ScopeEmail) {
		verified := claims.EmailVerified
		idc.Email = claims.Email
		idc.EmailVerified = &verified
	}
	if domain.HasScope(scopes, domain.ScopeProfile) {
		idc.Name = claims.Name
		idc.Picture = claims.Picture
	}

	idToken, err := signer.Sign(idc)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign id token: %w", err)
	}

	return domain.TokenPair{
		AccessToken: access,
		IDToken:     idToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(accessTTL.Seconds()),
		Scope:       domain.FormatScope(scopes),
	}, nil
}

func (e *Engine) newRefreshToken(clientID, accountID string, scopes, amr []string, authTime, now time.Time) (domain.RefreshToken, string, error) {
	opaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.RefreshToken{}, "", err
	}
	return domain.RefreshToken{
		ID:        idx.New().String(),
		TokenHash: cryptox.FingerprintToken(opaque),
		ClientID:  clientID,
		AccountID: accountID,
		Scopes:    scopes,
		AMR:       amr,
		AuthTime:  authTime,
		ExpiresAt: now.Add(orDefault(e.RefreshTTL, jwtx.DefaultRefreshTokenTTL)),
		CreatedAt: now,
	}, opaque, nil
}

func verifyCodeVerifier(challenge, method, verifier string) bool {
	if method != cryptox.PKCEMethodS256 || !cryptox.ValidVerifier(verifier) {
		return false
	}
	return cryptox.VerifyS256(verifier, challenge)
}
