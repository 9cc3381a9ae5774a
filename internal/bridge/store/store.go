package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement it and
// expose sub-repositories so a Tx-scoped store can hand out the same repos
// without allowing transactions within transactions.
type Store interface {
	Clients() Clients
	Interactions() Interactions
	AuthorizationCodes() AuthorizationCodes
	RefreshTokens() RefreshTokens
	SigningKeys() SigningKeys

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error, the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Clients interface {
	GetClientByID(ctx context.Context, id string) (domain.Client, error)

	// ListClients returns all clients ordered by creation date (newest first).
	ListClients(ctx context.Context) ([]domain.Client, error)

	// UpsertClient inserts or replaces a registered client. Clients come from
	// configuration, so startup seeding overwrites whatever is stored.
	UpsertClient(ctx context.Context, c domain.Client) error

	DeleteClient(ctx context.Context, id string) error
}

type Interactions interface {
	CreateInteraction(ctx context.Context, i domain.Interaction) error

	// GetActiveInteraction returns the interaction only while it is neither
	// consumed nor expired at now; otherwise ErrNotFound.
	GetActiveInteraction(ctx context.Context, uid string, now time.Time) (domain.Interaction, error)

	// SaveInteractionResult records the last submission without consuming.
	SaveInteractionResult(ctx context.Context, uid string, result domain.InteractionResult, now time.Time) error

	// ConsumeInteraction atomically marks an active interaction consumed.
	// Exactly one caller wins; every other caller gets ErrNotFound.
	ConsumeInteraction(ctx context.Context, uid string, result domain.InteractionResult, now time.Time) error

	DeleteExpiredInteractions(ctx context.Context, now time.Time) (int64, error)
}

type AuthorizationCodes interface {
	CreateAuthorizationCode(ctx context.Context, code domain.AuthorizationCode) error

	// GetAuthorizationCodeByHash looks a code up by its fingerprint.
	GetAuthorizationCodeByHash(ctx context.Context, hash string) (domain.AuthorizationCode, error)

	// MarkAuthorizationCodeUsed returns ErrNotFound when the code was already
	// used, which makes redemption single use under concurrency.
	MarkAuthorizationCodeUsed(ctx context.Context, id string, now time.Time) error

	DeleteExpiredAuthorizationCodes(ctx context.Context, now time.Time) (int64, error)
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken returns ErrNotFound when no unrevoked token matched.
	RevokeRefreshToken(ctx context.Context, hash string, now time.Time) error

	// RevokeAccountClientRefreshTokens revokes every token of an account and
	// client pair, used when a rotated token is replayed.
	RevokeAccountClientRefreshTokens(ctx context.Context, accountID, clientID string, now time.Time) (int64, error)

	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

type SigningKeys interface {
	CreateSigningKey(ctx context.Context, key domain.SigningKey) error
	GetSigningKeyByKid(ctx context.Context, kid string) (domain.SigningKey, error)

	// ListActiveSigningKeys returns keys that are neither retired nor expired.
	ListActiveSigningKeys(ctx context.Context, now time.Time) ([]domain.SigningKey, error)

	// ListAllSigningKeys returns every unexpired key, retired ones included.
	ListAllSigningKeys(ctx context.Context, now time.Time) ([]domain.SigningKey, error)

	RetireSigningKey(ctx context.Context, kid string, now time.Time) error
	DeleteExpiredSigningKeys(ctx context.Context, now time.Time) (int64, error)
}
