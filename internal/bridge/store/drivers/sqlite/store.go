package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/domain"
	"github.com/aussiebroadwan/oidcbridge/internal/bridge/store"
	"github.com/aussiebroadwan/oidcbridge/internal/bridge/store/drivers/sqlite/gen"
	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	q   *gen.Queries
	dsn string
}

// NewStore opens the database. A single connection is kept so writes are
// serialized and ":memory:" databases stay one database.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		`PRAGMA foreign_keys = ON;`,
		`PRAGMA busy_timeout = 5000;`,
	} {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return &Store{
		db:  db,
		q:   gen.New(db),
		dsn: dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
// With one connection, code running inside the transaction must only use
// the returned Tx or it will wait on itself.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Clients() store.Clients                       { return &clientsRepo{q: s.q} }
func (s *Store) Interactions() store.Interactions             { return &interactionsRepo{q: s.q} }
func (s *Store) AuthorizationCodes() store.AuthorizationCodes { return &authorizationCodesRepo{q: s.q} }
func (s *Store) RefreshTokens() store.RefreshTokens           { return &refreshTokensRepo{q: s.q} }
func (s *Store) SigningKeys() store.SigningKeys               { return &signingKeysRepo{q: s.q} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// expectOne turns an :execrows result into ErrNotFound when nothing matched.
func expectOne(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// mapConstraint reports unique violations as ErrAlreadyExists.
func mapConstraint(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func toUnix(t time.Time) int64 {
	return t.Unix()
}

func fromUnix(v int64) time.Time {
	return time.Unix(v, 0).UTC()
}

func mapNullUnixPtr(n sql.NullInt64) *time.Time {
	if n.Valid {
		t := fromUnix(n.Int64)
		return &t
	}
	return nil
}

func nullUnix(t time.Time) sql.NullInt64 {
	return sql.NullInt64{Int64: toUnix(t), Valid: true}
}

func splitAndFilter(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Fields(s)
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		if _, ok := seen[part]; ok {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}

func splitList(s, sep string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func mapClient(row gen.Client) domain.Client {
	return domain.Client{
		ID:                      row.ID,
		Name:                    row.Name,
		SecretHash:              mapNullString(row.SecretHash),
		RedirectURIs:            splitAndFilter(row.RedirectUris),
		ResponseTypes:           splitList(row.ResponseTypes, ","),
		GrantTypes:              splitAndFilter(row.GrantTypes),
		TokenEndpointAuthMethod: row.TokenEndpointAuthMethod,
		CreatedAt:               fromUnix(row.CreatedAt),
		UpdatedAt:               fromUnix(row.UpdatedAt),
	}
}

func mapAuthorizationCode(row gen.AuthorizationCode) domain.AuthorizationCode {
	return domain.AuthorizationCode{
		ID:                  row.ID,
		CodeHash:            row.CodeHash,
		ClientID:            row.ClientID,
		AccountID:           row.AccountID,
		InteractionUID:      row.InteractionUid,
		RedirectURI:         row.RedirectUri,
		Scopes:              splitAndFilter(row.Scopes),
		Nonce:               row.Nonce,
		CodeChallenge:       row.CodeChallenge,
		CodeChallengeMethod: row.CodeChallengeMethod,
		AMR:                 splitAndFilter(row.Amr),
		AuthTime:            fromUnix(row.AuthTime),
		ExpiresAt:           fromUnix(row.ExpiresAt),
		UsedAt:              mapNullUnixPtr(row.UsedAt),
		CreatedAt:           fromUnix(row.CreatedAt),
	}
}

func mapRefreshToken(row gen.RefreshToken) domain.RefreshToken {
	return domain.RefreshToken{
		ID:        row.ID,
		TokenHash: row.TokenHash,
		ClientID:  row.ClientID,
		AccountID: row.AccountID,
		Scopes:    splitAndFilter(row.Scopes),
		AMR:       splitAndFilter(row.Amr),
		AuthTime:  fromUnix(row.AuthTime),
		ExpiresAt: fromUnix(row.ExpiresAt),
		RevokedAt: mapNullUnixPtr(row.RevokedAt),
		CreatedAt: fromUnix(row.CreatedAt),
	}
}

func mapSigningKey(row gen.SigningKey) domain.SigningKey {
	return domain.SigningKey{
		ID:                  row.ID,
		Kid:                 row.Kid,
		Algorithm:           row.Algorithm,
		PrivateKeyEncrypted: row.PrivateKeyEncrypted,
		CreatedAt:           fromUnix(row.CreatedAt),
		RetiredAt:           mapNullUnixPtr(row.RetiredAt),
		ExpiresAt:           fromUnix(row.ExpiresAt),
	}
}
