package sqlite

import (
	"context"
	"strings"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/domain"
	"github.com/aussiebroadwan/oidcbridge/internal/bridge/store/drivers/sqlite/gen"
)

type clientsRepo struct {
	q *gen.Queries
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (domain.Client, error) {
	row, err := r.q.GetClientByID(ctx, id)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return mapClient(row), nil
}

func (r *clientsRepo) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.q.ListClients(ctx)
	if err != nil {
		return nil, err
	}

	clients := make([]domain.Client, len(rows))
	for i, row := range rows {
		clients[i] = mapClient(row)
	}
	return clients, nil
}

func (r *clientsRepo) UpsertClient(ctx context.Context, c domain.Client) error {
	method := c.TokenEndpointAuthMethod
	if method == "" {
		method = domain.AuthMethodNone
	}
	return r.q.UpsertClient(ctx, gen.UpsertClientParams{
		ID:                      c.ID,
		Name:                    c.Name,
		SecretHash:              mapStringNull(c.SecretHash),
		RedirectUris:            strings.Join(c.RedirectURIs, " "),
		ResponseTypes:           strings.Join(c.ResponseTypes, ","),
		GrantTypes:              strings.Join(c.GrantTypes, " "),
		TokenEndpointAuthMethod: method,
		CreatedAt:               toUnix(c.CreatedAt),
		UpdatedAt:               toUnix(c.UpdatedAt),
	})
}

func (r *clientsRepo) DeleteClient(ctx context.Context, id string) error {
	return expectOne(r.q.DeleteClient(ctx, id))
}
