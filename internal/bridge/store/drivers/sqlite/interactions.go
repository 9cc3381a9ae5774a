package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/domain"
	"github.com/aussiebroadwan/oidcbridge/internal/bridge/store/drivers/sqlite/gen"
)

type interactionsRepo struct {
	q *gen.Queries
}

func (r *interactionsRepo) CreateInteraction(ctx context.Context, i domain.Interaction) error {
	prompt, err := json.Marshal(i.Prompt)
	if err != nil {
		return fmt.Errorf("sqlite: encode prompt: %w", err)
	}
	params, err := json.Marshal(i.Params)
	if err != nil {
		return fmt.Errorf("sqlite: encode params: %w", err)
	}

	err = r.q.CreateInteraction(ctx, gen.CreateInteractionParams{
		Uid:       i.UID,
		ClientID:  i.Params.ClientID,
		Prompt:    string(prompt),
		Params:    string(params),
		CreatedAt: toUnix(i.CreatedAt),
		ExpiresAt: toUnix(i.ExpiresAt),
	})
	return mapConstraint(err)
}

func (r *interactionsRepo) GetActiveInteraction(ctx context.Context, uid string, now time.Time) (domain.Interaction, error) {
	row, err := r.q.GetActiveInteraction(ctx, gen.GetActiveInteractionParams{
		Uid:       uid,
		ExpiresAt: toUnix(now),
	})
	if err != nil {
		return domain.Interaction{}, mapNotFound(err)
	}
	return mapInteraction(row)
}

func (r *interactionsRepo) SaveInteractionResult(
	ctx context.Context,
	uid string,
	result domain.InteractionResult,
	now time.Time,
) error {
	encoded, err := encodeResult(result)
	if err != nil {
		return err
	}
	return expectOne(r.q.SaveInteractionResult(ctx, gen.SaveInteractionResultParams{
		Result:    encoded,
		Uid:       uid,
		ExpiresAt: toUnix(now),
	}))
}

func (r *interactionsRepo) ConsumeInteraction(
	ctx context.Context,
	uid string,
	result domain.InteractionResult,
	now time.Time,
) error {
	encoded, err := encodeResult(result)
	if err != nil {
		return err
	}
	return expectOne(r.q.ConsumeInteraction(ctx, gen.ConsumeInteractionParams{
		Result:     encoded,
		ConsumedAt: nullUnix(now),
		Uid:        uid,
		ExpiresAt:  toUnix(now),
	}))
}

func (r *interactionsRepo) DeleteExpiredInteractions(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteExpiredInteractions(ctx, toUnix(now))
}

func encodeResult(result domain.InteractionResult) (sql.NullString, error) {
	b, err := json.Marshal(result)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("sqlite: encode result: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func mapInteraction(row gen.Interaction) (domain.Interaction, error) {
	i := domain.Interaction{
		UID:        row.Uid,
		CreatedAt:  fromUnix(row.CreatedAt),
		ExpiresAt:  fromUnix(row.ExpiresAt),
		ConsumedAt: mapNullUnixPtr(row.ConsumedAt),
	}
	if err := json.Unmarshal([]byte(row.Prompt), &i.Prompt); err != nil {
		return domain.Interaction{}, fmt.Errorf("sqlite: decode prompt: %w", err)
	}
	if err := json.Unmarshal([]byte(row.Params), &i.Params); err != nil {
		return domain.Interaction{}, fmt.Errorf("sqlite: decode params: %w", err)
	}
	if row.Result.Valid {
		var res domain.InteractionResult
		if err := json.Unmarshal([]byte(row.Result.String), &res); err != nil {
			return domain.Interaction{}, fmt.Errorf("sqlite: decode result: %w", err)
		}
		i.Result = &res
	}
	return i, nil
}
