package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/internal/infrastructure/db/sqlite/sqlc/queries"
	"github.com/arkade-os/nftbridge/pkg/merkle"
)

type consumedIntentRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewConsumedIntentRepository(config ...interface{}) (domain.ConsumedIntentRepository, error) {
	db, err := getDB("consumed intent", config...)
	if err != nil {
		return nil, err
	}
	return &consumedIntentRepository{db: db, querier: queries.New(db)}, nil
}

func (r *consumedIntentRepository) Get(
	ctx context.Context, spokeID string, hash merkle.Hash,
) (*domain.ConsumedIntent, error) {
	row, err := r.querier.SelectConsumedIntent(ctx, queries.SelectConsumedIntentParams{
		SpokeID: spokeID, Hash: hash[:],
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get consumed intent: %w", err)
	}
	intent, err := toConsumedIntent(row)
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

func (r *consumedIntentRepository) GetByToken(
	ctx context.Context, spokeID, contract string, tokenID uint64,
) ([]domain.ConsumedIntent, error) {
	rows, err := r.querier.SelectConsumedIntentsByToken(
		ctx, queries.SelectConsumedIntentsByTokenParams{
			SpokeID: spokeID, Contract: contract, TokenID: int64(tokenID),
		},
	)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get consumed intents: %w", err)
	}
	intents := make([]domain.ConsumedIntent, 0, len(rows))
	for _, row := range rows {
		intent, err := toConsumedIntent(row)
		if err != nil {
			return nil, err
		}
		intents = append(intents, intent)
	}
	return intents, nil
}

func (r *consumedIntentRepository) Add(ctx context.Context, intent domain.ConsumedIntent) error {
	if err := r.querier.InsertConsumedIntent(ctx, queries.InsertConsumedIntentParams{
		SpokeID:    intent.SpokeID,
		Hash:       intent.Hash[:],
		Height:     int64(intent.Height),
		Idx:        int64(intent.Index),
		Contract:   intent.Contract,
		TokenID:    int64(intent.TokenID),
		ConsumedAt: intent.ConsumedAt,
	}); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("intent %s is already consumed", intent.Hash)
		}
		return fmt.Errorf("failed to add consumed intent: %w", err)
	}
	return nil
}

func (r *consumedIntentRepository) Delete(
	ctx context.Context, spokeID string, hash merkle.Hash,
) error {
	if err := r.querier.DeleteConsumedIntent(ctx, queries.DeleteConsumedIntentParams{
		SpokeID: spokeID, Hash: hash[:],
	}); err != nil {
		return fmt.Errorf("failed to delete consumed intent: %w", err)
	}
	return nil
}

func (r *consumedIntentRepository) DeleteByToken(
	ctx context.Context, spokeID, contract string, tokenID uint64,
) error {
	if err := r.querier.DeleteConsumedIntentsByToken(
		ctx, queries.DeleteConsumedIntentsByTokenParams{
			SpokeID: spokeID, Contract: contract, TokenID: int64(tokenID),
		},
	); err != nil {
		return fmt.Errorf("failed to delete consumed intents: %w", err)
	}
	return nil
}

func (r *consumedIntentRepository) Close() {
	_ = r.db.Close()
}

func toConsumedIntent(row queries.ConsumedIntent) (domain.ConsumedIntent, error) {
	hash, err := merkle.HashFromBytes(row.Hash)
	if err != nil {
		return domain.ConsumedIntent{}, fmt.Errorf("invalid consumed intent hash: %w", err)
	}
	return domain.ConsumedIntent{
		SpokeID:    row.SpokeID,
		Hash:       hash,
		Height:     uint64(row.Height),
		Index:      uint32(row.Idx),
		Contract:   row.Contract,
		TokenID:    uint64(row.TokenID),
		ConsumedAt: row.ConsumedAt,
	}, nil
}
