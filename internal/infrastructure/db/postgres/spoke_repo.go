package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/internal/infrastructure/db/postgres/sqlc/queries"
)

type spokeRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewSpokeStateRepository(config ...interface{}) (domain.SpokeStateRepository, error) {
	db, err := getDB("spoke", config...)
	if err != nil {
		return nil, err
	}
	return &spokeRepository{db: db, querier: queries.New(db)}, nil
}

func (r *spokeRepository) Get(ctx context.Context, id string) (*domain.SpokeState, error) {
	row, err := r.querier.SelectSpokeState(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get spoke state: %w", err)
	}
	return &domain.SpokeState{
		ID:                   row.ID,
		Side:                 domain.Side(row.Side),
		OpenHeight:           uint64(row.OpenHeight),
		RelayCursor:          uint64(row.RelayCursor),
		SettledCursor:        uint64(row.SettledCursor),
		RelayedUpTo:          uint64(row.RelayedUpTo),
		HasMalicious:         row.HasMalicious,
		FirstMaliciousHeight: uint64(row.FirstMaliciousHeight),
		NumberOfChallenges:   uint64(row.NumberOfChallenges),
		Reserve:              uint64(row.Reserve),
		Status:               domain.SpokeStatus(row.Status),
	}, nil
}

func (r *spokeRepository) Upsert(ctx context.Context, state domain.SpokeState) error {
	return r.querier.UpsertSpokeState(ctx, queries.UpsertSpokeStateParams{
		ID:                   state.ID,
		Side:                 int64(state.Side),
		OpenHeight:           int64(state.OpenHeight),
		RelayCursor:          int64(state.RelayCursor),
		SettledCursor:        int64(state.SettledCursor),
		RelayedUpTo:          int64(state.RelayedUpTo),
		HasMalicious:         state.HasMalicious,
		FirstMaliciousHeight: int64(state.FirstMaliciousHeight),
		NumberOfChallenges:   int64(state.NumberOfChallenges),
		Reserve:              int64(state.Reserve),
		Status:               int64(state.Status),
	})
}

func (r *spokeRepository) Close() {
	_ = r.db.Close()
}
