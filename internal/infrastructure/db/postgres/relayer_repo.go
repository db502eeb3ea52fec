package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/internal/infrastructure/db/postgres/sqlc/queries"
)

type relayerRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewRelayerRepository(config ...interface{}) (domain.RelayerRepository, error) {
	db, err := getDB("relayer", config...)
	if err != nil {
		return nil, err
	}
	return &relayerRepository{db: db, querier: queries.New(db)}, nil
}

func (r *relayerRepository) Get(
	ctx context.Context, spokeID, address string,
) (*domain.Relayer, error) {
	row, err := r.querier.SelectRelayer(ctx, queries.SelectRelayerParams{
		SpokeID: spokeID, Address: address,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get relayer: %w", err)
	}
	relayer := toRelayer(row)
	return &relayer, nil
}

func (r *relayerRepository) List(ctx context.Context, spokeID string) ([]domain.Relayer, error) {
	rows, err := r.querier.SelectRelayers(ctx, spokeID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to list relayers: %w", err)
	}
	relayers := make([]domain.Relayer, 0, len(rows))
	for _, row := range rows {
		relayers = append(relayers, toRelayer(row))
	}
	return relayers, nil
}

func (r *relayerRepository) Upsert(ctx context.Context, relayer domain.Relayer) error {
	return r.querier.UpsertRelayer(ctx, queries.UpsertRelayerParams{
		SpokeID:                      relayer.SpokeID,
		Address:                      relayer.Address,
		Bond:                         int64(relayer.Bond),
		Status:                       int64(relayer.Status),
		UndepositRequestedAt:         relayer.UndepositRequestedAt,
		OutstandingAgainstChallenges: int64(relayer.OutstandingAgainstChallenges),
		LiveChallenges:               int64(relayer.LiveChallenges),
		Slashed:                      relayer.Slashed,
	})
}

func (r *relayerRepository) Close() {
	_ = r.db.Close()
}

func toRelayer(row queries.Relayer) domain.Relayer {
	return domain.Relayer{
		SpokeID:                      row.SpokeID,
		Address:                      row.Address,
		Bond:                         uint64(row.Bond),
		Status:                       domain.RelayerStatus(row.Status),
		UndepositRequestedAt:         row.UndepositRequestedAt,
		OutstandingAgainstChallenges: uint64(row.OutstandingAgainstChallenges),
		LiveChallenges:               uint64(row.LiveChallenges),
		Slashed:                      row.Slashed,
	}
}
