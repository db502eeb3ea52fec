package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/internal/infrastructure/db/sqlite/sqlc/queries"
)

type rewardRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewRewardRepository(config ...interface{}) (domain.RewardRepository, error) {
	db, err := getDB("reward", config...)
	if err != nil {
		return nil, err
	}
	return &rewardRepository{db: db, querier: queries.New(db)}, nil
}

func (r *rewardRepository) Get(
	ctx context.Context, spokeID, account string,
) (*domain.RewardBalance, error) {
	row, err := r.querier.SelectRewardBalance(ctx, queries.SelectRewardBalanceParams{
		SpokeID: spokeID, Account: account,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.RewardBalance{SpokeID: spokeID, Account: account}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reward balance: %w", err)
	}
	return &domain.RewardBalance{
		SpokeID:      row.SpokeID,
		Account:      row.Account,
		Challenge:    uint64(row.Challenge),
		Compensation: uint64(row.Compensation),
	}, nil
}

func (r *rewardRepository) Upsert(ctx context.Context, balance domain.RewardBalance) error {
	return r.querier.UpsertRewardBalance(ctx, queries.UpsertRewardBalanceParams{
		SpokeID:      balance.SpokeID,
		Account:      balance.Account,
		Challenge:    int64(balance.Challenge),
		Compensation: int64(balance.Compensation),
	})
}

func (r *rewardRepository) Close() {
	_ = r.db.Close()
}
