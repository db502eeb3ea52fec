package badgerdb

import (
	"context"
	"fmt"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const rewardStoreDir = "rewards"

type rewardRepository struct {
	store *badgerhold.Store
}

func NewRewardRepository(config ...interface{}) (domain.RewardRepository, error) {
	store, err := openStore(rewardStoreDir, config...)
	if err != nil {
		return nil, fmt.Errorf("failed to open reward store: %s", err)
	}
	return &rewardRepository{store}, nil
}

func (r *rewardRepository) Get(
	_ context.Context, spokeID, account string,
) (*domain.RewardBalance, error) {
	var balance domain.RewardBalance
	if err := r.store.Get(accountKey(spokeID, account), &balance); err != nil {
		if err == badgerhold.ErrNotFound {
			return &domain.RewardBalance{SpokeID: spokeID, Account: account}, nil
		}
		return nil, err
	}
	return &balance, nil
}

func (r *rewardRepository) Upsert(_ context.Context, balance domain.RewardBalance) error {
	return upsert(r.store, accountKey(balance.SpokeID, balance.Account), balance)
}

func (r *rewardRepository) Close() {
	// nolint:all
	r.store.Close()
}
