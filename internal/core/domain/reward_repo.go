package domain

import "context"

// RewardRepository returns an empty balance for accounts never credited.
type RewardRepository interface {
	Get(ctx context.Context, spokeID, account string) (*RewardBalance, error)
	Upsert(ctx context.Context, balance RewardBalance) error
	Close()
}
