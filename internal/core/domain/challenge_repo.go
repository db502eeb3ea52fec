package domain

import "context"

type ChallengeRepository interface {
	Get(ctx context.Context, id string) (*Challenge, error)
	// GetPending returns the live challenge at height, if any.
	GetPending(ctx context.Context, spokeID string, height uint64) (*Challenge, error)
	GetByHeight(ctx context.Context, spokeID string, height uint64) ([]Challenge, error)
	Upsert(ctx context.Context, challenge Challenge) error
	Close()
}
