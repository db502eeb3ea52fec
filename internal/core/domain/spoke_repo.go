package domain

import "context"

type SpokeStateRepository interface {
	Get(ctx context.Context, id string) (*SpokeState, error)
	Upsert(ctx context.Context, state SpokeState) error
	Close()
}
