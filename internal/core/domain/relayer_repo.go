package domain

import "context"

type RelayerRepository interface {
	Get(ctx context.Context, spokeID, address string) (*Relayer, error)
	List(ctx context.Context, spokeID string) ([]Relayer, error)
	Upsert(ctx context.Context, relayer Relayer) error
	Close()
}
