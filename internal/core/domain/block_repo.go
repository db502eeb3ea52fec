package domain

import "context"

// BlockRepository stores the outgoing blocks of a spoke. Get returns nil without error when the
// block does not exist.
type BlockRepository interface {
	Get(ctx context.Context, spokeID string, height uint64) (*Block, error)
	// GetRange returns the blocks with height in [from, to), lowest first.
	GetRange(ctx context.Context, spokeID string, from, to uint64) ([]Block, error)
	Upsert(ctx context.Context, block Block) error
	Close()
}
