package domain

import "context"

// IncomingBlockRepository stores the roots relayed to a spoke. Get returns nil without error
// when no live record exists at the height.
type IncomingBlockRepository interface {
	Get(ctx context.Context, spokeID string, height uint64) (*IncomingBlock, error)
	GetByStatus(
		ctx context.Context, spokeID string, status IncomingBlockStatus,
	) ([]IncomingBlock, error)
	Upsert(ctx context.Context, block IncomingBlock) error
	// Archive moves the live records at the given heights to the audit history.
	Archive(ctx context.Context, spokeID string, heights []uint64, at int64) error
	GetArchived(ctx context.Context, spokeID string, height uint64) ([]ArchivedIncomingBlock, error)
	Close()
}
