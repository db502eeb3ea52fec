package ports

import (
	"context"

	"github.com/arkade-os/nftbridge/pkg/merkle"
)

// LiveStore keeps the working sets of the off-protocol agents.
type LiveStore interface {
	RelayQueue() RelayQueueStore
	WatchedBlocks() WatchedBlocksStore
}

// PendingRelay is a sealed block of an origin spoke waiting to be relayed to its counterpart.
type PendingRelay struct {
	OriginID string
	Height   uint64
	Root     merkle.Hash
	SealedAt int64
}

type RelayQueueStore interface {
	Push(ctx context.Context, relays ...PendingRelay) error
	// Peek returns up to num queued relays of the origin, lowest height first.
	Peek(ctx context.Context, originID string, num int) ([]PendingRelay, error)
	Delete(ctx context.Context, originID string, heights ...uint64) error
	Len(ctx context.Context, originID string) (int64, error)
}

// WatchedBlock is a relayed root a watchtower keeps an eye on until its window expires.
type WatchedBlock struct {
	SpokeID     string
	Height      uint64
	Root        merkle.Hash
	Relayer     string
	SubmittedAt int64
	ChallengeID string
	ProofSent   bool
}

type WatchedBlocksStore interface {
	Add(ctx context.Context, block WatchedBlock) error
	// Get returns nil without error when the block is not watched.
	Get(ctx context.Context, spokeID string, height uint64) (*WatchedBlock, error)
	// Update applies fn to the watched block atomically. A nil result removes the block.
	Update(
		ctx context.Context, spokeID string, height uint64,
		fn func(b *WatchedBlock) *WatchedBlock,
	) error
	Remove(ctx context.Context, spokeID string, height uint64) error
	List(ctx context.Context, spokeID string) ([]WatchedBlock, error)
}
