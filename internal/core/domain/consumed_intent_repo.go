package domain

import (
	"context"

	"github.com/arkade-os/nftbridge/pkg/merkle"
)

// ConsumedIntentRepository indexes the intents redeemed on a spoke by content hash. Get returns
// nil without error when the intent is not consumed.
type ConsumedIntentRepository interface {
	Get(ctx context.Context, spokeID string, hash merkle.Hash) (*ConsumedIntent, error)
	// Add fails if the intent is already consumed.
	Add(ctx context.Context, intent ConsumedIntent) error
	Delete(ctx context.Context, spokeID string, hash merkle.Hash) error
	GetByToken(ctx context.Context, spokeID, contract string, tokenID uint64) ([]ConsumedIntent, error)
	// DeleteByToken drops the entries of the intents that delivered the token.
	DeleteByToken(ctx context.Context, spokeID, contract string, tokenID uint64) error
	Close()
}
