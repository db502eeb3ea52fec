package badgerdb

import (
	"context"
	"fmt"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const blockStoreDir = "blocks"

type blockRepository struct {
	store *badgerhold.Store
}

func NewBlockRepository(config ...interface{}) (domain.BlockRepository, error) {
	store, err := openStore(blockStoreDir, config...)
	if err != nil {
		return nil, fmt.Errorf("failed to open block store: %s", err)
	}
	return &blockRepository{store}, nil
}

func (r *blockRepository) Get(
	_ context.Context, spokeID string, height uint64,
) (*domain.Block, error) {
	var block domain.Block
	if err := r.store.Get(heightKey(spokeID, height), &block); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	if block.Intents == nil {
		block.Intents = make([]domain.TransferIntent, 0)
	}
	return &block, nil
}

func (r *blockRepository) GetRange(
	_ context.Context, spokeID string, from, to uint64,
) ([]domain.Block, error) {
	query := badgerhold.Where("SpokeID").Eq(spokeID).
		And("Height").Ge(from).And("Height").Lt(to).
		SortBy("Height")

	blocks := make([]domain.Block, 0)
	if err := r.store.Find(&blocks, query); err != nil && err != badgerhold.ErrNotFound {
		return nil, err
	}
	return blocks, nil
}

func (r *blockRepository) Upsert(_ context.Context, block domain.Block) error {
	return upsert(r.store, heightKey(block.SpokeID, block.Height), block)
}

func (r *blockRepository) Close() {
	// nolint:all
	r.store.Close()
}
