package badgerdb

import (
	"context"
	"fmt"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"
)

const incomingBlockStoreDir = "incoming_blocks"

type incomingBlockRepository struct {
	store *badgerhold.Store
}

type archivedIncomingBlockDTO struct {
	ID string
	domain.IncomingBlock
	ArchivedAt int64
}

func NewIncomingBlockRepository(config ...interface{}) (domain.IncomingBlockRepository, error) {
	store, err := openStore(incomingBlockStoreDir, config...)
	if err != nil {
		return nil, fmt.Errorf("failed to open incoming block store: %s", err)
	}
	return &incomingBlockRepository{store}, nil
}

func (r *incomingBlockRepository) Get(
	_ context.Context, spokeID string, height uint64,
) (*domain.IncomingBlock, error) {
	var block domain.IncomingBlock
	if err := r.store.Get(heightKey(spokeID, height), &block); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	if block.Claims == nil {
		block.Claims = make(map[uint32]domain.Claim)
	}
	return &block, nil
}

func (r *incomingBlockRepository) GetByStatus(
	_ context.Context, spokeID string, status domain.IncomingBlockStatus,
) ([]domain.IncomingBlock, error) {
	query := badgerhold.Where("SpokeID").Eq(spokeID).And("Status").Eq(status).SortBy("Height")

	blocks := make([]domain.IncomingBlock, 0)
	if err := r.store.Find(&blocks, query); err != nil && err != badgerhold.ErrNotFound {
		return nil, err
	}
	for i := range blocks {
		if blocks[i].Claims == nil {
			blocks[i].Claims = make(map[uint32]domain.Claim)
		}
	}
	return blocks, nil
}

func (r *incomingBlockRepository) Upsert(_ context.Context, block domain.IncomingBlock) error {
	return upsert(r.store, heightKey(block.SpokeID, block.Height), block)
}

func (r *incomingBlockRepository) Archive(
	_ context.Context, spokeID string, heights []uint64, at int64,
) error {
	return withTx(r.store, func(tx *badger.Txn) error {
		for _, height := range heights {
			key := heightKey(spokeID, height)

			var block domain.IncomingBlock
			if err := r.store.TxGet(tx, key, &block); err != nil {
				if err == badgerhold.ErrNotFound {
					return fmt.Errorf("incoming block %d of spoke %s not found", height, spokeID)
				}
				return err
			}

			dto := archivedIncomingBlockDTO{
				ID:            uuid.New().String(),
				IncomingBlock: block,
				ArchivedAt:    at,
			}
			if err := r.store.TxInsert(tx, dto.ID, dto); err != nil {
				return err
			}
			if err := r.store.TxDelete(tx, key, block); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *incomingBlockRepository) GetArchived(
	_ context.Context, spokeID string, height uint64,
) ([]domain.ArchivedIncomingBlock, error) {
	query := badgerhold.Where("SpokeID").Eq(spokeID).And("Height").Eq(height).
		SortBy("ArchivedAt")

	dtos := make([]archivedIncomingBlockDTO, 0)
	if err := r.store.Find(&dtos, query); err != nil && err != badgerhold.ErrNotFound {
		return nil, err
	}

	archived := make([]domain.ArchivedIncomingBlock, 0, len(dtos))
	for _, dto := range dtos {
		archived = append(archived, domain.ArchivedIncomingBlock{
			IncomingBlock: dto.IncomingBlock,
			ArchivedAt:    dto.ArchivedAt,
		})
	}
	return archived, nil
}

func (r *incomingBlockRepository) Close() {
	// nolint:all
	r.store.Close()
}
