package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/internal/infrastructure/db/sqlite/sqlc/queries"
	"github.com/arkade-os/nftbridge/pkg/merkle"
)

type blockRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewBlockRepository(config ...interface{}) (domain.BlockRepository, error) {
	db, err := getDB("block", config...)
	if err != nil {
		return nil, err
	}
	return &blockRepository{db: db, querier: queries.New(db)}, nil
}

func (r *blockRepository) Get(
	ctx context.Context, spokeID string, height uint64,
) (*domain.Block, error) {
	blocks, err := r.GetRange(ctx, spokeID, height, height+1)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, nil
	}
	return &blocks[0], nil
}

func (r *blockRepository) GetRange(
	ctx context.Context, spokeID string, from, to uint64,
) ([]domain.Block, error) {
	rows, err := r.querier.SelectBlockRange(ctx, queries.SelectBlockRangeParams{
		SpokeID: spokeID, FromHeight: int64(from), ToHeight: int64(to),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []domain.Block{}, nil
		}
		return nil, fmt.Errorf("failed to get blocks: %w", err)
	}
	intentRows, err := r.querier.SelectBlockIntents(ctx, queries.SelectBlockIntentsParams{
		SpokeID: spokeID, FromHeight: int64(from), ToHeight: int64(to),
	})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get block intents: %w", err)
	}

	intents := make(map[int64][]domain.TransferIntent)
	for _, row := range intentRows {
		intents[row.Height] = append(intents[row.Height], domain.TransferIntent{
			TokenID:        uint64(row.TokenID),
			Sender:         row.Sender,
			Receiver:       row.Receiver,
			LocalContract:  row.LocalContract,
			RemoteContract: row.RemoteContract,
		})
	}

	blocks := make([]domain.Block, 0, len(rows))
	for _, row := range rows {
		block := domain.Block{
			SpokeID:  row.SpokeID,
			Height:   uint64(row.Height),
			Intents:  intents[row.Height],
			Sealed:   row.Sealed,
			OpenedAt: row.OpenedAt,
			SealedAt: row.SealedAt,
		}
		if block.Intents == nil {
			block.Intents = make([]domain.TransferIntent, 0)
		}
		if len(row.Root) > 0 {
			if block.Root, err = merkle.HashFromBytes(row.Root); err != nil {
				return nil, fmt.Errorf("invalid root of block %d: %w", row.Height, err)
			}
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

func (r *blockRepository) Upsert(ctx context.Context, block domain.Block) error {
	txBody := func(querierWithTx *queries.Queries) error {
		var root []byte
		if !block.Root.IsZero() {
			root = block.Root[:]
		}
		if err := querierWithTx.UpsertBlock(ctx, queries.UpsertBlockParams{
			SpokeID:  block.SpokeID,
			Height:   int64(block.Height),
			Root:     root,
			Sealed:   block.Sealed,
			OpenedAt: block.OpenedAt,
			SealedAt: block.SealedAt,
		}); err != nil {
			return fmt.Errorf("failed to upsert block: %w", err)
		}

		if err := querierWithTx.DeleteBlockIntents(ctx, queries.DeleteBlockIntentsParams{
			SpokeID: block.SpokeID, Height: int64(block.Height),
		}); err != nil {
			return fmt.Errorf("failed to reset block intents: %w", err)
		}
		for i, intent := range block.Intents {
			if err := querierWithTx.InsertBlockIntent(ctx, queries.InsertBlockIntentParams{
				SpokeID:        block.SpokeID,
				Height:         int64(block.Height),
				Idx:            int64(i),
				TokenID:        int64(intent.TokenID),
				Sender:         intent.Sender,
				Receiver:       intent.Receiver,
				LocalContract:  intent.LocalContract,
				RemoteContract: intent.RemoteContract,
			}); err != nil {
				return fmt.Errorf("failed to insert block intent: %w", err)
			}
		}
		return nil
	}
	return execTx(ctx, r.db, txBody)
}

func (r *blockRepository) Close() {
	_ = r.db.Close()
}
