package sqlitedb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/internal/infrastructure/db/sqlite/sqlc/queries"
	"github.com/arkade-os/nftbridge/pkg/merkle"
)

type incomingBlockRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewIncomingBlockRepository(config ...interface{}) (domain.IncomingBlockRepository, error) {
	db, err := getDB("incoming block", config...)
	if err != nil {
		return nil, err
	}
	return &incomingBlockRepository{db: db, querier: queries.New(db)}, nil
}

func (r *incomingBlockRepository) Get(
	ctx context.Context, spokeID string, height uint64,
) (*domain.IncomingBlock, error) {
	row, err := r.querier.SelectIncomingBlock(ctx, queries.SelectIncomingBlockParams{
		SpokeID: spokeID, Height: int64(height),
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get incoming block: %w", err)
	}
	return r.toIncomingBlock(ctx, r.querier, row)
}

func (r *incomingBlockRepository) GetByStatus(
	ctx context.Context, spokeID string, status domain.IncomingBlockStatus,
) ([]domain.IncomingBlock, error) {
	rows, err := r.querier.SelectIncomingBlocksByStatus(
		ctx, queries.SelectIncomingBlocksByStatusParams{SpokeID: spokeID, Status: int64(status)},
	)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get incoming blocks: %w", err)
	}
	blocks := make([]domain.IncomingBlock, 0, len(rows))
	for _, row := range rows {
		block, err := r.toIncomingBlock(ctx, r.querier, row)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, *block)
	}
	return blocks, nil
}

func (r *incomingBlockRepository) Upsert(ctx context.Context, block domain.IncomingBlock) error {
	txBody := func(querierWithTx *queries.Queries) error {
		if err := querierWithTx.UpsertIncomingBlock(ctx, queries.UpsertIncomingBlockParams{
			SpokeID:     block.SpokeID,
			Height:      int64(block.Height),
			Root:        block.Root[:],
			Relayer:     block.Relayer,
			SubmittedAt: block.SubmittedAt,
			Status:      int64(block.Status),
			ChallengeID: block.ChallengeID,
		}); err != nil {
			return fmt.Errorf("failed to upsert incoming block: %w", err)
		}

		if err := querierWithTx.DeleteIncomingClaims(ctx, queries.DeleteIncomingClaimsParams{
			SpokeID: block.SpokeID, Height: int64(block.Height),
		}); err != nil {
			return fmt.Errorf("failed to reset claims: %w", err)
		}
		for _, claim := range sortedClaims(block.Claims) {
			if err := querierWithTx.InsertIncomingClaim(ctx, queries.InsertIncomingClaimParams{
				SpokeID:   block.SpokeID,
				Height:    int64(block.Height),
				Idx:       int64(claim.Index),
				TokenID:   int64(claim.TokenID),
				Contract:  claim.Contract,
				Receiver:  claim.Receiver,
				ClaimedAt: claim.ClaimedAt,
			}); err != nil {
				return fmt.Errorf("failed to insert claim: %w", err)
			}
		}
		return nil
	}
	return execTx(ctx, r.db, txBody)
}

func (r *incomingBlockRepository) Archive(
	ctx context.Context, spokeID string, heights []uint64, at int64,
) error {
	txBody := func(querierWithTx *queries.Queries) error {
		for _, height := range heights {
			row, err := querierWithTx.SelectIncomingBlock(ctx, queries.SelectIncomingBlockParams{
				SpokeID: spokeID, Height: int64(height),
			})
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return fmt.Errorf("incoming block %d of spoke %s not found", height, spokeID)
				}
				return err
			}
			block, err := r.toIncomingBlock(ctx, querierWithTx, row)
			if err != nil {
				return err
			}
			claims, err := json.Marshal(sortedClaims(block.Claims))
			if err != nil {
				return fmt.Errorf("failed to marshal claims: %w", err)
			}

			if err := querierWithTx.InsertArchivedIncomingBlock(
				ctx, queries.InsertArchivedIncomingBlockParams{
					SpokeID:     row.SpokeID,
					Height:      row.Height,
					Root:        row.Root,
					Relayer:     row.Relayer,
					SubmittedAt: row.SubmittedAt,
					Status:      row.Status,
					ChallengeID: row.ChallengeID,
					Claims:      string(claims),
					ArchivedAt:  at,
				},
			); err != nil {
				return fmt.Errorf("failed to archive incoming block: %w", err)
			}
			if err := querierWithTx.DeleteIncomingBlock(ctx, queries.DeleteIncomingBlockParams{
				SpokeID: spokeID, Height: int64(height),
			}); err != nil {
				return fmt.Errorf("failed to delete incoming block: %w", err)
			}
		}
		return nil
	}
	return execTx(ctx, r.db, txBody)
}

func (r *incomingBlockRepository) GetArchived(
	ctx context.Context, spokeID string, height uint64,
) ([]domain.ArchivedIncomingBlock, error) {
	rows, err := r.querier.SelectArchivedIncomingBlocks(
		ctx, queries.SelectArchivedIncomingBlocksParams{SpokeID: spokeID, Height: int64(height)},
	)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get archived incoming blocks: %w", err)
	}

	archived := make([]domain.ArchivedIncomingBlock, 0, len(rows))
	for _, row := range rows {
		root, err := merkle.HashFromBytes(row.Root)
		if err != nil {
			return nil, fmt.Errorf("invalid root of archived block %d: %w", row.Height, err)
		}
		var claims []domain.Claim
		if err := json.Unmarshal([]byte(row.Claims), &claims); err != nil {
			return nil, fmt.Errorf("failed to unmarshal archived claims: %w", err)
		}
		archived = append(archived, domain.ArchivedIncomingBlock{
			IncomingBlock: domain.IncomingBlock{
				SpokeID:     row.SpokeID,
				Height:      uint64(row.Height),
				Root:        root,
				Relayer:     row.Relayer,
				SubmittedAt: row.SubmittedAt,
				Status:      domain.IncomingBlockStatus(row.Status),
				ChallengeID: row.ChallengeID,
				Claims:      claimsByIndex(claims),
			},
			ArchivedAt: row.ArchivedAt,
		})
	}
	return archived, nil
}

func (r *incomingBlockRepository) Close() {
	_ = r.db.Close()
}

func (r *incomingBlockRepository) toIncomingBlock(
	ctx context.Context, querier *queries.Queries, row queries.IncomingBlock,
) (*domain.IncomingBlock, error) {
	root, err := merkle.HashFromBytes(row.Root)
	if err != nil {
		return nil, fmt.Errorf("invalid root of incoming block %d: %w", row.Height, err)
	}
	claimRows, err := querier.SelectIncomingClaims(ctx, queries.SelectIncomingClaimsParams{
		SpokeID: row.SpokeID, Height: row.Height,
	})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get claims: %w", err)
	}

	block := &domain.IncomingBlock{
		SpokeID:     row.SpokeID,
		Height:      uint64(row.Height),
		Root:        root,
		Relayer:     row.Relayer,
		SubmittedAt: row.SubmittedAt,
		Status:      domain.IncomingBlockStatus(row.Status),
		ChallengeID: row.ChallengeID,
		Claims:      make(map[uint32]domain.Claim, len(claimRows)),
	}
	for _, claim := range claimRows {
		block.Claims[uint32(claim.Idx)] = domain.Claim{
			Index:     uint32(claim.Idx),
			TokenID:   uint64(claim.TokenID),
			Contract:  claim.Contract,
			Receiver:  claim.Receiver,
			ClaimedAt: claim.ClaimedAt,
		}
	}
	return block, nil
}

func sortedClaims(claims map[uint32]domain.Claim) []domain.Claim {
	sorted := make([]domain.Claim, 0, len(claims))
	for _, claim := range claims {
		sorted = append(sorted, claim)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Index < sorted[j].Index
	})
	return sorted
}

func claimsByIndex(claims []domain.Claim) map[uint32]domain.Claim {
	byIndex := make(map[uint32]domain.Claim, len(claims))
	for _, claim := range claims {
		byIndex[claim.Index] = claim
	}
	return byIndex
}
