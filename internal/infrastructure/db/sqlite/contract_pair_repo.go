package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/internal/infrastructure/db/sqlite/sqlc/queries"
)

type contractPairRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewContractPairRepository(config ...interface{}) (domain.ContractPairRepository, error) {
	db, err := getDB("contract pair", config...)
	if err != nil {
		return nil, err
	}
	return &contractPairRepository{db: db, querier: queries.New(db)}, nil
}

func (r *contractPairRepository) GetByLocal(
	ctx context.Context, local string,
) (*domain.ContractPair, error) {
	return toContractPair(r.querier.SelectContractPairByLocal(ctx, local))
}

func (r *contractPairRepository) GetByRemote(
	ctx context.Context, remote string,
) (*domain.ContractPair, error) {
	return toContractPair(r.querier.SelectContractPairByRemote(ctx, remote))
}

func (r *contractPairRepository) List(ctx context.Context) ([]domain.ContractPair, error) {
	rows, err := r.querier.SelectContractPairs(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to list contract pairs: %w", err)
	}
	pairs := make([]domain.ContractPair, 0, len(rows))
	for _, row := range rows {
		pairs = append(pairs, domain.ContractPair{
			Local: row.Local, Remote: row.Remote, CreatedAt: row.CreatedAt,
		})
	}
	return pairs, nil
}

func (r *contractPairRepository) Add(ctx context.Context, pair domain.ContractPair) error {
	if err := r.querier.InsertContractPair(ctx, queries.InsertContractPairParams{
		Local: pair.Local, Remote: pair.Remote, CreatedAt: pair.CreatedAt,
	}); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("contract pair %s -> %s conflicts with an existing one",
				pair.Local, pair.Remote)
		}
		return fmt.Errorf("failed to add contract pair: %w", err)
	}
	return nil
}

func (r *contractPairRepository) Close() {
	_ = r.db.Close()
}

func toContractPair(row queries.ContractPair, err error) (*domain.ContractPair, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contract pair: %w", err)
	}
	return &domain.ContractPair{Local: row.Local, Remote: row.Remote, CreatedAt: row.CreatedAt}, nil
}
