package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/internal/infrastructure/db/postgres/sqlc/queries"
)

type challengeRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewChallengeRepository(config ...interface{}) (domain.ChallengeRepository, error) {
	db, err := getDB("challenge", config...)
	if err != nil {
		return nil, err
	}
	return &challengeRepository{db: db, querier: queries.New(db)}, nil
}

func (r *challengeRepository) Get(ctx context.Context, id string) (*domain.Challenge, error) {
	row, err := r.querier.SelectChallenge(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	challenge := toChallenge(row)
	return &challenge, nil
}

func (r *challengeRepository) GetPending(
	ctx context.Context, spokeID string, height uint64,
) (*domain.Challenge, error) {
	row, err := r.querier.SelectPendingChallenge(ctx, queries.SelectPendingChallengeParams{
		SpokeID: spokeID, Height: int64(height),
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending challenge: %w", err)
	}
	challenge := toChallenge(row)
	return &challenge, nil
}

func (r *challengeRepository) GetByHeight(
	ctx context.Context, spokeID string, height uint64,
) ([]domain.Challenge, error) {
	rows, err := r.querier.SelectChallengesByHeight(ctx, queries.SelectChallengesByHeightParams{
		SpokeID: spokeID, Height: int64(height),
	})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get challenges: %w", err)
	}
	challenges := make([]domain.Challenge, 0, len(rows))
	for _, row := range rows {
		challenges = append(challenges, toChallenge(row))
	}
	return challenges, nil
}

func (r *challengeRepository) Upsert(ctx context.Context, challenge domain.Challenge) error {
	return r.querier.UpsertChallenge(ctx, queries.UpsertChallengeParams{
		ID:         challenge.ID,
		SpokeID:    challenge.SpokeID,
		Height:     int64(challenge.Height),
		Challenger: challenge.Challenger,
		Stake:      int64(challenge.Stake),
		Relayer:    challenge.Relayer,
		CreatedAt:  challenge.CreatedAt,
		ResolvedAt: challenge.ResolvedAt,
		Outcome:    int64(challenge.Outcome),
		Payout:     int64(challenge.Payout),
	})
}

func (r *challengeRepository) Close() {
	_ = r.db.Close()
}

func toChallenge(row queries.Challenge) domain.Challenge {
	return domain.Challenge{
		ID:         row.ID,
		SpokeID:    row.SpokeID,
		Height:     uint64(row.Height),
		Challenger: row.Challenger,
		Stake:      uint64(row.Stake),
		Relayer:    row.Relayer,
		CreatedAt:  row.CreatedAt,
		ResolvedAt: row.ResolvedAt,
		Outcome:    domain.ChallengeOutcome(row.Outcome),
		Payout:     uint64(row.Payout),
	}
}
