package badgerdb

import (
	"context"
	"fmt"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const challengeStoreDir = "challenges"

type challengeRepository struct {
	store *badgerhold.Store
}

func NewChallengeRepository(config ...interface{}) (domain.ChallengeRepository, error) {
	store, err := openStore(challengeStoreDir, config...)
	if err != nil {
		return nil, fmt.Errorf("failed to open challenge store: %s", err)
	}
	return &challengeRepository{store}, nil
}

func (r *challengeRepository) Get(_ context.Context, id string) (*domain.Challenge, error) {
	var challenge domain.Challenge
	if err := r.store.Get(id, &challenge); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &challenge, nil
}

func (r *challengeRepository) GetPending(
	_ context.Context, spokeID string, height uint64,
) (*domain.Challenge, error) {
	query := badgerhold.Where("SpokeID").Eq(spokeID).And("Height").Eq(height).
		And("Outcome").Eq(domain.ChallengePending)

	var challenge domain.Challenge
	if err := r.store.FindOne(&challenge, query); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &challenge, nil
}

func (r *challengeRepository) GetByHeight(
	_ context.Context, spokeID string, height uint64,
) ([]domain.Challenge, error) {
	query := badgerhold.Where("SpokeID").Eq(spokeID).And("Height").Eq(height).
		SortBy("CreatedAt")

	challenges := make([]domain.Challenge, 0)
	if err := r.store.Find(&challenges, query); err != nil && err != badgerhold.ErrNotFound {
		return nil, err
	}
	return challenges, nil
}

func (r *challengeRepository) Upsert(_ context.Context, challenge domain.Challenge) error {
	return upsert(r.store, challenge.ID, challenge)
}

func (r *challengeRepository) Close() {
	// nolint:all
	r.store.Close()
}
