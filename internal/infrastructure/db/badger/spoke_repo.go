package badgerdb

import (
	"context"
	"fmt"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const spokeStoreDir = "spokes"

type spokeRepository struct {
	store *badgerhold.Store
}

func NewSpokeStateRepository(config ...interface{}) (domain.SpokeStateRepository, error) {
	store, err := openStore(spokeStoreDir, config...)
	if err != nil {
		return nil, fmt.Errorf("failed to open spoke store: %s", err)
	}
	return &spokeRepository{store}, nil
}

func (r *spokeRepository) Get(_ context.Context, id string) (*domain.SpokeState, error) {
	var state domain.SpokeState
	if err := r.store.Get(id, &state); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

func (r *spokeRepository) Upsert(_ context.Context, state domain.SpokeState) error {
	return upsert(r.store, state.ID, state)
}

func (r *spokeRepository) Close() {
	// nolint:all
	r.store.Close()
}
