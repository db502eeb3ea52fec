package badgerdb

import (
	"context"
	"fmt"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const relayerStoreDir = "relayers"

type relayerRepository struct {
	store *badgerhold.Store
}

func NewRelayerRepository(config ...interface{}) (domain.RelayerRepository, error) {
	store, err := openStore(relayerStoreDir, config...)
	if err != nil {
		return nil, fmt.Errorf("failed to open relayer store: %s", err)
	}
	return &relayerRepository{store}, nil
}

func (r *relayerRepository) Get(
	_ context.Context, spokeID, address string,
) (*domain.Relayer, error) {
	var relayer domain.Relayer
	if err := r.store.Get(accountKey(spokeID, address), &relayer); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &relayer, nil
}

func (r *relayerRepository) List(_ context.Context, spokeID string) ([]domain.Relayer, error) {
	relayers := make([]domain.Relayer, 0)
	query := badgerhold.Where("SpokeID").Eq(spokeID).SortBy("Address")
	if err := r.store.Find(&relayers, query); err != nil && err != badgerhold.ErrNotFound {
		return nil, err
	}
	return relayers, nil
}

func (r *relayerRepository) Upsert(_ context.Context, relayer domain.Relayer) error {
	return upsert(r.store, accountKey(relayer.SpokeID, relayer.Address), relayer)
}

func (r *relayerRepository) Close() {
	// nolint:all
	r.store.Close()
}

func accountKey(spokeID, account string) string {
	return fmt.Sprintf("%s:%s", spokeID, account)
}
