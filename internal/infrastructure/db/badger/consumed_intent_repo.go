package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/pkg/merkle"
	"github.com/timshannon/badgerhold/v4"
)

const consumedIntentStoreDir = "consumed_intents"

type consumedIntentRepository struct {
	store *badgerhold.Store
}

func NewConsumedIntentRepository(config ...interface{}) (domain.ConsumedIntentRepository, error) {
	store, err := openStore(consumedIntentStoreDir, config...)
	if err != nil {
		return nil, fmt.Errorf("failed to open consumed intent store: %s", err)
	}
	return &consumedIntentRepository{store}, nil
}

func (r *consumedIntentRepository) Get(
	_ context.Context, spokeID string, hash merkle.Hash,
) (*domain.ConsumedIntent, error) {
	var intent domain.ConsumedIntent
	if err := r.store.Get(hashKey(spokeID, hash), &intent); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &intent, nil
}

func (r *consumedIntentRepository) Add(_ context.Context, intent domain.ConsumedIntent) error {
	if err := r.store.Insert(hashKey(intent.SpokeID, intent.Hash), intent); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("intent %s is already consumed", intent.Hash)
		}
		return err
	}
	return nil
}

func (r *consumedIntentRepository) Delete(
	_ context.Context, spokeID string, hash merkle.Hash,
) error {
	err := r.store.Delete(hashKey(spokeID, hash), domain.ConsumedIntent{})
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return err
	}
	return nil
}

func (r *consumedIntentRepository) GetByToken(
	_ context.Context, spokeID, contract string, tokenID uint64,
) ([]domain.ConsumedIntent, error) {
	var intents []domain.ConsumedIntent
	query := badgerhold.Where("SpokeID").Eq(spokeID).
		And("Contract").Eq(contract).
		And("TokenID").Eq(tokenID).
		SortBy("Height", "Index")
	if err := r.store.Find(&intents, query); err != nil {
		return nil, err
	}
	return intents, nil
}

func (r *consumedIntentRepository) DeleteByToken(
	_ context.Context, spokeID, contract string, tokenID uint64,
) error {
	query := badgerhold.Where("SpokeID").Eq(spokeID).
		And("Contract").Eq(contract).
		And("TokenID").Eq(tokenID)
	return r.store.DeleteMatching(&domain.ConsumedIntent{}, query)
}

func (r *consumedIntentRepository) Close() {
	// nolint:all
	r.store.Close()
}

func hashKey(spokeID string, hash merkle.Hash) string {
	return fmt.Sprintf("%s:%s", spokeID, hash)
}
