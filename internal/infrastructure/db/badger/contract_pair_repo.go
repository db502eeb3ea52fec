package badgerdb

import (
	"context"
	"fmt"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

const contractPairStoreDir = "contract_pairs"

type contractPairRepository struct {
	store *badgerhold.Store
}

func NewContractPairRepository(config ...interface{}) (domain.ContractPairRepository, error) {
	store, err := openStore(contractPairStoreDir, config...)
	if err != nil {
		return nil, fmt.Errorf("failed to open contract pair store: %s", err)
	}
	return &contractPairRepository{store}, nil
}

func (r *contractPairRepository) GetByLocal(
	_ context.Context, local string,
) (*domain.ContractPair, error) {
	return r.findOne(badgerhold.Where("Local").Eq(local))
}

func (r *contractPairRepository) GetByRemote(
	_ context.Context, remote string,
) (*domain.ContractPair, error) {
	return r.findOne(badgerhold.Where("Remote").Eq(remote))
}

func (r *contractPairRepository) List(_ context.Context) ([]domain.ContractPair, error) {
	pairs := make([]domain.ContractPair, 0)
	query := (&badgerhold.Query{}).SortBy("CreatedAt", "Local")
	if err := r.store.Find(&pairs, query); err != nil && err != badgerhold.ErrNotFound {
		return nil, err
	}
	return pairs, nil
}

func (r *contractPairRepository) Add(_ context.Context, pair domain.ContractPair) error {
	return withTx(r.store, func(tx *badger.Txn) error {
		var existing []domain.ContractPair
		query := badgerhold.Where("Local").Eq(pair.Local).Or(
			badgerhold.Where("Remote").Eq(pair.Remote),
		)
		if err := r.store.TxFind(tx, &existing, query); err != nil &&
			err != badgerhold.ErrNotFound {
			return err
		}
		if len(existing) > 0 {
			return fmt.Errorf("contract pair %s -> %s conflicts with an existing one",
				pair.Local, pair.Remote)
		}
		return r.store.TxInsert(tx, pair.Local, pair)
	})
}

func (r *contractPairRepository) Close() {
	// nolint:all
	r.store.Close()
}

func (r *contractPairRepository) findOne(query *badgerhold.Query) (*domain.ContractPair, error) {
	var pair domain.ContractPair
	if err := r.store.FindOne(&pair, query); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &pair, nil
}
