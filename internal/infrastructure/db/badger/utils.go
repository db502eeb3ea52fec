package badgerdb

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

const maxRetries = 5

func createDB(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

// openStore parses the [baseDir string, logger badger.Logger] config shared by all repositories
// and opens the store in the given sub directory.
func openStore(storeDir string, config ...interface{}) (*badgerhold.Store, error) {
	if len(config) != 2 {
		return nil, fmt.Errorf("invalid config")
	}
	baseDir, ok := config[0].(string)
	if !ok {
		return nil, fmt.Errorf("invalid base directory")
	}
	var logger badger.Logger
	if config[1] != nil {
		logger, ok = config[1].(badger.Logger)
		if !ok {
			return nil, fmt.Errorf("invalid logger")
		}
	}

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, storeDir)
	}
	return createDB(dir, logger)
}

func upsert(store *badgerhold.Store, key, data interface{}) error {
	err := store.Upsert(key, data)
	if err != nil {
		if errors.Is(err, badger.ErrConflict) {
			for attempts := 1; attempts <= maxRetries; attempts++ {
				time.Sleep(100 * time.Millisecond)
				err = store.Upsert(key, data)
				if err == nil {
					break
				}
			}
		}
	}
	return err
}

// withTx runs fn in a read-write transaction, retrying on conflicts.
func withTx(store *badgerhold.Store, fn func(tx *badger.Txn) error) error {
	var err error
	for range maxRetries {
		err = func() error {
			tx := store.Badger().NewTransaction(true)
			defer tx.Discard()

			if err := fn(tx); err != nil {
				return err
			}
			return tx.Commit()
		}()
		if err == nil {
			return nil
		}

		if errors.Is(err, badger.ErrConflict) {
			time.Sleep(100 * time.Millisecond)
			continue
		}
		return err
	}
	return err
}

func heightKey(spokeID string, height uint64) string {
	return fmt.Sprintf("%s:%020d", spokeID, height)
}
