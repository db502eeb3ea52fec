package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/internal/core/ports"
	badgerdb "github.com/arkade-os/nftbridge/internal/infrastructure/db/badger"
	pgdb "github.com/arkade-os/nftbridge/internal/infrastructure/db/postgres"
	sqlitedb "github.com/arkade-os/nftbridge/internal/infrastructure/db/sqlite"
	watermilldb "github.com/arkade-os/nftbridge/internal/infrastructure/db/watermill"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sqlite/migration/*
var migrations embed.FS

//go:embed postgres/migration/*
var pgMigration embed.FS

var (
	spokeStoreTypes = map[string]func(...interface{}) (domain.SpokeStateRepository, error){
		"badger":   badgerdb.NewSpokeStateRepository,
		"sqlite":   sqlitedb.NewSpokeStateRepository,
		"postgres": pgdb.NewSpokeStateRepository,
	}
	blockStoreTypes = map[string]func(...interface{}) (domain.BlockRepository, error){
		"badger":   badgerdb.NewBlockRepository,
		"sqlite":   sqlitedb.NewBlockRepository,
		"postgres": pgdb.NewBlockRepository,
	}
	incomingBlockStoreTypes = map[string]func(...interface{}) (domain.IncomingBlockRepository, error){
		"badger":   badgerdb.NewIncomingBlockRepository,
		"sqlite":   sqlitedb.NewIncomingBlockRepository,
		"postgres": pgdb.NewIncomingBlockRepository,
	}
	relayerStoreTypes = map[string]func(...interface{}) (domain.RelayerRepository, error){
		"badger":   badgerdb.NewRelayerRepository,
		"sqlite":   sqlitedb.NewRelayerRepository,
		"postgres": pgdb.NewRelayerRepository,
	}
	challengeStoreTypes = map[string]func(...interface{}) (domain.ChallengeRepository, error){
		"badger":   badgerdb.NewChallengeRepository,
		"sqlite":   sqlitedb.NewChallengeRepository,
		"postgres": pgdb.NewChallengeRepository,
	}
	rewardStoreTypes = map[string]func(...interface{}) (domain.RewardRepository, error){
		"badger":   badgerdb.NewRewardRepository,
		"sqlite":   sqlitedb.NewRewardRepository,
		"postgres": pgdb.NewRewardRepository,
	}
	contractPairStoreTypes = map[string]func(...interface{}) (domain.ContractPairRepository, error){
		"badger":   badgerdb.NewContractPairRepository,
		"sqlite":   sqlitedb.NewContractPairRepository,
		"postgres": pgdb.NewContractPairRepository,
	}
	consumedIntentStoreTypes = map[string]func(...interface{}) (domain.ConsumedIntentRepository, error){
		"badger":   badgerdb.NewConsumedIntentRepository,
		"sqlite":   sqlitedb.NewConsumedIntentRepository,
		"postgres": pgdb.NewConsumedIntentRepository,
	}
)

const (
	sqliteDbFile = "sqlite.db"
)

type ServiceConfig struct {
	// EventStoreType is one of badger, inmemory or postgres.
	EventStoreType string
	// DataStoreType is one of badger, sqlite or postgres.
	DataStoreType string

	EventStoreConfig []interface{}
	DataStoreConfig  []interface{}
}

type service struct {
	eventStore         domain.EventRepository
	spokeStore         domain.SpokeStateRepository
	blockStore         domain.BlockRepository
	incomingBlockStore domain.IncomingBlockRepository
	relayerStore       domain.RelayerRepository
	challengeStore     domain.ChallengeRepository
	rewardStore        domain.RewardRepository
	contractPairStore  domain.ContractPairRepository
	consumedStore      domain.ConsumedIntentRepository
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	if _, ok := spokeStoreTypes[config.DataStoreType]; !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}

	var eventStore domain.EventRepository
	var err error

	switch config.EventStoreType {
	case "badger":
		eventStore, err = badgerdb.NewEventRepository(config.EventStoreConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open event store: %s", err)
		}
	case "inmemory":
		eventStore = watermilldb.NewWatermillEventRepository(
			watermilldb.NewInMemoryPublisher(), nil,
		)
	case "postgres":
		db, err := openPostgres(config.EventStoreConfig)
		if err != nil {
			return nil, err
		}
		publisher, err := watermilldb.NewPostgresPublisher(db)
		if err != nil {
			return nil, fmt.Errorf("failed to open event store: %s", err)
		}
		eventStore = watermilldb.NewWatermillEventRepository(publisher, db)
	default:
		return nil, fmt.Errorf("unknown event store db type")
	}

	var storeConfig []interface{}
	switch config.DataStoreType {
	case "badger":
		storeConfig = config.DataStoreConfig

	case "postgres":
		db, err := openPostgres(config.DataStoreConfig)
		if err != nil {
			return nil, err
		}

		pgDriver, err := migratepg.WithInstance(db, &migratepg.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to init postgres migration driver: %s", err)
		}

		source, err := iofs.New(pgMigration, "postgres/migration")
		if err != nil {
			return nil, fmt.Errorf("failed to embed postgres migrations: %s", err)
		}

		m, err := migrate.NewWithInstance("iofs", source, "postgres", pgDriver)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres migration instance: %s", err)
		}

		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return nil, fmt.Errorf("failed to run postgres migrations: %s", err)
		}
		storeConfig = []interface{}{db}

	case "sqlite":
		if len(config.DataStoreConfig) != 1 {
			return nil, fmt.Errorf("invalid data store config")
		}

		baseDir, ok := config.DataStoreConfig[0].(string)
		if !ok {
			return nil, fmt.Errorf("invalid base directory")
		}

		dbFile := filepath.Join(baseDir, sqliteDbFile)
		db, err := sqlitedb.OpenDb(dbFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %s", err)
		}

		driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to init driver: %s", err)
		}

		source, err := iofs.New(migrations, "sqlite/migration")
		if err != nil {
			return nil, fmt.Errorf("failed to embed migrations: %s", err)
		}

		m, err := migrate.NewWithInstance("iofs", source, "bridgedb", driver)
		if err != nil {
			return nil, fmt.Errorf("failed to create migration instance: %s", err)
		}

		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return nil, fmt.Errorf("failed to run migrations: %s", err)
		}
		storeConfig = []interface{}{db}
	}

	svc := &service{eventStore: eventStore}
	if svc.spokeStore, err = spokeStoreTypes[config.DataStoreType](storeConfig...); err != nil {
		return nil, fmt.Errorf("failed to open spoke store: %s", err)
	}
	if svc.blockStore, err = blockStoreTypes[config.DataStoreType](storeConfig...); err != nil {
		return nil, fmt.Errorf("failed to open block store: %s", err)
	}
	if svc.incomingBlockStore, err = incomingBlockStoreTypes[config.DataStoreType](
		storeConfig...,
	); err != nil {
		return nil, fmt.Errorf("failed to open incoming block store: %s", err)
	}
	if svc.relayerStore, err = relayerStoreTypes[config.DataStoreType](storeConfig...); err != nil {
		return nil, fmt.Errorf("failed to open relayer store: %s", err)
	}
	if svc.challengeStore, err = challengeStoreTypes[config.DataStoreType](
		storeConfig...,
	); err != nil {
		return nil, fmt.Errorf("failed to open challenge store: %s", err)
	}
	if svc.rewardStore, err = rewardStoreTypes[config.DataStoreType](storeConfig...); err != nil {
		return nil, fmt.Errorf("failed to open reward store: %s", err)
	}
	if svc.contractPairStore, err = contractPairStoreTypes[config.DataStoreType](
		storeConfig...,
	); err != nil {
		return nil, fmt.Errorf("failed to open contract pair store: %s", err)
	}
	if svc.consumedStore, err = consumedIntentStoreTypes[config.DataStoreType](
		storeConfig...,
	); err != nil {
		return nil, fmt.Errorf("failed to open consumed intent store: %s", err)
	}

	return svc, nil
}

func (s *service) Events() domain.EventRepository {
	return s.eventStore
}

func (s *service) Spokes() domain.SpokeStateRepository {
	return s.spokeStore
}

func (s *service) Blocks() domain.BlockRepository {
	return s.blockStore
}

func (s *service) IncomingBlocks() domain.IncomingBlockRepository {
	return s.incomingBlockStore
}

func (s *service) Relayers() domain.RelayerRepository {
	return s.relayerStore
}

func (s *service) Challenges() domain.ChallengeRepository {
	return s.challengeStore
}

func (s *service) Rewards() domain.RewardRepository {
	return s.rewardStore
}

func (s *service) ContractPairs() domain.ContractPairRepository {
	return s.contractPairStore
}

func (s *service) ConsumedIntents() domain.ConsumedIntentRepository {
	return s.consumedStore
}

// Close closes every store. The sql repositories share the same connection, closing it
// more than once is harmless.
func (s *service) Close() {
	s.eventStore.Close()
	s.spokeStore.Close()
	s.blockStore.Close()
	s.incomingBlockStore.Close()
	s.relayerStore.Close()
	s.challengeStore.Close()
	s.rewardStore.Close()
	s.contractPairStore.Close()
	s.consumedStore.Close()
}

// openPostgres parses the [dsn string, autoCreate bool] config of a postgres store.
func openPostgres(config []interface{}) (*sql.DB, error) {
	if len(config) != 2 {
		return nil, fmt.Errorf("invalid data store config for postgres")
	}

	dsn, ok := config[0].(string)
	if !ok {
		return nil, fmt.Errorf("invalid DSN for postgres")
	}

	autoCreate, ok := config[1].(bool)
	if !ok {
		return nil, fmt.Errorf("invalid autocreate flag for postgres")
	}

	db, err := pgdb.OpenDb(dsn, autoCreate)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres db: %s", err)
	}
	return db, nil
}
