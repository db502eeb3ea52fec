package redislivestore

import (
	"github.com/arkade-os/nftbridge/internal/core/ports"
	"github.com/redis/go-redis/v9"
)

type liveStore struct {
	relayQueue    ports.RelayQueueStore
	watchedBlocks ports.WatchedBlocksStore
}

func NewLiveStore(rdb *redis.Client, numOfRetries int) ports.LiveStore {
	return &liveStore{
		relayQueue:    NewRelayQueueStore(rdb, numOfRetries),
		watchedBlocks: NewWatchedBlocksStore(rdb, numOfRetries),
	}
}

func (s *liveStore) RelayQueue() ports.RelayQueueStore {
	return s.relayQueue
}

func (s *liveStore) WatchedBlocks() ports.WatchedBlocksStore {
	return s.watchedBlocks
}
