package inmemorylivestore

import "github.com/arkade-os/nftbridge/internal/core/ports"

type liveStore struct {
	relayQueue    ports.RelayQueueStore
	watchedBlocks ports.WatchedBlocksStore
}

func NewLiveStore() ports.LiveStore {
	return &liveStore{
		relayQueue:    NewRelayQueueStore(),
		watchedBlocks: NewWatchedBlocksStore(),
	}
}

func (s *liveStore) RelayQueue() ports.RelayQueueStore {
	return s.relayQueue
}

func (s *liveStore) WatchedBlocks() ports.WatchedBlocksStore {
	return s.watchedBlocks
}
