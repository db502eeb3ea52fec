package inmemorylivestore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/arkade-os/nftbridge/internal/core/ports"
)

type watchedBlocksStore struct {
	lock   sync.RWMutex
	blocks map[string]map[uint64]ports.WatchedBlock
}

func NewWatchedBlocksStore() ports.WatchedBlocksStore {
	return &watchedBlocksStore{
		blocks: make(map[string]map[uint64]ports.WatchedBlock),
	}
}

func (m *watchedBlocksStore) Add(_ context.Context, block ports.WatchedBlock) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if block.SpokeID == "" {
		return fmt.Errorf("missing spoke id")
	}
	blocks, ok := m.blocks[block.SpokeID]
	if !ok {
		blocks = make(map[uint64]ports.WatchedBlock)
		m.blocks[block.SpokeID] = blocks
	}
	if _, ok := blocks[block.Height]; ok {
		return fmt.Errorf("block %d of spoke %s is already watched", block.Height, block.SpokeID)
	}
	blocks[block.Height] = block
	return nil
}

func (m *watchedBlocksStore) Get(
	_ context.Context, spokeID string, height uint64,
) (*ports.WatchedBlock, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	block, ok := m.blocks[spokeID][height]
	if !ok {
		return nil, nil
	}
	return &block, nil
}

func (m *watchedBlocksStore) Update(
	_ context.Context, spokeID string, height uint64,
	fn func(b *ports.WatchedBlock) *ports.WatchedBlock,
) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	block, ok := m.blocks[spokeID][height]
	if !ok {
		return fmt.Errorf("block %d of spoke %s is not watched", height, spokeID)
	}
	updated := fn(&block)
	if updated == nil {
		delete(m.blocks[spokeID], height)
		return nil
	}
	updated.SpokeID, updated.Height = spokeID, height
	m.blocks[spokeID][height] = *updated
	return nil
}

func (m *watchedBlocksStore) Remove(_ context.Context, spokeID string, height uint64) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	delete(m.blocks[spokeID], height)
	return nil
}

func (m *watchedBlocksStore) List(
	_ context.Context, spokeID string,
) ([]ports.WatchedBlock, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	blocks := make([]ports.WatchedBlock, 0, len(m.blocks[spokeID]))
	for _, block := range m.blocks[spokeID] {
		blocks = append(blocks, block)
	}
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Height < blocks[j].Height
	})
	return blocks, nil
}
