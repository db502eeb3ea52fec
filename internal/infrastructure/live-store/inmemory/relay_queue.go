package inmemorylivestore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/arkade-os/nftbridge/internal/core/ports"
)

type relayQueueStore struct {
	lock   sync.RWMutex
	relays map[string]map[uint64]ports.PendingRelay
}

func NewRelayQueueStore() ports.RelayQueueStore {
	return &relayQueueStore{
		relays: make(map[string]map[uint64]ports.PendingRelay),
	}
}

func (m *relayQueueStore) Push(_ context.Context, relays ...ports.PendingRelay) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	for _, relay := range relays {
		if relay.OriginID == "" {
			return fmt.Errorf("missing origin of relay at height %d", relay.Height)
		}
	}
	for _, relay := range relays {
		queue, ok := m.relays[relay.OriginID]
		if !ok {
			queue = make(map[uint64]ports.PendingRelay)
			m.relays[relay.OriginID] = queue
		}
		queue[relay.Height] = relay
	}
	return nil
}

func (m *relayQueueStore) Peek(
	_ context.Context, originID string, num int,
) ([]ports.PendingRelay, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	queue := m.relays[originID]
	relays := make([]ports.PendingRelay, 0, len(queue))
	for _, relay := range queue {
		relays = append(relays, relay)
	}
	sort.SliceStable(relays, func(i, j int) bool {
		return relays[i].Height < relays[j].Height
	})
	if num > 0 && len(relays) > num {
		relays = relays[:num]
	}
	return relays, nil
}

func (m *relayQueueStore) Delete(_ context.Context, originID string, heights ...uint64) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	queue, ok := m.relays[originID]
	if !ok {
		return nil
	}
	for _, height := range heights {
		delete(queue, height)
	}
	if len(queue) == 0 {
		delete(m.relays, originID)
	}
	return nil
}

func (m *relayQueueStore) Len(_ context.Context, originID string) (int64, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return int64(len(m.relays[originID])), nil
}
