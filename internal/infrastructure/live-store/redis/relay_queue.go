package redislivestore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/arkade-os/nftbridge/internal/core/ports"
	"github.com/redis/go-redis/v9"
)

const relayQueueStoreKeyPrefix = "relayQueueStore"

type relayQueueStore struct {
	rdb          *redis.Client
	numOfRetries int
	retryDelay   time.Duration
}

func NewRelayQueueStore(rdb *redis.Client, numOfRetries int) ports.RelayQueueStore {
	return &relayQueueStore{
		rdb:          rdb,
		numOfRetries: numOfRetries,
		retryDelay:   10 * time.Millisecond,
	}
}

// The heights of an origin are kept in a sorted set, the relays in a hash keyed by height.
func relaysKey(originID string) string {
	return fmt.Sprintf("%s:%s:relays", relayQueueStoreKeyPrefix, originID)
}

func heightsKey(originID string) string {
	return fmt.Sprintf("%s:%s:heights", relayQueueStoreKeyPrefix, originID)
}

func (s *relayQueueStore) Push(ctx context.Context, relays ...ports.PendingRelay) error {
	if len(relays) == 0 {
		return nil
	}

	byOrigin := make(map[string]map[string]any)
	heights := make(map[string][]redis.Z)
	for _, relay := range relays {
		if relay.OriginID == "" {
			return fmt.Errorf("missing origin of relay at height %d", relay.Height)
		}
		buf, err := json.Marshal(relay)
		if err != nil {
			return fmt.Errorf("failed to marshal relay: %v", err)
		}
		field := strconv.FormatUint(relay.Height, 10)
		if _, ok := byOrigin[relay.OriginID]; !ok {
			byOrigin[relay.OriginID] = make(map[string]any)
		}
		byOrigin[relay.OriginID][field] = buf
		heights[relay.OriginID] = append(heights[relay.OriginID], redis.Z{
			Score: float64(relay.Height), Member: field,
		})
	}

	keys := make([]string, 0, 2*len(byOrigin))
	for originID := range byOrigin {
		keys = append(keys, relaysKey(originID), heightsKey(originID))
	}

	var err error
	for range s.numOfRetries {
		if err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				for originID, fields := range byOrigin {
					pipe.HSet(ctx, relaysKey(originID), fields)
					pipe.ZAdd(ctx, heightsKey(originID), heights[originID]...)
				}
				return nil
			})
			return err
		}, keys...); err == nil {
			return nil
		}
		time.Sleep(s.retryDelay)
	}
	return fmt.Errorf("failed to push relays after max num of retries: %v", err)
}

func (s *relayQueueStore) Peek(
	ctx context.Context, originID string, num int,
) ([]ports.PendingRelay, error) {
	stop := int64(num - 1)
	if num <= 0 {
		stop = -1
	}
	fields, err := s.rdb.ZRange(ctx, heightsKey(originID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get queued heights: %v", err)
	}
	if len(fields) == 0 {
		return []ports.PendingRelay{}, nil
	}

	values, err := s.rdb.HMGet(ctx, relaysKey(originID), fields...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get queued relays: %v", err)
	}
	relays := make([]ports.PendingRelay, 0, len(values))
	for _, value := range values {
		str, ok := value.(string)
		if !ok {
			continue
		}
		var relay ports.PendingRelay
		if err := json.Unmarshal([]byte(str), &relay); err != nil {
			return nil, fmt.Errorf("failed to unmarshal relay: %v", err)
		}
		relays = append(relays, relay)
	}
	return relays, nil
}

func (s *relayQueueStore) Delete(ctx context.Context, originID string, heights ...uint64) error {
	if len(heights) == 0 {
		return nil
	}
	fields := make([]string, 0, len(heights))
	members := make([]any, 0, len(heights))
	for _, height := range heights {
		field := strconv.FormatUint(height, 10)
		fields = append(fields, field)
		members = append(members, field)
	}

	var err error
	for range s.numOfRetries {
		if err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HDel(ctx, relaysKey(originID), fields...)
				pipe.ZRem(ctx, heightsKey(originID), members...)
				return nil
			})
			return err
		}, relaysKey(originID), heightsKey(originID)); err == nil {
			return nil
		}
		time.Sleep(s.retryDelay)
	}
	return fmt.Errorf("failed to delete relays after max num of retries: %v", err)
}

func (s *relayQueueStore) Len(ctx context.Context, originID string) (int64, error) {
	return s.rdb.ZCard(ctx, heightsKey(originID)).Result()
}
