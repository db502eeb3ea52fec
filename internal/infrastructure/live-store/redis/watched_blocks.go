package redislivestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/arkade-os/nftbridge/internal/core/ports"
	"github.com/redis/go-redis/v9"
)

const watchedBlocksStoreKeyPrefix = "watchedBlocksStore"

type watchedBlocksStore struct {
	rdb          *redis.Client
	numOfRetries int
	retryDelay   time.Duration
}

func NewWatchedBlocksStore(rdb *redis.Client, numOfRetries int) ports.WatchedBlocksStore {
	return &watchedBlocksStore{
		rdb:          rdb,
		numOfRetries: numOfRetries,
		retryDelay:   10 * time.Millisecond,
	}
}

func watchedKey(spokeID string) string {
	return fmt.Sprintf("%s:%s", watchedBlocksStoreKeyPrefix, spokeID)
}

func (s *watchedBlocksStore) Add(ctx context.Context, block ports.WatchedBlock) error {
	if block.SpokeID == "" {
		return fmt.Errorf("missing spoke id")
	}
	buf, err := json.Marshal(block)
	if err != nil {
		return fmt.Errorf("failed to marshal watched block: %v", err)
	}
	field := strconv.FormatUint(block.Height, 10)

	ok, err := s.rdb.HSetNX(ctx, watchedKey(block.SpokeID), field, buf).Result()
	if err != nil {
		return fmt.Errorf("failed to add watched block: %v", err)
	}
	if !ok {
		return fmt.Errorf("block %d of spoke %s is already watched", block.Height, block.SpokeID)
	}
	return nil
}

func (s *watchedBlocksStore) Get(
	ctx context.Context, spokeID string, height uint64,
) (*ports.WatchedBlock, error) {
	return getWatched(ctx, s.rdb, spokeID, height)
}

func (s *watchedBlocksStore) Update(
	ctx context.Context, spokeID string, height uint64,
	fn func(b *ports.WatchedBlock) *ports.WatchedBlock,
) error {
	key := watchedKey(spokeID)
	field := strconv.FormatUint(height, 10)

	var err error
	for range s.numOfRetries {
		if err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			block, err := getWatched(ctx, tx, spokeID, height)
			if err != nil {
				return err
			}
			if block == nil {
				return errNotWatched
			}
			updated := fn(block)

			var buf []byte
			if updated != nil {
				updated.SpokeID, updated.Height = spokeID, height
				if buf, err = json.Marshal(updated); err != nil {
					return err
				}
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				if updated == nil {
					pipe.HDel(ctx, key, field)
					return nil
				}
				pipe.HSet(ctx, key, field, buf)
				return nil
			})
			return err
		}, key); err == nil {
			return nil
		}
		if errors.Is(err, errNotWatched) {
			return fmt.Errorf("block %d of spoke %s is not watched", height, spokeID)
		}
		time.Sleep(s.retryDelay)
	}
	return fmt.Errorf("failed to update watched block after max num of retries: %v", err)
}

func (s *watchedBlocksStore) Remove(ctx context.Context, spokeID string, height uint64) error {
	return s.rdb.HDel(ctx, watchedKey(spokeID), strconv.FormatUint(height, 10)).Err()
}

func (s *watchedBlocksStore) List(
	ctx context.Context, spokeID string,
) ([]ports.WatchedBlock, error) {
	values, err := s.rdb.HGetAll(ctx, watchedKey(spokeID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list watched blocks: %v", err)
	}
	blocks := make([]ports.WatchedBlock, 0, len(values))
	for _, value := range values {
		var block ports.WatchedBlock
		if err := json.Unmarshal([]byte(value), &block); err != nil {
			return nil, fmt.Errorf("failed to unmarshal watched block: %v", err)
		}
		blocks = append(blocks, block)
	}
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Height < blocks[j].Height
	})
	return blocks, nil
}

var errNotWatched = errors.New("block not watched")

type hashGetter interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
}

func getWatched(
	ctx context.Context, rdb hashGetter, spokeID string, height uint64,
) (*ports.WatchedBlock, error) {
	value, err := rdb.HGet(ctx, watchedKey(spokeID), strconv.FormatUint(height, 10)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get watched block: %v", err)
	}
	var block ports.WatchedBlock
	if err := json.Unmarshal([]byte(value), &block); err != nil {
		return nil, fmt.Errorf("failed to unmarshal watched block: %v", err)
	}
	return &block, nil
}
