package livestore_test

import (
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/arkade-os/nftbridge/internal/core/ports"
	inmemory "github.com/arkade-os/nftbridge/internal/infrastructure/live-store/inmemory"
	redislivestore "github.com/arkade-os/nftbridge/internal/infrastructure/live-store/redis"
	"github.com/arkade-os/nftbridge/pkg/merkle"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestLiveStoreImplementations(t *testing.T) {
	stores := []struct {
		name  string
		store ports.LiveStore
	}{
		{"inmemory", inmemory.NewLiveStore()},
	}

	if url := os.Getenv("NFTBRIDGE_TEST_REDIS_URL"); url != "" {
		redisOpts, err := redis.ParseURL(url)
		require.NoError(t, err)
		rdb := redis.NewClient(redisOpts)
		t.Cleanup(func() {
			// nolint
			rdb.Close()
		})
		stores = append(stores, struct {
			name  string
			store ports.LiveStore
		}{"redis", redislivestore.NewLiveStore(rdb, 5)})
	}

	for _, tt := range stores {
		t.Run(tt.name, func(t *testing.T) {
			runLiveStoreTests(t, tt.store)
		})
	}
}

func runLiveStoreTests(t *testing.T, store ports.LiveStore) {
	t.Run("RelayQueueStore", func(t *testing.T) {
		ctx := t.Context()
		origin := randomSpokeID()

		count, err := store.RelayQueue().Len(ctx, origin)
		require.NoError(t, err)
		require.Zero(t, count)

		relays, err := store.RelayQueue().Peek(ctx, origin, 10)
		require.NoError(t, err)
		require.Empty(t, relays)

		err = store.RelayQueue().Push(ctx, ports.PendingRelay{Height: 1})
		require.Error(t, err)

		err = store.RelayQueue().Push(
			ctx, pendingRelay(origin, 2), pendingRelay(origin, 0), pendingRelay(origin, 1),
		)
		require.NoError(t, err)

		// Pushing a height twice keeps a single entry.
		err = store.RelayQueue().Push(ctx, pendingRelay(origin, 1))
		require.NoError(t, err)

		count, err = store.RelayQueue().Len(ctx, origin)
		require.NoError(t, err)
		require.Equal(t, int64(3), count)

		relays, err = store.RelayQueue().Peek(ctx, origin, 2)
		require.NoError(t, err)
		require.Len(t, relays, 2)
		require.Equal(t, uint64(0), relays[0].Height)
		require.Equal(t, uint64(1), relays[1].Height)
		require.Equal(t, pendingRelay(origin, 0), relays[0])

		count, err = store.RelayQueue().Len(ctx, randomSpokeID())
		require.NoError(t, err)
		require.Zero(t, count)

		err = store.RelayQueue().Delete(ctx, origin, 0, 1)
		require.NoError(t, err)

		relays, err = store.RelayQueue().Peek(ctx, origin, 10)
		require.NoError(t, err)
		require.Len(t, relays, 1)
		require.Equal(t, uint64(2), relays[0].Height)

		err = store.RelayQueue().Delete(ctx, origin, 2, 5)
		require.NoError(t, err)

		count, err = store.RelayQueue().Len(ctx, origin)
		require.NoError(t, err)
		require.Zero(t, count)
	})

	t.Run("WatchedBlocksStore", func(t *testing.T) {
		ctx := t.Context()
		spokeID := randomSpokeID()

		block, err := store.WatchedBlocks().Get(ctx, spokeID, 0)
		require.NoError(t, err)
		require.Nil(t, block)

		err = store.WatchedBlocks().Add(ctx, watchedBlock(spokeID, 1))
		require.NoError(t, err)
		err = store.WatchedBlocks().Add(ctx, watchedBlock(spokeID, 0))
		require.NoError(t, err)

		err = store.WatchedBlocks().Add(ctx, watchedBlock(spokeID, 1))
		require.Error(t, err)

		block, err = store.WatchedBlocks().Get(ctx, spokeID, 1)
		require.NoError(t, err)
		require.NotNil(t, block)
		require.Equal(t, watchedBlock(spokeID, 1), *block)

		err = store.WatchedBlocks().Update(
			ctx, spokeID, 1, func(b *ports.WatchedBlock) *ports.WatchedBlock {
				b.ChallengeID = "challenge"
				return b
			},
		)
		require.NoError(t, err)

		block, err = store.WatchedBlocks().Get(ctx, spokeID, 1)
		require.NoError(t, err)
		require.Equal(t, "challenge", block.ChallengeID)

		err = store.WatchedBlocks().Update(
			ctx, spokeID, 7, func(b *ports.WatchedBlock) *ports.WatchedBlock { return b },
		)
		require.Error(t, err)

		blocks, err := store.WatchedBlocks().List(ctx, spokeID)
		require.NoError(t, err)
		require.Len(t, blocks, 2)
		require.Equal(t, uint64(0), blocks[0].Height)
		require.Equal(t, uint64(1), blocks[1].Height)

		err = store.WatchedBlocks().Update(
			ctx, spokeID, 0, func(*ports.WatchedBlock) *ports.WatchedBlock { return nil },
		)
		require.NoError(t, err)
		err = store.WatchedBlocks().Remove(ctx, spokeID, 1)
		require.NoError(t, err)

		blocks, err = store.WatchedBlocks().List(ctx, spokeID)
		require.NoError(t, err)
		require.Empty(t, blocks)
	})

	t.Run("WatchedBlocksStore concurrent updates", func(t *testing.T) {
		ctx := t.Context()
		spokeID := randomSpokeID()

		err := store.WatchedBlocks().Add(ctx, watchedBlock(spokeID, 0))
		require.NoError(t, err)

		wg := sync.WaitGroup{}
		errs := make(chan error, 4)
		for i := range 4 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if err := store.WatchedBlocks().Update(
					ctx, spokeID, 0, func(b *ports.WatchedBlock) *ports.WatchedBlock {
						if b.ChallengeID == "" {
							b.ChallengeID = fmt.Sprintf("challenge-%d", i)
						}
						return b
					},
				); err != nil {
					errs <- err
				}
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		block, err := store.WatchedBlocks().Get(ctx, spokeID, 0)
		require.NoError(t, err)
		require.NotEmpty(t, block.ChallengeID)
	})
}

func randomSpokeID() string {
	return uuid.New().String()
}

func pendingRelay(originID string, height uint64) ports.PendingRelay {
	return ports.PendingRelay{
		OriginID: originID,
		Height:   height,
		Root:     merkle.Keccak256([]byte(fmt.Sprintf("%s:%d", originID, height))),
		SealedAt: 1_700_000_000 + int64(height),
	}
}

func watchedBlock(spokeID string, height uint64) ports.WatchedBlock {
	return ports.WatchedBlock{
		SpokeID:     spokeID,
		Height:      height,
		Root:        merkle.Keccak256([]byte(fmt.Sprintf("%s:%d", spokeID, height))),
		Relayer:     "relayer",
		SubmittedAt: 1_700_000_000 + int64(height),
	}
}
