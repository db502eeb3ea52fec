package db_test

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/internal/core/ports"
	"github.com/arkade-os/nftbridge/internal/infrastructure/db"
	"github.com/arkade-os/nftbridge/pkg/merkle"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	sender   = "0x00000000000000000000000000000000000000a1"
	receiver = "0x00000000000000000000000000000000000000b2"
	relayer  = "0x00000000000000000000000000000000000000c3"
	local    = "0x0000000000000000000000000000000000000d01"
	remote   = "0x0000000000000000000000000000000000000e01"
)

func TestService(t *testing.T) {
	tests := []struct {
		name   string
		config db.ServiceConfig
	}{
		{
			name: "repo_manager_with_badger_stores",
			config: db.ServiceConfig{
				EventStoreType:   "badger",
				DataStoreType:    "badger",
				EventStoreConfig: []interface{}{"", nil},
				DataStoreConfig:  []interface{}{"", nil},
			},
		},
		{
			name: "repo_manager_with_sqlite_stores",
			config: db.ServiceConfig{
				EventStoreType:   "inmemory",
				DataStoreType:    "sqlite",
				EventStoreConfig: nil,
				DataStoreConfig:  []interface{}{t.TempDir()},
			},
		},
	}

	if dsn := os.Getenv("NFTBRIDGE_TEST_PG_DSN"); dsn != "" {
		tests = append(tests, struct {
			name   string
			config db.ServiceConfig
		}{
			name: "repo_manager_with_postgres_stores",
			config: db.ServiceConfig{
				EventStoreType:   "postgres",
				DataStoreType:    "postgres",
				EventStoreConfig: []interface{}{dsn, false},
				DataStoreConfig:  []interface{}{dsn, false},
			},
		})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := db.NewService(tt.config)
			require.NoError(t, err)
			require.NotNil(t, svc)

			testEventRepository(t, svc)
			testSpokeStateRepository(t, svc)
			testBlockRepository(t, svc)
			testIncomingBlockRepository(t, svc)
			testRelayerRepository(t, svc)
			testChallengeRepository(t, svc)
			testRewardRepository(t, svc)
			testContractPairRepository(t, svc)
			testConsumedIntentRepository(t, svc)

			svc.Close()
		})
	}
}

func TestServiceInvalidConfig(t *testing.T) {
	_, err := db.NewService(db.ServiceConfig{
		EventStoreType: "badger",
		DataStoreType:  "unknown",
	})
	require.Error(t, err)

	_, err = db.NewService(db.ServiceConfig{
		EventStoreType: "unknown",
		DataStoreType:  "badger",
	})
	require.Error(t, err)

	_, err = db.NewService(db.ServiceConfig{
		EventStoreType:  "inmemory",
		DataStoreType:   "sqlite",
		DataStoreConfig: []interface{}{42},
	})
	require.Error(t, err)
}

func testEventRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_event_repository", func(t *testing.T) {
		ctx := t.Context()
		spokeID := randomSpokeID()
		topic := domain.SpokeTopic(spokeID)

		events := []domain.Event{
			domain.BlockSealed{
				SpokeEvent: domain.SpokeEvent{
					Id: spokeID, Type: domain.EventTypeBlockSealed, Timestamp: 1701190270,
				},
				Height: 0,
				Root:   merkle.Keccak256([]byte("root")),
				Size:   2,
			},
			domain.BlockRelayed{
				SpokeEvent: domain.SpokeEvent{
					Id: spokeID, Type: domain.EventTypeBlockRelayed, Timestamp: 1701190280,
				},
				Height:      0,
				Root:        merkle.Keccak256([]byte("root")),
				Relayer:     relayer,
				SubmittedAt: 1701190280,
			},
		}

		received := make(chan []domain.Event, 2)
		svc.Events().RegisterEventsHandler(topic, func(events []domain.Event) {
			received <- events
		})
		defer svc.Events().ClearRegisteredHandlers(topic)

		err := svc.Events().Save(ctx, topic, events...)
		require.NoError(t, err)

		select {
		case got := <-received:
			require.Len(t, got, 2)
			require.Equal(t, domain.EventTypeBlockSealed, got[0].GetType())
			require.Equal(t, spokeID, got[1].GetSpokeID())
		case <-time.After(5 * time.Second):
			t.Fatal("events handler not called")
		}

		history, err := svc.Events().GetEvents(ctx, topic, 0, 0)
		if err != nil {
			// The in-memory publisher keeps no history.
			return
		}
		require.Len(t, history, 2)
		relayed, ok := history[1].(domain.BlockRelayed)
		require.True(t, ok)
		require.Equal(t, relayer, relayed.Relayer)

		history, err = svc.Events().GetEvents(ctx, topic, 1701190275, 0)
		require.NoError(t, err)
		require.Len(t, history, 1)

		_, err = svc.Events().GetEvents(ctx, topic, 10, 5)
		require.Error(t, err)
	})
}

func testSpokeStateRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_spoke_state_repository", func(t *testing.T) {
		ctx := t.Context()
		spokeID := randomSpokeID()

		state, err := svc.Spokes().Get(ctx, spokeID)
		require.NoError(t, err)
		require.Nil(t, state)

		newState := domain.NewSpokeState(spokeID, domain.SideDestination)
		newState.OpenHeight = 3
		newState.Relayed(1)
		newState.ChallengeOpened()
		newState.MarkMalicious(1)
		newState.Reserve = 7

		err = svc.Spokes().Upsert(ctx, *newState)
		require.NoError(t, err)

		state, err = svc.Spokes().Get(ctx, spokeID)
		require.NoError(t, err)
		require.NotNil(t, state)
		require.Equal(t, *newState, *state)

		newState.ChallengeClosed()
		err = svc.Spokes().Upsert(ctx, *newState)
		require.NoError(t, err)

		state, err = svc.Spokes().Get(ctx, spokeID)
		require.NoError(t, err)
		require.Equal(t, domain.SpokeMalicious, state.Status)
		require.Zero(t, state.NumberOfChallenges)
	})
}

func testBlockRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_block_repository", func(t *testing.T) {
		ctx := t.Context()
		spokeID := randomSpokeID()

		block, err := svc.Blocks().Get(ctx, spokeID, 0)
		require.NoError(t, err)
		require.Nil(t, block)

		for height := uint64(0); height < 3; height++ {
			block := domain.NewBlock(spokeID, height)
			block.OpenedAt = 1701190270
			for i := 0; i < 2; i++ {
				_, err := block.Append(randomIntent(uint64(height*10)+uint64(i)), 4)
				require.NoError(t, err)
			}
			if height < 2 {
				_, err := block.Seal(1701190300)
				require.NoError(t, err)
			}
			err := svc.Blocks().Upsert(ctx, *block)
			require.NoError(t, err)
		}

		block, err = svc.Blocks().Get(ctx, spokeID, 1)
		require.NoError(t, err)
		require.NotNil(t, block)
		require.True(t, block.Sealed)
		require.Len(t, block.Intents, 2)
		require.Equal(t, uint64(10), block.Intents[0].TokenID)
		require.Equal(t, uint64(11), block.Intents[1].TokenID)

		tree, err := block.Tree()
		require.NoError(t, err)
		require.Equal(t, tree.Root(), block.Root)

		open, err := svc.Blocks().Get(ctx, spokeID, 2)
		require.NoError(t, err)
		require.False(t, open.Sealed)
		require.True(t, open.Root.IsZero())

		_, err = open.Append(randomIntent(99), 4)
		require.NoError(t, err)
		err = svc.Blocks().Upsert(ctx, *open)
		require.NoError(t, err)

		open, err = svc.Blocks().Get(ctx, spokeID, 2)
		require.NoError(t, err)
		require.Len(t, open.Intents, 3)

		blocks, err := svc.Blocks().GetRange(ctx, spokeID, 1, 10)
		require.NoError(t, err)
		require.Len(t, blocks, 2)
		require.Equal(t, uint64(1), blocks[0].Height)
		require.Equal(t, uint64(2), blocks[1].Height)

		blocks, err = svc.Blocks().GetRange(ctx, randomSpokeID(), 0, 10)
		require.NoError(t, err)
		require.Empty(t, blocks)
	})
}

func testIncomingBlockRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_incoming_block_repository", func(t *testing.T) {
		ctx := t.Context()
		spokeID := randomSpokeID()

		record, err := svc.IncomingBlocks().Get(ctx, spokeID, 0)
		require.NoError(t, err)
		require.Nil(t, record)

		for height := uint64(0); height < 3; height++ {
			record := domain.NewIncomingBlock(
				spokeID, height, merkle.Keccak256([]byte{byte(height)}), relayer, 1701190270,
			)
			err := svc.IncomingBlocks().Upsert(ctx, *record)
			require.NoError(t, err)
		}

		record, err = svc.IncomingBlocks().Get(ctx, spokeID, 1)
		require.NoError(t, err)
		require.NotNil(t, record)
		require.True(t, record.IsRelayed())
		require.Empty(t, record.Claims)

		record.AddClaim(domain.Claim{
			Index: 1, TokenID: 7, Contract: remote, Receiver: receiver, ClaimedAt: 1701190290,
		})
		record.Status = domain.IncomingBlockChallenged
		record.ChallengeID = uuid.NewString()
		err = svc.IncomingBlocks().Upsert(ctx, *record)
		require.NoError(t, err)

		got, err := svc.IncomingBlocks().Get(ctx, spokeID, 1)
		require.NoError(t, err)
		require.Equal(t, *record, *got)
		require.True(t, got.IsClaimed(1))
		require.False(t, got.IsClaimed(0))

		relayed, err := svc.IncomingBlocks().GetByStatus(ctx, spokeID, domain.IncomingBlockRelayed)
		require.NoError(t, err)
		require.Len(t, relayed, 2)

		challenged, err := svc.IncomingBlocks().GetByStatus(
			ctx, spokeID, domain.IncomingBlockChallenged,
		)
		require.NoError(t, err)
		require.Len(t, challenged, 1)

		got.Status = domain.IncomingBlockMalicious
		err = svc.IncomingBlocks().Upsert(ctx, *got)
		require.NoError(t, err)

		err = svc.IncomingBlocks().Archive(ctx, spokeID, []uint64{1}, 1701190400)
		require.NoError(t, err)

		record, err = svc.IncomingBlocks().Get(ctx, spokeID, 1)
		require.NoError(t, err)
		require.Nil(t, record)

		archived, err := svc.IncomingBlocks().GetArchived(ctx, spokeID, 1)
		require.NoError(t, err)
		require.Len(t, archived, 1)
		require.Equal(t, int64(1701190400), archived[0].ArchivedAt)
		require.True(t, archived[0].IsMalicious())
		require.Equal(t, got.Root, archived[0].Root)
		require.Equal(t, got.Claims, archived[0].Claims)

		// The same height can be relayed and archived again after a restore.
		record = domain.NewIncomingBlock(
			spokeID, 1, merkle.Keccak256([]byte("honest")), relayer, 1701190500,
		)
		err = svc.IncomingBlocks().Upsert(ctx, *record)
		require.NoError(t, err)
		err = svc.IncomingBlocks().Archive(ctx, spokeID, []uint64{1}, 1701190600)
		require.NoError(t, err)

		archived, err = svc.IncomingBlocks().GetArchived(ctx, spokeID, 1)
		require.NoError(t, err)
		require.Len(t, archived, 2)
		require.Less(t, archived[0].ArchivedAt, archived[1].ArchivedAt)

		err = svc.IncomingBlocks().Archive(ctx, spokeID, []uint64{42}, 1701190700)
		require.Error(t, err)
	})
}

func testRelayerRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_relayer_repository", func(t *testing.T) {
		ctx := t.Context()
		spokeID := randomSpokeID()

		got, err := svc.Relayers().Get(ctx, spokeID, relayer)
		require.NoError(t, err)
		require.Nil(t, got)

		addresses := []string{relayer, sender, receiver}
		for _, address := range addresses {
			r := domain.NewRelayer(spokeID, address)
			require.NoError(t, r.Bonded(100))
			err := svc.Relayers().Upsert(ctx, *r)
			require.NoError(t, err)
		}

		got, err = svc.Relayers().Get(ctx, spokeID, relayer)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, uint64(100), got.Bond)
		require.True(t, got.CanRelay())

		got.Relayed()
		got.Challenged()
		err = svc.Relayers().Upsert(ctx, *got)
		require.NoError(t, err)

		updated, err := svc.Relayers().Get(ctx, spokeID, relayer)
		require.NoError(t, err)
		require.Equal(t, *got, *updated)

		relayers, err := svc.Relayers().List(ctx, spokeID)
		require.NoError(t, err)
		require.Len(t, relayers, len(addresses))

		relayers, err = svc.Relayers().List(ctx, randomSpokeID())
		require.NoError(t, err)
		require.Empty(t, relayers)
	})
}

func testChallengeRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_challenge_repository", func(t *testing.T) {
		ctx := t.Context()
		spokeID := randomSpokeID()
		now := time.Unix(1701190270, 0)

		got, err := svc.Challenges().Get(ctx, uuid.NewString())
		require.NoError(t, err)
		require.Nil(t, got)

		first := domain.NewChallenge(spokeID, 4, sender, relayer, 10, now)
		err = svc.Challenges().Upsert(ctx, *first)
		require.NoError(t, err)

		pending, err := svc.Challenges().GetPending(ctx, spokeID, 4)
		require.NoError(t, err)
		require.NotNil(t, pending)
		require.Equal(t, *first, *pending)

		first.Resolve(domain.ChallengeFalse, 0, now.Add(time.Hour).Unix())
		err = svc.Challenges().Upsert(ctx, *first)
		require.NoError(t, err)

		pending, err = svc.Challenges().GetPending(ctx, spokeID, 4)
		require.NoError(t, err)
		require.Nil(t, pending)

		second := domain.NewChallenge(spokeID, 4, receiver, relayer, 20, now.Add(2*time.Hour))
		err = svc.Challenges().Upsert(ctx, *second)
		require.NoError(t, err)

		challenges, err := svc.Challenges().GetByHeight(ctx, spokeID, 4)
		require.NoError(t, err)
		require.Len(t, challenges, 2)

		got, err = svc.Challenges().Get(ctx, first.ID)
		require.NoError(t, err)
		require.Equal(t, domain.ChallengeFalse, got.Outcome)
		require.Equal(t, *first, *got)
	})
}

func testRewardRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_reward_repository", func(t *testing.T) {
		ctx := t.Context()
		spokeID := randomSpokeID()

		balance, err := svc.Rewards().Get(ctx, spokeID, sender)
		require.NoError(t, err)
		require.NotNil(t, balance)
		require.True(t, balance.IsEmpty())

		balance.Challenge = 15
		balance.Compensation = 4
		err = svc.Rewards().Upsert(ctx, *balance)
		require.NoError(t, err)

		got, err := svc.Rewards().Get(ctx, spokeID, sender)
		require.NoError(t, err)
		require.Equal(t, *balance, *got)

		got.Challenge = 0
		err = svc.Rewards().Upsert(ctx, *got)
		require.NoError(t, err)

		got, err = svc.Rewards().Get(ctx, spokeID, sender)
		require.NoError(t, err)
		require.Zero(t, got.Challenge)
		require.Equal(t, uint64(4), got.Compensation)
	})
}

func testContractPairRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_contract_pair_repository", func(t *testing.T) {
		ctx := t.Context()
		localContract := local + uuid.NewString()[:4]
		remoteContract := remote + uuid.NewString()[:4]

		pair, err := svc.ContractPairs().GetByLocal(ctx, localContract)
		require.NoError(t, err)
		require.Nil(t, pair)

		newPair := domain.ContractPair{
			Local: localContract, Remote: remoteContract, CreatedAt: 1701190270,
		}
		err = svc.ContractPairs().Add(ctx, newPair)
		require.NoError(t, err)

		pair, err = svc.ContractPairs().GetByLocal(ctx, localContract)
		require.NoError(t, err)
		require.Equal(t, newPair, *pair)

		pair, err = svc.ContractPairs().GetByRemote(ctx, remoteContract)
		require.NoError(t, err)
		require.Equal(t, newPair, *pair)

		err = svc.ContractPairs().Add(ctx, domain.ContractPair{
			Local: localContract, Remote: remoteContract + "ff", CreatedAt: 1701190280,
		})
		require.Error(t, err)

		err = svc.ContractPairs().Add(ctx, domain.ContractPair{
			Local: localContract + "ff", Remote: remoteContract, CreatedAt: 1701190280,
		})
		require.Error(t, err)

		pairs, err := svc.ContractPairs().List(ctx)
		require.NoError(t, err)
		require.Contains(t, pairs, newPair)

		var wg sync.WaitGroup
		errs := make(chan error, 5)
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- svc.ContractPairs().Add(ctx, domain.ContractPair{
					Local: localContract + "aa", Remote: remoteContract + "aa", CreatedAt: 1,
				})
			}()
		}
		wg.Wait()
		close(errs)

		succeeded := 0
		for err := range errs {
			if err == nil {
				succeeded++
			}
		}
		require.Equal(t, 1, succeeded)
	})
}

func testConsumedIntentRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_consumed_intent_repository", func(t *testing.T) {
		ctx := t.Context()
		spokeID := randomSpokeID()
		first := domain.NewConsumedIntent(spokeID, 3, randomIntent(7), 1, 1701190270)
		second := domain.NewConsumedIntent(spokeID, 4, randomIntent(8), 0, 1701190280)

		got, err := svc.ConsumedIntents().Get(ctx, spokeID, first.Hash)
		require.NoError(t, err)
		require.Nil(t, got)

		require.NoError(t, svc.ConsumedIntents().Add(ctx, first))
		require.NoError(t, svc.ConsumedIntents().Add(ctx, second))
		require.Error(t, svc.ConsumedIntents().Add(ctx, first))

		byToken, err := svc.ConsumedIntents().GetByToken(ctx, spokeID, remote, 7)
		require.NoError(t, err)
		require.Equal(t, []domain.ConsumedIntent{first}, byToken)

		got, err = svc.ConsumedIntents().Get(ctx, spokeID, first.Hash)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, first, *got)

		got, err = svc.ConsumedIntents().Get(ctx, randomSpokeID(), first.Hash)
		require.NoError(t, err)
		require.Nil(t, got)

		err = svc.ConsumedIntents().DeleteByToken(ctx, spokeID, remote, 7)
		require.NoError(t, err)
		got, err = svc.ConsumedIntents().Get(ctx, spokeID, first.Hash)
		require.NoError(t, err)
		require.Nil(t, got)

		got, err = svc.ConsumedIntents().Get(ctx, spokeID, second.Hash)
		require.NoError(t, err)
		require.NotNil(t, got)

		require.NoError(t, svc.ConsumedIntents().Delete(ctx, spokeID, second.Hash))
		require.NoError(t, svc.ConsumedIntents().Delete(ctx, spokeID, second.Hash))
		got, err = svc.ConsumedIntents().Get(ctx, spokeID, second.Hash)
		require.NoError(t, err)
		require.Nil(t, got)
	})
}

func randomSpokeID() string {
	return "spoke" + uuid.NewString()[:8]
}

func randomIntent(tokenID uint64) domain.TransferIntent {
	return domain.TransferIntent{
		TokenID:        tokenID,
		Sender:         sender,
		Receiver:       receiver,
		LocalContract:  local,
		RemoteContract: remote,
	}
}
