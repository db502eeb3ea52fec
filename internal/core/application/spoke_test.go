package application

import (
	"testing"
	"time"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/pkg/errors"
	"github.com/arkade-os/nftbridge/pkg/merkle"
	"github.com/stretchr/testify/require"
)

type errorCode interface {
	Is(err error) bool
	String() string
}

func requireCode(t *testing.T, code errorCode, err error) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, code.Is(err), "expected %s, got %v", code, err)
}

func TestNewSpokeService(t *testing.T) {
	b := newTestBridge(t)

	tests := []struct {
		name   string
		mutate func(cfg *SpokeConfig)
	}{
		{"missing_id", func(cfg *SpokeConfig) { cfg.ID = "" }},
		{"missing_operator", func(cfg *SpokeConfig) { cfg.Operator = "" }},
		{"missing_custody", func(cfg *SpokeConfig) { cfg.Custody = "" }},
		{"zero_capacity", func(cfg *SpokeConfig) { cfg.BlockCapacity = 0 }},
		{"zero_bond", func(cfg *SpokeConfig) { cfg.MinBond = 0 }},
		{"zero_stake", func(cfg *SpokeConfig) { cfg.MinChallengeStake = 0 }},
		{"short_window", func(cfg *SpokeConfig) { cfg.ChallengeWindow = time.Millisecond }},
		{"share_too_high", func(cfg *SpokeConfig) { cfg.ChallengerShareBps = 10_001 }},
		{"side_mismatch", func(cfg *SpokeConfig) { cfg.Side = domain.SideDestination }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testSpokeConfig(domain.SideSource)
			tt.mutate(&cfg)
			spoke, err := NewSpokeService(
				cfg, b.repo, b.ledgers[domain.SideSource], b.banks[domain.SideSource],
				b.directory, b.clock, nil,
			)
			require.Error(t, err)
			require.Nil(t, spoke)
		})
	}

	t.Run("reload_state", func(t *testing.T) {
		b.bridgeOut(t)

		spoke, err := NewSpokeService(
			testSpokeConfig(domain.SideSource), b.repo, b.ledgers[domain.SideSource],
			b.banks[domain.SideSource], b.directory, b.clock, nil,
		)
		require.NoError(t, err)
		info, err := spoke.Info(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(1), info.OpenHeight)
		require.Empty(t, info.Counterpart)
	})
}

func TestBatchBuilder(t *testing.T) {
	t.Run("seal_when_full", func(t *testing.T) {
		b := newTestBridge(t)
		for id := uint64(2); id <= 5; id++ {
			require.NoError(t, b.ledgers[domain.SideSource].Issue(ctx, original, alice, id))
		}

		var last *IntentReceipt
		for id := uint64(1); id <= 4; id++ {
			receipt, err := b.source.AddIntent(ctx, alice, id, original, bob)
			require.NoError(t, err)
			require.Equal(t, uint64(0), receipt.Height)
			require.Equal(t, uint32(id-1), receipt.Index)
			require.Equal(t, wrapped, receipt.Intent.RemoteContract)
			require.Equal(t, sourceCustody, b.ownerOf(domain.SideSource, original, id))
			require.Equal(t, id == 4, receipt.Sealed)
			last = receipt
		}
		require.False(t, last.Root.IsZero())

		block, err := b.source.GetBlock(ctx, 0)
		require.NoError(t, err)
		require.True(t, block.Sealed)
		require.Equal(t, last.Root, block.Root)

		receipt, err := b.source.AddIntent(ctx, alice, 5, original, carol)
		require.NoError(t, err)
		require.Equal(t, uint64(1), receipt.Height)
		require.Equal(t, uint32(0), receipt.Index)

		info, err := b.source.Info(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(1), info.OpenHeight)

		blocks, err := b.source.ListBlocks(ctx, 0, 10)
		require.NoError(t, err)
		require.Len(t, blocks, 2)
		require.True(t, blocks[0].Sealed)
		require.False(t, blocks[1].Sealed)

		_, err = b.source.ListBlocks(ctx, 1, 1)
		requireCode(t, errors.INVALID_ARGUMENT, err)
	})

	t.Run("seal_and_prove", func(t *testing.T) {
		b := newTestBridge(t)
		require.NoError(t, b.ledgers[domain.SideSource].Issue(ctx, original, alice, 2))

		_, err := b.source.AddIntent(ctx, alice, 1, original, bob)
		require.NoError(t, err)
		receipt, err := b.source.AddIntent(ctx, alice, 2, original, carol)
		require.NoError(t, err)
		require.False(t, receipt.Sealed)

		ok, err := b.source.VerifyProof(ctx, 0, receipt.Intent, receipt.Index, nil)
		require.NoError(t, err)
		require.False(t, ok)
		_, err = b.source.GetProof(ctx, 0, 0)
		requireCode(t, errors.INVALID_ARGUMENT, err)

		_, err = b.source.SealBlock(ctx, 1)
		requireCode(t, errors.NOT_FOUND, err)

		root, err := b.source.SealBlock(ctx, 0)
		require.NoError(t, err)
		again, err := b.source.SealBlock(ctx, 0)
		require.NoError(t, err)
		require.Equal(t, root, again)

		_, err = b.source.SealBlock(ctx, 1)
		requireCode(t, errors.PRECONDITION_FAILED, err)

		proof, err := b.source.GetProof(ctx, 0, receipt.Index)
		require.NoError(t, err)
		ok, err = b.source.VerifyProof(ctx, 0, receipt.Intent, receipt.Index, proof)
		require.NoError(t, err)
		require.True(t, ok)
		require.True(t, merkle.Verify(root, receipt.Intent.Hash(), receipt.Index, proof))

		ok, err = b.source.VerifyProof(ctx, 0, receipt.Intent, 0, proof)
		require.NoError(t, err)
		require.False(t, ok)

		_, err = b.source.GetProof(ctx, 0, 2)
		requireCode(t, errors.INVALID_ARGUMENT, err)
		_, err = b.source.GetBlock(ctx, 5)
		requireCode(t, errors.NOT_FOUND, err)

		events, err := b.repo.Events().GetEvents(ctx, domain.SpokeTopic(b.source.ID()), 0, 0)
		require.NoError(t, err)
		types := make([]domain.EventType, 0, len(events))
		for _, event := range events {
			types = append(types, event.GetType())
		}
		require.Equal(t, []domain.EventType{
			domain.EventTypeIntentAdded, domain.EventTypeIntentAdded, domain.EventTypeBlockSealed,
		}, types)
	})

	t.Run("invalid_intents", func(t *testing.T) {
		b := newTestBridge(t)
		require.NoError(t, b.ledgers[domain.SideSource].Issue(ctx, "unpaired", alice, 1))

		_, err := b.source.AddIntent(ctx, alice, 1, original, "")
		requireCode(t, errors.INVALID_ARGUMENT, err)

		_, err = b.source.AddIntent(ctx, alice, 1, "unpaired", bob)
		requireCode(t, errors.PRECONDITION_FAILED, err)

		_, err = b.source.AddIntent(ctx, bob, 1, original, bob)
		requireCode(t, errors.PRECONDITION_FAILED, err)
		require.Equal(t, alice, b.ownerOf(domain.SideSource, original, 1))

		_, err = b.source.AddIntent(ctx, alice, 3, original, bob)
		requireCode(t, errors.PRECONDITION_FAILED, err)

		_, err = b.source.GetBlock(ctx, 0)
		requireCode(t, errors.NOT_FOUND, err)
	})
}

func TestRelayerRegistry(t *testing.T) {
	b := newTestBridge(t)
	_, root := b.bridgeOut(t)
	spoke := b.destination
	b.fund(t, domain.SideDestination, honest, 50)

	err := spoke.Deposit(ctx, honest, bond-1)
	requireCode(t, errors.INSUFFICIENT_FUNDS, err)

	err = spoke.Deposit(ctx, carol, bond)
	requireCode(t, errors.INSUFFICIENT_FUNDS, err)
	relayer, err := spoke.GetRelayer(ctx, carol)
	require.NoError(t, err)
	require.False(t, relayer.IsRegistered())

	require.NoError(t, spoke.Deposit(ctx, honest, bond))
	require.Equal(t, uint64(bond), b.balance(t, domain.SideDestination, destCustody))
	err = spoke.Deposit(ctx, honest, bond)
	requireCode(t, errors.PRECONDITION_FAILED, err)

	err = spoke.RequestUndeposit(ctx, carol)
	requireCode(t, errors.RELAYER_NOT_ALLOWED, err)
	_, err = spoke.ClaimDeposit(ctx, honest)
	requireCode(t, errors.PRECONDITION_FAILED, err)

	require.NoError(t, spoke.RelayBlock(ctx, honest, 0, root))
	err = spoke.RequestUndeposit(ctx, honest)
	requireCode(t, errors.PRECONDITION_FAILED, err)

	b.clock.Advance(window)
	require.NoError(t, spoke.RequestUndeposit(ctx, honest))
	relayer, err = spoke.GetRelayer(ctx, honest)
	require.NoError(t, err)
	require.Equal(t, domain.RelayerUndepositing, relayer.Status)
	require.Zero(t, relayer.OutstandingAgainstChallenges)

	err = spoke.RelayBlock(ctx, honest, 1, root)
	requireCode(t, errors.RELAYER_NOT_ALLOWED, err)

	_, err = spoke.ClaimDeposit(ctx, honest)
	requireCode(t, errors.TOO_EARLY, err)

	b.clock.Advance(window)
	amount, err := spoke.ClaimDeposit(ctx, honest)
	require.NoError(t, err)
	require.Equal(t, uint64(bond), amount)
	require.Equal(t, uint64(50), b.balance(t, domain.SideDestination, honest))
	require.Zero(t, b.balance(t, domain.SideDestination, destCustody))

	relayer, err = spoke.GetRelayer(ctx, honest)
	require.NoError(t, err)
	require.False(t, relayer.IsRegistered())

	require.NoError(t, spoke.Deposit(ctx, honest, bond))
	relayers, err := spoke.ListRelayers(ctx)
	require.NoError(t, err)
	require.Len(t, relayers, 1)
}

func TestRelayBlock(t *testing.T) {
	b := newTestBridge(t)
	_, root := b.bridgeOut(t)
	spoke := b.destination

	err := spoke.RelayBlock(ctx, honest, 0, merkle.ZeroHash)
	requireCode(t, errors.INVALID_ARGUMENT, err)
	err = spoke.RelayBlock(ctx, honest, 0, root)
	requireCode(t, errors.RELAYER_NOT_ALLOWED, err)

	b.bond(t, domain.SideDestination, honest)
	err = spoke.RelayBlock(ctx, honest, 1, root)
	requireCode(t, errors.PRECONDITION_FAILED, err)

	require.NoError(t, spoke.RelayBlock(ctx, honest, 0, root))
	err = spoke.RelayBlock(ctx, honest, 0, root)
	requireCode(t, errors.ALREADY_EXISTS, err)

	info, err := spoke.Info(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), info.NextRelayHeight)
	require.Zero(t, info.SettledCursor)

	record, err := spoke.GetIncomingBlock(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, domain.IncomingBlockRelayed, record.Status)
	require.Equal(t, root, record.Root)
	require.Equal(t, honest, record.Relayer)
	require.Equal(t, b.clock.Now().Unix(), record.SubmittedAt)

	t.Run("settle_after_window", func(t *testing.T) {
		b.clock.Advance(window - time.Second)
		record, err := spoke.GetIncomingBlock(ctx, 0)
		require.NoError(t, err)
		require.Equal(t, domain.IncomingBlockRelayed, record.Status)

		b.clock.Advance(time.Second)
		record, err = spoke.GetIncomingBlock(ctx, 0)
		require.NoError(t, err)
		require.Equal(t, domain.IncomingBlockConfirmed, record.Status)

		info, err := spoke.Info(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(1), info.SettledCursor)

		relayer, err := spoke.GetRelayer(ctx, honest)
		require.NoError(t, err)
		require.Zero(t, relayer.OutstandingAgainstChallenges)
	})
}

func TestClaimAsset(t *testing.T) {
	b := newTestBridge(t)
	receipt, root := b.bridgeOut(t)
	b.bond(t, domain.SideDestination, honest)
	require.NoError(t, b.destination.RelayBlock(ctx, honest, 0, root))
	b.fund(t, domain.SideDestination, bob, 5)

	req := claimRequest(t, b.source, 0, receipt.Index)

	t.Run("invalid", func(t *testing.T) {
		lowFee := req
		lowFee.Fee = 0
		err := b.destination.ClaimAsset(ctx, bob, lowFee)
		requireCode(t, errors.INSUFFICIENT_FUNDS, err)

		badProof := req
		badProof.Intent.TokenID = 2
		err = b.destination.ClaimAsset(ctx, bob, badProof)
		requireCode(t, errors.INVALID_PROOF, err)

		badIndex := req
		badIndex.Index = 1
		err = b.destination.ClaimAsset(ctx, bob, badIndex)
		requireCode(t, errors.INVALID_PROOF, err)

		missing := req
		missing.Height = 3
		err = b.destination.ClaimAsset(ctx, bob, missing)
		requireCode(t, errors.NOT_FOUND, err)

		err = b.destination.ClaimAsset(ctx, carol, req)
		requireCode(t, errors.PRECONDITION_FAILED, err)
	})

	t.Run("optimistic_claim", func(t *testing.T) {
		require.NoError(t, b.destination.ClaimAsset(ctx, bob, req))
		require.Equal(t, bob, b.ownerOf(domain.SideDestination, wrapped, 1))
		require.Equal(t, uint64(4), b.balance(t, domain.SideDestination, bob))
		require.Equal(t, uint64(fee), b.balance(t, domain.SideDestination, honest))

		err := b.destination.ClaimAsset(ctx, bob, req)
		requireCode(t, errors.ALREADY_CLAIMED, err)

		record, err := b.destination.GetIncomingBlock(ctx, 0)
		require.NoError(t, err)
		require.Len(t, record.Claims, 1)
		require.Equal(t, bob, record.Claims[receipt.Index].Receiver)
	})

	t.Run("bridge_back_too_early", func(t *testing.T) {
		_, err := b.destination.AddIntent(ctx, bob, 1, wrapped, alice)
		requireCode(t, errors.TOO_EARLY, err)

		_, err = b.destination.ResubmitIntent(ctx, bob, alice, req)
		requireCode(t, errors.TOO_EARLY, err)
		require.Equal(t, bob, b.ownerOf(domain.SideDestination, wrapped, 1))
	})

	t.Run("bridge_back", func(t *testing.T) {
		b.clock.Advance(window)

		_, err := b.destination.ResubmitIntent(ctx, carol, alice, req)
		requireCode(t, errors.PRECONDITION_FAILED, err)

		back, err := b.destination.ResubmitIntent(ctx, bob, alice, req)
		require.NoError(t, err)
		require.Equal(t, wrapped, back.Intent.LocalContract)
		require.Equal(t, original, back.Intent.RemoteContract)
		require.Equal(t, bob, back.Intent.Sender)
		require.Empty(t, b.ownerOf(domain.SideDestination, wrapped, 1))

		backRoot, err := b.destination.SealBlock(ctx, back.Height)
		require.NoError(t, err)
		b.bond(t, domain.SideSource, honest)
		require.NoError(t, b.source.RelayBlock(ctx, honest, back.Height, backRoot))

		b.fund(t, domain.SideSource, alice, fee)
		backReq := claimRequest(t, b.destination, back.Height, back.Index)
		err = b.source.ClaimAsset(ctx, alice, backReq)
		requireCode(t, errors.TOO_EARLY, err)
		require.Equal(t, sourceCustody, b.ownerOf(domain.SideSource, original, 1))

		b.clock.Advance(window)
		require.NoError(t, b.source.ClaimAsset(ctx, alice, backReq))
		require.Equal(t, alice, b.ownerOf(domain.SideSource, original, 1))
		require.Equal(t, uint64(fee), b.balance(t, domain.SideSource, honest))
		require.Zero(t, b.balance(t, domain.SideSource, alice))

		b.fund(t, domain.SideSource, alice, fee)
		err = b.source.ClaimAsset(ctx, alice, backReq)
		requireCode(t, errors.ALREADY_CLAIMED, err)
		require.Equal(t, uint64(fee), b.balance(t, domain.SideSource, alice))
		require.Equal(t, uint64(fee), b.balance(t, domain.SideSource, honest))
	})
}

func TestConsumedIntents(t *testing.T) {
	b := newTestBridge(t)
	receipt, root := b.bridgeOut(t)
	b.bond(t, domain.SideDestination, honest)
	require.NoError(t, b.destination.RelayBlock(ctx, honest, 0, root))
	require.NoError(t, b.destination.RelayBlock(ctx, honest, 1, root))
	b.fund(t, domain.SideDestination, bob, 2*fee)

	req := claimRequest(t, b.source, 0, receipt.Index)
	require.NoError(t, b.destination.ClaimAsset(ctx, bob, req))

	consumed, err := b.repo.ConsumedIntents().Get(ctx, b.destination.ID(), req.Intent.Hash())
	require.NoError(t, err)
	require.NotNil(t, consumed)
	require.Zero(t, consumed.Height)
	require.Equal(t, receipt.Index, consumed.Index)

	replay := req
	replay.Height = 1
	err = b.destination.ClaimAsset(ctx, bob, replay)
	requireCode(t, errors.ALREADY_CLAIMED, err)
	require.Equal(t, uint64(fee), b.balance(t, domain.SideDestination, bob))
	require.Equal(t, uint64(fee), b.balance(t, domain.SideDestination, honest))

	record, err := b.destination.GetIncomingBlock(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, record.Claims)

	b.clock.Advance(window)
	_, err = b.destination.AddIntent(ctx, bob, 1, wrapped, alice)
	require.NoError(t, err)
	require.Empty(t, b.ownerOf(domain.SideDestination, wrapped, 1))

	consumed, err = b.repo.ConsumedIntents().Get(ctx, b.destination.ID(), req.Intent.Hash())
	require.NoError(t, err)
	require.Nil(t, consumed)
}

func TestChallengeEngine(t *testing.T) {
	t.Run("false_challenge", func(t *testing.T) {
		b := newTestBridge(t)
		_, root := b.bridgeOut(t)
		b.bond(t, domain.SideDestination, honest)
		require.NoError(t, b.destination.RelayBlock(ctx, honest, 0, root))
		b.fund(t, domain.SideDestination, dave, stake)

		_, err := b.destination.ChallengeBlock(ctx, honest, 0, stake)
		requireCode(t, errors.PRECONDITION_FAILED, err)
		_, err = b.destination.ChallengeBlock(ctx, dave, 0, stake-1)
		requireCode(t, errors.INSUFFICIENT_FUNDS, err)
		_, err = b.destination.ChallengeBlock(ctx, carol, 0, stake)
		requireCode(t, errors.INSUFFICIENT_FUNDS, err)
		_, err = b.destination.ChallengeBlock(ctx, dave, 1, stake)
		requireCode(t, errors.NOT_FOUND, err)

		challenge, err := b.destination.ChallengeBlock(ctx, dave, 0, stake)
		require.NoError(t, err)
		require.True(t, challenge.IsPending())
		require.Equal(t, honest, challenge.Relayer)

		_, err = b.destination.ChallengeBlock(ctx, dave, 0, stake)
		requireCode(t, errors.ALREADY_EXISTS, err)

		info, err := b.destination.Info(ctx)
		require.NoError(t, err)
		require.Equal(t, domain.SpokeFrozen, info.Status)
		require.Equal(t, uint64(1), info.NumberOfChallenges)

		err = b.destination.RelayBlock(ctx, honest, 1, root)
		requireCode(t, errors.SPOKE_NOT_ACTIVE, err)
		relayer, err := b.destination.GetRelayer(ctx, honest)
		require.NoError(t, err)
		require.Equal(t, domain.RelayerChallengedPending, relayer.Status)

		resp, err := b.source.SendProof(ctx, dave, 0)
		require.NoError(t, err)
		require.Equal(t, domain.ChallengeFalse, resp.Outcome)
		require.Equal(t, challenge.ID, resp.ChallengeID)

		info, err = b.destination.Info(ctx)
		require.NoError(t, err)
		require.Equal(t, domain.SpokeActive, info.Status)

		record, err := b.destination.GetIncomingBlock(ctx, 0)
		require.NoError(t, err)
		require.Equal(t, domain.IncomingBlockConfirmed, record.Status)

		relayer, err = b.destination.GetRelayer(ctx, honest)
		require.NoError(t, err)
		require.Equal(t, domain.RelayerActive, relayer.Status)
		require.Zero(t, relayer.LiveChallenges)
		require.Equal(t, uint64(bond), relayer.Bond)

		challenges, err := b.destination.GetChallenges(ctx, 0)
		require.NoError(t, err)
		require.Len(t, challenges, 1)
		require.Equal(t, domain.ChallengeFalse, challenges[0].Outcome)

		amount, err := b.destination.ClaimChallengeReward(ctx, honest)
		require.NoError(t, err)
		require.Equal(t, uint64(stake), amount)
		_, err = b.destination.ClaimChallengeReward(ctx, honest)
		requireCode(t, errors.NO_REWARD, err)
		_, err = b.destination.ClaimChallengeReward(ctx, dave)
		requireCode(t, errors.NO_REWARD, err)

		_, err = b.source.SendProof(ctx, dave, 0)
		requireCode(t, errors.TOO_EARLY, err)
	})

	t.Run("timing", func(t *testing.T) {
		b := newTestBridge(t)
		_, root := b.bridgeOut(t)
		b.bond(t, domain.SideDestination, honest)
		b.fund(t, domain.SideDestination, dave, stake)

		_, err := b.source.SendProof(ctx, dave, 0)
		requireCode(t, errors.TOO_EARLY, err)

		require.NoError(t, b.destination.RelayBlock(ctx, honest, 0, root))
		_, err = b.source.SendProof(ctx, dave, 0)
		requireCode(t, errors.TOO_EARLY, err)

		b.clock.Advance(window)
		_, err = b.destination.ChallengeBlock(ctx, dave, 0, stake)
		requireCode(t, errors.TOO_LATE, err)
		_, err = b.source.SendProof(ctx, dave, 0)
		requireCode(t, errors.TOO_LATE, err)
		require.Equal(t, uint64(stake), b.balance(t, domain.SideDestination, dave))
	})

	t.Run("fraud_and_restore", func(t *testing.T) {
		b := newTestBridge(t)
		receipt, root := b.bridgeOut(t)
		b.bond(t, domain.SideDestination, mallory)

		forged, forgedReq := forgedRoot(t, 0, carol)
		require.NotEqual(t, root, forged)
		require.NoError(t, b.destination.RelayBlock(ctx, mallory, 0, forged))

		b.fund(t, domain.SideDestination, carol, fee)
		require.NoError(t, b.destination.ClaimAsset(ctx, carol, forgedReq))
		require.Equal(t, carol, b.ownerOf(domain.SideDestination, wrapped, 9))

		b.fund(t, domain.SideDestination, dave, stake)
		challenge, err := b.destination.ChallengeBlock(ctx, dave, 0, stake)
		require.NoError(t, err)

		resp, err := b.source.SendProof(ctx, dave, 0)
		require.NoError(t, err)
		require.Equal(t, domain.ChallengeFraudProven, resp.Outcome)
		require.Equal(t, challenge.ID, resp.ChallengeID)
		require.Empty(t, b.ownerOf(domain.SideDestination, wrapped, 9))

		info, err := b.destination.Info(ctx)
		require.NoError(t, err)
		require.Equal(t, domain.SpokeMalicious, info.Status)
		require.True(t, info.HasMalicious)
		require.Zero(t, info.FirstMaliciousHeight)
		require.Zero(t, info.NumberOfChallenges)

		relayer, err := b.destination.GetRelayer(ctx, mallory)
		require.NoError(t, err)
		require.True(t, relayer.IsMalicious())
		require.Zero(t, relayer.Bond)

		rewards, err := b.destination.GetRewards(ctx, dave)
		require.NoError(t, err)
		require.Equal(t, uint64(challengerPayout), rewards.Challenge)
		rewards, err = b.destination.GetRewards(ctx, carol)
		require.NoError(t, err)
		require.Equal(t, uint64(slashRemainder), rewards.Compensation)

		b.fund(t, domain.SideDestination, mallory, bond)
		err = b.destination.Deposit(ctx, mallory, bond)
		requireCode(t, errors.RELAYER_NOT_ALLOWED, err)

		b.bond(t, domain.SideDestination, honest)
		err = b.destination.RelayBlock(ctx, honest, 1, root)
		requireCode(t, errors.SPOKE_NOT_ACTIVE, err)

		amount, err := b.destination.ClaimChallengeReward(ctx, dave)
		require.NoError(t, err)
		require.Equal(t, uint64(challengerPayout), amount)
		amount, err = b.destination.ClaimCompensation(ctx, carol)
		require.NoError(t, err)
		require.Equal(t, uint64(slashRemainder), amount)
		_, err = b.destination.ClaimCompensation(ctx, dave)
		requireCode(t, errors.NO_REWARD, err)
		require.Equal(t, uint64(bond), b.balance(t, domain.SideDestination, destCustody))

		_, err = b.destination.Restore(ctx, carol)
		requireCode(t, errors.PRECONDITION_FAILED, err)

		result, err := b.destination.Restore(ctx, operator)
		require.NoError(t, err)
		require.Zero(t, result.FromHeight)
		require.Equal(t, []uint64{0}, result.Archived)

		_, err = b.destination.GetIncomingBlock(ctx, 0)
		requireCode(t, errors.NOT_FOUND, err)
		archived, err := b.destination.GetArchivedIncomingBlocks(ctx, 0)
		require.NoError(t, err)
		require.Len(t, archived, 1)
		require.Equal(t, forged, archived[0].Root)
		require.Equal(t, domain.IncomingBlockMalicious, archived[0].Status)

		_, err = b.destination.Restore(ctx, operator)
		requireCode(t, errors.PRECONDITION_FAILED, err)

		info, err = b.destination.Info(ctx)
		require.NoError(t, err)
		require.Equal(t, domain.SpokeActive, info.Status)
		require.Zero(t, info.NextRelayHeight)

		require.NoError(t, b.destination.RelayBlock(ctx, honest, 0, root))
		b.fund(t, domain.SideDestination, bob, fee)
		req := claimRequest(t, b.source, 0, receipt.Index)
		require.NoError(t, b.destination.ClaimAsset(ctx, bob, req))
		require.Equal(t, bob, b.ownerOf(domain.SideDestination, wrapped, 1))

		events, err := b.repo.Events().GetEvents(
			ctx, domain.SpokeTopic(b.destination.ID()), 0, 0,
		)
		require.NoError(t, err)
		types := make(map[domain.EventType]int)
		for _, event := range events {
			types[event.GetType()]++
		}
		require.Equal(t, 2, types[domain.EventTypeBlockRelayed])
		require.Equal(t, 2, types[domain.EventTypeAssetClaimed])
		require.Equal(t, 1, types[domain.EventTypeRelayerSlashed])
		require.Equal(t, 1, types[domain.EventTypeChallengeResolved])
		require.Equal(t, 1, types[domain.EventTypeSpokeRestored])
	})

	t.Run("default_challenger_reward", func(t *testing.T) {
		b := newTestBridge(t)
		for id := uint64(2); id <= 4; id++ {
			require.NoError(t, b.ledgers[domain.SideSource].Issue(ctx, original, alice, id))
		}
		var receipt *IntentReceipt
		for id := uint64(1); id <= 4; id++ {
			var err error
			receipt, err = b.source.AddIntent(ctx, alice, id, original, bob)
			require.NoError(t, err)
		}
		require.True(t, receipt.Sealed)
		require.Zero(t, receipt.Height)

		b.bond(t, domain.SideDestination, mallory)
		forged, _ := forgedRoot(t, 0, carol)
		require.NoError(t, b.destination.RelayBlock(ctx, mallory, 0, forged))

		b.fund(t, domain.SideDestination, dave, stake)
		_, err := b.destination.ChallengeBlock(ctx, dave, 0, stake)
		require.NoError(t, err)
		resp, err := b.source.SendProof(ctx, dave, 0)
		require.NoError(t, err)
		require.Equal(t, domain.ChallengeFraudProven, resp.Outcome)

		amount, err := b.destination.ClaimChallengeReward(ctx, dave)
		require.NoError(t, err)
		require.Equal(t, uint64(15), amount)
		require.Equal(t, uint64(15), b.balance(t, domain.SideDestination, dave))
		_, err = b.destination.ClaimChallengeReward(ctx, dave)
		requireCode(t, errors.NO_REWARD, err)

		info, err := b.destination.Info(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(15), info.Reserve)
	})

	t.Run("fraud_drops_unsettled_blocks_of_relayer", func(t *testing.T) {
		b := newTestBridge(t)
		b.bridgeOut(t)
		b.bond(t, domain.SideDestination, mallory)
		forged, forgedReq := forgedRoot(t, 1, carol)

		require.NoError(t, b.destination.RelayBlock(ctx, mallory, 0, forged))
		b.clock.Advance(window / 2)
		require.NoError(t, b.destination.RelayBlock(ctx, mallory, 1, forged))

		b.fund(t, domain.SideDestination, carol, 2*fee)
		require.NoError(t, b.destination.ClaimAsset(ctx, carol, forgedReq))
		require.Equal(t, carol, b.ownerOf(domain.SideDestination, wrapped, 9))

		b.fund(t, domain.SideDestination, dave, stake)
		_, err := b.destination.ChallengeBlock(ctx, dave, 0, stake)
		require.NoError(t, err)

		// The window of block 1 is over but its relayer is disputed.
		b.clock.Advance(window)
		record, err := b.destination.GetIncomingBlock(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, domain.IncomingBlockRelayed, record.Status)
		info, err := b.destination.Info(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(1), info.SettledCursor)

		resp, err := b.source.SendProof(ctx, dave, 0)
		require.NoError(t, err)
		require.Equal(t, domain.ChallengeFraudProven, resp.Outcome)
		require.Empty(t, b.ownerOf(domain.SideDestination, wrapped, 9))

		record, err = b.destination.GetIncomingBlock(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, domain.IncomingBlockMalicious, record.Status)

		relayer, err := b.destination.GetRelayer(ctx, mallory)
		require.NoError(t, err)
		require.True(t, relayer.IsMalicious())
		require.Zero(t, relayer.OutstandingAgainstChallenges)

		rewards, err := b.destination.GetRewards(ctx, carol)
		require.NoError(t, err)
		require.Equal(t, uint64(slashRemainder), rewards.Compensation)

		consumed, err := b.repo.ConsumedIntents().Get(
			ctx, b.destination.ID(), forgedReq.Intent.Hash(),
		)
		require.NoError(t, err)
		require.Nil(t, consumed)

		b.clock.Advance(window)
		result, err := b.destination.Restore(ctx, operator)
		require.NoError(t, err)
		require.Zero(t, result.FromHeight)
		require.Equal(t, []uint64{0, 1}, result.Archived)

		err = b.destination.ClaimAsset(ctx, carol, forgedReq)
		requireCode(t, errors.NOT_FOUND, err)
		require.Empty(t, b.ownerOf(domain.SideDestination, wrapped, 9))
		require.Equal(t, uint64(fee), b.balance(t, domain.SideDestination, carol))

		events, err := b.repo.Events().GetEvents(
			ctx, domain.SpokeTopic(b.destination.ID()), 0, 0,
		)
		require.NoError(t, err)
		var slashed *domain.RelayerSlashed
		for _, event := range events {
			if e, ok := event.(domain.RelayerSlashed); ok {
				slashed = &e
			}
		}
		require.NotNil(t, slashed)
		require.Equal(t, []uint64{1}, slashed.Invalidated)
		require.Equal(t, []string{carol}, slashed.Victims)
	})

	t.Run("failed_fraud_resolution_changes_nothing", func(t *testing.T) {
		f := &faults{}
		b := newTestBridge(t, withFaults(f))
		b.bridgeOut(t)
		b.bond(t, domain.SideDestination, mallory)
		forged, forgedReq := forgedRoot(t, 0, carol)
		require.NoError(t, b.destination.RelayBlock(ctx, mallory, 0, forged))

		b.fund(t, domain.SideDestination, carol, fee)
		require.NoError(t, b.destination.ClaimAsset(ctx, carol, forgedReq))
		b.fund(t, domain.SideDestination, dave, stake)
		challenge, err := b.destination.ChallengeBlock(ctx, dave, 0, stake)
		require.NoError(t, err)

		requireUnresolved := func(t *testing.T) {
			t.Helper()
			require.Equal(t, carol, b.ownerOf(domain.SideDestination, wrapped, 9))

			record, err := b.destination.GetIncomingBlock(ctx, 0)
			require.NoError(t, err)
			require.Equal(t, domain.IncomingBlockChallenged, record.Status)
			require.Len(t, record.Claims, 1)

			challenges, err := b.destination.GetChallenges(ctx, 0)
			require.NoError(t, err)
			require.Len(t, challenges, 1)
			require.True(t, challenges[0].IsPending())

			relayer, err := b.destination.GetRelayer(ctx, mallory)
			require.NoError(t, err)
			require.Equal(t, uint64(bond), relayer.Bond)
			require.Equal(t, uint64(1), relayer.LiveChallenges)

			rewards, err := b.destination.GetRewards(ctx, dave)
			require.NoError(t, err)
			require.True(t, rewards.IsEmpty())
			rewards, err = b.destination.GetRewards(ctx, carol)
			require.NoError(t, err)
			require.True(t, rewards.IsEmpty())

			info, err := b.destination.Info(ctx)
			require.NoError(t, err)
			require.Equal(t, domain.SpokeFrozen, info.Status)
			require.False(t, info.HasMalicious)
			require.Zero(t, info.Reserve)

			consumed, err := b.repo.ConsumedIntents().Get(
				ctx, b.destination.ID(), forgedReq.Intent.Hash(),
			)
			require.NoError(t, err)
			require.NotNil(t, consumed)
		}

		f.ownerLookups.Store(true)
		_, err = b.source.SendProof(ctx, dave, 0)
		requireCode(t, errors.INTERNAL_ERROR, err)
		f.ownerLookups.Store(false)
		requireUnresolved(t)

		f.relayerWrites.Store(true)
		_, err = b.source.SendProof(ctx, dave, 0)
		requireCode(t, errors.INTERNAL_ERROR, err)
		f.relayerWrites.Store(false)
		requireUnresolved(t)

		resp, err := b.source.SendProof(ctx, dave, 0)
		require.NoError(t, err)
		require.Equal(t, domain.ChallengeFraudProven, resp.Outcome)
		require.Equal(t, challenge.ID, resp.ChallengeID)
		require.Empty(t, b.ownerOf(domain.SideDestination, wrapped, 9))

		rewards, err := b.destination.GetRewards(ctx, dave)
		require.NoError(t, err)
		require.Equal(t, uint64(challengerPayout), rewards.Challenge)
		rewards, err = b.destination.GetRewards(ctx, carol)
		require.NoError(t, err)
		require.Equal(t, uint64(slashRemainder), rewards.Compensation)
	})

	t.Run("restore_keeps_later_records", func(t *testing.T) {
		b := newTestBridge(t)
		_, root := b.bridgeOut(t)
		b.bond(t, domain.SideDestination, honest)
		b.bond(t, domain.SideDestination, mallory)
		forged, _ := forgedRoot(t, 1, carol)

		require.NoError(t, b.destination.RelayBlock(ctx, honest, 0, root))
		require.NoError(t, b.destination.RelayBlock(ctx, mallory, 1, forged))
		require.NoError(t, b.destination.RelayBlock(ctx, honest, 2, forged))

		b.fund(t, domain.SideDestination, dave, stake)
		_, err := b.destination.ChallengeBlock(ctx, dave, 1, stake)
		require.NoError(t, err)

		resp, err := b.source.SendProof(ctx, dave, 1)
		require.NoError(t, err)
		require.Equal(t, domain.ChallengeFraudProven, resp.Outcome)

		rewards, err := b.destination.GetRewards(ctx, dave)
		require.NoError(t, err)
		require.Equal(t, uint64(challengerPayout), rewards.Challenge)
		info, err := b.destination.Info(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(slashRemainder), info.Reserve)

		result, err := b.destination.Restore(ctx, operator)
		require.NoError(t, err)
		require.Equal(t, uint64(1), result.FromHeight)
		require.Equal(t, []uint64{1}, result.Archived)

		info, err = b.destination.Info(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(1), info.NextRelayHeight)

		_, err = b.destination.GetIncomingBlock(ctx, 2)
		require.NoError(t, err)

		require.NoError(t, b.destination.RelayBlock(ctx, honest, 1, root))
		info, err = b.destination.Info(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(3), info.NextRelayHeight)
	})
}
