package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	inmemorylivestore "github.com/arkade-os/nftbridge/internal/infrastructure/live-store/inmemory"
	clockscheduler "github.com/arkade-os/nftbridge/internal/infrastructure/scheduler/clock"
	"github.com/stretchr/testify/require"
)

const (
	watchtower = "watchtower"
	tick       = time.Second
	waitFor    = 3 * time.Second
	pollEvery  = 10 * time.Millisecond
)

func newTestScheduler(t *testing.T, b *testBridge) clockscheduler.Scheduler {
	t.Helper()
	scheduler, err := clockscheduler.NewScheduler(b.clock)
	require.NoError(t, err)
	return scheduler
}

// runUntil moves the clock by one tick and runs the due tasks until cond holds.
func runUntil(t *testing.T, b *testBridge, scheduler clockscheduler.Scheduler, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		b.clock.Advance(tick)
		scheduler.RunPending()
		return cond()
	}, waitFor, pollEvery)
}

func TestRelayerAgent(t *testing.T) {
	b := newTestBridge(t)
	scheduler := newTestScheduler(t, b)
	queue := inmemorylivestore.NewRelayQueueStore()

	_, root := b.bridgeOut(t)

	b.fund(t, domain.SideDestination, honest, bond)
	agent, err := NewRelayerAgent(AgentConfig{
		Address:   honest,
		Interval:  tick,
		Amount:    bond,
		SealAfter: time.Minute,
	}, b.source, b.destination, b.repo.Events(), queue, scheduler, b.clock)
	require.NoError(t, err)
	require.NoError(t, agent.Start(ctx))
	t.Cleanup(agent.Stop)

	relayer, err := b.destination.GetRelayer(ctx, honest)
	require.NoError(t, err)
	require.True(t, relayer.CanRelay())

	t.Run("relay_backfilled_block", func(t *testing.T) {
		count, err := queue.Len(ctx, b.source.ID())
		require.NoError(t, err)
		require.Equal(t, int64(1), count)

		b.clock.Advance(tick)
		require.Equal(t, 1, scheduler.RunPending())

		record, err := b.destination.GetIncomingBlock(ctx, 0)
		require.NoError(t, err)
		require.Equal(t, root, record.Root)
		require.Equal(t, honest, record.Relayer)

		count, err = queue.Len(ctx, b.source.ID())
		require.NoError(t, err)
		require.Zero(t, count)
	})

	t.Run("seal_stale_block", func(t *testing.T) {
		require.NoError(t, b.ledgers[domain.SideSource].Issue(ctx, original, alice, 2))
		receipt, err := b.source.AddIntent(ctx, alice, 2, original, carol)
		require.NoError(t, err)
		require.Equal(t, uint64(1), receipt.Height)

		b.clock.Advance(time.Minute)
		runUntil(t, b, scheduler, func() bool {
			record, err := b.destination.GetIncomingBlock(ctx, 1)
			return err == nil && record != nil
		})

		block, err := b.source.GetBlock(ctx, 1)
		require.NoError(t, err)
		require.True(t, block.Sealed)
		record, err := b.destination.GetIncomingBlock(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, block.Root, record.Root)
	})

	t.Run("stopped", func(t *testing.T) {
		agent.Stop()

		require.NoError(t, b.ledgers[domain.SideSource].Issue(ctx, original, alice, 3))
		receipt, err := b.source.AddIntent(ctx, alice, 3, original, carol)
		require.NoError(t, err)
		_, err = b.source.SealBlock(ctx, receipt.Height)
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			count, err := queue.Len(ctx, b.source.ID())
			return err == nil && count == 1
		}, waitFor, pollEvery)

		b.clock.Advance(tick)
		scheduler.RunPending()
		_, err = b.destination.GetIncomingBlock(ctx, receipt.Height)
		require.Error(t, err)
	})
}

func TestWatchtower(t *testing.T) {
	setup := func(t *testing.T) (*testBridge, clockscheduler.Scheduler, *Watchtower) {
		b := newTestBridge(t)
		scheduler := newTestScheduler(t, b)
		b.fund(t, domain.SideDestination, watchtower, stake)

		tower, err := NewWatchtower(
			AgentConfig{Address: watchtower, Interval: tick, Amount: stake},
			b.source, b.destination, b.repo.Events(),
			inmemorylivestore.NewWatchedBlocksStore(), scheduler, b.clock,
		)
		require.NoError(t, err)
		require.NoError(t, tower.Start(ctx))
		t.Cleanup(tower.Stop)
		return b, scheduler, tower
	}

	t.Run("prove_fraud", func(t *testing.T) {
		b, scheduler, tower := setup(t)
		b.bridgeOut(t)
		b.bond(t, domain.SideDestination, mallory)

		forged, _ := forgedRoot(t, 0, carol)
		require.NoError(t, b.destination.RelayBlock(ctx, mallory, 0, forged))

		require.Eventually(t, func() bool {
			watched, err := tower.store.List(ctx, b.destination.ID())
			return err == nil && len(watched) == 1
		}, waitFor, pollEvery)

		b.clock.Advance(tick)
		scheduler.RunPending()

		info, err := b.destination.Info(ctx)
		require.NoError(t, err)
		require.Equal(t, domain.SpokeMalicious, info.Status)
		require.Equal(t, uint64(challengerPayout), b.balance(t, domain.SideDestination, watchtower))

		challenges, err := b.destination.GetChallenges(ctx, 0)
		require.NoError(t, err)
		require.Len(t, challenges, 1)
		require.Equal(t, watchtower, challenges[0].Challenger)
		require.Equal(t, domain.ChallengeFraudProven, challenges[0].Outcome)

		watched, err := tower.store.List(ctx, b.destination.ID())
		require.NoError(t, err)
		require.Empty(t, watched)
	})

	t.Run("honest_block", func(t *testing.T) {
		b, scheduler, tower := setup(t)
		_, root := b.bridgeOut(t)
		b.bond(t, domain.SideDestination, honest)
		require.NoError(t, b.destination.RelayBlock(ctx, honest, 0, root))

		require.Eventually(t, func() bool {
			watched, err := tower.store.List(ctx, b.destination.ID())
			return err == nil && len(watched) == 1
		}, waitFor, pollEvery)

		b.clock.Advance(tick)
		scheduler.RunPending()
		watched, err := tower.store.List(ctx, b.destination.ID())
		require.NoError(t, err)
		require.Len(t, watched, 1)

		b.clock.Advance(window)
		scheduler.RunPending()
		watched, err = tower.store.List(ctx, b.destination.ID())
		require.NoError(t, err)
		require.Empty(t, watched)

		challenges, err := b.destination.GetChallenges(ctx, 0)
		require.NoError(t, err)
		require.Empty(t, challenges)
		require.Equal(t, uint64(stake), b.balance(t, domain.SideDestination, watchtower))
	})
}

type testAgent struct {
	name  string
	err   error
	calls *[]string
}

func (a testAgent) Start(_ context.Context) error {
	*a.calls = append(*a.calls, "start "+a.name)
	return a.err
}

func (a testAgent) Stop() {
	*a.calls = append(*a.calls, "stop "+a.name)
}

func TestService(t *testing.T) {
	b := newTestBridge(t)

	t.Run("start_and_stop", func(t *testing.T) {
		calls := make([]string, 0)
		svc, err := NewService(
			newTestScheduler(t, b),
			testAgent{name: "relayer", calls: &calls},
			testAgent{name: "watchtower", calls: &calls},
		)
		require.NoError(t, err)

		require.NoError(t, svc.Start())
		require.NoError(t, svc.Start())
		svc.Stop()
		require.Equal(t, []string{
			"start relayer", "start watchtower", "stop watchtower", "stop relayer",
		}, calls)
	})

	t.Run("start_failure", func(t *testing.T) {
		calls := make([]string, 0)
		svc, err := NewService(
			newTestScheduler(t, b),
			testAgent{name: "relayer", calls: &calls},
			testAgent{name: "watchtower", err: fmt.Errorf("boom"), calls: &calls},
		)
		require.NoError(t, err)

		require.ErrorContains(t, svc.Start(), "boom")
		require.Equal(t, []string{"start relayer", "start watchtower", "stop relayer"}, calls)
	})

	t.Run("missing_scheduler", func(t *testing.T) {
		_, err := NewService(nil)
		require.Error(t, err)
	})
}
