package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

const relayBatchSize = 16

type AgentConfig struct {
	Address string
	// Interval between two rounds of the agent.
	Interval time.Duration
	// Amount is the bond of a relayer or the stake of a watchtower.
	Amount uint64
	// SealAfter makes the relayer seal origin blocks that have been open for longer. Zero
	// disables it.
	SealAfter time.Duration
}

// RelayerAgent relays the sealed blocks of origin to target, lowest height first.
type RelayerAgent struct {
	cfg       AgentConfig
	origin    SpokeService
	target    SpokeService
	events    domain.EventRepository
	queue     ports.RelayQueueStore
	scheduler ports.SchedulerService
	clock     ports.Clock

	lock    sync.Mutex
	running bool
}

func NewRelayerAgent(
	cfg AgentConfig, origin, target SpokeService, events domain.EventRepository,
	queue ports.RelayQueueStore, scheduler ports.SchedulerService, clock ports.Clock,
) (*RelayerAgent, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("missing relayer address")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("relayer interval must be positive")
	}
	return &RelayerAgent{
		cfg: cfg, origin: origin, target: target, events: events,
		queue: queue, scheduler: scheduler, clock: clock,
	}, nil
}

func (a *RelayerAgent) Start(ctx context.Context) error {
	relayer, err := a.target.GetRelayer(ctx, a.cfg.Address)
	if err != nil {
		return err
	}
	if !relayer.IsRegistered() {
		if err := a.target.Deposit(ctx, a.cfg.Address, a.cfg.Amount); err != nil {
			return fmt.Errorf("failed to bond relayer: %w", err)
		}
	}

	if err := a.backfill(ctx); err != nil {
		return fmt.Errorf("failed to restore relay queue: %s", err)
	}

	a.events.RegisterEventsHandler(domain.SpokeTopic(a.origin.ID()), a.onEvents)
	a.events.RegisterEventsHandler(domain.SpokeTopic(a.target.ID()), a.onTargetEvents)
	if err := a.scheduler.ScheduleEvery(a.cfg.Interval, a.tick); err != nil {
		return err
	}

	a.lock.Lock()
	a.running = true
	a.lock.Unlock()

	log.Infof(
		"relayer %s: relaying blocks from %s to %s", a.cfg.Address, a.origin.ID(), a.target.ID(),
	)
	return nil
}

func (a *RelayerAgent) Stop() {
	a.lock.Lock()
	a.running = false
	a.lock.Unlock()
}

// backfill queues the sealed origin blocks the target has not received yet.
func (a *RelayerAgent) backfill(ctx context.Context) error {
	originInfo, err := a.origin.Info(ctx)
	if err != nil {
		return err
	}
	targetInfo, err := a.target.Info(ctx)
	if err != nil {
		return err
	}

	if targetInfo.NextRelayHeight >= originInfo.OpenHeight {
		return nil
	}
	blocks, err := a.origin.ListBlocks(ctx, targetInfo.NextRelayHeight, originInfo.OpenHeight)
	if err != nil {
		return err
	}

	relays := make([]ports.PendingRelay, 0, len(blocks))
	for _, block := range blocks {
		if !block.Sealed {
			break
		}
		relays = append(relays, ports.PendingRelay{
			OriginID: a.origin.ID(),
			Height:   block.Height,
			Root:     block.Root,
			SealedAt: block.SealedAt,
		})
	}
	if len(relays) == 0 {
		return nil
	}
	log.Infof("relayer %s: restored %d blocks to relay", a.cfg.Address, len(relays))
	return a.queue.Push(ctx, relays...)
}

func (a *RelayerAgent) onEvents(events []domain.Event) {
	ctx := context.Background()
	for _, event := range events {
		sealed, ok := event.(domain.BlockSealed)
		if !ok {
			continue
		}
		if err := a.queue.Push(ctx, ports.PendingRelay{
			OriginID: a.origin.ID(),
			Height:   sealed.Height,
			Root:     sealed.Root,
			SealedAt: sealed.Timestamp,
		}); err != nil {
			log.WithError(err).Warnf("relayer %s: failed to queue block %d", a.cfg.Address, sealed.Height)
		}
	}
}

// onTargetEvents queues again the heights a restore reopened on the target.
func (a *RelayerAgent) onTargetEvents(events []domain.Event) {
	for _, event := range events {
		if _, ok := event.(domain.SpokeRestored); !ok {
			continue
		}
		if err := a.backfill(context.Background()); err != nil {
			log.WithError(err).Warnf("relayer %s: failed to restore relay queue", a.cfg.Address)
		}
	}
}

func (a *RelayerAgent) tick() {
	a.lock.Lock()
	running := a.running
	a.lock.Unlock()
	if !running {
		return
	}

	ctx := context.Background()
	a.sealStaleBlock(ctx)

	relays, err := a.queue.Peek(ctx, a.origin.ID(), relayBatchSize)
	if err != nil {
		log.WithError(err).Warnf("relayer %s: failed to read relay queue", a.cfg.Address)
		return
	}

	done := make([]uint64, 0, len(relays))
	for _, relay := range relays {
		record, err := a.target.GetIncomingBlock(ctx, relay.Height)
		if err == nil && record != nil {
			done = append(done, relay.Height)
			continue
		}
		if err := a.target.RelayBlock(ctx, a.cfg.Address, relay.Height, relay.Root); err != nil {
			log.WithError(err).Debugf("relayer %s: block %d not relayed", a.cfg.Address, relay.Height)
			break
		}
		done = append(done, relay.Height)
	}

	if len(done) == 0 {
		return
	}
	if err := a.queue.Delete(ctx, a.origin.ID(), done...); err != nil {
		log.WithError(err).Warnf("relayer %s: failed to update relay queue", a.cfg.Address)
	}
}

func (a *RelayerAgent) sealStaleBlock(ctx context.Context) {
	if a.cfg.SealAfter <= 0 {
		return
	}
	info, err := a.origin.Info(ctx)
	if err != nil {
		return
	}
	block, err := a.origin.GetBlock(ctx, info.OpenHeight)
	if err != nil || block.Sealed || len(block.Intents) == 0 {
		return
	}
	if a.clock.Now().Sub(time.Unix(block.OpenedAt, 0)) < a.cfg.SealAfter {
		return
	}
	if _, err := a.origin.SealBlock(ctx, block.Height); err != nil {
		log.WithError(err).Warnf("relayer %s: failed to seal block %d", a.cfg.Address, block.Height)
	}
}
