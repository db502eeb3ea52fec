package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/internal/core/ports"
	"github.com/arkade-os/nftbridge/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Watchtower compares the roots relayed to target with the blocks of origin. On mismatch it
// challenges the root, sends the proof from origin and collects the reward.
type Watchtower struct {
	cfg       AgentConfig
	origin    SpokeService
	target    SpokeService
	events    domain.EventRepository
	store     ports.WatchedBlocksStore
	scheduler ports.SchedulerService
	clock     ports.Clock

	lock    sync.Mutex
	running bool
}

func NewWatchtower(
	cfg AgentConfig, origin, target SpokeService, events domain.EventRepository,
	store ports.WatchedBlocksStore, scheduler ports.SchedulerService, clock ports.Clock,
) (*Watchtower, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("missing watchtower address")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("watchtower interval must be positive")
	}
	return &Watchtower{
		cfg: cfg, origin: origin, target: target, events: events,
		store: store, scheduler: scheduler, clock: clock,
	}, nil
}

func (w *Watchtower) Start(_ context.Context) error {
	w.events.RegisterEventsHandler(domain.SpokeTopic(w.target.ID()), w.onEvents)
	if err := w.scheduler.ScheduleEvery(w.cfg.Interval, w.tick); err != nil {
		return err
	}

	w.lock.Lock()
	w.running = true
	w.lock.Unlock()

	log.Infof("watchtower %s: watching roots relayed to %s", w.cfg.Address, w.target.ID())
	return nil
}

func (w *Watchtower) Stop() {
	w.lock.Lock()
	w.running = false
	w.lock.Unlock()
}

func (w *Watchtower) onEvents(events []domain.Event) {
	ctx := context.Background()
	for _, event := range events {
		relayed, ok := event.(domain.BlockRelayed)
		if !ok {
			continue
		}
		if err := w.store.Add(ctx, ports.WatchedBlock{
			SpokeID:     w.target.ID(),
			Height:      relayed.Height,
			Root:        relayed.Root,
			Relayer:     relayed.Relayer,
			SubmittedAt: relayed.SubmittedAt,
		}); err != nil {
			log.WithError(err).Warnf(
				"watchtower %s: failed to watch block %d", w.cfg.Address, relayed.Height,
			)
		}
	}
}

func (w *Watchtower) tick() {
	w.lock.Lock()
	running := w.running
	w.lock.Unlock()
	if !running {
		return
	}

	ctx := context.Background()
	info, err := w.target.Info(ctx)
	if err != nil {
		log.WithError(err).Warnf("watchtower %s: failed to get target info", w.cfg.Address)
		return
	}
	watched, err := w.store.List(ctx, w.target.ID())
	if err != nil {
		log.WithError(err).Warnf("watchtower %s: failed to list watched blocks", w.cfg.Address)
		return
	}

	for _, block := range watched {
		if err := w.check(ctx, info, block); err != nil {
			log.WithError(err).Warnf(
				"watchtower %s: failed to check block %d", w.cfg.Address, block.Height,
			)
		}
	}
}

func (w *Watchtower) check(ctx context.Context, info *SpokeInfo, watched ports.WatchedBlock) error {
	now := w.clock.Now().Unix()
	expired := now >= watched.SubmittedAt+int64(info.ChallengeWindow.Seconds())

	if watched.ChallengeID == "" {
		honest, err := w.isHonest(ctx, watched)
		if err != nil {
			return err
		}
		if honest {
			if expired {
				return w.store.Remove(ctx, watched.SpokeID, watched.Height)
			}
			return nil
		}
		if expired {
			log.Errorf(
				"watchtower %s: missed the window of fraudulent block %d relayed by %s",
				w.cfg.Address, watched.Height, watched.Relayer,
			)
			return w.store.Remove(ctx, watched.SpokeID, watched.Height)
		}

		challenge, err := w.target.ChallengeBlock(ctx, w.cfg.Address, watched.Height, w.cfg.Amount)
		if err != nil && !errors.ALREADY_EXISTS.Is(err) {
			return err
		}
		challengeID := "external"
		if challenge != nil {
			challengeID = challenge.ID
		}
		if err := w.store.Update(
			ctx, watched.SpokeID, watched.Height, func(b *ports.WatchedBlock) *ports.WatchedBlock {
				b.ChallengeID = challengeID
				return b
			},
		); err != nil {
			return err
		}
		watched.ChallengeID = challengeID
	}

	// A dispute resolved by someone else leaves no challenge to answer.
	resp, err := w.origin.SendProof(ctx, w.cfg.Address, watched.Height)
	if err != nil && !errors.TOO_LATE.Is(err) && !errors.TOO_EARLY.Is(err) {
		return err
	}
	if resp != nil && resp.Outcome == domain.ChallengeFraudProven {
		log.Warnf(
			"watchtower %s: proved fraud on block %d relayed by %s",
			w.cfg.Address, watched.Height, watched.Relayer,
		)
		if _, err := w.target.ClaimChallengeReward(ctx, w.cfg.Address); err != nil &&
			!errors.NO_REWARD.Is(err) {
			log.WithError(err).Warnf("watchtower %s: failed to claim reward", w.cfg.Address)
		}
	}
	return w.store.Remove(ctx, watched.SpokeID, watched.Height)
}

func (w *Watchtower) isHonest(ctx context.Context, watched ports.WatchedBlock) (bool, error) {
	block, err := w.origin.GetBlock(ctx, watched.Height)
	if err != nil {
		if errors.NOT_FOUND.Is(err) {
			return false, nil
		}
		return false, err
	}
	return block.Sealed && block.Root == watched.Root, nil
}
