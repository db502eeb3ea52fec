package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/internal/core/ports"
	"github.com/arkade-os/nftbridge/pkg/errors"
	"github.com/arkade-os/nftbridge/pkg/merkle"
	log "github.com/sirupsen/logrus"
)

type spokeService struct {
	cfg       SpokeConfig
	policy    policy
	slashing  domain.SlashingPolicy
	repo      ports.RepoManager
	ledger    ports.AssetLedger
	bank      ports.Bank
	directory ports.Directory
	clock     ports.Clock
	alerts    ports.Alerts
	verifier  *merkle.Verifier
	metrics   *spokeMetrics

	// lock serializes every state changing call.
	lock sync.Mutex

	hubLock       sync.RWMutex
	hub           ports.Hub
	creds         ports.Credentials
	counterpartID string
}

func NewSpokeService(
	cfg SpokeConfig, repo ports.RepoManager, ledger ports.AssetLedger, bank ports.Bank,
	directory ports.Directory, clock ports.Clock, alerts ports.Alerts,
) (SpokeService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid spoke config: %s", err)
	}
	if repo == nil || ledger == nil || bank == nil || directory == nil || clock == nil {
		return nil, fmt.Errorf("missing spoke dependencies")
	}

	ctx := context.Background()
	state, err := repo.Spokes().Get(ctx, cfg.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get state of spoke %s: %s", cfg.ID, err)
	}
	if state == nil {
		state = domain.NewSpokeState(cfg.ID, cfg.Side)
		if err := repo.Spokes().Upsert(ctx, *state); err != nil {
			return nil, fmt.Errorf("failed to init state of spoke %s: %s", cfg.ID, err)
		}
		log.Infof("initialized %s spoke %s", cfg.Side, cfg.ID)
	}
	if state.Side != cfg.Side {
		return nil, fmt.Errorf(
			"spoke %s is stored as %s, got %s", cfg.ID, state.Side, cfg.Side,
		)
	}

	metrics, err := newSpokeMetrics(cfg.ID, cfg.Side)
	if err != nil {
		return nil, fmt.Errorf("failed to init metrics: %s", err)
	}
	verifier, err := merkle.NewVerifier(cfg.VerifierCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to init proof verifier: %s", err)
	}

	return &spokeService{
		cfg:       cfg,
		policy:    newPolicy(cfg.Side),
		slashing:  domain.SlashingPolicy{ChallengerShareBps: cfg.ChallengerShareBps},
		repo:      repo,
		ledger:    ledger,
		bank:      bank,
		directory: directory,
		clock:     clock,
		alerts:    alerts,
		verifier:  verifier,
		metrics:   metrics,
	}, nil
}

func (s *spokeService) ID() string {
	return s.cfg.ID
}

func (s *spokeService) Side() domain.Side {
	return s.cfg.Side
}

func (s *spokeService) Attach(hub ports.Hub, creds ports.Credentials, counterpartID string) {
	s.hubLock.Lock()
	defer s.hubLock.Unlock()
	s.hub = hub
	s.creds = creds
	s.counterpartID = counterpartID
	log.Debugf("spoke %s attached to counterpart %s", s.cfg.ID, counterpartID)
}

func (s *spokeService) Info(ctx context.Context) (*SpokeInfo, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	state, err := s.settledState(ctx, s.now())
	if err != nil {
		return nil, err
	}
	next, err := s.nextRelayHeight(ctx, state)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}

	s.hubLock.RLock()
	counterpart := s.counterpartID
	s.hubLock.RUnlock()

	return &SpokeInfo{
		ID:                   s.cfg.ID,
		Side:                 s.cfg.Side,
		Status:               state.Status,
		Counterpart:          counterpart,
		OpenHeight:           state.OpenHeight,
		NextRelayHeight:      next,
		SettledCursor:        state.SettledCursor,
		HasMalicious:         state.HasMalicious,
		FirstMaliciousHeight: state.FirstMaliciousHeight,
		NumberOfChallenges:   state.NumberOfChallenges,
		Reserve:              state.Reserve,
		BlockCapacity:        s.cfg.BlockCapacity,
		RelayerFee:           s.cfg.RelayerFee,
		MinBond:              s.cfg.MinBond,
		MinChallengeStake:    s.cfg.MinChallengeStake,
		ChallengeWindow:      s.cfg.ChallengeWindow,
		UndepositCooldown:    s.cfg.UndepositCooldown,
	}, nil
}

func (s *spokeService) now() time.Time {
	return s.clock.Now()
}

func (s *spokeService) getState(ctx context.Context) (*domain.SpokeState, error) {
	state, err := s.repo.Spokes().Get(ctx, s.cfg.ID)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(
			fmt.Errorf("failed to get spoke state: %s", err),
		)
	}
	if state == nil {
		return nil, errors.INTERNAL_ERROR.New("spoke %s has no state", s.cfg.ID)
	}
	return state, nil
}

// settledState loads the spoke state after confirming every relayed record whose window is
// over at now.
func (s *spokeService) settledState(
	ctx context.Context, now time.Time,
) (*domain.SpokeState, error) {
	state, err := s.getState(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.settle(ctx, state, now.Unix()); err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to settle blocks: %s", err))
	}
	return state, nil
}

// settle walks the incoming records from the settled cursor. The cursor stops at the first
// height that is missing, still waiting for its window or held by a dispute against its relayer;
// records after it are settled anyway.
func (s *spokeService) settle(ctx context.Context, state *domain.SpokeState, now int64) error {
	cursor := state.SettledCursor
	advancing := true
	confirmed := 0

	for height := state.SettledCursor; height < state.RelayedUpTo; height++ {
		record, err := s.repo.IncomingBlocks().Get(ctx, s.cfg.ID, height)
		if err != nil {
			return err
		}
		if record == nil {
			advancing = false
			continue
		}
		if record.IsRelayed() {
			if !record.WindowExpired(now, s.cfg.ChallengeWindow) {
				advancing = false
				continue
			}
			ok, err := s.confirm(ctx, record)
			if err != nil {
				return err
			}
			if !ok {
				advancing = false
				continue
			}
			confirmed++
		}
		if advancing {
			cursor = height + 1
		}
	}

	if cursor == state.SettledCursor && confirmed == 0 {
		return nil
	}
	state.SettledCursor = cursor
	if err := s.repo.Spokes().Upsert(ctx, *state); err != nil {
		return err
	}
	if confirmed > 0 {
		log.Debugf("spoke %s: confirmed %d blocks", s.cfg.ID, confirmed)
	}
	return nil
}

// confirm settles the record unless its relayer is disputed or malicious.
func (s *spokeService) confirm(ctx context.Context, record *domain.IncomingBlock) (bool, error) {
	relayer, err := s.repo.Relayers().Get(ctx, s.cfg.ID, record.Relayer)
	if err != nil {
		return false, err
	}
	if relayer != nil && !relayer.CanSettle() {
		return false, nil
	}
	record.Status = domain.IncomingBlockConfirmed
	if err := s.repo.IncomingBlocks().Upsert(ctx, *record); err != nil {
		return false, err
	}
	if relayer == nil {
		return true, nil
	}
	relayer.Settled()
	return true, s.repo.Relayers().Upsert(ctx, *relayer)
}

// nextRelayHeight returns the lowest height from the relay cursor without a live record.
func (s *spokeService) nextRelayHeight(
	ctx context.Context, state *domain.SpokeState,
) (uint64, error) {
	height := state.RelayCursor
	for {
		record, err := s.repo.IncomingBlocks().Get(ctx, s.cfg.ID, height)
		if err != nil {
			return 0, err
		}
		if record == nil {
			return height, nil
		}
		height++
	}
}

func (s *spokeService) saveState(ctx context.Context, state *domain.SpokeState) error {
	if err := s.repo.Spokes().Upsert(ctx, *state); err != nil {
		return errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to save spoke state: %s", err))
	}
	return nil
}

func (s *spokeService) event(eventType domain.EventType, now time.Time) domain.SpokeEvent {
	return domain.SpokeEvent{Id: s.cfg.ID, Type: eventType, Timestamp: now.Unix()}
}

func (s *spokeService) publish(ctx context.Context, events ...domain.Event) {
	if err := s.repo.Events().Save(ctx, domain.SpokeTopic(s.cfg.ID), events...); err != nil {
		log.WithError(err).Warnf("spoke %s: failed to publish events", s.cfg.ID)
	}
}

func (s *spokeService) alert(topic ports.Topic, message map[string]any) {
	if s.alerts == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.alerts.Publish(ctx, topic, message); err != nil {
		log.WithError(err).WithField("topic", topic).Warn("failed to publish alert")
	}
}

func (s *spokeService) requireActive(state *domain.SpokeState) error {
	if state.IsActive() {
		return nil
	}
	return errors.SPOKE_NOT_ACTIVE.New("spoke %s is %s", state.ID, state.Status).
		WithMetadata(errors.SpokeStatusMetadata{SpokeID: state.ID, Status: state.Status.String()})
}

func (s *spokeService) refund(ctx context.Context, to string, amount uint64) {
	if amount == 0 {
		return
	}
	if err := s.bank.Transfer(ctx, s.cfg.Custody, to, amount); err != nil {
		log.WithError(err).Errorf("spoke %s: failed to refund %d to %s", s.cfg.ID, amount, to)
	}
}
