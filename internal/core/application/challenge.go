package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/internal/core/ports"
	"github.com/arkade-os/nftbridge/pkg/errors"
	"github.com/arkade-os/nftbridge/pkg/merkle"
	log "github.com/sirupsen/logrus"
)

func (s *spokeService) RelayBlock(
	ctx context.Context, caller string, height uint64, root merkle.Hash,
) error {
	if root.IsZero() {
		return errors.INVALID_ARGUMENT.New("missing root")
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.now()
	state, err := s.settledState(ctx, now)
	if err != nil {
		return err
	}
	if err := s.requireActive(state); err != nil {
		return err
	}

	relayer, err := s.getRelayer(ctx, caller)
	if err != nil {
		return err
	}
	if !relayer.CanRelay() {
		return relayerNotAllowed(relayer, "caller is not an active relayer")
	}

	existing, err := s.repo.IncomingBlocks().Get(ctx, s.cfg.ID, height)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	if existing != nil {
		return errors.ALREADY_EXISTS.New("block %d is already relayed", height)
	}
	next, err := s.nextRelayHeight(ctx, state)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	if height != next {
		return errors.PRECONDITION_FAILED.New(
			"wrong call order: expected block %d, got %d", next, height,
		).WithMetadata(errors.CallerMetadata{Caller: caller})
	}

	record := domain.NewIncomingBlock(s.cfg.ID, height, root, caller, now.Unix())
	relayer.Relayed()
	state.Relayed(height)

	if err := s.repo.IncomingBlocks().Upsert(ctx, *record); err != nil {
		return errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to save incoming block: %s", err))
	}
	if err := s.repo.Relayers().Upsert(ctx, *relayer); err != nil {
		return errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to save relayer: %s", err))
	}
	if err := s.saveState(ctx, state); err != nil {
		return err
	}

	s.metrics.add(ctx, s.metrics.relays, 1)
	log.Infof("spoke %s: relayer %s relayed block %d with root %s", s.cfg.ID, caller, height, root)

	s.publish(ctx, domain.BlockRelayed{
		SpokeEvent:  s.event(domain.EventTypeBlockRelayed, now),
		Height:      height,
		Root:        root,
		Relayer:     caller,
		SubmittedAt: record.SubmittedAt,
	})
	return nil
}

func (s *spokeService) ChallengeBlock(
	ctx context.Context, caller string, height uint64, stake uint64,
) (*domain.Challenge, error) {
	if caller == "" {
		return nil, errors.INVALID_ARGUMENT.New("missing caller")
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.now()
	state, err := s.settledState(ctx, now)
	if err != nil {
		return nil, err
	}

	record, err := s.getIncomingBlock(ctx, height)
	if err != nil {
		return nil, err
	}
	if record.IsChallenged() {
		return nil, errors.ALREADY_EXISTS.New("block %d is already challenged", height)
	}
	if (record.IsRelayed() || record.IsConfirmed()) &&
		record.WindowExpired(now.Unix(), s.cfg.ChallengeWindow) {
		return nil, errors.TOO_LATE.New("challenging time window is expired").
			WithMetadata(s.timing(record, now))
	}
	if !record.IsRelayed() {
		return nil, errors.PRECONDITION_FAILED.New("block %d is %s", height, record.Status).
			WithMetadata(errors.CallerMetadata{Caller: caller})
	}
	if caller == record.Relayer {
		return nil, errors.PRECONDITION_FAILED.New("relayer cannot challenge its own block").
			WithMetadata(errors.CallerMetadata{Caller: caller})
	}
	if stake < s.cfg.MinChallengeStake {
		return nil, errors.INSUFFICIENT_FUNDS.New(
			"stake %d is below the minimum %d", stake, s.cfg.MinChallengeStake,
		).WithMetadata(errors.AmountMetadata{
			Account: caller, Amount: stake, Required: s.cfg.MinChallengeStake,
		})
	}

	relayer, err := s.getRelayer(ctx, record.Relayer)
	if err != nil {
		return nil, err
	}

	if err := s.bank.Transfer(ctx, caller, s.cfg.Custody, stake); err != nil {
		return nil, errors.INSUFFICIENT_FUNDS.Wrap(err).WithMetadata(errors.AmountMetadata{
			Account: caller, Amount: stake, Required: s.cfg.MinChallengeStake,
		})
	}

	challenge := domain.NewChallenge(s.cfg.ID, height, caller, record.Relayer, stake, now)
	record.Status = domain.IncomingBlockChallenged
	record.ChallengeID = challenge.ID
	relayer.Challenged()
	state.ChallengeOpened()

	if err := s.repo.Challenges().Upsert(ctx, *challenge); err != nil {
		s.refund(ctx, caller, stake)
		return nil, errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to save challenge: %s", err))
	}
	if err := s.repo.IncomingBlocks().Upsert(ctx, *record); err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to save incoming block: %s", err))
	}
	if err := s.repo.Relayers().Upsert(ctx, *relayer); err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to save relayer: %s", err))
	}
	if err := s.saveState(ctx, state); err != nil {
		return nil, err
	}

	s.metrics.add(ctx, s.metrics.challenges, 1)
	log.Warnf(
		"spoke %s: %s challenged block %d relayed by %s", s.cfg.ID, caller, height, record.Relayer,
	)

	s.publish(ctx, domain.BlockChallenged{
		SpokeEvent:  s.event(domain.EventTypeBlockChallenged, now),
		Height:      height,
		ChallengeID: challenge.ID,
		Challenger:  caller,
		Stake:       stake,
	})
	s.alert(ports.ChallengeOpened, map[string]any{
		"spoke_id":   s.cfg.ID,
		"height":     height,
		"challenger": caller,
		"relayer":    record.Relayer,
		"stake":      stake,
	})
	return challenge, nil
}

// SendProof asserts the root of the local block at height to the counterpart, resolving the
// dispute open over it there.
func (s *spokeService) SendProof(
	ctx context.Context, caller string, height uint64,
) (*domain.ProofResponse, error) {
	s.hubLock.RLock()
	hub, creds, counterpart := s.hub, s.creds, s.counterpartID
	s.hubLock.RUnlock()
	if hub == nil {
		return nil, errors.PRECONDITION_FAILED.New("spoke %s is not paired", s.cfg.ID).
			WithMetadata(errors.CallerMetadata{Caller: caller})
	}

	req := domain.ProofRequest{Height: height}
	block, err := s.repo.Blocks().Get(ctx, s.cfg.ID, height)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	if block != nil && block.Sealed {
		req.Exists = true
		req.Root = block.Root
	}

	resp, err := hub.Deliver(ctx, creds, req)
	if err != nil {
		return nil, err
	}
	log.Infof(
		"spoke %s: proof of block %d sent by %s to %s: %s",
		s.cfg.ID, height, caller, counterpart, resp.Outcome,
	)
	return resp, nil
}

func (s *spokeService) HandleProof(
	ctx context.Context, from string, req domain.ProofRequest,
) (*domain.ProofResponse, error) {
	s.hubLock.RLock()
	counterpart := s.counterpartID
	s.hubLock.RUnlock()
	if counterpart == "" || from != counterpart {
		return nil, errors.UNAUTHENTICATED.New("proof not sent by the counterpart").
			WithMetadata(errors.AccountMetadata{Account: from})
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.now()
	state, err := s.settledState(ctx, now)
	if err != nil {
		return nil, err
	}

	record, err := s.repo.IncomingBlocks().Get(ctx, s.cfg.ID, req.Height)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	if record == nil {
		return nil, errors.TOO_EARLY.New("block %d is not relayed yet", req.Height).
			WithMetadata(errors.TimingMetadata{Height: req.Height, Now: now.Unix()})
	}
	if !record.IsChallenged() {
		if record.WindowExpired(now.Unix(), s.cfg.ChallengeWindow) {
			return nil, errors.TOO_LATE.New("false challenging: no open challenge on block %d",
				req.Height).WithMetadata(s.timing(record, now))
		}
		return nil, errors.TOO_EARLY.New("challenging time window is not expired yet").
			WithMetadata(s.timing(record, now))
	}

	challenge, err := s.repo.Challenges().GetPending(ctx, s.cfg.ID, req.Height)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	if challenge == nil {
		return nil, errors.INTERNAL_ERROR.New("block %d has no pending challenge", req.Height)
	}
	relayer, err := s.getRelayer(ctx, record.Relayer)
	if err != nil {
		return nil, err
	}

	if !req.Exists || req.Root != record.Root {
		err = s.resolveFraud(ctx, state, record, challenge, relayer, now)
	} else {
		err = s.resolveFalseChallenge(ctx, state, record, challenge, relayer, now)
	}
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.ChallengeResolved{
		SpokeEvent:  s.event(domain.EventTypeChallengeResolved, now),
		Height:      req.Height,
		ChallengeID: challenge.ID,
		Outcome:     challenge.Outcome,
	})
	return &domain.ProofResponse{
		Height:      req.Height,
		Outcome:     challenge.Outcome,
		ChallengeID: challenge.ID,
	}, nil
}

// resolveFraud slashes the relayer and drops the proven record together with every other
// unsettled record of the same relayer. Every asset delivered from them is taken back and its
// holder compensated. Either all of it is applied or none.
func (s *spokeService) resolveFraud(
	ctx context.Context, state *domain.SpokeState, record *domain.IncomingBlock,
	challenge *domain.Challenge, relayer *domain.Relayer, now time.Time,
) error {
	invalidated, err := s.unsettledBlocksOf(ctx, relayer.Address, record.Height)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	records := append([]*domain.IncomingBlock{record}, invalidated...)

	revocations, err := s.planRollback(ctx, records)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to plan rollback: %s", err))
	}
	victims := make([]string, 0, len(revocations))
	for _, r := range revocations {
		victims = append(victims, r.holder)
	}
	sort.Strings(victims)

	original := newResolution(state, challenge, relayer, records).snapshot()

	forfeited := relayer.FraudProven()
	outcome := s.slashing.Split(forfeited, challenge.Stake, victims)

	credits, balances, err := s.creditOutcome(ctx, challenge.Challenger, outcome)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	original.credits = balances

	heights := make([]uint64, 0, len(invalidated))
	for _, other := range invalidated {
		other.Status = domain.IncomingBlockMalicious
		relayer.Settled()
		state.MarkMalicious(other.Height)
		heights = append(heights, other.Height)
	}
	record.Status = domain.IncomingBlockMalicious
	challenge.Resolve(domain.ChallengeFraudProven, outcome.ChallengerPayout, now.Unix())
	state.Reserve += outcome.Reserve
	state.MarkMalicious(record.Height)
	state.ChallengeClosed()

	updated := newResolution(state, challenge, relayer, records)
	updated.credits = credits

	undo := newUndoLog(s.cfg.ID)
	if err := s.applyRollback(ctx, undo, revocations); err != nil {
		undo.revert(ctx)
		return errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to roll back claims: %s", err))
	}
	if err := s.saveResolution(ctx, undo, updated, original); err != nil {
		undo.revert(ctx)
		return errors.INTERNAL_ERROR.Wrap(err)
	}

	s.metrics.add(ctx, s.metrics.frauds, 1)
	s.metrics.add(ctx, s.metrics.slashed, forfeited)
	log.Warnf(
		"spoke %s: fraud proven on block %d, relayer %s forfeited %d, %d victims, "+
			"invalidated blocks %v",
		s.cfg.ID, record.Height, relayer.Address, forfeited, len(victims), heights,
	)

	s.publish(ctx, domain.RelayerSlashed{
		SpokeEvent:  s.event(domain.EventTypeRelayerSlashed, now),
		Height:      record.Height,
		Relayer:     relayer.Address,
		Forfeited:   forfeited,
		Victims:     victims,
		Invalidated: heights,
	})
	s.alert(ports.FraudProven, map[string]any{
		"spoke_id":          s.cfg.ID,
		"height":            record.Height,
		"relayer":           relayer.Address,
		"challenger":        challenge.Challenger,
		"forfeited":         forfeited,
		"challenger_payout": outcome.ChallengerPayout,
		"victims":           victims,
		"invalidated":       heights,
	})
	return nil
}

// unsettledBlocksOf returns the relayed records of the relayer other than the one at height,
// by height.
func (s *spokeService) unsettledBlocksOf(
	ctx context.Context, relayer string, height uint64,
) ([]*domain.IncomingBlock, error) {
	relayed, err := s.repo.IncomingBlocks().GetByStatus(
		ctx, s.cfg.ID, domain.IncomingBlockRelayed,
	)
	if err != nil {
		return nil, err
	}
	records := make([]*domain.IncomingBlock, 0, len(relayed))
	for i := range relayed {
		if relayed[i].Relayer != relayer || relayed[i].Height == height {
			continue
		}
		records = append(records, &relayed[i])
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Height < records[j].Height })
	return records, nil
}

// revocation is an asset to take back from its current holder, with the consumed intents that
// delivered it.
type revocation struct {
	height   uint64
	claim    domain.Claim
	holder   string
	consumed []domain.ConsumedIntent
}

// planRollback resolves the holder of every asset delivered from the records without changing
// anything. It fails if any of them cannot be found.
func (s *spokeService) planRollback(
	ctx context.Context, records []*domain.IncomingBlock,
) ([]revocation, error) {
	revocations := make([]revocation, 0)
	for _, record := range records {
		indexes := make([]uint32, 0, len(record.Claims))
		for index := range record.Claims {
			indexes = append(indexes, index)
		}
		sort.Slice(indexes, func(i, j int) bool { return indexes[i] < indexes[j] })

		for _, index := range indexes {
			claim := record.Claims[index]
			holder, err := s.ledger.OwnerOf(ctx, claim.Contract, claim.TokenID)
			if err != nil {
				return nil, fmt.Errorf(
					"failed to get holder of claim %d:%d: %s", record.Height, index, err,
				)
			}
			consumed, err := s.repo.ConsumedIntents().GetByToken(
				ctx, s.cfg.ID, claim.Contract, claim.TokenID,
			)
			if err != nil {
				return nil, fmt.Errorf(
					"failed to get consumed intents of claim %d:%d: %s", record.Height, index, err,
				)
			}
			r := revocation{height: record.Height, claim: claim, holder: holder}
			for _, intent := range consumed {
				if intent.Height == record.Height && intent.Index == index {
					r.consumed = append(r.consumed, intent)
				}
			}
			revocations = append(revocations, r)
		}
	}
	return revocations, nil
}

// applyRollback takes back the planned assets and frees the intents that delivered them.
func (s *spokeService) applyRollback(
	ctx context.Context, undo *undoLog, revocations []revocation,
) error {
	consumed := s.repo.ConsumedIntents()
	for _, r := range revocations {
		contract, holder, id := r.claim.Contract, r.holder, r.claim.TokenID
		if err := undo.do(ctx,
			func(ctx context.Context) error {
				return s.policy.revoke(ctx, s.ledger, contract, holder, id)
			},
			func(ctx context.Context) error {
				return s.policy.deliver(ctx, s.ledger, contract, holder, id)
			},
		); err != nil {
			return fmt.Errorf("claim %d:%d: %s", r.height, r.claim.Index, err)
		}
		for _, intent := range r.consumed {
			if err := undo.do(ctx,
				func(ctx context.Context) error {
					return consumed.Delete(ctx, intent.SpokeID, intent.Hash)
				},
				func(ctx context.Context) error {
					return consumed.Add(ctx, intent)
				},
			); err != nil {
				return fmt.Errorf("intent %s: %s", intent.Hash, err)
			}
		}
	}
	return nil
}

// creditOutcome adds the split of a forfeited bond to the stored balances. It returns the
// credited balances sorted by account, and the stored ones in the same order.
func (s *spokeService) creditOutcome(
	ctx context.Context, challenger string, outcome domain.SlashingOutcome,
) ([]domain.RewardBalance, []domain.RewardBalance, error) {
	stored := map[string]domain.RewardBalance{}
	credits := map[string]domain.RewardBalance{}
	credit := func(account string, challengePart, compensation uint64) error {
		balance, ok := credits[account]
		if !ok {
			current, err := s.repo.Rewards().Get(ctx, s.cfg.ID, account)
			if err != nil {
				return err
			}
			balance = *current
			balance.SpokeID, balance.Account = s.cfg.ID, account
			stored[account] = balance
		}
		balance.Challenge += challengePart
		balance.Compensation += compensation
		credits[account] = balance
		return nil
	}
	if err := credit(challenger, outcome.ChallengerPayout, 0); err != nil {
		return nil, nil, err
	}
	for victim, amount := range outcome.Compensation {
		if err := credit(victim, 0, amount); err != nil {
			return nil, nil, err
		}
	}

	accounts := make([]string, 0, len(credits))
	for account := range credits {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)
	updated := make([]domain.RewardBalance, 0, len(accounts))
	original := make([]domain.RewardBalance, 0, len(accounts))
	for _, account := range accounts {
		updated = append(updated, credits[account])
		original = append(original, stored[account])
	}
	return updated, original, nil
}

// resolveFalseChallenge confirms the record and pays the stake of the challenger to the
// relayer.
func (s *spokeService) resolveFalseChallenge(
	ctx context.Context, state *domain.SpokeState, record *domain.IncomingBlock,
	challenge *domain.Challenge, relayer *domain.Relayer, now time.Time,
) error {
	balance, err := s.repo.Rewards().Get(ctx, s.cfg.ID, relayer.Address)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	balance.SpokeID, balance.Account = s.cfg.ID, relayer.Address

	original := newResolution(state, challenge, relayer, []*domain.IncomingBlock{record}).
		snapshot()
	original.credits = []domain.RewardBalance{*balance}

	credited := *balance
	credited.Challenge += challenge.Stake
	record.Status = domain.IncomingBlockConfirmed
	challenge.Resolve(domain.ChallengeFalse, 0, now.Unix())
	relayer.ChallengeDismissed()
	state.ChallengeClosed()

	updated := newResolution(state, challenge, relayer, []*domain.IncomingBlock{record})
	updated.credits = []domain.RewardBalance{credited}

	undo := newUndoLog(s.cfg.ID)
	if err := s.saveResolution(ctx, undo, updated, original); err != nil {
		undo.revert(ctx)
		return errors.INTERNAL_ERROR.Wrap(err)
	}

	log.Infof(
		"spoke %s: false challenge on block %d, stake %d credited to relayer %s",
		s.cfg.ID, record.Height, challenge.Stake, relayer.Address,
	)
	return nil
}

// resolution gathers what a dispute outcome writes. credits and records are paired by
// position with the ones of the snapshot they replace.
type resolution struct {
	state     *domain.SpokeState
	challenge *domain.Challenge
	relayer   *domain.Relayer
	records   []*domain.IncomingBlock
	credits   []domain.RewardBalance
}

func newResolution(
	state *domain.SpokeState, challenge *domain.Challenge, relayer *domain.Relayer,
	records []*domain.IncomingBlock,
) resolution {
	return resolution{state: state, challenge: challenge, relayer: relayer, records: records}
}

func (r resolution) snapshot() resolution {
	state, challenge, relayer := *r.state, *r.challenge, *r.relayer
	records := make([]*domain.IncomingBlock, 0, len(r.records))
	for _, record := range r.records {
		records = append(records, record.Clone())
	}
	return resolution{
		state:     &state,
		challenge: &challenge,
		relayer:   &relayer,
		records:   records,
		credits:   append([]domain.RewardBalance(nil), r.credits...),
	}
}

// saveResolution writes the updated entities, recording how to restore the original ones.
func (s *spokeService) saveResolution(
	ctx context.Context, undo *undoLog, updated, original resolution,
) error {
	rewards := s.repo.Rewards()
	for i, balance := range updated.credits {
		prev := original.credits[i]
		if err := undo.do(ctx,
			func(ctx context.Context) error { return rewards.Upsert(ctx, balance) },
			func(ctx context.Context) error { return rewards.Upsert(ctx, prev) },
		); err != nil {
			return fmt.Errorf("failed to save rewards: %s", err)
		}
	}

	challenges := s.repo.Challenges()
	if err := undo.do(ctx,
		func(ctx context.Context) error { return challenges.Upsert(ctx, *updated.challenge) },
		func(ctx context.Context) error { return challenges.Upsert(ctx, *original.challenge) },
	); err != nil {
		return fmt.Errorf("failed to save challenge: %s", err)
	}

	blocks := s.repo.IncomingBlocks()
	for i, record := range updated.records {
		prev := original.records[i]
		if err := undo.do(ctx,
			func(ctx context.Context) error { return blocks.Upsert(ctx, *record) },
			func(ctx context.Context) error { return blocks.Upsert(ctx, *prev) },
		); err != nil {
			return fmt.Errorf("failed to save incoming block: %s", err)
		}
	}

	relayers := s.repo.Relayers()
	if err := undo.do(ctx,
		func(ctx context.Context) error { return relayers.Upsert(ctx, *updated.relayer) },
		func(ctx context.Context) error { return relayers.Upsert(ctx, *original.relayer) },
	); err != nil {
		return fmt.Errorf("failed to save relayer: %s", err)
	}

	spokes := s.repo.Spokes()
	if err := undo.do(ctx,
		func(ctx context.Context) error { return spokes.Upsert(ctx, *updated.state) },
		func(ctx context.Context) error { return spokes.Upsert(ctx, *original.state) },
	); err != nil {
		return fmt.Errorf("failed to save spoke state: %s", err)
	}
	return nil
}

func (s *spokeService) GetIncomingBlock(
	ctx context.Context, height uint64,
) (*domain.IncomingBlock, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, err := s.settledState(ctx, s.now()); err != nil {
		return nil, err
	}
	return s.getIncomingBlock(ctx, height)
}

func (s *spokeService) GetArchivedIncomingBlocks(
	ctx context.Context, height uint64,
) ([]domain.ArchivedIncomingBlock, error) {
	archived, err := s.repo.IncomingBlocks().GetArchived(ctx, s.cfg.ID, height)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	return archived, nil
}

func (s *spokeService) GetChallenges(
	ctx context.Context, height uint64,
) ([]domain.Challenge, error) {
	challenges, err := s.repo.Challenges().GetByHeight(ctx, s.cfg.ID, height)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	return challenges, nil
}

func (s *spokeService) getIncomingBlock(
	ctx context.Context, height uint64,
) (*domain.IncomingBlock, error) {
	record, err := s.repo.IncomingBlocks().Get(ctx, s.cfg.ID, height)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	if record == nil {
		return nil, errors.NOT_FOUND.New("incoming block %d has no relayed state", height).
			WithMetadata(errors.HeightMetadata{SpokeID: s.cfg.ID, Height: height})
	}
	return record, nil
}

func (s *spokeService) timing(record *domain.IncomingBlock, now time.Time) errors.TimingMetadata {
	return errors.TimingMetadata{
		Height:   record.Height,
		Now:      now.Unix(),
		Deadline: record.WindowEnd(s.cfg.ChallengeWindow),
	}
}
