package application

import (
	"context"
	"fmt"
	"time"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/pkg/errors"
	"github.com/arkade-os/nftbridge/pkg/merkle"
	log "github.com/sirupsen/logrus"
)

func (s *spokeService) AddIntent(
	ctx context.Context, caller string, tokenID uint64, contract, receiver string,
) (*IntentReceipt, error) {
	if caller == "" || contract == "" || receiver == "" {
		return nil, errors.INVALID_ARGUMENT.New("missing caller, contract or receiver")
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.now()
	state, err := s.settledState(ctx, now)
	if err != nil {
		return nil, err
	}

	remote, err := s.policy.pairOf(ctx, s.directory, contract)
	if err != nil {
		return nil, errors.PRECONDITION_FAILED.Wrap(err).
			WithMetadata(errors.CallerMetadata{Caller: caller})
	}
	if err := s.checkNoPendingClaim(ctx, contract, tokenID, now); err != nil {
		return nil, err
	}

	intent := domain.TransferIntent{
		TokenID:        tokenID,
		Sender:         caller,
		Receiver:       receiver,
		LocalContract:  contract,
		RemoteContract: remote,
	}
	return s.appendIntent(ctx, state, intent, now)
}

// appendIntent takes custody of the asset and adds the intent to the open block, sealing it when
// full.
func (s *spokeService) appendIntent(
	ctx context.Context, state *domain.SpokeState, intent domain.TransferIntent, now time.Time,
) (*IntentReceipt, error) {
	block, err := s.repo.Blocks().Get(ctx, s.cfg.ID, state.OpenHeight)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to get open block: %s", err))
	}
	if block == nil {
		block = domain.NewBlock(s.cfg.ID, state.OpenHeight)
	}
	if len(block.Intents) == 0 {
		block.OpenedAt = now.Unix()
	}

	index, err := block.Append(intent, s.cfg.BlockCapacity)
	if err != nil {
		return nil, errors.INVALID_ARGUMENT.Wrap(err)
	}

	receipt := &IntentReceipt{Intent: intent, Height: block.Height, Index: index}
	if block.IsFull(s.cfg.BlockCapacity) {
		root, err := block.Seal(now.Unix())
		if err != nil {
			return nil, errors.INTERNAL_ERROR.Wrap(err)
		}
		receipt.Root = root
		receipt.Sealed = true
	}

	if err := s.policy.takeCustody(
		ctx, s.ledger, intent.LocalContract, intent.Sender, intent.TokenID,
	); err != nil {
		return nil, errors.PRECONDITION_FAILED.Wrap(err).
			WithMetadata(errors.CallerMetadata{Caller: intent.Sender})
	}
	// Once the asset leaves this domain the intents that delivered it may be redeemed again.
	if err := s.repo.ConsumedIntents().DeleteByToken(
		ctx, s.cfg.ID, intent.LocalContract, intent.TokenID,
	); err != nil {
		s.returnAsset(ctx, intent)
		return nil, errors.INTERNAL_ERROR.Wrap(
			fmt.Errorf("failed to release consumed intents: %s", err),
		)
	}

	if err := s.repo.Blocks().Upsert(ctx, *block); err != nil {
		s.returnAsset(ctx, intent)
		return nil, errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to save block: %s", err))
	}
	if receipt.Sealed {
		state.OpenHeight++
		if err := s.saveState(ctx, state); err != nil {
			return nil, err
		}
	}

	s.metrics.add(ctx, s.metrics.intents, 1)
	log.Debugf("spoke %s: added intent %s at %d:%d", s.cfg.ID, intent, block.Height, index)

	events := []domain.Event{domain.IntentAdded{
		SpokeEvent: s.event(domain.EventTypeIntentAdded, now),
		Height:     block.Height,
		Index:      index,
		Intent:     intent,
	}}
	if receipt.Sealed {
		events = append(events, s.sealedEvent(block, now))
		log.Infof("spoke %s: sealed block %d with root %s", s.cfg.ID, block.Height, block.Root)
	}
	s.publish(ctx, events...)

	return receipt, nil
}

func (s *spokeService) returnAsset(ctx context.Context, intent domain.TransferIntent) {
	if err := s.policy.deliver(
		ctx, s.ledger, intent.LocalContract, intent.Sender, intent.TokenID,
	); err != nil {
		log.WithError(err).Errorf(
			"spoke %s: failed to return asset of intent %s", s.cfg.ID, intent,
		)
	}
}

// checkNoPendingClaim rejects bridging back an asset delivered by a record that can still be
// rolled back.
func (s *spokeService) checkNoPendingClaim(
	ctx context.Context, contract string, tokenID uint64, now time.Time,
) error {
	if !s.policy.optimistic() {
		return nil
	}
	for _, status := range []domain.IncomingBlockStatus{
		domain.IncomingBlockRelayed, domain.IncomingBlockChallenged,
	} {
		records, err := s.repo.IncomingBlocks().GetByStatus(ctx, s.cfg.ID, status)
		if err != nil {
			return errors.INTERNAL_ERROR.Wrap(err)
		}
		for _, record := range records {
			for _, claim := range record.Claims {
				if claim.Contract != contract || claim.TokenID != tokenID {
					continue
				}
				return errors.TOO_EARLY.New(
					"challenging time window is not expired yet",
				).WithMetadata(errors.TimingMetadata{
					Height:   record.Height,
					Now:      now.Unix(),
					Deadline: record.WindowEnd(s.cfg.ChallengeWindow),
				})
			}
		}
	}
	return nil
}

// SealBlock seals the open block at height. Sealed blocks return their root.
func (s *spokeService) SealBlock(ctx context.Context, height uint64) (merkle.Hash, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.now()
	state, err := s.settledState(ctx, now)
	if err != nil {
		return merkle.ZeroHash, err
	}
	if height > state.OpenHeight {
		return merkle.ZeroHash, s.blockNotFound(height)
	}

	block, err := s.repo.Blocks().Get(ctx, s.cfg.ID, height)
	if err != nil {
		return merkle.ZeroHash, errors.INTERNAL_ERROR.Wrap(err)
	}
	if block == nil || len(block.Intents) == 0 {
		return merkle.ZeroHash, errors.PRECONDITION_FAILED.New("block %d has no intents", height)
	}
	if block.Sealed {
		return block.Root, nil
	}

	root, err := block.Seal(now.Unix())
	if err != nil {
		return merkle.ZeroHash, errors.INTERNAL_ERROR.Wrap(err)
	}
	if err := s.repo.Blocks().Upsert(ctx, *block); err != nil {
		return merkle.ZeroHash, errors.INTERNAL_ERROR.Wrap(
			fmt.Errorf("failed to save block: %s", err),
		)
	}
	state.OpenHeight++
	if err := s.saveState(ctx, state); err != nil {
		return merkle.ZeroHash, err
	}

	log.Infof("spoke %s: sealed block %d with root %s", s.cfg.ID, height, root)
	s.publish(ctx, s.sealedEvent(block, now))
	return root, nil
}

func (s *spokeService) GetBlock(ctx context.Context, height uint64) (*domain.Block, error) {
	block, err := s.repo.Blocks().Get(ctx, s.cfg.ID, height)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	if block == nil {
		return nil, s.blockNotFound(height)
	}
	return block, nil
}

func (s *spokeService) ListBlocks(
	ctx context.Context, from, to uint64,
) ([]domain.Block, error) {
	if to <= from {
		return nil, errors.INVALID_ARGUMENT.New("invalid range [%d, %d)", from, to)
	}
	blocks, err := s.repo.Blocks().GetRange(ctx, s.cfg.ID, from, to)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	return blocks, nil
}

func (s *spokeService) GetProof(
	ctx context.Context, height uint64, index uint32,
) ([]merkle.Hash, error) {
	block, err := s.GetBlock(ctx, height)
	if err != nil {
		return nil, err
	}
	proof, err := block.Proof(index)
	if err != nil {
		return nil, errors.INVALID_ARGUMENT.Wrap(err)
	}
	return proof, nil
}

// VerifyProof checks a leaf against an outgoing sealed block. Open blocks verify nothing.
func (s *spokeService) VerifyProof(
	ctx context.Context, height uint64, intent domain.TransferIntent, index uint32,
	siblings []merkle.Hash,
) (bool, error) {
	block, err := s.GetBlock(ctx, height)
	if err != nil {
		return false, err
	}
	if !block.Sealed {
		return false, nil
	}
	return s.verifier.Verify(block.Root, intent.Hash(), index, siblings), nil
}

func (s *spokeService) sealedEvent(block *domain.Block, now time.Time) domain.Event {
	return domain.BlockSealed{
		SpokeEvent: s.event(domain.EventTypeBlockSealed, now),
		Height:     block.Height,
		Root:       block.Root,
		Size:       len(block.Intents),
	}
}

func (s *spokeService) blockNotFound(height uint64) error {
	return errors.NOT_FOUND.New("block %d not found", height).
		WithMetadata(errors.HeightMetadata{SpokeID: s.cfg.ID, Height: height})
}
