package application

import (
	"context"
	"fmt"
	"time"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ClaimAsset delivers the asset of a proven leaf of an incoming block to its receiver. The
// source end waits for the record to settle, the destination end delivers optimistically.
func (s *spokeService) ClaimAsset(ctx context.Context, caller string, req ClaimRequest) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.now()
	state, err := s.settledState(ctx, now)
	if err != nil {
		return err
	}

	if req.Fee < s.cfg.RelayerFee {
		return errors.INSUFFICIENT_FUNDS.New("fee payment is not enough").
			WithMetadata(errors.AmountMetadata{
				Account: caller, Amount: req.Fee, Required: s.cfg.RelayerFee,
			})
	}
	record, err := s.getIncomingBlock(ctx, req.Height)
	if err != nil {
		return err
	}
	if err := s.requireActive(state); err != nil {
		return err
	}
	if err := s.checkClaimable(record, now); err != nil {
		return err
	}
	if err := s.checkLeaf(ctx, record, req); err != nil {
		return err
	}
	if caller != req.Intent.Receiver {
		return errors.PRECONDITION_FAILED.New("caller is not the receiver").
			WithMetadata(errors.CallerMetadata{Caller: caller, Expected: req.Intent.Receiver})
	}
	if record.IsClaimed(req.Index) {
		return errors.ALREADY_CLAIMED.New("leaf %d of block %d is already claimed",
			req.Index, req.Height).
			WithMetadata(errors.ClaimMetadata{Height: req.Height, Index: req.Index})
	}

	intent := req.Intent
	consumed := domain.NewConsumedIntent(s.cfg.ID, req.Height, intent, req.Index, now.Unix())
	previous, err := s.repo.ConsumedIntents().Get(ctx, s.cfg.ID, consumed.Hash)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	if previous != nil {
		return errors.ALREADY_CLAIMED.New("intent %s is already claimed from block %d:%d",
			consumed.Hash, previous.Height, previous.Index).
			WithMetadata(errors.ClaimMetadata{Height: previous.Height, Index: previous.Index})
	}
	if err := s.repo.ConsumedIntents().Add(ctx, consumed); err != nil {
		return errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to consume intent: %s", err))
	}

	if err := s.bank.Transfer(ctx, caller, record.Relayer, req.Fee); err != nil {
		s.releaseIntent(ctx, consumed)
		return errors.INSUFFICIENT_FUNDS.Wrap(err).WithMetadata(errors.AmountMetadata{
			Account: caller, Amount: req.Fee, Required: s.cfg.RelayerFee,
		})
	}
	if err := s.policy.deliver(
		ctx, s.ledger, intent.RemoteContract, intent.Receiver, intent.TokenID,
	); err != nil {
		s.refundFee(ctx, record.Relayer, caller, req.Fee)
		s.releaseIntent(ctx, consumed)
		return errors.PRECONDITION_FAILED.Wrap(err).
			WithMetadata(errors.CallerMetadata{Caller: caller})
	}

	record.AddClaim(domain.Claim{
		Index:     req.Index,
		TokenID:   intent.TokenID,
		Contract:  intent.RemoteContract,
		Receiver:  intent.Receiver,
		ClaimedAt: now.Unix(),
	})
	if err := s.repo.IncomingBlocks().Upsert(ctx, *record); err != nil {
		if err := s.policy.revoke(
			ctx, s.ledger, intent.RemoteContract, intent.Receiver, intent.TokenID,
		); err != nil {
			log.WithError(err).Errorf("spoke %s: failed to revoke unsaved claim", s.cfg.ID)
		}
		s.refundFee(ctx, record.Relayer, caller, req.Fee)
		s.releaseIntent(ctx, consumed)
		return errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to save claim: %s", err))
	}

	s.metrics.add(ctx, s.metrics.claims, 1)
	log.Infof(
		"spoke %s: %s claimed %s#%d from block %d:%d",
		s.cfg.ID, caller, intent.RemoteContract, intent.TokenID, req.Height, req.Index,
	)

	s.publish(ctx, domain.AssetClaimed{
		SpokeEvent: s.event(domain.EventTypeAssetClaimed, now),
		Height:     req.Height,
		Index:      req.Index,
		TokenID:    intent.TokenID,
		Contract:   intent.RemoteContract,
		Receiver:   intent.Receiver,
	})
	return nil
}

// ResubmitIntent bridges back an asset delivered from a confirmed incoming record.
func (s *spokeService) ResubmitIntent(
	ctx context.Context, caller, receiver string, req ClaimRequest,
) (*IntentReceipt, error) {
	if caller == "" || receiver == "" {
		return nil, errors.INVALID_ARGUMENT.New("missing caller or receiver")
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.now()
	state, err := s.settledState(ctx, now)
	if err != nil {
		return nil, err
	}

	record, err := s.getIncomingBlock(ctx, req.Height)
	if err != nil {
		return nil, err
	}
	if err := s.checkLeaf(ctx, record, req); err != nil {
		return nil, err
	}

	owner, err := s.ledger.OwnerOf(ctx, req.Intent.RemoteContract, req.Intent.TokenID)
	if err != nil {
		return nil, errors.PRECONDITION_FAILED.Wrap(err).
			WithMetadata(errors.CallerMetadata{Caller: caller})
	}
	if owner != caller {
		return nil, errors.PRECONDITION_FAILED.New("owner is not the caller").
			WithMetadata(errors.CallerMetadata{Caller: caller, Expected: owner})
	}
	if record.IsRelayed() || record.IsChallenged() {
		return nil, errors.TOO_EARLY.New("block %d is not settled yet", req.Height).
			WithMetadata(s.timing(record, now))
	}
	if !record.IsConfirmed() {
		return nil, errors.PRECONDITION_FAILED.New("block %d is %s", req.Height, record.Status).
			WithMetadata(errors.CallerMetadata{Caller: caller})
	}

	intent := domain.TransferIntent{
		TokenID:        req.Intent.TokenID,
		Sender:         caller,
		Receiver:       receiver,
		LocalContract:  req.Intent.RemoteContract,
		RemoteContract: req.Intent.LocalContract,
	}
	return s.appendIntent(ctx, state, intent, now)
}

// checkClaimable applies the settlement rule of the local end to the record.
func (s *spokeService) checkClaimable(record *domain.IncomingBlock, now time.Time) error {
	if s.policy.optimistic() {
		if record.IsRelayed() || record.IsConfirmed() {
			return nil
		}
		return errors.PRECONDITION_FAILED.New(
			"incoming block %d is %s", record.Height, record.Status,
		)
	}
	if record.IsConfirmed() {
		return nil
	}
	if record.IsRelayed() || record.IsChallenged() {
		return errors.TOO_EARLY.New("block %d is not settled yet", record.Height).
			WithMetadata(s.timing(record, now))
	}
	return errors.PRECONDITION_FAILED.New("incoming block %d is %s", record.Height, record.Status)
}

// checkLeaf verifies the inclusion of the intent in the record and that it targets a contract of
// this end paired with its origin.
func (s *spokeService) checkLeaf(
	ctx context.Context, record *domain.IncomingBlock, req ClaimRequest,
) error {
	if err := req.Intent.Validate(); err != nil {
		return errors.INVALID_ARGUMENT.Wrap(err)
	}
	if !s.verifier.Verify(record.Root, req.Intent.Hash(), req.Index, req.Siblings) {
		return errors.INVALID_PROOF.New("proof is not correct").WithMetadata(errors.ProofMetadata{
			Height: req.Height, Index: req.Index, Root: record.Root.String(),
		})
	}
	origin, err := s.policy.pairOf(ctx, s.directory, req.Intent.RemoteContract)
	if err != nil || origin != req.Intent.LocalContract {
		return errors.PRECONDITION_FAILED.New(
			"contract %s is not paired with %s",
			req.Intent.RemoteContract, req.Intent.LocalContract,
		)
	}
	return nil
}

func (s *spokeService) refundFee(ctx context.Context, relayer, caller string, fee uint64) {
	if fee == 0 {
		return
	}
	if err := s.bank.Transfer(ctx, relayer, caller, fee); err != nil {
		log.WithError(err).Errorf("spoke %s: failed to refund fee to %s", s.cfg.ID, caller)
	}
}

func (s *spokeService) releaseIntent(ctx context.Context, intent domain.ConsumedIntent) {
	if err := s.repo.ConsumedIntents().Delete(ctx, intent.SpokeID, intent.Hash); err != nil {
		log.WithError(err).Errorf("spoke %s: failed to release intent %s", s.cfg.ID, intent.Hash)
	}
}
