package application

import (
	"context"
	"fmt"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type rewardKind int

const (
	challengeReward rewardKind = iota
	compensationReward
)

func (k rewardKind) String() string {
	if k == compensationReward {
		return "compensation"
	}
	return "challenge reward"
}

func (s *spokeService) GetRewards(
	ctx context.Context, account string,
) (*domain.RewardBalance, error) {
	balance, err := s.repo.Rewards().Get(ctx, s.cfg.ID, account)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	balance.SpokeID, balance.Account = s.cfg.ID, account
	return balance, nil
}

func (s *spokeService) ClaimChallengeReward(ctx context.Context, caller string) (uint64, error) {
	return s.claimReward(ctx, caller, challengeReward)
}

func (s *spokeService) ClaimCompensation(ctx context.Context, caller string) (uint64, error) {
	return s.claimReward(ctx, caller, compensationReward)
}

func (s *spokeService) claimReward(
	ctx context.Context, caller string, kind rewardKind,
) (uint64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, err := s.settledState(ctx, s.now()); err != nil {
		return 0, err
	}

	balance, err := s.GetRewards(ctx, caller)
	if err != nil {
		return 0, err
	}

	var amount uint64
	switch kind {
	case compensationReward:
		amount, balance.Compensation = balance.Compensation, 0
	default:
		amount, balance.Challenge = balance.Challenge, 0
	}
	if amount == 0 {
		return 0, errors.NO_REWARD.New("there is no %s for %s", kind, caller).
			WithMetadata(errors.AccountMetadata{Account: caller})
	}

	if err := s.bank.Transfer(ctx, s.cfg.Custody, caller, amount); err != nil {
		return 0, errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to pay %s: %s", kind, err))
	}
	if err := s.repo.Rewards().Upsert(ctx, *balance); err != nil {
		if err := s.bank.Transfer(ctx, caller, s.cfg.Custody, amount); err != nil {
			log.WithError(err).Errorf("spoke %s: failed to take back %s of %s", s.cfg.ID, kind, caller)
		}
		return 0, errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to save rewards: %s", err))
	}

	log.Infof("spoke %s: %s claimed %s of %d", s.cfg.ID, caller, kind, amount)
	return amount, nil
}
