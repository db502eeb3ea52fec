package application

import (
	"context"
	"fmt"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func (s *spokeService) Deposit(ctx context.Context, caller string, amount uint64) error {
	if caller == "" {
		return errors.INVALID_ARGUMENT.New("missing caller")
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if _, err := s.settledState(ctx, s.now()); err != nil {
		return err
	}

	relayer, err := s.getRelayer(ctx, caller)
	if err != nil {
		return err
	}
	if relayer.IsMalicious() {
		return relayerNotAllowed(relayer, "relayer %s is malicious", caller)
	}
	if relayer.IsRegistered() {
		return errors.PRECONDITION_FAILED.New("caller cannot be a relayer: already bonded").
			WithMetadata(errors.CallerMetadata{Caller: caller})
	}
	if amount < s.cfg.MinBond {
		return errors.INSUFFICIENT_FUNDS.New("bond %d is below the minimum %d", amount, s.cfg.MinBond).
			WithMetadata(errors.AmountMetadata{
				Account: caller, Amount: amount, Required: s.cfg.MinBond,
			})
	}

	if err := relayer.Bonded(amount); err != nil {
		return errors.PRECONDITION_FAILED.Wrap(err)
	}
	if err := s.bank.Transfer(ctx, caller, s.cfg.Custody, amount); err != nil {
		return errors.INSUFFICIENT_FUNDS.Wrap(err).
			WithMetadata(errors.AmountMetadata{
				Account: caller, Amount: amount, Required: s.cfg.MinBond,
			})
	}
	if err := s.repo.Relayers().Upsert(ctx, *relayer); err != nil {
		s.refund(ctx, caller, amount)
		return errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to save relayer: %s", err))
	}

	log.Infof("spoke %s: relayer %s bonded %d", s.cfg.ID, caller, amount)
	return nil
}

func (s *spokeService) RequestUndeposit(ctx context.Context, caller string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.now()
	if _, err := s.settledState(ctx, now); err != nil {
		return err
	}

	relayer, err := s.getRelayer(ctx, caller)
	if err != nil {
		return err
	}
	if !relayer.IsRegistered() {
		return relayerNotAllowed(relayer, "caller is not a relayer")
	}
	if relayer.IsMalicious() {
		return relayerNotAllowed(relayer, "relayer %s is malicious", caller)
	}
	if err := relayer.RequestUndeposit(now.Unix()); err != nil {
		return errors.PRECONDITION_FAILED.Wrap(err).
			WithMetadata(errors.CallerMetadata{Caller: caller})
	}
	if err := s.repo.Relayers().Upsert(ctx, *relayer); err != nil {
		return errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to save relayer: %s", err))
	}

	log.Infof("spoke %s: relayer %s requested undeposit", s.cfg.ID, caller)
	return nil
}

func (s *spokeService) ClaimDeposit(ctx context.Context, caller string) (uint64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.now()
	if _, err := s.settledState(ctx, now); err != nil {
		return 0, err
	}

	relayer, err := s.getRelayer(ctx, caller)
	if err != nil {
		return 0, err
	}
	if relayer.Status != domain.RelayerUndepositing {
		return 0, errors.PRECONDITION_FAILED.New("relayer did not request undeposit").
			WithMetadata(errors.CallerMetadata{Caller: caller})
	}
	deadline := relayer.UndepositRequestedAt + int64(s.cfg.UndepositCooldown.Seconds())
	if now.Unix() < deadline {
		return 0, errors.TOO_EARLY.New("cooldown is not expired from the undepositing").
			WithMetadata(errors.TimingMetadata{Now: now.Unix(), Deadline: deadline})
	}

	bond := relayer.Release()
	if err := s.bank.Transfer(ctx, s.cfg.Custody, caller, bond); err != nil {
		return 0, errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to release bond: %s", err))
	}
	if err := s.repo.Relayers().Upsert(ctx, *relayer); err != nil {
		if err := s.bank.Transfer(ctx, caller, s.cfg.Custody, bond); err != nil {
			log.WithError(err).Errorf("spoke %s: failed to take back bond of %s", s.cfg.ID, caller)
		}
		return 0, errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to save relayer: %s", err))
	}

	log.Infof("spoke %s: relayer %s claimed back bond %d", s.cfg.ID, caller, bond)
	return bond, nil
}

func (s *spokeService) GetRelayer(ctx context.Context, address string) (*domain.Relayer, error) {
	return s.getRelayer(ctx, address)
}

func (s *spokeService) ListRelayers(ctx context.Context) ([]domain.Relayer, error) {
	relayers, err := s.repo.Relayers().List(ctx, s.cfg.ID)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	return relayers, nil
}

// getRelayer returns the record of address, a not registered one if unknown.
func (s *spokeService) getRelayer(ctx context.Context, address string) (*domain.Relayer, error) {
	relayer, err := s.repo.Relayers().Get(ctx, s.cfg.ID, address)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to get relayer: %s", err))
	}
	if relayer == nil {
		relayer = domain.NewRelayer(s.cfg.ID, address)
	}
	return relayer, nil
}

func relayerNotAllowed(relayer *domain.Relayer, msg string, args ...any) error {
	return errors.RELAYER_NOT_ALLOWED.New(msg, args...).
		WithMetadata(errors.RelayerMetadata{
			Relayer: relayer.Address, Status: relayer.Status.String(),
		})
}
