package application

import (
	"context"
	"fmt"
	"sort"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/internal/core/ports"
	"github.com/arkade-os/nftbridge/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Restore archives the malicious records and reopens relaying from the first of them.
func (s *spokeService) Restore(ctx context.Context, caller string) (*RestoreResult, error) {
	if caller != s.cfg.Operator {
		return nil, errors.PRECONDITION_FAILED.New("caller is not the operator").
			WithMetadata(errors.CallerMetadata{Caller: caller, Expected: s.cfg.Operator})
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.now()
	state, err := s.settledState(ctx, now)
	if err != nil {
		return nil, err
	}
	if !state.CanRestore() {
		if state.NumberOfChallenges > 0 {
			return nil, errors.PRECONDITION_FAILED.New(
				"spoke %s has %d open challenges", s.cfg.ID, state.NumberOfChallenges,
			).WithMetadata(errors.CallerMetadata{Caller: caller})
		}
		return nil, errors.PRECONDITION_FAILED.New("spoke %s has nothing to restore", s.cfg.ID).
			WithMetadata(errors.CallerMetadata{Caller: caller})
	}

	records, err := s.repo.IncomingBlocks().GetByStatus(
		ctx, s.cfg.ID, domain.IncomingBlockMalicious,
	)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	heights := make([]uint64, 0, len(records))
	for _, record := range records {
		heights = append(heights, record.Height)
	}
	sort.Slice(heights, func(i, j int) bool { return heights[i] < heights[j] })

	from := state.FirstMaliciousHeight
	if err := s.repo.IncomingBlocks().Archive(ctx, s.cfg.ID, heights, now.Unix()); err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to archive blocks: %s", err))
	}
	if err := state.Restore(); err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	if err := s.saveState(ctx, state); err != nil {
		return nil, err
	}

	log.Infof(
		"spoke %s: restored from block %d, archived %d records", s.cfg.ID, from, len(heights),
	)

	s.publish(ctx, domain.SpokeRestored{
		SpokeEvent: s.event(domain.EventTypeSpokeRestored, now),
		FromHeight: from,
		Archived:   heights,
	})
	s.alert(ports.SpokeRestored, map[string]any{
		"spoke_id":    s.cfg.ID,
		"from_height": from,
		"archived":    heights,
	})
	return &RestoreResult{FromHeight: from, Archived: heights}, nil
}
