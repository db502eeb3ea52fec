package application

import (
	"context"

	log "github.com/sirupsen/logrus"
)

type step func(ctx context.Context) error

// undoLog keeps the inverse of every step applied by an update spanning the ledger and the
// stores, so that a failure halfway leaves nothing behind.
type undoLog struct {
	spokeID string
	reverts []step
}

func newUndoLog(spokeID string) *undoLog {
	return &undoLog{spokeID: spokeID}
}

// do applies the step and records its inverse. A failed step records nothing.
func (u *undoLog) do(ctx context.Context, apply, revert step) error {
	if err := apply(ctx); err != nil {
		return err
	}
	u.reverts = append(u.reverts, revert)
	return nil
}

// revert undoes the applied steps, last first.
func (u *undoLog) revert(ctx context.Context) {
	for i := len(u.reverts) - 1; i >= 0; i-- {
		if err := u.reverts[i](ctx); err != nil {
			log.WithError(err).Errorf("spoke %s: failed to revert update", u.spokeID)
		}
	}
	u.reverts = nil
}
