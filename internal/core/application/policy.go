package application

import (
	"context"
	"fmt"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/internal/core/ports"
)

// policy captures what differs between the two ends of the bridge. The source end holds the
// original assets and locks them; the destination end mints and burns their wrapped version.
type policy interface {
	// takeCustody removes the asset from its owner when it leaves this domain.
	takeCustody(ctx context.Context, ledger ports.AssetLedger, contract, owner string, id uint64) error
	// deliver hands the asset to to, either for a proven claim or to undo takeCustody.
	deliver(ctx context.Context, ledger ports.AssetLedger, contract, to string, id uint64) error
	// revoke takes back a delivered asset from its holder. deliver to the same holder undoes it.
	revoke(ctx context.Context, ledger ports.AssetLedger, contract, holder string, id uint64) error
	// pairOf returns the contract on the other domain paired with a contract of this domain.
	pairOf(ctx context.Context, dir ports.Directory, contract string) (string, error)
	// optimistic reports whether claims are honoured before the dispute window expires.
	optimistic() bool
}

func newPolicy(side domain.Side) policy {
	if side == domain.SideDestination {
		return destinationPolicy{}
	}
	return sourcePolicy{}
}

type sourcePolicy struct{}

func (sourcePolicy) takeCustody(
	ctx context.Context, ledger ports.AssetLedger, contract, owner string, id uint64,
) error {
	return ledger.Lock(ctx, contract, owner, id)
}

func (sourcePolicy) deliver(
	ctx context.Context, ledger ports.AssetLedger, contract, to string, id uint64,
) error {
	return ledger.Release(ctx, contract, to, id)
}

func (sourcePolicy) revoke(
	ctx context.Context, ledger ports.AssetLedger, contract, holder string, id uint64,
) error {
	return ledger.Lock(ctx, contract, holder, id)
}

func (sourcePolicy) pairOf(ctx context.Context, dir ports.Directory, contract string) (string, error) {
	return dir.Resolve(ctx, contract)
}

func (sourcePolicy) optimistic() bool { return false }

type destinationPolicy struct{}

func (destinationPolicy) takeCustody(
	ctx context.Context, ledger ports.AssetLedger, contract, owner string, id uint64,
) error {
	holder, err := ledger.OwnerOf(ctx, contract, id)
	if err != nil {
		return err
	}
	if holder != owner {
		return fmt.Errorf("caller is not the owner")
	}
	return ledger.Burn(ctx, contract, id)
}

func (destinationPolicy) deliver(
	ctx context.Context, ledger ports.AssetLedger, contract, to string, id uint64,
) error {
	return ledger.Mint(ctx, contract, to, id)
}

func (destinationPolicy) revoke(
	ctx context.Context, ledger ports.AssetLedger, contract, _ string, id uint64,
) error {
	return ledger.Burn(ctx, contract, id)
}

func (destinationPolicy) pairOf(
	ctx context.Context, dir ports.Directory, contract string,
) (string, error) {
	return dir.ResolveReverse(ctx, contract)
}

func (destinationPolicy) optimistic() bool { return true }
