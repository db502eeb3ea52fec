package ports

import "context"

type Directory interface {
	// Resolve returns the destination contract paired with a source contract.
	Resolve(ctx context.Context, local string) (string, error)
	// ResolveReverse returns the source contract paired with a destination contract.
	ResolveReverse(ctx context.Context, remote string) (string, error)
}
