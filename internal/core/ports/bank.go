package ports

import "context"

// Bank moves the native value of a domain: bonds, stakes, fees and rewards.
type Bank interface {
	Balance(ctx context.Context, account string) (uint64, error)
	Transfer(ctx context.Context, from, to string, amount uint64) error
}
