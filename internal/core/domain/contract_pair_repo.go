package domain

import "context"

type ContractPairRepository interface {
	GetByLocal(ctx context.Context, local string) (*ContractPair, error)
	GetByRemote(ctx context.Context, remote string) (*ContractPair, error)
	List(ctx context.Context) ([]ContractPair, error)
	// Add fails if either address is already paired.
	Add(ctx context.Context, pair ContractPair) error
	Close()
}
