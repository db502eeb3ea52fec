package ports

import "context"

// AssetLedger is the NFT ledger of one domain as seen by the spoke running on it. Lock and
// Release move tokens in and out of the spoke custody; Mint and Burn are restricted to the
// contracts the spoke owns. Every method fails if ownership preconditions are not met.
type AssetLedger interface {
	OwnerOf(ctx context.Context, contract string, tokenID uint64) (string, error)
	Lock(ctx context.Context, contract, owner string, tokenID uint64) error
	Release(ctx context.Context, contract, to string, tokenID uint64) error
	Mint(ctx context.Context, contract, to string, tokenID uint64) error
	Burn(ctx context.Context, contract string, tokenID uint64) error
}
