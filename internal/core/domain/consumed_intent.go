package domain

import "github.com/arkade-os/nftbridge/pkg/merkle"

// ConsumedIntent marks an intent redeemed on a spoke. It lives as long as the asset it
// delivered stays on the domain: a rollback of the claim or a new departure of the asset drops it.
type ConsumedIntent struct {
	SpokeID    string
	Hash       merkle.Hash
	Height     uint64
	Index      uint32
	Contract   string
	TokenID    uint64
	ConsumedAt int64
}

func NewConsumedIntent(
	spokeID string, height uint64, intent TransferIntent, index uint32, at int64,
) ConsumedIntent {
	return ConsumedIntent{
		SpokeID:    spokeID,
		Hash:       intent.Hash(),
		Height:     height,
		Index:      index,
		Contract:   intent.RemoteContract,
		TokenID:    intent.TokenID,
		ConsumedAt: at,
	}
}
