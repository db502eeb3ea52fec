package domain

import (
	"encoding/binary"
	"fmt"

	"github.com/arkade-os/nftbridge/pkg/merkle"
)

// TransferIntent moves TokenID of LocalContract (origin domain) from Sender to Receiver, who
// redeems it as TokenID of RemoteContract on the other domain.
type TransferIntent struct {
	TokenID        uint64
	Sender         string
	Receiver       string
	LocalContract  string
	RemoteContract string
}

func (i TransferIntent) Validate() error {
	if i.Sender == "" {
		return fmt.Errorf("missing sender")
	}
	if i.Receiver == "" {
		return fmt.Errorf("missing receiver")
	}
	if i.LocalContract == "" {
		return fmt.Errorf("missing local contract")
	}
	if i.RemoteContract == "" {
		return fmt.Errorf("missing remote contract")
	}
	return nil
}

// Encode returns the canonical encoding of the intent: the token id as 8 bytes big endian
// followed by every address prefixed by its length as 4 bytes big endian.
func (i TransferIntent) Encode() []byte {
	fields := []string{i.Sender, i.Receiver, i.LocalContract, i.RemoteContract}
	size := 8
	for _, f := range fields {
		size += 4 + len(f)
	}

	buf := make([]byte, 8, size)
	binary.BigEndian.PutUint64(buf, i.TokenID)
	for _, f := range fields {
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(f)))
		buf = append(buf, f...)
	}
	return buf
}

// Hash is both the merkle leaf of the intent and its idempotency key.
func (i TransferIntent) Hash() merkle.Hash {
	return merkle.LeafHash(i.Encode())
}

func (i TransferIntent) String() string {
	return fmt.Sprintf(
		"%s#%d %s -> %s (%s)", i.LocalContract, i.TokenID, i.Sender, i.Receiver, i.RemoteContract,
	)
}
