package domain

import (
	"fmt"

	"github.com/arkade-os/nftbridge/pkg/merkle"
)

// Block is a batch of outgoing intents built by a spoke.
type Block struct {
	SpokeID  string
	Height   uint64
	Intents  []TransferIntent
	Root     merkle.Hash
	Sealed   bool
	OpenedAt int64
	SealedAt int64
}

func NewBlock(spokeID string, height uint64) *Block {
	return &Block{
		SpokeID: spokeID,
		Height:  height,
		Intents: make([]TransferIntent, 0),
	}
}

func (b *Block) IsOpen() bool {
	return !b.Sealed
}

func (b *Block) IsFull(capacity int) bool {
	return len(b.Intents) >= capacity
}

// Append adds the intent and returns its index in the block.
func (b *Block) Append(intent TransferIntent, capacity int) (uint32, error) {
	if b.Sealed {
		return 0, fmt.Errorf("block %d is sealed", b.Height)
	}
	if b.IsFull(capacity) {
		return 0, fmt.Errorf("block %d is full", b.Height)
	}
	if err := intent.Validate(); err != nil {
		return 0, err
	}
	b.Intents = append(b.Intents, intent)
	return uint32(len(b.Intents) - 1), nil
}

// Seal commits the block to the root of its intents. Sealing an already sealed block leaves it
// untouched.
func (b *Block) Seal(at int64) (merkle.Hash, error) {
	if b.Sealed {
		return b.Root, nil
	}
	tree, err := b.Tree()
	if err != nil {
		return merkle.ZeroHash, err
	}
	b.Root = tree.Root()
	b.Sealed = true
	b.SealedAt = at
	return b.Root, nil
}

func (b *Block) Leaves() []merkle.Hash {
	leaves := make([]merkle.Hash, 0, len(b.Intents))
	for _, intent := range b.Intents {
		leaves = append(leaves, intent.Hash())
	}
	return leaves
}

func (b *Block) Tree() (*merkle.Tree, error) {
	if len(b.Intents) == 0 {
		return nil, fmt.Errorf("block %d has no intents", b.Height)
	}
	return merkle.NewTree(b.Leaves())
}

func (b *Block) Proof(index uint32) ([]merkle.Hash, error) {
	if !b.Sealed {
		return nil, fmt.Errorf("block %d is not sealed", b.Height)
	}
	tree, err := b.Tree()
	if err != nil {
		return nil, err
	}
	return tree.Proof(int(index))
}

// VerifyProof checks that intent is included at index in this sealed block.
func (b *Block) VerifyProof(intent TransferIntent, index uint32, siblings []merkle.Hash) bool {
	if !b.Sealed {
		return false
	}
	return merkle.Verify(b.Root, intent.Hash(), index, siblings)
}
