package domain

import (
	"time"

	"github.com/arkade-os/nftbridge/pkg/merkle"
)

type IncomingBlockStatus uint8

const (
	IncomingBlockUnrelayed IncomingBlockStatus = iota
	IncomingBlockRelayed
	IncomingBlockChallenged
	IncomingBlockMalicious
	IncomingBlockConfirmed
)

func (s IncomingBlockStatus) String() string {
	return []string{
		"unrelayed",
		"relayed",
		"challenged",
		"malicious",
		"confirmed",
	}[s]
}

// Claim records an asset delivered to the receiver of a leaf of an incoming block.
type Claim struct {
	Index     uint32
	TokenID   uint64
	Contract  string
	Receiver  string
	ClaimedAt int64
}

// IncomingBlock is the root a relayer asserted for the counterpart block at Height.
type IncomingBlock struct {
	SpokeID     string
	Height      uint64
	Root        merkle.Hash
	Relayer     string
	SubmittedAt int64
	Status      IncomingBlockStatus
	ChallengeID string
	Claims      map[uint32]Claim
}

func NewIncomingBlock(
	spokeID string, height uint64, root merkle.Hash, relayer string, submittedAt int64,
) *IncomingBlock {
	return &IncomingBlock{
		SpokeID:     spokeID,
		Height:      height,
		Root:        root,
		Relayer:     relayer,
		SubmittedAt: submittedAt,
		Status:      IncomingBlockRelayed,
		Claims:      make(map[uint32]Claim),
	}
}

func (b *IncomingBlock) WindowEnd(window time.Duration) int64 {
	return b.SubmittedAt + int64(window.Seconds())
}

// WindowExpired reports whether the dispute window is over at now. The window is open in
// [SubmittedAt, SubmittedAt+window).
func (b *IncomingBlock) WindowExpired(now int64, window time.Duration) bool {
	return now >= b.WindowEnd(window)
}

func (b *IncomingBlock) IsRelayed() bool {
	return b.Status == IncomingBlockRelayed
}

func (b *IncomingBlock) IsChallenged() bool {
	return b.Status == IncomingBlockChallenged
}

func (b *IncomingBlock) IsMalicious() bool {
	return b.Status == IncomingBlockMalicious
}

func (b *IncomingBlock) IsConfirmed() bool {
	return b.Status == IncomingBlockConfirmed
}

// IsSettled reports whether the record reached a final status.
func (b *IncomingBlock) IsSettled() bool {
	return b.IsConfirmed() || b.IsMalicious()
}

func (b *IncomingBlock) IsClaimed(index uint32) bool {
	_, ok := b.Claims[index]
	return ok
}

func (b *IncomingBlock) AddClaim(claim Claim) {
	if b.Claims == nil {
		b.Claims = make(map[uint32]Claim)
	}
	b.Claims[claim.Index] = claim
}

// Clone returns a copy of the record that does not share its claims.
func (b *IncomingBlock) Clone() *IncomingBlock {
	clone := *b
	clone.Claims = make(map[uint32]Claim, len(b.Claims))
	for index, claim := range b.Claims {
		clone.Claims[index] = claim
	}
	return &clone
}

// ArchivedIncomingBlock is the audit copy of a malicious record removed by a restore.
type ArchivedIncomingBlock struct {
	IncomingBlock
	ArchivedAt int64
}
