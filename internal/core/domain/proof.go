package domain

import "github.com/arkade-os/nftbridge/pkg/merkle"

// ProofRequest is what an origin spoke asserts about one of its own blocks when a dispute is
// resolved. Exists is false when the block is missing or not sealed yet.
type ProofRequest struct {
	Height uint64
	Exists bool
	Root   merkle.Hash
}

type ProofResponse struct {
	Height      uint64
	Outcome     ChallengeOutcome
	ChallengeID string
}
