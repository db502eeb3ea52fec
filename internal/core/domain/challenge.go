package domain

import (
	"time"

	"github.com/google/uuid"
)

type ChallengeOutcome uint8

const (
	ChallengePending ChallengeOutcome = iota
	ChallengeFalse
	ChallengeFraudProven
)

func (o ChallengeOutcome) String() string {
	return []string{
		"pending",
		"false_challenge",
		"fraud_proven",
	}[o]
}

type Challenge struct {
	ID         string
	SpokeID    string
	Height     uint64
	Challenger string
	Stake      uint64
	Relayer    string
	CreatedAt  int64
	ResolvedAt int64
	Outcome    ChallengeOutcome
	// Payout is what the challenger was credited on resolution.
	Payout uint64
}

func NewChallenge(
	spokeID string, height uint64, challenger, relayer string, stake uint64, at time.Time,
) *Challenge {
	return &Challenge{
		ID:         uuid.New().String(),
		SpokeID:    spokeID,
		Height:     height,
		Challenger: challenger,
		Stake:      stake,
		Relayer:    relayer,
		CreatedAt:  at.Unix(),
		Outcome:    ChallengePending,
	}
}

func (c *Challenge) IsPending() bool {
	return c.Outcome == ChallengePending
}

func (c *Challenge) Resolve(outcome ChallengeOutcome, payout uint64, at int64) {
	c.Outcome = outcome
	c.Payout = payout
	c.ResolvedAt = at
}
