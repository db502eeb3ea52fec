package domain

// RewardBalance holds what a spoke owes to an account. Challenge covers challenger payouts and
// forfeited stakes credited to honest relayers, Compensation covers victims of rolled back
// claims.
type RewardBalance struct {
	SpokeID      string
	Account      string
	Challenge    uint64
	Compensation uint64
}

func (r RewardBalance) IsEmpty() bool {
	return r.Challenge == 0 && r.Compensation == 0
}

// SlashingPolicy splits a forfeited bond between the challenger and the victims.
type SlashingPolicy struct {
	// ChallengerShareBps is the share of the forfeited bond paid to the challenger on top of
	// its stake, in basis points, capped by the stake itself.
	ChallengerShareBps uint64
}

type SlashingOutcome struct {
	ChallengerPayout uint64
	Compensation     map[string]uint64
	Reserve          uint64
}

// Split distributes forfeited among challenger and victims. The challenger always gets its stake
// back. Victims share what remains equally; the rounding dust, or all of it when there is no
// victim, goes to the reserve.
func (p SlashingPolicy) Split(forfeited, stake uint64, victims []string) SlashingOutcome {
	share := forfeited * p.ChallengerShareBps / 10_000
	share = min(share, stake)

	out := SlashingOutcome{
		ChallengerPayout: stake + share,
		Compensation:     make(map[string]uint64),
	}
	remaining := forfeited - share

	if len(victims) == 0 {
		out.Reserve = remaining
		return out
	}

	each := remaining / uint64(len(victims))
	for _, v := range victims {
		out.Compensation[v] += each
	}
	out.Reserve = remaining - each*uint64(len(victims))
	return out
}
