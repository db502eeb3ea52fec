package domain

import "fmt"

type RelayerStatus uint8

const (
	RelayerNotRegistered RelayerStatus = iota
	RelayerActive
	RelayerUndepositing
	RelayerChallengedPending
	RelayerMalicious
)

func (s RelayerStatus) String() string {
	return []string{
		"not_registered",
		"active",
		"undepositing",
		"challenged_pending",
		"malicious",
	}[s]
}

type Relayer struct {
	SpokeID              string
	Address              string
	Bond                 uint64
	Status               RelayerStatus
	UndepositRequestedAt int64
	// OutstandingAgainstChallenges counts the blocks relayed by this relayer that are not
	// settled yet.
	OutstandingAgainstChallenges uint64
	// LiveChallenges counts the disputes currently open against this relayer.
	LiveChallenges uint64
	Slashed        bool
}

func NewRelayer(spokeID, address string) *Relayer {
	return &Relayer{SpokeID: spokeID, Address: address}
}

func (r *Relayer) IsRegistered() bool {
	return r.Status != RelayerNotRegistered
}

// CanRelay reports whether the relayer may submit new roots.
func (r *Relayer) CanRelay() bool {
	return r.Status == RelayerActive
}

// CanSettle reports whether the blocks of the relayer may be confirmed. A dispute open against
// any of them holds them all.
func (r *Relayer) CanSettle() bool {
	return !r.IsMalicious() && r.LiveChallenges == 0
}

func (r *Relayer) IsMalicious() bool {
	return r.Status == RelayerMalicious
}

func (r *Relayer) Bonded(amount uint64) error {
	if r.IsMalicious() {
		return fmt.Errorf("relayer %s is malicious", r.Address)
	}
	if r.IsRegistered() {
		return fmt.Errorf("relayer %s already holds a bond", r.Address)
	}
	r.Bond = amount
	r.Status = RelayerActive
	r.UndepositRequestedAt = 0
	return nil
}

func (r *Relayer) Relayed() {
	r.OutstandingAgainstChallenges++
}

// Settled releases one outstanding block of the relayer.
func (r *Relayer) Settled() {
	if r.OutstandingAgainstChallenges > 0 {
		r.OutstandingAgainstChallenges--
	}
}

func (r *Relayer) Challenged() {
	r.LiveChallenges++
	if !r.IsMalicious() {
		r.Status = RelayerChallengedPending
	}
}

// ChallengeDismissed closes a dispute that proved the relayer honest.
func (r *Relayer) ChallengeDismissed() {
	if r.LiveChallenges > 0 {
		r.LiveChallenges--
	}
	r.Settled()
	if r.Status == RelayerChallengedPending && r.LiveChallenges == 0 {
		r.Status = RelayerActive
	}
}

// FraudProven closes a dispute that proved the relayer lied and returns the part of the bond
// that is forfeited by this incident.
func (r *Relayer) FraudProven() uint64 {
	if r.LiveChallenges > 0 {
		r.LiveChallenges--
	}
	r.Settled()
	r.Status = RelayerMalicious
	if r.Slashed {
		return 0
	}
	forfeited := r.Bond
	r.Bond = 0
	r.Slashed = true
	return forfeited
}

func (r *Relayer) RequestUndeposit(at int64) error {
	if r.Status != RelayerActive {
		return fmt.Errorf("relayer %s is %s", r.Address, r.Status)
	}
	if r.OutstandingAgainstChallenges > 0 {
		return fmt.Errorf(
			"relayer %s has %d blocks not settled yet", r.Address, r.OutstandingAgainstChallenges,
		)
	}
	r.Status = RelayerUndepositing
	r.UndepositRequestedAt = at
	return nil
}

// Release zeroes the record and returns the bond.
func (r *Relayer) Release() uint64 {
	bond := r.Bond
	*r = Relayer{SpokeID: r.SpokeID, Address: r.Address}
	return bond
}
