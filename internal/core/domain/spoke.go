package domain

import "fmt"

type Side uint8

const (
	SideSource Side = iota
	SideDestination
)

func (s Side) String() string {
	switch s {
	case SideSource:
		return "source"
	case SideDestination:
		return "destination"
	default:
		return "unknown"
	}
}

func (s Side) Opposite() Side {
	if s == SideSource {
		return SideDestination
	}
	return SideSource
}

func ParseSide(s string) (Side, error) {
	switch s {
	case "source":
		return SideSource, nil
	case "destination":
		return SideDestination, nil
	default:
		return 0, fmt.Errorf("unknown side %q", s)
	}
}

type SpokeStatus uint8

const (
	SpokeActive SpokeStatus = iota
	SpokeFrozen
	// SpokeMalicious is a spoke with a proven fraud and no open dispute, waiting for a restore.
	SpokeMalicious
)

func (s SpokeStatus) String() string {
	return []string{
		"active",
		"frozen",
		"malicious",
	}[s]
}

// SpokeState holds the scalar fields of a spoke.
type SpokeState struct {
	ID   string
	Side Side
	// OpenHeight is the height of the block currently accepting intents.
	OpenHeight uint64
	// RelayCursor is the lowest height that may still lack an incoming record.
	RelayCursor uint64
	// SettledCursor is where the settlement sweep resumes.
	SettledCursor uint64
	// RelayedUpTo is one past the highest height ever relayed.
	RelayedUpTo          uint64
	HasMalicious         bool
	FirstMaliciousHeight uint64
	NumberOfChallenges   uint64
	Reserve              uint64
	Status               SpokeStatus
}

func NewSpokeState(id string, side Side) *SpokeState {
	return &SpokeState{ID: id, Side: side, Status: SpokeActive}
}

func (s *SpokeState) IsActive() bool {
	return s.Status == SpokeActive
}

// Relayed moves the relay cursor past height.
func (s *SpokeState) Relayed(height uint64) {
	s.RelayCursor = height + 1
	s.RelayedUpTo = max(s.RelayedUpTo, height+1)
}

func (s *SpokeState) ChallengeOpened() {
	s.NumberOfChallenges++
	s.refreshStatus()
}

func (s *SpokeState) ChallengeClosed() {
	if s.NumberOfChallenges > 0 {
		s.NumberOfChallenges--
	}
	s.refreshStatus()
}

func (s *SpokeState) MarkMalicious(height uint64) {
	if !s.HasMalicious || height < s.FirstMaliciousHeight {
		s.FirstMaliciousHeight = height
	}
	s.HasMalicious = true
	s.refreshStatus()
}

func (s *SpokeState) CanRestore() bool {
	return s.HasMalicious && s.NumberOfChallenges == 0
}

// Restore reopens relaying from the first malicious height.
func (s *SpokeState) Restore() error {
	if !s.CanRestore() {
		return fmt.Errorf(
			"spoke %s cannot be restored: status %s, %d open challenges",
			s.ID, s.Status, s.NumberOfChallenges,
		)
	}
	s.RelayCursor = min(s.RelayCursor, s.FirstMaliciousHeight)
	s.SettledCursor = min(s.SettledCursor, s.FirstMaliciousHeight)
	s.HasMalicious = false
	s.FirstMaliciousHeight = 0
	s.refreshStatus()
	return nil
}

func (s *SpokeState) refreshStatus() {
	switch {
	case s.NumberOfChallenges > 0:
		s.Status = SpokeFrozen
	case s.HasMalicious:
		s.Status = SpokeMalicious
	default:
		s.Status = SpokeActive
	}
}
