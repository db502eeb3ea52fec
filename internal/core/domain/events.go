package domain

import "github.com/arkade-os/nftbridge/pkg/merkle"

type EventType int

const (
	EventTypeUndefined EventType = iota
	EventTypeIntentAdded
	EventTypeBlockSealed
	EventTypeBlockRelayed
	EventTypeBlockChallenged
	EventTypeChallengeResolved
	EventTypeRelayerSlashed
	EventTypeAssetClaimed
	EventTypeSpokeRestored
)

func (t EventType) String() string {
	return []string{
		"undefined",
		"intent_added",
		"block_sealed",
		"block_relayed",
		"block_challenged",
		"challenge_resolved",
		"relayer_slashed",
		"asset_claimed",
		"spoke_restored",
	}[t]
}

type Event interface {
	GetSpokeID() string
	GetType() EventType
	GetTimestamp() int64
}

// SpokeTopic is the topic events of the given spoke are published on.
func SpokeTopic(spokeID string) string {
	return "spoke_" + spokeID
}

type SpokeEvent struct {
	Id        string
	Type      EventType
	Timestamp int64
}

func (e SpokeEvent) GetSpokeID() string {
	return e.Id
}

func (e SpokeEvent) GetType() EventType {
	return e.Type
}

func (e SpokeEvent) GetTimestamp() int64 {
	return e.Timestamp
}

type IntentAdded struct {
	SpokeEvent
	Height uint64
	Index  uint32
	Intent TransferIntent
}

type BlockSealed struct {
	SpokeEvent
	Height uint64
	Root   merkle.Hash
	Size   int
}

type BlockRelayed struct {
	SpokeEvent
	Height      uint64
	Root        merkle.Hash
	Relayer     string
	SubmittedAt int64
}

type BlockChallenged struct {
	SpokeEvent
	Height      uint64
	ChallengeID string
	Challenger  string
	Stake       uint64
}

type ChallengeResolved struct {
	SpokeEvent
	Height      uint64
	ChallengeID string
	Outcome     ChallengeOutcome
}

type RelayerSlashed struct {
	SpokeEvent
	Height    uint64
	Relayer   string
	Forfeited uint64
	Victims   []string
	// Invalidated lists the other unsettled blocks of the relayer dropped with the proven one.
	Invalidated []uint64
}

type AssetClaimed struct {
	SpokeEvent
	Height   uint64
	Index    uint32
	TokenID  uint64
	Contract string
	Receiver string
}

type SpokeRestored struct {
	SpokeEvent
	FromHeight uint64
	Archived   []uint64
}
