package handlers

import (
	"encoding/json"

	"github.com/arkade-os/nftbridge/pkg/merkle"
)

type Intent struct {
	TokenID        uint64 `json:"token_id"`
	Sender         string `json:"sender"`
	Receiver       string `json:"receiver"`
	LocalContract  string `json:"local_contract"`
	RemoteContract string `json:"remote_contract"`
	Hash           string `json:"hash,omitempty"`
}

type SpokeInfo struct {
	ID                   string `json:"id"`
	Side                 string `json:"side"`
	Status               string `json:"status"`
	Counterpart          string `json:"counterpart"`
	OpenHeight           uint64 `json:"open_height"`
	NextRelayHeight      uint64 `json:"next_relay_height"`
	SettledCursor        uint64 `json:"settled_cursor"`
	HasMalicious         bool   `json:"has_malicious"`
	FirstMaliciousHeight uint64 `json:"first_malicious_height"`
	NumberOfChallenges   uint64 `json:"number_of_challenges"`
	Reserve              uint64 `json:"reserve"`
	BlockCapacity        int    `json:"block_capacity"`
	RelayerFee           uint64 `json:"relayer_fee"`
	MinBond              uint64 `json:"min_bond"`
	MinChallengeStake    uint64 `json:"min_challenge_stake"`
	ChallengeWindow      int64  `json:"challenge_window"`
	UndepositCooldown    int64  `json:"undeposit_cooldown"`
}

type Block struct {
	SpokeID  string      `json:"spoke_id"`
	Height   uint64      `json:"height"`
	Intents  []Intent    `json:"intents"`
	Root     merkle.Hash `json:"root"`
	Sealed   bool        `json:"sealed"`
	OpenedAt int64       `json:"opened_at"`
	SealedAt int64       `json:"sealed_at"`
}

type Claim struct {
	Index     uint32 `json:"index"`
	TokenID   uint64 `json:"token_id"`
	Contract  string `json:"contract"`
	Receiver  string `json:"receiver"`
	ClaimedAt int64  `json:"claimed_at"`
}

type IncomingBlock struct {
	SpokeID     string      `json:"spoke_id"`
	Height      uint64      `json:"height"`
	Root        merkle.Hash `json:"root"`
	Relayer     string      `json:"relayer"`
	SubmittedAt int64       `json:"submitted_at"`
	Status      string      `json:"status"`
	ChallengeID string      `json:"challenge_id,omitempty"`
	Claims      []Claim     `json:"claims"`
	ArchivedAt  int64       `json:"archived_at,omitempty"`
}

type Relayer struct {
	Address                      string `json:"address"`
	Bond                         uint64 `json:"bond"`
	Status                       string `json:"status"`
	UndepositRequestedAt         int64  `json:"undeposit_requested_at"`
	OutstandingAgainstChallenges uint64 `json:"outstanding_against_challenges"`
	LiveChallenges               uint64 `json:"live_challenges"`
	Slashed                      bool   `json:"slashed"`
}

type Challenge struct {
	ID         string `json:"id"`
	Height     uint64 `json:"height"`
	Challenger string `json:"challenger"`
	Stake      uint64 `json:"stake"`
	Relayer    string `json:"relayer"`
	CreatedAt  int64  `json:"created_at"`
	ResolvedAt int64  `json:"resolved_at"`
	Outcome    string `json:"outcome"`
	Payout     uint64 `json:"payout"`
}

type RewardBalance struct {
	Account      string `json:"account"`
	Challenge    uint64 `json:"challenge"`
	Compensation uint64 `json:"compensation"`
}

type ContractPair struct {
	Local     string `json:"local"`
	Remote    string `json:"remote"`
	CreatedAt int64  `json:"created_at"`
}

type BridgePair struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

type Event struct {
	Topic     string          `json:"topic"`
	SpokeID   string          `json:"spoke_id"`
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

type ErrorResponse struct {
	Code     uint16            `json:"code"`
	Name     string            `json:"name"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type CallerRequest struct {
	Caller string `json:"caller"`
}

type AddIntentRequest struct {
	Caller   string `json:"caller"`
	TokenID  uint64 `json:"token_id"`
	Contract string `json:"contract"`
	Receiver string `json:"receiver"`
}

type IntentReceipt struct {
	Intent Intent       `json:"intent"`
	Height uint64       `json:"height"`
	Index  uint32       `json:"index"`
	Root   *merkle.Hash `json:"root,omitempty"`
	Sealed bool         `json:"sealed"`
}

type RootResponse struct {
	Root merkle.Hash `json:"root"`
}

type ProofResponse struct {
	Siblings []merkle.Hash `json:"siblings"`
}

type VerifyProofRequest struct {
	Intent   Intent        `json:"intent"`
	Index    uint32        `json:"index"`
	Siblings []merkle.Hash `json:"siblings"`
}

type VerifyProofResponse struct {
	Valid bool `json:"valid"`
}

type AmountRequest struct {
	Caller string `json:"caller"`
	Amount uint64 `json:"amount"`
}

type AmountResponse struct {
	Amount uint64 `json:"amount"`
}

type RelayBlockRequest struct {
	Caller string      `json:"caller"`
	Root   merkle.Hash `json:"root"`
}

type ChallengeBlockRequest struct {
	Caller string `json:"caller"`
	Stake  uint64 `json:"stake"`
}

type SendProofResponse struct {
	Height      uint64 `json:"height"`
	Outcome     string `json:"outcome"`
	ChallengeID string `json:"challenge_id,omitempty"`
}

type RestoreResponse struct {
	FromHeight uint64   `json:"from_height"`
	Archived   []uint64 `json:"archived"`
}

type ClaimAssetRequest struct {
	Caller   string        `json:"caller"`
	Receiver string        `json:"receiver,omitempty"`
	Height   uint64        `json:"height"`
	Intent   Intent        `json:"intent"`
	Siblings []merkle.Hash `json:"siblings"`
	Index    uint32        `json:"index"`
	Fee      uint64        `json:"fee"`
}

type BakeMacaroonRequest struct {
	Account string `json:"account"`
	TTL     int64  `json:"ttl_seconds,omitempty"`
}

type MacaroonResponse struct {
	Macaroon string `json:"macaroon"`
}

type AddPairRequest struct {
	Caller string `json:"caller"`
	Local  string `json:"local"`
	Remote string `json:"remote"`
}

type ResolveResponse struct {
	Contract string `json:"contract"`
}

type MintRequest struct {
	Contract string `json:"contract"`
	To       string `json:"to"`
	TokenID  uint64 `json:"token_id"`
}

type OwnerResponse struct {
	Owner string `json:"owner"`
}

type FaucetRequest struct {
	Account string `json:"account"`
	Amount  uint64 `json:"amount"`
}

type BalanceResponse struct {
	Account string `json:"account"`
	Balance uint64 `json:"balance"`
}
