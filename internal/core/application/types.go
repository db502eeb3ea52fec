package application

import (
	"context"
	"fmt"
	"time"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/internal/core/ports"
	"github.com/arkade-os/nftbridge/pkg/merkle"
)

type SpokeService interface {
	ports.Endpoint
	Info(ctx context.Context) (*SpokeInfo, error)

	// Batch builder.
	AddIntent(
		ctx context.Context, caller string, tokenID uint64, contract, receiver string,
	) (*IntentReceipt, error)
	SealBlock(ctx context.Context, height uint64) (merkle.Hash, error)
	GetBlock(ctx context.Context, height uint64) (*domain.Block, error)
	// ListBlocks returns the stored blocks with height in [from, to).
	ListBlocks(ctx context.Context, from, to uint64) ([]domain.Block, error)
	GetProof(ctx context.Context, height uint64, index uint32) ([]merkle.Hash, error)
	VerifyProof(
		ctx context.Context, height uint64, intent domain.TransferIntent, index uint32,
		siblings []merkle.Hash,
	) (bool, error)

	// Relayer registry.
	Deposit(ctx context.Context, caller string, amount uint64) error
	RequestUndeposit(ctx context.Context, caller string) error
	ClaimDeposit(ctx context.Context, caller string) (uint64, error)
	GetRelayer(ctx context.Context, address string) (*domain.Relayer, error)
	ListRelayers(ctx context.Context) ([]domain.Relayer, error)

	// Challenge engine.
	RelayBlock(ctx context.Context, caller string, height uint64, root merkle.Hash) error
	ChallengeBlock(
		ctx context.Context, caller string, height uint64, stake uint64,
	) (*domain.Challenge, error)
	SendProof(ctx context.Context, caller string, height uint64) (*domain.ProofResponse, error)
	GetIncomingBlock(ctx context.Context, height uint64) (*domain.IncomingBlock, error)
	GetArchivedIncomingBlocks(
		ctx context.Context, height uint64,
	) ([]domain.ArchivedIncomingBlock, error)
	GetChallenges(ctx context.Context, height uint64) ([]domain.Challenge, error)
	GetRewards(ctx context.Context, account string) (*domain.RewardBalance, error)
	ClaimChallengeReward(ctx context.Context, caller string) (uint64, error)
	ClaimCompensation(ctx context.Context, caller string) (uint64, error)
	Restore(ctx context.Context, caller string) (*RestoreResult, error)

	// Claim.
	ClaimAsset(ctx context.Context, caller string, req ClaimRequest) error
	ResubmitIntent(
		ctx context.Context, caller, receiver string, req ClaimRequest,
	) (*IntentReceipt, error)
}

// Defaults of the protocol parameters. A challenger proving fraud against a minimum bond with
// the minimum stake gets back 15.
const (
	DefaultBlockCapacity      = 4
	DefaultRelayerFee         = 1
	DefaultMinBond            = 20
	DefaultMinChallengeStake  = 10
	DefaultChallengerShareBps = 2500
)

type SpokeConfig struct {
	ID   string
	Side domain.Side
	// Operator is the only account allowed to restore the spoke.
	Operator string
	// Custody is the account holding bonds, stakes and reserve on the bank of this domain.
	Custody            string
	BlockCapacity      int
	RelayerFee         uint64
	MinBond            uint64
	MinChallengeStake  uint64
	ChallengeWindow    time.Duration
	UndepositCooldown  time.Duration
	ChallengerShareBps uint64
	VerifierCacheSize  int
}

func (c SpokeConfig) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("missing spoke id")
	}
	if c.Side != domain.SideSource && c.Side != domain.SideDestination {
		return fmt.Errorf("invalid side %d", c.Side)
	}
	if c.Operator == "" {
		return fmt.Errorf("missing operator")
	}
	if c.Custody == "" {
		return fmt.Errorf("missing custody account")
	}
	if c.BlockCapacity <= 0 {
		return fmt.Errorf("block capacity must be positive")
	}
	if c.MinBond == 0 {
		return fmt.Errorf("min bond must be positive")
	}
	if c.MinChallengeStake == 0 {
		return fmt.Errorf("min challenge stake must be positive")
	}
	if c.ChallengeWindow < time.Second {
		return fmt.Errorf("challenge window must be at least 1s")
	}
	if c.UndepositCooldown < 0 {
		return fmt.Errorf("undeposit cooldown must not be negative")
	}
	if c.ChallengerShareBps > 10_000 {
		return fmt.Errorf("challenger share must be at most 10000 bps")
	}
	return nil
}

// ClaimRequest proves a leaf of an incoming block.
type ClaimRequest struct {
	Height   uint64
	Intent   domain.TransferIntent
	Siblings []merkle.Hash
	Index    uint32
	Fee      uint64
}

type IntentReceipt struct {
	Intent domain.TransferIntent
	Height uint64
	Index  uint32
	// Root is set when adding the intent sealed the block.
	Root   merkle.Hash
	Sealed bool
}

type RestoreResult struct {
	FromHeight uint64
	Archived   []uint64
}

type SpokeInfo struct {
	ID                   string
	Side                 domain.Side
	Status               domain.SpokeStatus
	Counterpart          string
	OpenHeight           uint64
	NextRelayHeight      uint64
	SettledCursor        uint64
	HasMalicious         bool
	FirstMaliciousHeight uint64
	NumberOfChallenges   uint64
	Reserve              uint64
	BlockCapacity        int
	RelayerFee           uint64
	MinBond              uint64
	MinChallengeStake    uint64
	ChallengeWindow      time.Duration
	UndepositCooldown    time.Duration
}
