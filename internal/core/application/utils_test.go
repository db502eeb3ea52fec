package application

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/internal/core/ports"
	inmemorybank "github.com/arkade-os/nftbridge/internal/infrastructure/bank"
	"github.com/arkade-os/nftbridge/internal/infrastructure/clock"
	"github.com/arkade-os/nftbridge/internal/infrastructure/db"
	inmemoryledger "github.com/arkade-os/nftbridge/internal/infrastructure/ledger"
	"github.com/arkade-os/nftbridge/pkg/merkle"
	"github.com/stretchr/testify/require"
)

const (
	operator      = "operator"
	alice         = "alice"
	bob           = "bob"
	carol         = "carol"
	dave          = "dave"
	mallory       = "mallory"
	honest        = "relayer"
	original      = "nft"
	wrapped       = "wnft"
	sourceCustody = "source-custody"
	destCustody   = "destination-custody"

	fee    = DefaultRelayerFee
	bond   = DefaultMinBond
	stake  = DefaultMinChallengeStake
	window = time.Hour

	// challengerPayout is what proving fraud against a minimum bond with the minimum stake
	// pays, slashRemainder what is left of the bond for the victims or the reserve.
	challengerPayout = 15
	slashRemainder   = bond - (challengerPayout - stake)
)

var ctx = context.Background()

type testBridge struct {
	repo        ports.RepoManager
	clock       *clock.ManualClock
	directory   DirectoryService
	hub         HubService
	source      SpokeService
	destination SpokeService
	ledgers     map[domain.Side]*inmemoryledger.Ledger
	banks       map[domain.Side]*inmemorybank.Bank
}

func testSpokeConfig(side domain.Side) SpokeConfig {
	custody := sourceCustody
	if side == domain.SideDestination {
		custody = destCustody
	}
	return SpokeConfig{
		ID:                 side.String(),
		Side:               side,
		Operator:           operator,
		Custody:            custody,
		BlockCapacity:      DefaultBlockCapacity,
		RelayerFee:         fee,
		MinBond:            bond,
		MinChallengeStake:  stake,
		ChallengeWindow:    window,
		UndepositCooldown:  window,
		ChallengerShareBps: DefaultChallengerShareBps,
		VerifierCacheSize:  16,
	}
}

// bridgeOption replaces the store or the ledger a spoke of the given side is built with.
type bridgeOption func(
	side domain.Side, repo ports.RepoManager, ledger ports.AssetLedger,
) (ports.RepoManager, ports.AssetLedger)

// newTestBridge returns two paired spokes sharing one in-memory badger store, with nft#1 of
// alice ready to be bridged.
func newTestBridge(t *testing.T, opts ...bridgeOption) *testBridge {
	t.Helper()

	repo, err := db.NewService(db.ServiceConfig{
		EventStoreType:   "badger",
		DataStoreType:    "badger",
		EventStoreConfig: []interface{}{"", nil},
		DataStoreConfig:  []interface{}{"", nil},
	})
	require.NoError(t, err)
	t.Cleanup(repo.Close)

	clk := clock.NewManualClock(time.Unix(1700000000, 0))
	directory, err := NewDirectoryService(operator, repo.ContractPairs(), clk)
	require.NoError(t, err)
	require.NoError(t, directory.AddPair(ctx, operator, original, wrapped))

	b := &testBridge{
		repo:      repo,
		clock:     clk,
		directory: directory,
		hub:       NewHubService(),
		ledgers: map[domain.Side]*inmemoryledger.Ledger{
			domain.SideSource:      inmemoryledger.NewLedger(sourceCustody),
			domain.SideDestination: inmemoryledger.NewLedger(destCustody, wrapped),
		},
		banks: map[domain.Side]*inmemorybank.Bank{
			domain.SideSource:      inmemorybank.NewBank(),
			domain.SideDestination: inmemorybank.NewBank(),
		},
	}

	spokes := make(map[domain.Side]SpokeService)
	for _, side := range []domain.Side{domain.SideSource, domain.SideDestination} {
		spokeRepo, spokeLedger := ports.RepoManager(repo), ports.AssetLedger(b.ledgers[side])
		for _, opt := range opts {
			spokeRepo, spokeLedger = opt(side, spokeRepo, spokeLedger)
		}
		spoke, err := NewSpokeService(
			testSpokeConfig(side), spokeRepo, spokeLedger, b.banks[side], directory, clk, nil,
		)
		require.NoError(t, err)
		spokes[side] = spoke
	}
	b.source, b.destination = spokes[domain.SideSource], spokes[domain.SideDestination]
	require.NoError(t, b.hub.AddSpokeBridge(ctx, b.source, b.destination))

	require.NoError(t, b.ledgers[domain.SideSource].Issue(ctx, original, alice, 1))
	return b
}

func (b *testBridge) fund(t *testing.T, side domain.Side, account string, amount uint64) {
	t.Helper()
	require.NoError(t, b.banks[side].Credit(ctx, account, amount))
}

func (b *testBridge) balance(t *testing.T, side domain.Side, account string) uint64 {
	t.Helper()
	balance, err := b.banks[side].Balance(ctx, account)
	require.NoError(t, err)
	return balance
}

func (b *testBridge) ownerOf(side domain.Side, contract string, id uint64) string {
	owner, _ := b.ledgers[side].OwnerOf(ctx, contract, id)
	return owner
}

// bridgeOut moves nft#1 of alice into a sealed source block 0 addressed to bob.
func (b *testBridge) bridgeOut(t *testing.T) (*IntentReceipt, merkle.Hash) {
	t.Helper()
	receipt, err := b.source.AddIntent(ctx, alice, 1, original, bob)
	require.NoError(t, err)
	root, err := b.source.SealBlock(ctx, receipt.Height)
	require.NoError(t, err)
	return receipt, root
}

// bond registers relayer on the spoke of the given side with the minimum bond.
func (b *testBridge) bond(t *testing.T, side domain.Side, relayer string) {
	t.Helper()
	b.fund(t, side, relayer, bond)
	spoke := b.source
	if side == domain.SideDestination {
		spoke = b.destination
	}
	require.NoError(t, spoke.Deposit(ctx, relayer, bond))
}

// claimRequest builds the claim of the leaf at index of an outgoing block of origin.
func claimRequest(
	t *testing.T, origin SpokeService, height uint64, index uint32,
) ClaimRequest {
	t.Helper()
	block, err := origin.GetBlock(ctx, height)
	require.NoError(t, err)
	proof, err := origin.GetProof(ctx, height, index)
	require.NoError(t, err)
	return ClaimRequest{
		Height:   height,
		Intent:   block.Intents[index],
		Siblings: proof,
		Index:    index,
		Fee:      fee,
	}
}

// forgedRoot returns a root committing to a single intent that was never submitted, and the
// claim of that intent.
func forgedRoot(t *testing.T, height uint64, receiver string) (merkle.Hash, ClaimRequest) {
	t.Helper()
	intent := domain.TransferIntent{
		TokenID:        9,
		Sender:         mallory,
		Receiver:       receiver,
		LocalContract:  original,
		RemoteContract: wrapped,
	}
	tree, err := merkle.NewTree([]merkle.Hash{intent.Hash()})
	require.NoError(t, err)
	proof, err := tree.Proof(0)
	require.NoError(t, err)
	return tree.Root(), ClaimRequest{
		Height: height, Intent: intent, Siblings: proof, Index: 0, Fee: fee,
	}
}

// faults switches on the failures injected in the destination spoke by withFaults.
type faults struct {
	relayerWrites atomic.Bool
	ownerLookups  atomic.Bool
}

func withFaults(f *faults) bridgeOption {
	return func(
		side domain.Side, repo ports.RepoManager, ledger ports.AssetLedger,
	) (ports.RepoManager, ports.AssetLedger) {
		if side != domain.SideDestination {
			return repo, ledger
		}
		return faultyRepo{repo, f}, faultyLedger{ledger, f}
	}
}

type faultyRepo struct {
	ports.RepoManager
	faults *faults
}

func (r faultyRepo) Relayers() domain.RelayerRepository {
	return faultyRelayers{r.RepoManager.Relayers(), r.faults}
}

type faultyRelayers struct {
	domain.RelayerRepository
	faults *faults
}

func (r faultyRelayers) Upsert(ctx context.Context, relayer domain.Relayer) error {
	if r.faults.relayerWrites.Load() {
		return fmt.Errorf("relayer store unavailable")
	}
	return r.RelayerRepository.Upsert(ctx, relayer)
}

type faultyLedger struct {
	ports.AssetLedger
	faults *faults
}

func (l faultyLedger) OwnerOf(ctx context.Context, contract string, id uint64) (string, error) {
	if l.faults.ownerLookups.Load() {
		return "", fmt.Errorf("ledger unavailable")
	}
	return l.AssetLedger.OwnerOf(ctx, contract, id)
}
