package application

import (
	"testing"

	"github.com/arkade-os/nftbridge/internal/core/domain"
	"github.com/arkade-os/nftbridge/internal/core/ports"
	"github.com/arkade-os/nftbridge/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestHub(t *testing.T) {
	b := newTestBridge(t)

	t.Run("pairs", func(t *testing.T) {
		counterpart, err := b.hub.Counterpart(b.source.ID())
		require.NoError(t, err)
		require.Equal(t, b.destination.ID(), counterpart)

		_, err = b.hub.Counterpart("unknown")
		require.Error(t, err)

		require.Equal(t, []BridgePair{
			{Source: b.source.ID(), Destination: b.destination.ID()},
		}, b.hub.Pairs())

		info, err := b.source.Info(ctx)
		require.NoError(t, err)
		require.Equal(t, b.destination.ID(), info.Counterpart)
	})

	t.Run("invalid_bridges", func(t *testing.T) {
		err := b.hub.AddSpokeBridge(ctx, b.source, b.destination)
		requireCode(t, errors.ALREADY_EXISTS, err)

		hub := NewHubService()
		err = hub.AddSpokeBridge(ctx, b.destination, b.source)
		requireCode(t, errors.INVALID_ARGUMENT, err)
		err = hub.AddSpokeBridge(ctx, b.source, nil)
		requireCode(t, errors.INVALID_ARGUMENT, err)
		require.Empty(t, hub.Pairs())
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := domain.ProofRequest{Height: 0}

		_, err := b.hub.Deliver(ctx, ports.Credentials{SpokeID: b.source.ID(), Token: "forged"}, req)
		requireCode(t, errors.UNAUTHENTICATED, err)
		_, err = b.hub.Deliver(ctx, ports.Credentials{SpokeID: "intruder"}, req)
		requireCode(t, errors.UNAUTHENTICATED, err)

		_, err = b.destination.HandleProof(ctx, "intruder", req)
		requireCode(t, errors.UNAUTHENTICATED, err)
		_, err = b.destination.HandleProof(ctx, b.destination.ID(), req)
		requireCode(t, errors.UNAUTHENTICATED, err)
	})

	t.Run("unpaired_spoke", func(t *testing.T) {
		cfg := testSpokeConfig(domain.SideSource)
		cfg.ID = "lonely"
		spoke, err := NewSpokeService(
			cfg, b.repo, b.ledgers[domain.SideSource], b.banks[domain.SideSource],
			b.directory, b.clock, nil,
		)
		require.NoError(t, err)

		_, err = spoke.SendProof(ctx, dave, 0)
		requireCode(t, errors.PRECONDITION_FAILED, err)
		_, err = spoke.HandleProof(ctx, b.destination.ID(), domain.ProofRequest{})
		requireCode(t, errors.UNAUTHENTICATED, err)
	})
}

func TestDirectory(t *testing.T) {
	b := newTestBridge(t)
	dir := b.directory

	tests := []struct {
		name   string
		caller string
		local  string
		remote string
		code   errorCode
	}{
		{"not_the_owner", alice, "punk", "wpunk", errors.PRECONDITION_FAILED},
		{"missing_remote", operator, "punk", "", errors.INVALID_ARGUMENT},
		{"local_already_paired", operator, original, "wpunk", errors.ALREADY_EXISTS},
		{"remote_already_paired", operator, "punk", wrapped, errors.ALREADY_EXISTS},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := dir.AddPair(ctx, tt.caller, tt.local, tt.remote)
			requireCode(t, tt.code, err)
		})
	}

	require.NoError(t, dir.AddPair(ctx, operator, "punk", "wpunk"))

	remote, err := dir.Resolve(ctx, "punk")
	require.NoError(t, err)
	require.Equal(t, "wpunk", remote)
	local, err := dir.ResolveReverse(ctx, wrapped)
	require.NoError(t, err)
	require.Equal(t, original, local)

	_, err = dir.Resolve(ctx, wrapped)
	require.Error(t, err)
	_, err = dir.ResolveReverse(ctx, original)
	require.Error(t, err)

	pairs, err := dir.ListPairs(ctx)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	for _, pair := range pairs {
		require.Equal(t, b.clock.Now().Unix(), pair.CreatedAt)
	}

	_, err = NewDirectoryService("", b.repo.ContractPairs(), b.clock)
	require.Error(t, err)
}
