package inmemoryledger_test

import (
	"testing"

	inmemoryledger "github.com/arkade-os/nftbridge/internal/infrastructure/ledger"
	"github.com/stretchr/testify/require"
)

const (
	custody  = "spoke-custody"
	original = "0xoriginal"
	wrapped  = "0xwrapped"
	alice    = "alice"
	bob      = "bob"
)

func TestLedger(t *testing.T) {
	ctx := t.Context()

	t.Run("issue and transfer", func(t *testing.T) {
		ledger := inmemoryledger.NewLedger(custody, wrapped)
		require.NoError(t, ledger.Issue(ctx, original, alice, 1))

		err := ledger.Issue(ctx, original, bob, 1)
		require.EqualError(t, err, "token already minted")
		err = ledger.Issue(ctx, wrapped, alice, 1)
		require.Error(t, err)

		err = ledger.Transfer(ctx, original, bob, alice, 1)
		require.EqualError(t, err, "transfer from incorrect owner")
		require.NoError(t, ledger.Transfer(ctx, original, alice, bob, 1))

		owner, err := ledger.OwnerOf(ctx, original, 1)
		require.NoError(t, err)
		require.Equal(t, bob, owner)

		_, err = ledger.OwnerOf(ctx, original, 2)
		require.EqualError(t, err, "invalid token ID")
	})

	t.Run("lock and release", func(t *testing.T) {
		ledger := inmemoryledger.NewLedger(custody)
		require.NoError(t, ledger.Issue(ctx, original, alice, 7))

		err := ledger.Lock(ctx, original, bob, 7)
		require.EqualError(t, err, "transfer from incorrect owner")
		require.NoError(t, ledger.Lock(ctx, original, alice, 7))

		owner, err := ledger.OwnerOf(ctx, original, 7)
		require.NoError(t, err)
		require.Equal(t, custody, owner)

		require.NoError(t, ledger.Release(ctx, original, bob, 7))
		owner, err = ledger.OwnerOf(ctx, original, 7)
		require.NoError(t, err)
		require.Equal(t, bob, owner)

		err = ledger.Release(ctx, original, alice, 7)
		require.EqualError(t, err, "transfer from incorrect owner")
	})

	t.Run("mint and burn", func(t *testing.T) {
		ledger := inmemoryledger.NewLedger(custody, wrapped)

		err := ledger.Mint(ctx, original, alice, 1)
		require.EqualError(t, err, "caller is not the owner")
		require.NoError(t, ledger.Mint(ctx, wrapped, alice, 1))
		err = ledger.Mint(ctx, wrapped, bob, 1)
		require.EqualError(t, err, "token already minted")

		require.NoError(t, ledger.Burn(ctx, wrapped, 1))
		_, err = ledger.OwnerOf(ctx, wrapped, 1)
		require.EqualError(t, err, "invalid token ID")

		err = ledger.Burn(ctx, wrapped, 1)
		require.EqualError(t, err, "invalid token ID")

		// A burnt id can be minted again when the asset comes back.
		require.NoError(t, ledger.Mint(ctx, wrapped, bob, 1))
	})
}
