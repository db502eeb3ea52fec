package inmemorybank_test

import (
	"testing"

	inmemorybank "github.com/arkade-os/nftbridge/internal/infrastructure/bank"
	"github.com/stretchr/testify/require"
)

func TestBank(t *testing.T) {
	ctx := t.Context()
	bank := inmemorybank.NewBank()

	require.NoError(t, bank.Credit(ctx, "alice", 100))
	err := bank.Transfer(ctx, "alice", "bob", 101)
	require.ErrorContains(t, err, "insufficient balance")

	require.NoError(t, bank.Transfer(ctx, "alice", "bob", 60))
	require.NoError(t, bank.Transfer(ctx, "bob", "bob", 1_000))
	require.NoError(t, bank.Transfer(ctx, "carol", "bob", 0))

	balance, err := bank.Balance(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, uint64(40), balance)

	balance, err = bank.Balance(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, uint64(60), balance)

	balance, err = bank.Balance(ctx, "carol")
	require.NoError(t, err)
	require.Zero(t, balance)

	err = bank.Transfer(ctx, "", "bob", 1)
	require.Error(t, err)
}
