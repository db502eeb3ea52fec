package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRelayerLifecycle(t *testing.T) {
	t.Run("bond_and_undeposit", func(t *testing.T) {
		relayer := NewRelayer("destination", "relayer")
		require.False(t, relayer.IsRegistered())
		require.Error(t, relayer.RequestUndeposit(10))

		require.NoError(t, relayer.Bonded(20))
		require.True(t, relayer.CanRelay())
		require.Error(t, relayer.Bonded(20))

		relayer.Relayed()
		require.ErrorContains(t, relayer.RequestUndeposit(10), "not settled")

		relayer.Settled()
		require.NoError(t, relayer.RequestUndeposit(10))
		require.Equal(t, RelayerUndepositing, relayer.Status)
		require.False(t, relayer.CanRelay())

		require.Equal(t, uint64(20), relayer.Release())
		require.Equal(t, *NewRelayer("destination", "relayer"), *relayer)
	})

	t.Run("false_challenge", func(t *testing.T) {
		relayer := NewRelayer("destination", "relayer")
		require.NoError(t, relayer.Bonded(20))
		relayer.Relayed()
		relayer.Relayed()

		require.True(t, relayer.CanSettle())
		relayer.Challenged()
		relayer.Challenged()
		require.Equal(t, RelayerChallengedPending, relayer.Status)
		require.False(t, relayer.CanSettle())

		relayer.ChallengeDismissed()
		require.Equal(t, RelayerChallengedPending, relayer.Status)
		require.False(t, relayer.CanSettle())
		relayer.ChallengeDismissed()
		require.Equal(t, RelayerActive, relayer.Status)
		require.True(t, relayer.CanSettle())
		require.Zero(t, relayer.OutstandingAgainstChallenges)
		require.Equal(t, uint64(20), relayer.Bond)
	})

	t.Run("fraud_proven_once", func(t *testing.T) {
		relayer := NewRelayer("destination", "relayer")
		require.NoError(t, relayer.Bonded(20))
		relayer.Relayed()
		relayer.Relayed()
		relayer.Challenged()
		relayer.Challenged()

		require.Equal(t, uint64(20), relayer.FraudProven())
		require.True(t, relayer.IsMalicious())
		require.Zero(t, relayer.FraudProven())
		require.Zero(t, relayer.LiveChallenges)
		require.False(t, relayer.CanSettle())

		require.ErrorContains(t, relayer.Bonded(20), "malicious")
		require.Error(t, relayer.RequestUndeposit(10))
	})
}

func TestSlashingPolicy(t *testing.T) {
	tests := []struct {
		name         string
		bps          uint64
		forfeited    uint64
		stake        uint64
		victims      []string
		payout       uint64
		compensation map[string]uint64
		reserve      uint64
	}{
		{
			name:         "half_to_challenger",
			bps:          5000,
			forfeited:    20,
			stake:        10,
			victims:      []string{"bob"},
			payout:       20,
			compensation: map[string]uint64{"bob": 10},
		},
		{
			name:         "default_share",
			bps:          2500,
			forfeited:    20,
			stake:        10,
			payout:       15,
			compensation: map[string]uint64{},
			reserve:      15,
		},
		{
			name:         "share_capped_by_stake",
			bps:          5000,
			forfeited:    100,
			stake:        10,
			victims:      []string{"bob", "carol"},
			payout:       20,
			compensation: map[string]uint64{"bob": 45, "carol": 45},
		},
		{
			name:         "dust_to_reserve",
			bps:          0,
			forfeited:    10,
			stake:        5,
			victims:      []string{"bob", "carol", "dave"},
			payout:       5,
			compensation: map[string]uint64{"bob": 3, "carol": 3, "dave": 3},
			reserve:      1,
		},
		{
			name:         "no_victims",
			bps:          1000,
			forfeited:    50,
			stake:        10,
			payout:       15,
			compensation: map[string]uint64{},
			reserve:      45,
		},
		{
			name:         "already_slashed",
			bps:          5000,
			stake:        10,
			victims:      []string{"bob"},
			payout:       10,
			compensation: map[string]uint64{"bob": 0},
		},
		{
			name:         "repeated_victim",
			bps:          0,
			forfeited:    20,
			stake:        10,
			victims:      []string{"bob", "bob"},
			payout:       10,
			compensation: map[string]uint64{"bob": 20},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := SlashingPolicy{ChallengerShareBps: tt.bps}.Split(tt.forfeited, tt.stake, tt.victims)
			require.Equal(t, tt.payout, out.ChallengerPayout)
			require.Equal(t, tt.compensation, out.Compensation)
			require.Equal(t, tt.reserve, out.Reserve)

			var total uint64
			for _, amount := range out.Compensation {
				total += amount
			}
			require.Equal(t, tt.forfeited+tt.stake, out.ChallengerPayout+total+out.Reserve)
		})
	}
}
