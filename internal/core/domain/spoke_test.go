package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSide(t *testing.T) {
	for _, side := range []Side{SideSource, SideDestination} {
		parsed, err := ParseSide(side.String())
		require.NoError(t, err)
		require.Equal(t, side, parsed)
		require.NotEqual(t, side, side.Opposite())
		require.Equal(t, side, side.Opposite().Opposite())
	}

	_, err := ParseSide("hub")
	require.Error(t, err)
}

func TestSpokeState(t *testing.T) {
	t.Run("relay_cursor", func(t *testing.T) {
		state := NewSpokeState("destination", SideDestination)
		state.Relayed(0)
		state.Relayed(1)
		require.Equal(t, uint64(2), state.RelayCursor)
		require.Equal(t, uint64(2), state.RelayedUpTo)
	})

	t.Run("freeze_and_restore", func(t *testing.T) {
		state := NewSpokeState("destination", SideDestination)
		for h := uint64(0); h < 5; h++ {
			state.Relayed(h)
		}
		state.SettledCursor = 4

		state.ChallengeOpened()
		state.ChallengeOpened()
		require.Equal(t, SpokeFrozen, state.Status)

		state.MarkMalicious(3)
		state.ChallengeClosed()
		require.Equal(t, SpokeFrozen, state.Status)
		require.False(t, state.CanRestore())
		require.Error(t, state.Restore())

		state.MarkMalicious(1)
		state.ChallengeClosed()
		require.Equal(t, SpokeMalicious, state.Status)
		require.Equal(t, uint64(1), state.FirstMaliciousHeight)

		require.NoError(t, state.Restore())
		require.Equal(t, SpokeActive, state.Status)
		require.Equal(t, uint64(1), state.RelayCursor)
		require.Equal(t, uint64(1), state.SettledCursor)
		require.Equal(t, uint64(5), state.RelayedUpTo)
		require.False(t, state.HasMalicious)
	})

	t.Run("nothing_to_restore", func(t *testing.T) {
		state := NewSpokeState("source", SideSource)
		require.ErrorContains(t, state.Restore(), "cannot be restored")
	})
}
