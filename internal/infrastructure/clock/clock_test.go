package clock_test

import (
	"testing"
	"time"

	"github.com/arkade-os/nftbridge/internal/infrastructure/clock"
	"github.com/stretchr/testify/require"
)

func TestManualClock(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	c := clock.NewManualClock(start)
	require.Equal(t, start, c.Now())

	now := c.Advance(90 * time.Second)
	require.Equal(t, start.Add(90*time.Second), now)
	require.Equal(t, now, c.Now())

	c.Set(start)
	require.Equal(t, start, c.Now())
}

func TestSystemClock(t *testing.T) {
	before := time.Now()
	now := clock.NewSystemClock().Now()
	require.False(t, now.Before(before))
}
