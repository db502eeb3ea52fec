package scheduler_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/arkade-os/nftbridge/internal/core/ports"
	"github.com/arkade-os/nftbridge/internal/infrastructure/clock"
	clockscheduler "github.com/arkade-os/nftbridge/internal/infrastructure/scheduler/clock"
	timescheduler "github.com/arkade-os/nftbridge/internal/infrastructure/scheduler/gocron"
	"github.com/stretchr/testify/require"
)

type service struct {
	name      string
	scheduler ports.SchedulerService
}

func TestScheduleTask(t *testing.T) {
	t.Parallel()

	svcs := servicesToTest(t)

	for _, svc := range svcs {
		t.Run(svc.name, func(t *testing.T) {
			var handlerFuncCalled atomic.Bool
			handlerFunc := func() {
				handlerFuncCalled.Store(true)
			}

			err := svc.scheduler.ScheduleTaskOnce(time.Now().Add(2*time.Second), handlerFunc)
			require.NoError(t, err)

			require.Eventually(t, handlerFuncCalled.Load, 5*time.Second, 100*time.Millisecond)
		})
	}
}

func TestScheduleEvery(t *testing.T) {
	t.Parallel()

	svcs := servicesToTest(t)

	for _, svc := range svcs {
		t.Run(svc.name, func(t *testing.T) {
			var calls atomic.Int32
			err := svc.scheduler.ScheduleEvery(time.Second, func() {
				calls.Add(1)
			})
			require.NoError(t, err)

			require.Eventually(t, func() bool {
				return calls.Load() >= 2
			}, 5*time.Second, 100*time.Millisecond)
		})
	}
}

func TestScheduleInvalidTask(t *testing.T) {
	for _, svc := range servicesToTest(t) {
		t.Run(svc.name, func(t *testing.T) {
			err := svc.scheduler.ScheduleTaskOnce(time.Now().Add(-time.Minute), func() {})
			require.Error(t, err)

			err = svc.scheduler.ScheduleEvery(0, func() {})
			require.Error(t, err)
		})
	}
}

func TestClockScheduler(t *testing.T) {
	start := time.Unix(1700000000, 0)
	manualClock := clock.NewManualClock(start)
	svc, err := clockscheduler.NewScheduler(manualClock)
	require.NoError(t, err)

	var once, every int
	err = svc.ScheduleTaskOnce(start.Add(10*time.Second), func() { once++ })
	require.NoError(t, err)
	err = svc.ScheduleEvery(3*time.Second, func() { every++ })
	require.NoError(t, err)

	require.Zero(t, svc.RunPending())

	manualClock.Advance(3 * time.Second)
	require.Equal(t, 1, svc.RunPending())
	require.Equal(t, 1, every)
	require.Zero(t, svc.RunPending())

	// A late periodic task fires once and is moved past now.
	manualClock.Advance(8 * time.Second)
	require.Equal(t, 2, svc.RunPending())
	require.Equal(t, 1, once)
	require.Equal(t, 2, every)

	manualClock.Advance(time.Hour)
	require.Equal(t, 1, svc.RunPending())
	require.Equal(t, 1, once)
	require.Equal(t, 3, every)

	_, err = clockscheduler.NewScheduler(nil)
	require.Error(t, err)
}

func servicesToTest(t *testing.T) []service {
	clockService, err := clockscheduler.NewScheduler(
		clock.NewSystemClock(),
		clockscheduler.WithTickerInterval(100*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("failed to create clock scheduler: %v", err)
	}

	svcs := []service{
		{name: "gocron", scheduler: timescheduler.NewScheduler()},
		{name: "clock", scheduler: clockService},
	}

	for _, svc := range svcs {
		svc.scheduler.Start()
		t.Cleanup(func() { svc.scheduler.Stop() })
	}

	return svcs
}
