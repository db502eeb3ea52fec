package clock

import (
	"sync"
	"time"

	"github.com/arkade-os/nftbridge/internal/core/ports"
)

type systemClock struct{}

func NewSystemClock() ports.Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

// ManualClock only moves when told to. It drives the dispute windows in tests and simulations.
type ManualClock struct {
	lock *sync.RWMutex
	now  time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{lock: &sync.RWMutex{}, now: start}
}

func (c *ManualClock) Now() time.Time {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.now
}

func (c *ManualClock) Set(t time.Time) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = t
}

func (c *ManualClock) Advance(d time.Duration) time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = c.now.Add(d)
	return c.now
}
