package clockscheduler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/arkade-os/nftbridge/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

type Option func(*service)

func WithTickerInterval(interval time.Duration) Option {
	return func(s *service) {
		s.tickerInterval = interval
	}
}

type task struct {
	at       time.Time
	interval time.Duration
	run      func()
}

// Scheduler runs the tasks whose time has come according to the given clock. Tasks are checked
// at every tick of the ticker, or on demand with RunPending.
type Scheduler interface {
	ports.SchedulerService
	// RunPending runs synchronously the due tasks and returns how many were run.
	RunPending() int
}

type service struct {
	clock          ports.Clock
	lock           sync.Locker
	tasks          []*task
	stopCh         chan struct{}
	stopOnce       sync.Once
	tickerInterval time.Duration
}

func NewScheduler(clock ports.Clock, opts ...Option) (Scheduler, error) {
	if clock == nil {
		return nil, fmt.Errorf("clock is required")
	}

	svc := &service{
		clock:          clock,
		lock:           &sync.Mutex{},
		tasks:          make([]*task, 0),
		stopCh:         make(chan struct{}),
		tickerInterval: time.Second,
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

func (s *service) Start() {
	go func() {
		ticker := time.NewTicker(s.tickerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				tasks := s.popTasks()
				log.Tracef("fetched %d tasks", len(tasks))
				for _, t := range tasks {
					go t()
				}
			}
		}
	}()
}

func (s *service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

func (s *service) ScheduleTaskOnce(at time.Time, run func()) error {
	if at.Before(s.clock.Now()) {
		return fmt.Errorf("cannot schedule task in the past")
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.tasks = append(s.tasks, &task{at: at, run: run})
	return nil
}

func (s *service) ScheduleEvery(interval time.Duration, run func()) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.tasks = append(s.tasks, &task{
		at: s.clock.Now().Add(interval), interval: interval, run: run,
	})
	return nil
}

func (s *service) RunPending() int {
	tasks := s.popTasks()
	for _, t := range tasks {
		t()
	}
	return len(tasks)
}

// popTasks returns the due tasks, oldest first. Periodic tasks are moved to their next run,
// late ones fire once.
func (s *service) popTasks() []func() {
	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.clock.Now()
	sort.SliceStable(s.tasks, func(i, j int) bool {
		return s.tasks[i].at.Before(s.tasks[j].at)
	})

	due := make([]func(), 0)
	pending := s.tasks[:0]
	for _, t := range s.tasks {
		if t.at.After(now) {
			pending = append(pending, t)
			continue
		}

		due = append(due, t.run)
		if t.interval > 0 {
			for !t.at.After(now) {
				t.at = t.at.Add(t.interval)
			}
			pending = append(pending, t)
		}
	}
	s.tasks = pending

	return due
}
