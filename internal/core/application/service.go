package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/arkade-os/nftbridge/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// Service runs the off-protocol agents of the bridge on top of a shared scheduler.
type Service interface {
	Start() error
	Stop()
}

// Agent is a relayer or a watchtower.
type Agent interface {
	Start(ctx context.Context) error
	Stop()
}

type service struct {
	scheduler ports.SchedulerService
	agents    []Agent

	lock    sync.Mutex
	started []Agent
}

func NewService(scheduler ports.SchedulerService, agents ...Agent) (Service, error) {
	if scheduler == nil {
		return nil, fmt.Errorf("missing scheduler")
	}
	return &service{scheduler: scheduler, agents: agents}, nil
}

func (s *service) Start() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if len(s.started) > 0 {
		return nil
	}

	ctx := context.Background()
	for _, agent := range s.agents {
		if err := agent.Start(ctx); err != nil {
			s.stopAgents()
			return fmt.Errorf("failed to start agent: %s", err)
		}
		s.started = append(s.started, agent)
	}
	s.scheduler.Start()

	log.Infof("started %d agents", len(s.started))
	return nil
}

func (s *service) Stop() {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.scheduler.Stop()
	s.stopAgents()
	log.Info("stopped agents")
}

func (s *service) stopAgents() {
	for i := len(s.started) - 1; i >= 0; i-- {
		s.started[i].Stop()
	}
	s.started = nil
}
