package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/igmoiiz/Project-Portal-AUMC/internal/logging"
)

// Refresher reloads whatever view it owns; the browse controller is one.
type Refresher interface {
	Refresh(ctx context.Context) <-chan struct{}
}

// Scheduler re-fetches the selected department on a cron schedule so the
// bridge picks up proposals uploaded by other faculty.
type Scheduler struct {
	spec   string
	target Refresher

	mu   sync.Mutex
	cron *cron.Cron
}

func NewScheduler(spec string, target Refresher) *Scheduler {
	return &Scheduler{spec: spec, target: target}
}

// Start registers the refresh job. Specs take an optional seconds field and
// descriptors such as "@every 5m".
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}

	c := cron.New(cron.WithParser(cron.NewParser(
		cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)))
	_, err := c.AddFunc(s.spec, s.run)
	if err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", s.spec, err)
	}

	log.Printf("Refresh scheduler started (schedule %q)", s.spec)
	c.Start()
	s.cron = c
	return nil
}

// Stop halts the schedule and waits for a running refresh to settle.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
}

func (s *Scheduler) run() {
	ctx := logging.EnsureRequestID(context.Background())
	logging.NewLogger(ctx).LogDebugf("scheduled_refresh", "refreshing")
	<-s.target.Refresh(ctx)
}
