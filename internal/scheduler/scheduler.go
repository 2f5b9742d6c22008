// Package scheduler drives the periodic chunk delivery. It is an explicit
// component with an injectable clock so tests can simulate a period
// passing without waiting for one.
package scheduler

import (
	"time"

	"github.com/google/uuid"
)

// DeliverFunc runs one delivery pass. runID correlates log lines of a
// single pass.
type DeliverFunc func(runID string, now time.Time)

type Scheduler struct {
	interval time.Duration
	now      func() time.Time
	deliver  DeliverFunc
	stopCh   chan struct{}
}

type Config struct {
	Interval time.Duration    // defaults to 24h
	Now      func() time.Time // defaults to time.Now
}

func New(cfg Config, deliver DeliverFunc) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Scheduler{
		interval: cfg.Interval,
		now:      cfg.Now,
		deliver:  deliver,
		stopCh:   make(chan struct{}, 1),
	}
}

// Run starts the delivery loop in a background goroutine.
func (s *Scheduler) Run() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.deliver(uuid.NewString(), s.now())
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.stopCh <- struct{}{}
}
