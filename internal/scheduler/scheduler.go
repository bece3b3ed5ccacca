// Package scheduler wires up the cron job that periodically re-runs the
// discovery pipeline.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps robfig/cron around a single run function.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	run    func(context.Context)
	logger *log.Logger
}

// New creates a Scheduler that fires every intervalHours hours.
func New(intervalHours int, run func(context.Context), logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.New(log.Writer(), "[scheduler] ", log.LstdFlags)
	}
	return &Scheduler{
		cron:   cron.New(),
		spec:   fmt.Sprintf("@every %dh", intervalHours),
		run:    run,
		logger: logger,
	}
}

// Start registers the job and starts the scheduler. Also runs one
// harvest immediately so results exist before the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.logger.Printf("harvest cycle started")
		s.run(ctx)
		s.logger.Printf("harvest cycle complete")
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Printf("cron started with spec %s", s.spec)

	go func() {
		s.logger.Printf("initial harvest started")
		s.run(ctx)
		s.logger.Printf("initial harvest complete")
	}()

	return nil
}

// Stop shuts the scheduler down and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Printf("cron stopped")
}
