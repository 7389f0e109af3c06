package geo

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/evyataryagoni/ipcheck/internal/logger"
)

// Scheduler periodically reloads a file-backed dataset
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler registers r.Reload on a standard 5-field cron spec
// (e.g. "0 3 * * *") or a descriptor like "@daily" / "@every 6h"
func NewScheduler(spec string, name string, r Reloader, log *logger.Logger) (*Scheduler, error) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("GeoScheduler")

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		log.Info().Str("provider", name).Msg("Reloading geolocation dataset")
		if err := r.Reload(); err != nil {
			log.Error().Err(err).Str("provider", name).Msg("Dataset reload failed, keeping previous data")
			return
		}
		log.Info().Str("provider", name).Msg("Dataset reload completed")
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reload schedule %q: %w", spec, err)
	}

	return &Scheduler{cron: c}, nil
}

// Start runs the schedule in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule; the returned context is done once a running
// reload has finished
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
