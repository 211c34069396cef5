package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	perr "leadscout/internal/platform/errors"
)

// Worker blocks running the tick loop until ctx is canceled. A nightly
// cron job rescoring the whole lead store rides along with the loop
func (s *Svc) Worker(ctx context.Context) error {
	log := s.deps.Log
	log.Info().
		Dur("tick_every", s.config.TickEvery).
		Str("rescore_spec", s.config.RescoreSpec).
		Msg("scheduler worker starting")

	c := cron.New()
	if s.curator != nil {
		if _, err := c.AddFunc(s.config.RescoreSpec, func() { s.rescoreJob(ctx) }); err != nil {
			return perr.Wrapf(err, perr.CodeValidation, "bad rescore cron spec %q", s.config.RescoreSpec)
		}
		c.Start()
		defer c.Stop()
	}

	ticker := time.NewTicker(s.config.TickEvery)
	defer ticker.Stop()

	// run any overdue searches straight away rather than waiting a tick
	s.tickOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("scheduler worker stopping")
			return ctx.Err()
		case <-ticker.C:
			s.tickOnce(ctx)
		}
	}
}

func (s *Svc) tickOnce(ctx context.Context) {
	results, err := s.Tick(ctx, s.now().UTC())
	if err != nil {
		if ctx.Err() == nil {
			s.deps.Log.Error().Err(err).Msg("scheduler tick failed")
		}
		return
	}
	if len(results) == 0 {
		return
	}

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	s.deps.Log.Info().
		Int("ran", len(results)).
		Int("failed", failed).
		Msg("scheduler tick complete")
}

func (s *Svc) rescoreJob(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	res, err := s.curator.RescoreAll(ctx)
	if err != nil {
		s.deps.Log.Error().Err(err).Msg("nightly rescore failed")
		return
	}
	s.deps.Log.Info().
		Int("processed", res.Processed).
		Int("changed", res.Changed).
		Msg("nightly rescore complete")
}
