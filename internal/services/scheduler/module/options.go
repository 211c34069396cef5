package module

import (
	"time"

	"leadscout/internal/platform/config"
)

// Options controls scheduler behavior. Values may also be read from env
type Options struct {
	TickEvery        time.Duration
	RescoreSpec      string
	MaxResults       int
	MaxIntervalHours int
}

// FromConfig reads options using SCHEDULER_ prefix
func FromConfig(cfg config.Conf) Options {
	sc := cfg.Prefix("SCHEDULER_")
	return Options{
		TickEvery:        sc.MayDuration("TICK_EVERY", time.Minute),
		RescoreSpec:      sc.MayString("RESCORE_SPEC", "0 3 * * *"),
		MaxResults:       sc.MayInt("MAX_RESULTS", 60),
		MaxIntervalHours: sc.MayInt("MAX_INTERVAL_HOURS", 24*30),
	}
}
