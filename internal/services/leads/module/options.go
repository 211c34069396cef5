package module

import (
	"time"

	"leadscout/internal/platform/config"
)

// Options controls leads behavior. Values may also be read from env
type Options struct {
	Retention          time.Duration
	HighScoreThreshold int
	RescorePageSize    int
}

// FromConfig reads options using LEADS_ prefix
func FromConfig(cfg config.Conf) Options {
	ld := cfg.Prefix("LEADS_")
	return Options{
		Retention:          time.Duration(ld.MayInt("RETENTION_DAYS", 30)) * 24 * time.Hour,
		HighScoreThreshold: ld.MayInt("HIGH_SCORE_THRESHOLD", 70),
		RescorePageSize:    ld.MayInt("RESCORE_PAGE_SIZE", 500),
	}
}
