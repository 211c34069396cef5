// Package service contains scheduler workflows
package service

import (
	"context"
	"iter"
	"time"

	"leadscout/internal/adapters/overpass"
	"leadscout/internal/adapters/places"
	"leadscout/internal/modkit"
	"leadscout/internal/modkit/repokit"
	ldomain "leadscout/internal/services/leads/domain"
	"leadscout/internal/services/scheduler/domain"
	"leadscout/internal/services/scheduler/repo"
)

// Service defines the scheduler service contract
type Service interface {
	domainPorts
}

// domainPorts keeps the interface grouping local
type domainPorts interface {
	domain.AdminPort
	domain.RunnerPort
	domain.InboxPort
	domain.ReporterPort
}

// TextSearcher is the provider surface a text or nearby search needs
type TextSearcher interface {
	SearchPages(ctx context.Context, req places.TextSearchRequest, maxResults int) iter.Seq2[places.Place, error]
	NearbySearch(ctx context.Context, req places.NearbySearchRequest) (*places.SearchResponse, error)
}

// TagDiscoverer is the open-data surface a tags search needs
type TagDiscoverer interface {
	Discover(ctx context.Context, q overpass.DiscoverQuery) ([]overpass.Element, error)
}

// Config carries runtime knobs for the worker loop
type Config struct {
	// TickEvery is the poll cadence of the worker loop
	TickEvery time.Duration

	// RescoreSpec is the cron expression for the nightly rescore sweep
	RescoreSpec string

	// MaxResults caps one text search run
	MaxResults int

	// MaxIntervalHours bounds the cadence a definition may request
	MaxIntervalHours int
}

// Svc implements the scheduler service
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
	deps   modkit.Deps
	config Config

	ingestor ldomain.IngestorPort
	curator  ldomain.CuratorPort
	searcher TextSearcher
	tags     TagDiscoverer

	now func() time.Time
}

// New constructs a scheduler service
func New(
	deps modkit.Deps,
	cfg Config,
	ingestor ldomain.IngestorPort,
	curator ldomain.CuratorPort,
	searcher TextSearcher,
	tags TagDiscoverer,
) *Svc {
	if deps.PG == nil {
		panic("scheduler.Service requires a non nil TxRunner")
	}
	if ingestor == nil {
		panic("scheduler.Service requires a leads ingestor")
	}
	if cfg.TickEvery <= 0 {
		cfg.TickEvery = time.Minute
	}
	if cfg.RescoreSpec == "" {
		cfg.RescoreSpec = "0 3 * * *"
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 60
	}
	if cfg.MaxIntervalHours <= 0 {
		cfg.MaxIntervalHours = 24 * 30
	}

	b := repo.NewPG()
	return &Svc{
		Repo:     b.Bind(deps.PG),
		binder:   b,
		db:       deps.PG,
		deps:     deps,
		config:   cfg,
		ingestor: ingestor,
		curator:  curator,
		searcher: searcher,
		tags:     tags,
		now:      time.Now,
	}
}
