// Package service contains leads workflows
package service

import (
	"time"

	"leadscout/internal/core/scoring"
	"leadscout/internal/modkit"
	"leadscout/internal/modkit/repokit"
	"leadscout/internal/services/leads/domain"
	"leadscout/internal/services/leads/repo"
)

// Service defines the leads service contract
type Service interface {
	domainPorts
}

// domainPorts keeps the interface grouping local
type domainPorts interface {
	domain.IngestorPort
	domain.ReaderPort
	domain.CuratorPort
}

// Config carries runtime knobs for ingestion and rescoring
type Config struct {
	// Retention is how long a lead stays fresh after its last merge
	Retention time.Duration

	// HighScoreThreshold marks new leads worth notifying about
	HighScoreThreshold int

	// RescorePageSize bounds how many rows a rescore sweep loads at once
	RescorePageSize int
}

// Svc implements the leads service
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
	deps   modkit.Deps
	config Config
	engine *scoring.Engine

	now func() time.Time
}

// New constructs a leads service
func New(deps modkit.Deps, cfg Config, engine *scoring.Engine) *Svc {
	if deps.PG == nil {
		panic("leads.Service requires a non nil TxRunner")
	}
	if engine == nil {
		engine = scoring.Default()
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 30 * 24 * time.Hour
	}
	if cfg.HighScoreThreshold <= 0 {
		cfg.HighScoreThreshold = 70
	}
	if cfg.RescorePageSize <= 0 {
		cfg.RescorePageSize = 500
	}

	b := repo.NewPG()
	return &Svc{
		Repo:   b.Bind(deps.PG),
		binder: b,
		db:     deps.PG,
		deps:   deps,
		config: cfg,
		engine: engine,
		now:    time.Now,
	}
}

// Engine returns the scoring engine so callers can tune rules
func (s *Svc) Engine() *scoring.Engine { return s.engine }
