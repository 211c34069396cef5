// Package module wires the scheduler service and exposes its ports
package module

import (
	"leadscout/internal/modkit"
	"leadscout/internal/services/scheduler/domain"
	"leadscout/internal/services/scheduler/service"
)

// Clients carries the provider surfaces the runner dispatches to.
// Either may be nil when the deployment lacks that provider
type Clients struct {
	Searcher service.TextSearcher
	Tags     service.TagDiscoverer
}

// Module defines the scheduler module
type Module struct {
	deps  modkit.Deps
	svc   *service.Svc
	ports Ports
}

// New constructs the scheduler module with its ports.
// The leads ports arrive via modkit.WithPorts(scheduler/domain.Ports)
func New(deps modkit.Deps, overrides Options, clients Clients, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("scheduler"),
	}, opts...)...)

	// Basic guardrails against incorrect wiring
	wired, ok := b.Ports.(domain.Ports)
	if !ok {
		panic("scheduler module: expected WithPorts(scheduler/domain.Ports)")
	}
	if wired.Ingestor == nil {
		panic("scheduler module: Ports missing Ingestor")
	}

	// Load defaults from config then apply overrides from CLI (if provided)
	cfg := FromConfig(deps.Cfg)
	if overrides.TickEvery != 0 {
		cfg.TickEvery = overrides.TickEvery
	}
	if overrides.RescoreSpec != "" {
		cfg.RescoreSpec = overrides.RescoreSpec
	}
	if overrides.MaxResults != 0 {
		cfg.MaxResults = overrides.MaxResults
	}
	if overrides.MaxIntervalHours != 0 {
		cfg.MaxIntervalHours = overrides.MaxIntervalHours
	}

	svc := service.New(deps, service.Config{
		TickEvery:        cfg.TickEvery,
		RescoreSpec:      cfg.RescoreSpec,
		MaxResults:       cfg.MaxResults,
		MaxIntervalHours: cfg.MaxIntervalHours,
	}, wired.Ingestor, wired.Curator, clients.Searcher, clients.Tags)

	m := &Module{deps: deps, svc: svc}
	m.ports = Ports{
		Admin:    svc,
		Runner:   svc,
		Inbox:    svc,
		Reporter: svc,
	}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "scheduler" }

// Ports returns the module ports (Admin, Runner, Inbox, Reporter)
func (m *Module) Ports() any { return m.ports }
