// Package module wires the leads service and exposes its ports
package module

import (
	"leadscout/internal/modkit"
	"leadscout/internal/services/leads/service"
)

// Module defines the leads module
type Module struct {
	deps  modkit.Deps
	svc   *service.Svc
	ports Ports
}

// New constructs the leads module with its ports
func New(deps modkit.Deps, overrides Options) *Module {
	// Load defaults from config then apply overrides from CLI (if provided)
	opts := FromConfig(deps.Cfg)

	if overrides.Retention != 0 {
		opts.Retention = overrides.Retention
	}
	if overrides.HighScoreThreshold != 0 {
		opts.HighScoreThreshold = overrides.HighScoreThreshold
	}
	if overrides.RescorePageSize != 0 {
		opts.RescorePageSize = overrides.RescorePageSize
	}

	svc := service.New(deps, service.Config{
		Retention:          opts.Retention,
		HighScoreThreshold: opts.HighScoreThreshold,
		RescorePageSize:    opts.RescorePageSize,
	}, nil)

	m := &Module{deps: deps, svc: svc}
	m.ports = Ports{
		Ingestor: svc,
		Reader:   svc,
		Curator:  svc,
	}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "leads" }

// Ports returns the module ports (Ingestor, Reader, Curator)
func (m *Module) Ports() any { return m.ports }

// Service returns the underlying service for in-process callers
func (m *Module) Service() *service.Svc { return m.svc }
