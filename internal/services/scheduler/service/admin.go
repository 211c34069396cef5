package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	perr "leadscout/internal/platform/errors"
	tim "leadscout/internal/platform/time"
	"leadscout/internal/platform/validate"
	"leadscout/internal/services/scheduler/domain"
)

const maxRadiusM = 50_000

// Create validates and persists a new saved search, immediately due
func (s *Svc) Create(ctx context.Context, in domain.CreateInput) (domain.Definition, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Definition{}, err
	}
	if in.IntervalHours > s.config.MaxIntervalHours {
		return domain.Definition{}, perr.Validationf(
			"interval of %dh exceeds the %dh ceiling", in.IntervalHours, s.config.MaxIntervalHours)
	}
	p := in.Params
	if err := p.Validate(); err != nil {
		return domain.Definition{}, err
	}
	if p.Text != nil && p.Text.RadiusM > maxRadiusM {
		return domain.Definition{}, perr.Validationf("radius capped at %dm", maxRadiusM)
	}
	if p.Nearby != nil && p.Nearby.RadiusM > maxRadiusM {
		return domain.Definition{}, perr.Validationf("radius capped at %dm", maxRadiusM)
	}

	d := domain.Definition{
		ID:              uuid.NewString(),
		Name:            in.Name,
		Params:          p,
		IntervalHours:   in.IntervalHours,
		IsActive:        true,
		NotifyOnNew:     in.NotifyOnNew,
		NotifyThreshold: in.NotifyThreshold,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.Repo.Create(ctx, d); err != nil {
		return domain.Definition{}, err
	}

	s.deps.Log.Info().
		Str("search_id", d.ID).
		Str("name", d.Name).
		Str("kind", string(d.Params.Kind)).
		Int("interval_hours", d.IntervalHours).
		Msg("saved search created")
	return d, nil
}

// Get delegates to repo
func (s *Svc) Get(ctx context.Context, id string) (domain.Definition, error) {
	return s.Repo.Get(ctx, id)
}

// List delegates to repo
func (s *Svc) List(ctx context.Context) ([]domain.Definition, error) {
	return s.Repo.List(ctx)
}

// Delete removes a saved search and its run history
func (s *Svc) Delete(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

// Toggle flips activation. Reactivating schedules the search to run on
// the next tick rather than waiting out a stale marker
func (s *Svc) Toggle(ctx context.Context, id string, active bool) (domain.Definition, error) {
	d, err := s.Repo.Get(ctx, id)
	if err != nil {
		return domain.Definition{}, err
	}

	var next *time.Time
	if active {
		next = tim.Ptr(s.now().UTC())
	} else {
		next = d.NextRunAt
	}
	if err := s.Repo.SetActive(ctx, id, active, next); err != nil {
		return domain.Definition{}, err
	}

	d.IsActive = active
	d.NextRunAt = next
	return d, nil
}
