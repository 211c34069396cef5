package service

import (
	"context"

	"leadscout/internal/services/leads/domain"
)

// Get delegates to repo
func (s *Svc) Get(ctx context.Context, externalID string) (domain.Record, error) {
	return s.Repo.Get(ctx, externalID)
}

// List delegates to repo
func (s *Svc) List(ctx context.Context, f domain.Filters) ([]domain.Record, error) {
	return s.Repo.List(ctx, f)
}

// Count delegates to repo
func (s *Svc) Count(ctx context.Context, f domain.Filters) (int, error) {
	return s.Repo.Count(ctx, f)
}
