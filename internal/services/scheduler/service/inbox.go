package service

import (
	"context"

	"leadscout/internal/services/scheduler/domain"
)

// Notifications delegates to repo
func (s *Svc) Notifications(ctx context.Context, unreadOnly bool) ([]domain.Notification, error) {
	return s.Repo.Notifications(ctx, unreadOnly)
}

// MarkRead delegates to repo
func (s *Svc) MarkRead(ctx context.Context, id string) error {
	return s.Repo.MarkRead(ctx, id)
}

// DeleteNotification delegates to repo
func (s *Svc) DeleteNotification(ctx context.Context, id string) error {
	return s.Repo.DeleteNotification(ctx, id)
}

// Logs delegates to repo
func (s *Svc) Logs(ctx context.Context, definitionID string, limit int) ([]domain.RunLogEntry, error) {
	return s.Repo.Logs(ctx, definitionID, limit)
}

// Stats delegates to repo
func (s *Svc) Stats(ctx context.Context) (domain.Stats, error) {
	return s.Repo.Stats(ctx, s.now().UTC())
}
