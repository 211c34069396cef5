package domain

import (
	"context"
	"time"

	ldomain "leadscout/internal/services/leads/domain"
)

// Ports carries the cross module dependencies the runner needs,
// injected at build time via modkit.WithPorts
type Ports struct {
	Ingestor ldomain.IngestorPort
	Curator  ldomain.CuratorPort
}

// AdminPort manages saved search definitions
type AdminPort interface {
	Create(ctx context.Context, in CreateInput) (Definition, error)
	Get(ctx context.Context, id string) (Definition, error)
	List(ctx context.Context) ([]Definition, error)
	Delete(ctx context.Context, id string) error

	// Toggle flips activation; reactivating makes the search due immediately
	Toggle(ctx context.Context, id string, active bool) (Definition, error)
}

// RunnerPort executes saved searches
type RunnerPort interface {
	// RunNow executes one definition regardless of its schedule
	RunNow(ctx context.Context, id string) (RunResult, error)

	// Tick runs every due definition sequentially, isolating failures
	Tick(ctx context.Context, now time.Time) ([]RunResult, error)

	// Worker blocks running the tick loop and maintenance jobs until ctx ends
	Worker(ctx context.Context) error
}

// InboxPort is the notification surface
type InboxPort interface {
	Notifications(ctx context.Context, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, id string) error
	DeleteNotification(ctx context.Context, id string) error
}

// ReporterPort exposes run history and aggregate stats
type ReporterPort interface {
	Logs(ctx context.Context, definitionID string, limit int) ([]RunLogEntry, error)
	Stats(ctx context.Context) (Stats, error)
}
