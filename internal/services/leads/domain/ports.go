package domain

import "context"

// IngestorPort accepts normalized candidates into the store
type IngestorPort interface {
	// Ingest merges one candidate, reports whether it created a new lead
	Ingest(ctx context.Context, c Candidate) (isNew bool, err error)

	// IngestBatch merges a batch as one unit of work with per-record
	// failure isolation and exactly one audit entry
	IngestBatch(ctx context.Context, b Batch) (Stats, error)
}

// ReaderPort is the query surface over stored leads
type ReaderPort interface {
	Get(ctx context.Context, externalID string) (Record, error)
	List(ctx context.Context, f Filters) ([]Record, error)
	Count(ctx context.Context, f Filters) (int, error)
}

// CuratorPort mutates lead curation state
type CuratorPort interface {
	UpdateStatus(ctx context.Context, externalID string, s Status) error

	// RescoreAll re-evaluates every stored lead against the current rules
	RescoreAll(ctx context.Context) (RescoreResult, error)
}
