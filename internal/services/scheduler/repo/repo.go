// Package repo provides the scheduler repository implementation
package repo

import (
	"context"
	"encoding/json"
	"time"

	"leadscout/internal/modkit/repokit"
	perr "leadscout/internal/platform/errors"
	"leadscout/internal/platform/store"
	"leadscout/internal/services/scheduler/domain"
)

// Repo defines the scheduler repository contract
type Repo interface {
	Create(ctx context.Context, d domain.Definition) error
	Get(ctx context.Context, id string) (domain.Definition, error)
	List(ctx context.Context) ([]domain.Definition, error)
	Delete(ctx context.Context, id string) error

	// SetActive flips activation and rewrites the next run marker
	SetActive(ctx context.Context, id string, active bool, nextRunAt *time.Time) error

	// ListDue returns active definitions never scheduled or due at now
	ListDue(ctx context.Context, now time.Time) ([]domain.Definition, error)

	// MarkExecuted advances the cadence markers and lifetime counters
	// after a successful run
	MarkExecuted(ctx context.Context, id string, lastRun, nextRun time.Time, newFound int) error

	// MarkAttempted advances only the cadence markers after a failed
	// run; lifetime counters stay put
	MarkAttempted(ctx context.Context, id string, lastRun, nextRun time.Time) error

	AppendRunLog(ctx context.Context, e domain.RunLogEntry) error
	Logs(ctx context.Context, definitionID string, limit int) ([]domain.RunLogEntry, error)

	CreateNotification(ctx context.Context, n domain.Notification) error
	Notifications(ctx context.Context, unreadOnly bool) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
	DeleteNotification(ctx context.Context, id string) error

	Stats(ctx context.Context, now time.Time) (domain.Stats, error)
}

type (
	// PG is a Postgres scheduler repository
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG constructs a Postgres scheduler repository
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind binds a Queryer to a Postgres implementation of Repo
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

const defColumns = `
	id, name, params, interval_hours, is_active, notify_on_new, notify_threshold,
	total_runs, total_new_found, last_new_count,
	last_run_at, next_run_at, created_at`

func scanDefinition(r store.Row) (domain.Definition, error) {
	var d domain.Definition
	var raw []byte
	err := r.Scan(
		&d.ID, &d.Name, &raw, &d.IntervalHours, &d.IsActive, &d.NotifyOnNew, &d.NotifyThreshold,
		&d.TotalRuns, &d.TotalNewFound, &d.LastNewCount,
		&d.LastRunAt, &d.NextRunAt, &d.CreatedAt,
	)
	if err != nil {
		return domain.Definition{}, err
	}
	if err := json.Unmarshal(raw, &d.Params); err != nil {
		return domain.Definition{}, perr.Wrap(err, perr.CodeSyntax, "stored params corrupt")
	}
	return d, nil
}

// Create persists a new saved search
func (r *queries) Create(ctx context.Context, d domain.Definition) error {
	raw, err := d.Params.Encode()
	if err != nil {
		return err
	}
	const sql = `
		INSERT INTO saved_searches (
			id, name, params, interval_hours, is_active, notify_on_new, notify_threshold,
			total_runs, total_new_found, last_new_count,
			last_run_at, next_run_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`
	_, err = r.q.Exec(ctx, sql,
		d.ID, d.Name, []byte(raw), d.IntervalHours, d.IsActive, d.NotifyOnNew, d.NotifyThreshold,
		d.TotalRuns, d.TotalNewFound, d.LastNewCount,
		d.LastRunAt, d.NextRunAt, d.CreatedAt,
	)
	return perr.FromPg(err, "create saved search")
}

// Get returns one saved search, CodeNotFound when absent
func (r *queries) Get(ctx context.Context, id string) (domain.Definition, error) {
	sql := `SELECT` + defColumns + ` FROM saved_searches WHERE id = $1`
	d, err := store.One(ctx, r.q, scanDefinition, sql, id)
	if err != nil {
		if perr.Is(err, perr.CodeNotFound) {
			return domain.Definition{}, perr.NotFoundf("saved search %s not found", id)
		}
		return domain.Definition{}, perr.FromPg(err, "get saved search")
	}
	return d, nil
}

// List returns all saved searches, newest first
func (r *queries) List(ctx context.Context) ([]domain.Definition, error) {
	sql := `SELECT` + defColumns + ` FROM saved_searches ORDER BY created_at DESC, id`
	out, err := store.Many(ctx, r.q, scanDefinition, sql)
	if err != nil {
		return nil, perr.FromPg(err, "list saved searches")
	}
	return out, nil
}

// Delete removes a saved search and its dependents via FK cascade
func (r *queries) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM saved_searches WHERE id = $1`, id)
	if err != nil {
		return perr.FromPg(err, "delete saved search")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("saved search %s not found", id)
	}
	return nil
}

// SetActive flips activation and rewrites the next run marker
func (r *queries) SetActive(ctx context.Context, id string, active bool, nextRunAt *time.Time) error {
	const sql = `UPDATE saved_searches SET is_active = $2, next_run_at = $3 WHERE id = $1`
	tag, err := r.q.Exec(ctx, sql, id, active, nextRunAt)
	if err != nil {
		return perr.FromPg(err, "toggle saved search")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("saved search %s not found", id)
	}
	return nil
}

// ListDue returns active definitions never scheduled or due at now
func (r *queries) ListDue(ctx context.Context, now time.Time) ([]domain.Definition, error) {
	sql := `SELECT` + defColumns + `
		FROM saved_searches
		WHERE is_active AND (next_run_at IS NULL OR next_run_at <= $1)
		ORDER BY next_run_at NULLS FIRST, created_at`
	out, err := store.Many(ctx, r.q, scanDefinition, sql, now)
	if err != nil {
		return nil, perr.FromPg(err, "list due searches")
	}
	return out, nil
}

// MarkExecuted advances the cadence markers and lifetime counters
func (r *queries) MarkExecuted(ctx context.Context, id string, lastRun, nextRun time.Time, newFound int) error {
	const sql = `
		UPDATE saved_searches SET
			last_run_at = $2,
			next_run_at = $3,
			total_runs = total_runs + 1,
			total_new_found = total_new_found + $4,
			last_new_count = $4
		WHERE id = $1
	`
	if err := store.ExecOne(ctx, r.q, sql, id, lastRun, nextRun, newFound); err != nil {
		return perr.FromPg(err, "mark search executed")
	}
	return nil
}

// MarkAttempted advances only the cadence markers
func (r *queries) MarkAttempted(ctx context.Context, id string, lastRun, nextRun time.Time) error {
	const sql = `UPDATE saved_searches SET last_run_at = $2, next_run_at = $3 WHERE id = $1`
	if err := store.ExecOne(ctx, r.q, sql, id, lastRun, nextRun); err != nil {
		return perr.FromPg(err, "mark search attempted")
	}
	return nil
}

// AppendRunLog records one execution trace
func (r *queries) AppendRunLog(ctx context.Context, e domain.RunLogEntry) error {
	const sql = `
		INSERT INTO run_logs (
			id, search_id, started_at, status, duration_ms, found, new_leads, high_score, api_calls, error
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`
	_, err := r.q.Exec(ctx, sql,
		e.ID, e.DefinitionID, e.StartedAt, e.Status, e.DurationMs,
		e.Found, e.New, e.HighScore, e.APICalls, e.Err,
	)
	return perr.FromPg(err, "append run log")
}

func scanRunLog(r store.Row) (domain.RunLogEntry, error) {
	var e domain.RunLogEntry
	err := r.Scan(
		&e.ID, &e.DefinitionID, &e.StartedAt, &e.Status, &e.DurationMs,
		&e.Found, &e.New, &e.HighScore, &e.APICalls, &e.Err,
	)
	return e, err
}

// Logs returns recent run traces for one definition, newest first
func (r *queries) Logs(ctx context.Context, definitionID string, limit int) ([]domain.RunLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	const sql = `
		SELECT id, search_id, started_at, status, duration_ms, found, new_leads, high_score, api_calls, error
		FROM run_logs
		WHERE search_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`
	out, err := store.Many(ctx, r.q, scanRunLog, sql, definitionID, limit)
	if err != nil {
		return nil, perr.FromPg(err, "list run logs")
	}
	return out, nil
}

// CreateNotification persists one inbox entry
func (r *queries) CreateNotification(ctx context.Context, n domain.Notification) error {
	const sql = `
		INSERT INTO notifications (id, type, title, body, lead_id, search_id, read, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`
	_, err := r.q.Exec(ctx, sql, n.ID, n.Type, n.Title, n.Body, n.LeadID, n.DefinitionID, n.Read, n.CreatedAt)
	return perr.FromPg(err, "create notification")
}

func scanNotification(r store.Row) (domain.Notification, error) {
	var n domain.Notification
	err := r.Scan(&n.ID, &n.Type, &n.Title, &n.Body, &n.LeadID, &n.DefinitionID, &n.Read, &n.CreatedAt)
	return n, err
}

// Notifications lists inbox entries, newest first
func (r *queries) Notifications(ctx context.Context, unreadOnly bool) ([]domain.Notification, error) {
	sql := `SELECT id, type, title, body, lead_id, search_id, read, created_at FROM notifications`
	if unreadOnly {
		sql += ` WHERE NOT read`
	}
	sql += ` ORDER BY created_at DESC`
	out, err := store.Many(ctx, r.q, scanNotification, sql)
	if err != nil {
		return nil, perr.FromPg(err, "list notifications")
	}
	return out, nil
}

// MarkRead flags one notification as seen
func (r *queries) MarkRead(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return perr.FromPg(err, "mark notification read")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("notification %s not found", id)
	}
	return nil
}

// DeleteNotification removes one inbox entry
func (r *queries) DeleteNotification(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return perr.FromPg(err, "delete notification")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("notification %s not found", id)
	}
	return nil
}

// Stats aggregates scheduler activity for reporting
func (r *queries) Stats(ctx context.Context, now time.Time) (domain.Stats, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	const sql = `
		SELECT
			(SELECT COUNT(*) FROM saved_searches),
			(SELECT COUNT(*) FROM saved_searches WHERE is_active),
			(SELECT COUNT(*) FROM run_logs WHERE started_at >= $1),
			(SELECT COALESCE(SUM(new_leads), 0) FROM run_logs WHERE started_at >= $1),
			(SELECT COUNT(*) FROM notifications WHERE NOT read)
	`
	var s domain.Stats
	err := r.q.QueryRow(ctx, sql, dayStart).Scan(
		&s.Definitions, &s.Active, &s.RunsToday, &s.NewToday, &s.Unread,
	)
	if err != nil {
		return domain.Stats{}, perr.FromPg(err, "scheduler stats")
	}
	return s, nil
}
