// Package repo provides the leads repository implementation
package repo

import (
	"context"
	"fmt"
	"strings"

	"leadscout/internal/modkit/repokit"
	perr "leadscout/internal/platform/errors"
	"leadscout/internal/platform/store"
	"leadscout/internal/services/leads/domain"
)

// Repo defines the leads repository contract
type Repo interface {
	// Get returns the lead by external id, CodeNotFound when absent
	Get(ctx context.Context, externalID string) (domain.Record, error)

	// Upsert writes the full row, keyed by external id
	Upsert(ctx context.Context, r domain.Record) error

	// UpdateScore overwrites only the score, used by rescore sweeps
	UpdateScore(ctx context.Context, externalID string, score int) error

	// UpdateStatus transitions the curation state
	UpdateStatus(ctx context.Context, externalID string, s domain.Status) error

	List(ctx context.Context, f domain.Filters) ([]domain.Record, error)
	Count(ctx context.Context, f domain.Filters) (int, error)

	// AppendAudit records one ingestion batch
	AppendAudit(ctx context.Context, a domain.AuditEntry) error
}

type (
	// PG is a Postgres leads repository
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG constructs a Postgres leads repository
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind binds a Queryer to a Postgres implementation of Repo
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

const leadColumns = `
	external_id, name, address, lat, lon, categories,
	phone, website, email, rating, review_count, price_level, photo_count,
	business_status, score, status, last_search_query, notes, tags,
	first_seen_at, last_updated_at, expires_at`

func scanLead(r store.Row) (domain.Record, error) {
	var rec domain.Record
	var status string
	err := r.Scan(
		&rec.ExternalID, &rec.Name, &rec.Address, &rec.Lat, &rec.Lon, &rec.Categories,
		&rec.Phone, &rec.Website, &rec.Email, &rec.Rating, &rec.ReviewCount,
		&rec.PriceLevel, &rec.PhotoCount,
		&rec.BusinessStatus, &rec.Score, &status, &rec.LastSearchQuery, &rec.Notes, &rec.Tags,
		&rec.FirstSeenAt, &rec.LastUpdatedAt, &rec.ExpiresAt,
	)
	rec.Status = domain.Status(status)
	return rec, err
}

// Get returns the lead by external id
func (r *queries) Get(ctx context.Context, externalID string) (domain.Record, error) {
	sql := `SELECT` + leadColumns + ` FROM leads WHERE external_id = $1`
	rec, err := store.One(ctx, r.q, scanLead, sql, externalID)
	if err != nil {
		if perr.Is(err, perr.CodeNotFound) {
			return domain.Record{}, err
		}
		return domain.Record{}, perr.FromPg(err, "get lead")
	}
	return rec, nil
}

// Upsert writes the full row keyed by external id
func (r *queries) Upsert(ctx context.Context, rec domain.Record) error {
	const sql = `
		INSERT INTO leads (
			external_id, name, address, lat, lon, categories,
			phone, website, email, rating, review_count, price_level, photo_count,
			business_status, score, status, last_search_query, notes, tags,
			first_seen_at, last_updated_at, expires_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22
		)
		ON CONFLICT (external_id) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			lat = excluded.lat,
			lon = excluded.lon,
			categories = excluded.categories,
			phone = excluded.phone,
			website = excluded.website,
			email = excluded.email,
			rating = excluded.rating,
			review_count = excluded.review_count,
			price_level = excluded.price_level,
			photo_count = excluded.photo_count,
			business_status = excluded.business_status,
			score = excluded.score,
			status = excluded.status,
			last_search_query = excluded.last_search_query,
			notes = excluded.notes,
			tags = excluded.tags,
			last_updated_at = excluded.last_updated_at,
			expires_at = excluded.expires_at
	`
	_, err := r.q.Exec(ctx, sql,
		rec.ExternalID, rec.Name, rec.Address, rec.Lat, rec.Lon, rec.Categories,
		rec.Phone, rec.Website, rec.Email, rec.Rating, rec.ReviewCount,
		rec.PriceLevel, rec.PhotoCount,
		rec.BusinessStatus, rec.Score, string(rec.Status), rec.LastSearchQuery, rec.Notes, rec.Tags,
		rec.FirstSeenAt, rec.LastUpdatedAt, rec.ExpiresAt,
	)
	return perr.FromPg(err, "upsert lead")
}

// UpdateScore overwrites only the score
func (r *queries) UpdateScore(ctx context.Context, externalID string, score int) error {
	const sql = `UPDATE leads SET score = $2 WHERE external_id = $1`
	if err := store.ExecOne(ctx, r.q, sql, externalID, score); err != nil {
		return perr.FromPg(err, "update lead score")
	}
	return nil
}

// UpdateStatus transitions the curation state
func (r *queries) UpdateStatus(ctx context.Context, externalID string, s domain.Status) error {
	const sql = `UPDATE leads SET status = $2 WHERE external_id = $1`
	tag, err := r.q.Exec(ctx, sql, externalID, string(s))
	if err != nil {
		return perr.FromPg(err, "update lead status")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("lead %s not found", externalID)
	}
	return nil
}

// List returns leads matching the filters, newest first
func (r *queries) List(ctx context.Context, f domain.Filters) ([]domain.Record, error) {
	where, args := filterClauses(f)
	sql := `SELECT` + leadColumns + ` FROM leads` + where + ` ORDER BY first_seen_at DESC, external_id`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		sql += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	out, err := store.Many(ctx, r.q, scanLead, sql, args...)
	if err != nil {
		return nil, perr.FromPg(err, "list leads")
	}
	return out, nil
}

// Count returns the number of leads matching the filters
func (r *queries) Count(ctx context.Context, f domain.Filters) (int, error) {
	where, args := filterClauses(f)
	n, err := store.Scalar[int](ctx, r.q, `SELECT COUNT(*) FROM leads`+where, args...)
	if err != nil {
		return 0, perr.FromPg(err, "count leads")
	}
	return n, nil
}

// AppendAudit records one ingestion batch
func (r *queries) AppendAudit(ctx context.Context, a domain.AuditEntry) error {
	const sql = `
		INSERT INTO search_audit (id, query_type, params, result_count, new_count, api_calls, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.q.Exec(ctx, sql,
		a.ID, a.QueryType, []byte(a.Params), a.ResultCount, a.NewCount, a.APICalls, a.ExecutedAt,
	)
	return perr.FromPg(err, "append audit entry")
}

// filterClauses builds the WHERE clause shared by List and Count
func filterClauses(f domain.Filters) (string, []any) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != "" {
		conds = append(conds, "status = "+arg(string(f.Status)))
	}
	if f.MinScore != nil {
		conds = append(conds, "score >= "+arg(*f.MinScore))
	}
	if f.MaxScore != nil {
		conds = append(conds, "score <= "+arg(*f.MaxScore))
	}
	if f.HasWebsite != nil {
		if *f.HasWebsite {
			conds = append(conds, "website IS NOT NULL AND website <> ''")
		} else {
			conds = append(conds, "(website IS NULL OR website = '')")
		}
	}
	if f.City != "" {
		conds = append(conds, "address ILIKE "+arg("%"+f.City+"%"))
	}
	if f.FirstSeenSince != nil {
		conds = append(conds, "first_seen_at >= "+arg(*f.FirstSeenSince))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
