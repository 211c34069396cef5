package service

import (
	"context"

	"github.com/google/uuid"

	"leadscout/internal/modkit/repokit"
	perr "leadscout/internal/platform/errors"
	"leadscout/internal/services/leads/domain"
)

// Ingest merges one candidate into the store.
// New leads start at status new with FirstSeenAt set once; known leads
// keep stored facts the candidate does not report
func (s *Svc) Ingest(ctx context.Context, c domain.Candidate) (bool, error) {
	isNew, _, err := s.ingestOne(ctx, c)
	return isNew, err
}

// ingestOne runs one merge inside its own transaction and reports the
// resulting score so batch ingestion can count high scorers
func (s *Svc) ingestOne(ctx context.Context, c domain.Candidate) (isNew bool, score int, err error) {
	if c.ExternalID == "" {
		return false, 0, perr.Validationf("candidate has no external id")
	}

	now := s.now().UTC()
	err = repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)

		rec, err := r.Get(ctx, c.ExternalID)
		switch {
		case perr.Is(err, perr.CodeNotFound):
			isNew = true
			rec = domain.Record{
				ExternalID:  c.ExternalID,
				Status:      domain.StatusNew,
				FirstSeenAt: now,
			}
		case err != nil:
			return err
		}

		rec.Merge(c)
		rec.Score = s.engine.Score(rec.ScoringRecord())
		rec.LastUpdatedAt = now
		rec.ExpiresAt = now.Add(s.config.Retention)

		score = rec.Score
		return r.Upsert(ctx, rec)
	})
	if err != nil {
		return false, 0, err
	}
	return isNew, score, nil
}

// IngestBatch merges every candidate in the batch, isolating per record
// failures, and appends exactly one audit entry for the batch
func (s *Svc) IngestBatch(ctx context.Context, b domain.Batch) (domain.Stats, error) {
	stats := domain.Stats{TotalFound: len(b.Candidates)}
	threshold := b.HighScoreThreshold
	if threshold <= 0 {
		threshold = s.config.HighScoreThreshold
	}

	for _, c := range b.Candidates {
		isNew, score, err := s.ingestOne(ctx, c)
		if err != nil {
			stats.Failed++
			stats.Errors = append(stats.Errors, domain.FieldError{
				ExternalID: c.ExternalID,
				Err:        err.Error(),
			})
			s.deps.Log.Warn().
				Err(err).
				Str("external_id", c.ExternalID).
				Msg("candidate ingest failed")
			continue
		}
		if isNew {
			stats.New++
			if score >= threshold {
				stats.HighScore++
			}
		} else {
			stats.Updated++
		}
	}

	entry := domain.AuditEntry{
		ID:          uuid.NewString(),
		QueryType:   b.QueryType,
		Params:      b.Params,
		ResultCount: stats.TotalFound,
		NewCount:    stats.New,
		APICalls:    b.APICalls,
		ExecutedAt:  s.now().UTC(),
	}
	if err := s.Repo.AppendAudit(ctx, entry); err != nil {
		// the merges already landed, surface the audit failure but keep the stats
		return stats, perr.Wrap(err, perr.CodeDB, "append batch audit")
	}
	return stats, nil
}
