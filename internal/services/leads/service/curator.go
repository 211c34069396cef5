package service

import (
	"context"

	perr "leadscout/internal/platform/errors"
	"leadscout/internal/services/leads/domain"
)

// UpdateStatus transitions the outreach state of a lead
func (s *Svc) UpdateStatus(ctx context.Context, externalID string, st domain.Status) error {
	if !st.Valid() {
		return perr.InvalidArgf("unknown lead status %q", st)
	}
	return s.Repo.UpdateStatus(ctx, externalID, st)
}

// RescoreAll re-evaluates every stored lead against the current rule set
// and rewrites only the scores that changed
func (s *Svc) RescoreAll(ctx context.Context) (domain.RescoreResult, error) {
	var res domain.RescoreResult
	page := s.config.RescorePageSize

	for offset := 0; ; offset += page {
		recs, err := s.Repo.List(ctx, domain.Filters{Limit: page, Offset: offset})
		if err != nil {
			return res, err
		}
		for _, rec := range recs {
			res.Processed++
			next := s.engine.Score(rec.ScoringRecord())
			if next == rec.Score {
				continue
			}
			if err := s.Repo.UpdateScore(ctx, rec.ExternalID, next); err != nil {
				return res, err
			}
			res.Changed++
		}
		if len(recs) < page {
			break
		}
	}

	s.deps.Log.Info().
		Int("processed", res.Processed).
		Int("changed", res.Changed).
		Msg("rescore sweep complete")
	return res, nil
}
