package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"leadscout/internal/adapters/overpass"
	"leadscout/internal/adapters/places"
	perr "leadscout/internal/platform/errors"
	ldomain "leadscout/internal/services/leads/domain"
	"leadscout/internal/services/leads/ingest"
	"leadscout/internal/services/scheduler/domain"
)

// Query type labels recorded in run logs and the ingest audit trail
const (
	queryText   = "text_search"
	queryNearby = "nearby_search"
	queryTags   = "tag_discovery"
)

// RunNow executes one definition regardless of its schedule
func (s *Svc) RunNow(ctx context.Context, id string) (domain.RunResult, error) {
	d, err := s.Repo.Get(ctx, id)
	if err != nil {
		return domain.RunResult{}, err
	}
	return s.execute(ctx, d), nil
}

// Tick runs every due definition sequentially. A failing run never stops
// the rest of the batch; failures surface in the returned results
func (s *Svc) Tick(ctx context.Context, now time.Time) ([]domain.RunResult, error) {
	due, err := s.Repo.ListDue(ctx, now)
	if err != nil {
		return nil, err
	}
	if len(due) == 0 {
		return nil, nil
	}

	results := make([]domain.RunResult, 0, len(due))
	for _, d := range due {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, s.execute(ctx, d))
	}
	return results, nil
}

// execute runs one definition end to end. The cadence markers advance on
// success and failure alike so a broken search cannot hot-loop.
/// The run is detached from the caller's cancellation: a stop signal mid
// execution must not abort the provider call or the bookkeeping writes,
// Tick stops between definitions instead
func (s *Svc) execute(ctx context.Context, d domain.Definition) domain.RunResult {
	ctx = context.WithoutCancel(ctx)
	start := s.now().UTC()
	res := domain.RunResult{DefinitionID: d.ID, StartedAt: start}

	stats, apiCalls, err := s.dispatch(ctx, d)
	res.Duration = s.now().UTC().Sub(start)
	res.APICalls = apiCalls
	if err != nil {
		res.Err = err.Error()
		s.deps.Log.Error().
			Err(err).
			Str("search_id", d.ID).
			Str("name", d.Name).
			Msg("saved search run failed")
	} else {
		res.Found = stats.TotalFound
		res.New = stats.New
		res.Updated = stats.Updated
		res.HighScore = stats.HighScore
		s.deps.Log.Info().
			Str("search_id", d.ID).
			Str("name", d.Name).
			Int("found", res.Found).
			Int("new", res.New).
			Int("high_score", res.HighScore).
			Dur("took", res.Duration).
			Msg("saved search run complete")
	}

	// a failed run advances the cadence so it cannot hot-loop, but only
	// a successful run touches the lifetime counters
	next := start.Add(time.Duration(d.IntervalHours) * time.Hour)
	var markErr error
	if res.OK() {
		markErr = s.Repo.MarkExecuted(ctx, d.ID, start, next, res.New)
	} else {
		markErr = s.Repo.MarkAttempted(ctx, d.ID, start, next)
	}
	if markErr != nil {
		s.deps.Log.Error().Err(markErr).Str("search_id", d.ID).Msg("cadence update failed")
	}

	status := domain.RunStatusSuccess
	if !res.OK() {
		status = domain.RunStatusFailed
	}
	entry := domain.RunLogEntry{
		ID:           uuid.NewString(),
		DefinitionID: d.ID,
		StartedAt:    start,
		Status:       status,
		DurationMs:   res.Duration.Milliseconds(),
		Found:        res.Found,
		New:          res.New,
		HighScore:    res.HighScore,
		APICalls:     res.APICalls,
		Err:          res.Err,
	}
	if err := s.Repo.AppendRunLog(ctx, entry); err != nil {
		s.deps.Log.Error().Err(err).Str("search_id", d.ID).Msg("run log write failed")
	}

	if res.OK() && d.NotifyOnNew && res.New > 0 {
		s.notifyNewLeads(ctx, d, res)
	}
	return res
}

func (s *Svc) notifyNewLeads(ctx context.Context, d domain.Definition, res domain.RunResult) {
	n := domain.Notification{
		ID:           uuid.NewString(),
		Type:         "new_leads",
		Title:        fmt.Sprintf("%s: %d new leads", d.Name, res.New),
		Body:         fmt.Sprintf("Found %d results, %d new, %d high score", res.Found, res.New, res.HighScore),
		DefinitionID: &d.ID,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.Repo.CreateNotification(ctx, n); err != nil {
		s.deps.Log.Error().Err(err).Str("search_id", d.ID).Msg("notification write failed")
	}
}

// dispatch fans the definition out to its provider and ingests the batch
func (s *Svc) dispatch(ctx context.Context, d domain.Definition) (ldomain.Stats, int, error) {
	raw, err := d.Params.Encode()
	if err != nil {
		return ldomain.Stats{}, 0, err
	}

	var (
		queryType  string
		candidates []ldomain.Candidate
		apiCalls   int
	)
	switch d.Params.Kind {
	case domain.KindText:
		queryType = queryText
		candidates, apiCalls, err = s.runText(ctx, *d.Params.Text)
	case domain.KindNearby:
		queryType = queryNearby
		candidates, apiCalls, err = s.runNearby(ctx, *d.Params.Nearby)
	case domain.KindTags:
		queryType = queryTags
		candidates, apiCalls, err = s.runTags(ctx, *d.Params.Tags)
	default:
		return ldomain.Stats{}, 0, perr.Validationf("unknown query kind %q", d.Params.Kind)
	}
	if err != nil {
		return ldomain.Stats{}, apiCalls, err
	}

	stats, err := s.ingestor.IngestBatch(ctx, ldomain.Batch{
		QueryType:          queryType,
		Params:             raw,
		HighScoreThreshold: d.NotifyThreshold,
		Candidates:         candidates,
		APICalls:           apiCalls,
	})
	return stats, apiCalls, err
}

func (s *Svc) runText(ctx context.Context, p domain.TextParams) ([]ldomain.Candidate, int, error) {
	if s.searcher == nil {
		return nil, 0, perr.Unavailablef("no text search provider configured")
	}
	req := places.TextSearchRequest{
		Query:        p.Query,
		Lat:          p.Lat,
		Lng:          p.Lng,
		RadiusM:      p.RadiusM,
		IncludedType: p.IncludedType,
		MinRating:    p.MinRating,
		OpenNow:      p.OpenNow,
	}
	limit := p.MaxResults
	if limit <= 0 || limit > s.config.MaxResults {
		limit = s.config.MaxResults
	}

	var out []ldomain.Candidate
	for pl, err := range s.searcher.SearchPages(ctx, req, limit) {
		if err != nil {
			return nil, pageCount(len(out)), err
		}
		out = append(out, ingest.FromPlace(pl, p.Query))
	}
	return out, pageCount(len(out)), nil
}

func (s *Svc) runNearby(ctx context.Context, p domain.NearbyParams) ([]ldomain.Candidate, int, error) {
	if s.searcher == nil {
		return nil, 0, perr.Unavailablef("no nearby search provider configured")
	}
	resp, err := s.searcher.NearbySearch(ctx, places.NearbySearchRequest{
		Lat:           p.Lat,
		Lng:           p.Lng,
		RadiusM:       p.RadiusM,
		IncludedTypes: p.IncludedTypes,
		ExcludedTypes: p.ExcludedTypes,
		MaxResults:    p.MaxResults,
	})
	if err != nil {
		return nil, 1, err
	}

	query := fmt.Sprintf("nearby %.5f,%.5f r=%.0fm", p.Lat, p.Lng, p.RadiusM)
	out := make([]ldomain.Candidate, 0, len(resp.Places))
	for _, pl := range resp.Places {
		out = append(out, ingest.FromPlace(pl, query))
	}
	return out, 1, nil
}

func (s *Svc) runTags(ctx context.Context, p domain.TagsParams) ([]ldomain.Candidate, int, error) {
	if s.tags == nil {
		return nil, 0, perr.Unavailablef("no tag discovery provider configured")
	}
	elems, err := s.tags.Discover(ctx, overpass.DiscoverQuery{
		Area:         p.Area,
		BBox:         p.BBox,
		DaysBack:     p.DaysBack,
		AmenityTypes: p.AmenityTypes,
		ShopTypes:    p.ShopTypes,
	})
	if err != nil {
		return nil, 1, err
	}

	source := "osm:" + p.Area
	if p.Area == "" && p.BBox != nil {
		source = "osm:" + p.BBox.String()
	}
	out := make([]ldomain.Candidate, 0, len(elems))
	for _, e := range elems {
		c := ingest.FromElement(e)
		c.SourceQuery = source
		out = append(out, c)
	}
	return out, 1, nil
}

// pageCount estimates provider calls from results at the 20 per page cap
func pageCount(results int) int {
	if results == 0 {
		return 1
	}
	return (results + 19) / 20
}
