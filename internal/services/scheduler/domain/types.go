// Package domain defines saved search types and public ports for the scheduler
package domain

import (
	"encoding/json"
	"time"

	"leadscout/internal/core/geo"
	perr "leadscout/internal/platform/errors"
)

// QueryKind selects which provider a saved search runs against
type QueryKind string

// Saved search query kinds
const (
	KindText   QueryKind = "text"
	KindNearby QueryKind = "nearby"
	KindTags   QueryKind = "tags"
)

// TextParams drives a free-text provider search
type TextParams struct {
	Query        string   `json:"query"`
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`
	RadiusM      float64  `json:"radius_m,omitempty"`
	IncludedType string   `json:"included_type,omitempty"`
	MinRating    *float64 `json:"min_rating,omitempty"`
	OpenNow      *bool    `json:"open_now,omitempty"`
	MaxResults   int      `json:"max_results,omitempty"`
}

// NearbyParams drives a geographic provider search
type NearbyParams struct {
	Lat           float64  `json:"lat"`
	Lng           float64  `json:"lng"`
	RadiusM       float64  `json:"radius_m"`
	IncludedTypes []string `json:"included_types,omitempty"`
	ExcludedTypes []string `json:"excluded_types,omitempty"`
	MaxResults    int      `json:"max_results,omitempty"`
}

// TagsParams drives an open-data tag discovery query.
// Area is a named or geocodable area; BBox overrides it when set.
// DaysBack limits to recent edits
type TagsParams struct {
	Area         string           `json:"area,omitempty"`
	BBox         *geo.BoundingBox `json:"bbox,omitempty"`
	DaysBack     int              `json:"days_back,omitempty"`
	AmenityTypes []string         `json:"amenity_types,omitempty"`
	ShopTypes    []string         `json:"shop_types,omitempty"`
}

// Params is a tagged union; exactly one variant must match Kind
type Params struct {
	Kind   QueryKind     `json:"kind"`
	Text   *TextParams   `json:"text,omitempty"`
	Nearby *NearbyParams `json:"nearby,omitempty"`
	Tags   *TagsParams   `json:"tags,omitempty"`
}

// Validate checks the union discipline: the Kind variant set, the others nil
func (p Params) Validate() error {
	set := 0
	if p.Text != nil {
		set++
	}
	if p.Nearby != nil {
		set++
	}
	if p.Tags != nil {
		set++
	}
	if set != 1 {
		return perr.Validationf("params must carry exactly one variant, got %d", set)
	}
	switch p.Kind {
	case KindText:
		if p.Text == nil {
			return perr.Validationf("kind text requires text params")
		}
		if p.Text.Query == "" {
			return perr.Validationf("text params require a query")
		}
	case KindNearby:
		if p.Nearby == nil {
			return perr.Validationf("kind nearby requires nearby params")
		}
	case KindTags:
		if p.Tags == nil {
			return perr.Validationf("kind tags requires tags params")
		}
		if p.Tags.Area == "" && p.Tags.BBox == nil {
			return perr.Validationf("tags params require an area or a bounding box")
		}
		if p.Tags.BBox != nil && !p.Tags.BBox.Valid() {
			return perr.Validationf("tags params bounding box is inverted or out of range")
		}
	default:
		return perr.Validationf("unknown query kind %q", p.Kind)
	}
	return nil
}

// Encode renders the params as JSON for storage and auditing
func (p Params) Encode() (json.RawMessage, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, perr.Wrap(err, perr.CodeSyntax, "encode search params")
	}
	return b, nil
}

// DecodeParams parses stored params back into the tagged union
func DecodeParams(raw json.RawMessage) (Params, error) {
	var p Params
	if err := json.Unmarshal(raw, &p); err != nil {
		return Params{}, perr.Wrap(err, perr.CodeSyntax, "decode search params")
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// CreateInput carries the caller-supplied shape of a new saved search
type CreateInput struct {
	Name            string `json:"name" validate:"required,max=200"`
	Params          Params `json:"params"`
	IntervalHours   int    `json:"interval_hours" validate:"required,min=1"`
	NotifyOnNew     bool   `json:"notify_on_new"`
	NotifyThreshold int    `json:"notify_threshold" validate:"min=0,max=100"`
}

// Definition is a saved search with its cadence state
type Definition struct {
	ID            string
	Name          string
	Params        Params
	IntervalHours int
	IsActive      bool

	// NotifyOnNew flags runs with new leads; NotifyThreshold is the
	// high-score cutoff passed to ingestion, 0 uses the service default
	NotifyOnNew     bool
	NotifyThreshold int

	// lifetime counters, advanced per run
	TotalRuns     int
	TotalNewFound int
	LastNewCount  int

	LastRunAt *time.Time
	NextRunAt *time.Time
	CreatedAt time.Time
}

// Due reports whether the definition should run at now.
// A nil NextRunAt means the search has never been scheduled and is due
func (d Definition) Due(now time.Time) bool {
	if !d.IsActive {
		return false
	}
	return d.NextRunAt == nil || !d.NextRunAt.After(now)
}

// RunResult summarizes one execution of a saved search
type RunResult struct {
	DefinitionID string
	StartedAt    time.Time
	Duration     time.Duration
	Found        int
	New          int
	Updated      int
	HighScore    int
	APICalls     int
	Err          string
}

// OK reports whether the run completed without a terminal error
func (r RunResult) OK() bool { return r.Err == "" }

// Run log statuses
const (
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// RunLogEntry is the durable trace of one execution
type RunLogEntry struct {
	ID           string
	DefinitionID string
	StartedAt    time.Time
	Status       string
	DurationMs   int64
	Found        int
	New          int
	HighScore    int
	APICalls     int
	Err          string
}

// Notification flags events worth a human look. LeadID and DefinitionID
// are set when the event points at one lead or one saved search
type Notification struct {
	ID           string
	Type         string
	Title        string
	Body         string
	LeadID       *string
	DefinitionID *string
	Read         bool
	CreatedAt    time.Time
}

// Stats aggregates scheduler activity for reporting
type Stats struct {
	Definitions int
	Active      int
	RunsToday   int
	NewToday    int
	Unread      int
}
