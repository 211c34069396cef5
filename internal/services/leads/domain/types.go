// Package domain defines the lead types and public ports for the leads service
package domain

import (
	"encoding/json"
	"time"

	"leadscout/internal/core/scoring"
)

// Status is the outreach lifecycle state of a lead
type Status string

// Lead lifecycle states
const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusConverted Status = "converted"
	StatusRejected  Status = "rejected"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusQualified, StatusConverted, StatusRejected:
		return true
	}
	return false
}

// Candidate is a normalized provider result, transient by design.
// Pointer fields are nil when the provider did not report the fact
type Candidate struct {
	ExternalID     string
	Name           string
	Address        string
	Lat            *float64
	Lon            *float64
	Categories     []string
	Phone          *string
	Website        *string
	Email          *string
	Rating         *float64
	ReviewCount    *int
	PriceLevel     *int
	PhotoCount     *int
	BusinessStatus string
	SourceQuery    string
}

// Record is the durable lead row
type Record struct {
	ExternalID     string
	Name           string
	Address        string
	Lat            *float64
	Lon            *float64
	Categories     []string
	Phone          *string
	Website        *string
	Email          *string
	Rating         *float64
	ReviewCount    *int
	PriceLevel     *int
	PhotoCount     *int
	BusinessStatus string

	Score           int
	Status          Status
	LastSearchQuery string
	Notes           string
	Tags            []string

	FirstSeenAt   time.Time
	LastUpdatedAt time.Time
	ExpiresAt     time.Time
}

// ScoringRecord projects the facts the scoring engine evaluates
func (r Record) ScoringRecord() scoring.Record {
	return scoring.Record{
		Website:        r.Website,
		Phone:          r.Phone,
		Rating:         r.Rating,
		ReviewCount:    r.ReviewCount,
		PhotoCount:     r.PhotoCount,
		PriceLevel:     r.PriceLevel,
		BusinessStatus: r.BusinessStatus,
	}
}

// Merge overwrites the record with the candidate's known facts only.
// Unknown (nil or empty) candidate fields never null out stored facts
func (r *Record) Merge(c Candidate) {
	if c.Name != "" {
		r.Name = c.Name
	}
	if c.Address != "" {
		r.Address = c.Address
	}
	if c.Lat != nil {
		r.Lat = c.Lat
	}
	if c.Lon != nil {
		r.Lon = c.Lon
	}
	if len(c.Categories) > 0 {
		r.Categories = c.Categories
	}
	if c.Phone != nil {
		r.Phone = c.Phone
	}
	if c.Website != nil {
		r.Website = c.Website
	}
	if c.Email != nil {
		r.Email = c.Email
	}
	if c.Rating != nil {
		r.Rating = c.Rating
	}
	if c.ReviewCount != nil {
		r.ReviewCount = c.ReviewCount
	}
	if c.PriceLevel != nil {
		r.PriceLevel = c.PriceLevel
	}
	if c.PhotoCount != nil {
		r.PhotoCount = c.PhotoCount
	}
	if c.BusinessStatus != "" {
		r.BusinessStatus = c.BusinessStatus
	}
	if c.SourceQuery != "" {
		r.LastSearchQuery = c.SourceQuery
	}
}

// Batch is one ingestion unit of work
type Batch struct {
	QueryType          string
	Params             json.RawMessage
	HighScoreThreshold int
	Candidates         []Candidate
	APICalls           int
}

// Stats summarizes one ingestion batch
type Stats struct {
	TotalFound int
	New        int
	Updated    int
	HighScore  int
	Failed     int
	Errors     []FieldError
}

// FieldError identifies which candidate in a batch failed and why
type FieldError struct {
	ExternalID string
	Err        string
}

// AuditEntry records one ingestion batch, append-only
type AuditEntry struct {
	ID          string
	QueryType   string
	Params      json.RawMessage
	ResultCount int
	NewCount    int
	APICalls    int
	ExecutedAt  time.Time
}

// Filters narrows List and Count
type Filters struct {
	Status         Status
	MinScore       *int
	MaxScore       *int
	HasWebsite     *bool
	City           string
	FirstSeenSince *time.Time
	Limit          int
	Offset         int
}

// RescoreResult summarizes a full rescore sweep
type RescoreResult struct {
	Processed int
	Changed   int
}
