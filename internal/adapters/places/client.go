// Package places provides a resilient client for the Places API (New)
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"net/http"
	"strings"
	"time"

	perr "leadscout/internal/platform/errors"
	"leadscout/internal/platform/logger"
)

const (
	baseURLDefault   = "https://places.googleapis.com/v1"
	defaultTimeout   = 30 * time.Second
	defaultUA        = "leadscout"
	defaultMaxRetry  = 3
	defaultRetryBase = 500 * time.Millisecond
	defaultInFlight  = 5
	defaultPageDelay = 200 * time.Millisecond
	defaultLanguage  = "pt"
	defaultPageSize  = 20
	defaultRadiusM   = 5000
	maxRadiusM       = 50000
)

// fieldMask limits responses to the lead generation fields
var fieldMask = strings.Join([]string{
	"places.id",
	"places.displayName",
	"places.formattedAddress",
	"places.location",
	"places.types",
	"places.businessStatus",
	"places.nationalPhoneNumber",
	"places.internationalPhoneNumber",
	"places.websiteUri",
	"places.googleMapsUri",
	"places.rating",
	"places.userRatingCount",
	"places.priceLevel",
	"places.photos",
	"nextPageToken",
}, ",")

// Options configures the Client
type Options struct {
	APIKey    string
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Retry config for transient and rate limited responses
	MaxRetries int
	RetryBase  time.Duration

	// MaxInFlight bounds concurrent requests to the upstream quota
	MaxInFlight int

	// PageDelay is slept between continuation pages
	PageDelay time.Duration

	Language string
	PageSize int
}

// Client is a quota-aware Places client with retries and lazy pagination
type Client struct {
	http  *http.Client
	opts  Options
	gate  chan struct{}
	log   logger.Logger
	now   func() time.Time
	sleep func(time.Duration)
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	if o.MaxInFlight <= 0 {
		o.MaxInFlight = defaultInFlight
	}
	if o.PageDelay <= 0 {
		o.PageDelay = defaultPageDelay
	}
	if o.Language == "" {
		o.Language = defaultLanguage
	}
	if o.PageSize <= 0 || o.PageSize > defaultPageSize {
		o.PageSize = defaultPageSize
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		gate:  make(chan struct{}, o.MaxInFlight),
		log:   *logger.Named("places"),
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// TextSearch runs a free-text search and returns one page
func (c *Client) TextSearch(ctx context.Context, req TextSearchRequest) (*SearchResponse, error) {
	p := textSearchPayload{
		TextQuery:    req.Query,
		LanguageCode: c.opts.Language,
		PageSize:     c.opts.PageSize,
		IncludedType: req.IncludedType,
		MinRating:    req.MinRating,
		OpenNow:      req.OpenNow,
		PageToken:    req.PageToken,
	}
	if req.Lat != nil && req.Lng != nil {
		p.LocationBias = &LocationBias{Circle: Circle{
			Center: LatLng{Latitude: *req.Lat, Longitude: *req.Lng},
			Radius: clampRadius(req.RadiusM),
		}}
	}
	return c.post(ctx, "places:searchText", p)
}

// NearbySearch runs a geographic search and returns one page
func (c *Client) NearbySearch(ctx context.Context, req NearbySearchRequest) (*SearchResponse, error) {
	maxResults := req.MaxResults
	if maxResults <= 0 || maxResults > defaultPageSize {
		maxResults = defaultPageSize
	}
	p := nearbySearchPayload{
		LocationRestriction: LocationBias{Circle: Circle{
			Center: LatLng{Latitude: req.Lat, Longitude: req.Lng},
			Radius: clampRadius(req.RadiusM),
		}},
		LanguageCode:   c.opts.Language,
		MaxResultCount: maxResults,
		RankPreference: "POPULARITY",
		IncludedTypes:  req.IncludedTypes,
		ExcludedTypes:  req.ExcludedTypes,
	}
	return c.post(ctx, "places:searchNearby", p)
}

// SearchPages lazily walks text search continuation pages up to maxResults.
// The iterator yields each place, a terminal error ends the sequence
func (c *Client) SearchPages(ctx context.Context, req TextSearchRequest, maxResults int) iter.Seq2[Place, error] {
	if maxResults <= 0 {
		maxResults = 60
	}
	return func(yield func(Place, error) bool) {
		total := 0
		pageReq := req
		for {
			resp, err := c.TextSearch(ctx, pageReq)
			if err != nil {
				yield(Place{}, err)
				return
			}
			for _, pl := range resp.Places {
				if !yield(pl, nil) {
					return
				}
				total++
				if total >= maxResults {
					return
				}
			}
			if resp.NextPageToken == "" {
				return
			}
			pageReq.PageToken = resp.NextPageToken
			// stay under the burst quota between pages
			c.sleep(c.opts.PageDelay)
		}
	}
}

// ValidateKey probes the API with a minimal search, false on auth failure
func (c *Client) ValidateKey(ctx context.Context) bool {
	_, err := c.TextSearch(ctx, TextSearchRequest{Query: "test"})
	if err != nil {
		if perr.Is(err, perr.CodeAuth) {
			return false
		}
		c.log.Warn().Err(err).Msg("key validation probe failed for a non-auth reason")
		return false
	}
	return true
}

// post issues one JSON request with the retry and classification policy
func (c *Client) post(ctx context.Context, endpoint string, payload any) (*SearchResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, perr.Wrapf(err, perr.CodeInvalidArgument, "places encode %s", endpoint)
	}

	select {
	case c.gate <- struct{}{}:
		defer func() { <-c.gate }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	url := c.opts.BaseURL + "/" + endpoint
	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, perr.Wrapf(err, perr.CodeUnknown, "places new request")
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("X-Goog-Api-Key", c.opts.APIKey)
		req.Header.Set("X-Goog-FieldMask", fieldMask)

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			code := perr.CodeTransport
			if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
				code = perr.CodeTimeout
			}
			if !c.shouldRetry(attempts) {
				return nil, perr.Wrapf(err, code, "places %s failed", endpoint)
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Err(err).
				Msg("places transport error retrying")
			c.sleep(back)
			attempts++
			continue
		}

		c.log.Debug().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Msg("places http response")

		switch {
		case resp.StatusCode == http.StatusOK:
			defer func() { _ = drainAndClose(resp.Body) }()
			var out SearchResponse
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				return nil, perr.Wrapf(err, perr.CodeUnknown, "places decode %s", endpoint)
			}
			return &out, nil

		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			_ = drainAndClose(resp.Body)
			return nil, perr.Authf("places api key rejected with status %d", resp.StatusCode)

		case resp.StatusCode == http.StatusTooManyRequests:
			_ = drainAndClose(resp.Body)
			if !c.shouldRetry(attempts) {
				return nil, perr.RateLimitedf("places rate limited on %s", endpoint)
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("places rate limited backing off")
			c.sleep(back)
			attempts++
			continue

		case resp.StatusCode >= 500:
			_ = drainAndClose(resp.Body)
			if !c.shouldRetry(attempts) {
				return nil, perr.Transportf("places server error %d on %s", resp.StatusCode, endpoint)
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Int("status", resp.StatusCode).
				Msg("places transient server error retrying")
			c.sleep(back)
			attempts++
			continue

		default:
			// remaining 4xx means the request itself is wrong, do not retry
			tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return nil, perr.Syntaxf("places rejected %s with status %d: %s", endpoint, resp.StatusCode, string(tail))
		}
	}
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.MaxRetries
}

// backoff is exponential with a 30s cap
func (c *Client) backoff(attempt int) time.Duration {
	ms := int64(c.opts.RetryBase / time.Millisecond)
	ms = ms << uint(attempt)
	if ceil := int64(30 * time.Second / time.Millisecond); ms > ceil {
		ms = ceil
	}
	return time.Duration(ms) * time.Millisecond
}

func clampRadius(r float64) float64 {
	if r <= 0 {
		return defaultRadiusM
	}
	if r > maxRadiusM {
		return maxRadiusM
	}
	return r
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// drainAndClose empties the body so the connection can be reused
func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 1<<20))
	return rc.Close()
}
