// Package overpass provides a failover client for Overpass-compatible
// OSM query endpoints plus Nominatim geocoding
package overpass

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"leadscout/internal/core/geo"
	perr "leadscout/internal/platform/errors"
	"leadscout/internal/platform/logger"
	"leadscout/internal/platform/store"
)

const (
	defaultQueryTimeout = 180 * time.Second
	// margin on top of the server-declared timeout so the server side
	// expires first and we get a classifiable status back
	timeoutMargin    = 30 * time.Second
	defaultMaxRetry  = 3
	defaultRetryBase = 2 * time.Second
	defaultInFlight  = 2
	defaultUA        = "leadscout"
	defaultArea      = "lisboa"
)

// defaultEndpoints are public interpreter mirrors, rotated on failure
var defaultEndpoints = []string{
	"https://overpass-api.de/api/interpreter",
	"https://overpass.kumi.systems/api/interpreter",
	"https://maps.mail.ru/osm/tools/overpass/api/interpreter",
}

// Options configures the Client
type Options struct {
	// Endpoints in preference order, defaults to the public mirrors
	Endpoints []string

	// QueryTimeout is declared in the QL header, the HTTP timeout adds a margin
	QueryTimeout time.Duration

	MaxRetries int
	RetryBase  time.Duration

	// MaxInFlight bounds concurrent queries, public mirrors allow 2
	MaxInFlight int

	UserAgent string

	// NominatimURL overrides the geocoding endpoint (tests)
	NominatimURL string

	// GeocodeCache is optional, lookups degrade to the network when nil
	GeocodeCache store.Cache

	// GeocodeCacheTTL defaults to 24h
	GeocodeCacheTTL time.Duration

	// CountryCodes biases geocoding, default "pt"
	CountryCodes string
}

// Client queries Overpass endpoints with rotation on throttle and timeout
type Client struct {
	http  *http.Client
	opts  Options
	gate  chan struct{}
	cur   atomic.Int32
	log   logger.Logger
	now   func() time.Time
	sleep func(time.Duration)
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if len(o.Endpoints) == 0 {
		o.Endpoints = defaultEndpoints
	}
	if o.QueryTimeout <= 0 {
		o.QueryTimeout = defaultQueryTimeout
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
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.NominatimURL == "" {
		o.NominatimURL = "https://nominatim.openstreetmap.org/search"
	}
	if o.GeocodeCacheTTL <= 0 {
		o.GeocodeCacheTTL = 24 * time.Hour
	}
	if o.CountryCodes == "" {
		o.CountryCodes = "pt"
	}
	return &Client{
		http:  &http.Client{Timeout: o.QueryTimeout + timeoutMargin},
		opts:  o,
		gate:  make(chan struct{}, o.MaxInFlight),
		log:   *logger.Named("overpass"),
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// endpoint returns the currently preferred interpreter
func (c *Client) endpoint() string {
	return c.opts.Endpoints[int(c.cur.Load())%len(c.opts.Endpoints)]
}

// rotate moves to the next interpreter after a throttle or timeout
func (c *Client) rotate() string {
	c.cur.Add(1)
	return c.endpoint()
}

// Discover finds recently added or modified businesses in the query area.
// Unnamed elements are dropped, a business you cannot name is not a lead
func (c *Client) Discover(ctx context.Context, q DiscoverQuery) ([]Element, error) {
	bbox, err := c.resolveArea(ctx, q)
	if err != nil {
		return nil, err
	}

	ql := buildQuery(bbox, q, c.opts.QueryTimeout, c.now())
	resp, err := c.run(ctx, ql)
	if err != nil {
		return nil, err
	}

	out := make([]Element, 0, len(resp.Elements))
	for _, e := range resp.Elements {
		if e.Named() {
			out = append(out, e)
		}
	}
	return out, nil
}

// ElementByID fetches one element, nil when it does not exist
func (c *Client) ElementByID(ctx context.Context, osmType string, id int64) (*Element, error) {
	switch osmType {
	case "node", "way", "relation":
	default:
		return nil, perr.InvalidArgf("overpass element type %q", osmType)
	}
	resp, err := c.run(ctx, buildElementQuery(osmType, id))
	if err != nil {
		return nil, err
	}
	if len(resp.Elements) == 0 {
		return nil, nil
	}
	e := resp.Elements[0]
	return &e, nil
}

// CountByType groups a discovery result by business type
func (c *Client) CountByType(ctx context.Context, q DiscoverQuery) (map[string]int, error) {
	elems, err := c.Discover(ctx, q)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, e := range elems {
		counts[e.BusinessType()]++
	}
	return counts, nil
}

// HealthCheck probes the current endpoint with a trivial query
func (c *Client) HealthCheck(ctx context.Context) bool {
	_, err := c.run(ctx, healthQuery)
	return err == nil
}

// resolveArea turns a DiscoverQuery area into a bounding box:
// explicit bbox, then named areas, then geocoding with a radius fallback
func (c *Client) resolveArea(ctx context.Context, q DiscoverQuery) (geo.BoundingBox, error) {
	if q.BBox != nil {
		if !q.BBox.Valid() {
			return geo.BoundingBox{}, perr.InvalidArgf("overpass bbox %v is malformed", *q.BBox)
		}
		return *q.BBox, nil
	}

	area := strings.TrimSpace(q.Area)
	if area == "" {
		area = defaultArea
	}
	if b, ok := geo.Named(area); ok {
		return b, nil
	}

	loc, err := c.Geocode(ctx, area)
	if err != nil {
		return geo.BoundingBox{}, err
	}
	if loc == nil {
		return geo.BoundingBox{}, perr.NotFoundf("no location found for %q", area)
	}
	if loc.BBox != nil {
		return geo.BoundingBox{
			MinLat: loc.BBox[0], MinLon: loc.BBox[1],
			MaxLat: loc.BBox[2], MaxLon: loc.BBox[3],
		}, nil
	}
	return geo.Around(geo.Point{Lat: loc.Lat, Lon: loc.Lon}, 5.0), nil
}

// run executes one QL query with the failover and retry policy
func (c *Client) run(ctx context.Context, ql string) (*queryResponse, error) {
	select {
	case c.gate <- struct{}{}:
		defer func() { <-c.gate }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	form := url.Values{"data": {ql}}.Encode()
	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		endpoint := c.endpoint()
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form))
		if err != nil {
			return nil, perr.Wrapf(err, perr.CodeUnknown, "overpass new request")
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("User-Agent", c.opts.UserAgent)

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, ctx.Err()
			}
			code := perr.CodeTransport
			if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
				code = perr.CodeTimeout
			}
			next := c.rotate()
			if !c.shouldRetry(attempts) {
				return nil, perr.Wrapf(err, code, "overpass query failed on %s", endpoint)
			}
			back := c.backoff(attempts)
			c.log.Warn().Str("endpoint", endpoint).Str("next", next).Dur("retry_in", back).
				Err(err).Msg("overpass transport failure, rotating endpoint")
			c.sleep(back)
			attempts++
			continue
		}

		c.log.Debug().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Msg("overpass http response")

		switch resp.StatusCode {
		case http.StatusOK:
			defer func() { _ = drainAndClose(resp.Body) }()
			var out queryResponse
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				return nil, perr.Wrapf(err, perr.CodeUnknown, "overpass decode")
			}
			return &out, nil

		case http.StatusTooManyRequests, http.StatusGatewayTimeout:
			_ = drainAndClose(resp.Body)
			next := c.rotate()
			if !c.shouldRetry(attempts) {
				if resp.StatusCode == http.StatusGatewayTimeout {
					return nil, perr.Timeoutf("overpass gateway timeout on %s", endpoint)
				}
				return nil, perr.RateLimitedf("overpass rate limited on %s", endpoint)
			}
			back := c.backoff(attempts)
			c.log.Warn().Str("endpoint", endpoint).Str("next", next).Int("status", resp.StatusCode).
				Dur("retry_in", back).Msg("overpass throttled, rotating endpoint")
			c.sleep(back)
			attempts++
			continue

		case http.StatusBadRequest:
			// the query itself is broken, log it verbatim for the builder bug hunt
			tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			c.log.Error().Str("query", ql).Str("body", string(tail)).Msg("overpass rejected query syntax")
			return nil, perr.Syntaxf("overpass query syntax rejected: %s", string(tail))

		default:
			tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return nil, perr.Transportf("overpass status %d on %s: %s", resp.StatusCode, endpoint, string(tail))
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

// isTimeout reports whether err carries a net-level timeout signal
func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// drainAndClose empties the body so the connection can be reused
func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 1<<20))
	return rc.Close()
}
