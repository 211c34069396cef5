package overpass

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const geocodeTimeout = 10 * time.Second

// Geocode resolves free text to a location via Nominatim.
// Best effort: no results comes back as (nil, nil) so callers can degrade.
// Results are cached when a cache seam is configured, cache failures are silent
func (c *Client) Geocode(ctx context.Context, query string) (*Location, error) {
	cacheKey := "geocode:" + query
	if c.opts.GeocodeCache != nil {
		if raw, ok, err := c.opts.GeocodeCache.Get(ctx, cacheKey); err == nil && ok {
			var loc Location
			if json.Unmarshal([]byte(raw), &loc) == nil {
				return &loc, nil
			}
		}
	}

	loc, err := c.geocodeRemote(ctx, query)
	if err != nil || loc == nil {
		return loc, err
	}

	if c.opts.GeocodeCache != nil {
		if raw, err := json.Marshal(loc); err == nil {
			if err := c.opts.GeocodeCache.Set(ctx, cacheKey, string(raw), c.opts.GeocodeCacheTTL); err != nil {
				c.log.Debug().Err(err).Msg("geocode cache write failed")
			}
		}
	}
	return loc, nil
}

func (c *Client) geocodeRemote(ctx context.Context, query string) (*Location, error) {
	ctx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()

	params := url.Values{
		"q":              {query},
		"format":         {"json"},
		"limit":          {"1"},
		"addressdetails": {"1"},
		"countrycodes":   {c.opts.CountryCodes},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.NominatimURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		// geocoding is best effort, absorb the failure as "no result"
		c.log.Warn().Err(err).Str("query", query).Msg("geocode request failed")
		return nil, nil
	}
	defer func() { _ = drainAndClose(resp.Body) }()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode).Str("query", query).Msg("geocode non-ok status")
		return nil, nil
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		c.log.Warn().Err(err).Str("query", query).Msg("geocode decode failed")
		return nil, nil
	}
	if len(results) == 0 {
		return nil, nil
	}

	r := results[0]
	lat, errLat := strconv.ParseFloat(r.Lat, 64)
	lon, errLon := strconv.ParseFloat(r.Lon, 64)
	if errLat != nil || errLon != nil {
		return nil, nil
	}

	loc := &Location{Lat: lat, Lon: lon, DisplayName: r.DisplayName}
	if len(r.BoundingBox) == 4 {
		// nominatim order is (min_lat, max_lat, min_lon, max_lon)
		minLat, e1 := strconv.ParseFloat(r.BoundingBox[0], 64)
		maxLat, e2 := strconv.ParseFloat(r.BoundingBox[1], 64)
		minLon, e3 := strconv.ParseFloat(r.BoundingBox[2], 64)
		maxLon, e4 := strconv.ParseFloat(r.BoundingBox[3], 64)
		if e1 == nil && e2 == nil && e3 == nil && e4 == nil {
			loc.BBox = &[4]float64{minLat, minLon, maxLat, maxLon}
		}
	}
	return loc, nil
}
