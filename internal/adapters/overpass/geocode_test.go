package overpass

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// memCache is an in-process store.Cache for geocode tests
type memCache struct {
	m    map[string]string
	sets int
}

func (c *memCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := c.m[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.sets++
	c.m[key] = value
	return nil
}

func (c *memCache) Close() error { return nil }

const nominatimBody = `[{
	"lat": "38.7077507",
	"lon": "-9.1365919",
	"display_name": "Lisboa, Portugal",
	"boundingbox": ["38.6913994", "38.7958537", "-9.2298356", "-9.0863328"]
}]`

func TestGeocode_ParsesLocationAndBBox(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Lisboa" {
			t.Errorf("q = %q", got)
		}
		_, _ = w.Write([]byte(nominatimBody))
	}))
	defer srv.Close()

	c := NewClient(Options{Endpoints: []string{"http://unused"}, NominatimURL: srv.URL})

	loc, err := c.Geocode(context.Background(), "Lisboa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc == nil {
		t.Fatalf("expected a location")
	}
	if loc.Lat != 38.7077507 || loc.Lon != -9.1365919 {
		t.Fatalf("unexpected coords: %+v", loc)
	}
	if loc.BBox == nil {
		t.Fatalf("expected a bbox")
	}
	// nominatim returns (min_lat, max_lat, min_lon, max_lon); ours is (min_lat, min_lon, max_lat, max_lon)
	if loc.BBox[0] != 38.6913994 || loc.BBox[1] != -9.2298356 || loc.BBox[2] != 38.7958537 || loc.BBox[3] != -9.0863328 {
		t.Fatalf("bbox order wrong: %v", *loc.BBox)
	}
}

func TestGeocode_NoResultsDegradesToNil(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(Options{Endpoints: []string{"http://unused"}, NominatimURL: srv.URL})

	loc, err := c.Geocode(context.Background(), "nowhere at all")
	if err != nil {
		t.Fatalf("no results must not error, got %v", err)
	}
	if loc != nil {
		t.Fatalf("expected nil location, got %+v", loc)
	}
}

func TestGeocode_ServerFailureDegradesToNil(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(Options{Endpoints: []string{"http://unused"}, NominatimURL: srv.URL})

	loc, err := c.Geocode(context.Background(), "Lisboa")
	if err != nil || loc != nil {
		t.Fatalf("geocode is best effort, got loc=%v err=%v", loc, err)
	}
}

func TestGeocode_CacheHitSkipsNetwork(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(nominatimBody))
	}))
	defer srv.Close()

	cache := &memCache{m: map[string]string{}}
	c := NewClient(Options{
		Endpoints:    []string{"http://unused"},
		NominatimURL: srv.URL,
		GeocodeCache: cache,
	})

	first, err := c.Geocode(context.Background(), "Lisboa")
	if err != nil || first == nil {
		t.Fatalf("first lookup failed: loc=%v err=%v", first, err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected one cache write, got %d", cache.sets)
	}

	second, err := c.Geocode(context.Background(), "Lisboa")
	if err != nil || second == nil {
		t.Fatalf("second lookup failed: loc=%v err=%v", second, err)
	}
	if hits.Load() != 1 {
		t.Fatalf("cache hit should not touch the network, got %d requests", hits.Load())
	}
	if second.Lat != first.Lat || second.Lon != first.Lon {
		t.Fatalf("cached location differs: %+v vs %+v", first, second)
	}
}
