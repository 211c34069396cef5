package overpass

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"leadscout/internal/core/geo"
	perr "leadscout/internal/platform/errors"
	"leadscout/internal/platform/testkit"
)

func newTestClient(t *testing.T, endpoints ...string) *Client {
	t.Helper()
	c := NewClient(Options{
		Endpoints:  endpoints,
		MaxRetries: 3,
		RetryBase:  time.Millisecond,
	})
	c.sleep = func(time.Duration) {}
	return c
}

func lisbonQuery() DiscoverQuery {
	b, _ := geo.Named("lisboa")
	return DiscoverQuery{BBox: &b, DaysBack: 7, AmenityTypes: []string{"restaurant"}}
}

const okBody = `{"elements":[
	{"type":"node","id":1,"lat":38.7,"lon":-9.1,"tags":{"name":"Tasca do Chico","amenity":"restaurant"}},
	{"type":"node","id":2,"lat":38.71,"lon":-9.12,"tags":{"amenity":"restaurant"}}
]}`

func TestDiscover_FailsOverToNextEndpointOnThrottle(t *testing.T) {
	t.Parallel()

	var firstHits, secondHits atomic.Int32
	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		firstHits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer first.Close()
	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secondHits.Add(1)
		_, _ = w.Write([]byte(okBody))
	}))
	defer second.Close()

	c := newTestClient(t, first.URL, second.URL)
	elems, err := c.Discover(context.Background(), lisbonQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if firstHits.Load() != 1 || secondHits.Load() != 1 {
		t.Fatalf("expected one hit per endpoint, got %d and %d", firstHits.Load(), secondHits.Load())
	}
	// unnamed element filtered out
	if len(elems) != 1 || elems[0].Name() != "Tasca do Chico" {
		t.Fatalf("unexpected elements: %+v", elems)
	}
}

func TestDiscover_GatewayTimeoutRotates(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srvA := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusGatewayTimeout)
	}))
	defer srvA.Close()
	srvB := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"elements":[]}`))
	}))
	defer srvB.Close()

	c := newTestClient(t, srvA.URL, srvB.URL)
	if _, err := c.Discover(context.Background(), lisbonQuery()); err != nil {
		t.Fatalf("unexpected error after failover: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("first endpoint should have been tried once, got %d", hits.Load())
	}
}

func TestDiscover_SyntaxErrorDoesNotRetry(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("parse error: unexpected token"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Discover(context.Background(), lisbonQuery())

	testkit.MustCode(t, err, perr.CodeSyntax)
	if hits.Load() != 1 {
		t.Fatalf("syntax failure must not retry, got %d attempts", hits.Load())
	}
}

func TestDiscover_RetryCeilingYieldsRateLimited(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL) // single endpoint, rotation wraps to itself
	_, err := c.Discover(context.Background(), lisbonQuery())

	testkit.MustCode(t, err, perr.CodeRateLimited)
	if got := hits.Load(); got != 4 { // MaxRetries=3 -> 4 attempts
		t.Fatalf("expected 4 attempts, got %d", got)
	}
}

func TestDiscover_ConnectionFailureIsTransport(t *testing.T) {
	t.Parallel()

	// grab an address nothing listens on
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	dead := srv.URL
	srv.Close()

	c := newTestClient(t, dead)
	_, err := c.Discover(context.Background(), lisbonQuery())

	testkit.MustCode(t, err, perr.CodeTransport)
}

func TestDiscover_SendsExpectedQuery(t *testing.T) {
	t.Parallel()

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotQuery = r.PostFormValue("data")
		_, _ = w.Write([]byte(`{"elements":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	c.now = func() time.Time { return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC) }

	q := lisbonQuery()
	q.ShopTypes = []string{"bakery"}
	if _, err := c.Discover(context.Background(), q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"[out:json]",
		`node["amenity"="restaurant"](38.691,-9.23,38.796,-9.087)`,
		`way["shop"="bakery"]`,
		`(newer:"2026-08-22T12:00:00Z")`,
		"out body center meta;",
	} {
		testkit.MustContain(t, gotQuery, want)
	}
}

func TestDiscover_EmptyTypeListsQueryAnyBusinessTag(t *testing.T) {
	t.Parallel()

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotQuery = r.PostFormValue("data")
		_, _ = w.Write([]byte(`{"elements":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	b, _ := geo.Named("porto")
	if _, err := c.Discover(context.Background(), DiscoverQuery{BBox: &b}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testkit.MustContain(t, gotQuery, `node["amenity"](`)
	testkit.MustContain(t, gotQuery, `way["shop"](`)
	if strings.Contains(gotQuery, "newer") {
		t.Fatalf("DaysBack=0 must not emit a newer filter:\n%s", gotQuery)
	}
}

func TestElementByID(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		q := r.PostFormValue("data")
		if strings.Contains(q, "way(42)") {
			_, _ = w.Write([]byte(`{"elements":[{"type":"way","id":42,"center":{"lat":41.1,"lon":-8.6},"tags":{"name":"Mercado"}}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"elements":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	e, err := c.ElementByID(context.Background(), "way", 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e == nil || e.Name() != "Mercado" {
		t.Fatalf("unexpected element: %+v", e)
	}
	lat, lon, ok := e.Coords()
	if !ok || lat != 41.1 || lon != -8.6 {
		t.Fatalf("center coords not used: %v %v %v", lat, lon, ok)
	}

	missing, err := c.ElementByID(context.Background(), "node", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing element, got %+v", missing)
	}

	if _, err := c.ElementByID(context.Background(), "building", 1); err == nil {
		t.Fatalf("expected invalid type to error")
	}
}

func TestCountByType(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"elements":[
			{"type":"node","id":1,"tags":{"name":"a","amenity":"cafe"}},
			{"type":"node","id":2,"tags":{"name":"b","amenity":"cafe"}},
			{"type":"node","id":3,"tags":{"name":"c","shop":"bakery"}}
		]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	counts, err := c.CountByType(context.Background(), lisbonQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts["cafe"] != 2 || counts["bakery"] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestElement_Accessors(t *testing.T) {
	t.Parallel()

	e := Element{
		Type: "node",
		ID:   9,
		Tags: map[string]string{
			"name":            "Padaria Central",
			"shop":            "bakery",
			"contact:phone":   "+351 21 000 0000",
			"contact:website": "https://padaria.example",
			"addr:street":     "Rua Augusta",
			"addr:housenumber": "10",
			"addr:postcode":   "1100-048",
			"addr:city":       "Lisboa",
		},
	}

	if got := e.BusinessType(); got != "bakery" {
		t.Fatalf("BusinessType = %q", got)
	}
	if got := e.Phone(); got != "+351 21 000 0000" {
		t.Fatalf("Phone fallback = %q", got)
	}
	if got := e.Website(); got != "https://padaria.example" {
		t.Fatalf("Website fallback = %q", got)
	}
	if got := e.Address(); got != "Rua Augusta 10, 1100-048, Lisboa" {
		t.Fatalf("Address = %q", got)
	}
	if got := e.URL(); got != "https://www.openstreetmap.org/node/9" {
		t.Fatalf("URL = %q", got)
	}

	if got := (Element{Tags: map[string]string{"name": "x"}}).BusinessType(); got != "unknown" {
		t.Fatalf("untyped BusinessType = %q", got)
	}
}
