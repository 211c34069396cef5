package geo

import (
	"math"
	"testing"
)

func TestAround_SquareBoxAtApproximation(t *testing.T) {
	t.Parallel()

	p := Point{Lat: 38.7, Lon: -9.1}
	b := Around(p, 5.0)

	wantDelta := 5.0 / 111.0
	if got := b.MaxLat - p.Lat; math.Abs(got-wantDelta) > 1e-9 {
		t.Fatalf("lat delta = %g, want %g", got, wantDelta)
	}
	if got := p.Lon - b.MinLon; math.Abs(got-wantDelta) > 1e-9 {
		t.Fatalf("lon delta = %g, want %g", got, wantDelta)
	}
	if !b.Valid() {
		t.Fatalf("box should be valid: %+v", b)
	}
	if !b.Contains(p.Lat, p.Lon) {
		t.Fatalf("box should contain its center")
	}
}

func TestNamed_CaseInsensitiveLookup(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"lisboa", "Lisboa", "  LISBOA "} {
		b, ok := Named(name)
		if !ok {
			t.Fatalf("Named(%q) should resolve", name)
		}
		if !b.Valid() {
			t.Fatalf("Named(%q) returned invalid box %+v", name, b)
		}
	}

	if _, ok := Named("atlantis"); ok {
		t.Fatalf("unknown area should not resolve")
	}
}

func TestBoundingBox_String(t *testing.T) {
	t.Parallel()

	b := BoundingBox{MinLat: 38.691, MinLon: -9.23, MaxLat: 38.796, MaxLon: -9.087}
	want := "(38.691,-9.23,38.796,-9.087)"
	if got := b.String(); got != want {
		t.Fatalf("String = %q, want %q", got, want)
	}
}

func TestAreaNames_CoversAllNamedAreas(t *testing.T) {
	t.Parallel()

	names := AreaNames()
	if len(names) != len(namedAreas) {
		t.Fatalf("AreaNames returned %d names, want %d", len(names), len(namedAreas))
	}
	for _, n := range names {
		if _, ok := Named(n); !ok {
			t.Fatalf("name %q from AreaNames does not resolve", n)
		}
	}
}
