// Package geo provides bounding box math and the named areas the
// discovery queries default to
package geo

import (
	"fmt"
	"strings"
)

// BoundingBox is (MinLat, MinLon, MaxLat, MaxLon)
type BoundingBox struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// String renders the box in query filter order: (south,west,north,east)
func (b BoundingBox) String() string {
	return fmt.Sprintf("(%g,%g,%g,%g)", b.MinLat, b.MinLon, b.MaxLat, b.MaxLon)
}

// Contains reports whether the point lies inside the box (inclusive)
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Valid reports whether the box is well formed
func (b BoundingBox) Valid() bool {
	return b.MinLat < b.MaxLat && b.MinLon < b.MaxLon &&
		b.MinLat >= -90 && b.MaxLat <= 90 &&
		b.MinLon >= -180 && b.MaxLon <= 180
}

// Point is a WGS84 coordinate
type Point struct {
	Lat float64
	Lon float64
}

// degreesPerKm approximates 1 degree of latitude as 111 km
const degreesPerKm = 1.0 / 111.0

// Around builds a square box of radiusKm around a point.
// The longitude delta uses the same approximation as latitude, good
// enough at the latitudes the named areas cover
func Around(p Point, radiusKm float64) BoundingBox {
	d := radiusKm * degreesPerKm
	return BoundingBox{
		MinLat: p.Lat - d,
		MinLon: p.Lon - d,
		MaxLat: p.Lat + d,
		MaxLon: p.Lon + d,
	}
}

// namedAreas are the predefined discovery regions
var namedAreas = map[string]BoundingBox{
	"portugal": {36.838269, -9.526086, 42.280469, -6.189158},
	"lisboa":   {38.691, -9.230, 38.796, -9.087},
	"porto":    {41.121, -8.691, 41.185, -8.551},
	"faro":     {36.980, -7.970, 37.050, -7.900},
	"braga":    {41.530, -8.470, 41.580, -8.390},
	"coimbra":  {40.170, -8.470, 40.240, -8.390},
}

// Named looks up a predefined area by name, case insensitive
func Named(name string) (BoundingBox, bool) {
	b, ok := namedAreas[strings.ToLower(strings.TrimSpace(name))]
	return b, ok
}

// AreaNames returns the predefined area names in no particular order
func AreaNames() []string {
	out := make([]string, 0, len(namedAreas))
	for k := range namedAreas {
		out = append(out, k)
	}
	return out
}
