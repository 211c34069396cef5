package overpass

import (
	"fmt"
	"strings"
	"time"

	"leadscout/internal/core/geo"
)

// DefaultAmenityTypes are the amenity classes worth prospecting
var DefaultAmenityTypes = []string{
	"restaurant", "cafe", "bar", "pub", "fast_food",
	"pharmacy", "clinic", "dentist", "doctors",
	"bank", "bureau_de_change",
	"car_repair", "car_wash",
	"beauty_salon", "hairdresser", "gym", "fitness_centre",
	"veterinary", "childcare", "kindergarten",
	"language_school", "driving_school",
	"cinema", "theatre",
}

// DefaultShopTypes are the shop classes worth prospecting
var DefaultShopTypes = []string{
	"supermarket", "convenience", "bakery", "butcher",
	"clothes", "shoes", "jewelry", "optician",
	"electronics", "computer", "mobile_phone",
	"furniture", "hardware", "doityourself",
	"florist", "pet", "books", "gift",
	"beauty", "cosmetics", "car", "car_parts", "bicycle",
}

// DiscoverQuery selects recently added or modified businesses in an area.
// Area resolves through the named areas first, otherwise it is geocoded.
// Exactly one of Area or BBox should be set
type DiscoverQuery struct {
	Area string
	BBox *geo.BoundingBox

	// DaysBack filters to elements modified in the window, 0 disables
	DaysBack int

	// Empty lists for both means any amenity or shop tag
	AmenityTypes []string
	ShopTypes    []string
}

// buildQuery renders the QL for a discover query over a resolved bbox
func buildQuery(bbox geo.BoundingBox, q DiscoverQuery, timeout time.Duration, now time.Time) string {
	dateFilter := ""
	if q.DaysBack > 0 {
		since := now.UTC().Add(-time.Duration(q.DaysBack) * 24 * time.Hour)
		dateFilter = fmt.Sprintf("(newer:%q)", since.Format("2006-01-02T15:04:05Z"))
	}
	area := bbox.String()

	var clauses []string
	add := func(key, value string) {
		sel := fmt.Sprintf("[%q]", key)
		if value != "" {
			sel = fmt.Sprintf("[%q=%q]", key, value)
		}
		clauses = append(clauses,
			fmt.Sprintf("  node%s%s%s;", sel, area, dateFilter),
			fmt.Sprintf("  way%s%s%s;", sel, area, dateFilter),
		)
	}

	if len(q.AmenityTypes) == 0 && len(q.ShopTypes) == 0 {
		add("amenity", "")
		add("shop", "")
	} else {
		for _, a := range q.AmenityTypes {
			add("amenity", a)
		}
		for _, s := range q.ShopTypes {
			add("shop", s)
		}
	}

	return fmt.Sprintf("[out:json][timeout:%d];\n(\n%s\n);\nout body center meta;",
		int(timeout.Seconds()), strings.Join(clauses, "\n"))
}

// buildElementQuery renders the QL fetching one element by type and id
func buildElementQuery(osmType string, id int64) string {
	return fmt.Sprintf("[out:json][timeout:30];\n%s(%d);\nout body center meta;", osmType, id)
}

// healthQuery is a trivial probe query
const healthQuery = "[out:json][timeout:5];node(1);out;"
