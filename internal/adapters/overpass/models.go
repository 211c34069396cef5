package overpass

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Element is one OSM node, way or relation from a query result.
// Ways and relations report their center as the coordinate
type Element struct {
	Type      string            `json:"type"`
	ID        int64             `json:"id"`
	Lat       *float64          `json:"lat,omitempty"`
	Lon       *float64          `json:"lon,omitempty"`
	Center    *Center           `json:"center,omitempty"`
	Tags      map[string]string `json:"tags,omitempty"`
	Timestamp string            `json:"timestamp,omitempty"`
	Version   int               `json:"version,omitempty"`
	Changeset int64             `json:"changeset,omitempty"`
	User      string            `json:"user,omitempty"`
}

// Center is the computed centroid for ways and relations
type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Coords returns the element position, preferring the centroid
func (e Element) Coords() (lat, lon float64, ok bool) {
	if e.Center != nil {
		return e.Center.Lat, e.Center.Lon, true
	}
	if e.Lat != nil && e.Lon != nil {
		return *e.Lat, *e.Lon, true
	}
	return 0, 0, false
}

// Name returns the name tag, empty when unnamed
func (e Element) Name() string { return e.Tags["name"] }

// Named reports whether the element carries a name tag
func (e Element) Named() bool { return e.Tags["name"] != "" }

// BusinessType returns the primary classification tag
func (e Element) BusinessType() string {
	for _, k := range []string{"amenity", "shop", "tourism"} {
		if v := e.Tags[k]; v != "" {
			return v
		}
	}
	return "unknown"
}

// Phone prefers the phone tag, falls back to contact:phone
func (e Element) Phone() string {
	if v := e.Tags["phone"]; v != "" {
		return v
	}
	return e.Tags["contact:phone"]
}

// Website prefers the website tag, falls back to contact:website
func (e Element) Website() string {
	if v := e.Tags["website"]; v != "" {
		return v
	}
	return e.Tags["contact:website"]
}

// Email prefers the email tag, falls back to contact:email
func (e Element) Email() string {
	if v := e.Tags["email"]; v != "" {
		return v
	}
	return e.Tags["contact:email"]
}

// OpeningHours returns the opening_hours tag when present
func (e Element) OpeningHours() string { return e.Tags["opening_hours"] }

// Address assembles "street number, postcode, city" from addr:* tags
func (e Element) Address() string {
	var parts []string
	if s := e.Tags["addr:street"]; s != "" {
		parts = append(parts, strings.TrimSpace(s+" "+e.Tags["addr:housenumber"]))
	}
	if p := e.Tags["addr:postcode"]; p != "" {
		parts = append(parts, p)
	}
	if c := e.Tags["addr:city"]; c != "" {
		parts = append(parts, c)
	}
	return strings.Join(parts, ", ")
}

// URL returns the openstreetmap.org page for this element
func (e Element) URL() string {
	return fmt.Sprintf("https://www.openstreetmap.org/%s/%d", e.Type, e.ID)
}

// queryResponse is the wire envelope of a query result
type queryResponse struct {
	Elements []Element `json:"elements"`
}

// Location is a geocoding result
type Location struct {
	Lat         float64
	Lon         float64
	DisplayName string
	BBox        *[4]float64 // (min_lat, min_lon, max_lat, max_lon) when reported
}

// nominatimResult is one row of a Nominatim search response
type nominatimResult struct {
	Lat         string    `json:"lat"`
	Lon         string    `json:"lon"`
	DisplayName string    `json:"display_name"`
	BoundingBox []string  `json:"boundingbox"`
	Type        string    `json:"type"`
	OSMType     string    `json:"osm_type"`
	OSMID       json.Number `json:"osm_id"`
}
