// Package ingest normalizes provider records into lead candidates
package ingest

import (
	"fmt"
	"strings"

	"leadscout/internal/adapters/overpass"
	"leadscout/internal/adapters/places"
	str "leadscout/internal/platform/strings"
	"leadscout/internal/services/leads/domain"
)

// FromPlace normalizes one Places result.
// The external id is the provider id verbatim
func FromPlace(p places.Place, query string) domain.Candidate {
	c := domain.Candidate{
		ExternalID:     p.ID,
		Name:           p.Name(),
		Address:        p.FormattedAddress,
		Categories:     p.Types,
		BusinessStatus: p.BusinessStatus,
		Rating:         p.Rating,
		ReviewCount:    p.UserRatingCount,
		PriceLevel:     p.PriceLevelInt(),
		SourceQuery:    query,
	}
	if p.Location != nil {
		c.Lat = &p.Location.Latitude
		c.Lon = &p.Location.Longitude
	}
	c.Phone = str.Ptr(p.Phone())
	c.Website = str.Ptr(p.WebsiteURI)
	if n := p.PhotoCount(); n > 0 || len(p.Photos) > 0 {
		c.PhotoCount = &n
	}
	return c
}

// FromElement normalizes one OSM element.
// The external id is "osm_<type>_<id>" so the two providers never collide
func FromElement(e overpass.Element) domain.Candidate {
	c := domain.Candidate{
		ExternalID:     fmt.Sprintf("osm_%s_%d", e.Type, e.ID),
		Name:           e.Name(),
		Address:        e.Address(),
		Categories:     elementCategories(e),
		BusinessStatus: "OPERATIONAL",
	}
	if lat, lon, ok := e.Coords(); ok {
		c.Lat = &lat
		c.Lon = &lon
	}
	c.Phone = str.Ptr(e.Phone())
	c.Website = str.Ptr(e.Website())
	c.Email = str.Ptr(e.Email())
	return c
}

// elementCategories collapses the classifying tags into an ordered list
func elementCategories(e overpass.Element) []string {
	var out []string
	seen := map[string]bool{}
	for _, k := range []string{"amenity", "shop", "tourism", "cuisine"} {
		v := e.Tags[k]
		if v == "" {
			continue
		}
		// cuisine can be semicolon separated
		for _, part := range strings.Split(v, ";") {
			part = strings.TrimSpace(part)
			if part != "" && !seen[part] {
				seen[part] = true
				out = append(out, part)
			}
		}
	}
	return out
}
