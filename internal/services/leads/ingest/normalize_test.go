package ingest

import (
	"testing"

	"leadscout/internal/adapters/overpass"
	"leadscout/internal/adapters/places"
)

func TestFromPlace(t *testing.T) {
	t.Parallel()

	rating := 4.2
	reviews := 87
	p := places.Place{
		ID:                  "ChIJabc123",
		DisplayName:         &places.DisplayName{Text: "Tasca do Chico"},
		FormattedAddress:    "Rua do Diario de Noticias 39, Lisboa",
		Location:            &places.LatLng{Latitude: 38.71, Longitude: -9.146},
		Types:               []string{"restaurant", "food"},
		BusinessStatus:      "OPERATIONAL",
		NationalPhoneNumber: "21 396 1339",
		Rating:              &rating,
		UserRatingCount:     &reviews,
		PriceLevel:          "PRICE_LEVEL_MODERATE",
		Photos:              []places.Photo{{Name: "photo/1"}, {Name: "photo/2"}},
	}

	c := FromPlace(p, "fado restaurant lisboa")

	if c.ExternalID != "ChIJabc123" {
		t.Fatalf("external id must be the provider id verbatim, got %q", c.ExternalID)
	}
	if c.Name != "Tasca do Chico" || c.SourceQuery != "fado restaurant lisboa" {
		t.Fatalf("unexpected candidate: %+v", c)
	}
	if c.Lat == nil || *c.Lat != 38.71 {
		t.Fatalf("lat not mapped: %v", c.Lat)
	}
	if c.Phone == nil || *c.Phone != "21 396 1339" {
		t.Fatalf("phone not mapped: %v", c.Phone)
	}
	if c.Website != nil {
		t.Fatalf("absent website must stay nil, got %v", *c.Website)
	}
	if c.PriceLevel == nil || *c.PriceLevel != 2 {
		t.Fatalf("price level not mapped: %v", c.PriceLevel)
	}
	if c.PhotoCount == nil || *c.PhotoCount != 2 {
		t.Fatalf("photo count not mapped: %v", c.PhotoCount)
	}
}

func TestFromPlace_UnknownFactsStayNil(t *testing.T) {
	t.Parallel()

	c := FromPlace(places.Place{ID: "x"}, "q")
	if c.Name != "Unknown" {
		t.Fatalf("Name = %q", c.Name)
	}
	if c.Lat != nil || c.Phone != nil || c.Website != nil || c.Rating != nil ||
		c.ReviewCount != nil || c.PriceLevel != nil || c.PhotoCount != nil {
		t.Fatalf("unreported facts must be nil: %+v", c)
	}
}

func TestFromElement(t *testing.T) {
	t.Parallel()

	lat, lon := 38.72, -9.14
	e := overpass.Element{
		Type: "way",
		ID:   123456,
		Center: &overpass.Center{Lat: lat, Lon: lon},
		Tags: map[string]string{
			"name":          "Padaria Central",
			"shop":          "bakery",
			"cuisine":       "portuguese;coffee_shop",
			"contact:phone": "+351 21 000 0000",
			"email":         "ola@padaria.example",
			"addr:street":   "Rua Augusta",
			"addr:city":     "Lisboa",
		},
	}

	c := FromElement(e)

	if c.ExternalID != "osm_way_123456" {
		t.Fatalf("external id = %q, want osm_way_123456", c.ExternalID)
	}
	if c.Name != "Padaria Central" || c.Address != "Rua Augusta, Lisboa" {
		t.Fatalf("unexpected candidate: %+v", c)
	}
	if c.Lat == nil || *c.Lat != lat || c.Lon == nil || *c.Lon != lon {
		t.Fatalf("center coords not mapped: %v %v", c.Lat, c.Lon)
	}
	if c.Email == nil || *c.Email != "ola@padaria.example" {
		t.Fatalf("email not mapped: %v", c.Email)
	}
	want := []string{"bakery", "portuguese", "coffee_shop"}
	if len(c.Categories) != len(want) {
		t.Fatalf("categories = %v, want %v", c.Categories, want)
	}
	for i := range want {
		if c.Categories[i] != want[i] {
			t.Fatalf("categories = %v, want %v", c.Categories, want)
		}
	}
	if c.BusinessStatus != "OPERATIONAL" {
		t.Fatalf("BusinessStatus = %q", c.BusinessStatus)
	}
}
