package places

// LatLng is a WGS84 coordinate pair
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Circle is a center point with a radius in meters
type Circle struct {
	Center LatLng  `json:"center"`
	Radius float64 `json:"radius"`
}

// LocationBias softly prefers results near an area
type LocationBias struct {
	Circle Circle `json:"circle"`
}

// DisplayName is a localized place name
type DisplayName struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode,omitempty"`
}

// Photo is a photo reference, only the count matters downstream
type Photo struct {
	Name     string `json:"name"`
	WidthPx  int    `json:"widthPx,omitempty"`
	HeightPx int    `json:"heightPx,omitempty"`
}

// Place is one search result
type Place struct {
	ID                       string       `json:"id"`
	DisplayName              *DisplayName `json:"displayName,omitempty"`
	FormattedAddress         string       `json:"formattedAddress,omitempty"`
	Location                 *LatLng      `json:"location,omitempty"`
	Types                    []string     `json:"types,omitempty"`
	BusinessStatus           string       `json:"businessStatus,omitempty"`
	NationalPhoneNumber      string       `json:"nationalPhoneNumber,omitempty"`
	InternationalPhoneNumber string       `json:"internationalPhoneNumber,omitempty"`
	WebsiteURI               string       `json:"websiteUri,omitempty"`
	GoogleMapsURI            string       `json:"googleMapsUri,omitempty"`
	Rating                   *float64     `json:"rating,omitempty"`
	UserRatingCount          *int         `json:"userRatingCount,omitempty"`
	PriceLevel               string       `json:"priceLevel,omitempty"`
	Photos                   []Photo      `json:"photos,omitempty"`
}

// Name returns the display name or "Unknown"
func (p Place) Name() string {
	if p.DisplayName != nil && p.DisplayName.Text != "" {
		return p.DisplayName.Text
	}
	return "Unknown"
}

// Phone prefers the national number, falls back to international
func (p Place) Phone() string {
	if p.NationalPhoneNumber != "" {
		return p.NationalPhoneNumber
	}
	return p.InternationalPhoneNumber
}

// PhotoCount returns the number of photo references
func (p Place) PhotoCount() int { return len(p.Photos) }

// PriceLevelInt maps the enum to 0..4, nil when absent or unrecognized
func (p Place) PriceLevelInt() *int {
	levels := map[string]int{
		"PRICE_LEVEL_FREE":           0,
		"PRICE_LEVEL_INEXPENSIVE":    1,
		"PRICE_LEVEL_MODERATE":       2,
		"PRICE_LEVEL_EXPENSIVE":      3,
		"PRICE_LEVEL_VERY_EXPENSIVE": 4,
	}
	if v, ok := levels[p.PriceLevel]; ok {
		return &v
	}
	return nil
}

// SearchResponse is a single page of results
type SearchResponse struct {
	Places        []Place `json:"places"`
	NextPageToken string  `json:"nextPageToken,omitempty"`
}

// TextSearchRequest is the free-text search input
type TextSearchRequest struct {
	Query        string
	Lat, Lng     *float64 // optional circle bias center
	RadiusM      float64  // bias radius, default 5000, max 50000
	IncludedType string
	MinRating    *float64
	OpenNow      *bool
	PageToken    string
}

// NearbySearchRequest is the geographic search input
type NearbySearchRequest struct {
	Lat, Lng      float64
	RadiusM       float64
	IncludedTypes []string
	ExcludedTypes []string
	MaxResults    int // per page, server cap 20
}

// textSearchPayload is the wire form for places:searchText
type textSearchPayload struct {
	TextQuery    string        `json:"textQuery"`
	LanguageCode string        `json:"languageCode,omitempty"`
	PageSize     int           `json:"pageSize,omitempty"`
	LocationBias *LocationBias `json:"locationBias,omitempty"`
	IncludedType string        `json:"includedType,omitempty"`
	MinRating    *float64      `json:"minRating,omitempty"`
	OpenNow      *bool         `json:"openNow,omitempty"`
	PageToken    string        `json:"pageToken,omitempty"`
}

// nearbySearchPayload is the wire form for places:searchNearby
type nearbySearchPayload struct {
	LocationRestriction LocationBias `json:"locationRestriction"`
	LanguageCode        string       `json:"languageCode,omitempty"`
	MaxResultCount      int          `json:"maxResultCount,omitempty"`
	RankPreference      string       `json:"rankPreference,omitempty"`
	IncludedTypes       []string     `json:"includedTypes,omitempty"`
	ExcludedTypes       []string     `json:"excludedTypes,omitempty"`
}
