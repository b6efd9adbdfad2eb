package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat        float64
	Lon        float64
	PlaceName  string
	Confidence float64 // 0.0-1.0 provider relevance score
}

// MinGeocodeConfidence is the lowest relevance accepted as a country match.
const MinGeocodeConfidence = 0.5

// Geocoder resolves country names to a representative coordinate.
type Geocoder interface {
	// LocateCountry converts a country name to its centroid.
	LocateCountry(ctx context.Context, country string) (GeocodingResult, error)
}
