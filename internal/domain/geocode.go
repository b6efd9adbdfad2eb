package domain

import (
	"context"
	"log/slog"
)

// LocateCountries resolves each country to a centroid. Countries the geocoder
// cannot place, or places below MinGeocodeConfidence, are absent from the
// result; a nil geocoder yields an empty map.
// Lookups stop early when ctx is cancelled.
func LocateCountries(ctx context.Context, countries []string, geocoder Geocoder, logger *slog.Logger) map[string]Geo {
	out := make(map[string]Geo, len(countries))
	if geocoder == nil {
		return out
	}

	for _, country := range countries {
		if ctx.Err() != nil {
			return out
		}
		result, err := geocoder.LocateCountry(ctx, country)
		if err != nil {
			logger.Warn("country geocoding failed",
				"country", country,
				"error", err,
			)
			continue
		}
		if result.Lat == 0 && result.Lon == 0 {
			continue
		}
		if result.Confidence < MinGeocodeConfidence {
			logger.Debug("low-relevance country match ignored",
				"country", country,
				"place", result.PlaceName,
				"confidence", result.Confidence,
			)
			continue
		}
		out[country] = Geo{Lat: result.Lat, Lon: result.Lon}
	}
	return out
}
