// Package domain models the cleaned global weather dataset and the
// computations the dashboard serves from it.
//
// # Data Source
//
// The dataset is a pre-cleaned table with one row per country and month:
//
//	Country, Year, Month, Temperature, Humidity, WindSpeed, Precipitation,
//	AirQualityIndex[, Latitude, Longitude]
//
// It is loaded once at startup into an immutable [Dataset] and shared by every
// request afterwards. Numeric readings are optional: an empty or non-numeric
// cell becomes a nil pointer, never a sentinel value.
//
// # Units
//
//	Temperature      degrees Celsius
//	Humidity         relative humidity, percent 0–100
//	WindSpeed        non-negative, source units
//	Precipitation    non-negative, source units
//	AirQualityIndex  AQI scale
//
// Month may be an ordinal ("1"–"12") or an English month name; see [ParseMonth].
//
// # Comfort Index
//
// A travel-comfort score per row:
//
//	100 − |Temperature − 22| − 0.1×Humidity − 0.2×AirQualityIndex
//
// 22 °C is treated as ideal. Humidity and air pollution subtract linearly. A row
// missing any of the three inputs has no score; how such rows affect a
// country's average is a [MissingPolicy]. [RankTopCountries] returns the best
// countries by mean score.
//
// # Reports
//
// [Summarize] produces the rounded mean of one metric for a (country, year)
// selection. An empty selection is [ErrEmptySelection], so a report is never
// written with a NaN average.
package domain
