package domain

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// DefaultRankingSize is the number of countries returned when no size is given.
const DefaultRankingSize = 5

// ComfortBaseline is the temperature (°C) at which no deviation penalty applies.
const ComfortBaseline = 22.0

// MissingPolicy decides how rows lacking a comfort input affect a country's mean.
type MissingPolicy string

const (
	// MissingExclude drops unscorable rows from both sum and count. A country
	// with no scorable rows is left out of the ranking.
	MissingExclude MissingPolicy = "exclude"
	// MissingZeroFill scores unscorable rows as 0 and keeps them in the count.
	MissingZeroFill MissingPolicy = "zero"
	// MissingDropCountry leaves out any country with at least one unscorable row.
	MissingDropCountry MissingPolicy = "drop-country"
)

// ParseMissingPolicy validates a policy name. An empty name means MissingExclude.
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch p := MissingPolicy(s); p {
	case "":
		return MissingExclude, nil
	case MissingExclude, MissingZeroFill, MissingDropCountry:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
	}
}

// ComfortEntry is one row of a comfort ranking.
type ComfortEntry struct {
	Rank    int     `json:"rank"`
	Country string  `json:"country"`
	Score   float64 `json:"comfort_score"`
}

// ComfortIndex scores a record as
//
//	100 − |Temperature − 22| − 0.1×Humidity − 0.2×AirQualityIndex
//
// The second result is false when any of the three inputs is missing.
func ComfortIndex(r WeatherRecord) (float64, bool) {
	if r.Temperature == nil || r.Humidity == nil || r.AirQualityIndex == nil {
		return 0, false
	}
	return 100 - math.Abs(*r.Temperature-ComfortBaseline) - *r.Humidity*0.1 - *r.AirQualityIndex*0.2, true
}

type comfortGroup struct {
	country    string
	sum        float64
	count      int
	unscorable bool
}

// RankTopCountries averages the comfort index per country and returns the k
// best, highest score first. Countries are grouped in ascending name order and
// ties keep that order. k <= 0 selects DefaultRankingSize.
func RankTopCountries(d *Dataset, k int, policy MissingPolicy) []ComfortEntry {
	if k <= 0 {
		k = DefaultRankingSize
	}

	groups := make(map[string]*comfortGroup)
	d.each(func(r WeatherRecord) {
		g, ok := groups[r.Country]
		if !ok {
			g = &comfortGroup{country: r.Country}
			groups[r.Country] = g
		}
		score, ok := ComfortIndex(r)
		if !ok {
			g.unscorable = true
			if policy == MissingZeroFill {
				g.count++
			}
			return
		}
		g.sum += score
		g.count++
	})

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	slices.Sort(names)

	ranked := make([]ComfortEntry, 0, len(names))
	for _, name := range names {
		g := groups[name]
		if g.count == 0 {
			continue
		}
		if policy == MissingDropCountry && g.unscorable {
			continue
		}
		ranked = append(ranked, ComfortEntry{Country: name, Score: g.sum / float64(g.count)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
