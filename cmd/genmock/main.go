// Command genmock writes a synthetic cleaned weather dataset for local runs
// and demos. Output is deterministic for a given seed.
//
// Usage:
//
//	go run ./cmd/genmock -out data/weather_cleaned.csv -from 2020 -to 2024 -seed 7
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/couchcryptid/climatescope/internal/domain"
)

// climate is a coarse per-country profile the generator perturbs.
type climate struct {
	country  string
	lat, lon float64
	meanTemp float64 // annual mean, °C
	swing    float64 // half the seasonal range, °C
	humidity float64
	wind     float64
	rain     float64 // monthly mm
	aqi      float64
	southern bool
	noCoords bool
}

var climates = []climate{
	{country: "Australia", lat: -33.87, lon: 151.21, meanTemp: 19, swing: 6, humidity: 62, wind: 17, rain: 90, aqi: 30, southern: true},
	{country: "Brazil", lat: -22.91, lon: -43.17, meanTemp: 24, swing: 3.5, humidity: 76, wind: 9, rain: 120, aqi: 50, southern: true},
	{country: "Canada", lat: 43.65, lon: -79.38, meanTemp: 8, swing: 14, humidity: 68, wind: 14, rain: 70, aqi: 25},
	{country: "Chile", lat: -33.45, lon: -70.66, meanTemp: 15, swing: 6, humidity: 55, wind: 8, rain: 25, aqi: 40, southern: true},
	{country: "Egypt", lat: 30.04, lon: 31.24, meanTemp: 22, swing: 7, humidity: 50, wind: 13, rain: 2, aqi: 105},
	{country: "India", lat: 28.61, lon: 77.21, meanTemp: 25, swing: 8, humidity: 65, wind: 9, rain: 60, aqi: 150},
	{country: "Japan", lat: 35.68, lon: 139.69, meanTemp: 16, swing: 11, humidity: 62, wind: 11, rain: 125, aqi: 40},
	{country: "Kenya", meanTemp: 19, swing: 2, humidity: 60, wind: 13, rain: 70, aqi: 60, southern: true, noCoords: true},
	{country: "Norway", lat: 59.91, lon: 10.75, meanTemp: 6, swing: 10, humidity: 76, wind: 13, rain: 65, aqi: 18},
	{country: "Spain", lat: 40.42, lon: -3.70, meanTemp: 15, swing: 9, humidity: 56, wind: 11, rain: 35, aqi: 42},
}

func main() {
	out := flag.String("out", "data/weather_cleaned.csv", "output CSV path")
	from := flag.Int("from", 2020, "first year")
	to := flag.Int("to", 2024, "last year")
	seed := flag.Uint64("seed", 7, "random seed")
	missing := flag.Float64("missing", 0.02, "probability that a reading is left empty")
	flag.Parse()

	if *to < *from {
		log.Fatalf("-to (%d) is before -from (%d)", *to, *from)
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatal(err)
	}
	n, err := generate(f, *from, *to, *seed, *missing)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %d rows for %d countries to %s", n, len(climates), *out)
}

// generate writes one row per country, year and month and returns the row count.
func generate(w io.Writer, from, to int, seed uint64, missing float64) (int, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	cw := csv.NewWriter(w)

	header := append(append([]string{}, domain.RequiredColumns...), domain.ColLatitude, domain.ColLongitude)
	if err := cw.Write(header); err != nil {
		return 0, err
	}

	cell := func(v float64, digits int) string {
		if rng.Float64() < missing {
			return ""
		}
		return strconv.FormatFloat(v, 'f', digits, 64)
	}

	rows := 0
	for _, c := range climates {
		for year := from; year <= to; year++ {
			for month := 1; month <= 12; month++ {
				season := seasonal(month, c.southern)
				temp := c.meanTemp + c.swing*season + rng.NormFloat64()*1.5
				humidity := clamp(c.humidity-8*season+rng.NormFloat64()*4, 5, 100)
				wind := math.Max(0, c.wind+rng.NormFloat64()*2)
				rain := math.Max(0, c.rain*(1+0.4*season)+rng.NormFloat64()*c.rain*0.2)
				aqi := math.Max(0, c.aqi+rng.NormFloat64()*c.aqi*0.15)

				lat, lon := "", ""
				if !c.noCoords {
					lat = strconv.FormatFloat(c.lat, 'f', 2, 64)
					lon = strconv.FormatFloat(c.lon, 'f', 2, 64)
				}

				record := []string{
					c.country,
					strconv.Itoa(year),
					strconv.Itoa(month),
					cell(temp, 1),
					cell(humidity, 0),
					cell(wind, 1),
					cell(rain, 1),
					cell(aqi, 0),
					lat,
					lon,
				}
				if err := cw.Write(record); err != nil {
					return rows, err
				}
				rows++
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return rows, fmt.Errorf("flush csv: %w", err)
	}
	return rows, nil
}

// seasonal is +1 at the local height of summer and -1 at midwinter.
func seasonal(month int, southern bool) float64 {
	peak := 7.0
	if southern {
		peak = 1
	}
	return math.Cos(2 * math.Pi * (float64(month) - peak) / 12)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
