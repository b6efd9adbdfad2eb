package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/climatescope/internal/domain"
)

var f = domain.Float

func validRecord() domain.WeatherRecord {
	return domain.WeatherRecord{
		Country: "Chile", Year: 2023, Month: "3",
		Temperature: f(21), Humidity: f(45), WindSpeed: f(7), Precipitation: f(2), AirQualityIndex: f(12),
		Latitude: f(-33.45), Longitude: f(-70.66),
	}
}

func TestValidateSchema(t *testing.T) {
	assert.True(t, validateSchema([]domain.WeatherRecord{validRecord()}).passed())
	assert.False(t, validateSchema(nil).passed())

	bad := validRecord()
	bad.Month = "Smarch"
	p := validateSchema([]domain.WeatherRecord{bad})
	assert.Len(t, p.errors, 1)
	assert.Contains(t, p.errors[0], "Smarch")
}

func TestValidateRanges(t *testing.T) {
	assert.True(t, validateRanges([]domain.WeatherRecord{validRecord()}).passed())

	bad := validRecord()
	bad.Humidity = f(140)
	bad.WindSpeed = f(-1)
	bad.Precipitation = nil
	p := validateRanges([]domain.WeatherRecord{bad})
	assert.Len(t, p.errors, 2)
}

func TestValidateCoordinates(t *testing.T) {
	noCoords := validRecord()
	noCoords.Latitude, noCoords.Longitude = nil, nil
	assert.True(t, validateCoordinates([]domain.WeatherRecord{validRecord(), noCoords}).passed())

	half := validRecord()
	half.Longitude = nil
	outside := validRecord()
	outside.Latitude = f(91)
	p := validateCoordinates([]domain.WeatherRecord{half, outside})
	assert.Len(t, p.errors, 2)
}

func TestValidateComfortCoverage(t *testing.T) {
	unscorable := validRecord()
	unscorable.Country = "Ghost"
	unscorable.AirQualityIndex = nil

	p := validateComfortCoverage(domain.NewDataset([]domain.WeatherRecord{validRecord(), unscorable}))
	assert.Len(t, p.errors, 1)
	assert.Contains(t, p.errors[0], "Ghost")
}

func TestRun(t *testing.T) {
	assert.Equal(t, 0, run(filepath.Join("..", "..", "data", "weather_cleaned.csv")))
	assert.Equal(t, 1, run(filepath.Join(t.TempDir(), "missing.csv")))

	bad := filepath.Join(t.TempDir(), "bad.csv")
	csv := "Country,Year,Month,Temperature,Humidity,WindSpeed,Precipitation,AirQualityIndex\n" +
		"Chile,2023,3,21,180,7,2,12\n"
	assert.NoError(t, os.WriteFile(bad, []byte(csv), 0o600))
	assert.Equal(t, 1, run(bad))
}
