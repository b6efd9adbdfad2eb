// Package postgres loads the weather dataset from a PostgreSQL table.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/couchcryptid/climatescope/internal/domain"
)

// Schema creates the table the loader reads from.
const Schema = `
CREATE TABLE IF NOT EXISTS weather_records (
    id                BIGSERIAL PRIMARY KEY,
    country           TEXT    NOT NULL,
    year              INTEGER NOT NULL,
    month             TEXT    NOT NULL DEFAULT '',
    temperature       DOUBLE PRECISION,
    humidity          DOUBLE PRECISION,
    wind_speed        DOUBLE PRECISION,
    precipitation     DOUBLE PRECISION,
    air_quality_index DOUBLE PRECISION,
    latitude          DOUBLE PRECISION,
    longitude         DOUBLE PRECISION
);`

const selectRecords = `
SELECT country, year, month, temperature, humidity, wind_speed, precipitation,
       air_quality_index, latitude, longitude
FROM weather_records
ORDER BY id`

type recordRow struct {
	Country         sql.NullString  `db:"country"`
	Year            sql.NullInt64   `db:"year"`
	Month           sql.NullString  `db:"month"`
	Temperature     sql.NullFloat64 `db:"temperature"`
	Humidity        sql.NullFloat64 `db:"humidity"`
	WindSpeed       sql.NullFloat64 `db:"wind_speed"`
	Precipitation   sql.NullFloat64 `db:"precipitation"`
	AirQualityIndex sql.NullFloat64 `db:"air_quality_index"`
	Latitude        sql.NullFloat64 `db:"latitude"`
	Longitude       sql.NullFloat64 `db:"longitude"`
}

// Source reads weather records through a pooled sqlx connection.
type Source struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Open connects to dsn and verifies the connection with a ping.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Source, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %w", domain.ErrDataUnavailable, err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping database: %w", domain.ErrDataUnavailable, err)
	}
	return &Source{db: db, logger: logger}, nil
}

// Load reads the whole weather_records table in insertion order.
func (s *Source) Load(ctx context.Context) (*domain.Dataset, error) {
	var rows []recordRow
	if err := s.db.SelectContext(ctx, &rows, selectRecords); err != nil {
		return nil, fmt.Errorf("%w: query weather_records: %w", domain.ErrDataUnavailable, err)
	}

	records := make([]domain.WeatherRecord, 0, len(rows))
	for i, row := range rows {
		r, err := toRecord(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		records = append(records, r)
	}

	s.logger.Info("dataset loaded from postgres", "records", len(records))
	return domain.NewDataset(records), nil
}

// Close releases the connection pool.
func (s *Source) Close() error {
	return s.db.Close()
}

func toRecord(row recordRow) (domain.WeatherRecord, error) {
	if !row.Country.Valid || row.Country.String == "" {
		return domain.WeatherRecord{}, fmt.Errorf("%w: missing %s", domain.ErrDataUnavailable, domain.ColCountry)
	}
	if !row.Year.Valid {
		return domain.WeatherRecord{}, fmt.Errorf("%w: missing %s", domain.ErrDataUnavailable, domain.ColYear)
	}
	return domain.WeatherRecord{
		Country:         row.Country.String,
		Year:            int(row.Year.Int64),
		Month:           row.Month.String,
		Temperature:     nullable(row.Temperature),
		Humidity:        nullable(row.Humidity),
		WindSpeed:       nullable(row.WindSpeed),
		Precipitation:   nullable(row.Precipitation),
		AirQualityIndex: nullable(row.AirQualityIndex),
		Latitude:        nullable(row.Latitude),
		Longitude:       nullable(row.Longitude),
	}, nil
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return domain.Float(v.Float64)
}
