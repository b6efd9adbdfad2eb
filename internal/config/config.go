package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/climatescope/internal/domain"
)

// Dataset sources.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DatasetSource   string
	DatasetPath     string
	DatabaseURL     string
	ReportsDir      string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	RankingSize   int
	MissingPolicy domain.MissingPolicy

	// Report event publishing.
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaReportTopic string

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// How long a failed or empty country lookup is remembered.
	MapboxNegativeTTL time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is read first when present; real
// environment variables take precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s"))
	if err != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	mapboxNegativeTTL, err := time.ParseDuration(sharedcfg.EnvOrDefault("MAPBOX_NEGATIVE_TTL", "5m"))
	if err != nil || mapboxNegativeTTL < 0 {
		return nil, errors.New("invalid MAPBOX_NEGATIVE_TTL")
	}

	rankingSize, err := strconv.Atoi(sharedcfg.EnvOrDefault("RANKING_SIZE", "5"))
	if err != nil || rankingSize <= 0 {
		return nil, errors.New("invalid RANKING_SIZE: must be a positive integer")
	}

	policy, err := domain.ParseMissingPolicy(sharedcfg.EnvOrDefault("COMFORT_MISSING_POLICY", string(domain.MissingExclude)))
	if err != nil {
		return nil, fmt.Errorf("invalid COMFORT_MISSING_POLICY: %w", err)
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		DatasetSource:   sharedcfg.EnvOrDefault("DATASET_SOURCE", SourceCSV),
		DatasetPath:     sharedcfg.EnvOrDefault("DATASET_PATH", "data/weather_cleaned.csv"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		ReportsDir:      sharedcfg.EnvOrDefault("REPORTS_DIR", "reports"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		RankingSize:   rankingSize,
		MissingPolicy: policy,

		KafkaEnabled:     os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaReportTopic: sharedcfg.EnvOrDefault("KAFKA_REPORT_TOPIC", "climate-reports"),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),

		MapboxNegativeTTL: mapboxNegativeTTL,
	}

	switch cfg.DatasetSource {
	case SourceCSV:
		if cfg.DatasetPath == "" {
			return nil, errors.New("DATASET_PATH is required")
		}
	case SourcePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required when DATASET_SOURCE is postgres")
		}
	default:
		return nil, fmt.Errorf("invalid DATASET_SOURCE %q: want csv or postgres", cfg.DatasetSource)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if cfg.KafkaEnabled && cfg.KafkaReportTopic == "" {
		return nil, errors.New("KAFKA_REPORT_TOPIC is required when KAFKA_ENABLED is true")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
