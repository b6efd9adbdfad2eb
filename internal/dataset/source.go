package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/climatescope/internal/adapter/postgres"
	"github.com/couchcryptid/climatescope/internal/config"
	"github.com/couchcryptid/climatescope/internal/domain"
)

// Load reads the dataset from the configured source. Every failure wraps
// domain.ErrDataUnavailable.
func Load(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*domain.Dataset, error) {
	start := time.Now()

	var (
		d   *domain.Dataset
		err error
	)
	switch cfg.DatasetSource {
	case config.SourcePostgres:
		d, err = loadPostgres(ctx, cfg.DatabaseURL, logger)
	case config.SourceCSV, "":
		d, err = LoadCSV(cfg.DatasetPath)
	default:
		err = fmt.Errorf("%w: unknown dataset source %q", domain.ErrDataUnavailable, cfg.DatasetSource)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("dataset loaded",
		"source", cfg.DatasetSource,
		"records", d.Len(),
		"countries", len(d.Countries()),
		"duration", time.Since(start),
	)
	return d, nil
}

func loadPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*domain.Dataset, error) {
	src, err := postgres.Open(ctx, dsn, logger)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return src.Load(ctx)
}
