// Command report generates one climate report PDF without starting the server.
//
// Usage:
//
//	go run ./cmd/report -country India -year 2023 -metric Temperature
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	kafkaadapter "github.com/couchcryptid/climatescope/internal/adapter/kafka"
	"github.com/couchcryptid/climatescope/internal/config"
	"github.com/couchcryptid/climatescope/internal/dashboard"
	"github.com/couchcryptid/climatescope/internal/dataset"
	"github.com/couchcryptid/climatescope/internal/domain"
	"github.com/couchcryptid/climatescope/internal/observability"
	"github.com/couchcryptid/climatescope/internal/report"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	data := flag.String("data", cfg.DatasetPath, "path to the cleaned weather CSV")
	country := flag.String("country", "", "country name, matched exactly")
	year := flag.Int("year", 0, "report year")
	metric := flag.String("metric", string(domain.MetricTemperature), "Temperature, Humidity, WindSpeed or Precipitation")
	out := flag.String("out", cfg.ReportsDir, "output directory")
	flag.Parse()

	if *country == "" || *year == 0 {
		flag.Usage()
		return 2
	}

	cfg.DatasetPath = *data
	if isFlagSet("data") {
		cfg.DatasetSource = config.SourceCSV
	}

	logger := observability.NewLogger(cfg)
	ctx := context.Background()

	d, err := dataset.Load(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load dataset: %v\n", err)
		return 1
	}

	settings := dashboard.Settings{}
	if cfg.KafkaEnabled {
		w := kafkaadapter.NewWriter(cfg, logger)
		defer w.Close()
		settings.Publisher = w
	}

	dash := dashboard.New(d, report.NewWriter(*out, logger), logger, observability.NewMetrics(), settings)
	res, err := dash.Dispatch(ctx, dashboard.Action{
		Kind: dashboard.KindReport,
		Selection: domain.FilterSelection{
			Country: *country,
			Year:    *year,
			Metric:  domain.Metric(*metric),
		},
	})
	switch {
	case errors.Is(err, domain.ErrEmptySelection):
		fmt.Fprintf(os.Stderr, "no data for %s in %d\n", *country, *year)
		return 1
	case err != nil:
		fmt.Fprintf(os.Stderr, "generate report: %v\n", err)
		return 1
	}

	fmt.Printf("%s\n%s\n", res.Report.Title(), res.Report.AverageLine())
	fmt.Println(res.Report.Path)
	return 0
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
