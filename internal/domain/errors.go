package domain

import "errors"

var (
	// ErrDataUnavailable means the dataset source is missing, unreadable or
	// malformed. Startup must halt.
	ErrDataUnavailable = errors.New("weather data unavailable")

	// ErrUnknownMetric means a metric name outside the supported set was requested.
	ErrUnknownMetric = errors.New("unknown metric")

	// ErrEmptySelection means a filter produced no usable rows, so no summary exists.
	ErrEmptySelection = errors.New("no data for selection")

	// ErrInvalidPolicy means an unrecognized missing-input policy name.
	ErrInvalidPolicy = errors.New("invalid missing-input policy")
)
