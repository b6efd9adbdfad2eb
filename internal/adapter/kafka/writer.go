// Package kafka publishes report events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/climatescope/internal/config"
	"github.com/couchcryptid/climatescope/internal/domain"
)

// ReportEvent announces a generated report file.
type ReportEvent struct {
	ID          string        `json:"id"`
	Country     string        `json:"country"`
	Year        int           `json:"year"`
	Metric      domain.Metric `json:"metric"`
	Average     float64       `json:"average"`
	Path        string        `json:"path"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// Writer produces report events to the configured topic.
// It implements dashboard.ReportPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the report topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaReportTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishReport sends one event for a report written to path.
func (w *Writer) PublishReport(ctx context.Context, r domain.Report, path string) error {
	event := ReportEvent{
		ID:          uuid.NewString(),
		Country:     r.Country,
		Year:        r.Year,
		Metric:      r.Metric,
		Average:     r.Average,
		Path:        path,
		GeneratedAt: r.GeneratedAt,
	}
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish report event: %w", err)
	}
	w.logger.Debug("report event published", "id", event.ID, "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a ReportEvent into a Kafka message keyed by
// country and year, so events for one report land on one partition.
func serializeToMessage(event ReportEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize report event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.Country + "|" + strconv.Itoa(event.Year)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "metric", Value: []byte(event.Metric)},
			{Key: "generated_at", Value: []byte(event.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
