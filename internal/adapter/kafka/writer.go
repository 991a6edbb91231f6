// Package kafka publishes standardized events to a sink topic for downstream
// consumers. The sink is optional; the batch pipeline works without it.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/tindershed/wildfire-data-etl/internal/domain"
)

// Writer produces standardized-event messages to a Kafka topic.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a producer for the sink topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishEvents serializes and publishes a standardized batch in a single
// WriteMessages call for efficiency.
func (w *Writer) PublishEvents(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msg, err := serializeToMessage(events[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish standardized events: %w", err)
	}
	w.logger.Info("standardized events published", "topic", w.writer.Topic, "events", len(events))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an Event into a Kafka message keyed by its
// incident identifier, with routing headers for state and start date.
func serializeToMessage(event domain.Event) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize event: %w", err)
	}

	headers := []kafkago.Header{
		{Key: "published_at", Value: []byte(domain.Now().Format(time.RFC3339))},
	}
	if event.State != nil {
		headers = append(headers, kafkago.Header{Key: "state", Value: []byte(*event.State)})
	}
	if event.StartDate != nil {
		headers = append(headers, kafkago.Header{Key: "start_date", Value: []byte(event.StartDate.Format(domain.TimestampLayout))})
	}

	return kafkago.Message{
		Key:     []byte(event.ID),
		Value:   data,
		Headers: headers,
	}, nil
}
