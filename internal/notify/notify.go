// Package notify publishes a dataset-refresh event after a prepare run, so
// downstream consumers know a new processed workbook exists. Publishing is
// fire-and-forget; the pipeline does not depend on anyone listening.
package notify

import (
	"context"
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/segmentio/kafka-go"

	"resourcemap/internal/config"
	"resourcemap/internal/logger"
)

// Event is the message published when a prepare run completes.
type Event struct {
	Object      string    `json:"object"`
	RowsUpdated int       `json:"rows_updated"`
	CompletedAt time.Time `json:"completed_at"`
}

// Publisher writes refresh events to a Kafka topic.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher builds a Publisher for the configured broker and topic.
func NewPublisher(cfg config.NotifyConfig) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(cfg.Broker),
			Topic:    cfg.Topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// DatasetUpdated publishes one refresh event for the processed workbook.
func (p *Publisher) DatasetUpdated(ctx context.Context, path string, updated int) error {
	event := Event{
		Object:      filepath.Base(path),
		RowsUpdated: updated,
		CompletedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Object),
		Value: payload,
	}); err != nil {
		return err
	}
	logger.Get("notify").Infof("published refresh event for %s", event.Object)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
