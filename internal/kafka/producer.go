// Package kafka publishes pipeline events for the app backend.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/swipefolio/stockpipe/internal/models"
)

// Producer handles publishing pipeline events to Kafka
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishPricesSynced publishes an event after a symbol's prices are synced
func (p *Producer) PublishPricesSynced(ctx context.Context, ticker string, rowsWritten int) error {
	event := models.PipelineEvent{
		EventType:   models.EventPricesSynced,
		Ticker:      ticker,
		RowsWritten: rowsWritten,
		Timestamp:   time.Now(),
	}
	return p.publish(ctx, ticker, event)
}

// PublishMetricsUpdated publishes an event after a symbol's metrics row is
// recomputed
func (p *Producer) PublishMetricsUpdated(ctx context.Context, ticker string, ytdReturn decimal.Decimal) error {
	event := models.PipelineEvent{
		EventType: models.EventMetricsUpdated,
		Ticker:    ticker,
		YTDReturn: ytdReturn,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, ticker, event)
}

func (p *Producer) publish(ctx context.Context, key string, event models.PipelineEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
