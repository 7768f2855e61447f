package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pipeline event types published to Kafka for the app backend.
const (
	EventPricesSynced   = "PRICES_SYNCED"
	EventMetricsUpdated = "METRICS_UPDATED"
)

// PipelineEvent represents a Kafka event emitted by a pipeline stage.
type PipelineEvent struct {
	EventType   string          `json:"event_type"`
	Ticker      string          `json:"ticker"`
	RowsWritten int             `json:"rows_written,omitempty"`
	YTDReturn   decimal.Decimal `json:"ytd_return,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
}
