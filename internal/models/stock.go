package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock represents one tracked company in the discovery deck. Rows are owned
// by the seeding/setup process; the pipeline only reads them and fills in the
// chart URL.
type Stock struct {
	ID          int64     `json:"id"`
	Ticker      string    `json:"ticker"`
	Name        string    `json:"name"`
	Sector      string    `json:"sector,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	Description string    `json:"description,omitempty"`
	LogoURL     string    `json:"logo_url,omitempty"`
	ChartURL    string    `json:"chart_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// StockMetrics holds the derived YTD performance figures for one stock.
// There is exactly one row per stock and it is overwritten wholesale on every
// metrics run; a stock with no price history has no row at all.
type StockMetrics struct {
	CompanyID    int64           `json:"company_id"`
	Ticker       string          `json:"ticker,omitempty"`
	YTDReturn    decimal.Decimal `json:"ytd_return"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	FirstPrice   decimal.Decimal `json:"first_price"`
	ComputedAt   time.Time       `json:"computed_at"`
}
