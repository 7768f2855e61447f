package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LeaderboardEntry is one ranked row in the YTD performance leaderboard.
type LeaderboardEntry struct {
	Rank         int             `json:"rank"`
	CompanyID    int64           `json:"company_id"`
	Ticker       string          `json:"ticker"`
	YTDReturn    decimal.Decimal `json:"ytd_return"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	DataPoints   int             `json:"data_points"`
}

// Leaderboard is the ephemeral ranked view produced from a metrics snapshot.
// It is never persisted to the database, only cached.
type Leaderboard struct {
	Top           []LeaderboardEntry `json:"top"`
	Bottom        []LeaderboardEntry `json:"bottom"`
	AverageReturn decimal.Decimal    `json:"average_return"`
	Included      int                `json:"included"`
	Excluded      int                `json:"excluded"`
	GeneratedAt   time.Time          `json:"generated_at"`
}
