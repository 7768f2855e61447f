package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint represents one daily closing price for a company. The natural
// key is (company_id, date); the store enforces it with a unique constraint
// and upserts resolve conflicts by overwriting the close price.
type PricePoint struct {
	ID         int64           `json:"id"`
	CompanyID  int64           `json:"company_id"`
	Date       time.Time       `json:"date"`
	ClosePrice decimal.Decimal `json:"close_price"`
	CreatedAt  time.Time       `json:"created_at"`
}

// DateKey returns the canonical YYYY-MM-DD key used to match stored trading
// dates against freshly fetched ones.
func (p *PricePoint) DateKey() string {
	return p.Date.Format("2006-01-02")
}
