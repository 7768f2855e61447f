package database

import (
	"fmt"
	"time"

	"github.com/swipefolio/stockpipe/internal/models"
)

// GetPriceDates returns the set of trading dates (as YYYY-MM-DD keys) already
// stored for a company within the window. The sync engine uses it to filter
// out rows that are already present before upserting.
func (db *DB) GetPriceDates(companyID int64, start, end time.Time) (map[string]bool, error) {
	query := `
		SELECT date
		FROM stock_prices
		WHERE company_id = $1 AND date >= $2 AND date <= $3
	`
	rows, err := db.conn.Query(query, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get price dates: %w", err)
	}
	defer rows.Close()

	dates := make(map[string]bool)
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan price date: %w", err)
		}
		dates[d.Format("2006-01-02")] = true
	}
	return dates, rows.Err()
}

// UpsertPriceBatch writes price points in a single transaction. On conflict
// on (company_id, date) the close price is overwritten, so re-running a sync
// never raises a duplicate-key error and late corrections from upstream win.
// Returns the number of rows written.
func (db *DB) UpsertPriceBatch(prices []*models.PricePoint) (int, error) {
	if len(prices) == 0 {
		return 0, nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO stock_prices (company_id, date, close_price, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (company_id, date) DO UPDATE SET
			close_price = EXCLUDED.close_price
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, p := range prices {
		if _, err := stmt.Exec(p.CompanyID, p.Date, p.ClosePrice, now); err != nil {
			return 0, fmt.Errorf("failed to upsert price for company %d on %s: %w",
				p.CompanyID, p.DateKey(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(prices), nil
}

// GetPriceSeries retrieves a company's close prices within the window,
// ordered by date ascending
func (db *DB) GetPriceSeries(companyID int64, start, end time.Time) ([]*models.PricePoint, error) {
	query := `
		SELECT id, company_id, date, close_price, created_at
		FROM stock_prices
		WHERE company_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`
	rows, err := db.conn.Query(query, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get price series: %w", err)
	}
	defer rows.Close()

	var prices []*models.PricePoint
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Date, &p.ClosePrice, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}
		prices = append(prices, &p)
	}
	return prices, rows.Err()
}

// CountPricePoints returns the number of stored price points for a company
// within the window
func (db *DB) CountPricePoints(companyID int64, start, end time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM stock_prices
		WHERE company_id = $1 AND date >= $2 AND date <= $3
	`
	var count int
	if err := db.conn.QueryRow(query, companyID, start, end).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count price points: %w", err)
	}
	return count, nil
}
