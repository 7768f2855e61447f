package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/swipefolio/stockpipe/internal/models"
)

// UpsertMetrics overwrites a stock's derived metrics row in place. The row is
// keyed by company_id, so every run fully replaces the previous values.
func (db *DB) UpsertMetrics(m *models.StockMetrics) error {
	query := `
		INSERT INTO stock_metrics (company_id, ytd_return, current_price, first_price, computed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (company_id) DO UPDATE SET
			ytd_return = EXCLUDED.ytd_return,
			current_price = EXCLUDED.current_price,
			first_price = EXCLUDED.first_price,
			computed_at = EXCLUDED.computed_at
	`
	_, err := db.conn.Exec(query, m.CompanyID, m.YTDReturn, m.CurrentPrice, m.FirstPrice, m.ComputedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert metrics for company %d: %w", m.CompanyID, err)
	}
	return nil
}

// GetMetrics retrieves the metrics row for a company, or an error when the
// stock has never had metrics computed
func (db *DB) GetMetrics(companyID int64) (*models.StockMetrics, error) {
	query := `
		SELECT m.company_id, s.ticker, m.ytd_return, m.current_price, m.first_price, m.computed_at
		FROM stock_metrics m
		JOIN stocks s ON s.id = m.company_id
		WHERE m.company_id = $1
	`
	var m models.StockMetrics
	err := db.conn.QueryRow(query, companyID).Scan(
		&m.CompanyID, &m.Ticker, &m.YTDReturn, &m.CurrentPrice, &m.FirstPrice, &m.ComputedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("metrics not found for company %d", companyID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics: %w", err)
	}
	return &m, nil
}

// LeaderboardRow is one metrics row joined with its ticker and the number of
// price points backing it within the window
type LeaderboardRow struct {
	Metrics    models.StockMetrics
	DataPoints int
}

// GetLeaderboardRows retrieves every metrics row together with the count of
// price points since the window start, ordered by ticker for determinism
func (db *DB) GetLeaderboardRows(since time.Time) ([]*LeaderboardRow, error) {
	query := `
		SELECT m.company_id, s.ticker, m.ytd_return, m.current_price, m.first_price, m.computed_at,
		       (SELECT COUNT(*) FROM stock_prices p WHERE p.company_id = m.company_id AND p.date >= $1)
		FROM stock_metrics m
		JOIN stocks s ON s.id = m.company_id
		ORDER BY s.ticker ASC
	`
	rows, err := db.conn.Query(query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard rows: %w", err)
	}
	defer rows.Close()

	var out []*LeaderboardRow
	for rows.Next() {
		var r LeaderboardRow
		err := rows.Scan(
			&r.Metrics.CompanyID, &r.Metrics.Ticker, &r.Metrics.YTDReturn,
			&r.Metrics.CurrentPrice, &r.Metrics.FirstPrice, &r.Metrics.ComputedAt,
			&r.DataPoints,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}
