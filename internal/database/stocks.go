package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/swipefolio/stockpipe/internal/models"
)

// GetAllStocks retrieves every tracked stock ordered by ticker
func (db *DB) GetAllStocks() ([]*models.Stock, error) {
	query := `
		SELECT id, ticker, name, sector, industry, description, logo_url, chart_url, created_at
		FROM stocks
		ORDER BY ticker ASC
	`
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get stocks: %w", err)
	}
	defer rows.Close()

	var stocks []*models.Stock
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock: %w", err)
		}
		stocks = append(stocks, s)
	}
	return stocks, rows.Err()
}

// GetStockByTicker retrieves a single stock by its ticker symbol
func (db *DB) GetStockByTicker(ticker string) (*models.Stock, error) {
	query := `
		SELECT id, ticker, name, sector, industry, description, logo_url, chart_url, created_at
		FROM stocks
		WHERE ticker = $1
	`
	row := db.conn.QueryRow(query, ticker)
	s, err := scanStock(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("stock not found: %s", ticker)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stock: %w", err)
	}
	return s, nil
}

// UpsertStock inserts a stock or updates its descriptive fields when the
// ticker already exists. Identity (id, ticker) is never changed.
func (db *DB) UpsertStock(s *models.Stock) error {
	query := `
		INSERT INTO stocks (ticker, name, sector, industry, description, logo_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (ticker) DO UPDATE SET
			name = EXCLUDED.name,
			sector = EXCLUDED.sector,
			industry = EXCLUDED.industry,
			description = EXCLUDED.description,
			logo_url = EXCLUDED.logo_url
		RETURNING id
	`
	err := db.conn.QueryRow(query,
		s.Ticker, s.Name, nullString(s.Sector), nullString(s.Industry),
		nullString(s.Description), nullString(s.LogoURL), time.Now(),
	).Scan(&s.ID)

	if err != nil {
		return fmt.Errorf("failed to upsert stock %s: %w", s.Ticker, err)
	}
	return nil
}

// UpdateChartURL stores the published chart URL for a stock
func (db *DB) UpdateChartURL(companyID int64, chartURL string) error {
	query := `UPDATE stocks SET chart_url = $1 WHERE id = $2`
	result, err := db.conn.Exec(query, chartURL, companyID)
	if err != nil {
		return fmt.Errorf("failed to update chart url: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("stock not found: %d", companyID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStock(r rowScanner) (*models.Stock, error) {
	var s models.Stock
	var sector, industry, description, logoURL, chartURL sql.NullString

	err := r.Scan(&s.ID, &s.Ticker, &s.Name, &sector, &industry, &description, &logoURL, &chartURL, &s.CreatedAt)
	if err != nil {
		return nil, err
	}

	s.Sector = sector.String
	s.Industry = industry.String
	s.Description = description.String
	s.LogoURL = logoURL.String
	s.ChartURL = chartURL.String
	return &s, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
