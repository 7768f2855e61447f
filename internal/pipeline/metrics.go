package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/swipefolio/stockpipe/internal/models"
)

// ThinDataThreshold is the number of price points below which a computed
// result is flagged low-confidence. The ranking reporter excludes such
// symbols from top/bottom lists.
const ThinDataThreshold = 5

var (
	// ErrNoData means the symbol has zero stored price points. This is an
	// explicit outcome distinct from a 0.00% return.
	ErrNoData = errors.New("no price data")

	// ErrInvalidPrice means the series starts with a non-positive price.
	// Prices are always positive, so this is a data error, not a math one.
	ErrInvalidPrice = errors.New("invalid first price")
)

var hundred = decimal.NewFromInt(100)

// MetricsStore reads price series and writes per-symbol summary rows.
type MetricsStore interface {
	GetPriceSeries(companyID int64, start, end time.Time) ([]*models.PricePoint, error)
	UpsertMetrics(m *models.StockMetrics) error
}

// Computation is the point-in-time result for one symbol.
type Computation struct {
	FirstPrice   decimal.Decimal
	CurrentPrice decimal.Decimal
	YTDReturn    decimal.Decimal
	FirstDate    time.Time
	LastDate     time.Time
	DataPoints   int
	ThinData     bool
}

// Compute derives YTD metrics from a price series ordered by date ascending:
// first and most recent close in the window, and the percentage change
// between them rounded to 2 decimal places.
func Compute(series []*models.PricePoint) (*Computation, error) {
	if len(series) == 0 {
		return nil, ErrNoData
	}

	first := series[0]
	last := series[len(series)-1]

	if !first.ClosePrice.IsPositive() {
		return nil, fmt.Errorf("%w: %s on %s", ErrInvalidPrice, first.ClosePrice, first.DateKey())
	}

	ytd := last.ClosePrice.Sub(first.ClosePrice).
		Div(first.ClosePrice).
		Mul(hundred).
		Round(2)

	return &Computation{
		FirstPrice:   first.ClosePrice,
		CurrentPrice: last.ClosePrice,
		YTDReturn:    ytd,
		FirstDate:    first.Date,
		LastDate:     last.Date,
		DataPoints:   len(series),
		ThinData:     len(series) < ThinDataThreshold,
	}, nil
}

// ComputedEntry pairs a symbol with its freshly computed metrics, feeding the
// ranking reporter without a second store read.
type ComputedEntry struct {
	CompanyID    int64
	Ticker       string
	YTDReturn    decimal.Decimal
	CurrentPrice decimal.Decimal
	DataPoints   int
}

// MetricsReport summarises a metrics run.
type MetricsReport struct {
	Processed int
	Updated   int
	Skipped   int
	Failed    int
	Entries   []ComputedEntry
}

// TotalFailure reports whether every processed symbol failed.
func (r *MetricsReport) TotalFailure() bool {
	return r.Processed > 0 && r.Failed == r.Processed
}

// Calculator recomputes SymbolMetrics rows from stored price history.
type Calculator struct {
	symbols SymbolStore
	store   MetricsStore
	logger  *slog.Logger
}

// NewCalculator creates a metrics calculator.
func NewCalculator(symbols SymbolStore, store MetricsStore, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{symbols: symbols, store: store, logger: logger}
}

// Run recomputes metrics for every tracked symbol. Each symbol's row is
// replaced wholesale; symbols with no price points are skipped and keep no
// metrics row. Failures are symbol-scoped.
func (c *Calculator) Run(window Window) (*MetricsReport, error) {
	stocks, err := c.symbols.GetAllStocks()
	if err != nil {
		return nil, fmt.Errorf("failed to read symbol registry: %w", err)
	}
	if len(stocks) == 0 {
		return nil, ErrEmptyRegistry
	}

	report := &MetricsReport{Processed: len(stocks)}
	computedAt := time.Now().UTC()

	for _, stock := range stocks {
		series, err := c.store.GetPriceSeries(stock.ID, window.Start, window.End)
		if err != nil {
			c.logger.Error("failed to read price series", "ticker", stock.Ticker, "error", err)
			report.Failed++
			continue
		}

		comp, err := Compute(series)
		if errors.Is(err, ErrNoData) {
			c.logger.Warn("no price data, skipping", "ticker", stock.Ticker)
			report.Skipped++
			continue
		}
		if err != nil {
			c.logger.Error("metrics computation failed", "ticker", stock.Ticker, "error", err)
			report.Failed++
			continue
		}

		m := &models.StockMetrics{
			CompanyID:    stock.ID,
			Ticker:       stock.Ticker,
			YTDReturn:    comp.YTDReturn,
			CurrentPrice: comp.CurrentPrice,
			FirstPrice:   comp.FirstPrice,
			ComputedAt:   computedAt,
		}
		if err := c.store.UpsertMetrics(m); err != nil {
			c.logger.Error("failed to write metrics", "ticker", stock.Ticker, "error", err)
			report.Failed++
			continue
		}

		report.Updated++
		report.Entries = append(report.Entries, ComputedEntry{
			CompanyID:    stock.ID,
			Ticker:       stock.Ticker,
			YTDReturn:    comp.YTDReturn,
			CurrentPrice: comp.CurrentPrice,
			DataPoints:   comp.DataPoints,
		})

		c.logger.Info("updated metrics",
			"ticker", stock.Ticker,
			"ytd_return", comp.YTDReturn.String(),
			"current_price", comp.CurrentPrice.String(),
			"first_date", comp.FirstDate.Format("2006-01-02"),
			"last_date", comp.LastDate.Format("2006-01-02"),
			"thin_data", comp.ThinData,
		)
	}

	return report, nil
}
