package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/swipefolio/stockpipe/internal/fetch"
	"github.com/swipefolio/stockpipe/internal/models"
)

// ErrEmptyRegistry is returned when there are no tracked stocks at all. It is
// the only whole-run fatal condition; everything else is symbol-scoped.
var ErrEmptyRegistry = errors.New("no stocks in registry")

// SymbolStore reads the tracked symbol registry.
type SymbolStore interface {
	GetAllStocks() ([]*models.Stock, error)
}

// PriceStore reads and writes the daily close-price time series.
type PriceStore interface {
	GetPriceDates(companyID int64, start, end time.Time) (map[string]bool, error)
	UpsertPriceBatch(prices []*models.PricePoint) (int, error)
}

// Fetcher retrieves a symbol's daily close series from the market-data
// source.
type Fetcher interface {
	FetchDaily(ctx context.Context, ticker string, start, end time.Time) ([]fetch.Bar, error)
}

// SymbolOutcome records what happened to one symbol during a sync run.
type SymbolOutcome struct {
	CompanyID   int64
	Ticker      string
	RowsWritten int
	Fetched     int
	NoData      bool
	Err         error
}

// SyncReport summarises a whole sync run.
type SyncReport struct {
	Attempted   int
	Succeeded   int
	NoData      int
	Failed      int
	RowsWritten int
	Results     []SymbolOutcome
	Started     time.Time
	Finished    time.Time
}

// TotalFailure reports whether every attempted symbol failed outright, the
// condition under which the CLI exits non-zero.
func (r *SyncReport) TotalFailure() bool {
	return r.Attempted > 0 && r.Failed == r.Attempted
}

// EngineOptions tunes the sync engine.
type EngineOptions struct {
	RequestDelay time.Duration // spacing between upstream fetches
	Concurrency  int           // bounded fan-out across symbols; <=1 is sequential
	MaxRunTime   time.Duration // optional cap on the whole run; 0 disables
	BatchSize    int           // rows per upsert transaction
	Logger       *slog.Logger
}

// Engine brings the price store up to date for every tracked symbol. Symbols
// are fully independent: a fetch or store failure for one never aborts the
// others, and the (company_id, date) upsert key makes re-runs idempotent.
type Engine struct {
	symbols SymbolStore
	prices  PriceStore
	fetcher Fetcher
	limiter *RateLimiter
	opts    EngineOptions
	logger  *slog.Logger
}

// NewEngine creates a sync engine.
func NewEngine(symbols SymbolStore, prices PriceStore, fetcher Fetcher, opts EngineOptions) *Engine {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		symbols: symbols,
		prices:  prices,
		fetcher: fetcher,
		limiter: NewRateLimiter(opts.RequestDelay),
		opts:    opts,
		logger:  logger,
	}
}

// Run syncs every symbol in the registry for the given window and returns the
// per-symbol and aggregate results. Only an empty registry is an error.
func (e *Engine) Run(ctx context.Context, window Window) (*SyncReport, error) {
	if e.opts.MaxRunTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.MaxRunTime)
		defer cancel()
	}

	stocks, err := e.symbols.GetAllStocks()
	if err != nil {
		return nil, fmt.Errorf("failed to read symbol registry: %w", err)
	}
	if len(stocks) == 0 {
		return nil, ErrEmptyRegistry
	}

	report := &SyncReport{
		Attempted: len(stocks),
		Results:   make([]SymbolOutcome, len(stocks)),
		Started:   time.Now(),
	}

	e.logger.Info("starting price sync",
		"symbols", len(stocks),
		"start", window.Start.Format("2006-01-02"),
		"end", window.End.Format("2006-01-02"),
	)

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(e.opts.Concurrency)

	for i, stock := range stocks {
		i, stock := i, stock
		g.Go(func() error {
			outcome := e.syncSymbol(ctx, stock, window)

			mu.Lock()
			report.Results[i] = outcome
			switch {
			case outcome.Err != nil:
				report.Failed++
			case outcome.NoData:
				report.NoData++
			default:
				report.Succeeded++
				report.RowsWritten += outcome.RowsWritten
			}
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	report.Finished = time.Now()
	e.logger.Info("price sync finished",
		"succeeded", report.Succeeded,
		"no_data", report.NoData,
		"failed", report.Failed,
		"rows_written", report.RowsWritten,
		"elapsed", report.Finished.Sub(report.Started).String(),
	)
	return report, nil
}

func (e *Engine) syncSymbol(ctx context.Context, stock *models.Stock, window Window) SymbolOutcome {
	outcome := SymbolOutcome{CompanyID: stock.ID, Ticker: stock.Ticker}

	if err := e.limiter.Wait(ctx); err != nil {
		outcome.Err = fmt.Errorf("sync cancelled: %w", err)
		return outcome
	}

	bars, err := e.fetchWithRetry(ctx, stock.Ticker, window)
	if err != nil {
		if errors.Is(err, fetch.ErrNotFound) {
			e.logger.Warn("no upstream data for symbol", "ticker", stock.Ticker)
			outcome.NoData = true
			return outcome
		}
		e.logger.Error("fetch failed", "ticker", stock.Ticker, "error", err)
		outcome.Err = err
		return outcome
	}
	outcome.Fetched = len(bars)

	// The upstream source only serves contiguous ranges, so the full window
	// is always requested and already-stored dates are filtered out here.
	existing, err := e.prices.GetPriceDates(stock.ID, window.Start, window.End)
	if err != nil {
		e.logger.Error("failed to read stored dates", "ticker", stock.Ticker, "error", err)
		outcome.Err = err
		return outcome
	}

	var fresh []*models.PricePoint
	for _, bar := range bars {
		if existing[bar.Date.Format("2006-01-02")] {
			continue
		}
		fresh = append(fresh, &models.PricePoint{
			CompanyID:  stock.ID,
			Date:       bar.Date,
			ClosePrice: bar.Close,
		})
	}

	for start := 0; start < len(fresh); start += e.opts.BatchSize {
		end := min(start+e.opts.BatchSize, len(fresh))
		written, err := e.prices.UpsertPriceBatch(fresh[start:end])
		if err != nil {
			e.logger.Error("failed to upsert prices", "ticker", stock.Ticker, "error", err)
			outcome.Err = err
			return outcome
		}
		outcome.RowsWritten += written
	}

	e.logger.Info("synced symbol",
		"ticker", stock.Ticker,
		"fetched", outcome.Fetched,
		"written", outcome.RowsWritten,
		"skipped_existing", outcome.Fetched-outcome.RowsWritten,
	)
	return outcome
}

// fetchWithRetry issues the upstream request with a single bounded retry on
// throttling or transient network failures. NotFound is permanent: the
// missing-ticker case (unresolvable suffixes) never resolves by retrying.
func (e *Engine) fetchWithRetry(ctx context.Context, ticker string, window Window) ([]fetch.Bar, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second

	var bars []fetch.Bar
	op := func() error {
		var err error
		bars, err = e.fetcher.FetchDaily(ctx, ticker, window.Start, window.End)
		if err != nil && !fetch.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		e.logger.Warn("fetch failed, retrying once",
			"ticker", ticker, "wait", wait.String(), "error", err)
	}

	err := backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(bo, 1), ctx), notify)
	if err != nil {
		return nil, err
	}
	return bars, nil
}
