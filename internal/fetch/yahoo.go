// Package fetch retrieves daily close-price series from Yahoo Finance.
package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"
)

// Bar is a single daily close observation.
type Bar struct {
	Date  time.Time
	Close decimal.Decimal
}

// YahooFetcher fetches daily price history from Yahoo Finance. Tickers are
// stored in DB form (e.g. "BIP.UN") and converted to Yahoo's TSX convention
// ("BIP-UN.TO") on the way out.
type YahooFetcher struct {
	timeout time.Duration
	suffix  string
}

// NewYahooFetcher creates a fetcher with a per-call timeout.
func NewYahooFetcher(timeout time.Duration) *YahooFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &YahooFetcher{timeout: timeout, suffix: ".TO"}
}

// YahooSymbol converts a DB ticker into Yahoo's symbol format. Class and
// unit suffixes use "-" on Yahoo ("CTC.A" -> "CTC-A.TO", "BIP.UN" ->
// "BIP-UN.TO").
func (f *YahooFetcher) YahooSymbol(ticker string) string {
	return strings.Replace(ticker, ".", "-", 1) + f.suffix
}

// FetchDaily retrieves the full daily close series for [start, end]. It
// returns ErrNotFound when Yahoo has no rows for the symbol, and honors the
// context plus the configured timeout. Non-positive closes are dropped at the
// boundary so invalid data never reaches the store.
func (f *YahooFetcher) FetchDaily(ctx context.Context, ticker string, start, end time.Time) ([]Bar, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	symbol := f.YahooSymbol(ticker)

	type result struct {
		bars []Bar
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		bars, err := fetchBars(symbol, start, end)
		ch <- result{bars, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch %s: %w", symbol, Classify(ctx.Err()))
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("fetch %s: %w", symbol, Classify(r.err))
		}
		if len(r.bars) == 0 {
			return nil, fmt.Errorf("fetch %s: %w", symbol, ErrNotFound)
		}
		return r.bars, nil
	}
}

func fetchBars(symbol string, start, end time.Time) ([]Bar, error) {
	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	iter := chart.Get(params)

	var bars []Bar
	for iter.Next() {
		b := iter.Bar()
		if b == nil || !b.Close.IsPositive() {
			continue
		}
		ts := time.Unix(int64(b.Timestamp), 0).UTC()
		bars = append(bars, Bar{
			Date:  time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC),
			Close: b.Close,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return bars, nil
}
