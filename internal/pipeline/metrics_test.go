package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swipefolio/stockpipe/internal/models"
)

func pricePoint(companyID int64, date string, close float64) *models.PricePoint {
	d, _ := time.Parse("2006-01-02", date)
	return &models.PricePoint{CompanyID: companyID, Date: d, ClosePrice: decimal.NewFromFloat(close)}
}

func TestCompute(t *testing.T) {
	series := []*models.PricePoint{
		pricePoint(1, "2025-01-02", 100.00),
		pricePoint(1, "2025-01-03", 104.50),
		pricePoint(1, "2025-01-06", 98.25),
		pricePoint(1, "2025-01-07", 102.00),
		pricePoint(1, "2025-01-08", 112.34),
	}

	comp, err := Compute(series)
	require.NoError(t, err)

	assert.Equal(t, "12.34", comp.YTDReturn.StringFixed(2))
	assert.True(t, comp.FirstPrice.Equal(decimal.NewFromFloat(100.00)))
	assert.True(t, comp.CurrentPrice.Equal(decimal.NewFromFloat(112.34)))
	assert.Equal(t, 5, comp.DataPoints)
	assert.False(t, comp.ThinData)
	assert.Equal(t, "2025-01-02", comp.FirstDate.Format("2006-01-02"))
	assert.Equal(t, "2025-01-08", comp.LastDate.Format("2006-01-02"))
}

func TestComputeNegativeReturn(t *testing.T) {
	series := []*models.PricePoint{
		pricePoint(1, "2025-01-02", 80.00),
		pricePoint(1, "2025-01-03", 75.00),
		pricePoint(1, "2025-01-06", 60.40),
	}

	comp, err := Compute(series)
	require.NoError(t, err)
	assert.Equal(t, "-24.50", comp.YTDReturn.StringFixed(2))
}

func TestComputeRounding(t *testing.T) {
	// (101/3 - 100/3) / (100/3) = exactly 1%, but the division chain has to
	// land on 1.00 after rounding to 2 decimal places.
	series := []*models.PricePoint{
		{CompanyID: 1, Date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), ClosePrice: decimal.RequireFromString("33.3333")},
		{CompanyID: 1, Date: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), ClosePrice: decimal.RequireFromString("33.6666")},
	}

	comp, err := Compute(series)
	require.NoError(t, err)
	assert.Equal(t, "1.00", comp.YTDReturn.StringFixed(2))
}

func TestComputeEmptySeries(t *testing.T) {
	_, err := Compute(nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestComputeInvalidFirstPrice(t *testing.T) {
	series := []*models.PricePoint{
		pricePoint(1, "2025-01-02", 0),
		pricePoint(1, "2025-01-03", 50.00),
	}

	_, err := Compute(series)
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestComputeSinglePointIsThin(t *testing.T) {
	series := []*models.PricePoint{pricePoint(1, "2025-01-02", 100.00)}

	comp, err := Compute(series)
	require.NoError(t, err)
	assert.Equal(t, "0.00", comp.YTDReturn.StringFixed(2))
	assert.True(t, comp.ThinData)
}

type fakeMetricsStore struct {
	series  map[int64][]*models.PricePoint
	metrics map[int64]*models.StockMetrics
	readErr map[int64]error
}

func newFakeMetricsStore() *fakeMetricsStore {
	return &fakeMetricsStore{
		series:  make(map[int64][]*models.PricePoint),
		metrics: make(map[int64]*models.StockMetrics),
		readErr: make(map[int64]error),
	}
}

func (s *fakeMetricsStore) GetPriceSeries(companyID int64, start, end time.Time) ([]*models.PricePoint, error) {
	if err := s.readErr[companyID]; err != nil {
		return nil, err
	}
	return s.series[companyID], nil
}

func (s *fakeMetricsStore) UpsertMetrics(m *models.StockMetrics) error {
	s.metrics[m.CompanyID] = m
	return nil
}

func TestCalculatorRun(t *testing.T) {
	window, _ := ResolveWindow("2025-01-01", time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC))

	symbols := &fakeSymbolStore{stocks: []*models.Stock{
		{ID: 1, Ticker: "RY"},
		{ID: 2, Ticker: "SHOP"},
		{ID: 3, Ticker: "WN"}, // no price data
	}}

	store := newFakeMetricsStore()
	store.series[1] = []*models.PricePoint{
		pricePoint(1, "2025-01-02", 100.00),
		pricePoint(1, "2025-01-03", 110.00),
	}
	store.series[2] = []*models.PricePoint{
		pricePoint(2, "2025-01-02", 50.00),
		pricePoint(2, "2025-01-03", 45.00),
	}

	calc := NewCalculator(symbols, store, testLogger())
	report, err := calc.Run(window)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 2, report.Updated)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	assert.Len(t, report.Entries, 2)
	assert.False(t, report.TotalFailure())

	require.Contains(t, store.metrics, int64(1))
	assert.Equal(t, "10.00", store.metrics[1].YTDReturn.StringFixed(2))
	assert.Equal(t, "-10.00", store.metrics[2].YTDReturn.StringFixed(2))

	// Skipped symbols keep no metrics row.
	assert.NotContains(t, store.metrics, int64(3))
}

func TestCalculatorRunFailureIsIsolated(t *testing.T) {
	window, _ := ResolveWindow("2025-01-01", time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC))

	symbols := &fakeSymbolStore{stocks: []*models.Stock{
		{ID: 1, Ticker: "RY"},
		{ID: 2, Ticker: "SHOP"},
	}}

	store := newFakeMetricsStore()
	store.readErr[1] = errors.New("connection reset")
	store.series[2] = []*models.PricePoint{
		pricePoint(2, "2025-01-02", 50.00),
		pricePoint(2, "2025-01-03", 55.00),
	}

	calc := NewCalculator(symbols, store, testLogger())
	report, err := calc.Run(window)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Updated)
	assert.False(t, report.TotalFailure())
}

func TestCalculatorRunEmptyRegistry(t *testing.T) {
	window, _ := ResolveWindow("2025-01-01", time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC))

	calc := NewCalculator(&fakeSymbolStore{}, newFakeMetricsStore(), testLogger())
	_, err := calc.Run(window)
	assert.ErrorIs(t, err, ErrEmptyRegistry)
}
