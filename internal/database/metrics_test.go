package database

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swipefolio/stockpipe/internal/models"
)

func TestMetricsRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("UpsertMetrics creates and retrieves", func(t *testing.T) {
		testDB.TruncateAll(t)
		id := seedStock(t, testDB, "RY")

		m := &models.StockMetrics{
			CompanyID:    id,
			YTDReturn:    decimal.RequireFromString("12.34"),
			CurrentPrice: decimal.NewFromFloat(170.50),
			FirstPrice:   decimal.NewFromFloat(151.78),
			ComputedAt:   time.Now().UTC(),
		}
		require.NoError(t, testDB.UpsertMetrics(m))

		retrieved, err := testDB.GetMetrics(id)
		require.NoError(t, err)
		assert.Equal(t, "RY", retrieved.Ticker)
		assert.Equal(t, "12.34", retrieved.YTDReturn.StringFixed(2))
	})

	t.Run("UpsertMetrics replaces the row on conflict", func(t *testing.T) {
		testDB.TruncateAll(t)
		id := seedStock(t, testDB, "TD")

		first := &models.StockMetrics{
			CompanyID:    id,
			YTDReturn:    decimal.RequireFromString("5.00"),
			CurrentPrice: decimal.NewFromFloat(80.00),
			FirstPrice:   decimal.NewFromFloat(76.19),
			ComputedAt:   time.Now().UTC(),
		}
		require.NoError(t, testDB.UpsertMetrics(first))

		second := &models.StockMetrics{
			CompanyID:    id,
			YTDReturn:    decimal.RequireFromString("-2.50"),
			CurrentPrice: decimal.NewFromFloat(74.29),
			FirstPrice:   decimal.NewFromFloat(76.19),
			ComputedAt:   time.Now().UTC(),
		}
		require.NoError(t, testDB.UpsertMetrics(second))

		retrieved, err := testDB.GetMetrics(id)
		require.NoError(t, err)
		assert.Equal(t, "-2.50", retrieved.YTDReturn.StringFixed(2))
	})

	t.Run("GetMetrics returns error when never computed", func(t *testing.T) {
		testDB.TruncateAll(t)
		id := seedStock(t, testDB, "BNS")

		_, err := testDB.GetMetrics(id)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "metrics not found")
	})

	t.Run("GetLeaderboardRows joins tickers and counts points", func(t *testing.T) {
		testDB.TruncateAll(t)
		ryID := seedStock(t, testDB, "RY")
		tdID := seedStock(t, testDB, "TD")

		since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

		var prices []*models.PricePoint
		for i := 0; i < 4; i++ {
			prices = append(prices, &models.PricePoint{
				CompanyID:  ryID,
				Date:       since.AddDate(0, 0, i+1),
				ClosePrice: decimal.NewFromFloat(170.00 + float64(i)),
			})
		}
		prices = append(prices, &models.PricePoint{
			CompanyID:  tdID,
			Date:       since.AddDate(0, 0, 1),
			ClosePrice: decimal.NewFromFloat(80.00),
		})
		_, err := testDB.UpsertPriceBatch(prices)
		require.NoError(t, err)

		for id, ytd := range map[int64]string{ryID: "10.00", tdID: "1.00"} {
			require.NoError(t, testDB.UpsertMetrics(&models.StockMetrics{
				CompanyID:    id,
				YTDReturn:    decimal.RequireFromString(ytd),
				CurrentPrice: decimal.NewFromFloat(100.00),
				FirstPrice:   decimal.NewFromFloat(90.00),
				ComputedAt:   time.Now().UTC(),
			}))
		}

		rows, err := testDB.GetLeaderboardRows(since)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		// Ordered by ticker
		assert.Equal(t, "RY", rows[0].Metrics.Ticker)
		assert.Equal(t, 4, rows[0].DataPoints)
		assert.Equal(t, "TD", rows[1].Metrics.Ticker)
		assert.Equal(t, 1, rows[1].DataPoints)
	})
}
