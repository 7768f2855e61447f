package pipeline

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swipefolio/stockpipe/internal/models"
)

func entry(id int64, ticker string, ytd string, points int) ComputedEntry {
	return ComputedEntry{
		CompanyID:    id,
		Ticker:       ticker,
		YTDReturn:    decimal.RequireFromString(ytd),
		CurrentPrice: decimal.NewFromInt(100),
		DataPoints:   points,
	}
}

func tickers(rows []models.LeaderboardEntry) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Ticker
	}
	return out
}

func TestBuildLeaderboard(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	entries := []ComputedEntry{
		entry(1, "RY", "12.50", 120),
		entry(2, "SHOP", "-8.25", 120),
		entry(3, "ENB", "4.00", 120),
		entry(4, "BNS", "-2.10", 120),
		entry(5, "CNR", "7.75", 120),
		entry(6, "TD", "1.30", 120),
		entry(7, "SU", "-15.00", 120),
	}

	lb := BuildLeaderboard(entries, 3, 5, now)

	assert.Equal(t, 7, lb.Included)
	assert.Equal(t, 0, lb.Excluded)
	assert.Equal(t, now, lb.GeneratedAt)

	require.Len(t, lb.Top, 3)
	assert.Equal(t, []string{"RY", "CNR", "ENB"}, tickers(lb.Top))
	assert.Equal(t, 1, lb.Top[0].Rank)
	assert.Equal(t, 3, lb.Top[2].Rank)

	// Bottom is the tail of the same descending order: worst performer last.
	require.Len(t, lb.Bottom, 3)
	assert.Equal(t, []string{"BNS", "SHOP", "SU"}, tickers(lb.Bottom))
	assert.Equal(t, 7, lb.Bottom[2].Rank)

	// (12.50 + 7.75 + 4.00 + 1.30 - 2.10 - 8.25 - 15.00) / 7 = 0.028... -> 0.03
	assert.Equal(t, "0.03", lb.AverageReturn.StringFixed(2))
}

func TestBuildLeaderboardTieBreaksByTicker(t *testing.T) {
	now := time.Now().UTC()
	entries := []ComputedEntry{
		entry(1, "CCC", "10.00", 50),
		entry(2, "AAA", "10.00", 50),
		entry(3, "BBB", "5.00", 50),
	}

	lb := BuildLeaderboard(entries, 2, 5, now)

	require.Len(t, lb.Top, 2)
	assert.Equal(t, []string{"AAA", "CCC"}, tickers(lb.Top))
}

func TestBuildLeaderboardExcludesThinData(t *testing.T) {
	now := time.Now().UTC()
	entries := []ComputedEntry{
		entry(1, "RY", "10.00", 100),
		entry(2, "NEW", "99.00", 2), // thin series, excluded entirely
		entry(3, "TD", "6.00", 100),
	}

	lb := BuildLeaderboard(entries, 5, 5, now)

	assert.Equal(t, 2, lb.Included)
	assert.Equal(t, 1, lb.Excluded)
	assert.Equal(t, []string{"RY", "TD"}, tickers(lb.Top))

	// Excluded symbols stay out of the average too.
	assert.Equal(t, "8.00", lb.AverageReturn.StringFixed(2))
}

func TestBuildLeaderboardFewerEntriesThanTopN(t *testing.T) {
	now := time.Now().UTC()
	entries := []ComputedEntry{
		entry(1, "RY", "3.00", 100),
		entry(2, "TD", "-1.00", 100),
	}

	lb := BuildLeaderboard(entries, 5, 5, now)

	assert.Len(t, lb.Top, 2)
	assert.Len(t, lb.Bottom, 2)
}

func TestBuildLeaderboardEmpty(t *testing.T) {
	lb := BuildLeaderboard(nil, 5, 5, time.Now().UTC())

	assert.Equal(t, 0, lb.Included)
	assert.Empty(t, lb.Top)
	assert.Empty(t, lb.Bottom)
	assert.True(t, lb.AverageReturn.IsZero())
}
