package pipeline

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/swipefolio/stockpipe/internal/models"
)

// BuildLeaderboard ranks computed metrics into a top-N / bottom-N view with
// an unweighted average return. Symbols with fewer than minPoints price
// points are excluded entirely (from the lists and the average).
//
// Ordering is YTD return descending with ticker ascending as the tie-break,
// so the same metrics snapshot always yields the same leaderboard. The
// bottom block is the tail of that same descending order.
func BuildLeaderboard(entries []ComputedEntry, topN, minPoints int, now time.Time) *models.Leaderboard {
	if topN <= 0 {
		topN = 5
	}

	lb := &models.Leaderboard{GeneratedAt: now}

	var ranked []ComputedEntry
	for _, e := range entries {
		if e.DataPoints < minPoints {
			lb.Excluded++
			continue
		}
		ranked = append(ranked, e)
	}
	lb.Included = len(ranked)
	if len(ranked) == 0 {
		lb.AverageReturn = decimal.Zero
		return lb
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		cmp := ranked[i].YTDReturn.Cmp(ranked[j].YTDReturn)
		if cmp != 0 {
			return cmp > 0
		}
		return ranked[i].Ticker < ranked[j].Ticker
	})

	sum := decimal.Zero
	rows := make([]models.LeaderboardEntry, len(ranked))
	for i, e := range ranked {
		sum = sum.Add(e.YTDReturn)
		rows[i] = models.LeaderboardEntry{
			Rank:         i + 1,
			CompanyID:    e.CompanyID,
			Ticker:       e.Ticker,
			YTDReturn:    e.YTDReturn,
			CurrentPrice: e.CurrentPrice,
			DataPoints:   e.DataPoints,
		}
	}

	n := min(topN, len(rows))
	lb.Top = rows[:n]
	lb.Bottom = rows[len(rows)-n:]
	lb.AverageReturn = sum.Div(decimal.NewFromInt(int64(len(ranked)))).Round(2)
	return lb
}