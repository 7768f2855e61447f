// Package chart renders YTD performance charts as PNG images for the app's
// discovery cards.
package chart

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/swipefolio/stockpipe/internal/models"
)

var (
	positiveColor = drawing.ColorFromHex("10b981")
	negativeColor = drawing.ColorFromHex("ef4444")
)

// Render draws a company's close-price series as a filled line chart. The
// line is green for a non-negative YTD return and red otherwise. Requires at
// least 2 price points.
func Render(stock *models.Stock, series []*models.PricePoint, ytdReturn decimal.Decimal) ([]byte, error) {
	if len(series) < 2 {
		return nil, fmt.Errorf("need at least 2 price points to chart %s, got %d", stock.Ticker, len(series))
	}

	xs := make([]time.Time, len(series))
	ys := make([]float64, len(series))
	for i, p := range series {
		xs[i] = p.Date
		ys[i], _ = p.ClosePrice.Float64()
	}

	lineColor := positiveColor
	if ytdReturn.IsNegative() {
		lineColor = negativeColor
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s - %s  YTD %s%%", stock.Ticker, stock.Name, ytdReturn.StringFixed(2)),
		Width:  1200,
		Height: 600,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.2f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    stock.Ticker,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: lineColor,
					StrokeWidth: 2.5,
					FillColor:   lineColor.WithAlpha(70),
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart for %s: %w", stock.Ticker, err)
	}
	return buf.Bytes(), nil
}
