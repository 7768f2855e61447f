package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/swipefolio/stockpipe/internal/chart"
	"github.com/swipefolio/stockpipe/internal/database"
	"github.com/swipefolio/stockpipe/internal/models"
	"github.com/swipefolio/stockpipe/internal/pipeline"
	"github.com/swipefolio/stockpipe/internal/storage"
)

var chartOut string

var chartCmd = &cobra.Command{
	Use:   "chart <ticker>",
	Short: "Render one symbol's YTD chart to a PNG file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker := strings.ToUpper(args[0])

		window, err := analysisWindow()
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		png, stock, err := renderChart(db, ticker, window)
		if err != nil {
			return err
		}

		out := chartOut
		if out == "" {
			out = stock.Ticker + ".png"
		}
		if err := os.WriteFile(out, png, 0o644); err != nil {
			return fmt.Errorf("failed to write chart: %w", err)
		}

		fmt.Printf("wrote %s (%d bytes)\n", out, len(png))
		return nil
	},
}

var publishChartsCmd = &cobra.Command{
	Use:   "publish-charts",
	Short: "Render and upload YTD charts for every tracked symbol",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Storage.URL == "" || cfg.Storage.ServiceKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY must be set")
		}

		window, err := analysisWindow()
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		publisher := storage.NewPublisher(cfg.Storage.URL, cfg.Storage.ServiceKey, cfg.Storage.Bucket)
		if err := publisher.EnsureBucket(); err != nil {
			return err
		}

		stocks, err := db.GetAllStocks()
		if err != nil {
			return err
		}
		if len(stocks) == 0 {
			return pipeline.ErrEmptyRegistry
		}

		var published, skipped, failed int
		for _, stock := range stocks {
			png, _, err := renderChart(db, stock.Ticker, window)
			if err != nil {
				logger.Warn("skipping chart", "ticker", stock.Ticker, "error", err)
				skipped++
				continue
			}

			url, err := publisher.Publish(stock.Ticker+".png", png)
			if err != nil {
				logger.Error("failed to publish chart", "ticker", stock.Ticker, "error", err)
				failed++
				continue
			}
			if err := db.UpdateChartURL(stock.ID, url); err != nil {
				logger.Error("failed to store chart url", "ticker", stock.Ticker, "error", err)
				failed++
				continue
			}

			logger.Info("published chart", "ticker", stock.Ticker, "url", url)
			published++
		}

		fmt.Printf("\nChart publish summary\n")
		fmt.Printf("  published: %d\n", published)
		fmt.Printf("  skipped:   %d\n", skipped)
		fmt.Printf("  failed:    %d\n", failed)

		if published == 0 && failed > 0 {
			return fmt.Errorf("chart publishing failed for all %d attempted symbols", failed)
		}
		return nil
	},
}

func init() {
	chartCmd.Flags().StringVarP(&chartOut, "out", "o", "", "output file (default <TICKER>.png)")
}

// renderChart loads a symbol's stored series and renders its YTD chart.
func renderChart(db *database.DB, ticker string, window pipeline.Window) ([]byte, *models.Stock, error) {
	stock, err := db.GetStockByTicker(ticker)
	if err != nil {
		return nil, nil, err
	}

	series, err := db.GetPriceSeries(stock.ID, window.Start, window.End)
	if err != nil {
		return nil, nil, err
	}

	comp, err := pipeline.Compute(series)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot chart %s: %w", ticker, err)
	}

	png, err := chart.Render(stock, series, comp.YTDReturn)
	if err != nil {
		return nil, nil, err
	}
	return png, stock, nil
}
