package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/swipefolio/stockpipe/internal/models"
	"github.com/swipefolio/stockpipe/internal/pipeline"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Recompute YTD metrics for every tracked symbol and print the leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		window, err := analysisWindow()
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		calc := pipeline.NewCalculator(db, db, logger)
		report, err := calc.Run(window)
		if err != nil {
			return err
		}

		publishMetricsEvents(context.Background(), report)

		fmt.Printf("\nMetrics summary\n")
		fmt.Printf("  symbols processed: %d\n", report.Processed)
		fmt.Printf("  updated:           %d\n", report.Updated)
		fmt.Printf("  skipped (no data): %d\n", report.Skipped)
		fmt.Printf("  failed:            %d\n", report.Failed)

		lb := pipeline.BuildLeaderboard(report.Entries, cfg.Report.TopN, cfg.Report.MinDataPoints, time.Now().UTC())
		printLeaderboard(lb)
		writeLeaderboardCache(context.Background(), lb)

		if report.TotalFailure() {
			return fmt.Errorf("metrics failed for all %d symbols", report.Processed)
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the leaderboard from the stored metrics snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		window, err := analysisWindow()
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		rows, err := db.GetLeaderboardRows(window.Start)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return fmt.Errorf("no metrics computed yet; run `stockpipe metrics` first")
		}

		entries := make([]pipeline.ComputedEntry, 0, len(rows))
		for _, row := range rows {
			entries = append(entries, pipeline.ComputedEntry{
				CompanyID:    row.Metrics.CompanyID,
				Ticker:       row.Metrics.Ticker,
				YTDReturn:    row.Metrics.YTDReturn,
				CurrentPrice: row.Metrics.CurrentPrice,
				DataPoints:   row.DataPoints,
			})
		}

		lb := pipeline.BuildLeaderboard(entries, cfg.Report.TopN, cfg.Report.MinDataPoints, time.Now().UTC())
		printLeaderboard(lb)
		writeLeaderboardCache(context.Background(), lb)
		return nil
	},
}

func publishMetricsEvents(ctx context.Context, report *pipeline.MetricsReport) {
	producer := openProducer()
	if producer == nil {
		return
	}
	defer producer.Close()

	for _, e := range report.Entries {
		if err := producer.PublishMetricsUpdated(ctx, e.Ticker, e.YTDReturn); err != nil {
			logger.Warn("failed to publish metrics event", "ticker", e.Ticker, "error", err)
		}
	}
}

func printLeaderboard(lb *models.Leaderboard) {
	fmt.Printf("\nAverage YTD return: %s%% (over %d symbols, %d excluded for thin data)\n",
		lb.AverageReturn.StringFixed(2), lb.Included, lb.Excluded)

	fmt.Printf("\nTop %d performers:\n", len(lb.Top))
	printEntries(lb.Top)

	fmt.Printf("\nBottom %d performers:\n", len(lb.Bottom))
	printEntries(lb.Bottom)
}

func printEntries(entries []models.LeaderboardEntry) {
	fmt.Printf("%-6s %-10s %12s %15s\n", "Rank", "Ticker", "YTD Return", "Current Price")
	for _, e := range entries {
		fmt.Printf("%-6d %-10s %11s%% %14s\n",
			e.Rank, e.Ticker, e.YTDReturn.StringFixed(2), "$"+e.CurrentPrice.StringFixed(2))
	}
}
