package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/swipefolio/stockpipe/internal/fetch"
	"github.com/swipefolio/stockpipe/internal/pipeline"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch missing daily close prices for every tracked symbol",
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

		fetcher := fetch.NewYahooFetcher(cfg.Sync.FetchTimeout)
		engine := pipeline.NewEngine(db, db, fetcher, pipeline.EngineOptions{
			RequestDelay: cfg.Sync.RequestDelay,
			Concurrency:  cfg.Sync.Concurrency,
			MaxRunTime:   cfg.Sync.MaxRunTime,
			BatchSize:    cfg.Sync.BatchSize,
			Logger:       logger,
		})

		ctx := context.Background()
		report, err := engine.Run(ctx, window)
		if err != nil {
			return err
		}

		publishSyncEvents(ctx, report)

		fmt.Printf("\nSync summary (%s to %s)\n",
			window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"))
		fmt.Printf("  symbols processed: %d\n", report.Attempted)
		fmt.Printf("  succeeded:         %d\n", report.Succeeded)
		fmt.Printf("  no data:           %d\n", report.NoData)
		fmt.Printf("  failed:            %d\n", report.Failed)
		fmt.Printf("  rows written:      %d\n", report.RowsWritten)

		if report.TotalFailure() {
			return fmt.Errorf("sync failed for all %d symbols", report.Attempted)
		}
		return nil
	},
}

func publishSyncEvents(ctx context.Context, report *pipeline.SyncReport) {
	producer := openProducer()
	if producer == nil {
		return
	}
	defer producer.Close()

	for _, res := range report.Results {
		if res.Err != nil || res.NoData || res.RowsWritten == 0 {
			continue
		}
		if err := producer.PublishPricesSynced(ctx, res.Ticker, res.RowsWritten); err != nil {
			logger.Warn("failed to publish sync event", "ticker", res.Ticker, "error", err)
		}
	}
}
