// stockpipe maintains the price history, YTD metrics, charts and leaderboard
// behind the swipe-to-discover stocks app. Each pipeline stage is a
// standalone subcommand so external schedulers can run them independently.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/swipefolio/stockpipe/internal/config"
	"github.com/swipefolio/stockpipe/internal/database"
	"github.com/swipefolio/stockpipe/internal/kafka"
	"github.com/swipefolio/stockpipe/internal/pipeline"
	"github.com/swipefolio/stockpipe/internal/util"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stockpipe",
	Short: "Data pipeline for the swipe-to-discover stocks app",
	Long: `stockpipe fetches daily TSX close prices, computes year-to-date
performance metrics, renders performance charts and publishes them for the
mobile app. Every stage runs standalone over the whole symbol registry.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger = util.NewLogger(cfg.LogLevel)
		slog.SetDefault(logger)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(publishChartsCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

// openDB connects using the configured DSN.
func openDB() (*database.DB, error) {
	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// openProducer returns a Kafka producer, or nil when no brokers are
// configured.
func openProducer() *kafka.Producer {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil
	}
	return kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
}

func analysisWindow() (pipeline.Window, error) {
	return pipeline.ResolveWindow(cfg.Sync.StartDate, time.Now().UTC())
}
