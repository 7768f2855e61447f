package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/swipefolio/stockpipe/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the symbol registry with the TSX 60 constituents",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		seeder := seed.NewSeeder(db, cfg.Sync.RequestDelay, logger)
		report, err := seeder.Run(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("\nSeed summary\n")
		fmt.Printf("  seeded: %d\n", report.Seeded)
		fmt.Printf("  failed: %d\n", report.Failed)
		return nil
	},
}
