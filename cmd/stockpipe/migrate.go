package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrationsSource string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Migrate(migrationsSource); err != nil {
			return err
		}
		fmt.Println("database migrated up")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back all migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.MigrateDown(migrationsSource); err != nil {
			return err
		}
		fmt.Println("database migrated down")
		return nil
	},
}

func init() {
	migrateCmd.PersistentFlags().StringVar(&migrationsSource, "source", "file://db/migrations", "migrations source URL")
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
}
