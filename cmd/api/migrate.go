package main

import (
	"vendorledger/internal/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer closeDB(db, log)

		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Info("schema is up to date")
		return nil
	},
}
