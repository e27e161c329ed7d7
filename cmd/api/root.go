package main

import (
	"fmt"

	"vendorledger/internal/config"
	"vendorledger/internal/database"
	"vendorledger/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "vendorledger",
	Short: "Vendor ledger API server and operator commands",
	Long: `vendorledger serves the sales, invoicing and payment API.

Without a subcommand it starts the HTTP server, same as "vendorledger serve".
Configuration is read from the environment and from configs/.env.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "configs/.env", "dotenv file loaded before the environment")
	rootCmd.AddCommand(serveCmd, migrateCmd, invoiceCmd)
}

// bootstrap loads configuration and opens the logger and database shared by every command.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})

	db, err := database.NewConnection(cfg.Database, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, err
	}
	log.Info("connected to PostgreSQL", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.Name))
	return cfg, log, db, nil
}

func closeDB(db *gorm.DB, log *zap.Logger) {
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Warn("close database", zap.Error(err))
		}
	}
	_ = log.Sync()
}
