package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"Stockbook/Models"
	"Stockbook/config"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "stockbook",
	Short: "Stockbook - inventory and accounting API",
	Long: `Stockbook keeps a stock ledger, issues invoices, records purchases and
reconciles customer payments against credits, all behind a JSON API.

Running it without a subcommand starts the HTTP server.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration, builds the logger and opens the database.
func bootstrap() (*config.Config, *logrus.Logger, *gorm.DB, error) {
	cfg := config.Load()
	log := config.NewLogger(cfg.Logger)

	db, err := Models.Connect(cfg.Database, log)
	if err != nil {
		config.LogError(log, "cmd", "bootstrap", "connecting to database", nil, err)
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

func closeDB(db *gorm.DB, log *logrus.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		config.LogWarn(log, "cmd", "closeDB", "closing database failed", err.Error())
	}
}
