package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"Stockbook/CronJobs"
	"Stockbook/FiberConfig"
	"Stockbook/Models"
	"Stockbook/Services"
	"Stockbook/config"
)

const shutdownTimeout = 10 * time.Second

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Migrate the schema and serve the API on PORT until SIGINT or SIGTERM.

When REDIS_ADDR is set, invoice numbers are allocated with Redis INCR
instead of the database sequence row. AUDIT_SCHEDULE (cron syntax with a
seconds field) runs the ledger audit in the background.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not run schema migrations on start")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db, log)

	if err := cfg.Validate(); err != nil {
		config.LogError(log, "cmd", "runServe", "validating configuration", nil, err)
		return err
	}

	if !skipMigrate {
		if err := Models.Migrate(db); err != nil {
			config.LogError(log, "cmd", "runServe", "migrating schema", nil, err)
			return err
		}
	}

	var seq Services.Sequencer
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		err := client.Ping(ctx).Err()
		cancel()
		if err != nil {
			config.LogError(log, "cmd", "runServe", "connecting to redis", cfg.Redis.Addr, err)
			return fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
		}
		seq = Services.NewRedisSequencer(client)
		log.WithField("addr", cfg.Redis.Addr).Info("invoice numbers allocated from redis")
	}

	if cfg.Audit.Schedule != "" {
		auditor := CronJobs.NewLedgerAuditor(db, log, cfg.Audit.OnStart)
		if err := auditor.Start(cfg.Audit.Schedule); err != nil {
			config.LogError(log, "cmd", "runServe", "starting ledger audit", cfg.Audit.Schedule, err)
			return err
		}
		defer auditor.Stop()
	}

	app := FiberConfig.New(cfg, db, log, seq)

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Server.Port).Info("Server Up...")
		errCh <- app.Listen(":" + cfg.Server.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("shutdown signal received")
	}

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		config.LogError(log, "cmd", "runServe", "shutting down server", nil, err)
		return err
	}
	log.Info("server stopped")
	return nil
}
