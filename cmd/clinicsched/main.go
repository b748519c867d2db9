package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/config"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/pkg/metrics"
)

func main() {
	// A missing .env is fine; the environment and clinicsched.yaml still apply.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "clinicsched",
		Short:         "Clinic appointment scheduling service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(slotsCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type deps struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *gorm.DB
	metrics *metrics.Collector
}

// bootstrap loads configuration and opens the database every subcommand needs.
func bootstrap() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(cfg.Log, cfg.App)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	db, err := database.Connect(cfg.Database, database.NewZapLogger(log, cfg.Database.SlowQueryThreshold))
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	m := metrics.NewCollector(cfg.App.Name)
	if err := database.Instrument(db, m.DBQueryDuration); err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("instrumenting database: %w", err)
	}

	return &deps{cfg: cfg, log: log, db: db, metrics: m}, nil
}
