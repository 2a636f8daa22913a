package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lacollections/warehouse/internal/application/harmonize"
	"github.com/lacollections/warehouse/internal/infrastructure/config"
	"github.com/lacollections/warehouse/internal/infrastructure/export"
	"github.com/lacollections/warehouse/internal/infrastructure/logger"
	"github.com/lacollections/warehouse/internal/infrastructure/mapping"
	"github.com/lacollections/warehouse/internal/infrastructure/persistence"
	"github.com/lacollections/warehouse/internal/infrastructure/staging"
	"go.uber.org/zap"
)

// The harmonizer is a batch job: it reads the raw marketplace extracts,
// rebuilds the entire star schema from scratch, persists it, exports CSV
// copies, and exits. Per-record defects are counted in the run report and
// never fail the process; only systemic problems (missing extract files,
// broken mapping configuration, storage errors) produce a non-zero exit.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting harmonization run",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("run_date", cfg.Pipeline.RunDate),
		zap.String("staging_dir", cfg.Pipeline.StagingDir),
	)

	// Load the declarative platform mappings before touching any data;
	// an invalid mapping file fails the run up front.
	mappings, err := mapping.Load(cfg.Pipeline.MappingFile)
	if err != nil {
		log.Fatal("Failed to load platform mappings",
			zap.String("file", cfg.Pipeline.MappingFile),
			zap.Error(err))
	}

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	repo := persistence.NewGormSnapshotRepository(db.DB, log)
	if err := repo.AutoMigrate(); err != nil {
		log.Fatal("Failed to migrate warehouse schema", zap.Error(err))
	}

	loader := staging.NewLoader(cfg.Pipeline.StagingDir, log)
	exporter := export.NewExporter(cfg.Pipeline.OutputDir, log)
	pipeline := harmonize.NewPipeline(&cfg.Pipeline, mappings, loader, repo, exporter, log)

	// A full rebuild is safe to interrupt: nothing is committed until the
	// final transaction, so a cancelled run leaves the previous load intact.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := pipeline.Run(ctx)
	if err != nil {
		log.Error("Harmonization run failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}

	log.Info("Harmonization run complete",
		zap.String("run_id", report.RunID.String()),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)
}
