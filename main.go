package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/fabpulse/fabpulse-engine/pkg/config"
	"github.com/fabpulse/fabpulse-engine/pkg/database"
	"github.com/fabpulse/fabpulse-engine/pkg/handlers"
	"github.com/fabpulse/fabpulse-engine/pkg/llm"
	"github.com/fabpulse/fabpulse-engine/pkg/logging"
	"github.com/fabpulse/fabpulse-engine/pkg/middleware"
	"github.com/fabpulse/fabpulse-engine/pkg/repositories"
	"github.com/fabpulse/fabpulse-engine/pkg/retry"
	"github.com/fabpulse/fabpulse-engine/pkg/services"
	"github.com/fabpulse/fabpulse-engine/pkg/warehouse"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("engine_db", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("warehouse_db", logging.SanitizeConnectionString(cfg.Warehouse.ConnectionString())),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("ai_model", cfg.AI.Model))

	ctx := context.Background()

	// Engine database holds the report cache. Retry the initial connection
	// so container orchestration ordering does not kill the process.
	engineDB, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (*database.DB, error) {
		return database.NewConnection(ctx, &database.Config{
			URL:             cfg.Database.ConnectionString(),
			MaxConns:        cfg.Database.MaxConnections,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		})
	})
	if err != nil {
		logger.Fatal("Failed to connect to engine database", zap.String("error", logging.SanitizeError(err)))
	}
	defer engineDB.Close()

	if err := runMigrations(cfg, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.String("error", logging.SanitizeError(err)))
	}

	// Warehouse connection is read-only production data.
	warehouseDB, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (*database.DB, error) {
		return database.NewConnection(ctx, &database.Config{
			URL:             cfg.Warehouse.ConnectionString(),
			MaxConns:        cfg.Warehouse.MaxConnections,
			ConnMaxLifetime: cfg.Warehouse.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Warehouse.ConnMaxIdleTime,
		})
	})
	if err != nil {
		logger.Fatal("Failed to connect to warehouse database", zap.String("error", logging.SanitizeError(err)))
	}
	defer warehouseDB.Close()

	generator, err := llm.NewTextGenerator(cfg.AI.Provider, &llm.Config{
		Endpoint: cfg.AI.Endpoint,
		Model:    cfg.AI.Model,
		APIKey:   cfg.AI.APIKey,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create text generator", zap.Error(err))
	}

	store := warehouse.NewPostgres(warehouseDB.Pool, cfg.Warehouse.Schema, logger)
	reportRepo := repositories.NewReportRepository(engineDB.Pool)

	lotStatusService := services.NewLotStatusService(store, logger)
	reportService := services.NewDefectReportService(reportRepo, generator, cfg.Dashboard.DefaultLanguage, logger)
	overviewService := services.NewOverviewService(lotStatusService, cfg.Dashboard.Tables, logger)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(cfg, logger)
	healthHandler.RegisterRoutes(mux)

	lotStatusHandler := handlers.NewLotStatusHandler(lotStatusService, cfg.Dashboard.DefaultTable, cfg.Env, logger)
	lotStatusHandler.RegisterRoutes(mux)

	reportHandler := handlers.NewDefectReportHandler(reportService, cfg.Env, logger)
	reportHandler.RegisterRoutes(mux)

	overviewHandler := handlers.NewOverviewHandler(overviewService, logger)
	overviewHandler.RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting fabpulse-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// runMigrations opens a short-lived database/sql handle for golang-migrate.
func runMigrations(cfg *config.Config, logger *zap.Logger) error {
	db, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return database.RunMigrations(db, cfg.Database.MigrationsPath, logger)
}
