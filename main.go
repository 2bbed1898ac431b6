package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"
	"os/signal"
	"syscall"

	"rangeBreakout/config"
	"rangeBreakout/internal/adapters/logger"
	"rangeBreakout/internal/adapters/metrics"
	"rangeBreakout/internal/adapters/sqlite"
	"rangeBreakout/internal/app"
	"rangeBreakout/internal/ports"
	"rangeBreakout/internal/utils"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Initialize Logger
	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel, "format": cfg.LogFormat})

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize database repository")
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing database repository")
		}
	}()
	appLogger.Info(ctx, "Database repository initialized")

	// 4. Initialize Metrics, only when a textfile is requested
	var recorder *metrics.Recorder
	var metricsRecorder ports.MetricsRecorder
	if cfg.MetricsFile != "" {
		recorder = metrics.New()
		metricsRecorder = recorder
	}

	// 5. Initialize Application Service
	svc, err := app.NewBacktestService(appLogger, repo, metricsRecorder, 1)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize backtest service")
		log.Fatalf("FATAL: Failed to initialize backtest service: %v", err)
	}

	// 6. Run the backtest
	appLogger.Info(ctx, "Starting backtest", cfg.Strategy.Fields())
	outcomes, err := svc.Run(ctx, []app.Request{{
		Symbol:    cfg.Symbol,
		Config:    cfg.Strategy,
		BarsCSV:   cfg.BarsCSV,
		From:      cfg.DateFrom,
		To:        cfg.DateTo,
		TradesCSV: cfg.TradesCSV,
	}})
	if err != nil {
		appLogger.Error(ctx, err, "Backtest failed")
		log.Fatalf("FATAL: Backtest failed: %v", err)
	}

	// 7. Report
	for _, o := range outcomes {
		if err := utils.WriteSummaryTable(os.Stdout, o.Run.Symbol, o.Result.Summary); err != nil {
			appLogger.Error(ctx, err, "Error writing summary")
		}
		appLogger.Info(ctx, "Run recorded", map[string]interface{}{"run_id": o.Run.ID, "symbol": o.Run.Symbol})
	}

	if recorder != nil {
		if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
			appLogger.Error(ctx, err, "Error writing metrics textfile", map[string]interface{}{"file": cfg.MetricsFile})
		} else {
			appLogger.Info(ctx, "Metrics written", map[string]interface{}{"file": cfg.MetricsFile})
		}
	}

	appLogger.Info(ctx, "Application finished gracefully.")
}
