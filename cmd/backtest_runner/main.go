package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"rangeBreakout/config"
	"rangeBreakout/internal/adapters/logger"
	"rangeBreakout/internal/adapters/metrics"
	"rangeBreakout/internal/adapters/sqlite"
	"rangeBreakout/internal/app"
	"rangeBreakout/internal/utils"
)

func main() {
	profilesPath := flag.String("profiles", "profiles.yaml", "YAML file with one profile per instrument")
	logLevel := flag.String("log-level", "INFO", "DEBUG, INFO, WARN or ERROR")
	logFormat := flag.String("log-format", "text", "text, json or console")
	flag.Parse()

	// 1. Load profiles
	file, err := config.LoadProfiles(*profilesPath)
	if err != nil {
		log.Fatalf("FATAL: Failed to load profiles: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLogger := logger.New(*logLevel, *logFormat, os.Stderr)

	// 2. Build one request per profile
	reqs := make([]app.Request, 0, len(file.Profiles))
	for _, p := range file.Profiles {
		cfg, err := p.StrategyConfig()
		if err != nil {
			log.Fatalf("FATAL: Invalid profile: %v", err)
		}
		from, to, err := p.Period(cfg.Loc())
		if err != nil {
			log.Fatalf("FATAL: Invalid profile: %v", err)
		}
		req := app.Request{Symbol: p.Symbol, Config: cfg, BarsCSV: p.BarsCSV, From: from, To: to}
		if file.TradesDir != "" {
			req.TradesCSV = filepath.Join(file.TradesDir, fmt.Sprintf("%s_trades.csv", p.Symbol))
		}
		reqs = append(reqs, req)
	}
	appLogger.Info(ctx, "Profiles loaded", map[string]interface{}{
		"file":        *profilesPath,
		"profiles":    len(reqs),
		"concurrency": file.Concurrency,
	})

	// 3. Initialize Repository and Metrics
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: file.DBPath, Logger: appLogger})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize database repository")
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing database repository")
		}
	}()
	recorder := metrics.New()

	svc, err := app.NewBacktestService(appLogger, repo, recorder, file.Concurrency)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize backtest service")
		log.Fatalf("FATAL: Failed to initialize backtest service: %v", err)
	}

	// 4. Run all instruments
	outcomes, err := svc.Run(ctx, reqs)
	if err != nil {
		appLogger.Error(ctx, err, "Batch backtest failed")
		log.Fatalf("FATAL: Batch backtest failed: %v", err)
	}

	// 5. Report
	for i, o := range outcomes {
		if i > 0 {
			fmt.Println()
		}
		if err := utils.WriteSummaryTable(os.Stdout, o.Run.Symbol, o.Result.Summary); err != nil {
			appLogger.Error(ctx, err, "Error writing summary", map[string]interface{}{"symbol": o.Run.Symbol})
		}
	}

	if file.MetricsFile != "" {
		if err := recorder.WriteTextfile(file.MetricsFile); err != nil {
			appLogger.Error(ctx, err, "Error writing metrics textfile", map[string]interface{}{"file": file.MetricsFile})
		} else {
			appLogger.Info(ctx, "Metrics written", map[string]interface{}{"file": file.MetricsFile})
		}
	}
}
