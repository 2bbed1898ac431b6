package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"rangeBreakout/config"
	"rangeBreakout/internal/adapters/binanceclient"
	"rangeBreakout/internal/adapters/logger"
	"rangeBreakout/internal/strategy/indicators"
	"rangeBreakout/internal/utils"
)

const dateLayout = "2006-01-02"

func main() {
	symbol := flag.String("symbol", "BTCUSDT", "Binance futures symbol")
	interval := flag.String("interval", "1m", "kline interval, e.g. 1m, 5m, 1h")
	startStr := flag.String("start", "", "first day to fetch, YYYY-MM-DD (default: three months ago)")
	endStr := flag.String("end", "", "last day to fetch, YYYY-MM-DD (default: now)")
	resample := flag.Duration("resample", 0, "aggregate the fetched bars to this timeframe, e.g. 5m (0 keeps them as fetched)")
	out := flag.String("out", "", "output CSV (default: data/<symbol>_<interval>_<start>_to_<end>.csv)")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	ctx := context.Background()

	end := time.Now().UTC()
	if *endStr != "" {
		day, err := time.Parse(dateLayout, *endStr)
		if err != nil {
			log.Fatalf("FATAL: Invalid -end: %v", err)
		}
		end = day.AddDate(0, 0, 1).Add(-time.Millisecond)
	}
	start := end.AddDate(0, -3, 0)
	if *startStr != "" {
		if start, err = time.Parse(dateLayout, *startStr); err != nil {
			log.Fatalf("FATAL: Invalid -start: %v", err)
		}
	}
	if !end.After(start) {
		log.Fatalf("FATAL: -end must be after -start")
	}

	// 3. Initialize Market Data Client (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}
	if err := binanceClient.Ping(ctx); err != nil {
		appLogger.Error(ctx, err, "FATAL: Binance is not reachable")
		log.Fatalf("FATAL: Binance is not reachable: %v", err)
	}
	appLogger.Info(ctx, "Binance client initialized")

	// 4. Fetch and save
	appLogger.Info(ctx, "Fetching bars", map[string]interface{}{
		"symbol":   *symbol,
		"interval": *interval,
		"start":    start.Format(time.RFC3339),
		"end":      end.Format(time.RFC3339),
	})
	bars, err := binanceClient.GetBarsRange(ctx, *symbol, *interval, start, end)
	if err != nil {
		appLogger.Error(ctx, err, "Error fetching bars")
		log.Fatalf("Error fetching bars: %v", err)
	}
	appLogger.Info(ctx, "Fetched bars", map[string]interface{}{"count": len(bars)})

	if *resample > 0 {
		bars = indicators.Resample(bars, *resample)
		appLogger.Info(ctx, "Resampled bars", map[string]interface{}{"timeframe": resample.String(), "count": len(bars)})
	}

	filename := *out
	if filename == "" {
		filename = fmt.Sprintf("data/%s_%s_%s_to_%s.csv", *symbol, *interval, start.Format("20060102"), end.Format("20060102"))
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		log.Fatalf("Error creating output directory: %v", err)
	}
	if err := utils.WriteBarsToCSV(bars, filename); err != nil {
		appLogger.Error(ctx, err, "Error writing CSV")
		log.Fatalf("Error writing CSV: %v", err)
	}
	appLogger.Info(ctx, "Saved to", map[string]interface{}{"filename": filename})
}
