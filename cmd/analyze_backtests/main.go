package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"rangeBreakout/internal/adapters/logger"
	"rangeBreakout/internal/adapters/sqlite"
	"rangeBreakout/internal/strategy/analytics"
	"rangeBreakout/internal/utils"
)

func main() {
	dbPath := flag.String("db", "./data/backtests.db", "SQLite database written by the backtest commands")
	symbol := flag.String("symbol", "", "only list runs of this symbol")
	limit := flag.Int("limit", 20, "maximum number of runs to list, 0 for all")
	runID := flag.String("run", "", "show the trades of this run")
	tradesCSV := flag.String("trades", "", "summarize a trade export instead of the database")
	pipSize := flag.Float64("pip-size", 0.0001, "pip size used with -trades")
	flag.Parse()

	appLogger := logger.New("WARN", "text", os.Stderr)
	ctx := context.Background()

	// Trade export, no database needed
	if *tradesCSV != "" {
		trades, err := utils.ReadTradesFromCSV(*tradesCSV)
		if err != nil {
			log.Fatalf("Error reading trades from %s: %v", *tradesCSV, err)
		}
		name := *tradesCSV
		if len(trades) > 0 {
			name = trades[0].Symbol
		}
		if err := utils.WriteSummaryTable(os.Stdout, name, analytics.Summarize(trades, 0, *pipSize)); err != nil {
			log.Fatalf("Error writing summary: %v", err)
		}
		fmt.Println()
		if err := utils.WriteTradesTable(os.Stdout, trades); err != nil {
			log.Fatalf("Error writing trades: %v", err)
		}
		return
	}

	if _, err := os.Stat(*dbPath); err != nil {
		log.Fatalf("Database %s not found. Run a backtest first.", *dbPath)
	}
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: *dbPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer repo.Close()

	if *runID != "" {
		run, err := repo.FindRun(ctx, *runID)
		if err != nil {
			log.Fatalf("Error loading run %s: %v", *runID, err)
		}
		if run == nil {
			log.Fatalf("Run %s not found", *runID)
		}
		trades, err := repo.FindTradesByRun(ctx, run.ID)
		if err != nil {
			log.Fatalf("Error loading trades of run %s: %v", run.ID, err)
		}
		fmt.Printf("## Run %s (%s)\n\n", run.ID, run.Symbol)
		keys := make([]string, 0, len(run.Params))
		for k := range run.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s=%v ", k, run.Params[k])
		}
		fmt.Printf("\n\n")
		if err := utils.WriteTradesTable(os.Stdout, trades); err != nil {
			log.Fatalf("Error writing trades: %v", err)
		}
		return
	}

	runs, err := repo.FindRuns(ctx, *symbol, *limit)
	if err != nil {
		log.Fatalf("Error listing runs: %v", err)
	}
	if len(runs) == 0 {
		log.Println("No backtest runs found. Run the backtest first.")
		return
	}
	if err := utils.WriteRunsTable(os.Stdout, runs); err != nil {
		log.Fatalf("Error writing runs: %v", err)
	}
}
