package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"rangeBreakout/internal/domain"
	"rangeBreakout/internal/ports"

	"github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.RunRepository interface using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/backtests.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("%w: failed to create data directory '%s': %w", ports.ErrDBConnection, filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		err = fmt.Errorf("%w: failed to open database at '%s': %w", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("%w: failed to ping database at '%s': %w", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db.SetMaxOpenConns(1) // single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Debug(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS backtest_runs (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		params TEXT NOT NULL,
		bars INTEGER NOT NULL,
		total_trades INTEGER NOT NULL,
		winning_trades INTEGER NOT NULL,
		losing_trades INTEGER NOT NULL,
		win_rate REAL NOT NULL,
		total_pips REAL NOT NULL,
		profit_factor REAL NULL, -- NULL when there are wins but no losses
		unresolved INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trade_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES backtest_runs (id) ON DELETE CASCADE,
		symbol TEXT NOT NULL,
		direction TEXT NOT NULL,
		entry_time TIMESTAMP NOT NULL,
		entry_price REAL NOT NULL,
		exit_time TIMESTAMP NOT NULL,
		exit_price REAL NOT NULL,
		exit_reason TEXT NOT NULL,
		stop_price REAL NOT NULL,
		target_price REAL NOT NULL,
		range_high REAL NOT NULL,
		range_low REAL NOT NULL,
		pips REAL NOT NULL,
		trend TEXT NOT NULL DEFAULT '',
		policy_resolved INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_backtest_runs_symbol_started ON backtest_runs (symbol, started_at);
	CREATE INDEX IF NOT EXISTS idx_trade_history_run_entry_time ON trade_history (run_id, entry_time);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("%w: failed to execute schema initialization: %w", ports.ErrQueryFailed, err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Debug(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// SaveRun persists the run and its trades in one transaction and assigns trade IDs.
func (r *Repository) SaveRun(ctx context.Context, run *domain.RunRecord, trades []*domain.Trade) (err error) {
	params, err := json.Marshal(run.Params)
	if err != nil {
		return fmt.Errorf("failed to encode params of run %s: %w", run.ID, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", ports.ErrDBConnection, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	const runQuery = `
	INSERT INTO backtest_runs (id, symbol, started_at, finished_at, params, bars, total_trades,
	                           winning_trades, losing_trades, win_rate, total_pips, profit_factor, unresolved)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var profitFactor sql.NullFloat64
	if !run.ProfitFactorUnbounded {
		profitFactor = sql.NullFloat64{Float64: run.ProfitFactor, Valid: true}
	}

	if _, err = tx.ExecContext(ctx, runQuery,
		run.ID, run.Symbol, run.StartedAt.UTC(), run.FinishedAt.UTC(), string(params), run.Bars, run.TotalTrades,
		run.WinningTrades, run.LosingTrades, run.WinRate, run.TotalPips, profitFactor, run.Unresolved); err != nil {
		return translateError(fmt.Sprintf("failed to insert run %s", run.ID), err)
	}

	const tradeQuery = `
	INSERT INTO trade_history (run_id, symbol, direction, entry_time, entry_price, exit_time, exit_price,
	                           exit_reason, stop_price, target_price, range_high, range_low, pips, trend, policy_resolved)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PrepareContext(ctx, tradeQuery)
	if err != nil {
		return fmt.Errorf("%w: failed to prepare trade insert: %w", ports.ErrQueryFailed, err)
	}
	defer stmt.Close()

	for _, t := range trades {
		result, execErr := stmt.ExecContext(ctx,
			run.ID, t.Symbol, string(t.Direction), t.EntryTime.UTC(), t.EntryPrice, t.ExitTime.UTC(), t.ExitPrice,
			string(t.ExitReason), t.StopPrice, t.TargetPrice, t.RangeHigh, t.RangeLow, t.Pips, string(t.Trend), t.PolicyResolved)
		if execErr != nil {
			err = translateError(fmt.Sprintf("failed to insert trade of run %s", run.ID), execErr)
			return err
		}
		id, idErr := result.LastInsertId()
		if idErr != nil {
			err = fmt.Errorf("failed to get last insert ID for trade of run %s: %w", run.ID, idErr)
			return err
		}
		t.ID = id
		t.RunID = run.ID
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit run %s: %w", ports.ErrQueryFailed, run.ID, err)
	}
	r.logger.Debug(ctx, "Backtest run saved", map[string]interface{}{"runID": run.ID, "symbol": run.Symbol, "trades": len(trades)})
	return nil
}

const runColumns = `id, symbol, started_at, finished_at, params, bars, total_trades, winning_trades,
	       losing_trades, win_rate, total_pips, profit_factor, unresolved`

// FindRun retrieves a run by ID. Returns nil, nil if not found.
func (r *Repository) FindRun(ctx context.Context, id string) (*domain.RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM backtest_runs WHERE id = ?`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug(ctx, "Run not found by ID", map[string]interface{}{"runID": id})
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("%w: failed to query run %s: %w", ports.ErrQueryFailed, id, err)
	}
	return run, nil
}

// FindRuns retrieves the most recent runs, newest first. An empty symbol matches
// every instrument; a non-positive limit returns all runs.
func (r *Repository) FindRuns(ctx context.Context, symbol string, limit int) ([]*domain.RunRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}
	query := `SELECT ` + runColumns + ` FROM backtest_runs
	WHERE (? = '' OR symbol = ?) ORDER BY started_at DESC, id LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, symbol, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query runs for symbol %q: %w", ports.ErrQueryFailed, symbol, err)
	}
	defer rows.Close()

	runs := make([]*domain.RunRecord, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run during FindRuns: %w", err)
		}
		runs = append(runs, run)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run rows: %w", err)
	}
	return runs, nil
}

// FindTradesByRun retrieves the trades of a run ordered by entry time.
func (r *Repository) FindTradesByRun(ctx context.Context, runID string) ([]*domain.Trade, error) {
	const query = `
	SELECT id, run_id, symbol, direction, entry_time, entry_price, exit_time, exit_price, exit_reason,
	       stop_price, target_price, range_high, range_low, pips, trend, policy_resolved
	FROM trade_history
	WHERE run_id = ? ORDER BY entry_time, id`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query trades of run %s: %w", ports.ErrQueryFailed, runID, err)
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade during FindTradesByRun: %w", err)
		}
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}

// translateError maps SQLite constraint violations to ports errors.
func translateError(msg string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: %s: %w", ports.ErrDuplicateEntry, msg, err)
	}
	return fmt.Errorf("%w: %s: %w", ports.ErrQueryFailed, msg, err)
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRun scans a row into a domain.RunRecord struct.
func scanRun(s scanner) (*domain.RunRecord, error) {
	run := &domain.RunRecord{}
	var params string
	var profitFactor sql.NullFloat64
	err := s.Scan(
		&run.ID, &run.Symbol, &run.StartedAt, &run.FinishedAt, &params, &run.Bars, &run.TotalTrades,
		&run.WinningTrades, &run.LosingTrades, &run.WinRate, &run.TotalPips, &profitFactor, &run.Unresolved)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	if err := json.Unmarshal([]byte(params), &run.Params); err != nil {
		return nil, fmt.Errorf("failed to decode params of run %s: %w", run.ID, err)
	}
	if profitFactor.Valid {
		run.ProfitFactor = profitFactor.Float64
	} else {
		run.ProfitFactor = math.Inf(1)
		run.ProfitFactorUnbounded = true
	}
	return run, nil
}

// scanTrade scans a row into a domain.Trade struct.
func scanTrade(s scanner) (*domain.Trade, error) {
	t := &domain.Trade{}
	var direction, reason, trend string
	err := s.Scan(
		&t.ID, &t.RunID, &t.Symbol, &direction, &t.EntryTime, &t.EntryPrice, &t.ExitTime, &t.ExitPrice, &reason,
		&t.StopPrice, &t.TargetPrice, &t.RangeHigh, &t.RangeLow, &t.Pips, &trend, &t.PolicyResolved)
	if err != nil {
		return nil, err
	}
	t.Direction = domain.Direction(direction)
	t.ExitReason = domain.ExitReason(reason)
	t.Trend = domain.Trend(trend)
	return t, nil
}
