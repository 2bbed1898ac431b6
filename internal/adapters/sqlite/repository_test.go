package sqlite

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"rangeBreakout/internal/domain"
	"rangeBreakout/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

var _ ports.RunRepository = (*Repository)(nil)

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) *Repository {
	t.Helper()

	repo, err := NewRepository(Config{
		DBPath: filepath.Join(t.TempDir(), "data", "test.db"),
		Logger: &mockLogger{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testRun(id, symbol string, started time.Time) *domain.RunRecord {
	return &domain.RunRecord{
		ID:            id,
		Symbol:        symbol,
		StartedAt:     started,
		FinishedAt:    started.Add(2 * time.Second),
		Params:        map[string]interface{}{"rangeWindow": "07:00-08:29", "fastPeriod": 12},
		Bars:          1440,
		TotalTrades:   2,
		WinningTrades: 1,
		LosingTrades:  1,
		WinRate:       50,
		TotalPips:     -20,
		ProfitFactor:  0.2,
	}
}

func testTrades(symbol string) []*domain.Trade {
	entry := time.Date(2024, 3, 4, 8, 35, 0, 0, time.UTC)
	return []*domain.Trade{
		{
			Symbol: symbol, Direction: domain.Short,
			EntryTime: entry, EntryPrice: 1.1047, ExitTime: entry.Add(5 * time.Minute), ExitPrice: 1.1042,
			ExitReason: domain.ExitReasonTarget, StopPrice: 1.1072, TargetPrice: 1.1042,
			RangeHigh: 1.1050, RangeLow: 1.1000, Pips: 5, Trend: domain.TrendDown,
		},
		{
			Symbol: symbol, Direction: domain.Short,
			EntryTime: entry.AddDate(0, 0, 1), EntryPrice: 1.1047, ExitTime: entry.AddDate(0, 0, 1).Add(time.Hour), ExitPrice: 1.1072,
			ExitReason: domain.ExitReasonStop, StopPrice: 1.1072, TargetPrice: 1.1042,
			RangeHigh: 1.1050, RangeLow: 1.1000, Pips: -25, PolicyResolved: true,
		},
	}
}

func TestRepository_SaveAndFindRun(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	started := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
	run := testRun("run-1", "EURUSD", started)
	trades := testTrades("EURUSD")
	require.NoError(t, repo.SaveRun(ctx, run, trades))

	for _, tr := range trades {
		assert.Greater(t, tr.ID, int64(0))
		assert.Equal(t, "run-1", tr.RunID)
	}

	found, err := repo.FindRun(ctx, "run-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "EURUSD", found.Symbol)
	assert.True(t, started.Equal(found.StartedAt))
	assert.Equal(t, 1440, found.Bars)
	assert.Equal(t, 2, found.TotalTrades)
	assert.Equal(t, 50.0, found.WinRate)
	assert.Equal(t, -20.0, found.TotalPips)
	assert.Equal(t, 0.2, found.ProfitFactor)
	assert.False(t, found.ProfitFactorUnbounded)
	assert.Equal(t, "07:00-08:29", found.Params["rangeWindow"])
	assert.Equal(t, 12.0, found.Params["fastPeriod"]) // JSON numbers decode as float64

	got, err := repo.FindTradesByRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.Short, got[0].Direction)
	assert.Equal(t, domain.ExitReasonTarget, got[0].ExitReason)
	assert.Equal(t, domain.TrendDown, got[0].Trend)
	assert.True(t, trades[0].EntryTime.Equal(got[0].EntryTime))
	assert.Equal(t, 1.1047, got[0].EntryPrice)
	assert.Equal(t, 5.0, got[0].Pips)
	assert.False(t, got[0].PolicyResolved)
	assert.Equal(t, domain.ExitReasonStop, got[1].ExitReason)
	assert.True(t, got[1].PolicyResolved)
	assert.Equal(t, domain.TrendUnknown, got[1].Trend)
}

func TestRepository_FindRunNotFound(t *testing.T) {
	repo := setupTestDB(t)

	found, err := repo.FindRun(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, found)

	trades, err := repo.FindTradesByRun(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Empty(t, trades)
}

func TestRepository_UnboundedProfitFactor(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	run := testRun("run-inf", "EURUSD", time.Now())
	run.ProfitFactor = math.Inf(1)
	run.ProfitFactorUnbounded = true
	require.NoError(t, repo.SaveRun(ctx, run, nil))

	found, err := repo.FindRun(ctx, "run-inf")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.ProfitFactorUnbounded)
	assert.True(t, math.IsInf(found.ProfitFactor, 1))
}

func TestRepository_DuplicateRun(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	run := testRun("run-dup", "EURUSD", time.Now())
	require.NoError(t, repo.SaveRun(ctx, run, testTrades("EURUSD")))

	err := repo.SaveRun(ctx, run, testTrades("EURUSD"))
	assert.ErrorIs(t, err, ports.ErrDuplicateEntry)

	// The failed save must not leave trades behind.
	trades, err := repo.FindTradesByRun(ctx, "run-dup")
	require.NoError(t, err)
	assert.Len(t, trades, 2)
}

func TestRepository_FindRuns(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveRun(ctx, testRun("a", "EURUSD", base), nil))
	require.NoError(t, repo.SaveRun(ctx, testRun("b", "GBPUSD", base.Add(time.Minute)), nil))
	require.NoError(t, repo.SaveRun(ctx, testRun("c", "EURUSD", base.Add(2*time.Minute)), nil))

	tests := []struct {
		name    string
		symbol  string
		limit   int
		wantIDs []string
	}{
		{name: "all symbols newest first", limit: 0, wantIDs: []string{"c", "b", "a"}},
		{name: "filtered by symbol", symbol: "EURUSD", limit: 10, wantIDs: []string{"c", "a"}},
		{name: "limited", limit: 1, wantIDs: []string{"c"}},
		{name: "unknown symbol", symbol: "USDJPY", limit: 10, wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := repo.FindRuns(ctx, tt.symbol, tt.limit)
			require.NoError(t, err)
			ids := make([]string, 0, len(runs))
			for _, r := range runs {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestNewRepository_RequiresLogger(t *testing.T) {
	_, err := NewRepository(Config{DBPath: filepath.Join(t.TempDir(), "x.db")})
	assert.Error(t, err)
}
