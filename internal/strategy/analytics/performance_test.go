package analytics

import (
	"math"
	"testing"
	"time"

	"rangeBreakout/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trade(day int, dir domain.Direction, pips float64, reason domain.ExitReason) *domain.Trade {
	entry := time.Date(2024, 3, day, 8, 35, 0, 0, time.UTC)
	return &domain.Trade{
		Symbol:     "EURUSD",
		Direction:  dir,
		EntryTime:  entry,
		ExitTime:   entry.Add(30 * time.Minute),
		ExitReason: reason,
		RangeHigh:  1.1050,
		RangeLow:   1.1000,
		Pips:       pips,
	}
}

func TestSummarize_NoTrades(t *testing.T) {
	s := Summarize(nil, 0, 0.0001)
	assert.True(t, s.NoTrades)
	assert.Equal(t, 0, s.TotalTrades)
	assert.Equal(t, 0.0, s.WinRate)
	assert.Equal(t, 0.0, s.ProfitFactor)
	assert.False(t, s.ProfitFactorUnbounded)
	assert.Equal(t, "no trades", s.Fields()["note"])
}

func TestSummarize_WinAndLoss(t *testing.T) {
	trades := []*domain.Trade{
		trade(5, domain.Long, -25, domain.ExitReasonStop),
		trade(4, domain.Short, 5, domain.ExitReasonTarget),
	}

	s := Summarize(trades, 1, 0.0001)
	assert.False(t, s.NoTrades)
	assert.Equal(t, 2, s.TotalTrades)
	assert.Equal(t, 1, s.WinningTrades)
	assert.Equal(t, 1, s.LosingTrades)
	assert.InDelta(t, 50.0, s.WinRate, 1e-9)
	assert.InDelta(t, -20.0, s.TotalPips, 1e-9)
	assert.InDelta(t, 5.0, s.AverageWinPips, 1e-9)
	assert.InDelta(t, -25.0, s.AverageLossPips, 1e-9)
	assert.InDelta(t, 0.2, s.ProfitFactor, 1e-9)
	assert.InDelta(t, -10.0, s.Expectancy, 1e-9)
	assert.Equal(t, 1, s.Unresolved)

	assert.Equal(t, map[domain.ExitReason]int{domain.ExitReasonTarget: 1, domain.ExitReasonStop: 1}, s.ExitReasons)
	assert.Equal(t, map[domain.Direction]int{domain.Long: 1, domain.Short: 1}, s.Directions)

	// Equity curve follows entry order: +5 then -25.
	require.Len(t, s.EquityCurve, 2)
	assert.InDelta(t, 5.0, s.EquityCurve[0].Pips, 1e-9)
	assert.InDelta(t, -20.0, s.EquityCurve[1].Pips, 1e-9)
	assert.InDelta(t, 25.0, s.MaxDrawdownPips, 1e-9)

	assert.Equal(t, 30*time.Minute, s.AverageTradeDuration)
	assert.InDelta(t, 50.0, s.AverageRangePips, 1e-9)
	assert.Equal(t, 1, s.MaxConsecutiveWins)
	assert.Equal(t, 1, s.MaxConsecutiveLosses)

	// Input order is left untouched.
	assert.Equal(t, -25.0, trades[0].Pips)
}

func TestSummarize_ProfitFactorEdges(t *testing.T) {
	tests := []struct {
		name          string
		pips          []float64
		wantPF        float64
		wantUnbounded bool
		wantWins      int
	}{
		{name: "only wins", pips: []float64{5, 5}, wantPF: math.Inf(1), wantUnbounded: true, wantWins: 2},
		{name: "only losses", pips: []float64{-25}, wantPF: 0},
		{name: "zero pip trade is a loss", pips: []float64{0}, wantPF: 0},
		{name: "win and flat trade", pips: []float64{5, 0}, wantPF: math.Inf(1), wantUnbounded: true, wantWins: 1},
		{name: "two wins one loss", pips: []float64{5, 5, -25}, wantPF: 0.4, wantWins: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var trades []*domain.Trade
			for i, p := range tt.pips {
				trades = append(trades, trade(4+i, domain.Short, p, domain.ExitReasonSessionClose))
			}
			s := Summarize(trades, 0, 0.0001)
			assert.Equal(t, tt.wantUnbounded, s.ProfitFactorUnbounded)
			assert.Equal(t, tt.wantWins, s.WinningTrades)
			if tt.wantUnbounded {
				assert.True(t, math.IsInf(s.ProfitFactor, 1))
				return
			}
			assert.InDelta(t, tt.wantPF, s.ProfitFactor, 1e-9)
		})
	}
}

func TestSummarize_Streaks(t *testing.T) {
	pips := []float64{5, 5, 5, -25, -25, 5}
	var trades []*domain.Trade
	for i, p := range pips {
		trades = append(trades, trade(4+i, domain.Long, p, domain.ExitReasonTarget))
	}

	s := Summarize(trades, 0, 0.0001)
	assert.Equal(t, 3, s.MaxConsecutiveWins)
	assert.Equal(t, 2, s.MaxConsecutiveLosses)
	assert.InDelta(t, 50.0, s.MaxDrawdownPips, 1e-9)

	months := s.GetMonthlyPips()
	require.Len(t, months, 1)
	assert.InDelta(t, -30.0, months[0].Pips, 1e-9)
}

func TestSummarize_Trends(t *testing.T) {
	up := trade(4, domain.Short, 5, domain.ExitReasonTarget)
	up.Trend = domain.TrendUp
	unknown := trade(5, domain.Short, 5, domain.ExitReasonTarget)

	s := Summarize([]*domain.Trade{up, unknown}, 0, 0.0001)
	assert.Equal(t, map[domain.Trend]int{domain.TrendUp: 1}, s.Trends)
}
