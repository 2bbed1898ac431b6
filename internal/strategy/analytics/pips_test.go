package analytics

import (
	"testing"
	"time"

	"rangeBreakout/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPips(t *testing.T) {
	tests := []struct {
		name      string
		direction domain.Direction
		entry     float64
		exit      float64
		pipSize   float64
		want      float64
	}{
		{name: "short target", direction: domain.Short, entry: 1.1047, exit: 1.1042, pipSize: 0.0001, want: 5},
		{name: "short stop", direction: domain.Short, entry: 1.1047, exit: 1.1072, pipSize: 0.0001, want: -25},
		{name: "long target", direction: domain.Long, entry: 1.1047, exit: 1.1052, pipSize: 0.0001, want: 5},
		{name: "long stop", direction: domain.Long, entry: 1.1047, exit: 1.1022, pipSize: 0.0001, want: -25},
		{name: "flat", direction: domain.Long, entry: 1.1047, exit: 1.1047, pipSize: 0.0001, want: 0},
		{name: "yen pairs", direction: domain.Long, entry: 151.20, exit: 151.35, pipSize: 0.01, want: 15},
		{name: "float noise is rounded", direction: domain.Short, entry: 1.1047, exit: 1.1047 + 0.0025, pipSize: 0.0001, want: -25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Pips(tt.direction, tt.entry, tt.exit, tt.pipSize))
		})
	}
}

func TestPriceToPips(t *testing.T) {
	assert.Equal(t, 50.0, PriceToPips(1.1050-1.1000, 0.0001))
}

func openShort() domain.OpenPosition {
	return domain.OpenPosition{
		Symbol:      "EURUSD",
		Direction:   domain.Short,
		EntryTime:   time.Date(2024, 3, 4, 8, 35, 0, 0, time.UTC),
		EntryPrice:  1.1047,
		StopPrice:   1.1072,
		TargetPrice: 1.1042,
		Range:       domain.DailyRange{High: 1.1050, Low: 1.1000},
		LastTime:    time.Date(2024, 3, 4, 16, 0, 0, 0, time.UTC),
		LastClose:   1.1046,
	}
}

func TestApplyUnresolvedPolicy(t *testing.T) {
	tests := []struct {
		name         string
		policy       domain.UnresolvedPolicy
		wantTrades   int
		wantExcluded int
		wantReason   domain.ExitReason
		wantPips     float64
	}{
		{name: "exclude", policy: domain.PolicyExclude, wantExcluded: 1},
		{name: "count as loss", policy: domain.PolicyCountAsLoss, wantTrades: 1, wantReason: domain.ExitReasonStop, wantPips: -25},
		{name: "count as win", policy: domain.PolicyCountAsWin, wantTrades: 1, wantReason: domain.ExitReasonTarget, wantPips: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trades, excluded := ApplyUnresolvedPolicy([]domain.OpenPosition{openShort()}, tt.policy, 0.0001)
			assert.Equal(t, tt.wantExcluded, excluded)
			require.Len(t, trades, tt.wantTrades)
			if tt.wantTrades == 0 {
				return
			}
			tr := trades[0]
			assert.True(t, tr.PolicyResolved)
			assert.Equal(t, tt.wantReason, tr.ExitReason)
			assert.Equal(t, tt.wantPips, tr.Pips)
			assert.Equal(t, openShort().LastTime, tr.ExitTime)
		})
	}
}

func TestApplyUnresolvedPolicy_Empty(t *testing.T) {
	trades, excluded := ApplyUnresolvedPolicy(nil, domain.PolicyCountAsLoss, 0.0001)
	assert.Empty(t, trades)
	assert.Zero(t, excluded)
}

func TestCloseTrade(t *testing.T) {
	exit := time.Date(2024, 3, 4, 8, 40, 0, 0, time.UTC)
	tr := CloseTrade(openShort(), exit, 1.1042, domain.ExitReasonTarget, 0.0001)
	assert.Equal(t, "EURUSD", tr.Symbol)
	assert.Equal(t, 5.0, tr.Pips)
	assert.True(t, tr.IsWin())
	assert.Equal(t, 5*time.Minute, tr.Duration())
	assert.Equal(t, 1.1050, tr.RangeHigh)
	assert.False(t, tr.PolicyResolved)
}
