package risk

import (
	"testing"
	"time"

	"rangeBreakout/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, precedence domain.ExitPrecedence) *RiskManager {
	t.Helper()
	m, err := NewRiskManager(RiskConfig{StopDistance: 0.0025, TargetDistance: 0.0005, Precedence: precedence})
	require.NoError(t, err)
	return m
}

func TestNewRiskManager_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  RiskConfig
		wantErr bool
	}{
		{name: "valid", config: RiskConfig{StopDistance: 0.0025, TargetDistance: 0.0005}},
		{name: "zero stop", config: RiskConfig{TargetDistance: 0.0005}, wantErr: true},
		{name: "negative target", config: RiskConfig{StopDistance: 0.0025, TargetDistance: -1}, wantErr: true},
		{name: "unknown precedence", config: RiskConfig{StopDistance: 1, TargetDistance: 1, Precedence: "random"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewRiskManager(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.TargetFirst, m.config.Precedence, "defaults to target first")
		})
	}
}

func TestRiskManager_Bracket(t *testing.T) {
	m := newManager(t, domain.TargetFirst)

	long := m.Bracket(domain.Long, 1.1047)
	assert.Equal(t, 1.1022, long.Stop)
	assert.Equal(t, 1.1052, long.Target)
	assert.Less(t, long.Stop, long.Entry)
	assert.Greater(t, long.Target, long.Entry)

	short := m.Bracket(domain.Short, 1.1047)
	assert.Equal(t, 1.1072, short.Stop)
	assert.Equal(t, 1.1042, short.Target)
	assert.Less(t, short.Target, short.Entry)
	assert.Greater(t, short.Stop, short.Entry)
}

func TestRiskManager_Evaluate(t *testing.T) {
	bar := func(high, low float64) *domain.Bar {
		return &domain.Bar{Time: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), High: high, Low: low, Open: low, Close: high}
	}

	tests := []struct {
		name       string
		precedence domain.ExitPrecedence
		direction  domain.Direction
		bar        *domain.Bar
		wantHit    bool
		wantReason domain.ExitReason
		wantPrice  float64
	}{
		{
			name:      "short untouched",
			direction: domain.Short,
			bar:       bar(1.1049, 1.1044),
		},
		{
			name:       "short target",
			direction:  domain.Short,
			bar:        bar(1.1046, 1.1040),
			wantHit:    true,
			wantReason: domain.ExitReasonTarget,
			wantPrice:  1.1042,
		},
		{
			name:       "short target touched exactly",
			direction:  domain.Short,
			bar:        bar(1.1046, 1.1042),
			wantHit:    true,
			wantReason: domain.ExitReasonTarget,
			wantPrice:  1.1042,
		},
		{
			name:       "short stop",
			direction:  domain.Short,
			bar:        bar(1.1075, 1.1050),
			wantHit:    true,
			wantReason: domain.ExitReasonStop,
			wantPrice:  1.1072,
		},
		{
			name:       "long target",
			direction:  domain.Long,
			bar:        bar(1.1055, 1.1045),
			wantHit:    true,
			wantReason: domain.ExitReasonTarget,
			wantPrice:  1.1052,
		},
		{
			name:       "long stop",
			direction:  domain.Long,
			bar:        bar(1.1050, 1.1020),
			wantHit:    true,
			wantReason: domain.ExitReasonStop,
			wantPrice:  1.1022,
		},
		{
			name:       "both touched, target first",
			precedence: domain.TargetFirst,
			direction:  domain.Long,
			bar:        bar(1.1060, 1.1010),
			wantHit:    true,
			wantReason: domain.ExitReasonTarget,
			wantPrice:  1.1052,
		},
		{
			name:       "both touched, stop first",
			precedence: domain.StopFirst,
			direction:  domain.Short,
			bar:        bar(1.1080, 1.1030),
			wantHit:    true,
			wantReason: domain.ExitReasonStop,
			wantPrice:  1.1072,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newManager(t, tt.precedence)
			b := m.Bracket(tt.direction, 1.1047)
			reason, price, hit := m.Evaluate(b, tt.bar)
			assert.Equal(t, tt.wantHit, hit)
			assert.Equal(t, tt.wantReason, reason)
			assert.Equal(t, tt.wantPrice, price)
		})
	}
}
