package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rangeBreakout/internal/strategy/optimization"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    optimization.ParameterRange
		wantErr bool
	}{
		{
			name:  "distance",
			input: "target_distance=0.0005:0.0020:0.0005",
			want:  optimization.ParameterRange{Name: "target_distance", Min: 0.0005, Max: 0.002, Step: 0.0005},
		},
		{
			name:  "integer period",
			input: "fast_period=8:16:2",
			want:  optimization.ParameterRange{Name: "fast_period", Min: 8, Max: 16, Step: 2},
		},
		{name: "missing name", input: "=1:2:1", wantErr: true},
		{name: "missing equals", input: "fast_period", wantErr: true},
		{name: "two parts", input: "fast_period=8:16", wantErr: true},
		{name: "not a number", input: "fast_period=8:x:2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRange(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRangeFlags(t *testing.T) {
	var f rangeFlags
	require.NoError(t, f.Set("fast_period=8:16:2"))
	require.NoError(t, f.Set("stop_distance=0.001:0.003:0.001"))
	assert.Len(t, f, 2)
	assert.Equal(t, "fast_period=8:16:2,stop_distance=0.001:0.003:0.001", f.String())
	assert.Error(t, f.Set("bad"))
}

func TestScoreFunction(t *testing.T) {
	_, err := scoreFunction("total", 0)
	assert.NoError(t, err)
	_, err = scoreFunction("expectancy", 5)
	assert.NoError(t, err)
	_, err = scoreFunction("sharpe", 0)
	assert.Error(t, err)
}
