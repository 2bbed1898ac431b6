package indicators

import (
	"testing"
	"time"

	"rangeBreakout/internal/domain"

	"github.com/stretchr/testify/assert"
)

func barsFromCloses(values ...float64) []*domain.Bar {
	start := time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC)
	bars := make([]*domain.Bar, len(values))
	for i, v := range values {
		bars[i] = &domain.Bar{Time: start.Add(time.Duration(i) * time.Minute), Open: v, High: v, Low: v, Close: v}
	}
	return bars
}

func TestEMA(t *testing.T) {
	ema := NewEMA(3)
	assert.False(t, ema.Ready())

	assert.Equal(t, 10.0, ema.Update(10))
	assert.InDelta(t, 10.5, ema.Update(11), 1e-12)
	assert.False(t, ema.Ready())
	assert.InDelta(t, 11.25, ema.Update(12), 1e-12)
	assert.True(t, ema.Ready())
}

func TestEMA_ConvergesToConstant(t *testing.T) {
	ema := NewEMA(5)
	v := ema.Update(100)
	for i := 0; i < 200; i++ {
		v = ema.Update(50)
	}
	assert.InDelta(t, 50.0, v, 1e-9)
}
