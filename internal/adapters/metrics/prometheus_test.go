package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"rangeBreakout/internal/domain"
	"rangeBreakout/internal/ports"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.MetricsRecorder = (*Recorder)(nil)

func TestRecorder(t *testing.T) {
	r := New()

	r.RecordTrade("EURUSD", &domain.Trade{Direction: domain.Short, ExitReason: domain.ExitReasonTarget, Pips: 5})
	r.RecordTrade("EURUSD", &domain.Trade{Direction: domain.Short, ExitReason: domain.ExitReasonTarget, Pips: 5})
	r.RecordTrade("EURUSD", &domain.Trade{Direction: domain.Long, ExitReason: domain.ExitReasonStop, Pips: -25})
	r.RecordDay("EURUSD", "TRADED")
	r.RecordDay("EURUSD", "NO_RANGE")
	r.RecordDay("EURUSD", "NO_RANGE")
	r.RecordUnresolved("EURUSD", 1)
	r.ObserveRun("EURUSD", 150*time.Millisecond, -15)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.trades.WithLabelValues("EURUSD", "SHORT", "TARGET")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.trades.WithLabelValues("EURUSD", "LONG", "STOP")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.days.WithLabelValues("EURUSD", "NO_RANGE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.unresolved.WithLabelValues("EURUSD")))
	assert.Equal(t, -15.0, testutil.ToFloat64(r.totalPips.WithLabelValues("EURUSD")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.tradePips))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := New()
	r.RecordDay("GBPUSD", "NO_BREAKOUT")

	path := filepath.Join(t.TempDir(), "range_breakout.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `range_breakout_days_total{outcome="NO_BREAKOUT",symbol="GBPUSD"} 1`)
}

func TestRecorder_Isolated(t *testing.T) {
	a, b := New(), New()
	a.RecordDay("EURUSD", "TRADED")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.days.WithLabelValues("EURUSD", "TRADED")))
}
