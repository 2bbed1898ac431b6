package metrics

import (
	"fmt"
	"time"

	"rangeBreakout/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements ports.MetricsRecorder using Prometheus collectors held in a
// private registry.
type Recorder struct {
	registry   *prometheus.Registry
	trades     *prometheus.CounterVec
	tradePips  *prometheus.HistogramVec
	days       *prometheus.CounterVec
	unresolved *prometheus.GaugeVec
	totalPips  *prometheus.GaugeVec
	duration   *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		trades: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "range_breakout_trades_total",
				Help: "Closed trades by symbol, direction and exit reason",
			},
			[]string{"symbol", "direction", "reason"},
		),
		tradePips: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "range_breakout_trade_pips",
				Help:    "Pips gained or lost per trade",
				Buckets: []float64{-50, -25, -10, -5, 0, 5, 10, 25, 50},
			},
			[]string{"symbol"},
		),
		days: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "range_breakout_days_total",
				Help: "Processed calendar days by outcome",
			},
			[]string{"symbol", "outcome"},
		),
		unresolved: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "range_breakout_unresolved_positions",
				Help: "Positions still open when the input ended",
			},
			[]string{"symbol"},
		),
		totalPips: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "range_breakout_total_pips",
				Help: "Net pips of the last run",
			},
			[]string{"symbol"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "range_breakout_run_duration_seconds",
				Help:    "Wall time of a backtest run",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"symbol"},
		),
	}
}

// RecordTrade records a closed trade.
func (r *Recorder) RecordTrade(symbol string, trade *domain.Trade) {
	r.trades.WithLabelValues(symbol, string(trade.Direction), string(trade.ExitReason)).Inc()
	r.tradePips.WithLabelValues(symbol).Observe(trade.Pips)
}

// RecordDay records the outcome of one processed day.
func (r *Recorder) RecordDay(symbol, outcome string) {
	r.days.WithLabelValues(symbol, outcome).Inc()
}

// RecordUnresolved sets the number of positions left open by the last run.
func (r *Recorder) RecordUnresolved(symbol string, count int) {
	r.unresolved.WithLabelValues(symbol).Set(float64(count))
}

// ObserveRun records the duration and net result of a run.
func (r *Recorder) ObserveRun(symbol string, elapsed time.Duration, totalPips float64) {
	r.duration.WithLabelValues(symbol).Observe(elapsed.Seconds())
	r.totalPips.WithLabelValues(symbol).Set(totalPips)
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the current metrics in the text exposition format, ready
// for the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
