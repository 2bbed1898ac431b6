package indicators

import (
	"fmt"
	"iter"

	"rangeBreakout/internal/domain"
)

// MACDConfig holds the three EMA periods of the MACD.
type MACDConfig struct {
	FastPeriod   int
	SlowPeriod   int
	SignalPeriod int
}

// MACDValue is one aligned output of the MACD.
type MACDValue struct {
	MACD      float64
	Signal    float64
	Histogram float64
	Ready     bool // Warm-up consumed
}

// MACD computes the moving average convergence/divergence of a close series.
type MACD struct {
	config MACDConfig
	warmup int
}

// NewMACD validates the periods and creates the indicator.
func NewMACD(config MACDConfig) (*MACD, error) {
	if config.FastPeriod <= 0 || config.SlowPeriod <= 0 || config.SignalPeriod <= 0 {
		return nil, fmt.Errorf("MACD periods must be positive, got %d/%d/%d",
			config.FastPeriod, config.SlowPeriod, config.SignalPeriod)
	}
	if config.FastPeriod >= config.SlowPeriod {
		return nil, fmt.Errorf("MACD fast period (%d) must be less than slow period (%d)",
			config.FastPeriod, config.SlowPeriod)
	}
	return &MACD{
		config: config,
		warmup: max(config.FastPeriod, config.SlowPeriod, config.SignalPeriod),
	}, nil
}

// Name returns the name of the indicator
func (m *MACD) Name() string {
	return fmt.Sprintf("MACD(%d,%d,%d)", m.config.FastPeriod, m.config.SlowPeriod, m.config.SignalPeriod)
}

// RequiredDataPoints returns the warm-up length.
func (m *MACD) RequiredDataPoints() int {
	return m.warmup
}

// Series yields the MACD value for every close. Each iteration starts from scratch.
func (m *MACD) Series(closes []float64) iter.Seq2[int, MACDValue] {
	return func(yield func(int, MACDValue) bool) {
		fast := NewEMA(m.config.FastPeriod)
		slow := NewEMA(m.config.SlowPeriod)
		signal := NewEMA(m.config.SignalPeriod)
		for i, c := range closes {
			line := fast.Update(c) - slow.Update(c)
			sig := signal.Update(line)
			v := MACDValue{
				MACD:      line,
				Signal:    sig,
				Histogram: line - sig,
				Ready:     i+1 >= m.warmup,
			}
			if !yield(i, v) {
				return
			}
		}
	}
}

// Compute returns the full MACD series for closes.
func (m *MACD) Compute(closes []float64) []MACDValue {
	out := make([]MACDValue, 0, len(closes))
	for _, v := range m.Series(closes) {
		out = append(out, v)
	}
	return out
}

// Crossovers returns the crossover completed at each index of closes.
func (m *MACD) Crossovers(closes []float64) []domain.Crossover {
	values := m.Compute(closes)
	out := make([]domain.Crossover, len(values))
	for i := range values {
		out[i] = CrossAt(values, i)
	}
	return out
}

// CrossAt classifies the crossing between values[i-1] and values[i].
// Both values must be past warm-up.
func CrossAt(values []MACDValue, i int) domain.Crossover {
	if i < 1 || i >= len(values) {
		return domain.CrossNone
	}
	prev, cur := values[i-1], values[i]
	if !prev.Ready || !cur.Ready {
		return domain.CrossNone
	}
	switch {
	case cur.MACD > cur.Signal && prev.MACD <= prev.Signal:
		return domain.CrossBullish
	case cur.MACD < cur.Signal && prev.MACD >= prev.Signal:
		return domain.CrossBearish
	}
	return domain.CrossNone
}
