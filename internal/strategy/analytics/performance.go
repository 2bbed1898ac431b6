package analytics

import (
	"math"
	"sort"
	"time"

	"rangeBreakout/internal/domain"
)

// Summary holds the aggregate statistics of a set of closed trades, in pips
type Summary struct {
	// Basic Metrics
	TotalTrades     int
	WinningTrades   int
	LosingTrades    int
	WinRate         float64 // Percent, 0 when there are no trades
	NoTrades        bool
	TotalPips       float64
	AverageWinPips  float64
	AverageLossPips float64 // Negative or zero

	// ProfitFactor is gross win pips over absolute gross loss pips. It is +Inf
	// when there are wins but no loss pips, and 0 without trades.
	ProfitFactor          float64
	ProfitFactorUnbounded bool

	ExitReasons map[domain.ExitReason]int
	Directions  map[domain.Direction]int
	Trends      map[domain.Trend]int

	Unresolved     int // Open at the end of the input and excluded
	PolicyResolved int // Open at the end of the input and converted by policy

	// Advanced Metrics
	MaxConsecutiveWins   int
	MaxConsecutiveLosses int
	MaxDrawdownPips      float64
	AverageTradeDuration time.Duration
	Expectancy           float64 // Mean pips per trade
	AverageRangePips     float64
	MonthlyPips          map[string]float64
	EquityCurve          []EquityPoint
}

// EquityPoint represents a point on the cumulative pip curve
type EquityPoint struct {
	Time     time.Time
	Pips     float64
	Drawdown float64
}

// Summarize aggregates trades. excluded is the number of unresolved positions that
// were dropped by the policy.
func Summarize(trades []*domain.Trade, excluded int, pipSize float64) *Summary {
	s := &Summary{
		ExitReasons: make(map[domain.ExitReason]int),
		Directions:  make(map[domain.Direction]int),
		Trends:      make(map[domain.Trend]int),
		MonthlyPips: make(map[string]float64),
		EquityCurve: make([]EquityPoint, 0, len(trades)),
		Unresolved:  excluded,
	}

	if len(trades) == 0 {
		s.NoTrades = true
		return s
	}

	ordered := make([]*domain.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].EntryTime.Before(ordered[j].EntryTime)
	})

	var grossWin, grossLoss, rangePips float64
	var cumulative, peak float64
	var consecutiveWins, consecutiveLosses int
	var totalDuration time.Duration

	for _, trade := range ordered {
		s.TotalTrades++
		s.ExitReasons[trade.ExitReason]++
		s.Directions[trade.Direction]++
		if trade.Trend != domain.TrendUnknown {
			s.Trends[trade.Trend]++
		}
		if trade.PolicyResolved {
			s.PolicyResolved++
		}

		if trade.IsWin() {
			s.WinningTrades++
			grossWin += trade.Pips
			consecutiveWins++
			consecutiveLosses = 0
		} else {
			s.LosingTrades++
			grossLoss += trade.Pips
			consecutiveLosses++
			consecutiveWins = 0
		}
		s.MaxConsecutiveWins = max(s.MaxConsecutiveWins, consecutiveWins)
		s.MaxConsecutiveLosses = max(s.MaxConsecutiveLosses, consecutiveLosses)

		s.TotalPips += trade.Pips
		s.MonthlyPips[trade.ExitTime.Format("2006-01")] += trade.Pips
		totalDuration += trade.Duration()
		rangePips += PriceToPips(trade.RangeHigh-trade.RangeLow, pipSize)

		cumulative += trade.Pips
		peak = math.Max(peak, cumulative)
		drawdown := peak - cumulative
		s.MaxDrawdownPips = math.Max(s.MaxDrawdownPips, drawdown)
		s.EquityCurve = append(s.EquityCurve, EquityPoint{
			Time:     trade.ExitTime,
			Pips:     cumulative,
			Drawdown: drawdown,
		})
	}

	n := float64(s.TotalTrades)
	s.WinRate = float64(s.WinningTrades) / n * 100
	s.Expectancy = s.TotalPips / n
	s.AverageTradeDuration = totalDuration / time.Duration(s.TotalTrades)
	s.AverageRangePips = rangePips / n
	if s.WinningTrades > 0 {
		s.AverageWinPips = grossWin / float64(s.WinningTrades)
	}
	if s.LosingTrades > 0 {
		s.AverageLossPips = grossLoss / float64(s.LosingTrades)
	}

	switch {
	case grossLoss != 0:
		s.ProfitFactor = grossWin / math.Abs(grossLoss)
	case grossWin > 0:
		s.ProfitFactor = math.Inf(1)
		s.ProfitFactorUnbounded = true
	}

	return s
}

// Fields returns the headline statistics as log fields.
func (s *Summary) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"trades":       s.TotalTrades,
		"wins":         s.WinningTrades,
		"losses":       s.LosingTrades,
		"winRate":      s.WinRate,
		"totalPips":    s.TotalPips,
		"avgWinPips":   s.AverageWinPips,
		"avgLossPips":  s.AverageLossPips,
		"profitFactor": s.ProfitFactor,
		"unresolved":   s.Unresolved,
		"maxDrawdown":  s.MaxDrawdownPips,
	}
	if s.NoTrades {
		fields["note"] = "no trades"
	}
	return fields
}

// GetMonthlyPips returns the monthly results as a sorted slice
func (s *Summary) GetMonthlyPips() []MonthlyPips {
	months := make([]MonthlyPips, 0, len(s.MonthlyPips))
	for month, pips := range s.MonthlyPips {
		date, _ := time.Parse("2006-01", month)
		months = append(months, MonthlyPips{Month: date, Pips: pips})
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].Month.Before(months[j].Month)
	})
	return months
}

// MonthlyPips represents the pip result of one month
type MonthlyPips struct {
	Month time.Time
	Pips  float64
}
