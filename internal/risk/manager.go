package risk

import (
	"fmt"

	"rangeBreakout/internal/domain"

	"github.com/shopspring/decimal"
)

// RiskConfig holds the fixed exit distances, in price units.
type RiskConfig struct {
	StopDistance   float64
	TargetDistance float64
	Precedence     domain.ExitPrecedence
}

// RiskManager places and evaluates stop/target brackets.
type RiskManager struct {
	config RiskConfig
	stop   decimal.Decimal
	target decimal.Decimal
}

// NewRiskManager creates a new risk manager instance
func NewRiskManager(config RiskConfig) (*RiskManager, error) {
	if config.StopDistance <= 0 {
		return nil, fmt.Errorf("stop distance must be positive, got %v", config.StopDistance)
	}
	if config.TargetDistance <= 0 {
		return nil, fmt.Errorf("target distance must be positive, got %v", config.TargetDistance)
	}
	if config.Precedence == "" {
		config.Precedence = domain.TargetFirst
	}
	if !config.Precedence.Valid() {
		return nil, fmt.Errorf("unknown exit precedence %q", config.Precedence)
	}
	return &RiskManager{
		config: config,
		stop:   decimal.NewFromFloat(config.StopDistance),
		target: decimal.NewFromFloat(config.TargetDistance),
	}, nil
}

// Bracket is the pair of exit levels around an entry.
type Bracket struct {
	Direction domain.Direction
	Entry     float64
	Stop      float64
	Target    float64
}

// Bracket computes the stop and target for an entry.
// LONG: stop below and target above the entry. SHORT mirrors it.
func (r *RiskManager) Bracket(direction domain.Direction, entry float64) Bracket {
	e := decimal.NewFromFloat(entry)
	var stop, target decimal.Decimal
	if direction == domain.Long {
		stop, target = e.Sub(r.stop), e.Add(r.target)
	} else {
		stop, target = e.Add(r.stop), e.Sub(r.target)
	}
	return Bracket{
		Direction: direction,
		Entry:     entry,
		Stop:      stop.InexactFloat64(),
		Target:    target.InexactFloat64(),
	}
}

// Evaluate checks whether bar touches either level of b. The exit price is the
// touched level. When both levels are touched the configured precedence decides.
func (r *RiskManager) Evaluate(b Bracket, bar *domain.Bar) (domain.ExitReason, float64, bool) {
	var targetHit, stopHit bool
	if b.Direction == domain.Long {
		targetHit = bar.High >= b.Target
		stopHit = bar.Low <= b.Stop
	} else {
		targetHit = bar.Low <= b.Target
		stopHit = bar.High >= b.Stop
	}

	switch {
	case targetHit && stopHit:
		if r.config.Precedence == domain.StopFirst {
			return domain.ExitReasonStop, b.Stop, true
		}
		return domain.ExitReasonTarget, b.Target, true
	case targetHit:
		return domain.ExitReasonTarget, b.Target, true
	case stopHit:
		return domain.ExitReasonStop, b.Stop, true
	}
	return "", 0, false
}
