package domain

// Direction is the side of a setup or position.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// ExitReason indicates why a position was closed.
type ExitReason string

const (
	ExitReasonTarget       ExitReason = "TARGET"
	ExitReasonStop         ExitReason = "STOP"
	ExitReasonSessionClose ExitReason = "SESSION_CLOSE" // Last bar of the calendar day
)

// BreakKind identifies which side of the daily range was breached.
type BreakKind string

const (
	BreakHigh BreakKind = "HIGH_BREAK"
	BreakLow  BreakKind = "LOW_BREAK"
)

// UnresolvedPolicy decides how positions still open at the end of the input are reported.
type UnresolvedPolicy string

const (
	PolicyExclude     UnresolvedPolicy = "exclude"
	PolicyCountAsLoss UnresolvedPolicy = "count-as-loss"
	PolicyCountAsWin  UnresolvedPolicy = "count-as-win"
)

// Valid reports whether p is a known policy.
func (p UnresolvedPolicy) Valid() bool {
	switch p {
	case PolicyExclude, PolicyCountAsLoss, PolicyCountAsWin:
		return true
	}
	return false
}

// ExitPrecedence decides which level wins when one bar touches both stop and target.
type ExitPrecedence string

const (
	TargetFirst ExitPrecedence = "target-first"
	StopFirst   ExitPrecedence = "stop-first"
)

// Valid reports whether p is a known precedence.
func (p ExitPrecedence) Valid() bool {
	return p == TargetFirst || p == StopFirst
}

// BreakoutTrigger selects the bar price compared against the range bounds.
type BreakoutTrigger string

const (
	TriggerWick  BreakoutTrigger = "wick"  // high above range high / low below range low
	TriggerClose BreakoutTrigger = "close" // close outside the range
)

// Valid reports whether t is a known trigger.
func (t BreakoutTrigger) Valid() bool {
	return t == TriggerWick || t == TriggerClose
}

// Trend is the higher-timeframe direction attached to a trade.
type Trend string

const (
	TrendUnknown Trend = ""
	TrendUp      Trend = "UP"
	TrendDown    Trend = "DOWN"
)

// Crossover is a momentum line crossing its signal line.
type Crossover int

const (
	CrossNone Crossover = iota
	CrossBullish
	CrossBearish
)

// String returns the string representation of the Crossover.
func (c Crossover) String() string {
	switch c {
	case CrossBullish:
		return "BULLISH"
	case CrossBearish:
		return "BEARISH"
	default:
		return "NONE"
	}
}

// Confirms reports whether the crossover confirms a setup in direction d.
func (c Crossover) Confirms(d Direction) bool {
	return (d == Long && c == CrossBullish) || (d == Short && c == CrossBearish)
}
