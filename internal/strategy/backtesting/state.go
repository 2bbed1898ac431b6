package backtesting

import (
	"time"

	"rangeBreakout/internal/domain"
	"rangeBreakout/internal/risk"
)

// State is the position state of the current day: Idle, Awaiting or Open.
type State interface {
	isState()
}

// Idle waits for the day's breakout.
type Idle struct{}

// Awaiting holds an armed setup until a matching crossover confirms it.
type Awaiting struct {
	Breakout      domain.BreakoutEvent
	BreakoutIndex int
}

// Open tracks an entered position until one of its levels is touched.
type Open struct {
	Position   domain.OpenPosition
	Bracket    risk.Bracket
	EntryIndex int
}

func (Idle) isState()     {}
func (Awaiting) isState() {}
func (Open) isState()     {}

// DayOutcome summarises what happened on one calendar day.
type DayOutcome string

const (
	OutcomeNoRange      DayOutcome = "NO_RANGE"
	OutcomeNoBreakout   DayOutcome = "NO_BREAKOUT"
	OutcomeSetupExpired DayOutcome = "SETUP_EXPIRED"
	OutcomeTraded       DayOutcome = "TRADED"
	OutcomeOpenAtEnd    DayOutcome = "OPEN_AT_END"
)

// DayReport is the per-day diagnostic of a run.
type DayReport struct {
	Date     time.Time
	Bars     int
	Outcome  DayOutcome
	Range    *domain.DailyRange
	Breakout *domain.BreakoutEvent
}
