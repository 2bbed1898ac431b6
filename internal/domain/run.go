package domain

import "time"

// RunRecord is the persisted summary of one backtest run.
type RunRecord struct {
	ID                    string
	Symbol                string
	StartedAt             time.Time
	FinishedAt            time.Time
	Params                map[string]interface{}
	Bars                  int
	TotalTrades           int
	WinningTrades         int
	LosingTrades          int
	WinRate               float64
	TotalPips             float64
	ProfitFactor          float64
	ProfitFactorUnbounded bool
	Unresolved            int
}
