package analytics

import (
	"time"

	"rangeBreakout/internal/domain"

	"github.com/shopspring/decimal"
)

// pipPrecision is the number of decimal places pip results are rounded to.
const pipPrecision = 6

// Pips converts a price move into pips, signed so that profit is positive for
// both directions.
func Pips(direction domain.Direction, entry, exit, pipSize float64) float64 {
	move := decimal.NewFromFloat(exit).Sub(decimal.NewFromFloat(entry))
	if direction == domain.Short {
		move = move.Neg()
	}
	return move.Div(decimal.NewFromFloat(pipSize)).Round(pipPrecision).InexactFloat64()
}

// PriceToPips converts a price distance into pips.
func PriceToPips(distance, pipSize float64) float64 {
	return decimal.NewFromFloat(distance).Div(decimal.NewFromFloat(pipSize)).Round(pipPrecision).InexactFloat64()
}

// CloseTrade turns an open position into a trade exiting at price.
func CloseTrade(pos domain.OpenPosition, exitTime time.Time, exitPrice float64, reason domain.ExitReason, pipSize float64) *domain.Trade {
	return &domain.Trade{
		Symbol:      pos.Symbol,
		Direction:   pos.Direction,
		EntryTime:   pos.EntryTime,
		EntryPrice:  pos.EntryPrice,
		ExitTime:    exitTime,
		ExitPrice:   exitPrice,
		ExitReason:  reason,
		StopPrice:   pos.StopPrice,
		TargetPrice: pos.TargetPrice,
		RangeHigh:   pos.Range.High,
		RangeLow:    pos.Range.Low,
		Pips:        Pips(pos.Direction, pos.EntryPrice, exitPrice, pipSize),
		Trend:       pos.Trend,
	}
}

// ApplyUnresolvedPolicy converts positions still open at the end of the input.
// It returns the converted trades and the number of positions excluded.
func ApplyUnresolvedPolicy(positions []domain.OpenPosition, policy domain.UnresolvedPolicy, pipSize float64) ([]*domain.Trade, int) {
	var trades []*domain.Trade
	excluded := 0
	for _, pos := range positions {
		var trade *domain.Trade
		switch policy {
		case domain.PolicyCountAsLoss:
			trade = CloseTrade(pos, pos.LastTime, pos.StopPrice, domain.ExitReasonStop, pipSize)
		case domain.PolicyCountAsWin:
			trade = CloseTrade(pos, pos.LastTime, pos.TargetPrice, domain.ExitReasonTarget, pipSize)
		default:
			excluded++
			continue
		}
		trade.PolicyResolved = true
		trades = append(trades, trade)
	}
	return trades, excluded
}
