package utils

import (
	"fmt"
	"io"
	"math"
	"sort"
	"text/tabwriter"
	"time"

	"rangeBreakout/internal/domain"
	"rangeBreakout/internal/strategy/analytics"
)

// FormatProfitFactor renders a profit factor, "inf" when it is unbounded.
func FormatProfitFactor(pf float64, unbounded bool) string {
	if unbounded || math.IsInf(pf, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", pf)
}

// WriteSummaryTable prints the statistics of a run as an aligned table.
func WriteSummaryTable(w io.Writer, symbol string, s *analytics.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Symbol\t%s\n", symbol)
	if s.NoTrades {
		fmt.Fprintf(tw, "Trades\t0 (no trades)\n")
	} else {
		fmt.Fprintf(tw, "Trades\t%d\n", s.TotalTrades)
	}
	fmt.Fprintf(tw, "Wins / Losses\t%d / %d\n", s.WinningTrades, s.LosingTrades)
	fmt.Fprintf(tw, "Win rate\t%.2f%%\n", s.WinRate)
	fmt.Fprintf(tw, "Total pips\t%.1f\n", s.TotalPips)
	fmt.Fprintf(tw, "Average win / loss\t%.1f / %.1f\n", s.AverageWinPips, s.AverageLossPips)
	fmt.Fprintf(tw, "Profit factor\t%s\n", FormatProfitFactor(s.ProfitFactor, s.ProfitFactorUnbounded))
	fmt.Fprintf(tw, "Expectancy\t%.2f pips\n", s.Expectancy)
	fmt.Fprintf(tw, "Max drawdown\t%.1f pips\n", s.MaxDrawdownPips)
	fmt.Fprintf(tw, "Max consecutive wins / losses\t%d / %d\n", s.MaxConsecutiveWins, s.MaxConsecutiveLosses)
	fmt.Fprintf(tw, "Average holding time\t%s\n", s.AverageTradeDuration.Round(time.Second))
	fmt.Fprintf(tw, "Unresolved (excluded)\t%d\n", s.Unresolved)
	fmt.Fprintf(tw, "Resolved by policy\t%d\n", s.PolicyResolved)

	reasons := make([]string, 0, len(s.ExitReasons))
	for r := range s.ExitReasons {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		fmt.Fprintf(tw, "Exit %s\t%d\n", r, s.ExitReasons[domain.ExitReason(r)])
	}
	for _, m := range s.GetMonthlyPips() {
		fmt.Fprintf(tw, "Month %s\t%.1f\n", m.Month.Format("2006-01"), m.Pips)
	}
	return tw.Flush()
}

// WriteRunsTable lists persisted runs, one per row.
func WriteRunsTable(w io.Writer, runs []*domain.RunRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSYMBOL\tSTARTED\tBARS\tTRADES\tWIN%\tPIPS\tPF\tUNRESOLVED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%.2f\t%.1f\t%s\t%d\n",
			r.ID, r.Symbol, r.StartedAt.Format(time.RFC3339), r.Bars, r.TotalTrades, r.WinRate,
			r.TotalPips, FormatProfitFactor(r.ProfitFactor, r.ProfitFactorUnbounded), r.Unresolved)
	}
	return tw.Flush()
}

// WriteTradesTable lists trades, one per row.
func WriteTradesTable(w io.Writer, trades []*domain.Trade) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ENTRY\tDIR\tENTRY PX\tEXIT\tEXIT PX\tREASON\tPIPS\tTREND")
	for _, t := range trades {
		reason := string(t.ExitReason)
		if t.PolicyResolved {
			reason += "*"
		}
		trend := string(t.Trend)
		if trend == "" {
			trend = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%.5f\t%s\t%.5f\t%s\t%.1f\t%s\n",
			t.EntryTime.Format("2006-01-02 15:04"), t.Direction, t.EntryPrice,
			t.ExitTime.Format("2006-01-02 15:04"), t.ExitPrice, reason, t.Pips, trend)
	}
	return tw.Flush()
}
