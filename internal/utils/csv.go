package utils

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"rangeBreakout/internal/domain"
	"rangeBreakout/internal/ports"

	"github.com/shopspring/decimal"
)

// timestampLayouts are tried in order for single-column and combined date/time values.
var timestampLayouts = []string{
	"20060102 150405",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006.01.02 15:04:05",
	"2006.01.02 15:04",
	"20060102 15:04:05",
	"20060102 15:04",
	"02.01.2006 15:04:05.000",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
}

// barColumns holds the column indexes of a bar file. date is -1 when the timestamp
// lives in a single column.
type barColumns struct {
	date, time                     int
	open, high, low, close, volume int
}

// positional layouts without a header row
var (
	datetimeColumns = barColumns{date: -1, time: 0, open: 1, high: 2, low: 3, close: 4, volume: 5}
	dateTimeColumns = barColumns{date: 0, time: 1, open: 2, high: 3, low: 4, close: 5, volume: 6}
)

// ReadBarsFromCSV reads OHLCV bars from a delimited file. Timestamps without an
// offset are interpreted in loc (UTC when nil).
func ReadBarsFromCSV(filename string, loc *time.Location) ([]*domain.Bar, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open bar file %s: %w", filename, err)
	}
	defer file.Close()

	bars, err := ReadBars(file, loc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return bars, nil
}

// ReadBars reads bars from r. Three layouts are recognised:
//
//	Date,Time,Open,High,Low,Close[,Volume]       (header names are case-insensitive)
//	timestamp,open,high,low,close[,volume]       (also open_time, datetime, time)
//	20240304 083500;1.1047;1.1052;1.1045;1.1047;0 (no header, semicolon separated)
//
// The separator is detected from the first line.
func ReadBars(r io.Reader, loc *time.Location) ([]*domain.Bar, error) {
	if loc == nil {
		loc = time.UTC
	}
	br := bufio.NewReader(r)
	first, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read bar data: %w", err)
	}
	if strings.TrimSpace(first) == "" {
		return nil, nil
	}

	reader := csv.NewReader(io.MultiReader(strings.NewReader(first), br))
	reader.Comma = detectComma(first)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: line 1: %w", ports.ErrMalformedBar, err)
	}

	var cols barColumns
	var pending []string
	switch {
	case isTimestamp(header[0], loc):
		cols, pending = datetimeColumns, header
	case len(header) > 1 && isTimestamp(header[0]+" "+header[1], loc):
		cols, pending = dateTimeColumns, header
	default:
		cols, err = columnsFromHeader(header)
		if err != nil {
			return nil, err
		}
	}

	var bars []*domain.Bar
	line := 1
	if pending == nil {
		line++
	}
	for {
		record := pending
		pending = nil
		if record == nil {
			record, err = reader.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", ports.ErrMalformedBar, line, err)
			}
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			line++
			continue
		}
		bar, err := parseBar(record, cols, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ports.ErrMalformedBar, line, err)
		}
		bars = append(bars, bar)
		line++
	}
	return bars, nil
}

func detectComma(line string) rune {
	switch {
	case strings.Contains(line, ";"):
		return ';'
	case strings.Contains(line, "\t"):
		return '\t'
	default:
		return ','
	}
}

func columnsFromHeader(header []string) (barColumns, error) {
	cols := barColumns{date: -1, time: -1, open: -1, high: -1, low: -1, close: -1, volume: -1}
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	find := func(candidates ...string) int {
		for _, c := range candidates {
			for i, n := range names {
				if n == c {
					return i
				}
			}
		}
		return -1
	}
	// price columns may carry a suffix such as "close_eurusd"
	findPrefix := func(prefix string) int {
		if i := find(prefix); i >= 0 {
			return i
		}
		for i, n := range names {
			if strings.HasPrefix(n, prefix) && !strings.Contains(n, "time") {
				return i
			}
		}
		return -1
	}

	cols.date = find("date", "day")
	if cols.date >= 0 {
		cols.time = find("time")
	} else {
		cols.time = find("timestamp", "open_time", "datetime", "date_time", "gmt time", "local time", "time")
	}
	cols.open = findPrefix("open")
	cols.high = findPrefix("high")
	cols.low = findPrefix("low")
	cols.close = findPrefix("close")
	cols.volume = findPrefix("volume")

	var missing []string
	if cols.time < 0 {
		missing = append(missing, "time")
	}
	required := []struct {
		name string
		idx  int
	}{{"open", cols.open}, {"high", cols.high}, {"low", cols.low}, {"close", cols.close}}
	for _, r := range required {
		if r.idx < 0 {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("%w: header %q lacks columns: %s", ports.ErrInvalidBars, strings.Join(header, ","), strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseBar(record []string, cols barColumns, loc *time.Location) (*domain.Bar, error) {
	field := func(i int) (string, error) {
		if i >= len(record) {
			return "", fmt.Errorf("expected at least %d fields, got %d", i+1, len(record))
		}
		return strings.TrimSpace(record[i]), nil
	}

	ts, err := field(cols.time)
	if err != nil {
		return nil, err
	}
	if cols.date >= 0 {
		date, err := field(cols.date)
		if err != nil {
			return nil, err
		}
		ts = date + " " + ts
	}
	t, err := ParseTimestamp(ts, loc)
	if err != nil {
		return nil, err
	}

	bar := &domain.Bar{Time: t}
	prices := []struct {
		idx int
		dst *float64
	}{
		{cols.open, &bar.Open},
		{cols.high, &bar.High},
		{cols.low, &bar.Low},
		{cols.close, &bar.Close},
	}
	for _, p := range prices {
		s, err := field(p.idx)
		if err != nil {
			return nil, err
		}
		if *p.dst, err = parsePrice(s); err != nil {
			return nil, err
		}
	}
	if cols.volume >= 0 && cols.volume < len(record) && strings.TrimSpace(record[cols.volume]) != "" {
		if bar.Volume, err = parsePrice(strings.TrimSpace(record[cols.volume])); err != nil {
			return nil, err
		}
	}
	return bar, nil
}

func parsePrice(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return d.InexactFloat64(), nil
}

// ParseTimestamp parses s with the supported layouts, or as Unix seconds or
// milliseconds when it is an integer. Values without an offset are read in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && len(s) >= 9 {
		if n > 1e12 {
			return time.UnixMilli(n).In(loc), nil
		}
		return time.Unix(n, 0).In(loc), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func isTimestamp(s string, loc *time.Location) bool {
	_, err := ParseTimestamp(s, loc)
	return err == nil
}

// WriteBarsToCSV writes bars with an RFC 3339 timestamp column.
func WriteBarsToCSV(bars []*domain.Bar, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	writer.Write([]string{"timestamp", "open", "high", "low", "close", "volume"})

	for _, b := range bars {
		writer.Write([]string{
			b.Time.Format(time.RFC3339),
			formatFloat(b.Open),
			formatFloat(b.High),
			formatFloat(b.Low),
			formatFloat(b.Close),
			formatFloat(b.Volume),
		})
	}
	writer.Flush()
	return writer.Error()
}

var tradeHeader = []string{
	"run_id", "symbol", "direction", "entry_time", "entry_price", "exit_time", "exit_price",
	"exit_reason", "stop_price", "target_price", "range_high", "range_low", "pips", "trend", "policy_resolved",
}

// WriteTradesToCSV exports trades, one row per trade.
func WriteTradesToCSV(trades []*domain.Trade, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write(tradeHeader)
	for _, t := range trades {
		writer.Write([]string{
			t.RunID,
			t.Symbol,
			string(t.Direction),
			t.EntryTime.Format(time.RFC3339),
			formatFloat(t.EntryPrice),
			t.ExitTime.Format(time.RFC3339),
			formatFloat(t.ExitPrice),
			string(t.ExitReason),
			formatFloat(t.StopPrice),
			formatFloat(t.TargetPrice),
			formatFloat(t.RangeHigh),
			formatFloat(t.RangeLow),
			formatFloat(t.Pips),
			string(t.Trend),
			strconv.FormatBool(t.PolicyResolved),
		})
	}
	writer.Flush()
	return writer.Error()
}

// ReadTradesFromCSV reads a file written by WriteTradesToCSV.
func ReadTradesFromCSV(filename string) ([]*domain.Trade, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open trade file %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read trade file %s: %w", filename, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if len(records[0]) != len(tradeHeader) || records[0][0] != tradeHeader[0] {
		return nil, fmt.Errorf("%w: %s is not a trade export", ports.ErrInvalidRequest, filename)
	}

	trades := make([]*domain.Trade, 0, len(records)-1)
	for i, rec := range records[1:] {
		t, err := parseTrade(rec)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", filename, i+2, err)
		}
		trades = append(trades, t)
	}
	return trades, nil
}

func parseTrade(rec []string) (*domain.Trade, error) {
	t := &domain.Trade{
		RunID:      rec[0],
		Symbol:     rec[1],
		Direction:  domain.Direction(rec[2]),
		ExitReason: domain.ExitReason(rec[7]),
		Trend:      domain.Trend(rec[13]),
	}
	var err error
	if t.EntryTime, err = time.Parse(time.RFC3339, rec[3]); err != nil {
		return nil, fmt.Errorf("entry time: %w", err)
	}
	if t.ExitTime, err = time.Parse(time.RFC3339, rec[5]); err != nil {
		return nil, fmt.Errorf("exit time: %w", err)
	}
	floats := []struct {
		s   string
		dst *float64
	}{
		{rec[4], &t.EntryPrice},
		{rec[6], &t.ExitPrice},
		{rec[8], &t.StopPrice},
		{rec[9], &t.TargetPrice},
		{rec[10], &t.RangeHigh},
		{rec[11], &t.RangeLow},
		{rec[12], &t.Pips},
	}
	for _, f := range floats {
		if *f.dst, err = parsePrice(f.s); err != nil {
			return nil, err
		}
	}
	if t.PolicyResolved, err = strconv.ParseBool(rec[14]); err != nil {
		return nil, fmt.Errorf("policy_resolved: %w", err)
	}
	return t, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
