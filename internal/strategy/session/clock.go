package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time expressed as seconds since midnight.
type TimeOfDay int

const secondsPerDay = 24 * 60 * 60

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid time of day %q: want HH:MM or HH:MM:SS", s)
	}
	limits := []int{24, 60, 60}
	var values [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || v >= limits[i] {
			return 0, fmt.Errorf("invalid time of day %q", s)
		}
		values[i] = v
	}
	return TimeOfDay(values[0]*3600 + values[1]*60 + values[2]), nil
}

// MustParseTimeOfDay is ParseTimeOfDay for constants; it panics on malformed input.
func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// TimeOfDayOf returns the wall-clock time of t in its own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return TimeOfDay(h*3600 + m*60 + s)
}

func (t TimeOfDay) String() string {
	h := int(t) / 3600
	m := int(t) % 3600 / 60
	s := int(t) % 60
	if s == 0 {
		return fmt.Sprintf("%02d:%02d", h, m)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Window is a time-of-day interval, inclusive on both ends.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

// NewWindow parses both bounds of a window.
func NewWindow(start, end string) (Window, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: s, End: e}, nil
}

// MustWindow is NewWindow for constants.
func MustWindow(start, end string) Window {
	w, err := NewWindow(start, end)
	if err != nil {
		panic(err)
	}
	return w
}

// Contains reports whether t lies within the window.
func (w Window) Contains(t TimeOfDay) bool {
	return t >= w.Start && t <= w.End
}

// Valid reports whether the window is non-empty and within one day.
func (w Window) Valid() bool {
	return w.Start >= 0 && w.End < secondsPerDay && w.Start <= w.End
}

// Precedes reports whether w ends strictly before other starts.
func (w Window) Precedes(other Window) bool {
	return w.End < other.Start
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}

// DayOf returns midnight of the calendar day containing t in loc.
func DayOf(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	y, m, d := lt.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
