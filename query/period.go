package query

import (
	"strings"
	"time"
)

// TimeRange selects the wall-clock interval a usage query covers.
type TimeRange string

const (
	Today     TimeRange = "today"
	Yesterday TimeRange = "yesterday"
	Week      TimeRange = "week"
	Month     TimeRange = "month"
)

const sqlTimeLayout = "2006-01-02 15:04:05"

// ParseTimeRange maps a request value to a TimeRange. Unknown values fall back to Today.
func ParseTimeRange(s string) TimeRange {
	switch r := TimeRange(strings.ToLower(strings.TrimSpace(s))); r {
	case Today, Yesterday, Week, Month:
		return r
	}
	return Today
}

// Window is a half-open interval [Start, End). A zero End means "up to now".
type Window struct {
	Start time.Time
	End   time.Time
}

// Window resolves the range against now, in now's location.
// Week and month are trailing 7 and 30 day windows, not calendar aligned.
func (r TimeRange) Window(now time.Time) Window {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch r {
	case Yesterday:
		return Window{Start: midnight.AddDate(0, 0, -1), End: midnight}
	case Week:
		return Window{Start: now.AddDate(0, 0, -7)}
	case Month:
		return Window{Start: now.AddDate(0, 0, -30)}
	default:
		return Window{Start: midnight}
	}
}

func (w Window) Contains(t time.Time) bool {
	if t.Before(w.Start) {
		return false
	}
	return w.End.IsZero() || t.Before(w.End)
}

// Predicate renders the window as a SQL condition on a timestamp column.
// Timestamps are compared in UTC through sqlite's datetime().
func (w Window) Predicate(column string) (string, []any) {
	cond := "datetime(" + column + ") >= datetime(?)"
	args := []any{w.Start.UTC().Format(sqlTimeLayout)}
	if !w.End.IsZero() {
		cond += " AND datetime(" + column + ") < datetime(?)"
		args = append(args, w.End.UTC().Format(sqlTimeLayout))
	}
	return cond, args
}
