package analytics

import (
	"time"

	"finsight/internal/core"
)

// Canonical period tokens. Longer synonyms (weekly, monthly, quarterly,
// yearly) are accepted on input and normalized here; everything downstream
// sees only the short form.
const (
	PeriodWeek    = "week"
	PeriodMonth   = "month"
	PeriodQuarter = "quarter"
	PeriodYear    = "year"
	PeriodAll     = "all"
)

const dateLayout = "2006-01-02"

// epoch is the lower bound for the "all" period.
var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// NormalizePeriod maps synonym tokens to the canonical set. Unknown tokens
// fall back to "month".
func NormalizePeriod(token string) string {
	switch token {
	case PeriodWeek, "weekly":
		return PeriodWeek
	case PeriodMonth, "monthly", "":
		return PeriodMonth
	case PeriodQuarter, "quarterly":
		return PeriodQuarter
	case PeriodYear, "yearly", "annual":
		return PeriodYear
	case PeriodAll, "alltime", "all_time":
		return PeriodAll
	default:
		return PeriodMonth
	}
}

// ResolvePeriod maps a symbolic period token, plus optional explicit bounds,
// into a concrete date window ending at now.
//
// Explicit startDate/endDate strings, when both parse as ISO dates, override
// the computed window entirely. A supplied bound that fails to parse is a
// ValidationError. No side effects.
func ResolvePeriod(token, startDate, endDate string, now time.Time) (core.DateWindow, error) {
	if startDate != "" || endDate != "" {
		var start, end time.Time
		if startDate != "" {
			t, err := time.Parse(dateLayout, startDate)
			if err != nil {
				return core.DateWindow{}, core.NewValidationError("startDate", "not a valid ISO date: "+startDate)
			}
			start = t
		}
		if endDate != "" {
			t, err := time.Parse(dateLayout, endDate)
			if err != nil {
				return core.DateWindow{}, core.NewValidationError("endDate", "not a valid ISO date: "+endDate)
			}
			end = t
		}
		if !start.IsZero() && !end.IsZero() {
			if end.Before(start) {
				return core.DateWindow{}, core.NewValidationError("endDate", "end date before start date")
			}
			return core.DateWindow{Start: start, End: end}, nil
		}
		// Only one bound supplied: fall through to the token window and
		// override the matching side.
		w := tokenWindow(NormalizePeriod(token), now)
		if !start.IsZero() {
			w.Start = start
		}
		if !end.IsZero() {
			w.End = end
		}
		return w, nil
	}

	return tokenWindow(NormalizePeriod(token), now), nil
}

func tokenWindow(token string, now time.Time) core.DateWindow {
	switch token {
	case PeriodWeek:
		// Start of the current week, Sunday.
		day := now.AddDate(0, 0, -int(now.Weekday()))
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, now.Location())
		return core.DateWindow{Start: start, End: now}
	case PeriodQuarter:
		return core.DateWindow{Start: now.AddDate(0, -3, 0), End: now}
	case PeriodYear:
		return core.DateWindow{Start: now.AddDate(-1, 0, 0), End: now}
	case PeriodAll:
		return core.DateWindow{Start: epoch, End: now}
	default:
		return core.DateWindow{Start: now.AddDate(0, -1, 0), End: now}
	}
}
