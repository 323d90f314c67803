package core

import "time"

// DateWindow is a concrete reporting interval, half-open on the end.
// A zero bound means "unbounded on that side". Windows are ephemeral
// and never persisted.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window ([Start, End)).
func (w DateWindow) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && !t.Before(w.End) {
		return false
	}
	return true
}

// Days returns the window length in whole days, at least 1 for bounded
// non-empty windows so per-day rates never divide by zero.
func (w DateWindow) Days() int {
	if w.Start.IsZero() || w.End.IsZero() {
		return 0
	}
	d := int(w.End.Sub(w.Start).Hours() / 24)
	if d < 1 {
		return 1
	}
	return d
}
