package domain

import "time"

// Interval is a half-open date window [From, To). A nil To is open-ended.
type Interval struct {
	From time.Time
	To   *time.Time
}

// Contains reports whether the calendar date of t falls inside the window.
func (i Interval) Contains(t time.Time) bool {
	d := DateOf(t)
	if d.Before(i.From) {
		return false
	}
	return i.To == nil || d.Before(*i.To)
}

// Overlaps reports whether the two windows share at least one day.
// Touching windows ([a,b) and [b,c)) do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	// i.From < other.To && other.From < i.To, with nil meaning +infinity.
	if other.To != nil && !i.From.Before(*other.To) {
		return false
	}
	if i.To != nil && !other.From.Before(*i.To) {
		return false
	}
	return true
}
