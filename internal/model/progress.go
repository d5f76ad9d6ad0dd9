package model

import (
	"math"
	"time"
)

// Progress is the per-user summary derived from the carbon ledger.
type Progress struct {
	TotalCarbonSaved float64
	Streak           int
	LongestStreak    int
	LastActivityDate *time.Time
}

// Apply folds one ledger entry into the summary. The streak moves at most
// once per calendar day; entries older than LastActivityDate only add to the
// total.
func (p Progress) Apply(amount float64, day time.Time) Progress {
	p.TotalCarbonSaved += amount

	switch {
	case p.LastActivityDate == nil:
		p.Streak = 1
		p.LastActivityDate = &day
	default:
		gap := DaysBetween(*p.LastActivityDate, day)
		switch {
		case gap <= 0:
		case gap == 1:
			p.Streak++
			p.LastActivityDate = &day
		default:
			p.Streak = 1
			p.LastActivityDate = &day
		}
	}

	if p.Streak > p.LongestStreak {
		p.LongestStreak = p.Streak
	}

	return p
}

// Finite reports whether the running total is a representable number.
func (p Progress) Finite() bool {
	return !math.IsInf(p.TotalCarbonSaved, 0) && !math.IsNaN(p.TotalCarbonSaved)
}

// FoldLedger recomputes progress from entries in append order.
func FoldLedger(entries []CarbonLogEntry) Progress {
	var p Progress
	for _, e := range entries {
		p = p.Apply(e.Amount, e.ActivityDate)
	}
	return p
}

const totalTolerance = 1e-6

// Matches reports whether two summaries agree, allowing for float drift in
// the running total.
func (p Progress) Matches(other Progress) bool {
	if math.Abs(p.TotalCarbonSaved-other.TotalCarbonSaved) > totalTolerance {
		return false
	}
	if p.Streak != other.Streak || p.LongestStreak != other.LongestStreak {
		return false
	}
	switch {
	case p.LastActivityDate == nil && other.LastActivityDate == nil:
		return true
	case p.LastActivityDate == nil || other.LastActivityDate == nil:
		return false
	default:
		return p.LastActivityDate.Equal(*other.LastActivityDate)
	}
}

type Audit struct {
	Username   string
	Stored     Progress
	Derived    Progress
	Entries    int
	Consistent bool
}
