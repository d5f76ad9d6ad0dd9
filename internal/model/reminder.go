package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrUnknownFrequency = errors.New("unknown reminder frequency")

type Frequency string

const (
	FrequencyHourly Frequency = "hourly"
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

var intervals = map[Frequency]time.Duration{
	FrequencyHourly: time.Hour,
	FrequencyDaily:  24 * time.Hour,
	FrequencyWeekly: 7 * 24 * time.Hour,
}

func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := intervals[f]; !ok {
		return "", ErrUnknownFrequency
	}
	return f, nil
}

// Interval is zero for frequencies outside the enumeration.
func (f Frequency) Interval() time.Duration {
	return intervals[f]
}

type Reminder struct {
	ID           uuid.UUID
	UserID       int64
	Username     string
	Habit        string
	Frequency    Frequency
	Enabled      bool
	LastReminded *time.Time
	Version      int64
	CreatedAt    time.Time
}

// IsDue is a pure function of the stored state and now.
func (r *Reminder) IsDue(now time.Time) bool {
	if !r.Enabled {
		return false
	}
	if r.LastReminded == nil {
		return true
	}
	interval := r.Frequency.Interval()
	if interval <= 0 {
		return false
	}
	return now.Sub(*r.LastReminded) >= interval
}

// NextDueAt is nil when the reminder is disabled. A reminder that has never
// fired is due from its creation.
func (r *Reminder) NextDueAt() *time.Time {
	if !r.Enabled {
		return nil
	}
	if r.LastReminded == nil {
		at := r.CreatedAt
		return &at
	}
	at := r.LastReminded.Add(r.Frequency.Interval())
	return &at
}

type ReminderStatus struct {
	Reminder  *Reminder
	Due       bool
	NextDueAt *time.Time
}
