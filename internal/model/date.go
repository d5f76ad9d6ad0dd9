package model

import (
	"time"
)

const DateLayout = "2006-01-02"

// ordinalOfUnixEpoch is the proleptic Gregorian day number of 1970-01-01,
// counting 0001-01-01 as day 1.
const ordinalOfUnixEpoch = 719163

const secondsPerDay = 24 * 60 * 60

// DateOf returns the calendar day of t as observed in loc, as midnight UTC.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(dayNumber(b) - dayNumber(a))
}

// Ordinal returns the day number of d where 0001-01-01 is day 1.
func Ordinal(d time.Time) int64 {
	return dayNumber(d) + ordinalOfUnixEpoch
}

func dayNumber(d time.Time) int64 {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
}
