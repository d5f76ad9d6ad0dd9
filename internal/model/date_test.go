package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestOrdinal(t *testing.T) {
	tests := []struct {
		date string
		want int64
	}{
		{"0001-01-01", 1},
		{"1900-03-01", 693655},
		{"1970-01-01", 719163},
		{"2024-01-01", 738886},
		{"2026-10-19", 739908},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, Ordinal(day(tt.date)))
		})
	}
}

func TestDateOf_UsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 03:30 UTC on the 2nd is still the 1st in New York.
	ts := time.Date(2026, 3, 2, 3, 30, 0, 0, time.UTC)

	assert.Equal(t, day("2026-03-02"), DateOf(ts, time.UTC))
	assert.Equal(t, day("2026-03-01"), DateOf(ts, loc))
	assert.Equal(t, day("2026-03-02"), DateOf(ts, nil))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(day("2026-01-10"), day("2026-01-10")))
	assert.Equal(t, 1, DaysBetween(day("2026-02-28"), day("2026-03-01")))
	assert.Equal(t, 2, DaysBetween(day("2024-02-28"), day("2024-03-01")))
	assert.Equal(t, -5, DaysBetween(day("2026-01-10"), day("2026-01-05")))
	assert.Equal(t, 1, DaysBetween(day("2025-12-31"), day("2026-01-01")))
}

func TestParseDate_Malformed(t *testing.T) {
	for _, s := range []string{"", "2026-13-01", "19-10-2026", "2026/10/19"} {
		_, err := ParseDate(s)
		assert.Error(t, err, s)
	}
}
