package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visitedAt(t time.Time) *Date {
	d := NewDate(t)
	return &d
}

func TestFilterByTimeframe_NonePassesAllThrough(t *testing.T) {
	patients := []Patient{{ID: 1}, {ID: 2}}

	out := FilterByTimeframe(patients, TimeframeNone, time.Now())

	assert.Equal(t, patients, out)
}

func TestFilterByTimeframe_Today(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	today := Patient{ID: 1, LastVisitDate: visitedAt(time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC))}
	yesterday := Patient{ID: 2, LastVisitDate: visitedAt(time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC))}

	out := FilterByTimeframe([]Patient{today, yesterday}, TimeframeToday, now)

	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].ID)
}

func TestFilterByTimeframe_ThisWeekInclusive(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	boundary := Patient{ID: 1, LastVisitDate: visitedAt(now.AddDate(0, 0, -7))}
	older := Patient{ID: 2, LastVisitDate: visitedAt(now.AddDate(0, 0, -8))}

	out := FilterByTimeframe([]Patient{boundary, older}, TimeframeThisWeek, now)

	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].ID)
}

func TestFilterByTimeframe_ThisMonth(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	sameMonth := Patient{ID: 1, LastVisitDate: visitedAt(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))}
	lastMonth := Patient{ID: 2, LastVisitDate: visitedAt(time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC))}
	lastYear := Patient{ID: 3, LastVisitDate: visitedAt(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))}

	out := FilterByTimeframe([]Patient{sameMonth, lastMonth, lastYear}, TimeframeThisMonth, now)

	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].ID)
}

func TestFilterByTimeframe_NilVisitNeverMatches(t *testing.T) {
	now := time.Now()
	never := Patient{ID: 1}

	for _, tf := range []Timeframe{TimeframeToday, TimeframeThisWeek, TimeframeThisMonth} {
		out := FilterByTimeframe([]Patient{never}, tf, now)
		assert.Empty(t, out, "timeframe %q", tf)
	}
}
