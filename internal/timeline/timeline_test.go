package timeline_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"boqtrack/internal/timeline"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPlace_Fractions(t *testing.T) {
	// Event covering the middle half of the timeline.
	span, err := timeline.Place(
		date(2026, time.January, 1), date(2027, time.January, 1),
		date(2026, time.April, 2), date(2026, time.October, 1),
	)
	require.NoError(t, err)
	require.InDelta(t, 0.25, span.Offset, 0.01)
	require.InDelta(t, 0.50, span.Width, 0.01)
}

func TestPlace_ClampsOutsideTimeline(t *testing.T) {
	tlStart, tlEnd := date(2026, time.January, 1), date(2027, time.January, 1)

	span, err := timeline.Place(tlStart, tlEnd, date(2025, time.June, 1), date(2026, time.July, 2))
	require.NoError(t, err)
	require.Zero(t, span.Offset)
	require.InDelta(t, 0.5, span.Offset+span.Width, 0.01)

	span, err = timeline.Place(tlStart, tlEnd, date(2026, time.July, 2), date(2028, time.March, 1))
	require.NoError(t, err)
	require.InDelta(t, 0.5, span.Offset, 0.01)
	require.InDelta(t, 1.0, span.Offset+span.Width, 0.01)

	// Entirely outside.
	span, err = timeline.Place(tlStart, tlEnd, date(2024, time.January, 1), date(2025, time.January, 1))
	require.NoError(t, err)
	require.Zero(t, span.Offset)
	require.Zero(t, span.Width)
}

func TestPlace_InvalidInput(t *testing.T) {
	_, err := timeline.Place(date(2026, 1, 1), date(2026, 1, 1), date(2026, 2, 1), date(2026, 3, 1))
	require.Error(t, err)

	_, err = timeline.Place(date(2026, 1, 1), date(2027, 1, 1), date(2026, 3, 1), date(2026, 2, 1))
	require.Error(t, err)
}

func TestMonthsBetween(t *testing.T) {
	require.Equal(t, 1, timeline.MonthsBetween(date(2026, time.March, 5), date(2026, time.March, 28)))
	require.Equal(t, 4, timeline.MonthsBetween(date(2026, time.March, 15), date(2026, time.June, 2)))
	require.Equal(t, 13, timeline.MonthsBetween(date(2026, time.January, 1), date(2027, time.January, 31)))
	require.Zero(t, timeline.MonthsBetween(date(2026, time.June, 1), date(2026, time.March, 1)))
}

func TestSpreadMonthly_EvenSpread(t *testing.T) {
	spread, err := timeline.SpreadMonthly(120, date(2026, time.March, 10), date(2026, time.June, 20), 0)
	require.NoError(t, err)
	require.Len(t, spread, 4)

	sum := 0.0
	for i, m := range spread {
		require.Equal(t, date(2026, time.March+time.Month(i), 1), m.Month)
		require.InDelta(t, 30, m.Qty, 0.001)
		sum += m.Qty
	}
	require.InDelta(t, 120, sum, 0.001)
}

func TestSpreadMonthly_LeadTimeShiftsEarlier(t *testing.T) {
	spread, err := timeline.SpreadMonthly(90, date(2026, time.May, 1), date(2026, time.July, 31), 2)
	require.NoError(t, err)
	require.Len(t, spread, 3)
	require.Equal(t, date(2026, time.March, 1), spread[0].Month)
	require.Equal(t, date(2026, time.May, 1), spread[2].Month)
}

func TestSpreadMonthly_NegativeLeadShiftsLater(t *testing.T) {
	spread, err := timeline.SpreadMonthly(10, date(2026, time.May, 1), date(2026, time.May, 31), -1)
	require.NoError(t, err)
	require.Len(t, spread, 1)
	require.Equal(t, date(2026, time.June, 1), spread[0].Month)
}

func TestSpreadMonthly_InvalidRange(t *testing.T) {
	_, err := timeline.SpreadMonthly(10, date(2026, time.May, 1), date(2026, time.April, 1), 0)
	require.Error(t, err)
}
