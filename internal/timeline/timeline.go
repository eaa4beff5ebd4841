// Package timeline holds the pure date math behind the ROP package Gantt
// view: placing a date range on a timeline as fractions, and spreading a
// package quantity across its months with a procurement lead-time shift.
// Nothing here knows about rendering.
package timeline

import (
	"fmt"
	"time"
)

// Span is the placement of an event on a timeline, as fractions of the
// timeline's length. Offset is the event start, Width the event length;
// both are clamped to [0,1] so events partly outside the timeline render
// truncated rather than overflowing.
type Span struct {
	Offset float64
	Width  float64
}

// Place computes the span of [evStart, evEnd] on [tlStart, tlEnd].
func Place(tlStart, tlEnd, evStart, evEnd time.Time) (Span, error) {
	if !tlEnd.After(tlStart) {
		return Span{}, fmt.Errorf("timeline end must be after start")
	}
	if evEnd.Before(evStart) {
		return Span{}, fmt.Errorf("event end before event start")
	}

	total := tlEnd.Sub(tlStart).Seconds()
	start := evStart.Sub(tlStart).Seconds() / total
	end := evEnd.Sub(tlStart).Seconds() / total

	start = clamp01(start)
	end = clamp01(end)
	return Span{Offset: start, Width: end - start}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// MonthQty is a quantity attributed to one calendar month.
type MonthQty struct {
	Month time.Time // first day of the month, UTC
	Qty   float64
}

// monthStart truncates t to the first day of its month.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthsBetween counts calendar months from a's month to b's month,
// inclusive. Zero when b's month precedes a's.
func MonthsBetween(a, b time.Time) int {
	aStart, bStart := monthStart(a), monthStart(b)
	if bStart.Before(aStart) {
		return 0
	}
	years := bStart.Year() - aStart.Year()
	months := int(bStart.Month()) - int(aStart.Month())
	return years*12 + months + 1
}

// SpreadMonthly distributes total evenly across the calendar months of
// [start, end], then shifts the whole distribution earlier by leadMonths
// (procurement must land before the rollout month). A negative lead shifts
// later.
func SpreadMonthly(total float64, start, end time.Time, leadMonths int) ([]MonthQty, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("end before start")
	}
	n := MonthsBetween(start, end)
	per := total / float64(n)

	first := monthStart(start).AddDate(0, -leadMonths, 0)
	out := make([]MonthQty, n)
	for i := range out {
		out[i] = MonthQty{Month: first.AddDate(0, i, 0), Qty: per}
	}
	return out, nil
}
