package models

import (
	"testing"
	"time"

	"pgregory.net/rapid"
)

// genDate draws a valid calendar date between 1900 and 2200.
func genDate(t *rapid.T, label string) Date {
	base := NewDate(1900, time.January, 1)
	return AddDays(base, rapid.IntRange(0, 300*365).Draw(t, label))
}

// Formatting a date in either textual form and parsing it back yields the
// same day.
func TestProperty_DateRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := genDate(rt, "date")

		fromDMY, ok := ParseDate(d.DMY())
		if !ok || !fromDMY.Equal(d) {
			rt.Fatalf("ParseDate(DMY(%s)) = %s, %v", d, fromDMY, ok)
		}
		fromYMD, ok := ParseDate(d.YMD())
		if !ok || !fromYMD.Equal(d) {
			rt.Fatalf("ParseDate(YMD(%s)) = %s, %v", d, fromYMD, ok)
		}
	})
}

// DayDiff is invariant under shifting both ends by the same number of days.
func TestProperty_DayDiffShiftInvariance(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := genDate(rt, "start")
		e := genDate(rt, "end")
		n := rapid.IntRange(-5000, 5000).Draw(rt, "shift")

		before := DayDiff(s, e)
		after := DayDiff(AddDays(s, n), AddDays(e, n))
		if before != after {
			rt.Fatalf("DayDiff(%s, %s) = %d but shifted by %d gives %d", s, e, before, n, after)
		}
	})
}

// AddDays and DayDiff are inverse operations.
func TestProperty_AddDaysInverse(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := genDate(rt, "date")
		n := rapid.IntRange(-3000, 3000).Draw(rt, "n")
		if got := DayDiff(d, AddDays(d, n)); got != n {
			rt.Fatalf("DayDiff(d, AddDays(d, %d)) = %d", n, got)
		}
	})
}
