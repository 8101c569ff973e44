package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const msPerDay = 24 * 60 * 60 * 1000

// Date is a calendar day held as a UTC midnight instant. The zero value means
// "no date" and is what unparseable input decodes to in tolerant paths.
type Date struct {
	t time.Time
}

// NewDate returns the calendar day year-month-day at UTC midnight. Out of
// range components roll over the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar day, using the instant's own
// location to pick the day.
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate accepts DD/MM/YYYY or YYYY-MM-DD. Components must satisfy
// year > 1000, 1 <= month <= 12 and 1 <= day <= 31; anything else is rejected.
func ParseDate(text string) (Date, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Date{}, false
	}

	if parts := strings.Split(text, "/"); len(parts) == 3 {
		day, month, year, ok := atoi3(parts[0], parts[1], parts[2])
		if ok && inRange(year, month, day) {
			return NewDate(year, time.Month(month), day), true
		}
	}
	if parts := strings.Split(text, "-"); len(parts) == 3 {
		year, month, day, ok := atoi3(parts[0], parts[1], parts[2])
		if ok && inRange(year, month, day) {
			return NewDate(year, time.Month(month), day), true
		}
	}
	return Date{}, false
}

// MustParseDate is ParseDate for literals known to be valid. It panics otherwise.
func MustParseDate(text string) Date {
	d, ok := ParseDate(text)
	if !ok {
		panic(fmt.Sprintf("models: invalid date %q", text))
	}
	return d
}

func atoi3(a, b, c string) (int, int, int, bool) {
	x, err1 := strconv.Atoi(strings.TrimSpace(a))
	y, err2 := strconv.Atoi(strings.TrimSpace(b))
	z, err3 := strconv.Atoi(strings.TrimSpace(c))
	return x, y, z, err1 == nil && err2 == nil && err3 == nil
}

func inRange(year, month, day int) bool {
	return year > 1000 && month >= 1 && month <= 12 && day >= 1 && day <= 31
}

// AddDays shifts d by n calendar days. n may be negative.
func AddDays(d Date, n int) Date {
	if d.IsZero() {
		return d
	}
	return Date{t: d.t.AddDate(0, 0, n)}
}

// DayDiff returns the number of calendar days from a to b (b - a). Either
// side being zero yields 0.
func DayDiff(a, b Date) int {
	if a.IsZero() || b.IsZero() {
		return 0
	}
	ms := float64(b.t.Sub(a.t).Milliseconds())
	return int(math.Round(ms / msPerDay))
}

// IsZero reports whether d holds no date.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Time returns the UTC midnight instant for d.
func (d Date) Time() time.Time { return d.t }

// Before reports whether d is an earlier day than o.
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// After reports whether d is a later day than o.
func (d Date) After(o Date) bool { return d.t.After(o.t) }

// Equal reports whether d and o are the same day.
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// Year, Month, Day, Weekday and YearDay expose the calendar components.
func (d Date) Year() int { return d.t.Year() }

func (d Date) Month() time.Month { return d.t.Month() }

func (d Date) Day() int { return d.t.Day() }

func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

func (d Date) YearDay() int { return d.t.YearDay() }

// DMY formats d as DD/MM/YYYY, the storage and display form.
func (d Date) DMY() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%02d/%02d/%d", d.t.Day(), int(d.t.Month()), d.t.Year())
}

// YMD formats d as YYYY-MM-DD, the date-input form.
func (d Date) YMD() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format("2006-01-02")
}

// String implements fmt.Stringer using the DMY form.
func (d Date) String() string { return d.DMY() }

// MarshalText encodes d in DMY form. Both encoding/json and yaml.v3 use it.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.DMY()), nil
}

// UnmarshalText accepts either supported form. Empty text leaves d zero.
func (d *Date) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, ok := ParseDate(s)
	if !ok {
		return fmt.Errorf("invalid date %q: expected DD/MM/YYYY or YYYY-MM-DD", s)
	}
	*d = parsed
	return nil
}

// MinDate and MaxDate return the earliest and latest non-zero dates, and
// false when none of ds is set.
func MinDate(ds ...Date) (Date, bool) {
	var out Date
	for _, d := range ds {
		if d.IsZero() {
			continue
		}
		if out.IsZero() || d.Before(out) {
			out = d
		}
	}
	return out, !out.IsZero()
}

func MaxDate(ds ...Date) (Date, bool) {
	var out Date
	for _, d := range ds {
		if d.IsZero() {
			continue
		}
		if out.IsZero() || d.After(out) {
			out = d
		}
	}
	return out, !out.IsZero()
}
