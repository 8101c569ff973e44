package models

import (
	"encoding/json"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Date
		ok   bool
	}{
		{"dmy", "15/01/2024", NewDate(2024, time.January, 15), true},
		{"ymd", "2024-01-15", NewDate(2024, time.January, 15), true},
		{"dmy single digits", "5/3/2024", NewDate(2024, time.March, 5), true},
		{"surrounding space", "  01/02/2024 ", NewDate(2024, time.February, 1), true},
		{"rollover like calendar arithmetic", "31/02/2024", NewDate(2024, time.March, 2), true},
		{"empty", "", Date{}, false},
		{"month out of range", "01/13/2024", Date{}, false},
		{"day zero", "00/01/2024", Date{}, false},
		{"year too small", "01/01/999", Date{}, false},
		{"ymd given dmy order with dashes", "15-01-2024", Date{}, false},
		{"dots", "15.01.2024", Date{}, false},
		{"text", "tomorrow", Date{}, false},
		{"two parts", "01/2024", Date{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestDateFormats(t *testing.T) {
	d := NewDate(2024, time.March, 5)
	if got := d.DMY(); got != "05/03/2024" {
		t.Errorf("DMY() = %q, want %q", got, "05/03/2024")
	}
	if got := d.YMD(); got != "2024-03-05" {
		t.Errorf("YMD() = %q, want %q", got, "2024-03-05")
	}
	if got := (Date{}).DMY(); got != "" {
		t.Errorf("zero DMY() = %q, want empty", got)
	}
}

func TestAddDaysAndDayDiff(t *testing.T) {
	start := MustParseDate("01/01/2024")
	if got := AddDays(start, 31); !got.Equal(MustParseDate("01/02/2024")) {
		t.Errorf("AddDays(+31) = %s, want 01/02/2024", got)
	}
	if got := AddDays(start, -1); !got.Equal(MustParseDate("31/12/2023")) {
		t.Errorf("AddDays(-1) = %s, want 31/12/2023", got)
	}
	if got := DayDiff(MustParseDate("16/01/2024"), MustParseDate("31/01/2024")); got != 15 {
		t.Errorf("DayDiff = %d, want 15", got)
	}
	if got := DayDiff(MustParseDate("31/01/2024"), MustParseDate("16/01/2024")); got != -15 {
		t.Errorf("DayDiff reversed = %d, want -15", got)
	}
	// Leap day and a European DST change both count as whole days.
	if got := DayDiff(MustParseDate("28/02/2024"), MustParseDate("01/03/2024")); got != 2 {
		t.Errorf("DayDiff across leap day = %d, want 2", got)
	}
	if got := DayDiff(MustParseDate("30/03/2024"), MustParseDate("01/04/2024")); got != 2 {
		t.Errorf("DayDiff across DST = %d, want 2", got)
	}
	if got := DayDiff(Date{}, start); got != 0 {
		t.Errorf("DayDiff with zero = %d, want 0", got)
	}
}

func TestDate_JSONAndYAML(t *testing.T) {
	type wrapper struct {
		When Date `json:"when" yaml:"when"`
	}
	w := wrapper{When: MustParseDate("20/01/2024")}

	data, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	if string(data) != `{"when":"20/01/2024"}` {
		t.Errorf("json = %s", data)
	}

	var fromISO wrapper
	if err := json.Unmarshal([]byte(`{"when":"2024-01-20"}`), &fromISO); err != nil {
		t.Fatalf("json.Unmarshal ISO: %v", err)
	}
	if !fromISO.When.Equal(w.When) {
		t.Errorf("ISO decode = %s, want %s", fromISO.When, w.When)
	}

	if err := json.Unmarshal([]byte(`{"when":"someday"}`), &fromISO); err == nil {
		t.Error("expected error decoding invalid date")
	}

	out, err := yaml.Marshal(w)
	if err != nil {
		t.Fatalf("yaml.Marshal: %v", err)
	}
	var back wrapper
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if !back.When.Equal(w.When) {
		t.Errorf("yaml round trip = %s, want %s", back.When, w.When)
	}
}

func TestMinMaxDate(t *testing.T) {
	a, b := MustParseDate("01/01/2024"), MustParseDate("10/01/2024")
	if got, ok := MinDate(b, Date{}, a); !ok || !got.Equal(a) {
		t.Errorf("MinDate = %s, %v", got, ok)
	}
	if got, ok := MaxDate(a, Date{}, b); !ok || !got.Equal(b) {
		t.Errorf("MaxDate = %s, %v", got, ok)
	}
	if _, ok := MinDate(Date{}, Date{}); ok {
		t.Error("MinDate of zero dates should report false")
	}
}
