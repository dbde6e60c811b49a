package calendar

import (
	"testing"
	"time"
)

func TestDayOfUsesReferenceZone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// 2026-03-01 20:00 UTC is already 2026-03-02 in Tokyo.
	instant := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	if got := New(time.UTC).DayOf(instant).String(); got != "2026-03-01" {
		t.Errorf("UTC DayOf = %s, want 2026-03-01", got)
	}
	if got := New(tokyo).DayOf(instant).String(); got != "2026-03-02" {
		t.Errorf("Tokyo DayOf = %s, want 2026-03-02", got)
	}
}

func TestDaySubAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	cal := New(ny)

	// DST starts 2026-03-08 in New York; the local day is only 23h long.
	before := cal.DayOf(time.Date(2026, 3, 8, 0, 30, 0, 0, ny))
	after := cal.DayOf(time.Date(2026, 3, 9, 23, 30, 0, 0, ny))

	if got := after.Sub(before); got != 1 {
		t.Errorf("Sub across DST = %d, want 1", got)
	}
}

func TestAddDaysAndShortName(t *testing.T) {
	d := Day{Year: 2026, Month: time.January, Day: 1}

	tests := []struct {
		n     int
		want  string
		label string
	}{
		{0, "2026-01-01", "Thu"},
		{-1, "2025-12-31", "Wed"},
		{31, "2026-02-01", "Sun"},
		{-6, "2025-12-26", "Fri"},
	}

	for _, tt := range tests {
		got := d.AddDays(tt.n)
		if got.String() != tt.want {
			t.Errorf("AddDays(%d) = %s, want %s", tt.n, got, tt.want)
		}
		if got.ShortName() != tt.label {
			t.Errorf("AddDays(%d).ShortName() = %s, want %s", tt.n, got.ShortName(), tt.label)
		}
		if back := got.Sub(d); back != tt.n {
			t.Errorf("AddDays(%d).Sub(d) = %d", tt.n, back)
		}
	}
}

func TestDayOfPtrNil(t *testing.T) {
	if _, ok := New(nil).DayOfPtr(nil); ok {
		t.Error("DayOfPtr(nil) reported a day")
	}
}

func TestLoadRejectsUnknownZone(t *testing.T) {
	if _, err := Load("Mars/Olympus_Mons"); err == nil {
		t.Error("expected error for unknown zone")
	}
	cal, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cal.Location() != time.UTC {
		t.Errorf("Load(\"\") location = %v, want UTC", cal.Location())
	}
}
