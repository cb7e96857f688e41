package timeutil

import (
	"fmt"
	"testing"
	"time"
)

func TestTimeToMinutes(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"9:00", 0, true},
		{"09:60", 0, true},
		{"", 0, true},
		{"banana", 0, true},
	}

	for _, tt := range tests {
		got, err := TimeToMinutes(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("TimeToMinutes(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("TimeToMinutes(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("TimeToMinutes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestRoundTrip_AllValidTimes(t *testing.T) {
	for m := 0; m < 1440; m++ {
		s := MinutesToTime(m)
		back, err := TimeToMinutes(s)
		if err != nil {
			t.Fatalf("round-trip of %d (%s) failed: %v", m, s, err)
		}
		if back != m {
			t.Fatalf("round-trip of %d: got %d via %s", m, back, s)
		}
	}
}

func TestAddMinutes_NoDayRollover(t *testing.T) {
	got, err := AddMinutes("23:30", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// End-of-day arithmetic intentionally does not wrap.
	if got != "24:00" {
		t.Errorf("AddMinutes(23:30, 30) = %s, want 24:00", got)
	}

	got, err = AddMinutes("09:00", 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "10:30" {
		t.Errorf("AddMinutes(09:00, 90) = %s, want 10:30", got)
	}
}

func TestCompareTime(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"09:00", "10:00", -1},
		{"10:00", "09:00", 1},
		{"10:30", "10:30", 0},
		{"00:00", "23:59", -1},
	}
	for _, tt := range tests {
		got, err := CompareTime(tt.a, tt.b)
		if err != nil {
			t.Fatalf("CompareTime(%s, %s): %v", tt.a, tt.b, err)
		}
		if got != tt.want {
			t.Errorf("CompareTime(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}

	if _, err := CompareTime("25:00", "10:00"); err == nil {
		t.Error("expected error for malformed time")
	}
}

func TestIntervalsOverlap(t *testing.T) {
	tests := []struct {
		name                   string
		s1, e1, s2, e2         int
		want                   bool
	}{
		{"disjoint", 540, 600, 660, 720, false},
		{"adjacent do not overlap", 540, 600, 600, 660, false},
		{"partial overlap", 540, 630, 600, 660, true},
		{"contained", 540, 720, 600, 660, true},
		{"identical", 540, 600, 540, 600, true},
		{"reversed order args", 660, 720, 540, 600, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IntervalsOverlap(tt.s1, tt.e1, tt.s2, tt.e2); got != tt.want {
				t.Errorf("IntervalsOverlap(%d,%d,%d,%d) = %v, want %v", tt.s1, tt.e1, tt.s2, tt.e2, got, tt.want)
			}
		})
	}
}

func TestHasConflict(t *testing.T) {
	booked := []Interval{
		{Start: 600, End: 660},  // 10:00-11:00
		{Start: 780, End: 840},  // 13:00-14:00
	}

	if !HasConflict(630, 690, booked) {
		t.Error("10:30-11:30 should conflict with 10:00-11:00")
	}
	if HasConflict(660, 720, booked) {
		t.Error("11:00-12:00 is adjacent, should not conflict")
	}
	if HasConflict(540, 600, nil) {
		t.Error("empty booked set should never conflict")
	}
}

func TestMinutesOfDayAndAtMinutes(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	instant := time.Date(2026, 9, 7, 14, 30, 0, 0, loc)
	if got := MinutesOfDay(instant, loc); got != 14*60+30 {
		t.Errorf("MinutesOfDay = %d, want %d", got, 14*60+30)
	}

	back := AtMinutes(instant, 9*60, loc)
	if back.Hour() != 9 || back.Minute() != 0 || back.Day() != 7 {
		t.Errorf("AtMinutes placed instant at %v", back)
	}
}

func TestDayBounds(t *testing.T) {
	loc := time.UTC
	d := time.Date(2026, 9, 7, 16, 45, 0, 0, loc)
	start, end := DayBounds(d, loc)
	if start.Format("2006-01-02 15:04") != "2026-09-07 00:00" {
		t.Errorf("start = %v", start)
	}
	if end.Sub(start) != 24*time.Hour {
		t.Errorf("window length = %v", end.Sub(start))
	}
}

func ExampleMinutesToTime() {
	fmt.Println(MinutesToTime(570))
	// Output: 09:30
}
