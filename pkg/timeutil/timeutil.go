// Package timeutil holds the pure time arithmetic shared by slot
// generation and booking admission. All functions work on wall-clock
// HH:MM strings or minutes-from-midnight integers and have no side
// effects.
package timeutil

import (
	"fmt"
	"regexp"
	"time"
)

var reHHMM = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// IsValidHHMM reports whether s is a well-formed HH:MM time in 00:00-23:59.
func IsValidHHMM(s string) bool {
	return reHHMM.MatchString(s)
}

// TimeToMinutes converts an HH:MM string to minutes from midnight.
func TimeToMinutes(hhmm string) (int, error) {
	if !reHHMM.MatchString(hhmm) {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM in 00:00-23:59", hhmm)
	}
	var h, m int
	if _, err := fmt.Sscanf(hhmm, "%02d:%02d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", hhmm, err)
	}
	return h*60 + m, nil
}

// MinutesToTime converts minutes from midnight back to an HH:MM string.
// Values past the end of the day are rendered as-is ("24:00" for 1440)
// rather than wrapping; times are never stored in that form, it only
// appears transiently in end-of-day slot arithmetic.
func MinutesToTime(total int) string {
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// AddMinutes shifts an HH:MM time forward. It does not wrap across the
// day boundary: AddMinutes("23:30", 30) yields "24:00".
func AddMinutes(hhmm string, minutes int) (string, error) {
	m, err := TimeToMinutes(hhmm)
	if err != nil {
		return "", err
	}
	return MinutesToTime(m + minutes), nil
}

// CompareTime orders two HH:MM times by minute count, returning
// -1, 0 or 1.
func CompareTime(a, b string) (int, error) {
	ma, err := TimeToMinutes(a)
	if err != nil {
		return 0, err
	}
	mb, err := TimeToMinutes(b)
	if err != nil {
		return 0, err
	}
	switch {
	case ma < mb:
		return -1, nil
	case ma > mb:
		return 1, nil
	default:
		return 0, nil
	}
}

// Interval is a half-open [Start, End) range in minutes from midnight.
type Interval struct {
	Start int
	End   int
}

// IntervalsOverlap reports whether two half-open intervals intersect.
// Adjacent intervals (end1 == start2) do not overlap.
func IntervalsOverlap(start1, end1, start2, end2 int) bool {
	return start1 < end2 && start2 < end1
}

// HasConflict folds IntervalsOverlap over the booked set,
// short-circuiting on the first hit. Both slot exclusion and booking
// admission go through here so the two paths cannot drift apart.
func HasConflict(start, end int, booked []Interval) bool {
	for _, b := range booked {
		if IntervalsOverlap(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}

// MinutesOfDay returns the wall-clock minute of t in the given location.
func MinutesOfDay(t time.Time, loc *time.Location) int {
	local := t.In(loc)
	return local.Hour()*60 + local.Minute()
}

// AtMinutes returns the instant on date's calendar day at the given
// minutes from midnight in loc.
func AtMinutes(date time.Time, minutes int, loc *time.Location) time.Time {
	local := date.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, minutes, 0, 0, loc)
}

// DayBounds returns the half-open [start, end) instants covering date's
// calendar day in loc.
func DayBounds(date time.Time, loc *time.Location) (time.Time, time.Time) {
	local := date.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
