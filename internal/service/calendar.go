package service

import (
	"strconv"
	"strings"
	"time"
)

// Pure calendar-interval helpers shared by the availability and ranking path.
// No I/O; dates are compared at day granularity, times of day as HH:MM strings.

// DayOfWeek returns the weekday index of the date, Sunday = 0.
func DayOfWeek(date time.Time) int {
	return int(date.Weekday())
}

// TimeRangesOverlap reports whether two time-of-day ranges intersect.
// Ranges are half-open: touching endpoints do not overlap.
func TimeRangesOverlap(startA, endA, startB, endB string) bool {
	sa, ea := minuteOfDay(startA), minuteOfDay(endA)
	sb, eb := minuteOfDay(startB), minuteOfDay(endB)
	return sa < eb && sb < ea
}

// DateRange expands a booking span into its inclusive sequence of dates.
// A nil end collapses to the single start date.
func DateRange(start time.Time, end *time.Time) []time.Time {
	start = truncateToDay(start)
	if end == nil {
		return []time.Time{start}
	}
	last := truncateToDay(*end)
	if last.Before(start) {
		return []time.Time{start}
	}
	var dates []time.Time
	for d := start; !d.After(last); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// SameDay reports whether two instants fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return truncateToDay(a).Equal(truncateToDay(b))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// minuteOfDay parses an HH:MM (or HH:MM:SS) string into minutes since midnight.
// Malformed input yields 0, which keeps a bad range from matching anything
// beyond midnight itself.
func minuteOfDay(raw string) int {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 3)
	if len(parts) < 2 {
		return 0
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0
	}
	return h*60 + m
}
