package domain

import (
	"fmt"
	"math"
	"time"
)

// RoundHours converts d to decimal hours rounded half away from zero to two
// places. Negative durations count as zero.
func RoundHours(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return math.Round(d.Hours()*100) / 100
}

// HoursBetween returns the rounded hours from start to end.
func HoursBetween(start, end time.Time) float64 {
	return RoundHours(end.Sub(start))
}

// SumHours adds up the stored total hours of complete entries.
func SumHours(entries []TimeEntry) float64 {
	var total float64
	for _, e := range entries {
		total += e.Hours()
	}
	return math.Round(total*100) / 100
}

// FormatClock renders seconds as HH:MM:SS for the running timer display.
func FormatClock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatHours renders decimal hours with two places, e.g. "2.50".
func FormatHours(h float64) string {
	return fmt.Sprintf("%.2f", h)
}

// HoursDuration converts booked hours back to a duration, to the minute.
func HoursDuration(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour)).Round(time.Minute)
}

// FormatDuration formats a duration in a human-readable way, e.g. "1h 30m" or "45m".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
