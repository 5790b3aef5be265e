// Package season computes the August-to-July reporting seasons.
package season

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	apperrors "loipen-tracker/internal/errors"
)

// FirstSeasonYear is the start year of the oldest season offered by default.
const FirstSeasonYear = 2020

var labelPattern = regexp.MustCompile(`^(?i:saison\s+)?(\d{4})-(\d{2})$`)

// Range is one season: Start is August 1 and End is July 31 of the next year,
// both local midnight and both inclusive.
type Range struct {
	StartYear int
	Start     time.Time
	End       time.Time
}

// ForYear returns the season starting on August 1 of year.
func ForYear(year int, loc *time.Location) Range {
	if loc == nil {
		loc = time.Local
	}
	return Range{
		StartYear: year,
		Start:     time.Date(year, time.August, 1, 0, 0, 0, 0, loc),
		End:       time.Date(year+1, time.July, 31, 0, 0, 0, 0, loc),
	}
}

// StartYearOf returns the start year of the season containing t.
func StartYearOf(t time.Time) int {
	if t.Month() >= time.August {
		return t.Year()
	}
	return t.Year() - 1
}

// Current returns the season containing now, in now's location.
func Current(now time.Time) Range {
	return ForYear(StartYearOf(now), now.Location())
}

// Label returns the label of the season containing t, e.g. "Saison 2025-26".
func Label(t time.Time) string {
	return labelFor(StartYearOf(t))
}

// Label returns the season's label.
func (r Range) Label() string {
	return labelFor(r.StartYear)
}

// Contains reports whether the calendar day of t lies in the season.
func (r Range) Contains(t time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, r.Start.Location())
	return !day.Before(r.Start) && !day.After(r.End)
}

// Parse reads "Saison 2025-26" (the prefix is optional) into a range in loc.
func Parse(label string, loc *time.Location) (Range, error) {
	m := labelPattern.FindStringSubmatch(label)
	if m == nil {
		return Range{}, apperrors.NewInvalidInputError("season", label, "expected a label like \"Saison 2025-26\"")
	}

	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	if (start+1)%100 != end {
		return Range{}, apperrors.NewInvalidInputError("season", label, fmt.Sprintf("season starting %d must end in %02d", start, (start+1)%100))
	}
	return ForYear(start, loc), nil
}

// Available lists the labels from the current season back to firstYear, newest first.
func Available(now time.Time, firstYear int) []string {
	current := StartYearOf(now)
	if firstYear > current {
		return []string{}
	}
	labels := make([]string, 0, current-firstYear+1)
	for year := current; year >= firstYear; year-- {
		labels = append(labels, labelFor(year))
	}
	return labels
}

func labelFor(startYear int) string {
	return fmt.Sprintf("Saison %d-%02d", startYear, (startYear+1)%100)
}
