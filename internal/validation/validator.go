package validation

import (
	"regexp"
	"strings"
	"time"

	"loipen-tracker/internal/domain"
)

var timeNow = time.Now

// Validator provides common validation utilities
type Validator struct {
	loc         *time.Location
	userIDRegex *regexp.Regexp
	clockRegex  *regexp.Regexp
}

// NewValidator creates a new validator that interprets dates in the local zone
func NewValidator() *Validator {
	return NewValidatorWithLocation(time.Local)
}

// NewValidatorWithLocation creates a validator that interprets dates and
// times of day in loc.
func NewValidatorWithLocation(loc *time.Location) *Validator {
	if loc == nil {
		loc = time.Local
	}
	return &Validator{
		loc:         loc,
		userIDRegex: regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._@+-]*$`),
		clockRegex:  regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`),
	}
}

// Location returns the zone used for calendar days.
func (v *Validator) Location() *time.Location {
	return v.loc
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidStringLength checks if a string length is within the specified range
func (v *Validator) IsValidStringLength(s string, min, max int) bool {
	length := len([]rune(strings.TrimSpace(s)))
	return length >= min && length <= max
}

// IsValidUserID checks that a user id is a single printable token of at most 128 characters
func (v *Validator) IsValidUserID(id string) bool {
	return len(id) <= 128 && v.userIDRegex.MatchString(id)
}

// IsValidActivity checks that a is one of the known activity types
func (v *Validator) IsValidActivity(a domain.ActivityType) bool {
	return a.IsValid()
}

// ParseDate parses a YYYY-MM-DD calendar day as local midnight.
func (v *Validator) ParseDate(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(domain.DateLayout, strings.TrimSpace(s), v.loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseClock parses an HH:MM time of day on the given day.
func (v *Validator) ParseClock(day time.Time, s string) (time.Time, bool) {
	m := v.clockRegex.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, false
	}
	c, err := time.Parse("15:04", zeroPad(m[1])+":"+m[2])
	if err != nil {
		return time.Time{}, false
	}
	y, mo, d := day.Date()
	return time.Date(y, mo, d, c.Hour(), c.Minute(), 0, 0, v.loc), true
}

// IsReasonableDate checks if a date is within ten years back and one year ahead
func (v *Validator) IsReasonableDate(t time.Time) bool {
	now := timeNow()
	tenYearsAgo := now.AddDate(-10, 0, 0)
	oneYearFromNow := now.AddDate(1, 0, 0)

	return t.After(tenYearsAgo) && t.Before(oneYearFromNow)
}

// IsValidDateRange checks if a date range is logical
func (v *Validator) IsValidDateRange(from, to *time.Time) bool {
	if from == nil || to == nil {
		return true // open-ended
	}
	return !from.After(*to)
}

func zeroPad(hour string) string {
	if len(hour) == 1 {
		return "0" + hour
	}
	return hour
}
