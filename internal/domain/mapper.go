package domain

import (
	"fmt"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	ClockLayout     = "15:04:05"
	ShortClock      = "15:04"
	TimestampLayout = time.RFC3339
)

// TimeEntryRecord is the storage shape of a time entry: calendar day and
// time-of-day columns in the configured location.
type TimeEntryRecord struct {
	ID           string
	UserID       string
	EntryDate    string
	ActivityType string
	StartTime    string
	StopTime     *string
	TotalHours   *float64
	CreatedAt    string
	UpdatedAt    string
}

// TimeEntryMapper handles conversion between domain TimeEntry and TimeEntryRecord.
type TimeEntryMapper struct {
	loc *time.Location
}

// NewTimeEntryMapper creates a mapper that interprets stored clock values in loc.
func NewTimeEntryMapper(loc *time.Location) *TimeEntryMapper {
	if loc == nil {
		loc = time.Local
	}
	return &TimeEntryMapper{loc: loc}
}

// Location returns the location used for date and clock columns.
func (m *TimeEntryMapper) Location() *time.Location {
	return m.loc
}

// ToRecord converts a domain TimeEntry to its storage record.
func (m *TimeEntryMapper) ToRecord(e TimeEntry) TimeEntryRecord {
	rec := TimeEntryRecord{
		ID:           e.ID,
		UserID:       e.UserID,
		EntryDate:    m.FormatDate(e.Date),
		ActivityType: string(e.ActivityType),
		StartTime:    m.FormatClock(e.StartTime),
		TotalHours:   e.TotalHours,
	}
	if e.StopTime != nil {
		stop := m.FormatClock(*e.StopTime)
		rec.StopTime = &stop
	}
	if !e.CreatedAt.IsZero() {
		rec.CreatedAt = e.CreatedAt.UTC().Format(TimestampLayout)
	}
	if !e.UpdatedAt.IsZero() {
		rec.UpdatedAt = e.UpdatedAt.UTC().Format(TimestampLayout)
	}
	return rec
}

// FromRecord converts a storage record to a domain TimeEntry. A stop clock
// earlier than the start clock belongs to the following day.
func (m *TimeEntryMapper) FromRecord(r TimeEntryRecord) (TimeEntry, error) {
	date, err := m.ParseDate(r.EntryDate)
	if err != nil {
		return TimeEntry{}, err
	}
	start, err := m.combine(date, r.StartTime)
	if err != nil {
		return TimeEntry{}, fmt.Errorf("entry %s start_time: %w", r.ID, err)
	}

	entry := TimeEntry{
		ID:           r.ID,
		UserID:       r.UserID,
		Date:         date,
		ActivityType: ActivityType(r.ActivityType),
		StartTime:    start,
		TotalHours:   r.TotalHours,
	}

	if r.StopTime != nil {
		stop, err := m.combine(date, *r.StopTime)
		if err != nil {
			return TimeEntry{}, fmt.Errorf("entry %s stop_time: %w", r.ID, err)
		}
		if stop.Before(start) {
			stop = m.combineOn(date.AddDate(0, 0, 1), stop)
		}
		entry.StopTime = &stop
	}

	if entry.CreatedAt, err = ParseTimestamp(r.CreatedAt); err != nil {
		return TimeEntry{}, fmt.Errorf("entry %s created_at: %w", r.ID, err)
	}
	if entry.UpdatedAt, err = ParseTimestamp(r.UpdatedAt); err != nil {
		return TimeEntry{}, fmt.Errorf("entry %s updated_at: %w", r.ID, err)
	}
	return entry, nil
}

// FromRecords converts a slice of records.
func (m *TimeEntryMapper) FromRecords(records []TimeEntryRecord) ([]TimeEntry, error) {
	entries := make([]TimeEntry, len(records))
	for i, r := range records {
		e, err := m.FromRecord(r)
		if err != nil {
			return nil, err
		}
		entries[i] = e
	}
	return entries, nil
}

// FormatDate formats the calendar day of t in the mapper's location.
func (m *TimeEntryMapper) FormatDate(t time.Time) string {
	return t.In(m.loc).Format(DateLayout)
}

// FormatClock formats the time of day of t in the mapper's location.
func (m *TimeEntryMapper) FormatClock(t time.Time) string {
	return t.In(m.loc).Format(ClockLayout)
}

// ParseDate parses YYYY-MM-DD as local midnight.
func (m *TimeEntryMapper) ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, m.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func (m *TimeEntryMapper) combine(date time.Time, clock string) (time.Time, error) {
	layout := ClockLayout
	if len(clock) == len(ShortClock) {
		layout = ShortClock
	}
	c, err := time.Parse(layout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time of day %q: %w", clock, err)
	}
	return m.combineOn(date, c), nil
}

func (m *TimeEntryMapper) combineOn(date, clock time.Time) time.Time {
	y, mo, d := date.Date()
	return time.Date(y, mo, d, clock.Hour(), clock.Minute(), clock.Second(), 0, m.loc)
}

// ParseTimestamp parses a stored RFC 3339 timestamp. Empty is the zero time.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(TimestampLayout, s)
}

// EmployeeRecord is the storage shape of an employee.
type EmployeeRecord struct {
	UserID    string
	FirstName string
	LastName  string
	CreatedAt string
	UpdatedAt string
}

// EmployeeFromRecord converts a storage record to a domain Employee.
func EmployeeFromRecord(r EmployeeRecord) (Employee, error) {
	created, err := ParseTimestamp(r.CreatedAt)
	if err != nil {
		return Employee{}, fmt.Errorf("employee %s created_at: %w", r.UserID, err)
	}
	updated, err := ParseTimestamp(r.UpdatedAt)
	if err != nil {
		return Employee{}, fmt.Errorf("employee %s updated_at: %w", r.UserID, err)
	}
	return Employee{
		UserID:    r.UserID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}
