package domain

import (
	"time"
)

// TimeEntry represents one logged work session in the domain model.
// StopTime and TotalHours are either both nil (running) or both set (complete).
type TimeEntry struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	Date         time.Time    `json:"date"` // local midnight of the day the session belongs to
	ActivityType ActivityType `json:"activity_type"`
	StartTime    time.Time    `json:"start_time"`
	StopTime     *time.Time   `json:"stop_time"`
	TotalHours   *float64     `json:"total_hours"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewTimeEntry creates a running entry started at start. The entry belongs to
// the calendar day of start in start's location.
func NewTimeEntry(userID string, activity ActivityType, start time.Time) TimeEntry {
	start = start.Truncate(time.Second)
	return TimeEntry{
		UserID:       userID,
		Date:         DateOf(start),
		ActivityType: activity,
		StartTime:    start,
	}
}

// NewCompletedEntry creates an entry that is complete from the moment it is stored.
func NewCompletedEntry(userID string, activity ActivityType, start, stop time.Time) TimeEntry {
	entry := NewTimeEntry(userID, activity, start)
	return entry.Stop(stop.Truncate(time.Second), HoursBetween(start, stop))
}

// IsRunning returns true if the entry has not been stopped yet.
func (te TimeEntry) IsRunning() bool {
	return te.StopTime == nil
}

// Stop returns a copy of the entry with stop time and total hours set.
func (te TimeEntry) Stop(stop time.Time, hours float64) TimeEntry {
	te.StopTime = &stop
	te.TotalHours = &hours
	return te
}

// Hours returns the stored total hours, or 0 for a running entry.
func (te TimeEntry) Hours() float64 {
	if te.TotalHours == nil {
		return 0
	}
	return *te.TotalHours
}

// IsValid checks if the time entry has valid data.
func (te TimeEntry) IsValid() bool {
	if te.UserID == "" || !te.ActivityType.IsValid() {
		return false
	}
	if te.StartTime.IsZero() || te.Date.IsZero() {
		return false
	}
	if (te.StopTime == nil) != (te.TotalHours == nil) {
		return false
	}
	if te.TotalHours != nil && *te.TotalHours < 0 {
		return false
	}
	if te.StopTime != nil && te.StopTime.Before(te.StartTime) {
		return false
	}
	return true
}

// DateOf returns local midnight of t's calendar day in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
