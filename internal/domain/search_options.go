package domain

import "time"

// SearchOptions represents search criteria for time entries.
// From and To are inclusive calendar days.
type SearchOptions struct {
	UserID   *string
	From     *time.Time
	To       *time.Time
	Activity *ActivityType
	Limit    int
}
