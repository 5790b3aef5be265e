package domain

import (
	"strings"
	"time"
)

// UnknownEmployee is shown for entries whose user is not on the roster.
const UnknownEmployee = "Unbekannt"

// Employee is a roster entry mapping a user id to a display name.
type Employee struct {
	UserID    string    `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName returns "First Last", or UnknownEmployee when both are empty.
func (e Employee) FullName() string {
	name := strings.TrimSpace(e.FirstName + " " + e.LastName)
	if name == "" {
		return UnknownEmployee
	}
	return name
}

// EmployeeDirectory resolves user ids to display names.
type EmployeeDirectory map[string]Employee

// NewEmployeeDirectory indexes employees by user id.
func NewEmployeeDirectory(employees []Employee) EmployeeDirectory {
	dir := make(EmployeeDirectory, len(employees))
	for _, e := range employees {
		dir[e.UserID] = e
	}
	return dir
}

// Name returns the display name for userID, or UnknownEmployee.
func (d EmployeeDirectory) Name(userID string) string {
	if e, ok := d[userID]; ok {
		return e.FullName()
	}
	return UnknownEmployee
}
