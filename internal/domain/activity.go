package domain

import (
	"strings"

	apperrors "loipen-tracker/internal/errors"
)

// ActivityType is the kind of work a time entry is booked on.
type ActivityType string

const (
	ActivityTrailGrooming ActivityType = "TrailGrooming"
	ActivitySetUp         ActivityType = "SetUp"
	ActivityTearDown      ActivityType = "TearDown"
	ActivityMiscellaneous ActivityType = "Miscellaneous"
)

var activityLabels = map[ActivityType]string{
	ActivityTrailGrooming: "Loipenpräparation",
	ActivitySetUp:         "Aufbau",
	ActivityTearDown:      "Abbau",
	ActivityMiscellaneous: "Verschiedenes",
}

// AllActivityTypes returns the activity types in display order.
func AllActivityTypes() []ActivityType {
	return []ActivityType{
		ActivityTrailGrooming,
		ActivitySetUp,
		ActivityTearDown,
		ActivityMiscellaneous,
	}
}

// IsValid reports whether a is one of the known activity types.
func (a ActivityType) IsValid() bool {
	_, ok := activityLabels[a]
	return ok
}

// Label returns the German name shown to workers and used in exports.
func (a ActivityType) Label() string {
	if label, ok := activityLabels[a]; ok {
		return label
	}
	return string(a)
}

func (a ActivityType) String() string {
	return string(a)
}

// ParseActivityType accepts the canonical name or the German label, case-insensitively.
// "Loipenpraeparation" and "Loipenpraparation" are accepted for keyboards without umlauts.
func ParseActivityType(s string) (ActivityType, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	if needle == "" {
		return "", apperrors.NewInvalidInputError("activity", s, "activity type is required")
	}

	for _, a := range AllActivityTypes() {
		if needle == strings.ToLower(string(a)) || needle == strings.ToLower(a.Label()) {
			return a, nil
		}
	}

	switch needle {
	case "loipenpraeparation", "loipenpraparation":
		return ActivityTrailGrooming, nil
	}

	return "", apperrors.NewInvalidInputError("activity", s, "unknown activity type")
}
