package validation

import (
	"errors"

	"loipen-tracker/internal/domain"
)

// MaxSearchLimit caps the number of rows a single listing may request.
const MaxSearchLimit = 10000

const activityChoices = "must be one of TrailGrooming, SetUp, TearDown, Miscellaneous"

// ParseActivity resolves s like domain.ParseActivityType and reports a
// missing or unknown activity as a field error on "activity".
func ParseActivity(s string) (domain.ActivityType, error) {
	validationError := NewValidationError()
	a, err := domain.ParseActivityType(s)
	switch {
	case err == nil:
		return a, nil
	case !NewValidator().IsNonEmptyString(s):
		validationError.AddRequiredError("activity")
	default:
		validationError.AddInvalidValueError("activity", s, activityChoices)
	}
	return "", validationError
}

// TimeEntryValidator provides validation for TimeEntry-related operations
type TimeEntryValidator struct {
	validator *Validator
}

// NewTimeEntryValidator creates a new time entry validator
func NewTimeEntryValidator(v *Validator) *TimeEntryValidator {
	if v == nil {
		v = NewValidator()
	}
	return &TimeEntryValidator{validator: v}
}

// ValidateStart validates the input of starting a timer
func (tev *TimeEntryValidator) ValidateStart(userID string, activity domain.ActivityType) error {
	validationError := NewValidationError()

	if !tev.validator.IsNonEmptyString(userID) {
		validationError.AddRequiredError("user_id")
	} else if !tev.validator.IsValidUserID(userID) {
		validationError.AddInvalidValueError("user_id", userID, "must be a single token of at most 128 characters")
	}

	if !tev.validator.IsValidActivity(activity) {
		validationError.AddInvalidValueError("activity", string(activity), activityChoices)
	}

	return validationError.orNil()
}

// ValidateTimeEntry validates a domain.TimeEntry object
func (tev *TimeEntryValidator) ValidateTimeEntry(entry domain.TimeEntry) error {
	validationError := NewValidationError()

	var startErr *ValidationError
	if errors.As(tev.ValidateStart(entry.UserID, entry.ActivityType), &startErr) {
		validationError.Errors = append(validationError.Errors, startErr.Errors...)
	}

	if entry.StartTime.IsZero() {
		validationError.AddRequiredError("start_time")
	}
	if (entry.StopTime == nil) != (entry.TotalHours == nil) {
		validationError.AddInvalidValueError("stop_time", entry.StopTime, "stop time and total hours must be set together")
	}
	if entry.TotalHours != nil && *entry.TotalHours < 0 {
		validationError.AddInvalidValueError("total_hours", *entry.TotalHours, "must not be negative")
	}
	if entry.StopTime != nil && !entry.StopTime.After(entry.StartTime) {
		validationError.AddInvalidRangeError("stop_time", *entry.StopTime, EndBeforeStartMessage)
	}

	return validationError.orNil()
}

// ValidateSearchOptions validates search options for time entries
func (tev *TimeEntryValidator) ValidateSearchOptions(opts domain.SearchOptions) error {
	validationError := NewValidationError()

	if opts.UserID != nil && !tev.validator.IsValidUserID(*opts.UserID) {
		validationError.AddInvalidValueError("user_id", *opts.UserID, "must be a single token of at most 128 characters")
	}

	if !tev.validator.IsValidDateRange(opts.From, opts.To) {
		validationError.AddInvalidRangeError("date_range", map[string]interface{}{
			"from": opts.From,
			"to":   opts.To,
		}, "end date must be on or after start date")
	}

	if opts.Activity != nil && !tev.validator.IsValidActivity(*opts.Activity) {
		validationError.AddInvalidValueError("activity", string(*opts.Activity), "unknown activity type")
	}

	if opts.Limit < 0 || opts.Limit > MaxSearchLimit {
		validationError.AddInvalidValueError("limit", opts.Limit, "must be between 0 and 10000")
	}

	return validationError.orNil()
}

// ValidateEmployee validates a roster entry
func (tev *TimeEntryValidator) ValidateEmployee(userID, firstName, lastName string) error {
	validationError := NewValidationError()

	if !tev.validator.IsNonEmptyString(userID) {
		validationError.AddRequiredError("user_id")
	} else if !tev.validator.IsValidUserID(userID) {
		validationError.AddInvalidValueError("user_id", userID, "must be a single token of at most 128 characters")
	}

	names := []struct{ field, value string }{
		{"first_name", firstName},
		{"last_name", lastName},
	}
	for _, n := range names {
		field, value := n.field, n.value
		if !tev.validator.IsNonEmptyString(value) {
			validationError.AddRequiredError(field)
		} else if !tev.validator.IsValidStringLength(value, 1, 100) {
			validationError.AddInvalidLengthError(field, value, 1, 100)
		}
	}

	return validationError.orNil()
}
