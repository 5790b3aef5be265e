package validation

import (
	"errors"
	"time"

	"loipen-tracker/internal/domain"
)

// EndBeforeStartMessage is reported when a manual entry does not end after it starts.
const EndBeforeStartMessage = "end time must be after start time"

// ManualEntryInput is the raw form input of a manual time entry.
type ManualEntryInput struct {
	UserID   string
	Date     string // YYYY-MM-DD
	Activity string
	Start    string // HH:MM
	End      string // HH:MM
}

// ManualEntry is a validated manual time entry.
type ManualEntry struct {
	UserID   string
	Date     time.Time
	Activity domain.ActivityType
	Start    time.Time
	End      time.Time
}

// Hours returns the rounded hours between start and end.
func (m ManualEntry) Hours() float64 {
	return domain.HoursBetween(m.Start, m.End)
}

// ToTimeEntry builds the complete entry to persist.
func (m ManualEntry) ToTimeEntry() domain.TimeEntry {
	return domain.NewCompletedEntry(m.UserID, m.Activity, m.Start, m.End)
}

// ManualEntryValidator validates manual entries. Start and end lie on the same day.
type ManualEntryValidator struct {
	validator *Validator
}

// NewManualEntryValidator creates a manual entry validator using v's location.
func NewManualEntryValidator(v *Validator) *ManualEntryValidator {
	if v == nil {
		v = NewValidator()
	}
	return &ManualEntryValidator{validator: v}
}

// Validate checks every field and returns a *ValidationError listing all problems.
func (mv *ManualEntryValidator) Validate(in ManualEntryInput) (ManualEntry, error) {
	validationError := NewValidationError()
	v := mv.validator

	if !v.IsNonEmptyString(in.UserID) {
		validationError.AddRequiredError("user_id")
	} else if !v.IsValidUserID(in.UserID) {
		validationError.AddInvalidValueError("user_id", in.UserID, "must be a single token of at most 128 characters")
	}

	activity, err := ParseActivity(in.Activity)
	var activityErr *ValidationError
	if errors.As(err, &activityErr) {
		validationError.Errors = append(validationError.Errors, activityErr.Errors...)
	}

	var date time.Time
	dateOK := false
	if !v.IsNonEmptyString(in.Date) {
		validationError.AddRequiredError("date")
	} else if d, ok := v.ParseDate(in.Date); !ok {
		validationError.AddInvalidFormatError("date", in.Date, "YYYY-MM-DD")
	} else if !v.IsReasonableDate(d) {
		validationError.AddInvalidValueError("date", in.Date, "must be within reasonable date range")
	} else {
		date, dateOK = d, true
	}

	// Clock values are parsed against a fixed day when the date itself is invalid,
	// so format errors are still reported together.
	day := date
	if !dateOK {
		day = time.Date(2000, 1, 1, 0, 0, 0, 0, v.Location())
	}

	start, startOK := mv.parseClock(validationError, "start_time", day, in.Start)
	end, endOK := mv.parseClock(validationError, "end_time", day, in.End)

	if startOK && endOK && !end.After(start) {
		validationError.AddInvalidRangeError("end_time", map[string]string{
			"start": in.Start,
			"end":   in.End,
		}, EndBeforeStartMessage)
	}

	if err := validationError.orNil(); err != nil {
		return ManualEntry{}, err
	}

	return ManualEntry{
		UserID:   in.UserID,
		Date:     date,
		Activity: activity,
		Start:    start,
		End:      end,
	}, nil
}

func (mv *ManualEntryValidator) parseClock(ve *ValidationError, field string, day time.Time, value string) (time.Time, bool) {
	if !mv.validator.IsNonEmptyString(value) {
		ve.AddRequiredError(field)
		return time.Time{}, false
	}
	t, ok := mv.validator.ParseClock(day, value)
	if !ok {
		ve.AddInvalidFormatError(field, value, "HH:MM")
		return time.Time{}, false
	}
	return t, true
}
