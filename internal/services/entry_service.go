package services

import (
	"context"
	"errors"

	"loipen-tracker/internal/domain"
	"loipen-tracker/internal/logging"
	"loipen-tracker/internal/repository/sqlstore"
	"loipen-tracker/internal/season"
	"loipen-tracker/internal/validation"
)

// entryServiceImpl implements the EntryService interface
type entryServiceImpl struct {
	repo               sqlstore.Repository
	validator          *validation.Validator
	manualValidator    *validation.ManualEntryValidator
	timeEntryValidator *validation.TimeEntryValidator
	log                logging.Logger
}

// NewEntryService creates a new EntryService instance
func NewEntryService(repo sqlstore.Repository, v *validation.Validator, log logging.Logger) EntryService {
	if v == nil {
		v = validation.NewValidator()
	}
	if log == nil {
		log = logging.Discard()
	}
	return &entryServiceImpl{
		repo:               repo,
		validator:          v,
		manualValidator:    validation.NewManualEntryValidator(v),
		timeEntryValidator: validation.NewTimeEntryValidator(v),
		log:                log,
	}
}

// SaveManualEntry validates and stores a complete entry. Timer sessions are
// not touched.
func (e *entryServiceImpl) SaveManualEntry(ctx context.Context, userID, date, activity, start, end string) (*domain.TimeEntry, error) {
	manual, err := e.manualValidator.Validate(validation.ManualEntryInput{
		UserID:   userID,
		Date:     date,
		Activity: activity,
		Start:    start,
		End:      end,
	})
	if err != nil {
		return nil, toAppError(err)
	}

	entry := manual.ToTimeEntry()
	if err := e.timeEntryValidator.ValidateTimeEntry(entry); err != nil {
		return nil, toAppError(err)
	}
	if err := e.repo.CreateTimeEntry(ctx, &entry); err != nil {
		e.log.Error(ctx, "save manual entry failed", "user", userID, "error", err)
		return nil, err
	}

	e.log.Info(ctx, "manual entry saved", "user", userID, "entry", entry.ID, "hours", entry.Hours())
	return &entry, nil
}

// ListEntries returns the entries matching filter, newest first, with
// employee names resolved.
func (e *entryServiceImpl) ListEntries(ctx context.Context, filter EntryFilter) ([]EntryView, error) {
	opts, err := resolveFilter(e.validator, e.timeEntryValidator, filter)
	if err != nil {
		return nil, err
	}

	entries, err := e.repo.SearchTimeEntries(ctx, opts)
	if err != nil {
		return nil, err
	}
	names, err := e.directory(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]EntryView, 0, len(entries))
	for _, entry := range entries {
		view := EntryView{Entry: entry, Employee: names.Name(entry.UserID)}
		if entry.TotalHours != nil {
			view.Duration = domain.FormatDuration(domain.HoursDuration(*entry.TotalHours))
		}
		views = append(views, view)
	}
	return views, nil
}

// AddEmployee creates or renames a roster entry.
func (e *entryServiceImpl) AddEmployee(ctx context.Context, userID, firstName, lastName string) (*domain.Employee, error) {
	if err := e.timeEntryValidator.ValidateEmployee(userID, firstName, lastName); err != nil {
		return nil, toAppError(err)
	}
	emp := &domain.Employee{UserID: userID, FirstName: firstName, LastName: lastName}
	if err := e.repo.UpsertEmployee(ctx, emp); err != nil {
		return nil, err
	}
	e.log.Info(ctx, "employee saved", "user", userID)
	return emp, nil
}

// ListEmployees returns the roster.
func (e *entryServiceImpl) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	return e.repo.ListEmployees(ctx)
}

func (e *entryServiceImpl) directory(ctx context.Context) (domain.EmployeeDirectory, error) {
	employees, err := e.repo.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	return domain.NewEmployeeDirectory(employees), nil
}

// resolveFilter turns a raw filter into validated search options. A season
// label fills in whichever of From and To is missing.
func resolveFilter(v *validation.Validator, tev *validation.TimeEntryValidator, f EntryFilter) (domain.SearchOptions, error) {
	ve := validation.NewValidationError()
	opts := domain.SearchOptions{Limit: f.Limit}

	if f.UserID != "" {
		user := f.UserID
		opts.UserID = &user
	}
	if f.From != "" {
		if d, ok := v.ParseDate(f.From); ok {
			opts.From = &d
		} else {
			ve.AddInvalidFormatError("from", f.From, "YYYY-MM-DD")
		}
	}
	if f.To != "" {
		if d, ok := v.ParseDate(f.To); ok {
			opts.To = &d
		} else {
			ve.AddInvalidFormatError("to", f.To, "YYYY-MM-DD")
		}
	}
	if f.Season != "" {
		r, err := season.Parse(f.Season, v.Location())
		if err != nil {
			ve.AddInvalidFormatError("season", f.Season, "Saison YYYY-YY")
		} else {
			if opts.From == nil {
				opts.From = &r.Start
			}
			if opts.To == nil {
				opts.To = &r.End
			}
		}
	}
	if f.Activity != "" {
		a, err := domain.ParseActivityType(f.Activity)
		if err != nil {
			ve.AddInvalidValueError("activity", f.Activity, "unknown activity type")
		} else {
			opts.Activity = &a
		}
	}

	if ve.HasErrors() {
		return domain.SearchOptions{}, ve.ToAppError()
	}
	if err := tev.ValidateSearchOptions(opts); err != nil {
		return domain.SearchOptions{}, toAppError(err)
	}
	return opts, nil
}

// toAppError converts field validation errors into application errors.
func toAppError(err error) error {
	var ve *validation.ValidationError
	if errors.As(err, &ve) {
		return ve.ToAppError()
	}
	return err
}
