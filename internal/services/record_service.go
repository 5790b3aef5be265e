package services

import (
	"context"

	"loipen-tracker/internal/domain"
	"loipen-tracker/internal/logging"
	"loipen-tracker/internal/repository/sqlstore"
	"loipen-tracker/internal/timer"
	"loipen-tracker/internal/validation"
)

// recordServiceImpl implements the RecordService interface
type recordServiceImpl struct {
	repo               sqlstore.Repository
	clock              timer.Clock
	validator          *validation.Validator
	recordValidator    *validation.RecordValidator
	timeEntryValidator *validation.TimeEntryValidator
	log                logging.Logger
}

// NewRecordService creates a new RecordService instance
func NewRecordService(repo sqlstore.Repository, clock timer.Clock, v *validation.Validator, log logging.Logger) RecordService {
	if v == nil {
		v = validation.NewValidator()
	}
	if clock == nil {
		clock = timer.SystemClock{Location: v.Location()}
	}
	if log == nil {
		log = logging.Discard()
	}
	return &recordServiceImpl{
		repo:               repo,
		clock:              clock,
		validator:          v,
		recordValidator:    validation.NewRecordValidator(v),
		timeEntryValidator: validation.NewTimeEntryValidator(v),
		log:                log,
	}
}

// today fills in an empty date with the current day.
func (r *recordServiceImpl) today(date string) string {
	if date != "" {
		return date
	}
	return r.clock.Now().In(r.validator.Location()).Format(domain.DateLayout)
}

// LogDiesel books a refuel. An empty date means today.
func (r *recordServiceImpl) LogDiesel(ctx context.Context, in validation.DieselInput) (*domain.DieselEntry, error) {
	in.Date = r.today(in.Date)
	entry, err := r.recordValidator.ValidateDiesel(in)
	if err != nil {
		return nil, toAppError(err)
	}
	if err := r.repo.CreateDieselEntry(ctx, &entry); err != nil {
		r.log.Error(ctx, "save diesel entry failed", "user", in.UserID, "error", err)
		return nil, err
	}
	r.log.Info(ctx, "diesel logged", "user", entry.UserID, "tank", string(entry.Tank), "liters", entry.Liters)
	return &entry, nil
}

// UpdateDiesel corrects one of the user's refuels.
func (r *recordServiceImpl) UpdateDiesel(ctx context.Context, id string, in validation.DieselInput) (*domain.DieselEntry, error) {
	if err := validation.RecordID(id); err != nil {
		return nil, toAppError(err)
	}
	in.Date = r.today(in.Date)
	entry, err := r.recordValidator.ValidateDiesel(in)
	if err != nil {
		return nil, toAppError(err)
	}
	entry.ID = id
	if err := r.repo.UpdateDieselEntry(ctx, &entry); err != nil {
		return nil, err
	}
	r.log.Info(ctx, "diesel entry updated", "user", entry.UserID, "id", id)
	return &entry, nil
}

// SaveExpense books an uploaded receipt as an expense.
func (r *recordServiceImpl) SaveExpense(ctx context.Context, in validation.ExpenseInput) (*domain.Expense, error) {
	in.Date = r.today(in.Date)
	expense, err := r.recordValidator.ValidateExpense(in)
	if err != nil {
		return nil, toAppError(err)
	}
	if err := r.repo.CreateExpense(ctx, &expense); err != nil {
		r.log.Error(ctx, "save expense failed", "user", in.UserID, "error", err)
		return nil, err
	}
	r.log.Info(ctx, "expense saved", "user", expense.UserID, "receipt", expense.Receipt.Key)
	return &expense, nil
}

// SaveCashTaking books day-ticket money.
func (r *recordServiceImpl) SaveCashTaking(ctx context.Context, in validation.CashTakingInput) (*domain.CashTaking, error) {
	in.Date = r.today(in.Date)
	taking, err := r.recordValidator.ValidateCashTaking(in)
	if err != nil {
		return nil, toAppError(err)
	}
	if err := r.repo.CreateCashTaking(ctx, &taking); err != nil {
		r.log.Error(ctx, "save cash taking failed", "user", in.UserID, "error", err)
		return nil, err
	}
	r.log.Info(ctx, "cash taking saved", "user", taking.UserID, "amount", taking.Amount)
	return &taking, nil
}

// UpdateCashTaking corrects one of the user's takings. Without a receipt key
// the stored receipt is kept.
func (r *recordServiceImpl) UpdateCashTaking(ctx context.Context, id string, in validation.CashTakingInput) (*domain.CashTaking, error) {
	if err := validation.RecordID(id); err != nil {
		return nil, toAppError(err)
	}
	in.Date = r.today(in.Date)
	taking, err := r.recordValidator.ValidateCashTaking(in)
	if err != nil {
		return nil, toAppError(err)
	}
	taking.ID = id
	if err := r.repo.UpdateCashTaking(ctx, &taking); err != nil {
		return nil, err
	}
	r.log.Info(ctx, "cash taking updated", "user", taking.UserID, "id", id)
	return &taking, nil
}

// ListRecords returns the records matching filter with their totals. The
// activity of the filter does not apply to records.
func (r *recordServiceImpl) ListRecords(ctx context.Context, filter EntryFilter) (*RecordBook, error) {
	filter.Activity = ""
	opts, err := resolveFilter(r.validator, r.timeEntryValidator, filter)
	if err != nil {
		return nil, err
	}

	book := &RecordBook{}
	if book.Diesel, err = r.repo.SearchDieselEntries(ctx, opts); err != nil {
		return nil, err
	}
	if book.Expenses, err = r.repo.SearchExpenses(ctx, opts); err != nil {
		return nil, err
	}
	if book.CashTakings, err = r.repo.SearchCashTakings(ctx, opts); err != nil {
		return nil, err
	}
	book.LitersByTank = domain.LitersByTank(book.Diesel)
	book.ExpenseTotal = domain.SumExpenses(book.Expenses)
	book.CashTotal = domain.SumCashTakings(book.CashTakings)
	return book, nil
}
