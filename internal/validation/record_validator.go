package validation

import (
	"math"
	"strconv"
	"strings"
	"time"

	"loipen-tracker/internal/domain"
	"loipen-tracker/internal/receipts"
)

const maxDescriptionLength = 500

// DieselInput is a refuel as typed into the form. Liters may use a decimal comma.
type DieselInput struct {
	UserID string `json:"user_id"`
	Date   string `json:"date"`
	Tank   string `json:"tank"`
	Liters string `json:"liters"`
}

// ExpenseInput is an expense receipt as handed in. Amount is optional.
type ExpenseInput struct {
	UserID      string `json:"user_id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	ReceiptKey  string `json:"receipt_key"`
	FileName    string `json:"file_name"`
}

// CashTakingInput is a day-ticket taking as typed into the form. The receipt
// is optional.
type CashTakingInput struct {
	UserID      string `json:"user_id"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	ReceiptKey  string `json:"receipt_key"`
	FileName    string `json:"file_name"`
}

// RecordValidator checks diesel, expense and cash-taking input.
type RecordValidator struct {
	validator *Validator
}

func NewRecordValidator(v *Validator) *RecordValidator {
	if v == nil {
		v = NewValidator()
	}
	return &RecordValidator{validator: v}
}

// ParseAmount parses a positive decimal like "12.50" or "12,50". Non-numeric,
// zero and negative values are field errors on field.
func ParseAmount(ve *ValidationError, field, s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		ve.AddRequiredError(field)
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		ve.AddInvalidFormatError(field, s, "a number such as 12.50")
		return 0, false
	}
	if f <= 0 {
		ve.AddInvalidValueError(field, s, "must be greater than zero")
		return 0, false
	}
	return domain.RoundAmount(f), true
}

// ValidateDiesel returns the refuel described by in.
func (rv *RecordValidator) ValidateDiesel(in DieselInput) (domain.DieselEntry, error) {
	ve := NewValidationError()
	rv.checkUser(ve, in.UserID)
	date := rv.parseDate(ve, in.Date)

	tank, err := domain.ParseDieselTank(in.Tank)
	if err != nil {
		if rv.validator.IsNonEmptyString(in.Tank) {
			ve.AddInvalidValueError("tank", in.Tank, "must be Nidfurn or Hätzingen")
		} else {
			ve.AddRequiredError("tank")
		}
	}
	liters, _ := ParseAmount(ve, "liters", in.Liters)

	if err := ve.orNil(); err != nil {
		return domain.DieselEntry{}, err
	}
	return domain.DieselEntry{UserID: in.UserID, Date: date, Tank: tank, Liters: liters}, nil
}

// ValidateExpense returns the expense described by in. The receipt must lie
// in the user's own folder.
func (rv *RecordValidator) ValidateExpense(in ExpenseInput) (domain.Expense, error) {
	ve := NewValidationError()
	rv.checkUser(ve, in.UserID)
	date := rv.parseDate(ve, in.Date)
	description := rv.description(ve, in.Description)

	var amount *float64
	if rv.validator.IsNonEmptyString(in.Amount) {
		if a, ok := ParseAmount(ve, "amount", in.Amount); ok {
			amount = &a
		}
	}

	receipt := rv.receipt(ve, in.UserID, in.ReceiptKey, in.FileName)
	if receipt == nil && !rv.validator.IsNonEmptyString(in.ReceiptKey) {
		ve.AddRequiredError("receipt_key")
	}

	if err := ve.orNil(); err != nil {
		return domain.Expense{}, err
	}
	return domain.Expense{
		UserID:      in.UserID,
		Date:        date,
		Description: description,
		Amount:      amount,
		Receipt:     *receipt,
	}, nil
}

// ValidateCashTaking returns the day-ticket taking described by in.
func (rv *RecordValidator) ValidateCashTaking(in CashTakingInput) (domain.CashTaking, error) {
	ve := NewValidationError()
	rv.checkUser(ve, in.UserID)
	date := rv.parseDate(ve, in.Date)
	amount, _ := ParseAmount(ve, "amount", in.Amount)
	description := rv.description(ve, in.Description)

	var receipt *domain.Receipt
	if rv.validator.IsNonEmptyString(in.ReceiptKey) {
		receipt = rv.receipt(ve, in.UserID, in.ReceiptKey, in.FileName)
	}

	if err := ve.orNil(); err != nil {
		return domain.CashTaking{}, err
	}
	return domain.CashTaking{
		UserID:      in.UserID,
		Date:        date,
		Amount:      amount,
		Description: description,
		Receipt:     receipt,
	}, nil
}

func (rv *RecordValidator) checkUser(ve *ValidationError, userID string) {
	if !rv.validator.IsNonEmptyString(userID) {
		ve.AddRequiredError("user_id")
	} else if !rv.validator.IsValidUserID(userID) {
		ve.AddInvalidValueError("user_id", userID, "must be a single token of at most 128 characters")
	}
}

func (rv *RecordValidator) parseDate(ve *ValidationError, s string) time.Time {
	if !rv.validator.IsNonEmptyString(s) {
		ve.AddRequiredError("date")
		return time.Time{}
	}
	d, ok := rv.validator.ParseDate(s)
	if !ok {
		ve.AddInvalidFormatError("date", s, "YYYY-MM-DD")
		return time.Time{}
	}
	if !rv.validator.IsReasonableDate(d) {
		ve.AddInvalidValueError("date", s, "must be within reasonable date range")
	}
	return d
}

func (rv *RecordValidator) description(ve *ValidationError, s string) string {
	s = strings.TrimSpace(s)
	if !rv.validator.IsValidStringLength(s, 0, maxDescriptionLength) {
		ve.AddInvalidLengthError("description", s, 0, maxDescriptionLength)
	}
	return s
}

// receipt returns nil when the key is missing or not the user's.
func (rv *RecordValidator) receipt(ve *ValidationError, userID, key, fileName string) *domain.Receipt {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	if !receipts.OwnedBy(key, userID) {
		ve.AddInvalidValueError("receipt_key", key, "must be a receipt uploaded by this user")
		return nil
	}
	return &domain.Receipt{Key: key, FileName: strings.TrimSpace(fileName)}
}

// RecordID checks the id of a record to update.
func RecordID(id string) error {
	if strings.TrimSpace(id) == "" {
		ve := NewValidationError()
		ve.AddRequiredError("id")
		return ve
	}
	return nil
}
