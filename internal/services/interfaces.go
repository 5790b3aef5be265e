package services

import (
	"context"
	"io"
	"time"

	"loipen-tracker/internal/domain"
	"loipen-tracker/internal/receipts"
	"loipen-tracker/internal/validation"
)

// TimerStatus is the current timer session of a user.
type TimerStatus struct {
	UserID         string            `json:"user_id"`
	State          string            `json:"state"`
	Entry          *domain.TimeEntry `json:"entry,omitempty"`
	ElapsedSeconds int64             `json:"elapsed_seconds"`
	Elapsed        string            `json:"elapsed"` // HH:MM:SS
	PausedSeconds  int64             `json:"paused_seconds"`
}

// EntryFilter is the raw list/export filter as typed by a user. Dates are
// YYYY-MM-DD, Season is a label like "Saison 2025-26".
type EntryFilter struct {
	UserID   string `json:"user_id,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Season   string `json:"season,omitempty"`
	Activity string `json:"activity,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// EntryView is a time entry joined with its employee's display name.
type EntryView struct {
	Entry    domain.TimeEntry `json:"entry"`
	Employee string           `json:"employee"`
	Duration string           `json:"duration"` // human-readable, empty while running
}

// HoursSummary holds the hour totals shown next to the timer.
type HoursSummary struct {
	UserID      string    `json:"user_id"`
	Today       float64   `json:"today"`
	Week        float64   `json:"week"`
	Month       float64   `json:"month"`
	Season      float64   `json:"season"`
	SeasonLabel string    `json:"season_label"`
	WeekStart   time.Time `json:"week_start"`
	MonthStart  time.Time `json:"month_start"`
}

// ActivityTotal is the hour sum of one activity type.
type ActivityTotal struct {
	Activity domain.ActivityType `json:"activity"`
	Label    string              `json:"label"`
	Hours    float64             `json:"hours"`
	Count    int                 `json:"count"`
}

// ExportRequest selects the entries of an export and its format.
type ExportRequest struct {
	Filter EntryFilter `json:"filter"`
	Format string      `json:"format"`
}

// ExportResult describes a written export.
type ExportResult struct {
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Rows        int       `json:"rows"`
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
}

// RecordBook holds diesel refuels, expenses and day-ticket takings with
// their totals.
type RecordBook struct {
	Diesel       []domain.DieselEntry          `json:"diesel"`
	Expenses     []domain.Expense              `json:"expenses"`
	CashTakings  []domain.CashTaking           `json:"cash_takings"`
	LitersByTank map[domain.DieselTank]float64 `json:"liters_by_tank"`
	ExpenseTotal float64                       `json:"expense_total"`
	CashTotal    float64                       `json:"cash_total"`
}

// TimerService runs the per-user timer sessions
type TimerService interface {
	Start(ctx context.Context, userID, activity string) (*domain.TimeEntry, error)
	Pause(ctx context.Context, userID string) (*TimerStatus, error)
	Resume(ctx context.Context, userID string) (*TimerStatus, error)
	Stop(ctx context.Context, userID string) (*domain.TimeEntry, error)
	Status(ctx context.Context, userID string) (*TimerStatus, error)
	Watch(ctx context.Context, userID string, interval time.Duration, render func(TimerStatus)) error
}

// EntryService handles manual entries, entry lists and the employee roster
type EntryService interface {
	SaveManualEntry(ctx context.Context, userID, date, activity, start, end string) (*domain.TimeEntry, error)
	ListEntries(ctx context.Context, filter EntryFilter) ([]EntryView, error)
	AddEmployee(ctx context.Context, userID, firstName, lastName string) (*domain.Employee, error)
	ListEmployees(ctx context.Context) ([]domain.Employee, error)
}

// ReportingService computes hour totals
type ReportingService interface {
	Summary(ctx context.Context, userID string) (*HoursSummary, error)
	ActivityTotals(entries []domain.TimeEntry) []ActivityTotal
	Seasons() []string
}

// ExportService writes admin timesheet exports
type ExportService interface {
	Export(ctx context.Context, req ExportRequest, w io.Writer) (*ExportResult, error)
	Prepare(ctx context.Context, req ExportRequest) (*PreparedExport, error)
}

// RecordService books diesel refuels, expense receipts and day-ticket takings
type RecordService interface {
	LogDiesel(ctx context.Context, in validation.DieselInput) (*domain.DieselEntry, error)
	UpdateDiesel(ctx context.Context, id string, in validation.DieselInput) (*domain.DieselEntry, error)
	SaveExpense(ctx context.Context, in validation.ExpenseInput) (*domain.Expense, error)
	SaveCashTaking(ctx context.Context, in validation.CashTakingInput) (*domain.CashTaking, error)
	UpdateCashTaking(ctx context.Context, id string, in validation.CashTakingInput) (*domain.CashTaking, error)
	ListRecords(ctx context.Context, filter EntryFilter) (*RecordBook, error)
}

// ReceiptService issues presigned receipt URLs
type ReceiptService interface {
	UploadURL(ctx context.Context, userID, fileName string) (*receipts.Upload, error)
	DownloadURL(ctx context.Context, userID, key string) (string, error)
}

// ServiceContainer manages all services and their dependencies
type ServiceContainer struct {
	TimerService     TimerService
	EntryService     EntryService
	ReportingService ReportingService
	ExportService    ExportService
	ReceiptService   ReceiptService
	RecordService    RecordService
}
