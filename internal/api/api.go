package api

import (
	"context"
	"io"
	"time"

	"loipen-tracker/internal/domain"
	"loipen-tracker/internal/receipts"
	"loipen-tracker/internal/services"
	"loipen-tracker/internal/validation"
)

// Business domain types
type TimerSession struct {
	Status    services.TimerStatus `json:"status"`
	Activity  string               `json:"activity,omitempty"`   // German label of the running activity
	StartedAt string               `json:"started_at,omitempty"` // HH:MM
}

type DashboardData struct {
	Timer   *TimerSession          `json:"timer"`
	Summary *services.HoursSummary `json:"summary"`
}

type EntryReport struct {
	Entries    []services.EntryView     `json:"entries"`
	TotalHours float64                  `json:"total_hours"`
	Running    int                      `json:"running"`
	ByActivity []services.ActivityTotal `json:"by_activity"`
}

type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ManualEntryRequest is a manual entry as typed into the form.
type ManualEntryRequest struct {
	UserID   string `json:"user_id"`
	Date     string `json:"date"`
	Activity string `json:"activity"`
	Start    string `json:"start"`
	End      string `json:"end"`
}

// Worker record requests carry the form values unparsed; amounts may use a
// decimal comma.
type (
	DieselRequest     = validation.DieselInput
	ExpenseRequest    = validation.ExpenseInput
	CashTakingRequest = validation.CashTakingInput
)

// BusinessAPI is the facade the CLI and the HTTP server talk to.
type BusinessAPI interface {
	// ========== Timer Workflows ==========

	// StartTimer opens a new entry for today and starts counting
	StartTimer(ctx context.Context, userID, activity string) (*TimerSession, error)

	// PauseTimer freezes the displayed time; the stored entry is untouched
	PauseTimer(ctx context.Context, userID string) (*TimerSession, error)

	// ResumeTimer continues a paused timer
	ResumeTimer(ctx context.Context, userID string) (*TimerSession, error)

	// StopTimer closes the open entry with its rounded hours
	StopTimer(ctx context.Context, userID string) (*domain.TimeEntry, error)

	// GetTimerSession returns the user's timer, idle when nothing runs
	GetTimerSession(ctx context.Context, userID string) (*TimerSession, error)

	// WatchTimer renders the session on every tick until ctx is done
	WatchTimer(ctx context.Context, userID string, interval time.Duration, render func(TimerSession)) error

	// ========== Entries ==========

	// SaveManualEntry stores a complete entry typed in after the fact
	SaveManualEntry(ctx context.Context, req ManualEntryRequest) (*domain.TimeEntry, error)

	// SearchEntries lists entries with their totals
	SearchEntries(ctx context.Context, filter services.EntryFilter) (*EntryReport, error)

	// ParseTimeRange converts shorthand like "3d", "2w" or "1mo" into a day range ending today
	ParseTimeRange(ctx context.Context, shorthand string) (*TimeRange, error)

	// ========== Dashboard and Reporting ==========

	// GetDashboard returns the timer together with the hour totals shown next to it
	GetDashboard(ctx context.Context, userID string) (*DashboardData, error)

	// GetSummary returns today, week, month and season totals
	GetSummary(ctx context.Context, userID string) (*services.HoursSummary, error)

	// ListSeasons returns the selectable season labels, newest first
	ListSeasons(ctx context.Context) []string

	// ========== Export ==========

	// PrepareExport loads an export so the caller can pick a file name first
	PrepareExport(ctx context.Context, req services.ExportRequest) (*services.PreparedExport, error)

	// Export writes a timesheet to w
	Export(ctx context.Context, req services.ExportRequest, w io.Writer) (*services.ExportResult, error)

	// ========== Roster ==========

	AddEmployee(ctx context.Context, userID, firstName, lastName string) (*domain.Employee, error)
	ListEmployees(ctx context.Context) ([]domain.Employee, error)

	// ========== Worker Records ==========

	// LogDiesel books litres taken from one of the diesel tanks
	LogDiesel(ctx context.Context, req DieselRequest) (*domain.DieselEntry, error)

	// UpdateDiesel corrects a refuel of the same user
	UpdateDiesel(ctx context.Context, id string, req DieselRequest) (*domain.DieselEntry, error)

	// SaveExpense books an uploaded receipt as an expense
	SaveExpense(ctx context.Context, req ExpenseRequest) (*domain.Expense, error)

	// SaveCashTaking books day-ticket money
	SaveCashTaking(ctx context.Context, req CashTakingRequest) (*domain.CashTaking, error)

	// UpdateCashTaking corrects a taking of the same user
	UpdateCashTaking(ctx context.Context, id string, req CashTakingRequest) (*domain.CashTaking, error)

	// ListRecords returns diesel, expenses and takings with their totals
	ListRecords(ctx context.Context, filter services.EntryFilter) (*services.RecordBook, error)

	// ========== Receipts ==========

	ReceiptUploadURL(ctx context.Context, userID, fileName string) (*receipts.Upload, error)
	ReceiptDownloadURL(ctx context.Context, userID, key string) (string, error)
}
