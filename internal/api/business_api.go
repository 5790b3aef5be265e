package api

import (
	"context"
	"io"
	"regexp"
	"strconv"
	"time"

	"loipen-tracker/internal/domain"
	"loipen-tracker/internal/errors"
	"loipen-tracker/internal/receipts"
	"loipen-tracker/internal/services"
	"loipen-tracker/internal/timer"
)

var shorthandPattern = regexp.MustCompile(`^(\d+)(d|w|mo|y)$`)

// businessAPIImpl implements the BusinessAPI interface
type businessAPIImpl struct {
	services *services.ServiceContainer
	clock    timer.Clock
}

// NewBusinessAPI creates a new BusinessAPI instance
func NewBusinessAPI(container *services.ServiceContainer, clock timer.Clock) BusinessAPI {
	if clock == nil {
		clock = timer.SystemClock{}
	}
	return &businessAPIImpl{services: container, clock: clock}
}

// ========== Timer Workflows ==========

func (b *businessAPIImpl) StartTimer(ctx context.Context, userID, activity string) (*TimerSession, error) {
	if _, err := b.services.TimerService.Start(ctx, userID, activity); err != nil {
		return nil, err
	}
	return b.GetTimerSession(ctx, userID)
}

func (b *businessAPIImpl) PauseTimer(ctx context.Context, userID string) (*TimerSession, error) {
	status, err := b.services.TimerService.Pause(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newTimerSession(*status), nil
}

func (b *businessAPIImpl) ResumeTimer(ctx context.Context, userID string) (*TimerSession, error) {
	status, err := b.services.TimerService.Resume(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newTimerSession(*status), nil
}

func (b *businessAPIImpl) StopTimer(ctx context.Context, userID string) (*domain.TimeEntry, error) {
	return b.services.TimerService.Stop(ctx, userID)
}

func (b *businessAPIImpl) GetTimerSession(ctx context.Context, userID string) (*TimerSession, error) {
	status, err := b.services.TimerService.Status(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newTimerSession(*status), nil
}

func (b *businessAPIImpl) WatchTimer(ctx context.Context, userID string, interval time.Duration, render func(TimerSession)) error {
	return b.services.TimerService.Watch(ctx, userID, interval, func(status services.TimerStatus) {
		render(*newTimerSession(status))
	})
}

func newTimerSession(status services.TimerStatus) *TimerSession {
	session := &TimerSession{Status: status}
	if status.Entry != nil {
		session.Activity = status.Entry.ActivityType.Label()
		session.StartedAt = status.Entry.StartTime.Format(domain.ShortClock)
	}
	return session
}

// ========== Entries ==========

func (b *businessAPIImpl) SaveManualEntry(ctx context.Context, req ManualEntryRequest) (*domain.TimeEntry, error) {
	return b.services.EntryService.SaveManualEntry(ctx, req.UserID, req.Date, req.Activity, req.Start, req.End)
}

func (b *businessAPIImpl) SearchEntries(ctx context.Context, filter services.EntryFilter) (*EntryReport, error) {
	views, err := b.services.EntryService.ListEntries(ctx, filter)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.TimeEntry, 0, len(views))
	report := &EntryReport{Entries: views}
	for _, v := range views {
		entries = append(entries, v.Entry)
		if v.Entry.IsRunning() {
			report.Running++
		}
	}
	report.TotalHours = domain.SumHours(entries)
	report.ByActivity = b.services.ReportingService.ActivityTotals(entries)
	return report, nil
}

// ParseTimeRange covers whole days: "1d" is today, "2w" the last fourteen
// days, "1mo" the month up to today.
func (b *businessAPIImpl) ParseTimeRange(ctx context.Context, shorthand string) (*TimeRange, error) {
	if shorthand == "" {
		return nil, errors.NewValidationError("time range cannot be empty", nil)
	}
	m := shorthandPattern.FindStringSubmatch(shorthand)
	if m == nil {
		return nil, errors.NewInvalidInputError("time range", shorthand, "use a number followed by d, w, mo or y")
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return nil, errors.NewInvalidInputError("time range", shorthand, "must be at least 1")
	}

	today := domain.DateOf(b.clock.Now())
	var start time.Time
	switch m[2] {
	case "d":
		start = today.AddDate(0, 0, 1-n)
	case "w":
		start = today.AddDate(0, 0, 1-7*n)
	case "mo":
		start = today.AddDate(0, -n, 1)
	case "y":
		start = today.AddDate(-n, 0, 1)
	}
	return &TimeRange{Start: start, End: today}, nil
}

// ========== Dashboard and Reporting ==========

func (b *businessAPIImpl) GetDashboard(ctx context.Context, userID string) (*DashboardData, error) {
	session, err := b.GetTimerSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary, err := b.services.ReportingService.Summary(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &DashboardData{Timer: session, Summary: summary}, nil
}

func (b *businessAPIImpl) GetSummary(ctx context.Context, userID string) (*services.HoursSummary, error) {
	return b.services.ReportingService.Summary(ctx, userID)
}

func (b *businessAPIImpl) ListSeasons(ctx context.Context) []string {
	return b.services.ReportingService.Seasons()
}

// ========== Export ==========

func (b *businessAPIImpl) PrepareExport(ctx context.Context, req services.ExportRequest) (*services.PreparedExport, error) {
	return b.services.ExportService.Prepare(ctx, req)
}

func (b *businessAPIImpl) Export(ctx context.Context, req services.ExportRequest, w io.Writer) (*services.ExportResult, error) {
	return b.services.ExportService.Export(ctx, req, w)
}

// ========== Roster ==========

func (b *businessAPIImpl) AddEmployee(ctx context.Context, userID, firstName, lastName string) (*domain.Employee, error) {
	return b.services.EntryService.AddEmployee(ctx, userID, firstName, lastName)
}

func (b *businessAPIImpl) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	return b.services.EntryService.ListEmployees(ctx)
}

// ========== Worker Records ==========

func (b *businessAPIImpl) LogDiesel(ctx context.Context, req DieselRequest) (*domain.DieselEntry, error) {
	return b.services.RecordService.LogDiesel(ctx, req)
}

func (b *businessAPIImpl) UpdateDiesel(ctx context.Context, id string, req DieselRequest) (*domain.DieselEntry, error) {
	return b.services.RecordService.UpdateDiesel(ctx, id, req)
}

func (b *businessAPIImpl) SaveExpense(ctx context.Context, req ExpenseRequest) (*domain.Expense, error) {
	return b.services.RecordService.SaveExpense(ctx, req)
}

func (b *businessAPIImpl) SaveCashTaking(ctx context.Context, req CashTakingRequest) (*domain.CashTaking, error) {
	return b.services.RecordService.SaveCashTaking(ctx, req)
}

func (b *businessAPIImpl) UpdateCashTaking(ctx context.Context, id string, req CashTakingRequest) (*domain.CashTaking, error) {
	return b.services.RecordService.UpdateCashTaking(ctx, id, req)
}

func (b *businessAPIImpl) ListRecords(ctx context.Context, filter services.EntryFilter) (*services.RecordBook, error) {
	return b.services.RecordService.ListRecords(ctx, filter)
}

// ========== Receipts ==========

func (b *businessAPIImpl) ReceiptUploadURL(ctx context.Context, userID, fileName string) (*receipts.Upload, error) {
	return b.services.ReceiptService.UploadURL(ctx, userID, fileName)
}

func (b *businessAPIImpl) ReceiptDownloadURL(ctx context.Context, userID, key string) (string, error) {
	return b.services.ReceiptService.DownloadURL(ctx, userID, key)
}
