package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"testing"
	"time"

	"loipen-tracker/internal/api"
	"loipen-tracker/internal/config"
	"loipen-tracker/internal/domain"
	"loipen-tracker/internal/errors"
	"loipen-tracker/internal/receipts"
	"loipen-tracker/internal/services"
	"loipen-tracker/internal/validation"
)

var zurich, _ = time.LoadLocation("Europe/Zurich")

// testNow is Friday 10 January 2025, 07:30 in Zurich.
var testNow = time.Date(2025, 1, 10, 7, 30, 0, 0, zurich)

// mockBusinessAPI implements the BusinessAPI interface for testing
type mockBusinessAPI struct {
	now       time.Time
	running   map[string]*domain.TimeEntry
	paused    map[string]bool
	entries   []domain.TimeEntry
	employees map[string]domain.Employee
	nextID    int

	diesel   []domain.DieselEntry
	expenses []domain.Expense
	cash     []domain.CashTaking

	err        error // returned by every call when set
	watchTicks int

	lastFilter services.EntryFilter
	lastManual api.ManualEntryRequest
	lastExport services.ExportRequest
	lastDiesel api.DieselRequest
	lastCash   api.CashTakingRequest
}

// newMockBusinessAPI creates a new mock BusinessAPI instance
func newMockBusinessAPI() *mockBusinessAPI {
	return &mockBusinessAPI{
		now:        testNow,
		running:    make(map[string]*domain.TimeEntry),
		paused:     make(map[string]bool),
		employees:  make(map[string]domain.Employee),
		watchTicks: 3,
	}
}

func (m *mockBusinessAPI) session(userID string) *api.TimerSession {
	entry, ok := m.running[userID]
	if !ok {
		return &api.TimerSession{Status: services.TimerStatus{UserID: userID, State: "idle", Elapsed: "00:00:00"}}
	}
	status := services.TimerStatus{UserID: userID, State: "running", Entry: entry, ElapsedSeconds: 2700, Elapsed: "00:45:00"}
	if m.paused[userID] {
		status.State = "paused"
	}
	return &api.TimerSession{
		Status:    status,
		Activity:  entry.ActivityType.Label(),
		StartedAt: entry.StartTime.Format(domain.ShortClock),
	}
}

func (m *mockBusinessAPI) StartTimer(ctx context.Context, userID, activity string) (*api.TimerSession, error) {
	if m.err != nil {
		return nil, m.err
	}
	a, err := validation.ParseActivity(activity)
	if err != nil {
		return nil, err
	}
	if _, ok := m.running[userID]; ok {
		return nil, errors.NewConflictError("a timer is already running")
	}
	entry := domain.NewTimeEntry(userID, a, m.now)
	m.running[userID] = &entry
	return m.session(userID), nil
}

func (m *mockBusinessAPI) PauseTimer(ctx context.Context, userID string) (*api.TimerSession, error) {
	if _, ok := m.running[userID]; !ok {
		return nil, errors.NewConflictError("no timer is running")
	}
	if m.paused[userID] {
		return nil, errors.NewConflictError("timer is already paused")
	}
	m.paused[userID] = true
	return m.session(userID), nil
}

func (m *mockBusinessAPI) ResumeTimer(ctx context.Context, userID string) (*api.TimerSession, error) {
	if !m.paused[userID] {
		return nil, errors.NewConflictError("timer is not paused")
	}
	m.paused[userID] = false
	return m.session(userID), nil
}

func (m *mockBusinessAPI) StopTimer(ctx context.Context, userID string) (*domain.TimeEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	entry, ok := m.running[userID]
	if !ok {
		return nil, errors.NewConflictError("no timer is running")
	}
	done := entry.Stop(entry.StartTime.Add(90*time.Minute), 1.5)
	delete(m.running, userID)
	delete(m.paused, userID)
	m.entries = append(m.entries, done)
	return &done, nil
}

func (m *mockBusinessAPI) GetTimerSession(ctx context.Context, userID string) (*api.TimerSession, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.session(userID), nil
}

func (m *mockBusinessAPI) WatchTimer(ctx context.Context, userID string, interval time.Duration, render func(api.TimerSession)) error {
	if m.err != nil {
		return m.err
	}
	for i := 0; i < m.watchTicks; i++ {
		render(*m.session(userID))
	}
	return context.Canceled
}

func (m *mockBusinessAPI) SaveManualEntry(ctx context.Context, req api.ManualEntryRequest) (*domain.TimeEntry, error) {
	m.lastManual = req
	a, err := validation.ParseActivity(req.Activity)
	if err != nil {
		return nil, err
	}
	day, err := time.ParseInLocation(domain.DateLayout, req.Date, zurich)
	if err != nil {
		return nil, errors.NewValidationError("date must be YYYY-MM-DD", err)
	}
	start, _ := time.ParseInLocation(domain.DateLayout+" "+domain.ShortClock, req.Date+" "+req.Start, zurich)
	end, _ := time.ParseInLocation(domain.DateLayout+" "+domain.ShortClock, req.Date+" "+req.End, zurich)
	if !end.After(start) {
		return nil, errors.NewValidationError(validation.EndBeforeStartMessage, nil)
	}
	entry := domain.NewCompletedEntry(req.UserID, a, start, end)
	entry.Date = day
	m.entries = append(m.entries, entry)
	return &entry, nil
}

func (m *mockBusinessAPI) SearchEntries(ctx context.Context, filter services.EntryFilter) (*api.EntryReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastFilter = filter

	dir := domain.NewEmployeeDirectory(m.listEmployees())
	report := &api.EntryReport{}
	var matched []domain.TimeEntry
	byActivity := map[domain.ActivityType]*services.ActivityTotal{}
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if filter.UserID != "" && e.UserID != filter.UserID {
			continue
		}
		view := services.EntryView{Entry: e, Employee: dir.Name(e.UserID)}
		if e.IsRunning() {
			report.Running++
		} else {
			view.Duration = domain.FormatDuration(domain.HoursDuration(e.Hours()))
			total, ok := byActivity[e.ActivityType]
			if !ok {
				total = &services.ActivityTotal{Activity: e.ActivityType, Label: e.ActivityType.Label()}
				byActivity[e.ActivityType] = total
			}
			total.Hours += e.Hours()
			total.Count++
		}
		report.Entries = append(report.Entries, view)
		matched = append(matched, e)
	}
	report.TotalHours = domain.SumHours(matched)
	for _, a := range domain.AllActivityTypes() {
		if total, ok := byActivity[a]; ok {
			report.ByActivity = append(report.ByActivity, *total)
		}
	}
	return report, nil
}

func (m *mockBusinessAPI) ParseTimeRange(ctx context.Context, shorthand string) (*api.TimeRange, error) {
	today := domain.DateOf(m.now)
	switch shorthand {
	case "1d":
		return &api.TimeRange{Start: today, End: today}, nil
	case "2w":
		return &api.TimeRange{Start: today.AddDate(0, 0, -13), End: today}, nil
	}
	return nil, errors.NewInvalidInputError("time range", shorthand, "use a number followed by d, w, mo or y")
}

func (m *mockBusinessAPI) summary(userID string) *services.HoursSummary {
	return &services.HoursSummary{
		UserID:      userID,
		Today:       2.5,
		Week:        3.5,
		Month:       5.5,
		Season:      9.5,
		SeasonLabel: "Saison 2024-25",
		WeekStart:   time.Date(2025, 1, 6, 0, 0, 0, 0, zurich),
		MonthStart:  time.Date(2025, 1, 1, 0, 0, 0, 0, zurich),
	}
}

func (m *mockBusinessAPI) GetDashboard(ctx context.Context, userID string) (*api.DashboardData, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &api.DashboardData{Timer: m.session(userID), Summary: m.summary(userID)}, nil
}

func (m *mockBusinessAPI) GetSummary(ctx context.Context, userID string) (*services.HoursSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.summary(userID), nil
}

func (m *mockBusinessAPI) ListSeasons(ctx context.Context) []string {
	return []string{"Saison 2024-25", "Saison 2023-24"}
}

func (m *mockBusinessAPI) PrepareExport(ctx context.Context, req services.ExportRequest) (*services.PreparedExport, error) {
	m.lastExport = req
	if m.err != nil {
		return nil, m.err
	}
	if req.Format != "csv" && req.Format != "xlsx" {
		return nil, errors.NewInvalidInputError("format", req.Format, "must be csv or xlsx")
	}
	return &services.PreparedExport{ExportResult: services.ExportResult{
		FileName: "Arbeitszeit_2025-01-06_2025-01-12.csv",
		Rows:     2,
	}}, nil
}

func (m *mockBusinessAPI) Export(ctx context.Context, req services.ExportRequest, w io.Writer) (*services.ExportResult, error) {
	prepared, err := m.PrepareExport(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := prepared.Write(w); err != nil {
		return nil, err
	}
	return &prepared.ExportResult, nil
}

func (m *mockBusinessAPI) AddEmployee(ctx context.Context, userID, firstName, lastName string) (*domain.Employee, error) {
	if userID == "" || firstName == "" || lastName == "" {
		return nil, errors.NewValidationError("user id, first name and last name are required", nil)
	}
	e := domain.Employee{UserID: userID, FirstName: firstName, LastName: lastName, CreatedAt: m.now, UpdatedAt: m.now}
	m.employees[userID] = e
	return &e, nil
}

func (m *mockBusinessAPI) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.listEmployees(), nil
}

func (m *mockBusinessAPI) listEmployees() []domain.Employee {
	out := make([]domain.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

func (m *mockBusinessAPI) ReceiptUploadURL(ctx context.Context, userID, fileName string) (*receipts.Upload, error) {
	return nil, errors.NewStoreError("receipts are not configured", nil)
}

func (m *mockBusinessAPI) ReceiptDownloadURL(ctx context.Context, userID, key string) (string, error) {
	return "", errors.NewStoreError("receipts are not configured", nil)
}

func (m *mockBusinessAPI) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *mockBusinessAPI) LogDiesel(ctx context.Context, req api.DieselRequest) (*domain.DieselEntry, error) {
	m.lastDiesel = req
	entry, err := validation.NewRecordValidator(nil).ValidateDiesel(req)
	if err != nil {
		return nil, err
	}
	entry.ID = m.id("d")
	m.diesel = append(m.diesel, entry)
	return &entry, nil
}

func (m *mockBusinessAPI) UpdateDiesel(ctx context.Context, id string, req api.DieselRequest) (*domain.DieselEntry, error) {
	m.lastDiesel = req
	entry, err := validation.NewRecordValidator(nil).ValidateDiesel(req)
	if err != nil {
		return nil, err
	}
	for i, e := range m.diesel {
		if e.ID == id && e.UserID == req.UserID {
			entry.ID = id
			m.diesel[i] = entry
			return &entry, nil
		}
	}
	return nil, errors.NewNotFoundError("diesel entry", id)
}

func (m *mockBusinessAPI) SaveExpense(ctx context.Context, req api.ExpenseRequest) (*domain.Expense, error) {
	expense, err := validation.NewRecordValidator(nil).ValidateExpense(req)
	if err != nil {
		return nil, err
	}
	expense.ID = m.id("e")
	m.expenses = append(m.expenses, expense)
	return &expense, nil
}

func (m *mockBusinessAPI) SaveCashTaking(ctx context.Context, req api.CashTakingRequest) (*domain.CashTaking, error) {
	m.lastCash = req
	taking, err := validation.NewRecordValidator(nil).ValidateCashTaking(req)
	if err != nil {
		return nil, err
	}
	taking.ID = m.id("c")
	m.cash = append(m.cash, taking)
	return &taking, nil
}

func (m *mockBusinessAPI) UpdateCashTaking(ctx context.Context, id string, req api.CashTakingRequest) (*domain.CashTaking, error) {
	m.lastCash = req
	taking, err := validation.NewRecordValidator(nil).ValidateCashTaking(req)
	if err != nil {
		return nil, err
	}
	for i, c := range m.cash {
		if c.ID == id && c.UserID == req.UserID {
			taking.ID = id
			if taking.Receipt == nil {
				taking.Receipt = c.Receipt
			}
			m.cash[i] = taking
			return &taking, nil
		}
	}
	return nil, errors.NewNotFoundError("cash taking", id)
}

func (m *mockBusinessAPI) ListRecords(ctx context.Context, filter services.EntryFilter) (*services.RecordBook, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastFilter = filter
	book := &services.RecordBook{}
	for _, e := range m.diesel {
		if filter.UserID == "" || e.UserID == filter.UserID {
			book.Diesel = append(book.Diesel, e)
		}
	}
	for _, e := range m.expenses {
		if filter.UserID == "" || e.UserID == filter.UserID {
			book.Expenses = append(book.Expenses, e)
		}
	}
	for _, c := range m.cash {
		if filter.UserID == "" || c.UserID == filter.UserID {
			book.CashTakings = append(book.CashTakings, c)
		}
	}
	book.LitersByTank = domain.LitersByTank(book.Diesel)
	book.ExpenseTotal = domain.SumExpenses(book.Expenses)
	book.CashTotal = domain.SumCashTakings(book.CashTakings)
	return book, nil
}

// setupTestAppWithMockBusinessAPI creates an App acting for "anna" that
// prints into the returned buffer.
func setupTestAppWithMockBusinessAPI(t *testing.T) (*App, *mockBusinessAPI, *bytes.Buffer) {
	t.Helper()

	previous := timeNow
	timeNow = func() time.Time { return testNow }
	t.Cleanup(func() { timeNow = previous })

	mock := newMockBusinessAPI()
	cfg := config.NewConfig()
	cfg.Application.UserID = "anna"
	cfg.Server.JWTSecret = "test-secret"
	out := &bytes.Buffer{}
	return NewAppWithConfig(mock, cfg, out), mock, out
}
