package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loipen-tracker/internal/domain"
	apperrors "loipen-tracker/internal/errors"
	"loipen-tracker/internal/validation"
)

func newEntryService(t *testing.T) (EntryService, *flakyRepo) {
	t.Helper()
	repo := &flakyRepo{Repository: setupTestRepo(t)}
	return NewEntryService(repo, validation.NewValidatorWithLocation(zurich), nil), repo
}

func TestEntryService_SaveManualEntry(t *testing.T) {
	tests := []struct {
		name           string
		date           string
		start, end     string
		activity       string
		expectedHours  float64
		errorAssertion func(t *testing.T, err error)
	}{
		{
			name:          "should save complete entry",
			date:          "2025-01-10",
			start:         "08:00",
			end:           "10:15",
			activity:      "Aufbau",
			expectedHours: 2.25,
		},
		{
			name:     "should reject end before start",
			date:     "2025-01-10",
			start:    "10:00",
			end:      "09:00",
			activity: "SetUp",
			errorAssertion: func(t *testing.T, err error) {
				var appErr *apperrors.AppError
				require.ErrorAs(t, err, &appErr)
				assert.True(t, appErr.IsType(apperrors.ErrorTypeValidation))
				assert.Equal(t, validation.EndBeforeStartMessage, appErr.Message)
			},
		},
		{
			name:     "should reject equal start and end",
			date:     "2025-01-10",
			start:    "10:00",
			end:      "10:00",
			activity: "SetUp",
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeValidation))
			},
		},
		{
			name:     "should reject malformed input",
			date:     "10.01.2025",
			start:    "8",
			end:      "09:00",
			activity: "Skifahren",
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeValidation))
				assert.Contains(t, apperrors.GetUserMessage(err), "Multiple validation errors")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newEntryService(t)
			ctx := context.Background()

			entry, err := svc.SaveManualEntry(ctx, "anna", tt.date, tt.activity, tt.start, tt.end)

			if tt.errorAssertion != nil {
				tt.errorAssertion(t, err)
				assert.Nil(t, entry)

				stored, err := repo.SearchTimeEntries(ctx, domain.SearchOptions{})
				require.NoError(t, err)
				assert.Empty(t, stored, "rejected entries are never written")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedHours, entry.Hours())
			assert.False(t, entry.IsRunning())

			stored, err := repo.GetTimeEntry(ctx, entry.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedHours, stored.Hours())
		})
	}
}

func TestEntryService_ManualEntryDoesNotBlockTimer(t *testing.T) {
	repo := setupTestRepo(t)
	entries := NewEntryService(repo, validation.NewValidatorWithLocation(zurich), nil)
	timers := NewTimerService(repo, newClock(at(10, 12, 0)), true, nil)
	ctx := context.Background()

	_, err := timers.Start(ctx, "anna", "SetUp")
	require.NoError(t, err)

	_, err = entries.SaveManualEntry(ctx, "anna", "2025-01-10", "Abbau", "06:00", "07:00")
	require.NoError(t, err)

	status, err := timers.Status(ctx, "anna")
	require.NoError(t, err)
	assert.Equal(t, "running", status.State)
}

func TestEntryService_ListEntries(t *testing.T) {
	svc, repo := newEntryService(t)
	ctx := context.Background()

	seedEntries(t, repo,
		domain.NewCompletedEntry("anna", domain.ActivityTrailGrooming, at(6, 8, 0), at(6, 9, 30)),
		domain.NewCompletedEntry("beat", domain.ActivitySetUp, at(7, 8, 0), at(7, 9, 0)),
		domain.NewTimeEntry("anna", domain.ActivityTearDown, at(8, 8, 0)),
	)
	_, err := svc.AddEmployee(ctx, "anna", "Anna", "Zürcher")
	require.NoError(t, err)

	views, err := svc.ListEntries(ctx, EntryFilter{})
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, "Anna Zürcher", views[0].Employee)
	assert.Empty(t, views[0].Duration, "running entry has no duration")
	assert.Equal(t, domain.UnknownEmployee, views[1].Employee)
	assert.Equal(t, "1h 30m", views[2].Duration)

	views, err = svc.ListEntries(ctx, EntryFilter{UserID: "anna", Activity: "Loipenpräparation"})
	require.NoError(t, err)
	assert.Len(t, views, 1)

	views, err = svc.ListEntries(ctx, EntryFilter{Season: "Saison 2024-25"})
	require.NoError(t, err)
	assert.Len(t, views, 3)

	views, err = svc.ListEntries(ctx, EntryFilter{Season: "2025-26"})
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestEntryService_ListEntries_DurationExcludesPauses(t *testing.T) {
	svc, repo := newEntryService(t)
	clock := newClock(at(10, 8, 0))
	timers := NewTimerService(repo, clock, true, nil)
	ctx := context.Background()

	_, err := timers.Start(ctx, "anna", "Aufbau")
	require.NoError(t, err)
	clock.Set(at(10, 8, 20))
	_, err = timers.Pause(ctx, "anna")
	require.NoError(t, err)
	clock.Set(at(10, 8, 35))
	_, err = timers.Resume(ctx, "anna")
	require.NoError(t, err)
	clock.Set(at(10, 9, 0))
	stopped, err := timers.Stop(ctx, "anna")
	require.NoError(t, err)
	require.Equal(t, 0.75, stopped.Hours())

	views, err := svc.ListEntries(ctx, EntryFilter{UserID: "anna"})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 0.75, views[0].Entry.Hours())
	assert.Equal(t, "45m", views[0].Duration)
}

func TestEntryService_ListEntries_InvalidFilter(t *testing.T) {
	svc, _ := newEntryService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter EntryFilter
	}{
		{"bad date", EntryFilter{From: "06.01.2025"}},
		{"reversed range", EntryFilter{From: "2025-01-10", To: "2025-01-01"}},
		{"bad season", EntryFilter{Season: "Winter"}},
		{"bad activity", EntryFilter{Activity: "Skifahren"}},
		{"bad limit", EntryFilter{Limit: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ListEntries(ctx, tt.filter)
			require.Error(t, err)
			assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeValidation), "got %v", err)
		})
	}
}

func TestEntryService_Employees(t *testing.T) {
	svc, _ := newEntryService(t)
	ctx := context.Background()

	_, err := svc.AddEmployee(ctx, "anna", "", "Zürcher")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeValidation))

	emp, err := svc.AddEmployee(ctx, "anna", "Anna", "Zürcher")
	require.NoError(t, err)
	assert.Equal(t, "Anna Zürcher", emp.FullName())

	employees, err := svc.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, employees, 1)
}
