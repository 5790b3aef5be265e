package services

import (
	"context"
	"math"
	"time"

	"loipen-tracker/internal/domain"
	apperrors "loipen-tracker/internal/errors"
	"loipen-tracker/internal/repository/sqlstore"
	"loipen-tracker/internal/season"
	"loipen-tracker/internal/timer"
)

// reportingServiceImpl implements the ReportingService interface
type reportingServiceImpl struct {
	repo      sqlstore.Repository
	clock     timer.Clock
	firstYear int
}

// NewReportingService creates a new ReportingService instance
func NewReportingService(repo sqlstore.Repository, clock timer.Clock, firstSeasonYear int) ReportingService {
	return &reportingServiceImpl{repo: repo, clock: clock, firstYear: firstSeasonYear}
}

// Summary sums the stored hours of userID for today, this week (Monday to
// Sunday), this month and the current season.
func (r *reportingServiceImpl) Summary(ctx context.Context, userID string) (*HoursSummary, error) {
	if userID == "" {
		return nil, apperrors.NewInvalidInputError("user id", userID, "is required")
	}

	now := r.clock.Now()
	today := domain.DateOf(now)
	weekStart, weekEnd := WeekRange(now)
	monthStart, monthEnd := MonthRange(now)
	current := season.Current(now)

	summary := &HoursSummary{
		UserID:      userID,
		SeasonLabel: current.Label(),
		WeekStart:   weekStart,
		MonthStart:  monthStart,
	}

	ranges := []struct {
		from, to time.Time
		dst      *float64
	}{
		{today, today, &summary.Today},
		{weekStart, weekEnd, &summary.Week},
		{monthStart, monthEnd, &summary.Month},
		{current.Start, current.End, &summary.Season},
	}
	for _, rg := range ranges {
		from, to := rg.from, rg.to
		total, err := r.repo.SumTotalHours(ctx, domain.SearchOptions{UserID: &userID, From: &from, To: &to})
		if err != nil {
			return nil, err
		}
		*rg.dst = total
	}
	return summary, nil
}

// ActivityTotals groups complete entries by activity in the fixed activity
// order. Activities without entries are omitted.
func (r *reportingServiceImpl) ActivityTotals(entries []domain.TimeEntry) []ActivityTotal {
	byActivity := make(map[domain.ActivityType]*ActivityTotal)
	for _, e := range entries {
		if e.TotalHours == nil {
			continue
		}
		t, ok := byActivity[e.ActivityType]
		if !ok {
			t = &ActivityTotal{Activity: e.ActivityType, Label: e.ActivityType.Label()}
			byActivity[e.ActivityType] = t
		}
		t.Hours += *e.TotalHours
		t.Count++
	}

	totals := make([]ActivityTotal, 0, len(byActivity))
	for _, a := range domain.AllActivityTypes() {
		if t, ok := byActivity[a]; ok {
			t.Hours = math.Round(t.Hours*100) / 100
			totals = append(totals, *t)
		}
	}
	return totals
}

// Seasons lists the selectable season labels, newest first.
func (r *reportingServiceImpl) Seasons() []string {
	return season.Available(r.clock.Now(), r.firstYear)
}

// WeekRange returns Monday and Sunday (local midnight) of the week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	day := domain.DateOf(t)
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 6)
}

// MonthRange returns the first and last day of the month containing t.
func MonthRange(t time.Time) (time.Time, time.Time) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first, first.AddDate(0, 1, -1)
}
