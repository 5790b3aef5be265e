package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"loipen-tracker/internal/domain"
	"loipen-tracker/internal/repository/sqlstore"
	"loipen-tracker/internal/timer"
)

var zurich, _ = time.LoadLocation("Europe/Zurich")

func at(day, hour, min int) time.Time {
	return time.Date(2025, 1, day, hour, min, 0, 0, zurich)
}

func setupTestRepo(t *testing.T) *sqlstore.Store {
	t.Helper()
	store, err := sqlstore.Open(context.Background(), sqlstore.Options{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "loipen.db"),
		Location: zurich,
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedEntries(t *testing.T, repo sqlstore.Repository, entries ...domain.TimeEntry) {
	t.Helper()
	for i := range entries {
		require.NoError(t, repo.CreateTimeEntry(context.Background(), &entries[i]))
	}
}

// flakyRepo fails selected calls of an otherwise real repository.
type flakyRepo struct {
	sqlstore.Repository
	checkpointErr error
	completeErr   error
}

func (f *flakyRepo) SaveCheckpoint(ctx context.Context, cp domain.TimerCheckpoint) error {
	if f.checkpointErr != nil {
		return f.checkpointErr
	}
	return f.Repository.SaveCheckpoint(ctx, cp)
}

func (f *flakyRepo) CompleteTimeEntry(ctx context.Context, id string, stop time.Time, hours float64) (*domain.TimeEntry, error) {
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return f.Repository.CompleteTimeEntry(ctx, id, stop, hours)
}

func newClock(t time.Time) *timer.ManualClock {
	return timer.NewManualClock(t)
}
