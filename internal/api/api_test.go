package api

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"loipen-tracker/internal/repository/sqlstore"
	"loipen-tracker/internal/services"
	"loipen-tracker/internal/timer"
)

var zurich, _ = time.LoadLocation("Europe/Zurich")

func at(day, hour, min int) time.Time {
	return time.Date(2025, 1, day, hour, min, 0, 0, zurich)
}

// setupTestBusinessAPI wires the API over a fresh SQLite file and a manual
// clock set to now.
func setupTestBusinessAPI(t *testing.T, now time.Time) (BusinessAPI, *timer.ManualClock) {
	t.Helper()

	store, err := sqlstore.Open(context.Background(), sqlstore.Options{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "loipen.db"),
		Location: zurich,
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := timer.NewManualClock(now)
	container := services.NewServiceContainer(store, services.Options{
		Clock:         clock,
		Location:      zurich,
		PersistPauses: true,
	})
	return NewBusinessAPI(container, clock), clock
}
