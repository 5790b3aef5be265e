package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loipen-tracker/internal/config"
)

type rootHarness struct {
	root   *RootCommand
	mock   *mockBusinessAPI
	cfg    *config.Config
	out    *bytes.Buffer
	boots  int
	closed int
}

func newRootHarness(t *testing.T) *rootHarness {
	t.Helper()

	previous := timeNow
	timeNow = func() time.Time { return testNow }
	t.Cleanup(func() { timeNow = previous })

	h := &rootHarness{mock: newMockBusinessAPI(), cfg: config.NewConfig(), out: &bytes.Buffer{}}
	h.cfg.Application.UserID = "anna"
	h.cfg.Server.JWTSecret = "test-secret"
	h.root = NewRootCommand(h.cfg, func(ctx context.Context, cfg *config.Config) (*Backend, error) {
		h.boots++
		return &Backend{API: h.mock, Close: func() error {
			h.closed++
			return nil
		}}, nil
	}, h.out)
	return h
}

func TestRootCommand_TimerWorkflow(t *testing.T) {
	h := newRootHarness(t)
	ctx := context.Background()

	require.NoError(t, h.root.Execute(ctx, []string{"start", "Loipenpräparation"}))
	assert.Contains(t, h.mock.running, "anna")
	assert.Equal(t, 1, h.boots)
	assert.Equal(t, 1, h.closed)

	require.NoError(t, h.root.Execute(ctx, []string{"stop"}))
	assert.Empty(t, h.mock.running)
	assert.Contains(t, h.out.String(), "Stopped Loipenpräparation: 1.50 h")
}

func TestRootCommand_GlobalFlags(t *testing.T) {
	h := newRootHarness(t)

	err := h.root.Execute(context.Background(), []string{
		"--user", "beat",
		"--location", "Europe/Vienna",
		"--app-timeout", "5s",
		"--verbose",
		"start", "Aufbau",
	})
	require.NoError(t, err)

	assert.Contains(t, h.mock.running, "beat")
	assert.Equal(t, "beat", h.cfg.Application.UserID)
	assert.Equal(t, "Europe/Vienna", h.cfg.Time.Location)
	assert.Equal(t, 5*time.Second, h.cfg.Application.Timeout)
	assert.Equal(t, "debug", h.cfg.Logging.Level)
}

func TestRootCommand_InvalidOverride(t *testing.T) {
	h := newRootHarness(t)

	err := h.root.Execute(context.Background(), []string{"--location", "Mars/Olympus", "status"})
	require.Error(t, err)

	var cfgErr *config.ConfigError
	assert.True(t, stderrors.As(err, &cfgErr))
	assert.Zero(t, h.boots, "the store is not opened with an invalid configuration")
}

func TestRootCommand_BootstrapFailure(t *testing.T) {
	out := &bytes.Buffer{}
	cfg := config.NewConfig()
	root := NewRootCommand(cfg, func(ctx context.Context, cfg *config.Config) (*Backend, error) {
		return nil, stderrors.New("unable to open database file")
	}, out)

	err := root.Execute(context.Background(), []string{"--user", "anna", "stop"})
	assert.EqualError(t, err, "unable to open database file")
}

func TestRootCommand_CommandsWithoutStore(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"token", []string{"token", "beat"}},
		{"help", []string{"help", "start"}},
		{"help flag", []string{"--help"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newRootHarness(t)

			require.NoError(t, h.root.Execute(context.Background(), tt.args))
			assert.Zero(t, h.boots)
			assert.NotEmpty(t, h.out.String())
		})
	}
}

func TestRootCommand_ManualFlags(t *testing.T) {
	h := newRootHarness(t)

	err := h.root.Execute(context.Background(), []string{"manual", "--date", "2025-01-09", "--start", "13:00", "--end", "15:30", "Abbau"})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-09", h.mock.lastManual.Date)
	assert.Equal(t, "13:00", h.mock.lastManual.Start)
	assert.Equal(t, "15:30", h.mock.lastManual.End)

	h = newRootHarness(t)
	err = h.root.Execute(context.Background(), []string{"manual", "--start", "13:00", "Abbau"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "end" not set`)
}

func TestRootCommand_ExportUserFilter(t *testing.T) {
	h := newRootHarness(t)

	err := h.root.Execute(context.Background(), []string{"export", "--user", "beat", "--format", "xlsx", "--out", t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, "beat", h.mock.lastExport.Filter.UserID)
	assert.Equal(t, "xlsx", h.mock.lastExport.Format)
	assert.Equal(t, "anna", h.cfg.Application.UserID, "the export filter does not change the acting user")
}

func TestRootCommand_EmployeeSubcommands(t *testing.T) {
	h := newRootHarness(t)

	require.NoError(t, h.root.Execute(context.Background(), []string{"employee", "add", "anna", "Anna", "Zürcher"}))
	assert.Equal(t, "Anna Zürcher", h.mock.employees["anna"].FullName())

	require.NoError(t, h.root.Execute(context.Background(), []string{"employee", "list"}))
	assert.Contains(t, h.out.String(), "Anna Zürcher")
}

func TestRootCommand_StatusAlias(t *testing.T) {
	h := newRootHarness(t)

	require.NoError(t, h.root.Execute(context.Background(), []string{"current"}))
	assert.Contains(t, h.out.String(), "Saison 2024-25: 9.50 h")
}

func TestApp_Defaults(t *testing.T) {
	app := NewAppWithConfig(nil, nil, nil)

	assert.NotNil(t, app.config)
	assert.NotNil(t, app.out)
	assert.Equal(t, "Europe/Zurich", app.location().String())
}

func TestRootCommand_HelpListsCommands(t *testing.T) {
	h := newRootHarness(t)

	require.NoError(t, h.root.Execute(context.Background(), []string{"--help"}))
	assert.Contains(t, h.out.String(), "usage: loipen start <activity> | cash | diesel | employee | expense | export")
}
