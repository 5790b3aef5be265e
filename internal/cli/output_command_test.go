package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loipen-tracker/internal/services"
)

func TestOutputCommand_Execute(t *testing.T) {
	t.Run("writes the generated file name into a directory", func(t *testing.T) {
		app, mock, out := setupTestAppWithMockBusinessAPI(t)
		dir := t.TempDir()
		cmd := NewOutputCommand(app)
		cmd.opts.Out = dir
		cmd.opts.Season = "Saison 2024-25"
		cmd.opts.User = "anna"

		require.NoError(t, cmd.Execute(context.Background(), nil))

		assert.Equal(t, services.ExportRequest{
			Format: "csv",
			Filter: services.EntryFilter{UserID: "anna", Season: "Saison 2024-25"},
		}, mock.lastExport)

		path := filepath.Join(dir, "Arbeitszeit_2025-01-06_2025-01-12.csv")
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "\ufeff"), "CSV starts with a BOM")
		assert.Equal(t, "Exported 2 entries to "+path+"\n", out.String())
	})

	t.Run("explicit file", func(t *testing.T) {
		app, _, _ := setupTestAppWithMockBusinessAPI(t)
		path := filepath.Join(t.TempDir(), "woche.csv")
		cmd := NewOutputCommand(app)
		cmd.opts.Out = path

		require.NoError(t, cmd.Execute(context.Background(), nil))
		assert.FileExists(t, path)
	})

	t.Run("stdout", func(t *testing.T) {
		app, _, out := setupTestAppWithMockBusinessAPI(t)
		cmd := NewOutputCommand(app)
		cmd.opts.Out = "-"

		require.NoError(t, cmd.Execute(context.Background(), nil))
		assert.True(t, strings.HasPrefix(out.String(), "\ufeff"))
		assert.NotContains(t, out.String(), "Exported")
	})

	t.Run("unsupported format", func(t *testing.T) {
		app, _, _ := setupTestAppWithMockBusinessAPI(t)
		cmd := NewOutputCommand(app)
		cmd.opts.Format = "pdf"
		cmd.opts.Out = t.TempDir()

		err := cmd.Execute(context.Background(), nil)
		assert.EqualError(t, err, "failed to export entries: invalid input for format: must be csv or xlsx")
	})
}
