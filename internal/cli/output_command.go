package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"loipen-tracker/internal/services"
)

// ExportOptions holds the flags of the export command
type ExportOptions struct {
	Format   string
	From     string
	To       string
	Season   string
	User     string
	Activity string
	Out      string
}

// OutputCommand writes a timesheet export of all employees
type OutputCommand struct {
	app          *App
	errorHandler *ErrorHandler
	opts         ExportOptions
}

// NewOutputCommand creates a new export command handler
func NewOutputCommand(app *App) *OutputCommand {
	return &OutputCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
		opts:         ExportOptions{Format: "csv"},
	}
}

// Execute writes the export. --out - streams it to stdout, a directory
// receives the generated file name.
func (c *OutputCommand) Execute(ctx context.Context, args []string) error {
	req := services.ExportRequest{
		Format: c.opts.Format,
		Filter: services.EntryFilter{
			UserID:   c.opts.User,
			From:     c.opts.From,
			To:       c.opts.To,
			Season:   c.opts.Season,
			Activity: c.opts.Activity,
		},
	}

	if c.opts.Out == "-" {
		if _, err := c.app.businessAPI.Export(ctx, req, c.app.out); err != nil {
			return c.errorHandler.Handle("export entries", err)
		}
		return nil
	}

	prepared, err := c.app.businessAPI.PrepareExport(ctx, req)
	if err != nil {
		return c.errorHandler.Handle("export entries", err)
	}

	path := c.opts.Out
	if path == "" {
		path = prepared.FileName
	} else if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, prepared.FileName)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := prepared.Write(f); err != nil {
		f.Close()
		return c.errorHandler.Handle("write export", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}

	fmt.Fprintf(c.app.out, "Exported %d entries to %s\n", prepared.Rows, path)
	return nil
}
