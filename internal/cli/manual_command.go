package cli

import (
	"context"
	"fmt"
	"strings"

	"loipen-tracker/internal/api"
	"loipen-tracker/internal/domain"
	"loipen-tracker/internal/errors"
)

// ManualOptions holds the flags of the manual command
type ManualOptions struct {
	Date  string
	Start string
	End   string
}

// ManualCommand books an entry after the fact
type ManualCommand struct {
	app          *App
	errorHandler *ErrorHandler
	opts         ManualOptions
}

// NewManualCommand creates a new manual entry command handler
func NewManualCommand(app *App) *ManualCommand {
	return &ManualCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute validates and stores the entry; the date defaults to today
func (c *ManualCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.NewInvalidInputError("activity", "", "usage: loipen manual --start HH:MM --end HH:MM [--date YYYY-MM-DD] <activity>")
	}
	user, err := c.app.userID()
	if err != nil {
		return err
	}

	date := c.opts.Date
	if date == "" {
		date = c.app.today()
	}

	entry, err := c.app.businessAPI.SaveManualEntry(ctx, api.ManualEntryRequest{
		UserID:   user,
		Date:     date,
		Activity: strings.Join(args, " "),
		Start:    c.opts.Start,
		End:      c.opts.End,
	})
	if err != nil {
		return c.errorHandler.Handle("save entry", err)
	}

	fmt.Fprintf(c.app.out, "Saved %s on %s: %s h (%s - %s)\n",
		entry.ActivityType.Label(),
		entry.Date.Format(domain.DateLayout),
		domain.FormatHours(entry.Hours()),
		entry.StartTime.In(c.app.location()).Format(domain.ShortClock),
		entryClock(*entry, c.app),
	)
	return nil
}
