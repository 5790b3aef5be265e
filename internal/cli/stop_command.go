package cli

import (
	"context"
	"fmt"

	"loipen-tracker/internal/domain"
)

// StopCommand handles the stop command
type StopCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewStopCommand creates a new stop command handler
func NewStopCommand(app *App) *StopCommand {
	return &StopCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute stops the running timer and prints the booked hours
func (c *StopCommand) Execute(ctx context.Context, args []string) error {
	user, err := c.app.userID()
	if err != nil {
		return err
	}

	entry, err := c.app.businessAPI.StopTimer(ctx, user)
	if err != nil {
		return c.errorHandler.Handle("stop timer", err)
	}

	stop := ""
	if entry.StopTime != nil {
		stop = entry.StopTime.In(c.app.location()).Format(domain.ShortClock)
	}
	fmt.Fprintf(c.app.out, "Stopped %s: %s h (%s - %s)\n",
		entry.ActivityType.Label(),
		domain.FormatHours(entry.Hours()),
		entry.StartTime.In(c.app.location()).Format(domain.ShortClock),
		stop,
	)
	return nil
}
