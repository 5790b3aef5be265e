package cli

import (
	"context"
	"fmt"
	"strings"

	"loipen-tracker/internal/domain"
	"loipen-tracker/internal/errors"
)

// StartCommand handles the start command
type StartCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewStartCommand creates a new start command handler
func NewStartCommand(app *App) *StartCommand {
	return &StartCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the start command
func (c *StartCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.NewInvalidInputError("activity", "", "usage: loipen start <activity> ("+activityChoices()+")")
	}
	user, err := c.app.userID()
	if err != nil {
		return err
	}

	session, err := c.app.businessAPI.StartTimer(ctx, user, strings.Join(args, " "))
	if err != nil {
		return c.errorHandler.Handle("start timer", err)
	}

	fmt.Fprintf(c.app.out, "Started %s at %s\n", session.Activity, session.StartedAt)
	return nil
}

// activityChoices lists the German activity labels accepted as input.
func activityChoices() string {
	labels := make([]string, 0, len(domain.AllActivityTypes()))
	for _, a := range domain.AllActivityTypes() {
		labels = append(labels, a.Label())
	}
	return strings.Join(labels, ", ")
}
