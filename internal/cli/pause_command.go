package cli

import (
	"context"
	"fmt"
)

// PauseCommand freezes the displayed timer
type PauseCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewPauseCommand creates a new pause command handler
func NewPauseCommand(app *App) *PauseCommand {
	return &PauseCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute pauses the running timer
func (c *PauseCommand) Execute(ctx context.Context, args []string) error {
	user, err := c.app.userID()
	if err != nil {
		return err
	}

	session, err := c.app.businessAPI.PauseTimer(ctx, user)
	if err != nil {
		return c.errorHandler.Handle("pause timer", err)
	}

	fmt.Fprintf(c.app.out, "Paused %s at %s\n", session.Activity, session.Status.Elapsed)
	return nil
}
