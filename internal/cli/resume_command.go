package cli

import (
	"context"
	"fmt"
)

// ResumeCommand continues a paused timer
type ResumeCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewResumeCommand creates a new resume command handler
func NewResumeCommand(app *App) *ResumeCommand {
	return &ResumeCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute resumes the paused timer
func (c *ResumeCommand) Execute(ctx context.Context, args []string) error {
	user, err := c.app.userID()
	if err != nil {
		return err
	}

	session, err := c.app.businessAPI.ResumeTimer(ctx, user)
	if err != nil {
		return c.errorHandler.Handle("resume timer", err)
	}

	fmt.Fprintf(c.app.out, "Resumed %s at %s\n", session.Activity, session.Status.Elapsed)
	return nil
}
