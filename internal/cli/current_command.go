package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loipen-tracker/internal/api"
	"loipen-tracker/internal/domain"
)

// CurrentCommand shows the timer of the current user with the hour totals
type CurrentCommand struct {
	app          *App
	errorHandler *ErrorHandler
	watch        bool
}

// NewCurrentCommand creates a new status command handler
func NewCurrentCommand(app *App) *CurrentCommand {
	return &CurrentCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute prints the timer once, or keeps redrawing it with --watch
func (c *CurrentCommand) Execute(ctx context.Context, args []string) error {
	user, err := c.app.userID()
	if err != nil {
		return err
	}
	if c.watch {
		return c.watchTimer(ctx, user)
	}

	dash, err := c.app.businessAPI.GetDashboard(ctx, user)
	if err != nil {
		return c.errorHandler.Handle("get timer", err)
	}

	out := c.app.out
	fmt.Fprintln(out, titleStyle.Render("Timer "+user))
	fmt.Fprintf(out, "Status:   %s\n", stateStyle(dash.Timer.Status.State).Render(dash.Timer.Status.State))
	if dash.Timer.Activity != "" {
		fmt.Fprintf(out, "Activity: %s (since %s)\n", dash.Timer.Activity, dash.Timer.StartedAt)
	}
	fmt.Fprintf(out, "Elapsed:  %s\n", dash.Timer.Status.Elapsed)
	fmt.Fprintln(out)
	printSummary(out, dash.Summary)
	return nil
}

// watchTimer redraws the session line until ctx is cancelled.
func (c *CurrentCommand) watchTimer(ctx context.Context, user string) error {
	interval := c.app.config.Timer.TickInterval
	if interval <= 0 {
		interval = time.Second
	}
	err := c.app.businessAPI.WatchTimer(ctx, user, interval, func(session api.TimerSession) {
		fmt.Fprintf(c.app.out, "\r%s", sessionLine(session))
	})
	fmt.Fprintln(c.app.out)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return c.errorHandler.Handle("watch timer", err)
	}
	return nil
}

func sessionLine(session api.TimerSession) string {
	state := session.Status.State
	line := fmt.Sprintf("%s %s", stateStyle(state).Render(fmt.Sprintf("%-7s", state)), session.Status.Elapsed)
	if session.Activity != "" {
		line += "  " + session.Activity
	}
	return line
}

// entryClock formats the stop time of an entry, or "running" while it is open.
func entryClock(entry domain.TimeEntry, app *App) string {
	if entry.StopTime == nil {
		return "running"
	}
	return entry.StopTime.In(app.location()).Format(domain.ShortClock)
}
