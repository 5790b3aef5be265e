package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"loipen-tracker/internal/api"
	"loipen-tracker/internal/domain"
	"loipen-tracker/internal/errors"
	"loipen-tracker/internal/services"
)

// ListOptions holds the filter flags of the list command
type ListOptions struct {
	From     string
	To       string
	Season   string
	Activity string
	User     string
	All      bool
	Limit    int
}

// ListCommand handles the list command
type ListCommand struct {
	app          *App
	errorHandler *ErrorHandler
	opts         ListOptions
}

// NewListCommand creates a new list command handler
func NewListCommand(app *App) *ListCommand {
	return &ListCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute lists entries, newest first. An optional shorthand like "2w"
// replaces --from and --to.
func (c *ListCommand) Execute(ctx context.Context, args []string) error {
	filter, err := c.filter(ctx, args)
	if err != nil {
		return err
	}

	report, err := c.app.businessAPI.SearchEntries(ctx, filter)
	if err != nil {
		return c.errorHandler.Handle("list entries", err)
	}
	return c.printReport(report)
}

func (c *ListCommand) filter(ctx context.Context, args []string) (services.EntryFilter, error) {
	filter := services.EntryFilter{
		From:     c.opts.From,
		To:       c.opts.To,
		Season:   c.opts.Season,
		Activity: c.opts.Activity,
		Limit:    c.opts.Limit,
	}

	switch {
	case c.opts.All:
	case c.opts.User != "":
		filter.UserID = c.opts.User
	default:
		user, err := c.app.userID()
		if err != nil {
			return filter, err
		}
		filter.UserID = user
	}

	if len(args) > 1 {
		return filter, errors.NewInvalidInputError("arguments", args, "usage: loipen list [3d|2w|1mo|1y]")
	}
	if len(args) == 1 {
		r, err := c.app.businessAPI.ParseTimeRange(ctx, args[0])
		if err != nil {
			return filter, c.errorHandler.Handle("parse time range", err)
		}
		filter.From = r.Start.Format(domain.DateLayout)
		filter.To = r.End.Format(domain.DateLayout)
	}
	return filter, nil
}

func (c *ListCommand) printReport(report *api.EntryReport) error {
	out := c.app.out
	if len(report.Entries) == 0 {
		fmt.Fprintln(out, "No entries found")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tSTART\tSTOP\tDURATION\tHOURS\tACTIVITY\tEMPLOYEE")
	for _, v := range report.Entries {
		hours := ""
		if !v.Entry.IsRunning() {
			hours = domain.FormatHours(v.Entry.Hours())
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.Entry.Date.Format(domain.DateLayout),
			v.Entry.StartTime.In(c.app.location()).Format(domain.ShortClock),
			entryClock(v.Entry, c.app),
			v.Duration,
			hours,
			v.Entry.ActivityType.Label(),
			v.Employee,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	total := fmt.Sprintf("Total: %s h in %d entries", domain.FormatHours(report.TotalHours), len(report.Entries))
	if report.Running > 0 {
		total += fmt.Sprintf(" (%d running)", report.Running)
	}
	fmt.Fprintln(out, totalStyle.Render(total))
	return nil
}
