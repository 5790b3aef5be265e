package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"loipen-tracker/internal/domain"
	"loipen-tracker/internal/services"
)

// SummaryCommand prints the hour totals of the current user
type SummaryCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewSummaryCommand creates a new summary command handler
func NewSummaryCommand(app *App) *SummaryCommand {
	return &SummaryCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute prints today, week, month and season totals followed by the
// season's hours per activity
func (c *SummaryCommand) Execute(ctx context.Context, args []string) error {
	user, err := c.app.userID()
	if err != nil {
		return err
	}

	summary, err := c.app.businessAPI.GetSummary(ctx, user)
	if err != nil {
		return c.errorHandler.Handle("get summary", err)
	}
	report, err := c.app.businessAPI.SearchEntries(ctx, services.EntryFilter{UserID: user, Season: summary.SeasonLabel})
	if err != nil {
		return c.errorHandler.Handle("get summary", err)
	}

	out := c.app.out
	fmt.Fprintln(out, titleStyle.Render("Hours "+user))
	printSummary(out, summary)

	if len(report.ByActivity) == 0 {
		return nil
	}
	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ACTIVITY\tENTRIES\tHOURS")
	for _, a := range report.ByActivity {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", a.Label, a.Count, domain.FormatHours(a.Hours))
	}
	return tw.Flush()
}

// printSummary writes the totals block shown by status and summary.
func printSummary(out io.Writer, s *services.HoursSummary) {
	if s == nil {
		return
	}
	fmt.Fprintf(out, "Today:    %s h\n", domain.FormatHours(s.Today))
	fmt.Fprintf(out, "Week:     %s h (since %s)\n", domain.FormatHours(s.Week), s.WeekStart.Format(domain.DateLayout))
	fmt.Fprintf(out, "Month:    %s h\n", domain.FormatHours(s.Month))
	fmt.Fprintf(out, "%s: %s h\n", s.SeasonLabel, domain.FormatHours(s.Season))
}
