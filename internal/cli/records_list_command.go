package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"loipen-tracker/internal/domain"
	"loipen-tracker/internal/services"
)

// RecordsCommand lists diesel refuels, expenses and day-ticket takings
type RecordsCommand struct {
	app          *App
	errorHandler *ErrorHandler
	opts         ListOptions
}

// NewRecordsCommand creates a new records command handler
func NewRecordsCommand(app *App) *RecordsCommand {
	return &RecordsCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute prints one section per record kind followed by its total
func (c *RecordsCommand) Execute(ctx context.Context, args []string) error {
	filter := services.EntryFilter{From: c.opts.From, To: c.opts.To, Season: c.opts.Season}
	switch {
	case c.opts.All:
	case c.opts.User != "":
		filter.UserID = c.opts.User
	default:
		user, err := c.app.userID()
		if err != nil {
			return err
		}
		filter.UserID = user
	}

	book, err := c.app.businessAPI.ListRecords(ctx, filter)
	if err != nil {
		return c.errorHandler.Handle("list records", err)
	}

	out := c.app.out
	fmt.Fprintln(out, titleStyle.Render("Diesel"))
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTANK\tLITERS\tUSER\tID")
	for _, e := range book.Diesel {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.Date.Format(domain.DateLayout), e.Tank.Label(), domain.FormatAmount(e.Liters), e.UserID, e.ID)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, t := range domain.AllDieselTanks() {
		fmt.Fprintln(out, totalStyle.Render(fmt.Sprintf("%s: %s l", t.Label(), domain.FormatAmount(book.LitersByTank[t]))))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, titleStyle.Render("Expenses"))
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tAMOUNT\tDESCRIPTION\tRECEIPT\tUSER")
	for _, e := range book.Expenses {
		amount := "-"
		if e.Amount != nil {
			amount = domain.FormatAmount(*e.Amount)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.Date.Format(domain.DateLayout), amount, e.Description, e.Receipt.Key, e.UserID)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out, totalStyle.Render("Total: CHF "+domain.FormatAmount(book.ExpenseTotal)))

	fmt.Fprintln(out)
	fmt.Fprintln(out, titleStyle.Render("Day tickets"))
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tAMOUNT\tDESCRIPTION\tUSER\tID")
	for _, t := range book.CashTakings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			t.Date.Format(domain.DateLayout), domain.FormatAmount(t.Amount), t.Description, t.UserID, t.ID)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out, totalStyle.Render("Total: CHF "+domain.FormatAmount(book.CashTotal)))
	return nil
}
