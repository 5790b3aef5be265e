package cli

import (
	"context"
	"fmt"

	"loipen-tracker/internal/api"
	"loipen-tracker/internal/domain"
	"loipen-tracker/internal/errors"
)

const (
	dieselUsage = "usage: loipen diesel add [--tank T] [--date D] <liters> | loipen diesel edit [--tank T] [--date D] <id> <liters>"
	cashUsage   = "usage: loipen cash add [--date D] [--description S] [--receipt KEY] <amount> | loipen cash edit <id> <amount>"
)

// RecordOptions holds the flags shared by the diesel, expense and cash commands
type RecordOptions struct {
	Date        string
	Tank        string
	Description string
	Amount      string
	Receipt     string
	FileName    string
}

// date returns the --date flag or today.
func (o RecordOptions) date(app *App) string {
	if o.Date != "" {
		return o.Date
	}
	return app.today()
}

// DieselCommand books and corrects litres taken from the diesel tanks
type DieselCommand struct {
	app          *App
	errorHandler *ErrorHandler
	opts         RecordOptions
}

// NewDieselCommand creates a new diesel command handler
func NewDieselCommand(app *App) *DieselCommand {
	return &DieselCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
		opts:         RecordOptions{Tank: string(domain.TankNidfurn)},
	}
}

// Execute dispatches on the first argument: add or edit
func (c *DieselCommand) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.NewInvalidInputError("command", "diesel", dieselUsage)
	}
	user, err := c.app.userID()
	if err != nil {
		return err
	}

	switch {
	case args[0] == "add" && len(args) == 2:
		entry, err := c.app.businessAPI.LogDiesel(ctx, c.request(user, args[1]))
		if err != nil {
			return c.errorHandler.Handle("log diesel", err)
		}
		c.print("Logged", entry)
		return nil
	case args[0] == "edit" && len(args) == 3:
		entry, err := c.app.businessAPI.UpdateDiesel(ctx, args[1], c.request(user, args[2]))
		if err != nil {
			return c.errorHandler.Handle("update diesel", err)
		}
		c.print("Updated", entry)
		return nil
	default:
		return errors.NewInvalidInputError("command", args[0], dieselUsage)
	}
}

func (c *DieselCommand) request(user, liters string) api.DieselRequest {
	return api.DieselRequest{UserID: user, Date: c.opts.date(c.app), Tank: c.opts.Tank, Liters: liters}
}

func (c *DieselCommand) print(verb string, e *domain.DieselEntry) {
	fmt.Fprintf(c.app.out, "%s %s l from %s on %s (%s)\n",
		verb, domain.FormatAmount(e.Liters), e.Tank.Label(), e.Date.Format(domain.DateLayout), e.ID)
}

// ExpenseCommand books an uploaded receipt as an expense
type ExpenseCommand struct {
	app          *App
	errorHandler *ErrorHandler
	opts         RecordOptions
}

// NewExpenseCommand creates a new expense command handler
func NewExpenseCommand(app *App) *ExpenseCommand {
	return &ExpenseCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute saves the expense. The receipt key comes from an earlier upload.
func (c *ExpenseCommand) Execute(ctx context.Context, args []string) error {
	user, err := c.app.userID()
	if err != nil {
		return err
	}
	expense, err := c.app.businessAPI.SaveExpense(ctx, api.ExpenseRequest{
		UserID:      user,
		Date:        c.opts.date(c.app),
		Description: c.opts.Description,
		Amount:      c.opts.Amount,
		ReceiptKey:  c.opts.Receipt,
		FileName:    c.opts.FileName,
	})
	if err != nil {
		return c.errorHandler.Handle("save expense", err)
	}

	amount := "without amount"
	if expense.Amount != nil {
		amount = "CHF " + domain.FormatAmount(*expense.Amount)
	}
	fmt.Fprintf(c.app.out, "Saved expense on %s, %s (%s)\n", expense.Date.Format(domain.DateLayout), amount, expense.Receipt.Key)
	return nil
}

// CashCommand books and corrects day-ticket takings
type CashCommand struct {
	app          *App
	errorHandler *ErrorHandler
	opts         RecordOptions
}

// NewCashCommand creates a new cash command handler
func NewCashCommand(app *App) *CashCommand {
	return &CashCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute dispatches on the first argument: add or edit
func (c *CashCommand) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.NewInvalidInputError("command", "cash", cashUsage)
	}
	user, err := c.app.userID()
	if err != nil {
		return err
	}

	var taking *domain.CashTaking
	switch {
	case args[0] == "add" && len(args) == 2:
		taking, err = c.app.businessAPI.SaveCashTaking(ctx, c.request(user, args[1]))
	case args[0] == "edit" && len(args) == 3:
		taking, err = c.app.businessAPI.UpdateCashTaking(ctx, args[1], c.request(user, args[2]))
	default:
		return errors.NewInvalidInputError("command", args[0], cashUsage)
	}
	if err != nil {
		return c.errorHandler.Handle("save cash taking", err)
	}
	fmt.Fprintf(c.app.out, "Saved CHF %s on %s (%s)\n",
		domain.FormatAmount(taking.Amount), taking.Date.Format(domain.DateLayout), taking.ID)
	return nil
}

func (c *CashCommand) request(user, amount string) api.CashTakingRequest {
	return api.CashTakingRequest{
		UserID:      user,
		Date:        c.opts.date(c.app),
		Amount:      amount,
		Description: c.opts.Description,
		ReceiptKey:  c.opts.Receipt,
		FileName:    c.opts.FileName,
	}
}
