package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"loipen-tracker/internal/errors"
)

const employeeUsage = "usage: loipen employee add <user> <first name> <last name> | loipen employee list"

// EmployeeCommand maintains the roster used for names in lists and exports
type EmployeeCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewEmployeeCommand creates a new employee command handler
func NewEmployeeCommand(app *App) *EmployeeCommand {
	return &EmployeeCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute dispatches on the first argument: add or list
func (c *EmployeeCommand) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.NewInvalidInputError("command", "employee", employeeUsage)
	}
	switch args[0] {
	case "add":
		return c.add(ctx, args[1:])
	case "list":
		return c.list(ctx)
	default:
		return errors.NewInvalidInputError("command", args[0], employeeUsage)
	}
}

// add takes the first name as one word and the rest as last name, so
// "von Allmen" stays together.
func (c *EmployeeCommand) add(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errors.NewInvalidInputError("command", "employee add", employeeUsage)
	}
	employee, err := c.app.businessAPI.AddEmployee(ctx, args[0], args[1], strings.Join(args[2:], " "))
	if err != nil {
		return c.errorHandler.Handle("add employee", err)
	}
	fmt.Fprintf(c.app.out, "Saved %s as %s\n", employee.UserID, employee.FullName())
	return nil
}

func (c *EmployeeCommand) list(ctx context.Context) error {
	employees, err := c.app.businessAPI.ListEmployees(ctx)
	if err != nil {
		return c.errorHandler.Handle("list employees", err)
	}
	if len(employees) == 0 {
		fmt.Fprintln(c.app.out, "No employees found")
		return nil
	}
	tw := tabwriter.NewWriter(c.app.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "USER\tNAME\tUPDATED")
	for _, e := range employees {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.UserID, e.FullName(), c.app.formatTime(e.UpdatedAt))
	}
	return tw.Flush()
}

// SeasonsCommand lists the selectable seasons, newest first
type SeasonsCommand struct {
	app *App
}

// NewSeasonsCommand creates a new seasons command handler
func NewSeasonsCommand(app *App) *SeasonsCommand {
	return &SeasonsCommand{app: app}
}

// Execute prints one season label per line
func (c *SeasonsCommand) Execute(ctx context.Context, args []string) error {
	for _, label := range c.app.businessAPI.ListSeasons(ctx) {
		fmt.Fprintln(c.app.out, label)
	}
	return nil
}
