package cli

import (
	"context"
	"sort"
	"strings"

	"loipen-tracker/internal/errors"
)

// Command is one loipen subcommand, independent of cobra.
type Command interface {
	Execute(ctx context.Context, args []string) error
}

// CommandRegistry maps command names to their handlers.
type CommandRegistry struct {
	commands map[string]Command
}

// NewCommandRegistry creates a registry with every command bound to app
func NewCommandRegistry(app *App) *CommandRegistry {
	registry := &CommandRegistry{
		commands: make(map[string]Command),
	}

	registry.Register("start", NewStartCommand(app))
	registry.Register("pause", NewPauseCommand(app))
	registry.Register("resume", NewResumeCommand(app))
	registry.Register("stop", NewStopCommand(app))
	registry.Register("status", NewCurrentCommand(app))
	registry.Register("manual", NewManualCommand(app))
	registry.Register("list", NewListCommand(app))
	registry.Register("summary", NewSummaryCommand(app))
	registry.Register("export", NewOutputCommand(app))
	registry.Register("seasons", NewSeasonsCommand(app))
	registry.Register("employee", NewEmployeeCommand(app))
	registry.Register("diesel", NewDieselCommand(app))
	registry.Register("expense", NewExpenseCommand(app))
	registry.Register("cash", NewCashCommand(app))
	registry.Register("records", NewRecordsCommand(app))
	registry.Register("serve", NewServeCommand(app))
	registry.Register("token", NewTokenCommand(app))

	return registry
}

// Register adds a command to the registry
func (r *CommandRegistry) Register(name string, command Command) {
	r.commands[name] = command
}

// Get returns the command registered under name
func (r *CommandRegistry) Get(name string) (Command, bool) {
	command, ok := r.commands[name]
	return command, ok
}

// Execute runs the specified command with the given arguments
func (r *CommandRegistry) Execute(ctx context.Context, commandName string, args []string) error {
	command, exists := r.commands[commandName]
	if !exists {
		return errors.NewInvalidInputError("command", commandName, "unknown command")
	}
	return command.Execute(ctx, args)
}

// Names lists the registered commands alphabetically.
func (r *CommandRegistry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetUsage returns the one-line usage, starting with the timer command.
func (r *CommandRegistry) GetUsage() string {
	parts := []string{"start <activity>"}
	for _, name := range r.Names() {
		if name != "start" {
			parts = append(parts, name)
		}
	}
	return "usage: loipen " + strings.Join(parts, " | ")
}
