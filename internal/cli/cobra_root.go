package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"loipen-tracker/internal/api"
	"loipen-tracker/internal/config"
	"loipen-tracker/internal/logging"
)

// skipBackend marks commands that run without opening the store.
const skipBackend = "skip-backend"

// Backend is what a Bootstrap opens for the commands.
type Backend struct {
	API    api.BusinessAPI
	Logger logging.Logger
	Close  func() error
}

// Bootstrap opens the backend once the flag overrides are applied to cfg.
type Bootstrap func(ctx context.Context, cfg *config.Config) (*Backend, error)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd      *cobra.Command
	app      *App
	registry *CommandRegistry
	boot     Bootstrap
	backend  *Backend
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(cfg *config.Config, boot Bootstrap, out io.Writer) *RootCommand {
	root := &RootCommand{
		app:  NewAppWithConfig(nil, cfg, out),
		boot: boot,
	}
	root.registry = NewCommandRegistry(root.app)

	root.cmd = &cobra.Command{
		Use:   "loipen",
		Short: "Work-time tracking for cross-country ski trail crews",
		Long: `Loipen records the working time of trail crews: a start/pause/stop timer,
manual entries, hour totals per week, month and season, and timesheet exports.

EXAMPLES:
  loipen start Loipenpräparation             # Start the timer
  loipen pause                               # Freeze the displayed time
  loipen stop                                # Book the rounded hours
  loipen manual --start 13:00 --end 15:30 Abbau
  loipen list 2w                             # Entries of the last two weeks
  loipen export --season "Saison 2024-25" --format xlsx

CONFIGURATION:
  Priority: command-line flags > environment variables > .env file > defaults

    LOIPEN_USER                  Employee the CLI acts for (default: $USER)
    LOIPEN_DB_DRIVER             sqlite or postgres (default: sqlite)
    LOIPEN_DB_DSN                Connection string, overrides dir and filename
    LOIPEN_DB_DIR                Database directory (default: ~/.loipen)
    LOIPEN_TIME_LOCATION         Time zone of "today" (default: Europe/Zurich)
    LOIPEN_JWT_SECRET            Secret for API tokens
    LOIPEN_S3_BUCKET             Receipt bucket, empty disables receipts
    LOIPEN_LOG_LEVEL             debug, info, warn, error (default: info)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := root.getConfigFromFlags(); err != nil {
				return err
			}
			if !needsBackend(cmd) {
				return nil
			}
			return root.openBackend(cmd.Context())
		},
	}

	root.cmd.Long = root.registry.GetUsage() + "\n\n" + root.cmd.Long
	root.cmd.SetOut(root.app.out)
	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Execute runs the command line args and closes the backend afterwards
func (r *RootCommand) Execute(ctx context.Context, args []string) error {
	r.cmd.SetArgs(args)
	err := r.cmd.ExecuteContext(ctx)
	if r.backend != nil && r.backend.Close != nil {
		if closeErr := r.backend.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close store: %w", closeErr)
		}
	}
	r.backend = nil
	r.app.businessAPI = nil
	return err
}

func (r *RootCommand) openBackend(ctx context.Context) error {
	if r.backend != nil {
		return nil
	}
	if r.boot == nil {
		return fmt.Errorf("no backend configured")
	}
	backend, err := r.boot(ctx, r.app.config)
	if err != nil {
		return err
	}
	r.backend = backend
	r.app.businessAPI = backend.API
	if backend.Logger != nil {
		r.app.log = backend.Logger
	}
	return nil
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("user", "", "Employee the CLI acts for (overrides LOIPEN_USER)")

	// Database configuration
	flags.String("db-driver", "", "Store driver: sqlite or postgres (overrides LOIPEN_DB_DRIVER)")
	flags.String("db-dsn", "", "Store connection string (overrides LOIPEN_DB_DSN)")
	flags.String("db-dir", "", "Database directory (overrides LOIPEN_DB_DIR)")
	flags.String("db-filename", "", "Database filename (overrides LOIPEN_DB_FILENAME)")

	// Time and timer configuration
	flags.String("location", "", "Time zone of the calendar day (overrides LOIPEN_TIME_LOCATION)")
	flags.Bool("persist-pauses", true, "Keep pauses across restarts (overrides LOIPEN_TIMER_PERSIST_PAUSES)")

	// Server configuration
	flags.String("addr", "", "API listen address (overrides LOIPEN_SERVER_ADDR)")

	// Logging and application configuration
	flags.String("log-level", "", "Log level (overrides LOIPEN_LOG_LEVEL)")
	flags.String("log-format", "", "Log format: text or json (overrides LOIPEN_LOG_FORMAT)")
	flags.Duration("app-timeout", 0, "Application timeout (overrides LOIPEN_APP_TIMEOUT)")
	flags.BoolP("verbose", "v", false, "Enable debug logging (overrides LOIPEN_APP_VERBOSE)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	startCmd := &cobra.Command{
		Use:   "start <activity>",
		Short: "Start the timer",
		Long:  "Start the timer for an activity: " + activityChoices() + ".",
		Args:  cobra.MinimumNArgs(1),
		RunE:  r.run("start"),
	}

	pauseCmd := &cobra.Command{
		Use:   "pause",
		Short: "Pause the displayed timer",
		Args:  cobra.NoArgs,
		RunE:  r.run("pause"),
	}

	resumeCmd := &cobra.Command{
		Use:   "resume",
		Short: "Resume a paused timer",
		Args:  cobra.NoArgs,
		RunE:  r.run("resume"),
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the timer and book the hours",
		Args:  cobra.NoArgs,
		RunE:  r.run("stop"),
	}

	current := commandAs[*CurrentCommand](r.registry, "status")
	statusCmd := &cobra.Command{
		Use:     "status",
		Aliases: []string{"current"},
		Short:   "Show the timer with today's, week's, month's and season's hours",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if current.watch {
				return r.runUntilSignal("status")(cmd, args)
			}
			return r.run("status")(cmd, args)
		},
	}
	statusCmd.Flags().BoolVarP(&current.watch, "watch", "w", false, "Redraw the timer every tick until interrupted")

	manual := commandAs[*ManualCommand](r.registry, "manual")
	manualCmd := &cobra.Command{
		Use:   "manual <activity>",
		Short: "Book an entry after the fact",
		Long: `Book a complete entry for a day. Times are HH:MM in the configured time zone.

Example:
  loipen manual --date 2025-01-09 --start 13:00 --end 15:30 Abbau`,
		Args: cobra.MinimumNArgs(1),
		RunE: r.run("manual"),
	}
	manualCmd.Flags().StringVar(&manual.opts.Date, "date", "", "Day of the entry, YYYY-MM-DD (default: today)")
	manualCmd.Flags().StringVar(&manual.opts.Start, "start", "", "Start time, HH:MM")
	manualCmd.Flags().StringVar(&manual.opts.End, "end", "", "End time, HH:MM")
	_ = manualCmd.MarkFlagRequired("start")
	_ = manualCmd.MarkFlagRequired("end")

	list := commandAs[*ListCommand](r.registry, "list")
	listCmd := &cobra.Command{
		Use:   "list [range]",
		Short: "List time entries",
		Long: `List time entries, newest first.

The optional range covers whole days up to today: 3d, 2w, 1mo, 1y.

Examples:
  loipen list                         # All of your entries
  loipen list 2w                      # The last fourteen days
  loipen list --season "Saison 2024-25" --activity Abbau
  loipen list --all --from 2025-01-01`,
		Args: cobra.MaximumNArgs(1),
		RunE: r.run("list"),
	}
	listCmd.Flags().StringVar(&list.opts.From, "from", "", "First day, YYYY-MM-DD")
	listCmd.Flags().StringVar(&list.opts.To, "to", "", "Last day, YYYY-MM-DD")
	listCmd.Flags().StringVar(&list.opts.Season, "season", "", `Season label, e.g. "Saison 2024-25"`)
	listCmd.Flags().StringVar(&list.opts.Activity, "activity", "", "Activity type")
	listCmd.Flags().StringVar(&list.opts.User, "for", "", "List the entries of another employee")
	listCmd.Flags().BoolVar(&list.opts.All, "all", false, "List the entries of all employees")
	listCmd.Flags().IntVar(&list.opts.Limit, "limit", 0, "Maximum number of entries")

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Show hour totals and the season's hours per activity",
		Args:  cobra.NoArgs,
		RunE:  r.run("summary"),
	}

	export := commandAs[*OutputCommand](r.registry, "export")
	exportCmd := &cobra.Command{
		Use:     "export",
		Aliases: []string{"output"},
		Short:   "Export a timesheet as CSV or XLSX",
		Long: `Export the entries of all employees, or one with --user.

Without --from, --to or --season the current week is exported. The file name
is generated from the covered days unless --out names a file.

Examples:
  loipen export                                  # Current week as CSV
  loipen export --season "Saison 2024-25" --format xlsx --out exports/
  loipen export --user anna --out - > anna.csv`,
		Args: cobra.NoArgs,
		RunE: r.run("export"),
	}
	exportCmd.Flags().StringVar(&export.opts.Format, "format", "csv", "csv or xlsx")
	exportCmd.Flags().StringVar(&export.opts.From, "from", "", "First day, YYYY-MM-DD")
	exportCmd.Flags().StringVar(&export.opts.To, "to", "", "Last day, YYYY-MM-DD")
	exportCmd.Flags().StringVar(&export.opts.Season, "season", "", `Season label, e.g. "Saison 2024-25"`)
	exportCmd.Flags().StringVar(&export.opts.User, "user", "", "Only export this employee")
	exportCmd.Flags().StringVar(&export.opts.Activity, "activity", "", "Only export this activity")
	exportCmd.Flags().StringVarP(&export.opts.Out, "out", "o", "", "Target file or directory, - for stdout")

	seasonsCmd := &cobra.Command{
		Use:   "seasons",
		Short: "List the selectable seasons",
		Args:  cobra.NoArgs,
		RunE:  r.run("seasons"),
	}

	employeeCmd := &cobra.Command{
		Use:   "employee",
		Short: "Maintain the employee roster",
	}
	employeeCmd.AddCommand(
		&cobra.Command{
			Use:   "add <user> <first name> <last name>",
			Short: "Add or rename an employee",
			Args:  cobra.MinimumNArgs(3),
			RunE:  r.runSub("employee", "add"),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List employees",
			Args:  cobra.NoArgs,
			RunE:  r.runSub("employee", "list"),
		},
	)

	diesel := commandAs[*DieselCommand](r.registry, "diesel")
	dieselCmd := &cobra.Command{
		Use:   "diesel",
		Short: "Log litres taken from a diesel tank",
		Long: `Log or correct a refuel. Litres may use a decimal comma.

Examples:
  loipen diesel add 42,5                        # Tank Nidfurn, today
  loipen diesel add --tank Hätzingen --date 2025-01-09 30
  loipen diesel edit <id> 45`,
	}
	dieselCmd.PersistentFlags().StringVar(&diesel.opts.Tank, "tank", diesel.opts.Tank, "Nidfurn or Hätzingen")
	dieselCmd.PersistentFlags().StringVar(&diesel.opts.Date, "date", "", "Day of the refuel, YYYY-MM-DD (default: today)")
	dieselCmd.AddCommand(
		&cobra.Command{
			Use:   "add <liters>",
			Short: "Log a refuel",
			Args:  cobra.ExactArgs(1),
			RunE:  r.runSub("diesel", "add"),
		},
		&cobra.Command{
			Use:   "edit <id> <liters>",
			Short: "Correct one of your refuels",
			Args:  cobra.ExactArgs(2),
			RunE:  r.runSub("diesel", "edit"),
		},
	)

	expense := commandAs[*ExpenseCommand](r.registry, "expense")
	expenseCmd := &cobra.Command{
		Use:   "expense",
		Short: "Book an uploaded receipt as an expense",
		Long: `Book an expense. The receipt key is the one returned by the upload URL;
the amount is optional.

Example:
  loipen expense --receipt anna/1736500000000-ab12cd34.jpg --amount 23.40 --description Kettenöl`,
		Args: cobra.NoArgs,
		RunE: r.run("expense"),
	}
	expenseCmd.Flags().StringVar(&expense.opts.Receipt, "receipt", "", "Receipt key of the uploaded file")
	expenseCmd.Flags().StringVar(&expense.opts.FileName, "file-name", "", "Original file name of the receipt")
	expenseCmd.Flags().StringVar(&expense.opts.Amount, "amount", "", "Amount in CHF")
	expenseCmd.Flags().StringVar(&expense.opts.Description, "description", "", "What was bought")
	expenseCmd.Flags().StringVar(&expense.opts.Date, "date", "", "Day of the expense, YYYY-MM-DD (default: today)")
	_ = expenseCmd.MarkFlagRequired("receipt")

	cash := commandAs[*CashCommand](r.registry, "cash")
	cashCmd := &cobra.Command{
		Use:   "cash",
		Short: "Book day-ticket takings",
	}
	cashCmd.PersistentFlags().StringVar(&cash.opts.Date, "date", "", "Day of the taking, YYYY-MM-DD (default: today)")
	cashCmd.PersistentFlags().StringVar(&cash.opts.Description, "description", "", "Note on the taking")
	cashCmd.PersistentFlags().StringVar(&cash.opts.Receipt, "receipt", "", "Receipt key of an uploaded slip")
	cashCmd.PersistentFlags().StringVar(&cash.opts.FileName, "file-name", "", "Original file name of the slip")
	cashCmd.AddCommand(
		&cobra.Command{
			Use:   "add <amount>",
			Short: "Book a taking in CHF",
			Args:  cobra.ExactArgs(1),
			RunE:  r.runSub("cash", "add"),
		},
		&cobra.Command{
			Use:   "edit <id> <amount>",
			Short: "Correct one of your takings, keeping its receipt unless --receipt is set",
			Args:  cobra.ExactArgs(2),
			RunE:  r.runSub("cash", "edit"),
		},
	)

	records := commandAs[*RecordsCommand](r.registry, "records")
	recordsCmd := &cobra.Command{
		Use:   "records",
		Short: "List diesel, expenses and day-ticket takings with totals",
		Args:  cobra.NoArgs,
		RunE:  r.run("records"),
	}
	recordsCmd.Flags().StringVar(&records.opts.From, "from", "", "First day, YYYY-MM-DD")
	recordsCmd.Flags().StringVar(&records.opts.To, "to", "", "Last day, YYYY-MM-DD")
	recordsCmd.Flags().StringVar(&records.opts.Season, "season", "", `Season label, e.g. "Saison 2024-25"`)
	recordsCmd.Flags().StringVar(&records.opts.User, "for", "", "List the records of another employee")
	recordsCmd.Flags().BoolVar(&records.opts.All, "all", false, "List the records of all employees")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE:  r.runUntilSignal("serve"),
	}

	tokenCmd := &cobra.Command{
		Use:         "token [user]",
		Short:       "Issue a bearer token for the API",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{skipBackend: "true"},
		RunE:        r.run("token"),
	}

	r.cmd.AddCommand(
		startCmd,
		pauseCmd,
		resumeCmd,
		stopCmd,
		statusCmd,
		manualCmd,
		listCmd,
		summaryCmd,
		exportCmd,
		seasonsCmd,
		employeeCmd,
		dieselCmd,
		expenseCmd,
		cashCmd,
		recordsCmd,
		serveCmd,
		tokenCmd,
	)
}

// run executes a registered command under the application timeout.
func (r *RootCommand) run(name string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), r.getAppTimeout())
		defer cancel()
		return r.registry.Execute(ctx, name, args)
	}
}

// runSub executes a registered command with its sub-command name as first argument.
func (r *RootCommand) runSub(name, sub string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return r.run(name)(cmd, append([]string{sub}, args...))
	}
}

// runUntilSignal executes a long-running command until SIGINT or SIGTERM.
func (r *RootCommand) runUntilSignal(name string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return r.registry.Execute(ctx, name, args)
	}
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.app.config != nil && r.app.config.Application.Timeout > 0 {
		return r.app.config.Application.Timeout
	}
	return 60 * time.Second
}

// getConfigFromFlags applies the flags the user set to the configuration
func (r *RootCommand) getConfigFromFlags() error {
	if r.app.config == nil {
		return fmt.Errorf("configuration not initialized")
	}
	return config.ApplyFlags(r.app.config, r.cmd.PersistentFlags())
}

// needsBackend reports whether cmd works on the store. Help and completion never do.
func needsBackend(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipBackend] == "true" {
			return false
		}
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd:
			return false
		}
	}
	return true
}

// commandAs returns the registered command name as its concrete type.
func commandAs[T Command](r *CommandRegistry, name string) T {
	command, _ := r.Get(name)
	return command.(T)
}
