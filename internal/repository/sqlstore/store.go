// Package sqlstore persists time entries, timer checkpoints, the employee
// roster and the workers' diesel, expense and cash records through
// database/sql. SQLite (modernc) and PostgreSQL (pgx) share
// one schema and one set of queries.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"loipen-tracker/internal/domain"
	apperrors "loipen-tracker/internal/errors"
	"loipen-tracker/internal/logging"
	"loipen-tracker/internal/repository/migrations"
)

// Repository defines the interface for database operations
type Repository interface {
	// Time entries
	CreateTimeEntry(ctx context.Context, entry *domain.TimeEntry) error
	GetTimeEntry(ctx context.Context, id string) (*domain.TimeEntry, error)
	CompleteTimeEntry(ctx context.Context, id string, stop time.Time, hours float64) (*domain.TimeEntry, error)
	FindOpenTimeEntry(ctx context.Context, userID string) (*domain.TimeEntry, error)
	SearchTimeEntries(ctx context.Context, opts domain.SearchOptions) ([]domain.TimeEntry, error)
	SumTotalHours(ctx context.Context, opts domain.SearchOptions) (float64, error)

	// Timer checkpoints
	SaveCheckpoint(ctx context.Context, cp domain.TimerCheckpoint) error
	GetCheckpoint(ctx context.Context, entryID string) (*domain.TimerCheckpoint, error)
	DeleteCheckpoint(ctx context.Context, entryID string) error

	// Employees
	UpsertEmployee(ctx context.Context, e *domain.Employee) error
	GetEmployee(ctx context.Context, userID string) (*domain.Employee, error)
	ListEmployees(ctx context.Context) ([]domain.Employee, error)

	// Worker records
	CreateDieselEntry(ctx context.Context, e *domain.DieselEntry) error
	UpdateDieselEntry(ctx context.Context, e *domain.DieselEntry) error
	SearchDieselEntries(ctx context.Context, opts domain.SearchOptions) ([]domain.DieselEntry, error)
	CreateExpense(ctx context.Context, e *domain.Expense) error
	SearchExpenses(ctx context.Context, opts domain.SearchOptions) ([]domain.Expense, error)
	CreateCashTaking(ctx context.Context, c *domain.CashTaking) error
	UpdateCashTaking(ctx context.Context, c *domain.CashTaking) error
	SearchCashTakings(ctx context.Context, opts domain.SearchOptions) ([]domain.CashTaking, error)

	// Utility
	Ping(ctx context.Context) error
	Close() error
}

// Options configures Open.
type Options struct {
	Driver   string
	DSN      string
	Location *time.Location
	Logger   logging.Logger
}

// Store implements Repository on a *sql.DB.
type Store struct {
	db      *sql.DB
	dialect migrations.Dialect
	mapper  *domain.TimeEntryMapper
	log     logging.Logger
	now     func() time.Time
}

// Open connects to the configured database, applies pending migrations and
// returns a ready store.
func Open(ctx context.Context, opts Options) (*Store, error) {
	dialect, err := migrations.ParseDialect(strings.ToLower(strings.TrimSpace(opts.Driver)))
	if err != nil {
		return nil, apperrors.NewInvalidInputError("database driver", opts.Driver, err.Error())
	}
	if opts.DSN == "" {
		return nil, apperrors.NewInvalidInputError("database dsn", opts.DSN, "must not be empty")
	}

	if dialect == migrations.SQLite {
		if err := ensureSQLiteDir(opts.DSN); err != nil {
			return nil, apperrors.NewStoreError("create database directory", err)
		}
	}

	db, err := sql.Open(dialect.DriverName(), opts.DSN)
	if err != nil {
		return nil, apperrors.NewStoreError("open database", err)
	}

	if dialect == migrations.SQLite {
		// A single connection keeps :memory: databases alive and serialises writers.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, apperrors.NewStoreError("enable foreign keys", err)
		}
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
			db.Close()
			return nil, apperrors.NewStoreError("set busy timeout", err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, HandleStoreError("connect database", err)
	}

	var gl migrations.Logger
	if opts.Logger != nil {
		gl = gooseLogger{ctx: ctx, log: opts.Logger}
	}
	if err := migrations.Up(ctx, db, dialect, gl); err != nil {
		db.Close()
		return nil, apperrors.NewStoreError("run migrations", err)
	}

	return New(db, dialect, opts.Location, opts.Logger), nil
}

// New wraps an already migrated database.
func New(db *sql.DB, dialect migrations.Dialect, loc *time.Location, log logging.Logger) *Store {
	if log == nil {
		log = logging.Discard()
	}
	return &Store{
		db:      db,
		dialect: dialect,
		mapper:  domain.NewTimeEntryMapper(loc),
		log:     log,
		now:     time.Now,
	}
}

// Dialect returns the database dialect of the store.
func (s *Store) Dialect() migrations.Dialect {
	return s.dialect
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return HandleStoreError("ping", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// q adapts ? placeholders to the store's dialect.
func (s *Store) q(query string) string {
	if s.dialect == migrations.Postgres {
		return Rebind(query)
	}
	return query
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(domain.TimestampLayout)
}

func ensureSQLiteDir(dsn string) error {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	path := dsn
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

type gooseLogger struct {
	ctx context.Context
	log logging.Logger
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.log.Error(g.ctx, "migration failed", "detail", strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.log.Debug(g.ctx, "migration", "detail", strings.TrimSpace(fmt.Sprintf(format, v...)))
}
