package sqlstore

import (
	"context"
	"database/sql"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"loipen-tracker/internal/domain"
	apperrors "loipen-tracker/internal/errors"
)

// CreateTimeEntry inserts entry and assigns its id and timestamps. A second
// open entry for the same user and day is rejected with a conflict.
func (s *Store) CreateTimeEntry(ctx context.Context, entry *domain.TimeEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := s.now().UTC().Truncate(time.Second)
	entry.CreatedAt = now
	entry.UpdatedAt = now

	rec := s.mapper.ToRecord(*entry)
	query := `
	INSERT INTO time_entries (id, user_id, entry_date, activity_type, start_time, stop_time, total_hours, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := Execute(ctx, s.db, s.q(query),
		rec.ID, rec.UserID, rec.EntryDate, rec.ActivityType, rec.StartTime,
		nullString(rec.StopTime), nullFloat(rec.TotalHours), rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		s.log.Debug(ctx, "insert time entry failed", "user", entry.UserID, "error", err)
		return err
	}
	return nil
}

// GetTimeEntry retrieves a time entry by ID
func (s *Store) GetTimeEntry(ctx context.Context, id string) (*domain.TimeEntry, error) {
	return s.getTimeEntry(ctx, s.db, id)
}

func (s *Store) getTimeEntry(ctx context.Context, db DBTX, id string) (*domain.TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE id = ?`
	rec, err := QuerySingle(ctx, db, s.q(query), ScanTimeEntryRecord, "time entry", id, id)
	if err != nil {
		return nil, err
	}
	return s.toEntry(*rec)
}

// CompleteTimeEntry sets stop time and total hours of a running entry and
// drops its timer checkpoint in the same transaction.
func (s *Store) CompleteTimeEntry(ctx context.Context, id string, stop time.Time, hours float64) (*domain.TimeEntry, error) {
	if hours < 0 {
		return nil, apperrors.NewInvalidInputError("total hours", hours, "must not be negative")
	}

	var completed *domain.TimeEntry
	err := WithTx(ctx, s.db, func(ctx context.Context, tx DBTX) error {
		update := `
		UPDATE time_entries
		SET stop_time = ?, total_hours = ?, updated_at = ?
		WHERE id = ? AND stop_time IS NULL`

		result, err := Execute(ctx, tx, s.q(update), s.mapper.FormatClock(stop), hours, s.timestamp(), id)
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return HandleStoreError("get rows affected", err)
		}
		if n == 0 {
			// Either the row is gone or someone else stopped it.
			if _, err := s.getTimeEntry(ctx, tx, id); err != nil {
				return err
			}
			conflict := apperrors.NewConflictError("time entry already stopped")
			conflict.Code = CodeAlreadyStopped
			return conflict.WithContext("id", id)
		}

		if _, err := Execute(ctx, tx, s.q(`DELETE FROM timer_checkpoints WHERE entry_id = ?`), id); err != nil {
			return err
		}

		completed, err = s.getTimeEntry(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

// FindOpenTimeEntry returns the latest running entry of userID.
func (s *Store) FindOpenTimeEntry(ctx context.Context, userID string) (*domain.TimeEntry, error) {
	query := `
	SELECT ` + timeEntryColumns + `
	FROM time_entries
	WHERE user_id = ? AND stop_time IS NULL
	ORDER BY entry_date DESC, start_time DESC
	LIMIT 1`

	rec, err := QuerySingle(ctx, s.db, s.q(query), ScanTimeEntryRecord, "running timer", "", userID)
	if err != nil {
		return nil, err
	}
	return s.toEntry(*rec)
}

// SearchTimeEntries returns entries matching opts, newest first.
func (s *Store) SearchTimeEntries(ctx context.Context, opts domain.SearchOptions) ([]domain.TimeEntry, error) {
	where, args := s.buildConditions(opts)
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries` + where +
		` ORDER BY entry_date DESC, start_time DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	records, err := QueryMultiple(ctx, s.db, s.q(query), ScanTimeEntryRecords, "time entries", args...)
	if err != nil {
		return nil, err
	}
	entries, err := s.mapper.FromRecords(records)
	if err != nil {
		return nil, apperrors.NewStoreError("decode time entries", err)
	}
	return entries, nil
}

// SumTotalHours adds up total_hours of the complete entries matching opts.
// Limit is ignored.
func (s *Store) SumTotalHours(ctx context.Context, opts domain.SearchOptions) (float64, error) {
	opts.Limit = 0
	where, args := s.buildConditions(opts)
	if where == "" {
		where = " WHERE total_hours IS NOT NULL"
	} else {
		where += " AND total_hours IS NOT NULL"
	}

	var total float64
	row := s.db.QueryRowContext(ctx, s.q(`SELECT COALESCE(SUM(total_hours), 0) FROM time_entries`+where), args...)
	if err := row.Scan(&total); err != nil {
		return 0, HandleStoreError("sum total hours", err)
	}
	return math.Round(total*100) / 100, nil
}

func (s *Store) buildConditions(opts domain.SearchOptions) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if opts.UserID != nil {
		conditions = append(conditions, "user_id = ?")
		args = append(args, *opts.UserID)
	}
	if opts.From != nil {
		conditions = append(conditions, "entry_date >= ?")
		args = append(args, s.mapper.FormatDate(*opts.From))
	}
	if opts.To != nil {
		conditions = append(conditions, "entry_date <= ?")
		args = append(args, s.mapper.FormatDate(*opts.To))
	}
	if opts.Activity != nil {
		conditions = append(conditions, "activity_type = ?")
		args = append(args, string(*opts.Activity))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (s *Store) toEntry(rec domain.TimeEntryRecord) (*domain.TimeEntry, error) {
	entry, err := s.mapper.FromRecord(rec)
	if err != nil {
		return nil, apperrors.NewStoreError("decode time entry", err)
	}
	return &entry, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
