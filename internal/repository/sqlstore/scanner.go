package sqlstore

import (
	"database/sql"
	"time"

	"loipen-tracker/internal/domain"
)

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

const timeEntryColumns = `id, user_id, entry_date, activity_type, start_time, stop_time, total_hours, created_at, updated_at`

// ScanTimeEntryRecord scans a single time entry row
func ScanTimeEntryRecord(scanner Scanner) (*domain.TimeEntryRecord, error) {
	rec := &domain.TimeEntryRecord{}
	var stop sql.NullString
	var hours sql.NullFloat64

	err := scanner.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.EntryDate,
		&rec.ActivityType,
		&rec.StartTime,
		&stop,
		&hours,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if stop.Valid {
		rec.StopTime = &stop.String
	}
	if hours.Valid {
		rec.TotalHours = &hours.Float64
	}
	return rec, nil
}

// ScanTimeEntryRecords scans multiple time entry rows
func ScanTimeEntryRecords(rows Rows) ([]domain.TimeEntryRecord, error) {
	var records []domain.TimeEntryRecord
	for rows.Next() {
		rec, err := ScanTimeEntryRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// ScanCheckpoint scans a single timer checkpoint row
func ScanCheckpoint(scanner Scanner) (*domain.TimerCheckpoint, error) {
	cp := &domain.TimerCheckpoint{}
	var paused float64
	var pauseStarted sql.NullString
	var updated string

	if err := scanner.Scan(&cp.EntryID, &paused, &pauseStarted, &updated); err != nil {
		return nil, err
	}

	cp.Paused = time.Duration(paused * float64(time.Second))
	if pauseStarted.Valid {
		t, err := time.Parse(time.RFC3339Nano, pauseStarted.String)
		if err != nil {
			return nil, err
		}
		cp.PauseStartedAt = &t
	}
	t, err := time.Parse(time.RFC3339Nano, updated)
	if err != nil {
		return nil, err
	}
	cp.UpdatedAt = t
	return cp, nil
}

// ScanEmployeeRecord scans a single employee row
func ScanEmployeeRecord(scanner Scanner) (*domain.EmployeeRecord, error) {
	rec := &domain.EmployeeRecord{}
	if err := scanner.Scan(&rec.UserID, &rec.FirstName, &rec.LastName, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	return rec, nil
}

// ScanEmployeeRecords scans multiple employee rows
func ScanEmployeeRecords(rows Rows) ([]domain.EmployeeRecord, error) {
	var records []domain.EmployeeRecord
	for rows.Next() {
		rec, err := ScanEmployeeRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// scanEach turns a single-row scan function into one for QueryMultiple.
func scanEach[T any](scan func(Scanner) (*T, error)) func(Rows) ([]T, error) {
	return func(rows Rows) ([]T, error) {
		var out []T
		for rows.Next() {
			v, err := scan(rows)
			if err != nil {
				return nil, err
			}
			out = append(out, *v)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return out, nil
	}
}
