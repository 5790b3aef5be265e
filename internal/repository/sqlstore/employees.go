package sqlstore

import (
	"context"
	"time"

	"loipen-tracker/internal/domain"
	apperrors "loipen-tracker/internal/errors"
)

// UpsertEmployee creates or renames a roster entry.
func (s *Store) UpsertEmployee(ctx context.Context, e *domain.Employee) error {
	now := s.now().UTC().Truncate(time.Second)
	ts := now.Format(domain.TimestampLayout)

	query := `
	INSERT INTO employees (user_id, first_name, last_name, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (user_id) DO UPDATE SET
		first_name = excluded.first_name,
		last_name = excluded.last_name,
		updated_at = excluded.updated_at`

	if _, err := Execute(ctx, s.db, s.q(query), e.UserID, e.FirstName, e.LastName, ts, ts); err != nil {
		return err
	}

	stored, err := s.GetEmployee(ctx, e.UserID)
	if err != nil {
		return err
	}
	*e = *stored
	return nil
}

// GetEmployee retrieves an employee by user id
func (s *Store) GetEmployee(ctx context.Context, userID string) (*domain.Employee, error) {
	query := `SELECT user_id, first_name, last_name, created_at, updated_at FROM employees WHERE user_id = ?`
	rec, err := QuerySingle(ctx, s.db, s.q(query), ScanEmployeeRecord, "employee", userID, userID)
	if err != nil {
		return nil, err
	}
	e, err := domain.EmployeeFromRecord(*rec)
	if err != nil {
		return nil, apperrors.NewStoreError("decode employee", err)
	}
	return &e, nil
}

// ListEmployees returns the roster ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	query := `
	SELECT user_id, first_name, last_name, created_at, updated_at
	FROM employees
	ORDER BY last_name ASC, first_name ASC`

	records, err := QueryMultiple(ctx, s.db, s.q(query), ScanEmployeeRecords, "employees")
	if err != nil {
		return nil, err
	}
	employees := make([]domain.Employee, 0, len(records))
	for _, r := range records {
		e, err := domain.EmployeeFromRecord(r)
		if err != nil {
			return nil, apperrors.NewStoreError("decode employee", err)
		}
		employees = append(employees, e)
	}
	return employees, nil
}
