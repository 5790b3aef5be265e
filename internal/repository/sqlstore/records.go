package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"loipen-tracker/internal/domain"
	apperrors "loipen-tracker/internal/errors"
)

const (
	dieselColumns  = `id, user_id, entry_date, tank, liters, created_at, updated_at`
	expenseColumns = `id, user_id, entry_date, description, amount, receipt_key, receipt_file_name, created_at, updated_at`
	cashColumns    = `id, user_id, entry_date, amount, description, receipt_key, receipt_file_name, created_at, updated_at`
)

// stamp assigns a new id when id is empty and returns the id with the
// creation timestamp.
func (s *Store) stamp(id string) (string, time.Time) {
	if id == "" {
		id = uuid.NewString()
	}
	return id, s.now().UTC().Truncate(time.Second)
}

// CreateDieselEntry inserts a refuel and assigns its id and timestamps.
func (s *Store) CreateDieselEntry(ctx context.Context, e *domain.DieselEntry) error {
	id, now := s.stamp(e.ID)
	query := `INSERT INTO diesel_entries (` + dieselColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	ts := now.Format(domain.TimestampLayout)
	if _, err := Execute(ctx, s.db, s.q(query), id, e.UserID, s.mapper.FormatDate(e.Date), string(e.Tank), e.Liters, ts, ts); err != nil {
		return err
	}
	e.ID, e.CreatedAt, e.UpdatedAt = id, now, now
	return nil
}

// UpdateDieselEntry rewrites date, tank and litres of one of the user's refuels.
func (s *Store) UpdateDieselEntry(ctx context.Context, e *domain.DieselEntry) error {
	query := `
	UPDATE diesel_entries
	SET entry_date = ?, tank = ?, liters = ?, updated_at = ?
	WHERE id = ? AND user_id = ?`

	err := ExecuteWithRowsAffected(ctx, s.db, s.q(query), "diesel entry", e.ID,
		s.mapper.FormatDate(e.Date), string(e.Tank), e.Liters, s.timestamp(), e.ID, e.UserID)
	if err != nil {
		return err
	}
	stored, err := QuerySingle(ctx, s.db, s.q(`SELECT `+dieselColumns+` FROM diesel_entries WHERE id = ?`), s.scanDieselEntry, "diesel entry", e.ID, e.ID)
	if err != nil {
		return err
	}
	*e = *stored
	return nil
}

// SearchDieselEntries returns refuels matching opts, newest first. Activity is ignored.
func (s *Store) SearchDieselEntries(ctx context.Context, opts domain.SearchOptions) ([]domain.DieselEntry, error) {
	query, args := s.recordQuery(dieselColumns, "diesel_entries", opts)
	return QueryMultiple(ctx, s.db, query, scanEach(s.scanDieselEntry), "diesel entries", args...)
}

// CreateExpense inserts an expense receipt and assigns its id and timestamps.
func (s *Store) CreateExpense(ctx context.Context, e *domain.Expense) error {
	id, now := s.stamp(e.ID)
	query := `INSERT INTO expenses (` + expenseColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	ts := now.Format(domain.TimestampLayout)
	_, err := Execute(ctx, s.db, s.q(query), id, e.UserID, s.mapper.FormatDate(e.Date), e.Description,
		nullFloat(e.Amount), e.Receipt.Key, e.Receipt.FileName, ts, ts)
	if err != nil {
		return err
	}
	e.ID, e.CreatedAt, e.UpdatedAt = id, now, now
	return nil
}

// SearchExpenses returns expenses matching opts, newest first. Activity is ignored.
func (s *Store) SearchExpenses(ctx context.Context, opts domain.SearchOptions) ([]domain.Expense, error) {
	query, args := s.recordQuery(expenseColumns, "expenses", opts)
	return QueryMultiple(ctx, s.db, query, scanEach(s.scanExpense), "expenses", args...)
}

// CreateCashTaking inserts a day-ticket taking and assigns its id and timestamps.
func (s *Store) CreateCashTaking(ctx context.Context, c *domain.CashTaking) error {
	id, now := s.stamp(c.ID)
	key, name := receiptColumns(c.Receipt)
	query := `INSERT INTO cash_takings (` + cashColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	ts := now.Format(domain.TimestampLayout)
	_, err := Execute(ctx, s.db, s.q(query), id, c.UserID, s.mapper.FormatDate(c.Date), c.Amount,
		c.Description, key, name, ts, ts)
	if err != nil {
		return err
	}
	c.ID, c.CreatedAt, c.UpdatedAt = id, now, now
	return nil
}

// UpdateCashTaking rewrites date, amount and description of one of the
// user's takings. The receipt is kept unless c carries a new one.
func (s *Store) UpdateCashTaking(ctx context.Context, c *domain.CashTaking) error {
	query := `
	UPDATE cash_takings
	SET entry_date = ?, amount = ?, description = ?, updated_at = ?
	WHERE id = ? AND user_id = ?`
	args := []any{s.mapper.FormatDate(c.Date), c.Amount, c.Description, s.timestamp(), c.ID, c.UserID}
	if c.Receipt != nil {
		query = `
	UPDATE cash_takings
	SET entry_date = ?, amount = ?, description = ?, updated_at = ?, receipt_key = ?, receipt_file_name = ?
	WHERE id = ? AND user_id = ?`
		args = []any{s.mapper.FormatDate(c.Date), c.Amount, c.Description, s.timestamp(),
			c.Receipt.Key, c.Receipt.FileName, c.ID, c.UserID}
	}

	err := WithTx(ctx, s.db, func(ctx context.Context, tx DBTX) error {
		result, err := Execute(ctx, tx, s.q(query), args...)
		if err != nil {
			return err
		}
		if err := ValidateRowsAffected(result, "cash taking", c.ID); err != nil {
			return err
		}
		stored, err := QuerySingle(ctx, tx, s.q(`SELECT `+cashColumns+` FROM cash_takings WHERE id = ?`), s.scanCashTaking, "cash taking", c.ID, c.ID)
		if err != nil {
			return err
		}
		*c = *stored
		return nil
	})
	return err
}

// SearchCashTakings returns takings matching opts, newest first. Activity is ignored.
func (s *Store) SearchCashTakings(ctx context.Context, opts domain.SearchOptions) ([]domain.CashTaking, error) {
	query, args := s.recordQuery(cashColumns, "cash_takings", opts)
	return QueryMultiple(ctx, s.db, query, scanEach(s.scanCashTaking), "cash takings", args...)
}

func (s *Store) recordQuery(columns, table string, opts domain.SearchOptions) (string, []any) {
	opts.Activity = nil
	where, args := s.buildConditions(opts)
	query := `SELECT ` + columns + ` FROM ` + table + where + ` ORDER BY entry_date DESC, created_at DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}
	return s.q(query), args
}

func receiptColumns(r *domain.Receipt) (sql.NullString, string) {
	if r == nil {
		return sql.NullString{}, ""
	}
	return sql.NullString{String: r.Key, Valid: true}, r.FileName
}

// recordDates parses the day and the timestamps shared by every record table.
func (s *Store) recordDates(id, day, created, updated string) (date, createdAt, updatedAt time.Time, err error) {
	if date, err = s.mapper.ParseDate(day); err != nil {
		return
	}
	if createdAt, err = domain.ParseTimestamp(created); err != nil {
		err = fmt.Errorf("record %s created_at: %w", id, err)
		return
	}
	if updatedAt, err = domain.ParseTimestamp(updated); err != nil {
		err = fmt.Errorf("record %s updated_at: %w", id, err)
	}
	return
}

func (s *Store) scanDieselEntry(sc Scanner) (*domain.DieselEntry, error) {
	var e domain.DieselEntry
	var day, tank, created, updated string
	if err := sc.Scan(&e.ID, &e.UserID, &day, &tank, &e.Liters, &created, &updated); err != nil {
		return nil, err
	}
	e.Tank = domain.DieselTank(tank)
	var err error
	if e.Date, e.CreatedAt, e.UpdatedAt, err = s.recordDates(e.ID, day, created, updated); err != nil {
		return nil, apperrors.NewStoreError("decode diesel entry", err)
	}
	return &e, nil
}

func (s *Store) scanExpense(sc Scanner) (*domain.Expense, error) {
	var e domain.Expense
	var day, created, updated string
	var amount sql.NullFloat64
	err := sc.Scan(&e.ID, &e.UserID, &day, &e.Description, &amount, &e.Receipt.Key, &e.Receipt.FileName, &created, &updated)
	if err != nil {
		return nil, err
	}
	if amount.Valid {
		e.Amount = &amount.Float64
	}
	if e.Date, e.CreatedAt, e.UpdatedAt, err = s.recordDates(e.ID, day, created, updated); err != nil {
		return nil, apperrors.NewStoreError("decode expense", err)
	}
	return &e, nil
}

func (s *Store) scanCashTaking(sc Scanner) (*domain.CashTaking, error) {
	var c domain.CashTaking
	var day, name, created, updated string
	var key sql.NullString
	err := sc.Scan(&c.ID, &c.UserID, &day, &c.Amount, &c.Description, &key, &name, &created, &updated)
	if err != nil {
		return nil, err
	}
	if key.Valid {
		c.Receipt = &domain.Receipt{Key: key.String, FileName: name}
	}
	if c.Date, c.CreatedAt, c.UpdatedAt, err = s.recordDates(c.ID, day, created, updated); err != nil {
		return nil, apperrors.NewStoreError("decode cash taking", err)
	}
	return &c, nil
}
