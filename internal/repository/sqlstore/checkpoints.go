package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"loipen-tracker/internal/domain"
	apperrors "loipen-tracker/internal/errors"
)

// SaveCheckpoint stores the pause bookkeeping of a running entry, replacing
// any previous checkpoint.
func (s *Store) SaveCheckpoint(ctx context.Context, cp domain.TimerCheckpoint) error {
	if cp.Paused < 0 {
		return apperrors.NewInvalidInputError("paused", cp.Paused.String(), "must not be negative")
	}
	var pauseStarted sql.NullString
	if cp.PauseStartedAt != nil {
		pauseStarted = sql.NullString{String: cp.PauseStartedAt.UTC().Format(time.RFC3339Nano), Valid: true}
	}
	updated := s.now().UTC()

	query := `
	INSERT INTO timer_checkpoints (entry_id, paused_seconds, pause_started_at, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (entry_id) DO UPDATE SET
		paused_seconds = excluded.paused_seconds,
		pause_started_at = excluded.pause_started_at,
		updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, s.q(query), cp.EntryID, cp.Paused.Seconds(), pauseStarted, updated.Format(time.RFC3339Nano))
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NewNotFoundError("time entry", cp.EntryID)
		}
		return HandleStoreError("save timer checkpoint", err)
	}
	return nil
}

// GetCheckpoint returns the checkpoint of entryID.
func (s *Store) GetCheckpoint(ctx context.Context, entryID string) (*domain.TimerCheckpoint, error) {
	query := `
	SELECT entry_id, paused_seconds, pause_started_at, updated_at
	FROM timer_checkpoints
	WHERE entry_id = ?`
	return QuerySingle(ctx, s.db, s.q(query), ScanCheckpoint, "timer checkpoint", entryID, entryID)
}

// DeleteCheckpoint removes the checkpoint of entryID. Deleting a missing
// checkpoint is not an error.
func (s *Store) DeleteCheckpoint(ctx context.Context, entryID string) error {
	_, err := Execute(ctx, s.db, s.q(`DELETE FROM timer_checkpoints WHERE entry_id = ?`), entryID)
	return err
}
