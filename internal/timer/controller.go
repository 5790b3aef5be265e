// Package timer implements the work-timer session: an Idle, Running and
// Paused state machine whose elapsed time is always derived from wall-clock
// timestamps.
package timer

import (
	"context"
	"errors"
	"sync"
	"time"

	"loipen-tracker/internal/domain"
	apperrors "loipen-tracker/internal/errors"
	"loipen-tracker/internal/validation"
)

// Store persists the start and the stop of a session. Pause and resume
// never reach the store.
type Store interface {
	CreateTimeEntry(ctx context.Context, entry *domain.TimeEntry) error
	CompleteTimeEntry(ctx context.Context, id string, stop time.Time, hours float64) (*domain.TimeEntry, error)
}

// Controller is the timer session of one user. It is safe for concurrent use;
// mutating calls are serialised and rejected while a store write is in flight.
type Controller struct {
	store     Store
	validator *validation.TimeEntryValidator

	mu         sync.Mutex
	state      State
	entry      *domain.TimeEntry
	paused     time.Duration
	pauseStart time.Time
	busy       bool
}

// NewController creates an idle controller writing to store.
func NewController(store Store) *Controller {
	return &Controller{
		store:     store,
		validator: validation.NewTimeEntryValidator(nil),
	}
}

// Start creates a running entry for userID. On failure the controller stays idle.
func (c *Controller) Start(ctx context.Context, userID string, activity domain.ActivityType, now time.Time) (*domain.TimeEntry, error) {
	entry := domain.NewTimeEntry(userID, activity, now)
	var invalid *validation.ValidationError
	if errors.As(c.validator.ValidateTimeEntry(entry), &invalid) {
		return nil, invalid.ToAppError()
	}

	c.mu.Lock()
	if err := c.checkIdle(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.busy = true
	c.mu.Unlock()

	err := c.store.CreateTimeEntry(ctx, &entry)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if err != nil {
		return nil, err
	}

	c.state = StateRunning
	c.entry = &entry
	c.paused = 0
	c.pauseStart = time.Time{}

	result := entry
	return &result, nil
}

// Pause records the pause start. Valid only while running.
func (c *Controller) Pause(now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy {
		return errInProgress()
	}
	if c.state != StateRunning {
		return apperrors.NewConflictError("no running timer to pause")
	}

	c.pauseStart = now
	c.state = StatePaused
	return nil
}

// Resume adds the just-ended pause to the paused total. Valid only while paused.
func (c *Controller) Resume(now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy {
		return errInProgress()
	}
	if c.state != StatePaused {
		return apperrors.NewConflictError("timer is not paused")
	}

	if d := now.Sub(c.pauseStart); d > 0 {
		c.paused += d
	}
	c.pauseStart = time.Time{}
	c.state = StateRunning
	return nil
}

// Stop completes the active entry with the elapsed time minus all pauses,
// rounded to hundredths of an hour. A failed store write leaves the session
// untouched so a retry computes from the same start time. If the store no
// longer knows the entry the session is dropped.
func (c *Controller) Stop(ctx context.Context, now time.Time) (*domain.TimeEntry, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, errInProgress()
	}
	if c.state == StateIdle {
		c.mu.Unlock()
		return nil, apperrors.NewConflictError("no timer is running")
	}

	entry := *c.entry
	hours := domain.RoundHours(c.elapsedLocked(now))
	stop := now.Truncate(time.Second)
	if stop.Before(entry.StartTime) {
		stop = entry.StartTime
	}
	c.busy = true
	c.mu.Unlock()

	updated, err := c.store.CompleteTimeEntry(ctx, entry.ID, stop, hours)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if err != nil {
		if apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound) {
			c.resetLocked()
		}
		return nil, err
	}

	c.resetLocked()
	if updated == nil {
		stopped := entry.Stop(stop, hours)
		updated = &stopped
	}
	return updated, nil
}

// Elapsed returns the worked time so far, excluding pauses. While paused the
// value is frozen at the pause start.
func (c *Controller) Elapsed(now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsedLocked(now)
}

// DisplayElapsedSeconds returns Elapsed in whole seconds for rendering.
func (c *Controller) DisplayElapsedSeconds(now time.Time) int64 {
	return int64(c.Elapsed(now) / time.Second)
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ActiveEntry returns a copy of the running entry, or nil when idle.
func (c *Controller) ActiveEntry() *domain.TimeEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil {
		return nil
	}
	e := *c.entry
	return &e
}

// Snapshot returns a copy of the session.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{State: c.state, Paused: c.paused}
	if c.entry != nil {
		e := *c.entry
		s.Entry = &e
	}
	if c.state == StatePaused {
		t := c.pauseStart
		s.PauseStartedAt = &t
	}
	return s
}

// Restore replaces the session with s. It fails while a store write is in
// flight or when s is inconsistent.
func (c *Controller) Restore(s Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy {
		return errInProgress()
	}

	switch s.State {
	case StateIdle:
		c.resetLocked()
		return nil
	case StateRunning, StatePaused:
		if s.Entry == nil {
			return apperrors.NewInvalidInputError("snapshot", s.State.String(), "active session without entry")
		}
		if s.State == StatePaused && s.PauseStartedAt == nil {
			return apperrors.NewInvalidInputError("snapshot", s.State.String(), "paused session without pause start")
		}
	default:
		return apperrors.NewInvalidInputError("snapshot", int(s.State), "unknown state")
	}

	e := *s.Entry
	c.entry = &e
	c.state = s.State
	c.paused = s.Paused
	c.pauseStart = time.Time{}
	if s.State == StatePaused {
		c.pauseStart = *s.PauseStartedAt
	}
	return nil
}

func (c *Controller) checkIdle() error {
	if c.busy {
		return errInProgress()
	}
	if c.state != StateIdle {
		return apperrors.NewConflictError("a timer is already running")
	}
	return nil
}

func (c *Controller) elapsedLocked(now time.Time) time.Duration {
	if c.state == StateIdle || c.entry == nil {
		return 0
	}
	elapsed := now.Sub(c.entry.StartTime) - c.paused
	if c.state == StatePaused {
		if open := now.Sub(c.pauseStart); open > 0 {
			elapsed -= open
		}
	}
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func (c *Controller) resetLocked() {
	c.state = StateIdle
	c.entry = nil
	c.paused = 0
	c.pauseStart = time.Time{}
}

func errInProgress() error {
	return apperrors.NewConflictError("operation in progress")
}
