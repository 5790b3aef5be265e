package services

import (
	"context"
	"sync"
	"time"

	"loipen-tracker/internal/domain"
	apperrors "loipen-tracker/internal/errors"
	"loipen-tracker/internal/logging"
	"loipen-tracker/internal/repository/sqlstore"
	"loipen-tracker/internal/timer"
	"loipen-tracker/internal/validation"
)

// session is one user's controller. mu serialises the pause/resume
// checkpoint writes with the other mutating calls.
type session struct {
	mu   sync.Mutex
	ctrl *timer.Controller
}

// timerServiceImpl implements the TimerService interface
type timerServiceImpl struct {
	repo          sqlstore.Repository
	clock         timer.Clock
	persistPauses bool
	log           logging.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// NewTimerService creates a new TimerService instance
func NewTimerService(repo sqlstore.Repository, clock timer.Clock, persistPauses bool, log logging.Logger) TimerService {
	if log == nil {
		log = logging.Discard()
	}
	return &timerServiceImpl{
		repo:          repo,
		clock:         clock,
		persistPauses: persistPauses,
		log:           log,
		sessions:      make(map[string]*session),
	}
}

// Start begins a new timer for userID.
func (s *timerServiceImpl) Start(ctx context.Context, userID, activity string) (*domain.TimeEntry, error) {
	a, err := validation.ParseActivity(activity)
	if err != nil {
		return nil, toAppError(err)
	}
	sess, err := s.lockedSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	entry, err := sess.ctrl.Start(ctx, userID, a, s.clock.Now())
	if err != nil {
		if apperrors.GetErrorCode(err) == sqlstore.CodeOpenEntryExists {
			// Another device is running a timer; reload on next access.
			s.evict(userID)
		}
		s.logFailure(ctx, "start timer", userID, err)
		return nil, err
	}

	s.log.Info(ctx, "timer started", "user", userID, "entry", entry.ID, "activity", string(a))
	return entry, nil
}

// Pause pauses the running timer of userID.
func (s *timerServiceImpl) Pause(ctx context.Context, userID string) (*TimerStatus, error) {
	return s.transition(ctx, userID, "pause timer", (*timer.Controller).Pause)
}

// Resume resumes the paused timer of userID.
func (s *timerServiceImpl) Resume(ctx context.Context, userID string) (*TimerStatus, error) {
	return s.transition(ctx, userID, "resume timer", (*timer.Controller).Resume)
}

func (s *timerServiceImpl) transition(ctx context.Context, userID, op string, apply func(*timer.Controller, time.Time) error) (*TimerStatus, error) {
	sess, err := s.lockedSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	now := s.clock.Now()
	prev := sess.ctrl.Snapshot()
	if err := apply(sess.ctrl, now); err != nil {
		return nil, err
	}

	if err := s.saveCheckpoint(ctx, sess.ctrl); err != nil {
		if rerr := sess.ctrl.Restore(prev); rerr != nil {
			s.log.Error(ctx, "restore timer session failed", "user", userID, "error", rerr)
		}
		if apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound) {
			s.evict(userID)
		}
		s.logFailure(ctx, op, userID, err)
		return nil, err
	}

	s.log.Debug(ctx, op, "user", userID, "state", sess.ctrl.State().String())
	return s.status(userID, sess.ctrl, now), nil
}

func (s *timerServiceImpl) saveCheckpoint(ctx context.Context, ctrl *timer.Controller) error {
	if !s.persistPauses {
		return nil
	}
	cp, ok := ctrl.Snapshot().Checkpoint()
	if !ok {
		return nil
	}
	return s.repo.SaveCheckpoint(ctx, cp)
}

// Stop completes the running timer of userID.
func (s *timerServiceImpl) Stop(ctx context.Context, userID string) (*domain.TimeEntry, error) {
	sess, err := s.lockedSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	entry, err := sess.ctrl.Stop(ctx, s.clock.Now())
	if err != nil {
		if apperrors.GetErrorCode(err) == sqlstore.CodeAlreadyStopped ||
			apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound) {
			s.evict(userID)
		}
		s.logFailure(ctx, "stop timer", userID, err)
		return nil, err
	}

	s.log.Info(ctx, "timer stopped", "user", userID, "entry", entry.ID, "hours", entry.Hours())
	return entry, nil
}

// Status reports the current session of userID.
func (s *timerServiceImpl) Status(ctx context.Context, userID string) (*TimerStatus, error) {
	ctrl, err := s.controller(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.status(userID, ctrl, s.clock.Now()), nil
}

// Watch renders the session of userID on every tick until ctx is done.
func (s *timerServiceImpl) Watch(ctx context.Context, userID string, interval time.Duration, render func(TimerStatus)) error {
	ctrl, err := s.controller(ctx, userID)
	if err != nil {
		return err
	}
	return timer.Watch(ctx, s.clock, interval, ctrl, func(_ int64, _ timer.State) {
		render(*s.status(userID, ctrl, s.clock.Now()))
	})
}

func (s *timerServiceImpl) status(userID string, ctrl *timer.Controller, now time.Time) *TimerStatus {
	snap := ctrl.Snapshot()
	seconds := ctrl.DisplayElapsedSeconds(now)
	return &TimerStatus{
		UserID:         userID,
		State:          snap.State.String(),
		Entry:          snap.Entry,
		ElapsedSeconds: seconds,
		Elapsed:        domain.FormatClock(seconds),
		PausedSeconds:  int64(snap.Paused / time.Second),
	}
}

// lockedSession returns the session of userID with its mutex held. A session
// that is already locked reports an operation in progress.
func (s *timerServiceImpl) lockedSession(ctx context.Context, userID string) (*session, error) {
	sess, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !sess.mu.TryLock() {
		return nil, apperrors.NewConflictError("operation in progress")
	}
	return sess, nil
}

func (s *timerServiceImpl) controller(ctx context.Context, userID string) (*timer.Controller, error) {
	sess, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}
	return sess.ctrl, nil
}

// session returns the cached session of userID, rebuilding it from the
// latest open entry and its checkpoint on first use.
func (s *timerServiceImpl) session(ctx context.Context, userID string) (*session, error) {
	if userID == "" {
		return nil, apperrors.NewInvalidInputError("user id", userID, "is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[userID]; ok {
		return sess, nil
	}

	ctrl := timer.NewController(s.repo)
	open, err := s.repo.FindOpenTimeEntry(ctx, userID)
	switch {
	case err == nil:
		var cp *domain.TimerCheckpoint
		loaded, err := s.repo.GetCheckpoint(ctx, open.ID)
		switch {
		case err == nil:
			cp = loaded
		case !apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound):
			return nil, err
		}
		if err := ctrl.Restore(timer.SnapshotFromEntry(*open, cp)); err != nil {
			return nil, err
		}
		s.log.Debug(ctx, "timer session restored", "user", userID, "entry", open.ID, "state", ctrl.State().String())
	case apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound):
	default:
		return nil, err
	}

	sess := &session{ctrl: ctrl}
	s.sessions[userID] = sess
	return sess, nil
}

func (s *timerServiceImpl) evict(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

func (s *timerServiceImpl) logFailure(ctx context.Context, op, userID string, err error) {
	if apperrors.ShouldLogError(err) {
		s.log.Error(ctx, op+" failed", "user", userID, "error", err)
		return
	}
	s.log.Debug(ctx, op+" rejected", "user", userID, "error", err)
}
