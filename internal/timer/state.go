package timer

import (
	"time"

	"loipen-tracker/internal/domain"
)

// State is the lifecycle state of a timer session.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Snapshot is a copy of a controller's in-memory session.
type Snapshot struct {
	State          State
	Entry          *domain.TimeEntry
	Paused         time.Duration
	PauseStartedAt *time.Time
}

// Checkpoint returns the pause bookkeeping of the snapshot for persistence.
// ok is false when no session is active.
func (s Snapshot) Checkpoint() (cp domain.TimerCheckpoint, ok bool) {
	if s.State == StateIdle || s.Entry == nil {
		return domain.TimerCheckpoint{}, false
	}
	cp = domain.TimerCheckpoint{
		EntryID: s.Entry.ID,
		Paused:  s.Paused,
	}
	if s.PauseStartedAt != nil {
		t := *s.PauseStartedAt
		cp.PauseStartedAt = &t
	}
	return cp, true
}

// SnapshotFromEntry rebuilds a session from a stored running entry and its
// optional checkpoint.
func SnapshotFromEntry(entry domain.TimeEntry, cp *domain.TimerCheckpoint) Snapshot {
	s := Snapshot{State: StateRunning, Entry: &entry}
	if cp == nil || cp.EntryID != entry.ID {
		return s
	}
	s.Paused = cp.Paused
	if cp.PauseStartedAt != nil {
		t := *cp.PauseStartedAt
		s.PauseStartedAt = &t
		s.State = StatePaused
	}
	return s
}
