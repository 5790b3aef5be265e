package domain

import "time"

// TimerCheckpoint is the persisted pause bookkeeping of a running entry, so a
// session restored after a restart does not lose paused time.
type TimerCheckpoint struct {
	EntryID        string
	Paused         time.Duration
	PauseStartedAt *time.Time
	UpdatedAt      time.Time
}

// IsPaused reports whether the checkpoint records an open pause.
func (c TimerCheckpoint) IsPaused() bool {
	return c.PauseStartedAt != nil
}
