package timer

import (
	"context"
	"time"
)

// Source is what the display tick reads from.
type Source interface {
	DisplayElapsedSeconds(now time.Time) int64
	State() State
}

// Watch calls render once immediately and then on every tick until ctx is
// done. The displayed value is recomputed from the clock each time, so missed
// ticks never cause drift.
func Watch(ctx context.Context, clock Clock, interval time.Duration, source Source, render func(seconds int64, state State)) error {
	if interval <= 0 {
		interval = time.Second
	}

	render(source.DisplayElapsedSeconds(clock.Now()), source.State())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			render(source.DisplayElapsedSeconds(clock.Now()), source.State())
		}
	}
}
