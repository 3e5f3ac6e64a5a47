package utils

import (
	"context"
	"time"
)

// Timer starts a countdown of d. It returns the channel that fires when d
// elapses and a stop function releasing the countdown early.
type Timer func(d time.Duration) (<-chan time.Time, func() bool)

// NewTimer is the Timer backed by time.NewTimer.
func NewTimer(d time.Duration) (<-chan time.Time, func() bool) {
	t := time.NewTimer(d)
	return t.C, t.Stop
}

// WaitFor blocks for d or until ctx is done, whichever comes first. A nil
// timer means NewTimer. The countdown is stopped when ctx wins.
func WaitFor(ctx context.Context, d time.Duration, timer Timer) error {
	if d <= 0 {
		return ctx.Err()
	}
	if timer == nil {
		timer = NewTimer
	}

	fired, stop := timer(d)
	defer stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-fired:
		return nil
	}
}
