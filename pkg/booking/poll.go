package booking

import (
	"context"
	"time"
)

// pollUntil waits out an initial grace period, then repeatedly evaluates
// check every period until it returns true or the deadline (measured from
// the start of the grace period) expires. It returns false on timeout and
// propagates context cancellation.
//
// This replaces a blind fixed sleep: the grace period preserves the pause
// the site needs before the condition can possibly hold, and the bounded
// poll afterwards keeps detection prompt without being flaky.
func pollUntil(ctx context.Context, grace, deadline, period time.Duration, check func() bool) (bool, error) {
	expiry := time.Now().Add(deadline)

	if grace > 0 {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(grace):
		}
	}

	for {
		if check() {
			return true, nil
		}
		if !time.Now().Before(expiry) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(period):
		}
	}
}
