package collector

import (
	"context"
	"time"
)

// sleepRemaining pauses for delay minus the time already spent since
// start. Work done during the request counts toward the pause, so the
// effective request rate stays constant regardless of response time.
func sleepRemaining(ctx context.Context, start time.Time, delay time.Duration) error {
	remaining := delay - time.Since(start)
	if remaining <= 0 {
		return nil
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
