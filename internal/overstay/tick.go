package overstay

import (
	"context"
	"time"
)

// RefreshInterval is how often live durations are recomputed.
const RefreshInterval = time.Minute

// Tick calls fn with the current time once immediately and then on every
// interval until ctx is done. It only recomputes; it never refetches.
func Tick(ctx context.Context, interval time.Duration, clock func() time.Time, fn func(now time.Time)) {
	if clock == nil {
		clock = time.Now
	}

	fn(clock())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(clock())
		}
	}
}
