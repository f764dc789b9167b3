package fetcher

import (
	"context"
	"time"
)

// Throttle enforces a minimum delay before every outbound request. The delay
// precedes the request rather than following it, so the peak request rate
// stays bounded regardless of response latency. This is a politeness contract
// with the registry, not a performance knob.
type Throttle struct {
	interval time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewThrottle creates a throttle with the given minimum inter-request
// interval. A non-positive interval disables the delay.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval, sleep: sleepContext}
}

// Wait blocks for the configured interval or until ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil || t.interval <= 0 {
		return ctx.Err()
	}
	return t.sleep(ctx, t.interval)
}

// Interval returns the configured minimum inter-request delay.
func (t *Throttle) Interval() time.Duration {
	if t == nil {
		return 0
	}
	return t.interval
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		if !timer.Stop() {
			<-timer.C
		}
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
