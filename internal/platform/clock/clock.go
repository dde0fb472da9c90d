package clock

import (
	"context"
	"time"
)

// Clock abstracts time to keep services deterministic in tests.
type Clock interface {
	Now() time.Time
}

// Sleeper abstracts delays so retry and poll loops can be tested
// without real waiting. Sleep returns early with the context error
// when the context is cancelled.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
