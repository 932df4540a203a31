// Package retry runs platform calls again after the platform asked the caller to back off.
package retry

import (
	"context"
	"time"

	"github.com/wms/backend/internal/domain/integration"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy decides how often and how long to back off on rate-limited calls.
type Policy struct {
	// MaxAttempts counts the first call, so 2 means one retry
	MaxAttempts int
	// DefaultDelay is used when the platform did not say how long to wait
	DefaultDelay time.Duration
	// MaxDelay caps the platform's Retry-After hint; zero means no cap
	MaxDelay time.Duration
	// Sleep is replaced in tests
	Sleep SleepFunc
	// OnRetry is called before each wait
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultPolicy retries a rate-limited call once, after the platform's hint or five seconds.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  2,
		DefaultDelay: 5 * time.Second,
		Sleep:        Sleep,
	}
}

// Sleep is a context-aware time.Sleep.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Delay returns how long to wait after err.
func (p Policy) Delay(err error) time.Duration {
	d, _ := integration.RetryAfter(err)
	if d <= 0 {
		d = p.DefaultDelay
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Do calls fn until it succeeds, fails with something other than a rate limit,
// or the attempts are used up. The last error is returned unchanged.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	var (
		result T
		err    error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err = fn(ctx)
		if err == nil {
			return result, nil
		}
		if _, limited := integration.RetryAfter(err); !limited || attempt == attempts {
			return result, err
		}

		delay := p.Delay(err)
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, err)
		}
		if serr := sleep(ctx, delay); serr != nil {
			return result, serr
		}
	}
	return result, err
}
