package shutdown

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"
)

// DefaultTimeout bounds Drain when the caller passes no timeout.
const DefaultTimeout = 20 * time.Second

// NotifyContext is cancelled on SIGINT or SIGTERM.
func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// Drain runs stop under a fresh deadline. The signal context is already
// cancelled by the time stop runs, so it cannot be the parent.
func Drain(timeout time.Duration, stop func(context.Context) error) error {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	start := time.Now()
	if err := stop(ctx); err != nil {
		return fmt.Errorf("drain after %s: %w", time.Since(start).Round(time.Millisecond), err)
	}
	return nil
}
