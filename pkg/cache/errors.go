package cache

import (
	"context"
	"errors"
	"net"
	"time"
)

// Backend retry policy. Cache lookups sit on the request path, so the
// delays stay short: a backend that cannot answer within a few quick
// attempts should surface its error rather than stall the pipeline.
const (
	retryAttempts  = 3
	retryBaseDelay = 50 * time.Millisecond
)

// transient reports whether err is worth retrying. Network timeouts
// qualify; context cancellation and everything else fail immediately.
func transient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// retryTransient runs op, retrying transient failures with a doubling
// delay. The last error is returned when all attempts fail.
func retryTransient(ctx context.Context, op func() error) error {
	delay := retryBaseDelay
	var err error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if err = op(); err == nil || !transient(err) {
			return err
		}
		if attempt == retryAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return err
}
