// Package retry provides a generic exponential-backoff executor that retries
// transient infrastructure failures and surfaces everything else immediately.
package retry

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultMaxRetries   = 3
	DefaultInitialDelay = 1 * time.Second
)

// transientPatterns is the fixed set of error-message substrings treated as
// retriable. Matching is case-insensitive. The generic "connection" and
// "timeout" tokens come last; the specific forms exist for readability and
// for log output.
var transientPatterns = []string{
	"connection reset",
	"connection refused",
	"timed out",
	"timeout",
	"connection",
}

// Options configures Do. Zero values take the package defaults.
type Options struct {
	MaxRetries   int
	InitialDelay time.Duration
	Logger       *logrus.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxRetries <= 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = DefaultInitialDelay
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	return o
}

// IsTransient reports whether the error message matches one of the known
// transient infrastructure failure patterns.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// Do invokes fn, retrying transient failures with exponential backoff
// (initialDelay * 2^attempt). Permanent errors are returned immediately
// without delay. After MaxRetries retries the last error is returned. The
// backoff sleep honours ctx cancellation.
//
// Do knows nothing about fn; callers must ensure fn is safe to re-invoke.
func Do[T any](ctx context.Context, fn func(context.Context) (T, error), opts Options) (T, error) {
	opts = opts.withDefaults()

	var zero T
	var lastErr error
	for attempt := 0; ; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if !IsTransient(err) {
			return zero, err
		}
		lastErr = err
		if attempt >= opts.MaxRetries {
			return zero, lastErr
		}

		delay := opts.InitialDelay * (1 << attempt)
		opts.Logger.Warnf("retry: transient error on attempt %d/%d, retrying in %s: %v",
			attempt+1, opts.MaxRetries+1, delay, err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}
