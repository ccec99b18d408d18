package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{errors.New("read tcp: connection reset by peer"), true},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("context deadline exceeded: request timed out"), true},
		{errors.New("i/o timeout"), true},
		{errors.New("Connection closed unexpectedly"), true},
		{errors.New("pq: duplicate key value violates unique constraint"), false},
		{errors.New("permission denied"), false},
		{nil, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsTransient(tt.err), "error: %v", tt.err)
	}
}

func TestDoRetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	fn := func(ctx context.Context) (string, error) {
		calls++
		if calls <= 2 {
			return "", fmt.Errorf("rpc failed: connection timeout")
		}
		return "done", nil
	}

	start := time.Now()
	got, err := Do(context.Background(), fn, Options{MaxRetries: 3, InitialDelay: 50 * time.Millisecond})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "done", got)
	assert.Equal(t, 3, calls, "two failures then one success")
	// Backoff: 50ms after the first failure, 100ms after the second.
	assert.GreaterOrEqual(t, elapsed, 150*time.Millisecond)
	assert.Less(t, elapsed, 600*time.Millisecond)
}

func TestDoPermanentErrorNotRetried(t *testing.T) {
	calls := 0
	permanent := errors.New("pq: syntax error at or near SELECT")
	fn := func(ctx context.Context) (int, error) {
		calls++
		return 0, permanent
	}

	start := time.Now()
	_, err := Do(context.Background(), fn, Options{MaxRetries: 3, InitialDelay: 100 * time.Millisecond})
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls, "permanent errors must not be retried")
	assert.Less(t, elapsed, 50*time.Millisecond, "no backoff delay for permanent errors")
}

func TestDoExhaustsRetries(t *testing.T) {
	calls := 0
	fn := func(ctx context.Context) (int, error) {
		calls++
		return 0, fmt.Errorf("attempt %d: connection refused", calls)
	}

	_, err := Do(context.Background(), fn, Options{MaxRetries: 2, InitialDelay: time.Millisecond})

	require.Error(t, err)
	assert.Equal(t, 3, calls, "initial attempt plus two retries")
	assert.Contains(t, err.Error(), "attempt 3", "the last error is surfaced")
}

func TestDoStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	fn := func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("connection reset")
	}

	_, err := Do(ctx, fn, Options{MaxRetries: 5, InitialDelay: time.Hour})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDoDefaults(t *testing.T) {
	opts := Options{}.withDefaults()
	assert.Equal(t, DefaultMaxRetries, opts.MaxRetries)
	assert.Equal(t, DefaultInitialDelay, opts.InitialDelay)
	assert.NotNil(t, opts.Logger)
}
