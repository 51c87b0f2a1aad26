package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func TestRetriesUntilSuccess(t *testing.T) {
	r := New(WithMaxAttempts(3), WithInitialDelay(time.Millisecond), WithJitter(0))

	calls := 0
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExhaustedAttemptsReturnLastError(t *testing.T) {
	r := New(WithMaxAttempts(2), WithInitialDelay(time.Millisecond), WithJitter(0))

	calls := 0
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return errTransient
	})

	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 2, calls)
}

func TestPermanentErrorStopsImmediately(t *testing.T) {
	r := New(WithMaxAttempts(5), WithInitialDelay(time.Millisecond))

	calls := 0
	wrapped := errors.New("bad request")
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return Permanent(wrapped)
	})

	assert.Equal(t, wrapped, err)
	assert.Equal(t, 1, calls)
}

func TestContextCancellationStopsRetrying(t *testing.T) {
	r := New(WithMaxAttempts(10), WithInitialDelay(50*time.Millisecond), WithJitter(0))

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := r.Do(ctx, func(context.Context) error {
		calls++
		return errTransient
	})

	assert.ErrorIs(t, err, errTransient)
	assert.LessOrEqual(t, calls, 2)
}

func TestOnRetryCallback(t *testing.T) {
	var attempts []int
	r := New(
		WithMaxAttempts(3),
		WithInitialDelay(time.Millisecond),
		WithJitter(0),
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			attempts = append(attempts, attempt)
		}),
	)

	_ = r.Do(context.Background(), func(context.Context) error { return errTransient })
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	r := New(
		WithInitialDelay(100*time.Millisecond),
		WithMultiplier(2.0),
		WithMaxDelay(300*time.Millisecond),
		WithJitter(0),
	)

	assert.Equal(t, 100*time.Millisecond, r.backoff(1))
	assert.Equal(t, 200*time.Millisecond, r.backoff(2))
	assert.Equal(t, 300*time.Millisecond, r.backoff(3))
	assert.Equal(t, 300*time.Millisecond, r.backoff(6))
}

func TestSnapshotStoreRetrierIsBounded(t *testing.T) {
	r := SnapshotStoreRetrier()

	calls := 0
	start := time.Now()
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return errTransient
	})

	assert.Error(t, err)
	assert.Equal(t, 3, calls)
	// 50ms + 100ms of backoff plus jitter stays well under a second.
	assert.Less(t, time.Since(start), time.Second)
}
