package jitter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_Range(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 100; i++ {
		d := Duration(base, DefaultJitter)
		assert.GreaterOrEqual(t, d, base)
		assert.LessOrEqual(t, d, base+base/2)
	}
}

func TestExponentialBackoff_CapsAtMax(t *testing.T) {
	d := ExponentialBackoff(time.Second, 4*time.Second, 10, 0)
	assert.Equal(t, 4*time.Second, d)

	d = ExponentialBackoff(time.Second, 30*time.Second, 2, 0)
	assert.Equal(t, 4*time.Second, d)
}

func TestRetry(t *testing.T) {
	policy := Policy{MaxAttempts: 3, Base: time.Millisecond, Max: 2 * time.Millisecond}

	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		retries := 0
		err := Retry(context.Background(), policy, func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("boom")
			}
			return nil
		}, func(int, time.Duration, error) { retries++ })

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, 2, retries)
	})

	t.Run("returns last error", func(t *testing.T) {
		last := errors.New("last")
		calls := 0
		err := Retry(context.Background(), policy, func(ctx context.Context) error {
			calls++
			return last
		}, nil)

		assert.ErrorIs(t, err, last)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		slow := Policy{MaxAttempts: 3, Base: time.Hour, Max: time.Hour}

		err := Retry(ctx, slow, func(ctx context.Context) error {
			return errors.New("boom")
		}, nil)

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("zero attempts runs once", func(t *testing.T) {
		calls := 0
		_ = Retry(context.Background(), Policy{}, func(ctx context.Context) error {
			calls++
			return nil
		}, nil)
		assert.Equal(t, 1, calls)
	})
}

func TestRetry_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	sentinel := errors.New("bad request")

	err := Retry(context.Background(), Policy{MaxAttempts: 5, Base: time.Millisecond, Max: time.Millisecond},
		func(context.Context) error {
			calls++
			return Permanent(sentinel)
		}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}
