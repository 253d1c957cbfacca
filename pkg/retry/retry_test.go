package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(attempts int) Policy {
	return Policy{
		MaxAttempts:     attempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		Multiplier:      2,
	}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastPolicy(3), func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryReturnsUnderlyingError(t *testing.T) {
	sentinel := errors.New("database down")
	calls := 0
	err := Retry(context.Background(), fastPolicy(2), func() error {
		calls++
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 2, calls)
}

func TestRetryStopsOnFatal(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastPolicy(5), func() error {
		calls++
		return NewFatalError(errors.New("bad config"))
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithCallbackReportsAttempts(t *testing.T) {
	var attempts []int
	_ = RetryWithCallback(context.Background(), fastPolicy(3), func() error {
		return errors.New("fail")
	}, func(attempt int, err error, nextDelay time.Duration) {
		attempts = append(attempts, attempt)
		assert.LessOrEqual(t, nextDelay, 2*time.Millisecond)
	})
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestPolicyMerge(t *testing.T) {
	merged := DefaultPolicy().Merge(Policy{MaxAttempts: 7, Multiplier: 1.5})
	assert.Equal(t, 7, merged.MaxAttempts)
	assert.Equal(t, 1.5, merged.Multiplier)
	assert.Equal(t, time.Second, merged.InitialInterval)
}

func TestCalculateBackoffDurationCaps(t *testing.T) {
	assert.Equal(t, 4*time.Second, CalculateBackoffDuration(2, time.Second, 2, 10*time.Second))
	assert.Equal(t, 10*time.Second, CalculateBackoffDuration(8, time.Second, 2, 10*time.Second))
}
