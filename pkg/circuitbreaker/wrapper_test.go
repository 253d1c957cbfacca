package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rng/internal/config"
)

func TestWrapperTripsAfterFailures(t *testing.T) {
	w := NewWrapper(Config{
		Name:        "test-trip",
		MaxRequests: 1,
		Timeout:     time.Minute,
		ReadyToTrip: tripOnRatio(2, 0.5),
	})

	boom := errors.New("redis down")
	for i := 0; i < 2; i++ {
		_, err := w.Execute(func() (interface{}, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)
	}

	assert.True(t, w.IsOpen())
	_, err := w.Execute(func() (interface{}, error) { return "ok", nil })
	assert.True(t, IsUnavailable(err))
}

func TestDoReturnsTypedResult(t *testing.T) {
	w := NewWrapper(DefaultConfig("test-do"))

	got, err := Do(context.Background(), w, func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.True(t, w.IsClosed())
}

func TestExecuteWithCanceledContext(t *testing.T) {
	w := NewWrapper(DefaultConfig("test-ctx"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := w.ExecuteWithContext(ctx, func() (interface{}, error) {
		called = true
		return nil, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestIsSuccessfulIgnoresClassifiedErrors(t *testing.T) {
	notFound := errors.New("not found")
	w := NewWrapper(Config{
		Name:         "test-successful",
		MaxRequests:  1,
		ReadyToTrip:  tripOnRatio(1, 0.1),
		IsSuccessful: func(err error) bool { return err == nil || errors.Is(err, notFound) },
	})

	for i := 0; i < 3; i++ {
		_, _ = w.Execute(func() (interface{}, error) { return nil, notFound })
	}
	assert.Equal(t, gobreaker.StateClosed, w.State())
}

func TestFromSettings(t *testing.T) {
	cfg := FromSettings("redis", config.CircuitBreakerConfig{
		MaxRequests:     5,
		IntervalSeconds: 10,
		TimeoutSeconds:  20,
		FailureRatio:    0.8,
		MinRequests:     4,
	})

	assert.Equal(t, uint32(5), cfg.MaxRequests)
	assert.Equal(t, 10*time.Second, cfg.Interval)
	assert.Equal(t, 20*time.Second, cfg.Timeout)
	assert.False(t, cfg.ReadyToTrip(gobreaker.Counts{Requests: 3, TotalFailures: 3}))
	assert.True(t, cfg.ReadyToTrip(gobreaker.Counts{Requests: 5, TotalFailures: 4}))
	assert.False(t, cfg.ReadyToTrip(gobreaker.Counts{Requests: 5, TotalFailures: 3}))
}
