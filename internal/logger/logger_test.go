package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"rng/pkg/logging"
)

func TestContextFieldsAreAttached(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithCore(core)
	log.SetServiceName("event-router")

	ctx := logging.WithRequestID(context.Background(), "req-42")
	log.InfowCtx(ctx, "Route table rebuilt", "routes", 8)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "event-router", fields["service_name"])
	assert.EqualValues(t, 8, fields["routes"])
}

func TestServiceNameFromContextWins(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewWithCore(core)
	log.SetServiceName("fallback")

	log.WarnwCtx(logging.WithServiceName(context.Background(), "management-service"), "warn")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "management-service", logs.All()[0].ContextMap()["service_name"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestNew(t *testing.T) {
	log, err := New("debug", "console")
	require.NoError(t, err)
	assert.NotNil(t, log)
}
