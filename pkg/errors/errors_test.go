package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrappedSentinelMatches(t *testing.T) {
	err := fmt.Errorf("load: %w", ErrNotFound.WithDetail("id", "abc"))

	assert.True(t, IsNotFound(err))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, http.StatusNotFound, ToHTTPStatus(err))
}

func TestWithDetailDoesNotMutateSentinel(t *testing.T) {
	_ = ErrValidation.WithDetail("field", "name")
	assert.Empty(t, ErrValidation.Details)
}

func TestErrorMessageUsesDetail(t *testing.T) {
	err := ErrConflict.WithMessage("event type 'course' already exists")
	assert.Equal(t, "CONFLICT: event type 'course' already exists", err.Error())

	caused := ErrInternal.WithCause(errors.New("boom"))
	assert.Equal(t, "INTERNAL_ERROR: internal server error (caused by: boom)", caused.Error())
}

func TestIsFatal(t *testing.T) {
	assert.True(t, ErrValidation.IsFatal())
	assert.True(t, ErrRouteConflict.IsFatal())
	assert.False(t, ErrInternal.IsFatal())
	assert.True(t, ErrInternal.AsFatal().IsFatal())
	assert.False(t, ErrNotFound.AsTransient().IsFatal())
}

func TestToErrorResponse(t *testing.T) {
	resp := ToErrorResponse(errors.New("plain"))
	assert.Equal(t, "INTERNAL_ERROR", resp["error_code"])

	resp = ToErrorResponse(ErrNotFound.WithDetail("name", "rng.event.x.event"))
	assert.Equal(t, "NOT_FOUND", resp["error_code"])
	assert.Equal(t, map[string]interface{}{"name": "rng.event.x.event"}, resp["details"])
}

func TestCapture(t *testing.T) {
	err := Capture(ErrRouteConflict, func() { panic("wildcard conflict") })
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRouteConflict))
	assert.Contains(t, err.Error(), "wildcard conflict")

	assert.NoError(t, Capture(ErrRouteConflict, func() {}))
}

func TestRecoverPanic(t *testing.T) {
	assert.NoError(t, RecoverPanic(nil))

	err := RecoverPanic("bad")
	var appErr *Error
	require.ErrorAs(t, err, &appErr)
	assert.True(t, appErr.IsFatal())
	assert.Equal(t, true, appErr.Details["panic"])
}

func TestWrapKeepsExistingCode(t *testing.T) {
	conflict := ErrConflict.WithMessage("entity type exists")
	wrapped := Wrap(fmt.Errorf("insert: %w", conflict), ErrInternal)
	assert.True(t, IsConflict(wrapped))

	plain := Wrap(errors.New("socket closed"), ErrInternal)
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(plain))
	assert.Nil(t, Wrap(nil, ErrInternal))
}
