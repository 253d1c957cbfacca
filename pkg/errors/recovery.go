package errors

import (
	"fmt"
	"runtime/debug"
)

// RecoverPanic turns a recovered panic value into a fatal internal error that
// carries the stack trace in its details.
func RecoverPanic(r interface{}) error {
	if r == nil {
		return nil
	}

	var err error
	switch v := r.(type) {
	case error:
		err = v
	case string:
		err = fmt.Errorf("panic: %s", v)
	default:
		err = fmt.Errorf("panic: %v", v)
	}

	return ErrInternal.
		WithCause(err).
		WithDetail("panic", true).
		WithDetail("stack_trace", string(debug.Stack())).
		AsFatal()
}

// Capture runs fn and reports a panic inside it as an error of kind appErr.
func Capture(appErr *Error, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = appErr.WithCause(fmt.Errorf("%v", r)).AsFatal()
		}
	}()
	fn()
	return nil
}
