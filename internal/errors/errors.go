// Package errors attaches stack traces to errors and renders them for the
// top-level fault report.
package errors

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// WithStackTrace wraps err with the caller's stack. An error that already
// carries a stack is returned as is. A nil error stays nil.
func WithStackTrace(err error) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, 1)
}

// WithStackTraceAndPrefix is WithStackTrace with a formatted message in front.
func WithStackTraceAndPrefix(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return goerrors.WrapPrefix(err, fmt.Sprintf(format, args...), 1)
}

// Is is [errors.Is]; it sees through stack wrappers.
func Is(err, target error) bool { return errors.Is(err, target) }

// As is [errors.As].
func As(err error, target any) bool { return errors.As(err, target) }

// New returns an error with a stack trace.
func New(msg string) error { return goerrors.Wrap(errors.New(msg), 1) }

// TypeName reports the type of the error at the bottom of the stack wrapper,
// e.g. "*fs.PathError".
func TypeName(err error) string {
	var goErr *goerrors.Error
	if errors.As(err, &goErr) {
		return goErr.TypeName()
	}
	return fmt.Sprintf("%T", err)
}

// Stack returns the captured stack trace, or an empty string if err has none.
func Stack(err error) string {
	var goErr *goerrors.Error
	if errors.As(err, &goErr) {
		return string(goErr.Stack())
	}
	return ""
}

// Recover turns a panic into an error with a stack trace and hands it to
// onPanic. It must be called from a defer statement.
func Recover(onPanic func(cause error)) {
	if rec := recover(); rec != nil {
		err, ok := rec.(error)
		if !ok {
			err = fmt.Errorf("%v", rec)
		}
		onPanic(goerrors.Wrap(err, 2))
	}
}
