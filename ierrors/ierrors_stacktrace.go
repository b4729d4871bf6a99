//go:build stacktrace

//nolint:goerr113
package ierrors

import (
	"errors"
	"fmt"

	crdb "github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/errbase"
)

// stackDepth skips the frames of the ierrors helpers so that the stack starts at the caller.
const stackDepth = 2

// ensureStacktraceUniqueness attaches a stacktrace to err unless its error tree already carries one.
func ensureStacktraceUniqueness(err error) error {
	if err == nil {
		return nil
	}

	for cause := err; cause != nil; cause = errbase.UnwrapOnce(cause) {
		if _, hasStack := cause.(errbase.StackTraceProvider); hasStack {
			return err
		}
	}

	return crdb.WithStackDepth(err, stackDepth)
}

// Join returns an error that wraps the given errors. Any nil error values are discarded.
// Join returns nil if errs contains no non-nil values.
func Join(errs ...error) error {
	return ensureStacktraceUniqueness(errors.Join(errs...))
}

// Errorf formats according to a format specifier and returns the string as a value that satisfies error.
func Errorf(format string, args ...any) error {
	return ensureStacktraceUniqueness(fmt.Errorf(format, args...))
}

// Wrap prepends an error with a message and wraps it into a new error.
func Wrap(err error, message string) error {
	return ensureStacktraceUniqueness(fmt.Errorf("%s: %w", message, err))
}

// Wrapf prepends an error with a message format specifier and arguments and wraps it into a new error.
func Wrapf(err error, format string, args ...any) error {
	return ensureStacktraceUniqueness(fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err))
}

// WithMessage appends a message to the error and wraps it into a new error.
func WithMessage(err error, message string) error {
	return ensureStacktraceUniqueness(fmt.Errorf("%w: %s", err, message))
}

// WithStack adds a stacktrace to the error if there was no stacktrace in the error tree yet.
func WithStack(err error) error {
	return ensureStacktraceUniqueness(err)
}
