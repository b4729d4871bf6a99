//go:build !stacktrace

//nolint:goerr113
package ierrors

import (
	"errors"
	"fmt"
)

// Join returns an error that wraps the given errors. Any nil error values are discarded.
// Join returns nil if errs contains no non-nil values.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Errorf formats according to a format specifier and returns the string as a value that satisfies error.
func Errorf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Wrap prepends an error with a message and wraps it into a new error.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf prepends an error with a message format specifier and arguments and wraps it into a new error.
func Wrapf(err error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// WithMessage appends a message to the error and wraps it into a new error.
func WithMessage(err error, message string) error {
	return fmt.Errorf("%w: %s", err, message)
}

// WithStack returns the error unchanged (stacktraces are only collected with the "stacktrace" build tag).
func WithStack(err error) error {
	return err
}
