// Package ierrors wraps the "errors" package of the standard library and adds the error construction helpers that
// are used throughout the module. Errors carry a stacktrace when the "stacktrace" build tag is set.
//
//nolint:goerr113
package ierrors

import (
	"errors"
)

// New returns an error that formats as the given text.
// Each call to New returns a distinct error value even if the text is identical.
func New(text string) error {
	return errors.New(text)
}

// Unwrap returns the result of calling the Unwrap method on err, if err's type contains an Unwrap method returning
// error. Otherwise, Unwrap returns nil.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target, and if one is found, sets target to that error value
// and returns true. Otherwise, it returns false.
func As(err error, target any) bool {
	return errors.As(err, target)
}
