package ierrors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// ErrPanicked is the sentinel that all errors returned by Recovered can be matched against.
var ErrPanicked = New("panicked")

// Recovered turns the value returned by recover() into an error. It has to be called from the deferred function that
// recovered the panic, so that the captured stack still contains the panicking frames.
//
// If the recovered value already is an error, it stays reachable through Is and As.
func Recovered(recovered any) error {
	if recovered == nil {
		return nil
	}

	cause := &panicError{value: recovered}
	if err, isErr := recovered.(error); isErr {
		cause.err = err
	}

	return crdb.WithStackDepth(cause, 1)
}

// panicError is the leaf of the errors returned by Recovered. It renders its whole message itself, so formatting it
// through a stack carrying wrapper keeps the panic value.
type panicError struct {
	value any
	err   error
}

func (p *panicError) Error() string {
	return fmt.Sprintf("%s: %v", ErrPanicked, p.value)
}

func (p *panicError) Unwrap() []error {
	if p.err == nil {
		return []error{ErrPanicked}
	}

	return []error{ErrPanicked, p.err}
}

// StackTrace returns the formatted stacktrace that was attached to err (or an empty string if there is none).
func StackTrace(err error) string {
	if err == nil {
		return ""
	}

	if stack := crdb.GetReportableStackTrace(err); stack != nil {
		frames := ""
		for i := len(stack.Frames) - 1; i >= 0; i-- {
			frame := stack.Frames[i]
			frames += fmt.Sprintf("%s\n\t%s:%d\n", frame.Function, frame.AbsPath, frame.Lineno)
		}

		return frames
	}

	return ""
}
