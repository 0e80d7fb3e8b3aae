package errors

import (
	"fmt"
	"runtime/debug"
)

// PanicError is a panic raised inside a search strategy, recovered and
// returned as an error so the CLI can exit with a runtime failure instead of
// crashing mid-report.
type PanicError struct {
	// PanicValue is the value passed to panic.
	PanicValue interface{}

	// StackTrace is the goroutine stack at the time of the panic.
	StackTrace string

	// Operation names the strategy that panicked, e.g. "selection.backward".
	Operation string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// Unwrap returns nil; a panic value is not an error chain.
func (e *PanicError) Unwrap() error {
	return nil
}

// String includes the stack trace.
func (e *PanicError) String() string {
	return fmt.Sprintf("panic in %s: %v\nStack trace:\n%s",
		e.Operation, e.PanicValue, e.StackTrace)
}

// NewPanicError captures the current stack for operation.
func NewPanicError(operation string, panicValue interface{}) *PanicError {
	return &PanicError{
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
		Operation:  operation,
	}
}

// Recover turns a panic into *err. Use it deferred with a named error result:
//
//	func (s *Searcher) step() (err error) {
//	    defer Recover(&err, "selection.step")
//	    ...
//	}
//
// An error already stored in *err is kept in the chain.
func Recover(err *error, operation string) {
	r := recover()
	if r == nil {
		return
	}
	if *err != nil {
		*err = fmt.Errorf("panic in %s: %v (original error: %w)", operation, r, *err)
		return
	}
	*err = NewPanicError(operation, r)
}

// SafeExecute runs fn and returns its error, or a *PanicError if it
// panicked. Searcher.Run wraps every strategy in it:
//
//	err := SafeExecute("selection.forward", func() error {
//	    return s.Forward(ctx, false)
//	})
func SafeExecute(operation string, fn func() error) (err error) {
	defer Recover(&err, operation)
	return fn()
}
