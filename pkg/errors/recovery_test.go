package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRecover_WithPanic(t *testing.T) {
	step := func() (err error) {
		defer Recover(&err, "selection.forward")
		panic("index out of range")
	}

	err := step()
	if err == nil {
		t.Fatal("Expected error from recovered panic, got nil")
	}

	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}
	if panicErr.Operation != "selection.forward" {
		t.Errorf("Operation = %q, want %q", panicErr.Operation, "selection.forward")
	}
	if panicErr.StackTrace == "" {
		t.Error("Expected non-empty stack trace")
	}
	if panicErr.Error() != "panic in selection.forward: index out of range" {
		t.Errorf("Error() = %q", panicErr.Error())
	}
}

func TestRecover_WithExistingError(t *testing.T) {
	originalErr := fmt.Errorf("original error")

	step := func() (err error) {
		defer Recover(&err, "selection.backward")
		err = originalErr
		panic("panic after error")
	}

	err := step()
	if !strings.Contains(err.Error(), "panic in selection.backward") {
		t.Errorf("Error message should contain panic info: %s", err)
	}
	if !errors.Is(err, originalErr) {
		t.Error("Should be able to identify original error with errors.Is")
	}
}

func TestSafeExecute(t *testing.T) {
	if err := SafeExecute("ok", func() error { return nil }); err != nil {
		t.Fatalf("SafeExecute() = %v, want nil", err)
	}

	fnErr := fmt.Errorf("function error")
	if err := SafeExecute("fails", func() error { return fnErr }); err != fnErr {
		t.Fatalf("SafeExecute() = %v, want %v", err, fnErr)
	}

	err := SafeExecute("panics", func() error { panic(42) })
	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}
	if panicErr.PanicValue != 42 {
		t.Errorf("PanicValue = %v, want 42", panicErr.PanicValue)
	}
	if !strings.Contains(panicErr.String(), "Stack trace:") {
		t.Error("String() should include stack trace information")
	}
}
