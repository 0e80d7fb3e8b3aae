package errors

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
)

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
		check   func(error) bool
	}{
		{
			name:    "format error",
			err:     NewFormatError("targets.train", 3, "x", "label must be 0 or 1"),
			wantMsg: `ensemble: targets.train:3: malformed line "x": label must be 0 or 1`,
			check:   func(err error) bool { var e *FormatError; return As(err, &e) },
		},
		{
			name:    "format error without source",
			err:     NewFormatError("", 1, "", "empty line"),
			wantMsg: `ensemble: input:1: malformed line "": empty line`,
			check:   func(err error) bool { var e *FormatError; return As(err, &e) },
		},
		{
			name:    "size mismatch",
			err:     NewSizeMismatchError("library.New", 4, 3),
			wantMsg: "ensemble: library.New: size mismatch. Expected 4 examples, got 3",
			check:   func(err error) bool { var e *SizeMismatchError; return As(err, &e) },
		},
		{
			name:    "library inconsistency",
			err:     NewLibraryInconsistencyError("test", 3, 2),
			wantMsg: `ensemble: split "test" has 2 candidates, expected 3 like every other split`,
			check:   func(err error) bool { var e *LibraryInconsistencyError; return As(err, &e) },
		},
		{
			name:    "missing targets",
			err:     NewMissingTargetsError("valid", 0),
			wantMsg: `ensemble: no targets file found in split "valid"`,
			check:   func(err error) bool { var e *MissingTargetsError; return As(err, &e) },
		},
		{
			name:    "duplicate targets",
			err:     NewMissingTargetsError("valid", 2),
			wantMsg: `ensemble: split "valid" has 2 targets files, expected exactly one`,
			check:   func(err error) bool { var e *MissingTargetsError; return As(err, &e) },
		},
		{
			name:    "validation",
			err:     NewValidationError("threshold", "must be in [0, 1]", 1.5),
			wantMsg: "ensemble: validation failed for parameter 'threshold': must be in [0, 1] (got: 1.5)",
			check:   func(err error) bool { var e *ValidationError; return As(err, &e) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", tt.err.Error(), tt.wantMsg)
			}
			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", tt.err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}
			if !tt.check(tt.err) {
				t.Errorf("error %T is not castable to its structured type", tt.err)
			}
		})
	}
}

func TestDegenerateMetricError(t *testing.T) {
	w := NewDegenerateMetricError("PRE", "no predicted positives", 0)
	want := "'PRE' is ill-defined and being set to 0 due to no predicted positives"
	if w.Error() != want {
		t.Errorf("Error() = %v, want %v", w.Error(), want)
	}
}

func TestWarn(t *testing.T) {
	var (
		mu       sync.Mutex
		received []error
	)
	SetWarningHandler(func(w error) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, w)
	})
	defer SetWarningHandler(func(w error) {})

	Warn(NewDegenerateMetricError("ROC", "no positive examples", 0))

	if len(received) != 1 {
		t.Fatalf("handler received %d warnings, want 1", len(received))
	}

	// zerologが設定されている場合はそちらが優先される
	var viaZerolog int
	SetZerologWarnFunc(func(error) { viaZerolog++ })
	defer SetZerologWarnFunc(nil)
	Warn(NewDegenerateMetricError("ROC", "no positive examples", 0))
	if viaZerolog != 1 || len(received) != 1 {
		t.Errorf("zerolog func called %d times, handler %d times", viaZerolog, len(received))
	}
}

func TestWrapAndIs(t *testing.T) {
	wrapped := Wrapf(ErrUnknownCandidate, "candidate %d", 7)
	if !Is(wrapped, ErrUnknownCandidate) {
		t.Error("Expected Is(wrapped, ErrUnknownCandidate) to be true")
	}
	if !strings.Contains(wrapped.Error(), "candidate 7") {
		t.Errorf("wrapped error %q lacks context", wrapped)
	}
}

func TestNumericalHelpers(t *testing.T) {
	if v, ok := SafeDivide(1, 0); ok || v != 0 {
		t.Errorf("SafeDivide(1, 0) = %v, %v", v, ok)
	}
	if v, ok := SafeDivide(1, 4); !ok || v != 0.25 {
		t.Errorf("SafeDivide(1, 4) = %v, %v", v, ok)
	}
	if v, err := CheckScalar("RMS", math.NaN()); err == nil || v != 0 {
		t.Errorf("CheckScalar(NaN) = %v, %v", v, err)
	}
	if v, err := CheckScalar("RMS", 0.3); err != nil || v != 0.3 {
		t.Errorf("CheckScalar(0.3) = %v, %v", v, err)
	}
	if math.IsInf(StabilizeLog(0), -1) {
		t.Error("StabilizeLog(0) should be finite")
	}
}
