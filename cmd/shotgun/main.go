package main

import (
	"log/slog"
	"os"

	"github.com/YuminosukeSato/ensemble/pkg/errors"
	"github.com/YuminosukeSato/ensemble/pkg/log"
)

// Exit codes for different failure modes
const (
	ExitSuccess = 0 // Selection finished
	ExitError   = 1 // Runtime error
	ExitInput   = 2 // Invalid configuration or prediction library
)

func main() {
	if err := execute(); err != nil {
		slog.Error("shotgun failed", log.ErrAttr(err))
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var (
		ve *errors.ValidationError
		fe *errors.FormatError
		se *errors.SizeMismatchError
		le *errors.LibraryInconsistencyError
		me *errors.MissingTargetsError
	)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &ve), errors.As(err, &fe), errors.As(err, &se), errors.As(err, &le), errors.As(err, &me):
		return ExitInput
	default:
		return ExitError
	}
}
