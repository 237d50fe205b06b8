package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration     = errors.New("configuration error")
	ErrFeatureExtraction = errors.New("feature extraction error")
	ErrPersistence       = errors.New("persistence error")
	ErrExternalTool      = errors.New("external tool error")
	ErrValidation        = errors.New("validation error")
	ErrCancelled         = errors.New("participant cancelled")
	ErrAborted           = errors.New("session aborted")
)

// Exit codes surfaced by the CLI.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitConfiguration = 2
	ExitCancelled     = 3
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsAbort reports whether err represents the participant's abort key.
func IsAbort(err error) bool {
	return errors.Is(err, ErrAborted)
}

// ExitCode maps an error returned by a command to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, ErrAborted):
		return ExitOK
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrValidation):
		return ExitConfiguration
	case errors.Is(err, ErrCancelled):
		return ExitCancelled
	default:
		return ExitFailure
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "experiment failure"
	}
	return strings.Join(parts, ": ")
}
