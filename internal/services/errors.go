package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRenderer marks failures of the external card renderer process
	// (non-zero exit, unusable invocation).
	ErrRenderer = errors.New("renderer error")
	// ErrTimeout marks renderer invocations that exceeded their deadline.
	ErrTimeout = errors.New("timeout")
	// ErrArtifact marks runs where the renderer exited cleanly but produced
	// no locatable output file.
	ErrArtifact = errors.New("missing artifact")
	// ErrIntegrity marks artifacts that were found but judged corrupt.
	ErrIntegrity = errors.New("integrity error")
	// ErrValidation marks pre-flight request validation failures.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks unusable configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks lookups of cards or decks that do not exist.
	ErrNotFound = errors.New("not found")
)

// Wrap builds an error message that includes pipeline context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrRenderer
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsHardFailure reports whether an error should halt the remaining queue under
// the fail-fast policy. Validation and configuration errors never reach the
// worker; every generation-time marker is a hard failure.
func IsHardFailure(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrRenderer) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrArtifact) ||
		errors.Is(err, ErrIntegrity)
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
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
