package errors

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/julianstephens/tracker/internal/logger"
)

var (
	// ErrNotFound is returned when a lookup by id or title matches nothing
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a title is already used by another row
	ErrDuplicate = errors.New("already exists")
	// ErrValidation is the parent of every ValidationError
	ErrValidation = errors.New("validation failed")
	// ErrFutureDate is returned when completing a tracker for a day after today
	ErrFutureDate = errors.New("date is in the future")
	// ErrDefaultCategory is returned when deleting the default category
	ErrDefaultCategory = errors.New("the default category cannot be deleted")
)

// ValidationError lists the invalid fields of a rejected input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s %s", field, msg))
	}
	sort.Strings(parts)
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NotFound wraps ErrNotFound with the kind and key of the missing row.
func NotFound(kind, key string) error {
	return fmt.Errorf("%s %q: %w", kind, key, ErrNotFound)
}

// Duplicate wraps ErrDuplicate with the kind and key of the conflicting row.
func Duplicate(kind, key string) error {
	return fmt.Errorf("%s %q: %w", kind, key, ErrDuplicate)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Unrecoverable failure", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
