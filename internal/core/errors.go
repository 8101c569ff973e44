package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors for lookups and the interaction lifecycle.
var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrGroupNotFound       = errors.New("group not found")
	ErrPendingConfirmation = errors.New("an edit is awaiting confirmation")
	ErrNoPendingAction     = errors.New("no pending action to resolve")
	ErrInteractionBusy     = errors.New("another interaction is in progress")
)

// ValidationError reports invalid user input. The store is never touched when
// one is returned.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// CircularDependencyError reports a dependency cycle found while ordering
// tasks. TaskIDs lists the tasks that could not be ordered.
type CircularDependencyError struct {
	TaskIDs []int
}

func (e *CircularDependencyError) Error() string {
	ids := make([]string, len(e.TaskIDs))
	for i, id := range e.TaskIDs {
		ids[i] = strconv.Itoa(id)
	}
	return fmt.Sprintf("circular dependency detected among tasks %s", strings.Join(ids, ", "))
}

// ImportFormatError reports a workbook or document that lacks a required
// sheet or column. Prior state is left untouched.
type ImportFormatError struct {
	Source string
	Cause  string
}

func (e *ImportFormatError) Error() string {
	if e.Source == "" {
		return "import failed: " + e.Cause
	}
	return fmt.Sprintf("import failed (%s): %s", e.Source, e.Cause)
}

// IsUserError reports whether err is one of the recoverable errors raised by
// user input, as opposed to an I/O or programming failure.
func IsUserError(err error) bool {
	var ve *ValidationError
	var ce *CircularDependencyError
	var ie *ImportFormatError
	switch {
	case errors.As(err, &ve), errors.As(err, &ce), errors.As(err, &ie):
		return true
	case errors.Is(err, ErrTaskNotFound), errors.Is(err, ErrGroupNotFound),
		errors.Is(err, ErrPendingConfirmation), errors.Is(err, ErrNoPendingAction),
		errors.Is(err, ErrInteractionBusy):
		return true
	}
	return false
}
