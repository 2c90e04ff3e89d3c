// Package scanerror defines the typed errors surfaced by the statement scanner.
package scanerror

import (
	"errors"
	"fmt"
)

// User-facing messages. Underlying causes are logged, never shown.
const (
	MsgInvalidDocument  = "Please upload a valid PDF file."
	MsgExtractionFailed = "Failed to process the statement. Please try again."
)

// ErrExtractionInProgress is returned when an upload is attempted while a
// previous extraction has not finished.
var ErrExtractionInProgress = errors.New("an extraction is already in progress")

// ErrTransactionNotFound is returned when an operation names an unknown transaction id.
var ErrTransactionNotFound = errors.New("transaction not found")

// ValidationError represents a rejected upload. It is raised before any
// call to the extraction service.
type ValidationError struct {
	FileName string
	MIMEType string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s (%s): %s", e.FileName, e.MIMEType, e.Reason)
}

// ExtractionError represents a failure of the extraction service or of the
// decoding of its response.
type ExtractionError struct {
	FileName string
	Stage    string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s at %s: %v", e.FileName, e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Extraction stages.
const (
	StageRequest  = "request"
	StageResponse = "response"
	StageDecode   = "decode"
)

// TransitionError represents an action that is not allowed in the current state.
type TransitionError struct {
	From   string
	Action string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s while in state %s", e.Action, e.From)
}

// RuleError represents an invalid keyword rule.
type RuleError struct {
	Field  string
	Reason string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("invalid rule %s: %s", e.Field, e.Reason)
}

// UserMessage maps an error to the text shown to the user.
// It returns an empty string for errors that carry no user message.
func UserMessage(err error) string {
	var validationErr *ValidationError
	var extractionErr *ExtractionError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &validationErr):
		return MsgInvalidDocument
	case errors.As(err, &extractionErr):
		return MsgExtractionFailed
	default:
		return ""
	}
}
