package common

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrValidation    = errors.New("validation failed")
	ErrExtraction    = errors.New("text extraction failed")
	ErrAnalysis      = errors.New("analysis failed")
	ErrStorage       = errors.New("storage error")
	ErrConfiguration = errors.New("invalid configuration")
)

const CodeConfigError = "CONFIG_ERROR"

// NewAppError builds an AppError.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ConfigError is a fatal configuration problem detected at load time.
func ConfigError(message string) *AppError {
	return NewAppError(CodeConfigError, message, ErrConfiguration)
}

// ExtractionError is returned when text could not be pulled out of one file.
// StorageKey is set when the file had already been uploaded before the failure.
type ExtractionError struct {
	FileName   string
	Method     string
	StorageKey string
	Err        error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %q (%s): %v", e.FileName, e.Method, e.Err)
}

func (e *ExtractionError) Unwrap() []error {
	return []error{ErrExtraction, e.Err}
}

// AnalysisError describes a failed model call or an unusable model response.
type AnalysisError struct {
	FileName string
	Reason   string
	Err      error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("analyze %q: %s: %v", e.FileName, e.Reason, e.Err)
	}
	return fmt.Sprintf("analyze %q: %s", e.FileName, e.Reason)
}

func (e *AnalysisError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrAnalysis}
	}
	return []error{ErrAnalysis, e.Err}
}

// StorageCleanupError is logged when a stored object could not be removed.
type StorageCleanupError struct {
	Key string
	Err error
}

func (e *StorageCleanupError) Error() string {
	return fmt.Sprintf("cleanup %q: %v", e.Key, e.Err)
}

func (e *StorageCleanupError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

// FileValidationError lists every rule a single uploaded file broke.
type FileValidationError struct {
	Index    int
	FileName string
	Problems []ValidationError
}

func (e FileValidationError) Error() string {
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.Field+" "+p.Message)
	}
	name := e.FileName
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("file #%d %q: %s", e.Index+1, name, strings.Join(msgs, ", "))
}

func (e FileValidationError) Unwrap() error {
	return ErrValidation
}

// BatchValidationError rejects a whole batch before any file is processed.
type BatchValidationError struct {
	Files []FileValidationError
	err   error
}

// NewBatchValidationError aggregates per-file failures; nil when there are none.
func NewBatchValidationError(files []FileValidationError) *BatchValidationError {
	if len(files) == 0 {
		return nil
	}
	var combined error
	for _, f := range files {
		combined = multierr.Append(combined, f)
	}
	return &BatchValidationError{Files: files, err: combined}
}

func (e *BatchValidationError) Error() string {
	return fmt.Sprintf("batch validation failed: %d invalid file(s): %v", len(e.Files), e.err)
}

func (e *BatchValidationError) Unwrap() []error {
	return append([]error{ErrValidation}, multierr.Errors(e.err)...)
}

// Messages returns one human readable line per invalid file.
func (e *BatchValidationError) Messages() []string {
	out := make([]string, 0, len(e.Files))
	for _, err := range multierr.Errors(e.err) {
		out = append(out, err.Error())
	}
	return out
}
