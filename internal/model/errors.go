package model

import (
	"errors"
	"fmt"
)

// ErrorCode classifies pipeline failures. Codes map one-to-one onto the
// recovery policy: extraction codes abort a file, tier codes are recovered
// by fallback, format and backend codes are isolated to the format or
// backend they name.
type ErrorCode string

const (
	// Extraction errors.
	ErrFileNotFound   ErrorCode = "FileNotFound"
	ErrInvalidArchive ErrorCode = "InvalidArchive"
	ErrParseFailure   ErrorCode = "ParseFailure"
	ErrTier1Timeout   ErrorCode = "Tier1Timeout"

	// Transformation errors.
	ErrUnknownFormat      ErrorCode = "UnknownFormat"
	ErrQualityComputation ErrorCode = "QualityComputationError"

	// Load errors.
	ErrBackendUnavailable ErrorCode = "BackendUnavailable"
	ErrWriteFailure       ErrorCode = "WriteFailure"
)

// PipelineError is the typed error carried across phase boundaries.
// It always has a code so callers can branch on category without
// string matching.
type PipelineError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewError creates a PipelineError with the given code.
func NewError(code ErrorCode, message string, err error) *PipelineError {
	return &PipelineError{Code: code, Message: message, Err: err}
}

// CodeOf returns the error code of err if it is or wraps a
// PipelineError, or an empty code otherwise.
func CodeOf(err error) ErrorCode {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
