// Package errors provides custom error types and error handling utilities.
package errors

import (
	"fmt"
)

// Error codes.
const (
	// Data-contract errors. Validation failures abort the whole run;
	// everything below is scoped to a single query.
	CodeValidation = "VALIDATION_FAILURE"
	CodeNotFound   = "NOT_FOUND"

	// Per-query stage failures.
	CodeRetrieval  = "RETRIEVAL_FAILURE"
	CodeScrape     = "SCRAPE_FAILURE"
	CodeSynthesis  = "SYNTHESIS_FAILURE"
	CodeJudgeParse = "JUDGE_PARSE_FAILURE"
	CodeTimeout    = "TIMEOUT"

	// Infrastructure errors.
	CodeInternal    = "INTERNAL_ERROR"
	CodeUnavailable = "SERVICE_UNAVAILABLE"
	CodeLLMError    = "LLM_ERROR"
	CodeVectorError = "VECTOR_ERROR"
	CodeIngestError = "INGEST_ERROR"
)

// AppError represents an application error with code and details.
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	Err     error             `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Cause returns a short cause string suitable for per-query failure records.
func (e *AppError) Cause() string {
	if e.Code == CodeTimeout {
		return "timeout"
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates a new AppError.
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with an AppError.
func Wrap(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetails adds details to the error.
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// WithDetail adds a single detail to the error.
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Convenience constructors.

// ValidationError creates a validation error. A validation failure at dataset
// or catalog load aborts the entire run.
func ValidationError(message string) *AppError {
	return New(CodeValidation, message)
}

// NotFoundError creates a not found error.
func NotFoundError(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// RetrievalError creates a retrieval failure for one query's path.
func RetrievalError(message string, err error) *AppError {
	return Wrap(CodeRetrieval, message, err)
}

// ScrapeError creates a scrape failure. Fatal for the keyword path of one
// query only; the hybrid path continues.
func ScrapeError(message string, err error) *AppError {
	return Wrap(CodeScrape, message, err)
}

// SynthesisError creates a synthesis failure.
func SynthesisError(message string, err error) *AppError {
	return Wrap(CodeSynthesis, message, err)
}

// JudgeParseError creates a judge parse failure. Raised only after the single
// stricter-instruction retry has also failed to produce a score block.
func JudgeParseError(message string) *AppError {
	return New(CodeJudgeParse, message)
}

// TimeoutError creates a timeout error for a specific operation.
func TimeoutError(operation string) *AppError {
	message := "operation timed out"
	if operation != "" {
		message = fmt.Sprintf("%s timed out", operation)
	}
	return New(CodeTimeout, message)
}

// InternalError creates an internal error.
func InternalError(message string, err error) *AppError {
	return Wrap(CodeInternal, message, err)
}

// LLMError creates an LLM provider error.
func LLMError(message string, err error) *AppError {
	return Wrap(CodeLLMError, message, err)
}

// VectorError creates a vector index error.
func VectorError(message string, err error) *AppError {
	return Wrap(CodeVectorError, message, err)
}

// IngestError creates an ingestion error.
func IngestError(message string, err error) *AppError {
	return Wrap(CodeIngestError, message, err)
}

// ServiceUnavailableError creates a service unavailable error.
func ServiceUnavailableError(service string) *AppError {
	message := "service unavailable"
	if service != "" {
		message = fmt.Sprintf("%s is unavailable", service)
	}
	return New(CodeUnavailable, message)
}

// IsNotFound checks if error is a not found error.
func IsNotFound(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == CodeNotFound
	}
	return false
}

// IsValidation checks if error is a validation error.
func IsValidation(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == CodeValidation
	}
	return false
}

// IsRetrieval checks if error is a retrieval failure.
func IsRetrieval(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == CodeRetrieval
	}
	return false
}

// IsScrape checks if error is a scrape failure.
func IsScrape(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == CodeScrape
	}
	return false
}

// IsJudgeParse checks if error is a judge parse failure.
func IsJudgeParse(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == CodeJudgeParse
	}
	return false
}

// IsTimeout checks if error is a timeout.
func IsTimeout(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == CodeTimeout
	}
	return false
}

// CauseOf extracts a cause string from any error for failure records.
func CauseOf(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr.Cause()
	}
	return err.Error()
}
