package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for each error type
type ErrorCode string

const (
	// General errors
	ErrCodeInternal   ErrorCode = "INTERNAL_ERROR"
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"
	ErrCodeBadRequest ErrorCode = "BAD_REQUEST"

	// Import format errors
	ErrCodeMissingColumn     ErrorCode = "MISSING_COLUMN"
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	ErrCodeFileParseError    ErrorCode = "FILE_PARSE_ERROR"
	ErrCodeInvalidParams     ErrorCode = "INVALID_PARAMS"
	ErrCodeFileTooLarge      ErrorCode = "FILE_TOO_LARGE"
	ErrCodeMetadataError     ErrorCode = "METADATA_ERROR"

	// Infrastructure errors
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
	ErrCodeStorageError  ErrorCode = "STORAGE_ERROR"
	ErrCodeQueueError    ErrorCode = "QUEUE_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails adds additional context to the error
func (e *AppError) WithDetails(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with AppError context
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

func InternalWrap(err error, message string) *AppError {
	return Wrap(err, ErrCodeInternal, message)
}

func NotFound(message string) *AppError {
	return New(ErrCodeNotFound, message)
}

func BadRequest(message string) *AppError {
	return New(ErrCodeBadRequest, message)
}

// Import format errors

// MissingColumn reports a required column that could not be resolved after
// applying the column mapping and its synonyms. Unlike row-level filtering,
// this is fatal for the whole import call.
func MissingColumn(column string) *AppError {
	return New(ErrCodeMissingColumn,
		fmt.Sprintf("required column %q not found after applying column mapping", column))
}

func UnsupportedFormat(format string) *AppError {
	return New(ErrCodeUnsupportedFormat,
		fmt.Sprintf("unsupported file format: %s", format))
}

func FileParseError(err error, path string) *AppError {
	return Wrap(err, ErrCodeFileParseError,
		fmt.Sprintf("failed to parse file: %s", path))
}

func InvalidParams(message string) *AppError {
	return New(ErrCodeInvalidParams, message)
}

func FileTooLarge(size, limit int64) *AppError {
	return New(ErrCodeFileTooLarge,
		fmt.Sprintf("file size %d exceeds maximum %d", size, limit))
}

func MetadataError(err error, path string) *AppError {
	return Wrap(err, ErrCodeMetadataError,
		fmt.Sprintf("failed to read metadata file: %s", path))
}

// Infrastructure errors

func DatabaseError(err error) *AppError {
	return Wrap(err, ErrCodeDatabaseError, "database operation failed")
}

func StorageError(err error, message string) *AppError {
	return Wrap(err, ErrCodeStorageError, message)
}

func QueueError(err error, message string) *AppError {
	return Wrap(err, ErrCodeQueueError, message)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error chain
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// IsCode reports whether err carries the given error code
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := GetAppError(err)
	return ok && appErr.Code == code
}
