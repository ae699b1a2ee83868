package errors

import (
	"errors"
	"net/http"
)

// Domain-specific error types
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrDuplicateEntry indicates a unique constraint violation
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrResumeNotFound indicates the application has no readable resume
	ErrResumeNotFound = errors.New("resume not found")

	// ErrStorage indicates a file storage failure
	ErrStorage = errors.New("storage failure")

	// ErrPersistence indicates an unhandled repository failure
	ErrPersistence = errors.New("persistence failure")

	// ErrConfiguration indicates a startup configuration failure
	ErrConfiguration = errors.New("configuration error")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal server error")
)

// Error codes
const (
	CodeNotFound       = "NOT_FOUND"
	CodeDuplicateEntry = "DUPLICATE_ENTRY"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeStorage        = "STORAGE_ERROR"
	CodePersistence    = "PERSISTENCE_ERROR"
	CodeConfiguration  = "CONFIGURATION_ERROR"
	CodeInternalError  = "INTERNAL_ERROR"
)

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrResumeNotFound)
}

// IsDuplicateEntry checks if the error is a duplicate entry error
func IsDuplicateEntry(err error) bool {
	return errors.Is(err, ErrDuplicateEntry)
}

// IsInvalidInput checks if the error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// GetErrorCode returns the appropriate error code for an error
func GetErrorCode(err error) string {
	switch {
	case IsNotFound(err):
		return CodeNotFound
	case IsDuplicateEntry(err):
		return CodeDuplicateEntry
	case IsInvalidInput(err):
		return CodeInvalidInput
	case errors.Is(err, ErrStorage):
		return CodeStorage
	case errors.Is(err, ErrPersistence):
		return CodePersistence
	case errors.Is(err, ErrConfiguration):
		return CodeConfiguration
	default:
		return CodeInternalError
	}
}

// HTTPStatus maps an error to the HTTP status code the API answers with
func HTTPStatus(err error) int {
	switch GetErrorCode(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDuplicateEntry:
		return http.StatusConflict
	case CodeInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
