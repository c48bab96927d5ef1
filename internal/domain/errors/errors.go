// Package errors defines the classified business errors returned by every use case.
package errors

import (
	"net/http"

	"librarian/internal/errors"
)

// Kind classifies an AppError for callers that do not care about HTTP.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindAuth       Kind = "auth"
	KindInternal   Kind = "internal"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int      // HTTP status code
	ErrorCode() string  // Business error code
	Message() string    // User-friendly error message
	Details() string    // Detailed error information (optional)
	Suggestion() string // How the caller can fix the input (optional)
	Kind() Kind
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode   int
	errorCode  string
	message    string
	details    string
	suggestion string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// Is matches any BaseError carrying the same business code, so that
// copies made by WithDetails or WithSuggestion still satisfy errors.Is.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return t.errorCode == e.errorCode
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// Suggestion returns a hint for correcting the request, if any.
func (e *BaseError) Suggestion() string {
	return e.suggestion
}

// Kind derives the error class from the HTTP status.
func (e *BaseError) Kind() Kind {
	switch e.httpCode {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	default:
		return KindInternal
	}
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	clone := *e
	clone.details = details

	return &clone
}

// WithMessage replaces the user-facing message, keeping the business code.
func (e *BaseError) WithMessage(message string) *BaseError {
	clone := *e
	clone.message = message

	return &clone
}

// WithSuggestion attaches a correction hint
func (e *BaseError) WithSuggestion(suggestion string) *BaseError {
	clone := *e
	clone.suggestion = suggestion

	return &clone
}

// Predefined error types
var (
	// Validation errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"input validation failed",
		"",
	)

	ErrRequiredFieldsMissing = NewBaseError(
		http.StatusBadRequest,
		"REQUIRED_FIELDS_MISSING",
		"required fields missing",
		"",
	)

	ErrInvalidID = NewBaseError(
		http.StatusBadRequest,
		"INVALID_ID",
		"invalid id",
		"",
	)

	ErrInvalidDate = NewBaseError(
		http.StatusBadRequest,
		"INVALID_DATE",
		"invalid date, expected YYYY-MM-DD or RFC3339",
		"",
	)

	ErrInvalidFine = NewBaseError(
		http.StatusBadRequest,
		"INVALID_FINE",
		"fine value must not be negative",
		"",
	)

	ErrInvalidCPF = NewBaseError(
		http.StatusBadRequest,
		"INVALID_CPF",
		"cpf must contain only digits",
		"",
	)

	ErrPasswordStrength = NewBaseError(
		http.StatusBadRequest,
		"PASSWORD_STRENGTH",
		"password does not meet the security requirements",
		"",
	)

	// User-related errors
	ErrUserNotFound = NewBaseError(
		http.StatusNotFound,
		"USER_NOT_FOUND",
		"user not found",
		"",
	)

	ErrUserAlreadyExists = NewBaseError(
		http.StatusConflict,
		"USER_ALREADY_EXISTS",
		"email is already in use",
		"",
	)

	// Authentication-related errors
	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"invalid email or password",
		"",
	)

	ErrInvalidToken = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_TOKEN",
		"invalid or expired token",
		"",
	)

	ErrPasswordHashFailed = NewBaseError(
		http.StatusInternalServerError,
		"PASSWORD_HASH_FAILED",
		"password processing failed",
		"",
	)

	ErrTokenIssueFailed = NewBaseError(
		http.StatusInternalServerError,
		"TOKEN_ISSUE_FAILED",
		"could not issue session token",
		"",
	)

	// Client-related errors
	ErrClientNotFound = NewBaseError(
		http.StatusNotFound,
		"CLIENT_NOT_FOUND",
		"client not found",
		"",
	)

	ErrClientAlreadyExists = NewBaseError(
		http.StatusConflict,
		"CLIENT_ALREADY_EXISTS",
		"a client with this cpf already exists",
		"",
	)

	// Catalog errors
	ErrAuthorNotFound = NewBaseError(
		http.StatusNotFound,
		"AUTHOR_NOT_FOUND",
		"author not found",
		"",
	)

	ErrAuthorHasBooks = NewBaseError(
		http.StatusConflict,
		"AUTHOR_HAS_BOOKS",
		"author has registered books and cannot be removed",
		"",
	)

	ErrBookNotFound = NewBaseError(
		http.StatusNotFound,
		"BOOK_NOT_FOUND",
		"book not found",
		"",
	)

	ErrBookISBNConflict = NewBaseError(
		http.StatusConflict,
		"BOOK_ISBN_CONFLICT",
		"a book with this isbn already exists",
		"",
	)

	ErrBookHasCopies = NewBaseError(
		http.StatusConflict,
		"BOOK_HAS_COPIES",
		"book has registered copies and cannot be removed",
		"",
	)

	ErrCopyNotFound = NewBaseError(
		http.StatusNotFound,
		"COPY_NOT_FOUND",
		"copy not found",
		"",
	)

	ErrCopyBarCodeConflict = NewBaseError(
		http.StatusConflict,
		"COPY_BAR_CODE_CONFLICT",
		"this copy is already registered",
		"",
	)

	ErrCopyHasOpenRental = NewBaseError(
		http.StatusConflict,
		"COPY_HAS_OPEN_RENTAL",
		"copy has an open rental and cannot be removed",
		"",
	)

	ErrCopyHasRentals = NewBaseError(
		http.StatusConflict,
		"COPY_HAS_RENTALS",
		"copy has rental history and cannot be removed",
		"",
	)

	// Rental errors
	ErrRentalNotFound = NewBaseError(
		http.StatusNotFound,
		"RENTAL_NOT_FOUND",
		"rental not found",
		"",
	)

	ErrCopyAlreadyRented = NewBaseError(
		http.StatusConflict,
		"COPY_ALREADY_RENTED",
		"copy already rented",
		"",
	)

	ErrRentalAlreadyFinished = NewBaseError(
		http.StatusConflict,
		"RENTAL_ALREADY_FINISHED",
		"rental already finished",
		"",
	)

	// Transaction-related errors
	ErrTransactionFailed = NewBaseError(
		http.StatusInternalServerError,
		"TRANSACTION_FAILED",
		"database transaction failed",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"internal server error",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"access denied",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"resource not found",
		"",
	)
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// Unwrap exposes the driver error.
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "database execution failed"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}

func (e *DatabaseExecuteError) Suggestion() string {
	return ""
}

func (e *DatabaseExecuteError) Kind() Kind {
	return KindInternal
}

// KindOf classifies any error. Errors outside the AppError family are internal.
func KindOf(err error) Kind {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Kind()
	}

	return KindInternal
}
