// Package errors provides custom error types for the cashbook API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// WrapWithMessage combines WithMessage and Wrap.
func WrapWithMessage(sentinel *AppError, message string, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Book errors.
var (
	ErrBookNotFound     = &AppError{Code: "BOOK_NOT_FOUND", Message: "Book not found", StatusCode: http.StatusNotFound}
	ErrLoanBookNotFound = &AppError{Code: "LOAN_BOOK_NOT_FOUND", Message: "Loan book not found", StatusCode: http.StatusNotFound}
	ErrDuplicateID      = &AppError{Code: "DUPLICATE_ID", Message: "A record with this id already exists", StatusCode: http.StatusConflict}
)

// Transaction errors.
var (
	ErrTransactionNotFound     = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrLoanTransactionNotFound = &AppError{Code: "LOAN_TRANSACTION_NOT_FOUND", Message: "Loan transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidTransactionType  = &AppError{Code: "INVALID_TRANSACTION_TYPE", Message: "Unsupported transaction type", StatusCode: http.StatusBadRequest}
)

// Import, export and report errors.
var (
	ErrInvalidImport   = &AppError{Code: "INVALID_IMPORT", Message: "The file could not be imported", StatusCode: http.StatusBadRequest}
	ErrNothingToExport = &AppError{Code: "NOTHING_TO_EXPORT", Message: "There are no transactions to export", StatusCode: http.StatusUnprocessableEntity}
	ErrReportFailed    = &AppError{Code: "REPORT_FAILED", Message: "The report could not be generated", StatusCode: http.StatusInternalServerError}
)
