package apperror

import (
	"fmt"
	"net/http"
)

// Kind tags an AppError with the platform error taxonomy so clients can
// branch on machine-readable categories rather than message text.
type Kind string

const (
	KindAccessDenied      Kind = "access_denied"
	KindNeedsVerification Kind = "needs_verification"
	KindValidation        Kind = "validation"
	KindUpload            Kind = "upload"
	KindPersistence       Kind = "persistence"
	KindNotFound          Kind = "not_found"
	KindInternal          Kind = "internal"
)

type AppError struct {
	Code    int      `json:"code"`
	Kind    Kind     `json:"kind"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"` // list-valued for validation errors
	Err     error    `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, kind Kind, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, KindValidation, message, nil)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, KindAccessDenied, message, nil)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, KindAccessDenied, message, nil)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, KindNotFound, message, nil)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, KindInternal, "Internal Server Error", err)
}

// Validation aggregates step or submission-time field violations. The details
// list is rendered inline by the client and never crashes a flow.
func Validation(details []string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindValidation,
		Message: "Validation failed",
		Details: details,
	}
}

// NeedsVerification marks the recoverable "authenticated but no profile row"
// state. Distinct from AccessDenied so clients show the resend-verification
// screen instead of looping back to login.
func NeedsVerification(message string) *AppError {
	return New(http.StatusForbidden, KindNeedsVerification, message, nil)
}

// Upload identifies the file that failed so the client can point at it.
func Upload(filename string, err error) *AppError {
	return New(http.StatusBadGateway, KindUpload,
		fmt.Sprintf("Failed to upload %q: %v", filename, err), err)
}

// Persistence surfaces the store's error text verbatim; form state is kept
// client-side for retry.
func Persistence(err error) *AppError {
	return New(http.StatusInternalServerError, KindPersistence, err.Error(), err)
}
