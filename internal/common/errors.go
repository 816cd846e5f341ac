package common

import (
	"errors"
	"net/http"
)

// AppError is a business error with an HTTP status and a stable code.
// Message is the English fallback; the error handler localizes by Code.
type AppError struct {
	Status  int               `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`

	specific bool
}

func (e *AppError) Error() string {
	return e.Message
}

// Is matches on Code so wrapped copies with details still compare equal to the sentinel.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewAppError creates a new AppError
func NewAppError(status int, code, message string) *AppError {
	return &AppError{Status: status, Code: code, Message: message}
}

// WithDetails returns a copy of e carrying details.
func (e *AppError) WithDetails(details map[string]string) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithMessage returns a copy of e with a message specific to the failure.
func (e *AppError) WithMessage(msg string) *AppError {
	cp := *e
	cp.Message = msg
	cp.specific = true
	return &cp
}

// HasSpecificMessage reports whether Message was set by WithMessage rather than inherited from the sentinel.
func (e *AppError) HasSpecificMessage() bool {
	return e.specific
}

var (
	ErrNotFound           = NewAppError(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrAlreadyExists      = NewAppError(http.StatusBadRequest, "ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput       = NewAppError(http.StatusBadRequest, "INVALID_INPUT", "Invalid input provided")
	ErrInvalidState       = NewAppError(http.StatusBadRequest, "INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock  = NewAppError(http.StatusBadRequest, "INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrInvalidCredentials = NewAppError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	ErrUnauthorized       = NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized access")
	ErrForbidden          = NewAppError(http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
	ErrInvalidToken       = NewAppError(http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
	ErrInvitationInvalid  = NewAppError(http.StatusBadRequest, "INVITATION_INVALID", "Invitation is invalid or expired")
	ErrConflict           = NewAppError(http.StatusConflict, "CONFLICT", "Resource was modified concurrently, try again")
	ErrInvalidDocument    = NewAppError(http.StatusBadRequest, "INVALID_DOCUMENT", "Invalid CPF/CNPJ")
	ErrChannelNotReady    = NewAppError(http.StatusBadRequest, "CHANNEL_NOT_CONFIGURED", "Notification channel is not configured")
)

// NotFound returns ErrNotFound naming the resource.
func NotFound(resource string) *AppError {
	return ErrNotFound.WithDetails(map[string]string{"resource": resource})
}
