package shared

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// AppError is the user-facing error taxonomy. Everything here is recoverable
// by the client: wait out a window, start a new session, or fix the request.
type AppError struct {
	StatusCode int         `json:"code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Err        error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewBadRequestError(err error, message string) *AppError {
	return &AppError{StatusCode: fiber.StatusBadRequest, Message: message, Err: err}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{StatusCode: fiber.StatusNotFound, Message: message}
}

// NewValidationError covers the message checks: too long, empty, malicious.
func NewValidationError(message string) *AppError {
	return &AppError{StatusCode: fiber.StatusBadRequest, Message: message}
}

func NewRateLimitError(message string) *AppError {
	return &AppError{StatusCode: fiber.StatusTooManyRequests, Message: message}
}

func NewSessionLimitError(message string) *AppError {
	return &AppError{StatusCode: fiber.StatusTooManyRequests, Message: message}
}

func NewBlockedError(message string) *AppError {
	return &AppError{StatusCode: fiber.StatusTooManyRequests, Message: message}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{StatusCode: fiber.StatusUnauthorized, Message: message}
}

func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
