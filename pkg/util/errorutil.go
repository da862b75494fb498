package util

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError standardizes application errors. For the HTML flows an error
// carries the route to redirect to and an optional flash message; health
// endpoints render the code and message as JSON instead.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	RedirectTo string
	Flash      string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationFailure covers malformed registration input and hashing
// failures. No cause detail reaches the user.
func NewValidationFailure(err error) error {
	return &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "registration failed",
		HTTPStatus: http.StatusFound,
		RedirectTo: "/register",
		Flash:      "Registration failed. Please try again.",
		Err:        err,
	}
}

// NewAuthenticationFailure covers unknown email, wrong password and
// lockout alike, with one indistinguishable flash message.
func NewAuthenticationFailure(err error) error {
	return &AppError{
		Code:       "AUTH_FAILED",
		Message:    "authentication failed",
		HTTPStatus: http.StatusFound,
		RedirectTo: "/login",
		Flash:      "Invalid email or password.",
		Err:        err,
	}
}

// NewUnauthenticated covers unauthenticated access to a protected route.
// This is normal control flow: no flash, just the redirect.
func NewUnauthenticated() error {
	return &AppError{
		Code:       "UNAUTHENTICATED",
		Message:    "login required",
		HTTPStatus: http.StatusFound,
		RedirectTo: "/login",
	}
}

// NewInternalError wraps unexpected failures.
func NewInternalError(err error) error {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToAppError converts generic errors to AppError.
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if ae, ok := NewInternalError(err).(*AppError); ok {
		return ae
	}
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
