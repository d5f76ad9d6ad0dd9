// Package apperror defines the error kinds surfaced to callers and maps
// request validation failures to field messages.
package apperror

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// Error codes returned in response bodies.
const (
	CodeInvalidInput     = "invalid-input"
	CodeInvalidAmount    = "invalid-amount"
	CodeInvalidFrequency = "invalid-frequency"
	CodeInvalidDate      = "invalid-date"
	CodeInvalidLimit     = "invalid-limit"
	CodeNotFound         = "not-found"
	CodeAlreadyCompleted = "challenge-already-completed"
	CodeInternal         = "internal"
)

type AppError struct {
	Err     error
	Code    string
	Message string
	Field   string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func InvalidInput(code, field, message string) *AppError {
	return &AppError{
		Err:     ErrInvalidInput,
		Code:    code,
		Message: message,
		Field:   field,
	}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %q not found", resource, id),
	}
}

func Conflict(code, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Code:    code,
		Message: message,
	}
}

// Code extracts the response code carried by err, falling back to the kind.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	default:
		return CodeInternal
	}
}

var (
	errRequired        = errors.New("is required")
	errTooLong         = errors.New("is too long")
	errMustBeEmail     = errors.New("must be a valid email address")
	errMustBeTimestamp = errors.New("must be an RFC3339 timestamp")
)

var customErrors = map[string]error{
	"required": errRequired,
	"max":      errTooLong,
	"email":    errMustBeEmail,
	"datetime": errMustBeTimestamp,
}

// ValidationMessages converts validator errors into field/message pairs.
// Errors that did not come from the validator produce no entries.
func ValidationMessages(err error) []map[string]string {
	errList := make([]map[string]string, 0)

	var validationErr validator.ValidationErrors
	if !errors.As(err, &validationErr) {
		return errList
	}

	for _, e := range validationErr {
		errMsg := fmt.Sprintf("%s is invalid", e.Field())
		if v, ok := customErrors[e.Tag()]; ok {
			errMsg = v.Error()
		}
		errList = append(errList, map[string]string{e.Field(): errMsg})
	}

	return errList
}
