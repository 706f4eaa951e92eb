package httpresponse

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error is the closed set of failures a handler may return. The unexported
// method keeps the set closed, so Render can match it exhaustively.
type Error interface {
	error
	httpError()
}

var (
	_ Error = (*DatabaseError)(nil)
	_ Error = (*ValidationError)(nil)
	_ Error = (*DetailsError)(nil)
)

// DatabaseError reports a storage-layer failure. Only the driver's own text
// reaches the client.
type DatabaseError struct {
	Err error
}

func (e *DatabaseError) Error() string {
	return e.Err.Error()
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

func (e *DatabaseError) httpError() {}

// Database wraps a driver-level error for the response layer.
func Database(err error) error {
	return &DatabaseError{Err: err}
}

// FieldFailure is a single field-level validation failure.
type FieldFailure struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError carries every field failure found in one request, not
// just the first.
type ValidationError struct {
	Failures []FieldFailure
}

func (e *ValidationError) Error() string {
	fields := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		fields[i] = f.Field
	}
	return "validation failed on: " + strings.Join(fields, ", ")
}

func (e *ValidationError) httpError() {}

// FromValidation flattens verrs into a ValidationError, keeping the order
// the validator reported the failures in.
func FromValidation(verrs validator.ValidationErrors) error {
	failures := make([]FieldFailure, 0, len(verrs))
	for _, f := range verrs {
		failures = append(failures, FieldFailure{
			Field:   f.Field(),
			Code:    f.Tag(),
			Message: f.Error(),
		})
	}
	return &ValidationError{Failures: failures}
}

// DetailsError is a failure raised by business logic at its point of
// decision, carrying an explicit status, a client-safe message and any
// extra headers the response needs.
type DetailsError struct {
	Message string
	Status  int
	Headers []Header
}

func (e *DetailsError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *DetailsError) httpError() {}

// WithDetails builds a DetailsError. Headers are written in the order given
// here.
func WithDetails(status int, message string, headers ...Header) error {
	return &DetailsError{Message: message, Status: status, Headers: headers}
}

// Conflict reports a 409 with the given message.
func Conflict(message string) error {
	return WithDetails(http.StatusConflict, message)
}

// Unauthorized reports a 401 with the given message.
func Unauthorized(message string) error {
	return WithDetails(http.StatusUnauthorized, message)
}

// BadRequest reports a 400 with the given message.
func BadRequest(message string) error {
	return WithDetails(http.StatusBadRequest, message)
}

// NotFound reports a 404 with the given message.
func NotFound(message string) error {
	return WithDetails(http.StatusNotFound, message)
}

// InternalServerError reports a 500 with the given message.
func InternalServerError(message string) error {
	return WithDetails(http.StatusInternalServerError, message)
}

type messageBody struct {
	Message string `json:"message"`
}

type validationBody struct {
	ValidationErrors []FieldFailure `json:"validation_errors"`
}

// Render maps err onto the response that reports it. This is the terminal
// step for every failed request: errors flow here unchanged and are
// rendered exactly once. An error outside the taxonomy gets DatabaseError
// treatment, so raw driver failures can flow up without being wrapped at
// every call site.
func Render(err error) *Response {
	var (
		details    *DetailsError
		validation *ValidationError
		database   *DatabaseError
	)
	switch {
	case errors.As(err, &details):
		b := New(details.Status)
		for _, h := range details.Headers {
			b = b.AddHeader(h.Name, h.Value)
		}
		return b.JSON(messageBody{Message: details.Message})
	case errors.As(err, &validation):
		return New(http.StatusBadRequest).JSON(validationBody{ValidationErrors: validation.Failures})
	case errors.As(err, &database):
		return New(http.StatusInternalServerError).JSON(messageBody{Message: database.Error()})
	default:
		return New(http.StatusInternalServerError).JSON(messageBody{Message: err.Error()})
	}
}
