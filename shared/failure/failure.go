package failure

import (
	"errors"
	"net/http"
)

// Machine-readable error codes surfaced in the response envelope.
const (
	CodeBadRequest   = "bad-request"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not-found"
	CodeCannotCancel = "cannot-cancel"
	CodePastDeadline = "past-deadline"
	CodeRateLimited  = "rate-limited"
	CodeStoreError   = "store-error"
)

// Failure carries an HTTP status, a stable machine code and a human message.
type Failure struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Failure) Error() string {
	return e.Message
}

// BadRequest returns a new Failure for malformed or invalid requests.
func BadRequest(err error) error {
	if err != nil {
		return &Failure{
			Status:  http.StatusBadRequest,
			Code:    CodeBadRequest,
			Message: err.Error(),
		}
	}

	return nil
}

// BadRequestFromString returns a new Failure for bad requests with the message set from a string.
func BadRequestFromString(msg string) error {
	return &Failure{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: msg,
	}
}

// Unauthorized returns a new Failure for unauthenticated requests.
func Unauthorized(msg string) error {
	return &Failure{
		Status:  http.StatusUnauthorized,
		Code:    CodeUnauthorized,
		Message: msg,
	}
}

// Forbidden returns a new Failure for requests the caller may not perform.
func Forbidden(msg string) error {
	return &Failure{
		Status:  http.StatusForbidden,
		Code:    CodeForbidden,
		Message: msg,
	}
}

// NotFound returns a new Failure for a missing entity.
func NotFound(entityName string) error {
	return &Failure{
		Status:  http.StatusNotFound,
		Code:    CodeNotFound,
		Message: entityName,
	}
}

// CannotCancel returns a new Failure for bookings whose policy forbids cancellation.
func CannotCancel(msg string) error {
	return &Failure{
		Status:  http.StatusConflict,
		Code:    CodeCannotCancel,
		Message: msg,
	}
}

// PastDeadline returns a new Failure for cancellations attempted after the deadline.
func PastDeadline(msg string) error {
	return &Failure{
		Status:  http.StatusConflict,
		Code:    CodePastDeadline,
		Message: msg,
	}
}

// RateLimited returns a new Failure for callers exceeding the request limit.
func RateLimited(msg string) error {
	return &Failure{
		Status:  http.StatusTooManyRequests,
		Code:    CodeRateLimited,
		Message: msg,
	}
}

// StatusOf returns the HTTP status of an error. Errors that are not a Failure
// are treated as store failures and map to 500.
func StatusOf(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Status
	}

	return http.StatusInternalServerError
}

// CodeOf returns the machine code of an error. Errors that are not a Failure
// are failures surfaced by a collaborator and keep the store-error code.
func CodeOf(err error) string {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return CodeStoreError
}
