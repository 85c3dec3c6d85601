package mfasdk

import (
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/totpenroll/pkg/httpx"
)

const (
	ErrorCodeInvalidRequest = "invalid_request"
	ErrorCodeInvalidCode    = "invalid_code"
	ErrorCodeInvalidState   = "invalid_state"
	ErrorCodeNotFound       = "not_found"
	ErrorCodeServerError    = "server_error"
)

// APIError is the JSON error body returned by the enrollment API.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches API errors by status and code, so clients can test a returned
// error against the predefined values with errors.Is.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode && e.Code == t.Code
}

// WriteError writes e as the response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, e)
}

// WithDescription returns a copy of e carrying a more specific description.
func (e *APIError) WithDescription(desc string) *APIError {
	c := *e
	c.Description = desc
	return &c
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrInvalidCode is returned when a submitted TOTP code does not match.
	ErrInvalidCode = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidCode,
		Description: "invalid TOTP code",
	}

	// ErrInvalidState is returned for operations on a confirmed, abandoned or
	// expired enrollment. The caller must start a new enrollment.
	ErrInvalidState = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeInvalidState,
		Description: "the enrollment is no longer pending",
	}

	ErrNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "resource not found",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)
