// Package errmap translates between the dictionary service's HTTP status
// codes and domain errors, and between domain errors and process exit
// codes.
package errmap

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/aelexs/dictsmoke/internal/domain"
)

// StatusError is a non-2xx response from the dictionary service. It
// unwraps to the domain error for its status code.
type StatusError struct {
	StatusCode int
	Code       string
	Detail     string
	err        error
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s (HTTP %d %s)", e.err.Error(), e.StatusCode, e.Code)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *StatusError) Unwrap() error {
	return e.err
}

// httpMapping defines an HTTP status to domain error mapping.
type httpMapping struct {
	statusCode int
	err        error
	code       string
}

// httpMappings maps service status codes to domain errors. Statuses not
// listed map to domain.ErrUnexpectedStatus.
var httpMappings = []httpMapping{
	// Resource errors
	{http.StatusNotFound, domain.ErrNotFound, "NOT_FOUND"},
	{http.StatusConflict, domain.ErrConflict, "ALREADY_EXISTS"},

	// Auth errors
	{http.StatusUnauthorized, domain.ErrUnauthorized, "UNAUTHENTICATED"},
	{http.StatusForbidden, domain.ErrUnauthorized, "PERMISSION_DENIED"},

	// Validation errors
	{http.StatusBadRequest, domain.ErrInvalidInput, "INVALID_ARGUMENT"},
	{http.StatusUnprocessableEntity, domain.ErrInvalidInput, "INVALID_ARGUMENT"},
}

// maxDetail bounds how much of an error body is kept in StatusError.
const maxDetail = 512

// FromHTTPStatus returns nil for 2xx statuses and a *StatusError otherwise.
// When body is a JSON object with a "detail" or "message" field, that
// field becomes the error detail; otherwise the trimmed body is used.
func FromHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode <= 299 {
		return nil
	}

	se := &StatusError{
		StatusCode: statusCode,
		Code:       "UNEXPECTED",
		Detail:     detail(body),
		err:        domain.ErrUnexpectedStatus,
	}
	for _, m := range httpMappings {
		if m.statusCode == statusCode {
			se.Code = m.code
			se.err = m.err
			break
		}
	}
	return se
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

func detail(body []byte) string {
	var payload struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		switch d := payload.Detail.(type) {
		case string:
			return truncate(d)
		case nil:
		default:
			if b, err := json.Marshal(d); err == nil {
				return truncate(string(b))
			}
		}
		if payload.Message != "" {
			return truncate(payload.Message)
		}
	}
	return truncate(strings.TrimSpace(string(body)))
}

// truncate cuts s to at most maxDetail bytes on a rune boundary.
func truncate(s string) string {
	if len(s) <= maxDetail {
		return s
	}
	n := maxDetail
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
