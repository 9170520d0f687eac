package reso

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Sentinel errors covering every failure class the client produces.
// Errors returned by this package wrap exactly one of these, so callers
// can classify with errors.Is.
var (
	// ErrConfig indicates invalid client configuration.
	ErrConfig = errors.New("configuration error")
	// ErrNetwork indicates the request never produced an HTTP response.
	ErrNetwork = errors.New("network error")
	// ErrUnauthorized indicates a 401 response (bad or expired token).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates a 403 response (token lacks access).
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates a 404 response.
	ErrNotFound = errors.New("not found")
	// ErrRateLimited indicates a 429 response.
	ErrRateLimited = errors.New("rate limited")
	// ErrServer indicates a 5xx response.
	ErrServer = errors.New("server error")
	// ErrOData indicates any other non-success response, typically a 400
	// for a query the server rejected.
	ErrOData = errors.New("odata error")
	// ErrParse indicates a response body that could not be decoded.
	ErrParse = errors.New("parse error")
	// ErrInvalidQuery indicates an illegal parameter combination caught
	// at build time.
	ErrInvalidQuery = errors.New("invalid query")
)

// maxErrorBodyLen caps how much of an unstructured error body is carried
// into the error message.
const maxErrorBodyLen = 500

// APIError represents a non-success response from the RESO API.
type APIError struct {
	StatusCode int
	Message    string

	kind error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("reso API error: status %d: %s", e.StatusCode, e.Message)
}

// Unwrap exposes the sentinel for this error's class, so
// errors.Is(err, reso.ErrNotFound) and friends work.
func (e *APIError) Unwrap() error {
	return e.kind
}

// IsNotFound checks if the error indicates a not found response.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsUnauthorized checks if the error indicates an authentication failure.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// IsRateLimited checks if the error indicates request throttling.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// errorFromStatus maps a non-success HTTP status and its body to a typed
// APIError.
func errorFromStatus(statusCode int, body []byte) error {
	message := parseErrorBody(body)

	kind := ErrOData
	switch {
	case statusCode == 401:
		kind = ErrUnauthorized
	case statusCode == 403:
		kind = ErrForbidden
	case statusCode == 404:
		kind = ErrNotFound
	case statusCode == 429:
		kind = ErrRateLimited
	case statusCode >= 500 && statusCode <= 599:
		kind = ErrServer
	}

	return &APIError{StatusCode: statusCode, Message: message, kind: kind}
}

// odataErrorEnvelope is the structured error body OData services return.
type odataErrorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// parseErrorBody extracts a readable message from an error response body.
// Structured OData envelopes become "message (code: CODE)"; anything else
// is used verbatim, truncated at maxErrorBodyLen bytes.
func parseErrorBody(body []byte) string {
	var envelope odataErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		if envelope.Error.Code != "" {
			return fmt.Sprintf("%s (code: %s)", envelope.Error.Message, envelope.Error.Code)
		}
		return envelope.Error.Message
	}

	if len(body) > maxErrorBodyLen {
		return string(body[:maxErrorBodyLen]) + "... (truncated)"
	}
	return string(body)
}
