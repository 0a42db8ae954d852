package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized indicates the backend rejected (or was never given) the session token.
	ErrUnauthorized = errors.New("authentication required")
	// ErrNotFound indicates the backend reported a missing resource.
	ErrNotFound = errors.New("resource not found")
)

// APIError is a non-2xx backend response.
type APIError struct {
	Operation string
	Status    int
	Message   string
	kind      error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend %s failed with status %d", e.Operation, e.Status)
	}
	return fmt.Sprintf("backend %s failed with status %d: %s", e.Operation, e.Status, e.Message)
}

// Unwrap exposes ErrUnauthorized or ErrNotFound where applicable.
func (e *APIError) Unwrap() error {
	return e.kind
}

func newAPIError(operation string, status int, body []byte, public bool) *APIError {
	apiErr := &APIError{
		Operation: operation,
		Status:    status,
		Message:   detailMessage(body),
	}
	switch {
	case status == http.StatusUnauthorized && !public:
		apiErr.kind = ErrUnauthorized
	case status == http.StatusNotFound:
		apiErr.kind = ErrNotFound
	}
	return apiErr
}

// detailMessage extracts the human readable message from a FastAPI style error body.
func detailMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	if len(payload.Detail) > 0 {
		var text string
		if err := json.Unmarshal(payload.Detail, &text); err == nil {
			return strings.TrimSpace(text)
		}

		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(payload.Detail, &items); err == nil {
			parts := make([]string, 0, len(items))
			for _, item := range items {
				if msg := strings.TrimSpace(item.Msg); msg != "" {
					parts = append(parts, msg)
				}
			}
			return strings.Join(parts, "; ")
		}
	}

	return strings.TrimSpace(payload.Message)
}

// Message returns the backend supplied message for err, or fallback.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Status returns the backend HTTP status carried by err, or 0.
func Status(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsEndpointMissing reports whether err means the backend does not expose the
// route at all, as opposed to rejecting this particular request.
func IsEndpointMissing(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Status {
	case http.StatusMethodNotAllowed, http.StatusNotImplemented:
		return true
	case http.StatusNotFound:
		return apiErr.Message == "" || strings.EqualFold(apiErr.Message, "not found")
	}
	return false
}
