package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

const maxMessageRunes = 200

var (
	// ErrNotFound reports a 404 for a key-based request.
	ErrNotFound = errors.New("api: resource not found")
	// ErrConflict reports a 409 (duplicate) or 412 (stale revision) response.
	ErrConflict = errors.New("api: resource conflict")
	// ErrStatus is matched by every non-2xx response.
	ErrStatus = errors.New("api: unexpected status")
	// ErrTransport reports a request that never produced a response.
	ErrTransport = errors.New("api: transport failure")
	// ErrDecode reports a response body that is not the expected JSON.
	ErrDecode = errors.New("api: malformed response")
	// ErrEmptyKey is returned before any request when a resource key is blank.
	ErrEmptyKey = errors.New("api: resource key must not be empty")
)

// StatusError is returned for non-2xx responses. Message is the best-effort
// error text found in the response body.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	kind       error
}

func newStatusError(method, path string, code int, body []byte) *StatusError {
	kind := ErrStatus
	switch code {
	case http.StatusNotFound:
		kind = ErrNotFound
	case http.StatusConflict, http.StatusPreconditionFailed:
		kind = ErrConflict
	}
	return &StatusError{
		Method:     method,
		Path:       path,
		StatusCode: code,
		Message:    bodyMessage(body),
		kind:       kind,
	}
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %s %s returned %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("api: %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Is matches ErrStatus and the specific kind of the response.
func (e *StatusError) Is(target error) bool {
	return target == ErrStatus || (e.kind != nil && target == e.kind)
}

func bodyMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if msg := strings.TrimSpace(parsed.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(parsed.Error); msg != "" {
			return msg
		}
	}

	text := strings.Join(strings.Fields(string(body)), " ")
	if utf8.RuneCountInString(text) > maxMessageRunes {
		text = string([]rune(text)[:maxMessageRunes])
	}
	return text
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrStatus):
		return "status"
	case errors.Is(err, ErrDecode):
		return "decode"
	default:
		return "transport"
	}
}
