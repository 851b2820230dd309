package clinicapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// RemoteError is a non-2xx answer from the clinic backend. Message is the
// server-provided text, suitable for showing to the user as is.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("clinicapi: %s (status=%d)", e.Message, e.StatusCode)
}

// ParseError reports a response body that does not match the expected envelope.
type ParseError struct {
	Op   string
	Body string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("clinicapi: decode %s response: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err means the backend token is no longer valid.
func IsUnauthorized(err error) bool {
	var remote *RemoteError
	return errors.As(err, &remote) && remote.StatusCode == http.StatusUnauthorized
}

// MessageOf returns the user-facing text carried by err, or fallback when err does
// not come from the backend.
func MessageOf(err error, fallback string) string {
	var remote *RemoteError
	if errors.As(err, &remote) && strings.TrimSpace(remote.Message) != "" {
		return remote.Message
	}
	return fallback
}

func decodeRemoteError(status int, body []byte) *RemoteError {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(body, &parsed); err == nil {
		msg = parsed.Message
		if msg == "" {
			msg = parsed.Error
		}
	}
	if strings.TrimSpace(msg) == "" {
		msg = http.StatusText(status)
	}
	return &RemoteError{StatusCode: status, Message: msg}
}
