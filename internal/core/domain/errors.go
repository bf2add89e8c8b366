package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport covers network-level failures reaching the backend.
	ErrTransport = errors.New("backend unreachable")
	// ErrAuthFailure means the backend explicitly rejected the credentials.
	ErrAuthFailure = errors.New("authentication failed")
	// ErrAccessDenied means credentials were accepted but the principal's
	// role does not match the session kind. Always raised client-side,
	// regardless of what the backend filtered.
	ErrAccessDenied = errors.New("access denied")
	// ErrLoginInFlight rejects a login attempted while another one for the
	// same session is still pending.
	ErrLoginInFlight = errors.New("login already in progress")
	// ErrNotAuthenticated is returned when an operation requires an
	// authenticated session and there is none.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// ProtocolError reports that the backend responded, but not with the
// expected structured payload. The status and a truncated body snippet
// are kept for diagnosis.
type ProtocolError struct {
	Status  int
	Snippet string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("non-JSON response from backend (status %d): %q", e.Status, e.Snippet)
}

const snippetLimit = 120

// NewProtocolError builds a ProtocolError, truncating the body snippet.
func NewProtocolError(status int, body []byte) *ProtocolError {
	s := string(body)
	if len(s) > snippetLimit {
		s = s[:snippetLimit] + "..."
	}
	return &ProtocolError{Status: status, Snippet: s}
}
