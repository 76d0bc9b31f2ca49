package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCredentialNotFound = errors.New("credential not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrEmptyMessage       = errors.New("message text is empty")
	ErrEmptyProfileUpdate = errors.New("profile update has no fields to change")
)

// APIError is a non-2xx response from the chat service. Message holds
// the human-readable text extracted from the error payload.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// Unwrap maps auth failures onto ErrUnauthorized so callers can match
// with errors.Is without inspecting status codes.
func (e *APIError) Unwrap() error {
	if e.Status == 401 || e.Status == 403 {
		return ErrUnauthorized
	}
	return nil
}
