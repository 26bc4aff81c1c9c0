package rest

import (
	"PayoutDesk/internal/core/domain"
	"net/http"
)

// APIError is a failed backend call. Error() is the human-readable text
// shown to operators.
type APIError struct {
	Status    int // 0 for transport failures
	Message   string
	RequestID string
	cause     error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// Is lets callers match auth failures with errors.Is(err, domain.ErrUnauthorized).
func (e *APIError) Is(target error) bool {
	if target == domain.ErrUnauthorized {
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}
