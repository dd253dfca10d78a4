package api

import (
	"errors"
	"fmt"
)

// Error is a failed backend call: a non-2xx response or a body reporting
// status false.
type Error struct {
	Status  int
	Message string
	Path    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend %s: status %d", e.Path, e.Status)
	}
	return fmt.Sprintf("backend %s: status %d: %s", e.Path, e.Status, e.Message)
}

// IsStatus reports whether err is a backend error with the given HTTP status
func IsStatus(err error, status int) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == status
	}
	return false
}
