package customerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when a record addressed by id does not exist.
var ErrNotFound = errors.New("record not found")

// ValidationError reports bad user input. Nothing is written when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// ErrMissingAPIKey is returned by external clients started without credentials.
var ErrMissingAPIKey = errors.New("api key is not configured")

// ServiceError is a non-success HTTP status from an external service.
type ServiceError struct {
	Service string
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s responded with status %d: %s", e.Service, e.Status, e.Message)
}
