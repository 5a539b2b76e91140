package errors

import (
	"errors"
	"fmt"
)

// ResourceNotFoundError is returned when a requested resource does not exist.
type ResourceNotFoundError struct {
	Kind string
	ID   string
}

func (e *ResourceNotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Kind)
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func NewResourceNotFoundError(kind, id string) *ResourceNotFoundError {
	return &ResourceNotFoundError{Kind: kind, ID: id}
}

func NewLoadNotFoundError(id string) *ResourceNotFoundError {
	return NewResourceNotFoundError("load", id)
}

func NewTaskRecordNotFoundError(id string) *ResourceNotFoundError {
	return NewResourceNotFoundError("task record", id)
}

func IsResourceNotFoundError(err error) bool {
	var e *ResourceNotFoundError
	return errors.As(err, &e)
}

// InvalidArgumentError is returned when a caller supplied value is rejected.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewInvalidArgumentError(field, reason string) *InvalidArgumentError {
	return &InvalidArgumentError{Field: field, Reason: reason}
}

func IsInvalidArgumentError(err error) bool {
	var e *InvalidArgumentError
	return errors.As(err, &e)
}

// ServiceUnavailableError is returned when a request cannot be served right now,
// e.g. when the load rate limit is exceeded or the pool is shutting down.
type ServiceUnavailableError struct {
	Reason string
}

func (e *ServiceUnavailableError) Error() string {
	return "service unavailable: " + e.Reason
}

func NewServiceUnavailableError(reason string) *ServiceUnavailableError {
	return &ServiceUnavailableError{Reason: reason}
}

func IsServiceUnavailableError(err error) bool {
	var e *ServiceUnavailableError
	return errors.As(err, &e)
}
