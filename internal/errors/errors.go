package errors

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorType string

func (s ErrorType) String() string {
	return strings.ToLower(string(s))
}

const (
	ErrInternalError   ErrorType = "Internal Error"
	ErrNotFound        ErrorType = "Not Found"
	ErrAlreadyExists   ErrorType = "Resource Already Exists"
	ErrInvalidArgument ErrorType = "Invalid Argument"
	ErrFailedPrecond   ErrorType = "Failed Precondition"
)

const (
	EntityPipeline  = "pipeline"
	EntityStage     = "stage"
	EntityWorkspace = "workspace"
	EntityNotebook  = "notebook"
	EntityDashboard = "dashboard"
	EntityJob       = "job"
	EntityConfig    = "config"
)

type DomainError struct {
	ErrorType  ErrorType
	Entity     string
	Message    string
	WrappedErr error
}

func NewError(errType ErrorType, entity, msg string) *DomainError {
	return &DomainError{
		Entity:     entity,
		ErrorType:  errType,
		Message:    msg,
		WrappedErr: nil,
	}
}

func NewInternalError(entity, msg string, err error) *DomainError {
	return &DomainError{
		Entity:     entity,
		ErrorType:  ErrInternalError,
		Message:    msg,
		WrappedErr: err,
	}
}

func NewInvalidArgumentError(entity, msg string) *DomainError {
	return &DomainError{
		ErrorType:  ErrInvalidArgument,
		Entity:     entity,
		Message:    msg,
		WrappedErr: nil,
	}
}

func NewNotFoundError(entity, msg string, err error) *DomainError {
	return &DomainError{
		ErrorType:  ErrNotFound,
		Entity:     entity,
		Message:    msg,
		WrappedErr: err,
	}
}

func NewFailedPrecondError(entity, msg string) *DomainError {
	return &DomainError{
		ErrorType:  ErrFailedPrecond,
		Entity:     entity,
		Message:    msg,
		WrappedErr: nil,
	}
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%v for entity %v: %v",
		e.ErrorType.String(), e.Entity, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.WrappedErr
}

// IsErrorType reports whether err or any error it wraps is a DomainError
// of the given type.
func IsErrorType(err error, errType ErrorType) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.ErrorType == errType
	}
	return false
}
