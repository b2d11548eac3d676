package users

import (
	"errors"
	"fmt"
)

// ErrorKind classifies user operation failures
type ErrorKind string

const (
	ErrorKindInvalidArgument ErrorKind = "invalid_argument"
	ErrorKindNotFound        ErrorKind = "not_found"
	ErrorKindStorage         ErrorKind = "storage"
)

// Operation names a user operation
type Operation string

const (
	OpCreate Operation = "create"
	OpList   Operation = "list"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// UserError represents a failed user operation
type UserError struct {
	Kind    ErrorKind
	Op      Operation
	Field   string
	Message string
	Cause   error
}

func (e *UserError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("user %s error [%s]: %s (caused by: %v)", e.Op, e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("user %s error [%s]: %s", e.Op, e.Kind, e.Message)
}

func (e *UserError) Unwrap() error {
	return e.Cause
}

// NewInvalidArgumentError creates an error for a caller-supplied value that violates a precondition
func NewInvalidArgumentError(op Operation, field, message string) *UserError {
	return &UserError{
		Kind:    ErrorKindInvalidArgument,
		Op:      op,
		Field:   field,
		Message: message,
	}
}

// NewNotFoundError creates an error for a user id with no row
func NewNotFoundError(op Operation, id int64) *UserError {
	return &UserError{
		Kind:    ErrorKindNotFound,
		Op:      op,
		Field:   "id",
		Message: fmt.Sprintf("user with id %d not found", id),
	}
}

var storageMessages = map[Operation]string{
	OpCreate: "database error occurred while creating user",
	OpList:   "database error occurred while fetching users",
	OpUpdate: "database error occurred while updating user",
	OpDelete: "database error occurred while deleting user",
}

// NewStorageError wraps an underlying storage failure
func NewStorageError(op Operation, cause error) *UserError {
	return &UserError{
		Kind:    ErrorKindStorage,
		Op:      op,
		Message: storageMessages[op],
		Cause:   cause,
	}
}

// KindOf returns the kind of a *UserError in err's chain, or "" if there is none
func KindOf(err error) ErrorKind {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.Kind
	}
	return ""
}
