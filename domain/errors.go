package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers and jobs.
type ErrorCode string

const (
	ErrCodeNotFound             ErrorCode = "NOT_FOUND"
	ErrCodeInvalid              ErrorCode = "INVALID"
	ErrCodeInvalidTransition    ErrorCode = "INVALID_TRANSITION"
	ErrCodeBoard                ErrorCode = "BOARD"
	ErrCodeNotification         ErrorCode = "NOTIFICATION"
	ErrCodeRecipientUnreachable ErrorCode = "RECIPIENT_UNREACHABLE"
	ErrCodeStore                ErrorCode = "STORE"
	ErrCodeConflict             ErrorCode = "CONFLICT"
	ErrCodeUnauthorized         ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal             ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrTaskNotFound      = NewError(ErrCodeNotFound, "task not found")
	ErrUserNotFound      = NewError(ErrCodeNotFound, "user not found")
	ErrUnauthorized      = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload    = NewError(ErrCodeInvalid, "invalid payload")
	ErrInvalidStatus     = NewError(ErrCodeInvalid, "unknown task status")
	ErrBoardListNotFound = NewError(ErrCodeBoard, "no board list matches status")
)

// NewInvalidTransition reports a status change that the adjacency table forbids.
func NewInvalidTransition(from, to Status) *Error {
	return NewError(ErrCodeInvalidTransition, fmt.Sprintf("transition %s -> %s is not allowed", from, to))
}

// StoreError classifies a persistent-store failure.
func StoreError(message string, err error) *Error {
	return WrapError(ErrCodeStore, message, err)
}

// BoardError classifies a failed call to the external board.
func BoardError(message string, err error) *Error {
	return WrapError(ErrCodeBoard, message, err)
}

// NotificationError classifies a failed delivery.
func NotificationError(message string, err error) *Error {
	return WrapError(ErrCodeNotification, message, err)
}

// UnreachableError marks a recipient that cannot receive messages at all (blocked, deleted chat).
func UnreachableError(recipientID string, err error) *Error {
	return WrapError(ErrCodeRecipientUnreachable, "recipient "+recipientID+" unreachable", err)
}

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// IsUnreachable reports whether a delivery failed because the recipient can never be reached.
func IsUnreachable(err error) bool {
	return IsDomainError(err, ErrCodeRecipientUnreachable)
}
