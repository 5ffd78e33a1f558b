package chunklog

import (
	"errors"
	"fmt"
)

// Error represents a structured chunklog error with context.
type Error struct {
	Op     string    // Operation that failed (e.g., "RegisterCurrentTask", "RegisterTopic")
	TaskID uint8     // Task id involved (0xFF if not applicable)
	Code   ErrorCode // High-level error category
	Msg    string    // Human-readable message
	Inner  error     // Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Op != "" {
		return fmt.Sprintf("chunklog: %s: %s", e.Op, msg)
	}
	return fmt.Sprintf("chunklog: %s", msg)
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Inner
}

// Is provides errors.Is support for code comparison.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if te, ok := target.(*Error); ok {
		return e.Code == te.Code
	}
	return false
}

// ErrorCode represents high-level error categories.
type ErrorCode string

const (
	// ErrCodeOutOfTaskIDs: the task table is full, or the calling task is
	// already registered. Fatal at the platform layer.
	ErrCodeOutOfTaskIDs ErrorCode = "out of task ids or double registration"
	// ErrCodeOutOfTopics: the topic table is full. TopicRegistry.Register
	// returns it as an ordinary error; it does not call Platform.FatalError.
	ErrCodeOutOfTopics  ErrorCode = "out of topics"
	ErrCodeNotRegistered ErrorCode = "task not registered"
	ErrCodeClosed        ErrorCode = "pipeline already closed"
	ErrCodeInvalidConfig ErrorCode = "invalid configuration"
	ErrCodeSinkFailure   ErrorCode = "transmit sink failure"
)

// NewError creates a new structured error.
func NewError(op string, code ErrorCode, msg string) *Error {
	return &Error{Op: op, TaskID: InvalidTaskID, Code: code, Msg: msg}
}

// NewTaskError creates a new task-specific error.
func NewTaskError(op string, taskID uint8, code ErrorCode, msg string) *Error {
	return &Error{Op: op, TaskID: taskID, Code: code, Msg: msg}
}

// WrapError wraps an existing error with chunklog context.
func WrapError(op string, inner error) *Error {
	if inner == nil {
		return nil
	}
	if ce, ok := inner.(*Error); ok {
		return &Error{Op: op, TaskID: ce.TaskID, Code: ce.Code, Msg: ce.Msg, Inner: ce.Inner}
	}
	return &Error{Op: op, TaskID: InvalidTaskID, Code: ErrCodeSinkFailure, Msg: inner.Error(), Inner: inner}
}

// IsCode checks if an error matches a specific error code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
