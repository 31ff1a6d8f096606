package dberror

import (
	"fmt"
	"runtime"
	"strings"
)

// ErrorCategory classifies errors by their nature and appropriate handling strategy.
type ErrorCategory int

const (
	// ErrCategoryUser represents errors caused by invalid input: malformed schemas,
	// unknown attributes, bad conditions. Fixable by changing the request.
	ErrCategoryUser ErrorCategory = iota

	// ErrCategorySystem represents errors from the environment, such as a snapshot
	// directory that cannot be written.
	ErrCategorySystem

	// ErrCategoryData represents errors related to stored data, such as a snapshot
	// file that does not decode.
	ErrCategoryData
)

func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryUser:
		return "user"
	case ErrCategorySystem:
		return "system"
	case ErrCategoryData:
		return "data"
	default:
		return "unknown"
	}
}

// Error codes. Two DBErrors with the same code match under errors.Is.
const (
	CodeSchema             = "SCHEMA_ERROR"
	CodeIncompatibleTables = "INCOMPATIBLE_TABLES"
	CodeTypeMismatch       = "TYPE_MISMATCH"
	CodeInvalidCondition   = "INVALID_CONDITION"
	CodeTableNotFound      = "TABLE_NOT_FOUND"
	CodeTableExists        = "TABLE_EXISTS"
	CodeReadOnly           = "READ_ONLY_TABLE"
	CodeSnapshot           = "SNAPSHOT_FAILED"
	CodeSnapshotCorrupted  = "SNAPSHOT_CORRUPTED"
	CodeInternal           = "INTERNAL"
)

// Sentinels for errors.Is. They carry no stack and must not be returned directly.
var (
	ErrSchema             = &DBError{Code: CodeSchema}
	ErrIncompatibleTables = &DBError{Code: CodeIncompatibleTables}
	ErrTypeMismatch       = &DBError{Code: CodeTypeMismatch}
	ErrInvalidCondition   = &DBError{Code: CodeInvalidCondition}
	ErrTableNotFound      = &DBError{Code: CodeTableNotFound}
	ErrTableExists        = &DBError{Code: CodeTableExists}
	ErrReadOnly           = &DBError{Code: CodeReadOnly}
	ErrSnapshot           = &DBError{Code: CodeSnapshot}
	ErrSnapshotCorrupted  = &DBError{Code: CodeSnapshotCorrupted}
)

// DBError represents a structured database error with rich context information.
type DBError struct {
	// Code is a unique identifier for this error type (e.g., "SCHEMA_ERROR").
	Code string

	// Category classifies the error for appropriate handling strategy.
	Category ErrorCategory

	// Message is a human-readable description of what went wrong.
	Message string

	// Detail provides additional context about the specific error instance.
	Detail string

	// Hint suggests how the caller might fix the request.
	Hint string

	// Operation identifies the operation being performed, e.g. "Project", "Join".
	Operation string

	// Component identifies where the error originated, e.g. "Table", "SnapshotStore".
	Component string

	// Cause is the underlying error that triggered this error.
	Cause error

	// Stack contains the call stack where this error was created.
	Stack []uintptr
}

// New creates a new DBError with the specified code, category, and message.
func New(category ErrorCategory, code, message string) *DBError {
	return &DBError{
		Code:     code,
		Category: category,
		Message:  message,
		Stack:    captureStack(),
	}
}

// Wrap wraps an existing error with database-specific context information.
// If the error is already a DBError, it enriches the existing error with
// operation and component context (only if not already set).
func Wrap(err error, code, operation, component string) *DBError {
	if err == nil {
		return nil
	}

	if dbErr, ok := err.(*DBError); ok {
		if dbErr.Operation == "" {
			dbErr.Operation = operation
		}
		if dbErr.Component == "" {
			dbErr.Component = component
		}
		return dbErr
	}

	return &DBError{
		Code:      code,
		Category:  ErrCategorySystem,
		Message:   err.Error(),
		Operation: operation,
		Component: component,
		Cause:     err,
		Stack:     captureStack(),
	}
}

// Schemaf reports a malformed or inconsistent schema, or an unresolved attribute.
func Schemaf(format string, args ...any) *DBError {
	e := New(ErrCategoryUser, CodeSchema, "schema error")
	e.Detail = fmt.Sprintf(format, args...)
	e.Stack = captureStack()
	return e
}

// Incompatiblef reports a union/minus between tables of different shape.
func Incompatiblef(format string, args ...any) *DBError {
	e := New(ErrCategoryUser, CodeIncompatibleTables, "incompatible tables")
	e.Detail = fmt.Sprintf(format, args...)
	e.Hint = "both tables need the same arity and the same domain at every position"
	e.Stack = captureStack()
	return e
}

// TypeMismatchf reports a comparison between values that have no common order.
func TypeMismatchf(format string, args ...any) *DBError {
	e := New(ErrCategoryUser, CodeTypeMismatch, "type mismatch")
	e.Detail = fmt.Sprintf(format, args...)
	e.Stack = captureStack()
	return e
}

// InvalidConditionf reports a condition that does not follow "<attr> <op> <operand>".
func InvalidConditionf(format string, args ...any) *DBError {
	e := New(ErrCategoryUser, CodeInvalidCondition, "invalid condition")
	e.Detail = fmt.Sprintf(format, args...)
	e.Hint = "operators are ==, !=, <, >, <= and >="
	e.Stack = captureStack()
	return e
}

// WithOp sets Operation and Component when they are still empty and returns e.
func (e *DBError) WithOp(operation, component string) *DBError {
	if e.Operation == "" {
		e.Operation = operation
	}
	if e.Component == "" {
		e.Component = component
	}
	return e
}

// captureStack captures the current call stack for debugging purposes.
// It skips the first 3 frames to exclude captureStack, New/Wrap, and the
// immediate caller, focusing on the actual error origin.
func captureStack() []uintptr {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[0:n]
}

// Error implements the standard Go error interface
//
// The format follows the pattern:
// [ERROR_CODE] Message: Detail (operation: Operation, component: Component) caused by: underlying error
func (e *DBError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Detail != "" {
		b.WriteString(fmt.Sprintf(": %s", e.Detail))
	}

	if e.Operation != "" {
		b.WriteString(fmt.Sprintf(" (operation: %s", e.Operation))
		if e.Component != "" {
			b.WriteString(fmt.Sprintf(", component: %s", e.Component))
		}
		b.WriteString(")")
	}

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(" caused by: %v", e.Cause))
	}

	return b.String()
}

// Unwrap returns the underlying cause error, enabling error chain traversal
// with Go's standard error handling functions like errors.Is and errors.As.
func (e *DBError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DBError with the same code.
func (e *DBError) Is(target error) bool {
	t, ok := target.(*DBError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// FormatStack returns a human-readable stack trace for debugging purposes.
func (e *DBError) FormatStack() string {
	if len(e.Stack) == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(e.Stack)

	b.WriteString("Stack trace:\n")
	for {
		f, more := frames.Next()
		b.WriteString(fmt.Sprintf("  %s\n    %s:%d\n",
			f.Function, f.File, f.Line))
		if !more {
			break
		}
	}

	return b.String()
}
