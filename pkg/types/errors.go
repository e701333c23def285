package types

import (
	"errors"
	"fmt"
)

// Error code constants for the scenescript error taxonomy.
const (
	CodeLexError                = "LexError"
	CodeParseError              = "ParseError"
	CodeUndefinedVariableError  = "UndefinedVariableError"
	CodeArityError              = "ArityError"
	CodeUnknownFunctionError    = "UnknownFunctionError"
	CodeTypeMismatchError       = "TypeMismatchError"
	CodeIndexError              = "IndexError"
	CodeKeyError                = "KeyError"
	CodeDuplicateSingletonError = "DuplicateSingletonError"
	CodeUnknownObjectError      = "UnknownObjectError"
	CodeMissingFieldError       = "MissingFieldError"
	CodeRecursionError          = "RecursionError"
	CodeIterationLimitError     = "IterationLimitError"
)

// ScriptError represents a scenescript error with a taxonomy code and,
// where available, the source position that produced it.
type ScriptError struct {
	Message string
	Code    string
	Line    int // 1-based, 0 when unknown
	Col     int
}

// Error implements the error interface.
func (e *ScriptError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s (line %d, col %d)", e.Code, e.Message, e.Line, e.Col)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// At attaches a source position to the error and returns it. Positions are
// only set once: the innermost location wins as errors propagate outward.
func (e *ScriptError) At(line, col int) *ScriptError {
	if e.Line == 0 {
		e.Line = line
		e.Col = col
	}
	return e
}

// IsCode reports whether err is a ScriptError carrying the given code.
func IsCode(err error, code string) bool {
	var se *ScriptError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// Common error constructors. Call sites format their own messages.

// NewLexError creates a LexError.
func NewLexError(msg string) *ScriptError {
	return &ScriptError{Message: msg, Code: CodeLexError}
}

// NewParseError creates a ParseError.
func NewParseError(msg string) *ScriptError {
	return &ScriptError{Message: msg, Code: CodeParseError}
}

// NewUndefinedVariableError creates an UndefinedVariableError for name.
func NewUndefinedVariableError(name string) *ScriptError {
	return &ScriptError{
		Message: fmt.Sprintf("variable '%s' is not defined", name),
		Code:    CodeUndefinedVariableError,
	}
}

// NewArityError creates an ArityError.
func NewArityError(msg string) *ScriptError {
	return &ScriptError{Message: msg, Code: CodeArityError}
}

// NewUnknownFunctionError creates an UnknownFunctionError for name.
func NewUnknownFunctionError(name string) *ScriptError {
	return &ScriptError{
		Message: fmt.Sprintf("no function named '%s'", name),
		Code:    CodeUnknownFunctionError,
	}
}

// NewTypeMismatchError creates a TypeMismatchError.
func NewTypeMismatchError(msg string) *ScriptError {
	return &ScriptError{Message: msg, Code: CodeTypeMismatchError}
}

// NewIndexError creates an IndexError.
func NewIndexError(msg string) *ScriptError {
	return &ScriptError{Message: msg, Code: CodeIndexError}
}

// NewKeyError creates a KeyError for a missing dict key.
func NewKeyError(key string) *ScriptError {
	return &ScriptError{
		Message: fmt.Sprintf("key '%s' not found", key),
		Code:    CodeKeyError,
	}
}

// NewDuplicateSingletonError creates a DuplicateSingletonError for kind.
func NewDuplicateSingletonError(kind string) *ScriptError {
	return &ScriptError{
		Message: fmt.Sprintf("'%s' may only be declared once", kind),
		Code:    CodeDuplicateSingletonError,
	}
}

// NewUnknownObjectError creates an UnknownObjectError for a declaration
// whose kind is not a recognized scene object.
func NewUnknownObjectError(kind string) *ScriptError {
	return &ScriptError{
		Message: fmt.Sprintf("'%s' is not a known object kind", kind),
		Code:    CodeUnknownObjectError,
	}
}

// NewMissingFieldError creates a MissingFieldError naming the object kind
// and the absent field.
func NewMissingFieldError(kind, field string) *ScriptError {
	return &ScriptError{
		Message: fmt.Sprintf("%s requires field '%s'", kind, field),
		Code:    CodeMissingFieldError,
	}
}

// NewRecursionError creates a RecursionError for call stack overflow.
func NewRecursionError(limit int) *ScriptError {
	return &ScriptError{
		Message: fmt.Sprintf("call stack depth limit exceeded (max %d)", limit),
		Code:    CodeRecursionError,
	}
}

// NewIterationLimitError creates an IterationLimitError for runaway loops.
func NewIterationLimitError(limit int) *ScriptError {
	return &ScriptError{
		Message: fmt.Sprintf("loop iteration limit exceeded (max %d)", limit),
		Code:    CodeIterationLimitError,
	}
}
