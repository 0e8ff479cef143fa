// Package diagnostics defines the error values produced while lowering a
// typed IR unit. Lowering errors are internal-consistency defects: the front
// end should never hand over IR that triggers them, so each one carries the
// type, field or segment that exposed the upstream bug.
package diagnostics

import (
	"fmt"

	"github.com/funvibe/fsgen/internal/token"
)

// ErrorCode identifies a class of diagnostic.
type ErrorCode string

const (
	// Lowering defects
	ErrL001 ErrorCode = "L001" // field access on a variant lacking the field
	ErrL002 ErrorCode = "L002" // byte-typed bit segment not byte aligned
	ErrL003 ErrorCode = "L003" // variable-width bit segment not in final position
	ErrL004 ErrorCode = "L004" // invalid bit segment options
	ErrL005 ErrorCode = "L005" // invalid escape sequence in a string literal
	ErrL006 ErrorCode = "L006" // unsupported or malformed IR node

	// Surroundings
	ErrC001 ErrorCode = "C001" // configuration error
	ErrD001 ErrorCode = "D001" // IR file decode error
)

var templates = map[ErrorCode]string{
	ErrL001: "field access defect: %s",
	ErrL002: "unaligned bit segment: %s",
	ErrL003: "misplaced tail segment: %s",
	ErrL004: "invalid bit segment: %s",
	ErrL005: "invalid escape sequence: %s",
	ErrL006: "malformed IR: %s",
	ErrC001: "configuration error: %s",
	ErrD001: "cannot decode IR: %s",
}

// DiagnosticError is a single positioned diagnostic.
type DiagnosticError struct {
	Code  ErrorCode
	Token token.Token
	File  string
	Msg   string
}

// NewError builds a diagnostic from the code's message template.
func NewError(code ErrorCode, tok token.Token, args ...interface{}) *DiagnosticError {
	msg := fmt.Sprint(args...)
	if tmpl, ok := templates[code]; ok {
		msg = fmt.Sprintf(tmpl, fmt.Sprint(args...))
	}
	return &DiagnosticError{Code: code, Token: tok, File: tok.File, Msg: msg}
}

// Errorf is NewError with a format string for the detail part.
func Errorf(code ErrorCode, tok token.Token, format string, args ...interface{}) *DiagnosticError {
	return NewError(code, tok, fmt.Sprintf(format, args...))
}

func (e *DiagnosticError) Error() string {
	if e.Token.IsZero() {
		return fmt.Sprintf("error [%s]: %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("error at %s [%s]: %s", e.Token, e.Code, e.Msg)
}

// IsLowering reports whether the diagnostic is an internal lowering defect
// as opposed to a problem with the surrounding tooling.
func (e *DiagnosticError) IsLowering() bool {
	return len(e.Code) > 0 && e.Code[0] == 'L'
}
