package diagnostics

import (
	"fmt"
	"strings"

	"github.com/forge-lang/forge/internal/token"
)

// Severity of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
	SeveritySuggestion
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	case SeveritySuggestion:
		return "suggestion"
	}
	return "unknown"
}

// ErrorCode is a stable diagnostic code.
type ErrorCode string

const (
	// Internal
	ErrISY000 ErrorCode = "ISY000" // internal.not_well_formed

	// Scope
	ErrESC001 ErrorCode = "ESC001" // scope.symbol_not_found
	ErrESC002 ErrorCode = "ESC002" // scope.member_shadows_inherited
	ErrESC003 ErrorCode = "ESC003" // scope.duplicate_declaration

	// Types
	ErrETY001 ErrorCode = "ETY001" // type.unable_to_resolve
	ErrETY002 ErrorCode = "ETY002" // type.no_void_pointers
	ErrETY003 ErrorCode = "ETY003" // type.no_function_pointers
	ErrETY004 ErrorCode = "ETY004" // type.unexpected_type
	ErrETY005 ErrorCode = "ETY005" // type.unable_to_implicitly_cast
	ErrETY006 ErrorCode = "ETY006" // type.illegal_cast
	ErrETY007 ErrorCode = "ETY007" // type.incorrect_number_of_args
	ErrETY008 ErrorCode = "ETY008" // type.cannot_call_non_function
	ErrETY009 ErrorCode = "ETY009" // type.non_void_function_must_return_value
	ErrETY010 ErrorCode = "ETY010" // type.void_function_cannot_return_value
	ErrETY011 ErrorCode = "ETY011" // type.no_member_with_name

	// Type warnings
	WarnWTY001 ErrorCode = "WTY001" // type.lossy_arithmetic_containing_type

	// Syntax
	ErrESY001 ErrorCode = "ESY001" // syntax.unclosed_block_comment
	ErrESY002 ErrorCode = "ESY002" // syntax.unexpected_character
	ErrESY003 ErrorCode = "ESY003" // syntax.unexpected_token

	// Scope warnings
	WarnWSC001 ErrorCode = "WSC001" // scope.shadows_outer

	// Literal warnings
	WarnWSY001 ErrorCode = "WSY001" // literal.value_does_not_fit_in_type
)

// DiagnosticError is a single structured diagnostic. It implements error so
// that it can flow through ordinary error returns at package boundaries.
type DiagnosticError struct {
	Code     ErrorCode
	Severity Severity
	Token    token.Token
	File     string
	Message  string
	Notes    []*DiagnosticError
}

func (e *DiagnosticError) Error() string {
	var sb strings.Builder
	file := e.File
	if file == "" {
		file = e.Token.File
	}
	if file == "" {
		file = "--"
	}
	fmt.Fprintf(&sb, "%s:%d:%d - %s %s: %s", file, e.Token.Line, e.Token.Column, e.Severity, e.Code, e.Message)
	for _, note := range e.Notes {
		fmt.Fprintf(&sb, "\n%s: %s", note.Severity, note.Message)
	}
	return sb.String()
}

// WithNote attaches a child note and returns the receiver for chaining.
func (e *DiagnosticError) WithNote(msg string) *DiagnosticError {
	e.Notes = append(e.Notes, &DiagnosticError{
		Code:     e.Code,
		Severity: SeverityNote,
		Message:  msg,
	})
	return e
}

// WithSuggestion attaches a child suggestion and returns the receiver.
func (e *DiagnosticError) WithSuggestion(msg string) *DiagnosticError {
	e.Notes = append(e.Notes, &DiagnosticError{
		Code:     e.Code,
		Severity: SeveritySuggestion,
		Message:  msg,
	})
	return e
}

// NewError creates an error-severity diagnostic.
func NewError(code ErrorCode, tok token.Token, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Severity: SeverityError, Token: tok, File: tok.File, Message: msg}
}

// NewWarning creates a warning-severity diagnostic.
func NewWarning(code ErrorCode, tok token.Token, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Severity: SeverityWarning, Token: tok, File: tok.File, Message: msg}
}

// HasErrors reports whether any diagnostic in errs has error severity.
func HasErrors(errs []*DiagnosticError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Abort panics with a stable message. It marks conditions that earlier passes
// guarantee cannot happen; reaching one is a compiler bug, not a user error.
func Abort(context string, format string, args ...interface{}) {
	panic(fmt.Sprintf("forge internal error [%s]: %s", context, fmt.Sprintf(format, args...)))
}
