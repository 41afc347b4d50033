// Package ireerrors defines the error taxonomy the core surfaces at its
// boundary: lex errors, parse errors, runtime errors and graph errors,
// each carrying enough position information to render a caret diagnostic.
package ireerrors

import (
	"fmt"
	"strings"
)

// Position is a 1-based source location.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// LexError describes a bad character, unterminated string, or malformed
// number. The lexer does not return it: such input comes out as an
// ILLEGAL token (or a NUMBER the parser rejects), which the parser
// reports as a ParseError.
type LexError struct {
	Message  string
	Pos      Position
	Filename string
	Source   string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

// FormatError renders the error with a file:line:column arrow and a caret
// under the offending column, the same shape the teacher's parse errors use.
func (e *LexError) FormatError() string {
	return formatWithCaret(e.Message, e.Filename, e.Source, e.Pos)
}

// ParseError is raised by the parser on an unexpected token, a missing
// closing keyword, or a malformed construct.
type ParseError struct {
	Message  string
	Pos      Position
	Filename string
	Source   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

func (e *ParseError) FormatError() string {
	return formatWithCaret(e.Message, e.Filename, e.Source, e.Pos)
}

func formatWithCaret(message, filename, source string, pos Position) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\033[31merror\033[0m: %s\n", message)
	fmt.Fprintf(&b, "  \033[36m--> %s:%d:%d\033[0m\n", filename, pos.Line, pos.Column)

	lines := strings.Split(source, "\n")
	if pos.Line > 0 && pos.Line <= len(lines) {
		sourceLine := lines[pos.Line-1]
		lineNumStr := fmt.Sprintf("%d", pos.Line)

		fmt.Fprintf(&b, "   \033[34m%s\033[0m | %s\n", lineNumStr, sourceLine)

		col := pos.Column - 1
		if col < 0 {
			col = 0
		}
		spaces := strings.Repeat(" ", len(lineNumStr)) + " | " + strings.Repeat(" ", col)
		fmt.Fprintf(&b, "   %s\033[31m^\033[0m\n", spaces)
	}

	return b.String()
}

// ParseErrorList aggregates multiple parse errors for display. Neither
// the lexer nor the parser builds one: the parser stops at the first
// error and returns it as a single *ParseError.
type ParseErrorList struct {
	Errors   []*ParseError
	Filename string
	Source   string
}

// NewParseErrorList creates an empty list bound to a file and its source.
func NewParseErrorList(filename, source string) *ParseErrorList {
	return &ParseErrorList{Filename: filename, Source: source}
}

// Add appends a new error to the list.
func (l *ParseErrorList) Add(message string, pos Position) {
	l.Errors = append(l.Errors, &ParseError{
		Message:  message,
		Pos:      pos,
		Filename: l.Filename,
		Source:   l.Source,
	})
}

// HasErrors reports whether any error has been recorded.
func (l *ParseErrorList) HasErrors() bool {
	return len(l.Errors) > 0
}

func (l *ParseErrorList) Error() string {
	if len(l.Errors) == 0 {
		return "no errors"
	}
	if len(l.Errors) == 1 {
		return l.Errors[0].Error()
	}
	msgs := make([]string, 0, len(l.Errors))
	for _, e := range l.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// FormatErrors renders up to three errors, same cap the teacher's
// FormatErrors uses so a wall of syntax errors doesn't flood the terminal.
func (l *ParseErrorList) FormatErrors() string {
	if len(l.Errors) == 0 {
		return ""
	}

	const maxErrors = 3
	shown := l.Errors
	truncated := len(shown) > maxErrors
	if truncated {
		shown = shown[:maxErrors]
	}

	var b strings.Builder
	switch {
	case len(l.Errors) == 1:
		b.WriteString("Parse error:\n\n")
	case !truncated:
		fmt.Fprintf(&b, "Parse errors (%d):\n\n", len(l.Errors))
	default:
		fmt.Fprintf(&b, "Parse errors (showing first %d of %d):\n\n", maxErrors, len(l.Errors))
	}

	for i, err := range shown {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(err.FormatError())
	}

	if truncated {
		fmt.Fprintf(&b, "\n\033[33mnote:\033[0m %d additional errors not shown\n", len(l.Errors)-maxErrors)
	}

	return b.String()
}

// RuntimeError is raised by the interpreter: an unknown function, a
// division by zero, a for-loop over a non-array, or a fatal error() call.
type RuntimeError struct {
	Message string
}

func (e *RuntimeError) Error() string {
	return e.Message
}

// NewRuntimeError builds a RuntimeError from a format string.
func NewRuntimeError(format string, args ...any) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...)}
}

// GraphError reports a cycle detected in the target dependency graph.
type GraphError struct {
	Cycle []string
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("cycle detected among targets [%s]", strings.Join(e.Cycle, ", "))
}

// NewGraphError builds a GraphError for the given cycle, in the order
// discovered.
func NewGraphError(cycle []string) *GraphError {
	return &GraphError{Cycle: cycle}
}
