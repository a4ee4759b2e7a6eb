package parser

import (
	"fmt"
	"strings"
)

// Point is a 1-indexed line, 0-indexed column location in source text.
type Point struct {
	Line   int
	Column int
}

func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Range is a half-open span between two Points; ranges are additive
// left-to-right as tokens and AST nodes are built up.
type Range struct {
	Start Point
	End   Point
}

func (r Range) String() string {
	if r.Start == r.End {
		return r.Start.String()
	}
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}

// ErrorKind categorizes a parse-time failure by the taxonomy in
// spec.md §7 (lex / parse / encode / runtime), broken into the
// specific situations this assembler can hit.
type ErrorKind int

const (
	ErrorUnknownChar ErrorKind = iota
	ErrorMalformedNumber
	ErrorNumberOutOfRange
	ErrorUnterminatedText
	ErrorUnexpectedToken
	ErrorWrongOperandCount
	ErrorNoSection
	ErrorUnknownDirective
	ErrorUnknownMnemonic
	ErrorBadNumber // encode: value not representable
	ErrorUnknownLabel
)

// Error is a Range-bearing assembly error (spec.md §7: "lex and parse
// errors carry source Ranges").
type Error struct {
	Range   Range
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: error: %s", e.Range, e.Message)
}

// NewError creates an Error at a single point (a zero-width Range).
func NewError(at Point, kind ErrorKind, message string) *Error {
	return &Error{Range: Range{Start: at, End: at}, Kind: kind, Message: message}
}

// NewErrorRange creates an Error spanning a Range.
func NewErrorRange(r Range, kind ErrorKind, message string) *Error {
	return &Error{Range: r, Kind: kind, Message: message}
}

// Warning is a non-fatal diagnostic; currently only duplicate label
// definitions use this (SPEC_FULL.md Open Question #4: replace
// silently, but warn).
type Warning struct {
	Range   Range
	Message string
}

func (w *Warning) String() string {
	return fmt.Sprintf("%s: warning: %s", w.Range, w.Message)
}

// ErrorList accumulates errors and warnings across a lex+parse pass.
type ErrorList struct {
	Errors   []*Error
	Warnings []*Warning
}

func (el *ErrorList) AddError(err *Error)     { el.Errors = append(el.Errors, err) }
func (el *ErrorList) AddWarning(w *Warning)    { el.Warnings = append(el.Warnings, w) }
func (el *ErrorList) HasErrors() bool          { return len(el.Errors) > 0 }

// Error implements the error interface, joining every collected error
// into one printable report.
func (el *ErrorList) Error() string {
	var sb strings.Builder
	for _, err := range el.Errors {
		sb.WriteString(err.Error())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// PrintWarnings renders every collected warning, one per line.
func (el *ErrorList) PrintWarnings() string {
	var sb strings.Builder
	for _, w := range el.Warnings {
		sb.WriteString(w.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
