// Package errs implements the error taxonomy described in spec §7:
// grammar-construction errors, parser-creation errors, parse errors, and
// internal errors. It plays the role the teacher's (unshipped) icterrors
// package plays for ictiobus: callers build one of these from a message and,
// where relevant, a token's position, and a Log accumulates ParseErrors
// across a single parse run the way the teacher's parser accumulates syntax
// errors before returning them as one summary error.
package errs

import (
	"errors"
	"fmt"
)

// Kind distinguishes the four error categories spec §7 names. Only Parse
// errors are ever accumulated in a Log; the other three are always fatal at
// their boundary (grammar construction, parser preparation, or a
// contract-violating analyzer callback).
type Kind int

const (
	// Grammar is raised while assembling the grammar model: duplicate
	// names, unknown identifier references, unsupported GRAMMARTYPE.
	Grammar Kind = iota
	// Prep is raised during LL(k) preparation: conflicts, left recursion,
	// invalid regex, zero-length literal tokens.
	Prep
	// Parse is raised during tokenization or parsing of an input.
	Parse
	// Internal marks a contract violation in analyzer utility accessors.
	Internal
)

func (k Kind) String() string {
	switch k {
	case Grammar:
		return "grammar construction error"
	case Prep:
		return "parser creation error"
	case Parse:
		return "parse error"
	case Internal:
		return "internal error"
	default:
		return "error"
	}
}

// Error is the concrete error type produced throughout llk. Line and Col are
// 1-based and zero when not applicable (grammar/prep/internal errors
// generally have no source position; parse errors almost always do).
type Error struct {
	Kind    Kind
	Message string

	// Pattern names the production or token pattern the error concerns, when
	// applicable (e.g. an LL(k) conflict or a left-recursion cycle names one
	// production).
	Pattern string

	Line int
	Col  int

	// Expected holds the human-readable descriptions of tokens that would
	// have been acceptable at this point, for unexpected-token errors.
	Expected []string
	// Found is the human-readable description of what was actually seen.
	Found string
}

func (e *Error) Error() string {
	prefix := e.Kind.String()
	if e.Pattern != "" {
		prefix = fmt.Sprintf("%s in %q", prefix, e.Pattern)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s at line %d, col %d: %s", prefix, e.Line, e.Col, e.Message)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// NewGrammarError builds a Grammar-kind Error.
func NewGrammarError(format string, args ...any) *Error {
	return &Error{Kind: Grammar, Message: fmt.Sprintf(format, args...)}
}

// NewGrammarErrorFor builds a Grammar-kind Error naming the offending
// pattern or production.
func NewGrammarErrorFor(pattern string, format string, args ...any) *Error {
	return &Error{Kind: Grammar, Pattern: pattern, Message: fmt.Sprintf(format, args...)}
}

// NewPrepError builds a Prep-kind Error naming the offending production
// (e.g. an LL(k) conflict or a left-recursion cycle).
func NewPrepError(pattern string, format string, args ...any) *Error {
	return &Error{Kind: Prep, Pattern: pattern, Message: fmt.Sprintf(format, args...)}
}

// NewInternalError builds an Internal-kind Error. Internal errors signal a
// contract violation (e.g. an analyzer utility accessor called with a
// precondition unmet); they should never arise from well-formed grammars
// and inputs.
func NewInternalError(format string, args ...any) *Error {
	return &Error{Kind: Internal, Message: fmt.Sprintf(format, args...)}
}

// PositionedToken is the minimal surface NewParseErrorAt needs from a lexed
// token; internal/llk/token.Token satisfies it.
type PositionedToken interface {
	Line() int
	Col() int
}

// NewParseErrorAt builds a Parse-kind Error positioned at the given token.
func NewParseErrorAt(tok PositionedToken, format string, args ...any) *Error {
	return &Error{Kind: Parse, Line: tok.Line(), Col: tok.Col(), Message: fmt.Sprintf(format, args...)}
}

// NewUnexpectedTokenError builds a Parse-kind Error for the case spec §4.6
// step 3 describes: the parser peeked a token that matches no alternative's
// lookahead. expected lists the human-readable descriptions of what would
// have worked.
func NewUnexpectedTokenError(tok PositionedToken, found string, expected []string) *Error {
	e := NewParseErrorAt(tok, "unexpected token")
	e.Found = found
	e.Expected = expected
	return e
}

// Log accumulates Parse-kind errors over the course of a single parse, the
// way the teacher's frontend collects syntax errors before surfacing them
// as one value. Grammar, Prep, and Internal errors are never added here —
// they are returned directly by the call that raised them.
type Log struct {
	entries []*Error
}

// Add appends an error to the log. Panics if passed a non-Parse error,
// since those are never meant to be accumulated.
func (l *Log) Add(e *Error) {
	if e.Kind != Parse {
		panic(fmt.Sprintf("errs.Log.Add: %s is not a Parse error", e.Kind))
	}
	l.entries = append(l.entries, e)
}

// Errors returns the accumulated errors in the order they were logged.
func (l *Log) Errors() []*Error {
	return l.entries
}

// Len returns the number of accumulated errors.
func (l *Log) Len() int {
	return len(l.entries)
}

// Err returns nil if the log is empty, or a single joined error (via the
// standard library's errors.Join) summarizing every accumulated Parse error
// otherwise.
func (l *Log) Err() error {
	if len(l.entries) == 0 {
		return nil
	}
	wrapped := make([]error, len(l.entries))
	for i, e := range l.entries {
		wrapped[i] = e
	}
	return errors.Join(wrapped...)
}
