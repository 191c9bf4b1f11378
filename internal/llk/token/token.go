// Package token defines the concrete lexed Token (spec §3) produced by the
// tokenizer and consumed by the parser. It plays the role the teacher's
// internal/ictiobus/types.Token and lex.lexerToken play together, collapsed
// into a single concrete type since this core has no need for the
// teacher's pluggable TokenClass indirection (grammar.TokenPattern already
// supplies the equivalent identity and display name).
package token

import "fmt"

// EndOfText is the reserved pattern id used for the sentinel token returned
// once the input is exhausted.
const EndOfText = -1

// Error is the reserved pattern id used for a token produced by an
// unexpected-character condition during tokenization (spec §4.3 step 2).
const Error = -2

// Token is a concrete lexed instance: a pattern id, the matched text, its
// 1-based starting line and column, and a forward link to the next
// non-ignored token. The forward link lets the tokenizer realize k-step
// lookahead by walking the chain instead of re-scanning the input (spec
// §3, §4.3 "Lookahead").
type Token struct {
	patternID   int
	patternName string
	image       string
	line        int
	col         int
	next        *Token
}

// New builds a Token. forState is omitted deliberately: this core's
// tokenizer has no lexer-state concept, unlike the teacher's.
func New(patternID int, patternName, image string, line, col int) *Token {
	return &Token{patternID: patternID, patternName: patternName, image: image, line: line, col: col}
}

// EOT returns the sentinel end-of-text token for the given position.
func EOT(line, col int) *Token {
	return &Token{patternID: EndOfText, patternName: "$", line: line, col: col}
}

// PatternID returns the id of the token pattern that produced this token, or
// EndOfText/Error for the two sentinel cases.
func (t *Token) PatternID() int { return t.patternID }

// PatternName returns the canonicalized name of the token pattern that
// produced this token.
func (t *Token) PatternName() string { return t.patternName }

// Image returns the exact text that was matched.
func (t *Token) Image() string { return t.image }

// Line returns the 1-based line number the token starts on.
func (t *Token) Line() int { return t.line }

// Col returns the 1-based column the token starts on.
func (t *Token) Col() int { return t.col }

// IsEndOfText returns whether this token is the end-of-stream sentinel.
func (t *Token) IsEndOfText() bool { return t.patternID == EndOfText }

// Next returns the next non-ignored token in the stream following this one,
// or nil if it has not yet been lexed.
func (t *Token) Next() *Token { return t.next }

// SetNext links this token to the next one lexed after it. Called only by
// the tokenizer as it extends its lookahead chain.
func (t *Token) SetNext(n *Token) { t.next = n }

func (t *Token) String() string {
	if t.IsEndOfText() {
		return fmt.Sprintf("$ (line %d, col %d)", t.line, t.col)
	}
	return fmt.Sprintf("%s %q (line %d, col %d)", t.patternName, t.image, t.line, t.col)
}
