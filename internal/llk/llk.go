// Package llk is the top-level facade tying together the grammar model,
// LL(k) preparation, tokenizer, and recursive-descent parser into the
// single in-memory object spec §1 describes: "an in-memory grammar object
// capable of tokenizing and parsing inputs directly." It plays the role
// the teacher's internal/ictiobus/ictiobus.go plays for its own
// lexer/parser/SDD stack — a single import that re-exports the pieces a
// caller needs without reaching into each subpackage directly.
package llk

import (
	"io"

	"github.com/adrimount/llkgram/internal/llk/analyzer"
	"github.com/adrimount/llkgram/internal/llk/errs"
	"github.com/adrimount/llkgram/internal/llk/grammar"
	"github.com/adrimount/llkgram/internal/llk/lookahead"
	"github.com/adrimount/llkgram/internal/llk/parser"
	"github.com/adrimount/llkgram/internal/llk/tree"
)

// Re-exported types so a caller needs only this package for the common
// path: build a grammar, prepare it, parse input.
type (
	Grammar       = grammar.Grammar
	TokenPattern  = grammar.TokenPattern
	Element       = grammar.Element
	Alternative   = grammar.Alternative
	Analyzer      = analyzer.Analyzer
	Node          = tree.Node
	Parser        = parser.Parser
	Error         = errs.Error
	PrepareOptions = lookahead.Options
)

// Element-kind and pattern-kind constants, re-exported for callers who
// don't want to import the grammar package directly.
const (
	TokenRef      = grammar.TokenRef
	ProductionRef = grammar.ProductionRef
	Literal       = grammar.Literal
	Regex         = grammar.Regex
)

// NewGrammar returns an empty, case-sensitive grammar ready to accept
// token and production patterns.
func NewGrammar() *Grammar { return grammar.New() }

// Prepare runs LL(k) look-ahead preparation on g and freezes it on
// success (spec §4.6). opts.K and opts.Ceiling default to
// lookahead.DefaultK / lookahead.DefaultCeiling when zero.
func Prepare(g *Grammar, opts PrepareOptions) error {
	return lookahead.Prepare(g, opts)
}

// NewBuildAnalyzer returns the default BUILD-strategy analyzer.
func NewBuildAnalyzer() Analyzer { return analyzer.NewBuildAnalyzer() }

// NewParser builds a Parser over a prepared grammar, an analyzer (nil for
// the default BUILD analyzer), and an initial input source.
func NewParser(g *Grammar, an Analyzer, src io.Reader) (*Parser, error) {
	return parser.New(g, an, src)
}

// Parse is a one-shot convenience wrapping NewParser+Parse for callers
// that don't need to reuse a parser across multiple inputs.
func Parse(g *Grammar, an Analyzer, src io.Reader) (*Node, error) {
	p, err := NewParser(g, an, src)
	if err != nil {
		return nil, err
	}
	return p.Parse()
}
