package grammar

import "fmt"

// PatternKind distinguishes a literal-string token pattern from a
// regular-expression one (spec §3, "Token pattern").
type PatternKind int

const (
	Literal PatternKind = iota
	Regex
)

func (k PatternKind) String() string {
	if k == Regex {
		return "regex"
	}
	return "literal"
}

// TokenPattern is a registered lexical pattern: a literal string or a
// regular expression, plus the ignore/error annotations spec §3 describes.
// A pattern cannot be both Ignore and Error.
type TokenPattern struct {
	ID   int
	Name string // canonicalized
	Kind PatternKind
	Text string // literal text, or regex source

	Ignore        bool
	IgnoreMessage string

	Error        bool
	ErrorMessage string
}

func (p *TokenPattern) validate() error {
	if p.Kind == Literal && len(p.Text) == 0 {
		return fmt.Errorf("literal token pattern %q has zero-length text", p.Name)
	}
	if p.Ignore && p.Error {
		return fmt.Errorf("token pattern %q cannot be both ignore and error", p.Name)
	}
	return nil
}

// ElementKind distinguishes whether an Element refers to a token pattern or
// a production pattern.
type ElementKind int

const (
	TokenRef ElementKind = iota
	ProductionRef
)

// Unbounded is the sentinel Max value meaning "no upper bound" (spec §3:
// "Maximum may be unbounded (encoded as −1 or equivalent)").
const Unbounded = -1

// Element is a single symbol reference within an Alternative: a token or
// production id, plus the min/max repetition count the EBNF quantifier
// attached to it (spec §3, "Element").
type Element struct {
	Kind ElementKind
	ID   int
	Min  int
	Max  int
}

func (e Element) validate() error {
	if e.Min < 0 {
		return fmt.Errorf("element has negative minimum count %d", e.Min)
	}
	if e.Max != Unbounded && e.Min > e.Max {
		return fmt.Errorf("element has minimum count %d greater than maximum %d", e.Min, e.Max)
	}
	switch {
	case e.Min == 1 && e.Max == 1:
	case e.Min == 0 && e.Max == 1:
	case e.Min == 0 && e.Max == Unbounded:
	case e.Min == 1 && e.Max == Unbounded:
	default:
		return fmt.Errorf("element has unsupported quantifier (%d,%d); valid combinations are (1,1), (0,1), (0,*), (1,*)", e.Min, e.Max)
	}
	return nil
}

// One is a mandatory, exactly-once element reference: EBNF bare symbol.
func One(kind ElementKind, id int) Element { return Element{Kind: kind, ID: id, Min: 1, Max: 1} }

// ZeroOrOne is an optional element reference: EBNF `[ ... ]` or `?`.
func ZeroOrOne(kind ElementKind, id int) Element {
	return Element{Kind: kind, ID: id, Min: 0, Max: 1}
}

// ZeroOrMore is a repeatable, possibly-absent element reference: EBNF
// `{ ... }` or `*`.
func ZeroOrMore(kind ElementKind, id int) Element {
	return Element{Kind: kind, ID: id, Min: 0, Max: Unbounded}
}

// OneOrMore is a repeatable, mandatory element reference: EBNF `+`.
func OneOrMore(kind ElementKind, id int) Element {
	return Element{Kind: kind, ID: id, Min: 1, Max: Unbounded}
}

// Alternative is an ordered, non-empty sequence of elements; one of the
// choices a ProductionPattern may expand to.
type Alternative struct {
	Elements []Element

	// Lookahead is the look-ahead set computed for this alternative during
	// preparation (spec §3, "a computed per-alternative look-ahead set
	// attached after preparation"). Each entry is a sequence of token ids of
	// length <= the grammar's k, joined into one string key by the
	// lookahead package. Empty (nil) until the grammar is prepared.
	Lookahead lookaheadSet
}

// lookaheadSet is kept as a named type (rather than importing
// internal/util directly here) purely so the grammar package does not
// need to depend on the lookahead package's key-encoding choices; the
// lookahead package populates it using util.StringSet under the hood.
type lookaheadSet = map[string]bool

func (a *Alternative) validate() error {
	if len(a.Elements) == 0 {
		return fmt.Errorf("alternative has no elements")
	}
	for i, e := range a.Elements {
		if err := e.validate(); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// ProductionPattern is a named nonterminal: an ordered, non-empty list of
// alternatives, plus the synthetic/default flags spec §3 describes.
type ProductionPattern struct {
	ID           int
	Name         string // canonicalized
	Alternatives []*Alternative

	// Synthetic is true when this production was generated from a
	// parenthesized/bracketed/braced sub-expression rather than written
	// directly by the grammar author.
	Synthetic bool

	// Default marks the production that should be treated as the implicit
	// start symbol when none is otherwise designated. Grammar.StartSymbol
	// ignores this in favor of "the first production" per spec §4.4, but it
	// is preserved for out-of-scope emitters/backends that may want it.
	Default bool
}

func (p *ProductionPattern) validate() error {
	if len(p.Alternatives) == 0 {
		return fmt.Errorf("production %q has no alternatives", p.Name)
	}
	for i, a := range p.Alternatives {
		if err := a.validate(); err != nil {
			return fmt.Errorf("production %q alternative %d: %w", p.Name, i, err)
		}
	}
	return nil
}
