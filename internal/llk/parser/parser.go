// Package parser implements the recursive-descent engine of spec §4.6: it
// holds a prepared grammar, a tokenizer instance, and an analyzer, and
// drives parsing via the precomputed look-ahead tables rather than a
// string-rewriting LL(1) table. It is grounded on the teacher's
// internal/ictiobus/parse/ll1.go (stack discipline, the shape of a
// syntax-error message) adapted to an element/quantifier-driven walk,
// since ll1.go's algorithm operates over bare grammar symbols with no
// notion of element repetition counts.
package parser

import (
	"io"

	"github.com/google/uuid"

	"github.com/adrimount/llkgram/internal/llk/analyzer"
	"github.com/adrimount/llkgram/internal/llk/errs"
	"github.com/adrimount/llkgram/internal/llk/grammar"
	"github.com/adrimount/llkgram/internal/llk/lookahead"
	"github.com/adrimount/llkgram/internal/llk/tokenizer"
	"github.com/adrimount/llkgram/internal/llk/tree"
)

// Parser drives a tokenizer via a prepared grammar's precomputed
// look-ahead, constructing a parse tree and delegating tree shaping to an
// analyzer (spec §4.6). A Parser is not safe for concurrent use by
// multiple goroutines, but many Parsers may share the same prepared
// Grammar concurrently (spec §5), since Grammar is read-only once frozen.
type Parser struct {
	g   *grammar.Grammar
	an  analyzer.Analyzer
	tok *tokenizer.Tokenizer
	log errs.Log

	// runID correlates one parse run's diagnostics (spec §5: many Parsers
	// may share one prepared Grammar concurrently; this id lets logs and
	// error reports from concurrent runs be told apart).
	runID uuid.UUID

	fatal error
}

// New builds a Parser over a prepared (frozen) grammar and an analyzer,
// with src as the initial input. Returns a *errs.Error of Kind Prep if g
// was never successfully prepared.
func New(g *grammar.Grammar, an analyzer.Analyzer, src io.Reader) (*Parser, error) {
	if !g.Frozen() {
		return nil, errs.NewPrepError("", "grammar has not been prepared; call lookahead.Prepare first")
	}
	if an == nil {
		an = analyzer.NewBuildAnalyzer()
	}
	t, err := tokenizer.FromGrammar(g, src)
	if err != nil {
		return nil, err
	}
	return &Parser{g: g, an: an, tok: t, runID: uuid.New()}, nil
}

// Reset rewinds the parser to a new input, retaining the prepared grammar
// and analyzer (spec §4.6: "Resetting... retains the prepared grammar"). A
// fresh run id is assigned so diagnostics from the new run aren't confused
// with the one being replaced.
func (p *Parser) Reset(src io.Reader) {
	p.tok.Reset(src)
	p.log = errs.Log{}
	p.fatal = nil
	p.runID = uuid.New()
}

// RunID returns the correlation id for the current parse run (spec §5):
// distinct Parsers, or the same Parser across successive Reset calls, each
// get their own id so logs from concurrent or sequential runs sharing one
// prepared Grammar can be told apart.
func (p *Parser) RunID() uuid.UUID {
	return p.runID
}

// Parse runs the parser from the grammar's start symbol to completion,
// returning the built tree and a log error summarizing every accumulated
// parse error (nil if none). A non-nil, non-log error indicates an
// internal error (a contract violation in an analyzer callback), which is
// always fatal (spec §7).
func (p *Parser) Parse() (*tree.Node, error) {
	start, ok := p.g.StartSymbol()
	if !ok {
		return nil, errs.NewPrepError("", "grammar has no productions")
	}
	node := p.parseProduction(start)
	if p.fatal != nil {
		return node, p.fatal
	}
	return node, p.log.Err()
}

// parseProduction implements the Start->SelectAlt->MatchElement->Done state
// machine of spec §4.6 for a single production invocation.
func (p *Parser) parseProduction(prod *grammar.ProductionPattern) *tree.Node {
	line, col := p.peekPos()
	node := tree.NewProduction(prod.ID, prod.Name, line, col, prod.Synthetic)
	if err := p.an.Enter(node); err != nil {
		p.handle(err)
		if p.fatal != nil {
			return node
		}
	}

	alt, _ := p.selectAlternative(prod)
	if alt == nil {
		expected := alternativeStarters(p.g, prod)
		tok, _ := p.tok.Peek(1)
		p.logParse(errs.NewUnexpectedTokenError(tok, describeToken(tok), expected))
		p.recover(expected)
	} else {
		for _, e := range alt.Elements {
			p.matchElement(node, e)
			if p.fatal != nil {
				return node
			}
		}
	}

	final, err := p.an.Exit(node)
	if err != nil {
		p.handle(err)
	}
	if p.an.Strategy() == analyzer.Analyze {
		// ANALYZE retains no tree: Exit's return value is ignored.
		return nil
	}
	return final
}

// matchElement implements the per-element quantifier loop of spec §4.6
// step 4: consume or recurse as many times as the quantifier allows, and
// stop as soon as the upcoming tokens no longer match the element's FIRST
// set (or the maximum count is reached).
func (p *Parser) matchElement(parent *tree.Node, e grammar.Element) {
	count := 0
	for e.Max == grammar.Unbounded || count < e.Max {
		upcoming := p.peekIDs(p.g.PreparedK)
		if !p.elementMatches(e, upcoming) {
			if count >= e.Min {
				return
			}
			tok, _ := p.tok.Peek(1)
			p.logParse(errs.NewUnexpectedTokenError(tok, describeToken(tok), elementStarters(p.g, e)))
			p.recover(elementStarters(p.g, e))
			return
		}

		if e.Kind == grammar.TokenRef {
			tok, err := p.tok.Next()
			if err != nil {
				p.logTokenizerErr(err)
			}
			child := tree.NewToken(tok.PatternID(), tok.PatternName(), tok.Image(), tok.Line(), tok.Col())
			if p.attachChild(parent, child); p.fatal != nil {
				return
			}
		} else {
			prod, _ := p.g.ProductionByID(e.ID)
			sub := p.parseProduction(prod)
			if p.fatal != nil {
				return
			}

			if prod.Synthetic && p.g.UnwrapSynthetic {
				// spec §4.6: "flatten the sub-children into the enclosing
				// node in left-to-right order instead of introducing an
				// extra tree level" — a synthetic production exists only
				// to give a repeated/optional group somewhere to parse
				// into, so its own node is discarded and its children are
				// spliced into parent directly.
				if sub != nil {
					for _, grandchild := range sub.Children {
						if p.attachChild(parent, grandchild); p.fatal != nil {
							return
						}
					}
				}
			} else if p.attachChild(parent, sub); p.fatal != nil {
				return
			}
		}
		count++
	}
}

// attachChild appends child to parent (unless nil) and runs the analyzer's
// Child callback, routing any resulting error through handle.
func (p *Parser) attachChild(parent, child *tree.Node) {
	if child != nil {
		parent.AddChild(child)
	}
	if err := p.an.Child(parent, child); err != nil {
		p.handle(err)
	}
}

// selectAlternative picks the alternative of prod whose look-ahead set is
// consistent with the upcoming tokens. Since preparation guarantees
// pairwise disjointness, at most one alternative can match.
func (p *Parser) selectAlternative(prod *grammar.ProductionPattern) (*grammar.Alternative, []int) {
	upcoming := p.peekIDs(p.g.PreparedK)
	for _, alt := range prod.Alternatives {
		if lookahead.Matches(alt.Lookahead, upcoming) {
			return alt, upcoming
		}
	}
	return nil, upcoming
}

// elementMatches reports whether the upcoming token-id window is
// consistent with element e starting now: for a token reference, an exact
// id match; for a production reference, membership in any of that
// production's alternatives' look-ahead sets.
func (p *Parser) elementMatches(e grammar.Element, upcoming []int) bool {
	switch e.Kind {
	case grammar.TokenRef:
		return len(upcoming) > 0 && upcoming[0] == e.ID
	case grammar.ProductionRef:
		prod, ok := p.g.ProductionByID(e.ID)
		if !ok {
			return false
		}
		for _, alt := range prod.Alternatives {
			if lookahead.Matches(alt.Lookahead, upcoming) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// recover implements spec §4.6's error-recovery policy: skip tokens until
// one whose pattern name is in expected is found, or end-of-stream.
func (p *Parser) recover(expected []string) {
	wanted := map[string]bool{}
	for _, e := range expected {
		wanted[e] = true
	}
	for {
		tok, err := p.tok.Peek(1)
		if err != nil {
			p.logTokenizerErr(err)
		}
		if tok.IsEndOfText() {
			return
		}
		if wanted[tok.PatternName()] {
			return
		}
		if _, err := p.tok.Next(); err != nil {
			p.logTokenizerErr(err)
		}
	}
}

// peekIDs returns the pattern ids of the next up-to-n non-ignored tokens,
// stopping early at end-of-text (whose EndOfText id is still included so
// callers can distinguish "ran out" from "didn't match").
func (p *Parser) peekIDs(n int) []int {
	if n <= 0 {
		n = 1
	}
	ids := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		tok, err := p.tok.Peek(i)
		if err != nil {
			p.logTokenizerErr(err)
		}
		ids = append(ids, tok.PatternID())
		if tok.IsEndOfText() {
			break
		}
	}
	return ids
}

func (p *Parser) peekPos() (line, col int) {
	tok, err := p.tok.Peek(1)
	if err != nil {
		p.logTokenizerErr(err)
	}
	return tok.Line(), tok.Col()
}

// handle routes an error surfaced from an analyzer callback: Internal
// errors are always fatal (spec §7) and abort the parse; Parse errors are
// logged and the parse continues.
func (p *Parser) handle(err error) {
	e, ok := err.(*errs.Error)
	if !ok {
		p.fatal = err
		return
	}
	if e.Kind == errs.Internal {
		p.fatal = e
		return
	}
	p.logParse(e)
}

func (p *Parser) logParse(e *errs.Error) {
	e.Kind = errs.Parse
	p.log.Add(e)
}

func (p *Parser) logTokenizerErr(err error) {
	if e, ok := err.(*errs.Error); ok {
		p.logParse(e)
	}
}

func describeToken(tok interface {
	PatternName() string
	Image() string
	IsEndOfText() bool
}) string {
	if tok.IsEndOfText() {
		return "end of input"
	}
	return tok.PatternName() + " " + quote(tok.Image())
}

func quote(s string) string {
	return "\"" + s + "\""
}

// alternativeStarters returns the human-readable pattern names that could
// legally begin prod, for an unexpected-token error's "expected" list.
func alternativeStarters(g *grammar.Grammar, prod *grammar.ProductionPattern) []string {
	seen := map[string]bool{}
	var names []string
	for _, alt := range prod.Alternatives {
		for key := range alt.Lookahead {
			ids := lookahead.Decode(key)
			if len(ids) == 0 {
				continue
			}
			if name := patternName(g, ids[0]); name != "" && !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// elementStarters returns the human-readable names that could legally
// begin element e.
func elementStarters(g *grammar.Grammar, e grammar.Element) []string {
	switch e.Kind {
	case grammar.TokenRef:
		if name := patternName(g, e.ID); name != "" {
			return []string{name}
		}
		return nil
	case grammar.ProductionRef:
		if prod, ok := g.ProductionByID(e.ID); ok {
			return alternativeStarters(g, prod)
		}
	}
	return nil
}

func patternName(g *grammar.Grammar, tokenID int) string {
	if t, ok := g.TokenByID(tokenID); ok {
		return t.Name
	}
	return ""
}
