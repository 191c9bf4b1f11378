package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrimount/llkgram/internal/llk/grammar"
	"github.com/adrimount/llkgram/internal/llk/lookahead"
)

// buildArithmeticGrammar mirrors the lookahead package's test fixture: spec
// §8 scenario 1 (Expr = Term {PLUS Term}; Term = Factor {TIMES Factor};
// Factor = NUMBER | LP Expr RP), prepared and frozen.
func buildArithmeticGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	g := grammar.New()

	number, err := g.AddToken("NUMBER", grammar.Regex, `[0-9]+`)
	require.NoError(t, err)
	plus, err := g.AddToken("PLUS", grammar.Literal, "+")
	require.NoError(t, err)
	times, err := g.AddToken("TIMES", grammar.Literal, "*")
	require.NoError(t, err)
	lp, err := g.AddToken("LP", grammar.Literal, "(")
	require.NoError(t, err)
	rp, err := g.AddToken("RP", grammar.Literal, ")")
	require.NoError(t, err)
	_, err = g.AddToken("WS", grammar.Regex, `\s+`, grammar.WithIgnore(""))
	require.NoError(t, err)

	expr, err := g.AddProduction("EXPR")
	require.NoError(t, err)
	term, err := g.AddProduction("TERM")
	require.NoError(t, err)
	factor, err := g.AddProduction("FACTOR")
	require.NoError(t, err)

	plusTerm, err := g.AddSyntheticProduction()
	require.NoError(t, err)
	require.NoError(t, g.AddAlternative(plusTerm.ID, grammar.One(grammar.TokenRef, plus.ID), grammar.One(grammar.ProductionRef, term.ID)))
	timesFactor, err := g.AddSyntheticProduction()
	require.NoError(t, err)
	require.NoError(t, g.AddAlternative(timesFactor.ID, grammar.One(grammar.TokenRef, times.ID), grammar.One(grammar.ProductionRef, factor.ID)))

	require.NoError(t, g.AddAlternative(expr.ID,
		grammar.One(grammar.ProductionRef, term.ID),
		grammar.ZeroOrMore(grammar.ProductionRef, plusTerm.ID),
	))
	require.NoError(t, g.AddAlternative(term.ID,
		grammar.One(grammar.ProductionRef, factor.ID),
		grammar.ZeroOrMore(grammar.ProductionRef, timesFactor.ID),
	))
	require.NoError(t, g.AddAlternative(factor.ID, grammar.One(grammar.TokenRef, number.ID)))
	require.NoError(t, g.AddAlternative(factor.ID,
		grammar.One(grammar.TokenRef, lp.ID),
		grammar.One(grammar.ProductionRef, expr.ID),
		grammar.One(grammar.TokenRef, rp.ID),
	))

	require.NoError(t, lookahead.Prepare(g, lookahead.Options{}))
	return g
}

func Test_Parser_arithmeticExpression(t *testing.T) {
	g := buildArithmeticGrammar(t)
	p, err := New(g, nil, strings.NewReader("1 + 2 * 3"))
	require.NoError(t, err)

	node, err := p.Parse()
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, "EXPR", node.PatternName)

	dump := node.Dump()
	assert.Contains(t, dump, "NUMBER (1:1, \"1\")")
	assert.Contains(t, dump, "NUMBER (1:5, \"2\")")
	assert.Contains(t, dump, "NUMBER (1:9, \"3\")")
}

// Test_Parser_unwrapsSyntheticChildren pins spec §8 scenario 1's literal
// worked example: EXPR's alternative is [Term, ZeroOrMore(synthetic
// "+Term")], so with synthetic unwrapping enabled (the default) EXPR must
// end up with three direct children — Term("1"), Plus("+"), Term("2 * 3")
// — not a Term plus one opaque wrapper node for the repeated group. The
// middle Term ("2 * 3") is likewise flattened to three children of its own.
func Test_Parser_unwrapsSyntheticChildren(t *testing.T) {
	g := buildArithmeticGrammar(t)
	require.True(t, g.UnwrapSynthetic, "unwrapping should be the default")

	p, err := New(g, nil, strings.NewReader("1 + 2 * 3"))
	require.NoError(t, err)
	node, err := p.Parse()
	require.NoError(t, err)

	require.Len(t, node.Children, 3, "EXPR should have Term, PLUS, Term spliced in directly")
	assert.Equal(t, "TERM", node.Children[0].PatternName)
	assert.Equal(t, "PLUS", node.Children[1].PatternName)
	assert.Equal(t, "TERM", node.Children[2].PatternName)

	rightTerm := node.Children[2]
	require.Len(t, rightTerm.Children, 3, "TERM should have Factor, TIMES, Factor spliced in directly")
	assert.Equal(t, "FACTOR", rightTerm.Children[0].PatternName)
	assert.Equal(t, "TIMES", rightTerm.Children[1].PatternName)
	assert.Equal(t, "FACTOR", rightTerm.Children[2].PatternName)

	for _, c := range node.Children {
		assert.False(t, c.Synthetic, "no spliced-in child should itself be the synthetic wrapper node")
	}
}

func Test_Parser_parenthesizedExpression(t *testing.T) {
	g := buildArithmeticGrammar(t)
	p, err := New(g, nil, strings.NewReader("(1 + 2) * 3"))
	require.NoError(t, err)

	node, err := p.Parse()
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Contains(t, node.Dump(), "LP (1:1, \"(\")")
}

func Test_Parser_unexpectedTokenIsLoggedNotFatal(t *testing.T) {
	g := buildArithmeticGrammar(t)
	p, err := New(g, nil, strings.NewReader("1 + * 3"))
	require.NoError(t, err)

	_, err = p.Parse()
	require.Error(t, err, "a malformed input should surface a non-fatal logged parse error")
}

func Test_Parser_requiresFrozenGrammar(t *testing.T) {
	g := grammar.New()
	_, err := g.AddToken("A", grammar.Literal, "a")
	require.NoError(t, err)
	_, err = g.AddProduction("START")
	require.NoError(t, err)

	_, err = New(g, nil, strings.NewReader("a"))
	require.Error(t, err, "New must reject a grammar that was never prepared")
}

func Test_Parser_runIDChangesOnReset(t *testing.T) {
	g := buildArithmeticGrammar(t)
	p, err := New(g, nil, strings.NewReader("1"))
	require.NoError(t, err)

	first := p.RunID()
	assert.NotEqual(t, [16]byte{}, [16]byte(first), "a fresh parser should be assigned a non-zero run id")

	p.Reset(strings.NewReader("2"))
	assert.NotEqual(t, first, p.RunID(), "Reset should assign a new run id")
}

func Test_Parser_resetReusesPreparedGrammar(t *testing.T) {
	g := buildArithmeticGrammar(t)
	p, err := New(g, nil, strings.NewReader("1"))
	require.NoError(t, err)

	_, err = p.Parse()
	require.NoError(t, err)

	p.Reset(strings.NewReader("2"))
	node, err := p.Parse()
	require.NoError(t, err)
	assert.Contains(t, node.Dump(), "\"2\"")
}
