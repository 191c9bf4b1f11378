package lookahead

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrimount/llkgram/internal/llk/errs"
	"github.com/adrimount/llkgram/internal/llk/grammar"
)

// buildArithmeticGrammar constructs the spec §8 scenario-1 grammar:
//
//	Expr   = Term {PLUS Term};
//	Term   = Factor {TIMES Factor};
//	Factor = NUMBER | LP Expr RP;
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

	require.NoError(t, g.AddAlternative(expr.ID,
		grammar.One(grammar.ProductionRef, term.ID),
		grammar.ZeroOrMore(grammar.ProductionRef, mustSynthetic(t, g, plus.ID, term.ID, "PLUSTERM")),
	))
	require.NoError(t, g.AddAlternative(term.ID,
		grammar.One(grammar.ProductionRef, factor.ID),
		grammar.ZeroOrMore(grammar.ProductionRef, mustSynthetic(t, g, times.ID, factor.ID, "TIMESFACTOR")),
	))
	require.NoError(t, g.AddAlternative(factor.ID, grammar.One(grammar.TokenRef, number.ID)))
	require.NoError(t, g.AddAlternative(factor.ID,
		grammar.One(grammar.TokenRef, lp.ID),
		grammar.One(grammar.ProductionRef, expr.ID),
		grammar.One(grammar.TokenRef, rp.ID),
	))

	return g
}

// mustSynthetic registers a two-element synthetic production (used to
// stand in for the {PLUS Term}-style repeated group without this test
// needing the grammar-file parser's own group-flattening logic).
func mustSynthetic(t *testing.T, g *grammar.Grammar, firstTokenID, secondProdID int, _ string) int {
	t.Helper()
	syn, err := g.AddSyntheticProduction()
	require.NoError(t, err)
	require.NoError(t, g.AddAlternative(syn.ID, grammar.One(grammar.TokenRef, firstTokenID), grammar.One(grammar.ProductionRef, secondProdID)))
	return syn.ID
}

func Test_Prepare_arithmeticGrammarSucceeds(t *testing.T) {
	g := buildArithmeticGrammar(t)
	err := Prepare(g, Options{})
	require.NoError(t, err)
	assert.True(t, g.Frozen())
	assert.Equal(t, 1, g.PreparedK)
}

func Test_Prepare_ambiguityDetection(t *testing.T) {
	g := grammar.New()
	x, err := g.AddToken("X", grammar.Literal, "x")
	require.NoError(t, err)
	a, err := g.AddProduction("A")
	require.NoError(t, err)
	require.NoError(t, g.AddAlternative(a.ID, grammar.One(grammar.TokenRef, x.ID)))
	require.NoError(t, g.AddAlternative(a.ID, grammar.One(grammar.TokenRef, x.ID)))

	err = Prepare(g, Options{Ceiling: 2})
	require.Error(t, err)
	e, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.Prep, e.Kind)
	assert.Equal(t, "A", e.Pattern)
}

func Test_Prepare_leftRecursionDetection(t *testing.T) {
	g := grammar.New()
	a, err := g.AddToken("A", grammar.Literal, "a")
	require.NoError(t, err)
	l, err := g.AddProduction("L")
	require.NoError(t, err)
	require.NoError(t, g.AddAlternative(l.ID, grammar.One(grammar.ProductionRef, l.ID), grammar.One(grammar.TokenRef, a.ID)))
	require.NoError(t, g.AddAlternative(l.ID, grammar.One(grammar.TokenRef, a.ID)))

	err = Prepare(g, Options{})
	require.Error(t, err)
	e, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.Prep, e.Kind)
	assert.Equal(t, "L", e.Pattern)
	assert.False(t, g.Frozen())
}

// Test_Prepare_ll2Requirement builds a grammar where two alternatives of
// the same production share FIRST_1 but differ at the second token, per
// spec §8 scenario 6: must fail at k=1 and succeed at k=2.
func Test_Prepare_ll2Requirement(t *testing.T) {
	g := grammar.New()
	a, err := g.AddToken("A", grammar.Literal, "a")
	require.NoError(t, err)
	b, err := g.AddToken("B", grammar.Literal, "b")
	require.NoError(t, err)
	c, err := g.AddToken("C", grammar.Literal, "c")
	require.NoError(t, err)

	s, err := g.AddProduction("S")
	require.NoError(t, err)
	require.NoError(t, g.AddAlternative(s.ID, grammar.One(grammar.TokenRef, a.ID), grammar.One(grammar.TokenRef, b.ID)))
	require.NoError(t, g.AddAlternative(s.ID, grammar.One(grammar.TokenRef, a.ID), grammar.One(grammar.TokenRef, c.ID)))

	err = Prepare(g, Options{K: 1, Ceiling: 1})
	require.Error(t, err, "k=1 alone should be ambiguous (both alternatives start with A)")

	g2 := grammar.New()
	a2, _ := g2.AddToken("A", grammar.Literal, "a")
	b2, _ := g2.AddToken("B", grammar.Literal, "b")
	c2, _ := g2.AddToken("C", grammar.Literal, "c")
	s2, _ := g2.AddProduction("S")
	require.NoError(t, g2.AddAlternative(s2.ID, grammar.One(grammar.TokenRef, a2.ID), grammar.One(grammar.TokenRef, b2.ID)))
	require.NoError(t, g2.AddAlternative(s2.ID, grammar.One(grammar.TokenRef, a2.ID), grammar.One(grammar.TokenRef, c2.ID)))

	err = Prepare(g2, Options{K: 1, Ceiling: 2})
	require.NoError(t, err, "escalating to k=2 should resolve the conflict")
	assert.Equal(t, 2, g2.PreparedK)
}

func Test_Matches_prefixEitherDirection(t *testing.T) {
	set := LookaheadSet{Encode([]int{1, 2}): true}
	assert.True(t, Matches(set, []int{1, 2}))
	assert.True(t, Matches(set, []int{1}), "a shorter upcoming window that is a prefix of a set entry should match")
	assert.True(t, Matches(set, []int{1, 2, 3}), "a set entry that is a prefix of a longer upcoming window should match")
	assert.False(t, Matches(set, []int{9}))
}
