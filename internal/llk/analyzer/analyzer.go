// Package analyzer implements the visitor contract of spec §4.5: a
// user-supplied object invoked as the parser builds each production node,
// plus the utility accessors (child by position, child by id, typed value
// slot) that raise an internal error on contract violation. It is grounded
// on the teacher's internal/ictiobus/types/sdd.go attribute-grammar
// callbacks (hooks invoked per node during a syntax-directed walk) and
// ictiobus.go's habit of providing one obvious default implementation
// alongside the interface.
package analyzer

import (
	"github.com/adrimount/llkgram/internal/llk/errs"
	"github.com/adrimount/llkgram/internal/llk/tree"
)

// Strategy controls how an analyzer's Exit return value is used by the
// parser (spec §4.5).
type Strategy int

const (
	// Build attaches children as returned; Exit's replacement is expected
	// to be the node itself, unchanged.
	Build Strategy = iota
	// Transform allows Exit to return an arbitrary replacement node.
	Transform
	// Analyze discards the tree entirely; Exit's return value is ignored.
	Analyze
)

// Analyzer is the user-supplied visitor invoked during parse-tree
// construction (spec §4.5). Enter is called exactly once before any child
// is visited; Child once per child in left-to-right order (child may be
// nil when a child sub-analysis produced nothing); Exit exactly once after
// all children, returning the node that should replace the current one (or
// nil to drop it).
type Analyzer interface {
	Strategy() Strategy
	Enter(n *tree.Node) error
	Child(parent, child *tree.Node) error
	Exit(n *tree.Node) (*tree.Node, error)
}

// Default is the BUILD-strategy analyzer the parser uses when none is
// supplied: it leaves every node exactly as constructed.
type Default struct {
	strategy Strategy
}

// NewBuildAnalyzer returns the default BUILD-strategy analyzer.
func NewBuildAnalyzer() *Default { return &Default{strategy: Build} }

// NewAnalyzeAnalyzer returns an ANALYZE-strategy analyzer: the parser still
// runs to completion and Enter/Child still fire, but no tree is retained.
func NewAnalyzeAnalyzer() *Default { return &Default{strategy: Analyze} }

func (d *Default) Strategy() Strategy { return d.strategy }

func (d *Default) Enter(n *tree.Node) error { return nil }

func (d *Default) Child(parent, child *tree.Node) error { return nil }

func (d *Default) Exit(n *tree.Node) (*tree.Node, error) {
	if d.strategy == Analyze {
		return nil, nil
	}
	return n, nil
}

// ChildAt returns n's i-th child (0-based). n must be a production node
// with at least i+1 children; violating that raises an internal error
// (spec §4.5: "utility accessors... signal an internal-error parse
// exception when preconditions are not met").
func ChildAt(n *tree.Node, i int) (*tree.Node, error) {
	if n.IsToken() {
		return nil, errs.NewInternalError("ChildAt called on a token node %q", n.PatternName)
	}
	if i < 0 || i >= len(n.Children) {
		return nil, errs.NewInternalError("ChildAt(%d) out of range for %q with %d children", i, n.PatternName, len(n.Children))
	}
	return n.Children[i], nil
}

// ChildByPatternID returns the first child of n whose PatternID matches id.
func ChildByPatternID(n *tree.Node, id int) (*tree.Node, error) {
	if n.IsToken() {
		return nil, errs.NewInternalError("ChildByPatternID called on a token node %q", n.PatternName)
	}
	for _, c := range n.Children {
		if c.PatternID == id {
			return c, nil
		}
	}
	return nil, errs.NewInternalError("no child of %q has pattern id %d", n.PatternName, id)
}

// ValueAt returns n's i-th value slot, requiring it be of kind want.
func ValueAt(n *tree.Node, i int, want tree.ValueKind) (tree.Value, error) {
	if n.IsToken() {
		return tree.Value{}, errs.NewInternalError("ValueAt called on a token node %q", n.PatternName)
	}
	if i < 0 || i >= len(n.Values) {
		return tree.Value{}, errs.NewInternalError("ValueAt(%d) out of range for %q with %d values", i, n.PatternName, len(n.Values))
	}
	v := n.Values[i]
	if v.Kind != want {
		return tree.Value{}, errs.NewInternalError("ValueAt(%d) on %q has kind %d, wanted %d", i, n.PatternName, v.Kind, want)
	}
	return v, nil
}
