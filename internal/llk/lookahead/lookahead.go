// Package lookahead implements spec §4.6's preparation step: computing, for
// every alternative of every production, the set of token-id sequences of
// length <= k that the alternative can begin with (FIRST_k), detecting
// left recursion, and rejecting the grammar if any two alternatives of the
// same production have overlapping look-ahead. This is the analytically
// hard 25%-of-core component spec.md §2 calls out; it has no direct
// counterpart in the teacher's retrieval-pack files (internal/ictiobus's
// FIRST/FOLLOW machinery lived in grammar.go, which was filtered out of the
// pack for size — see TEACHER.txt/DESIGN.md), so this package follows the
// standard compiler-construction FIRST_k/left-recursion algorithms in the
// teacher's general idiom: plain exported functions operating on
// *grammar.Grammar, util.StringSet for set operations, errors built via
// internal/llk/errs exactly as parse/ll1.go builds icterrors values.
package lookahead

import (
	"sort"
	"strconv"
	"strings"

	"github.com/adrimount/llkgram/internal/llk/errs"
	"github.com/adrimount/llkgram/internal/llk/grammar"
	"github.com/adrimount/llkgram/internal/util"
)

// DefaultK is the look-ahead depth Prepare starts at when the caller does
// not request a specific one (spec §4.6: "k ... defaulting to 1").
const DefaultK = 1

// DefaultCeiling is the highest k Prepare will escalate to before giving up
// on a genuinely ambiguous grammar (spec §4.6: "increased on demand up to
// an implementation-chosen ceiling").
const DefaultCeiling = 4

// Options configures a Prepare call.
type Options struct {
	// K is the starting look-ahead depth. Zero means DefaultK.
	K int
	// Ceiling is the highest k to try before failing. Zero means
	// DefaultCeiling.
	Ceiling int
}

// Prepare computes look-ahead sets for every alternative of every
// production in g, escalating k from opts.K up to opts.Ceiling if
// necessary, and freezes g on success. It is the entry point a grammar's
// author calls once all patterns have been added.
//
// Returns a *errs.Error of Kind Prep on left recursion or an LL(k) conflict
// that persists through the ceiling, and of Kind Grammar for a structural
// problem caught by grammar.Validate.
func Prepare(g *grammar.Grammar, opts Options) error {
	if _, err := g.Validate(); err != nil {
		return errs.NewGrammarError("%s", err.Error())
	}

	k := opts.K
	if k <= 0 {
		k = DefaultK
	}
	ceiling := opts.Ceiling
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	if ceiling < k {
		ceiling = k
	}

	nullable := computeNullable(g)
	if cycle, found := detectLeftRecursion(g, nullable); found {
		return errs.NewPrepError(cycle, "left recursion detected")
	}

	var lastConflict error
	for ; k <= ceiling; k++ {
		sets, conflict := computeAlternativeSets(g, k)
		if conflict == nil {
			attach(g, sets)
			g.PreparedK = k
			g.Freeze()
			return nil
		}
		lastConflict = conflict
	}
	return lastConflict
}

// computeNullable returns the set of production ids that can derive the
// empty token sequence, via fixed-point iteration over the grammar's
// productions.
func computeNullable(g *grammar.Grammar) map[int]bool {
	nullable := map[int]bool{}
	changed := true
	for changed {
		changed = false
		for _, p := range g.Productions {
			if nullable[p.ID] {
				continue
			}
			for _, alt := range p.Alternatives {
				if altIsNullable(alt, nullable) {
					nullable[p.ID] = true
					changed = true
					break
				}
			}
		}
	}
	return nullable
}

func altIsNullable(alt *grammar.Alternative, nullable map[int]bool) bool {
	for _, e := range alt.Elements {
		if !elementIsNullable(e, nullable) {
			return false
		}
	}
	return true
}

// elementIsNullable reports whether a single element can contribute zero
// tokens to the derivation: either its quantifier allows zero occurrences,
// or it's mandatory but the production it refers to can itself derive
// nothing.
func elementIsNullable(e grammar.Element, nullable map[int]bool) bool {
	if e.Min == 0 {
		return true
	}
	return e.Kind == grammar.ProductionRef && nullable[e.ID]
}

// detectLeftRecursion builds the "leftmost reachability" graph (an edge P
// -> Q exists when some alternative of P can reach Q as its first
// token-consuming symbol without any other symbol in between having
// contributed a token) and looks for a cycle in it, which is exactly
// direct or indirect left recursion.
func detectLeftRecursion(g *grammar.Grammar, nullable map[int]bool) (string, bool) {
	graph := map[int][]int{}
	for _, p := range g.Productions {
		for _, alt := range p.Alternatives {
			for _, e := range alt.Elements {
				if e.Kind == grammar.ProductionRef {
					graph[p.ID] = append(graph[p.ID], e.ID)
				}
				if !elementIsNullable(e, nullable) {
					break
				}
			}
		}
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[int]int{}
	var cycleName string

	var visit func(id int) bool
	visit = func(id int) bool {
		color[id] = gray
		for _, next := range graph[id] {
			switch color[next] {
			case gray:
				if p, ok := g.ProductionByID(next); ok {
					cycleName = p.Name
				}
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for _, p := range g.Productions {
		if color[p.ID] == white {
			if visit(p.ID) {
				return cycleName, true
			}
		}
	}
	return "", false
}

// LookaheadSet is a set of encoded token-id sequences, each of length <= k.
// It is assignment-compatible with grammar.Alternative.Lookahead.
type LookaheadSet = map[string]bool

// Encode joins a sequence of token ids into the string key used throughout
// LookaheadSet and grammar.Alternative.Lookahead.
func Encode(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// Decode splits an encoded sequence key back into token ids. Returns nil
// for the empty-sequence key.
func Decode(key string) []int {
	if key == "" {
		return nil
	}
	parts := strings.Split(key, ",")
	ids := make([]int, len(parts))
	for i, p := range parts {
		n, _ := strconv.Atoi(p)
		ids[i] = n
	}
	return ids
}

// Matches reports whether the upcoming token-id window (as many as were
// available to peek, possibly fewer than k at end of input) is consistent
// with at least one sequence in set: either the window is a prefix of a
// sequence in the set, or a sequence in the set is a prefix of the window
// (covers alternatives whose derivation is shorter than the full window).
func Matches(set LookaheadSet, upcoming []int) bool {
	for key := range set {
		seq := Decode(key)
		if isPrefix(seq, upcoming) || isPrefix(upcoming, seq) {
			return true
		}
	}
	return false
}

func isPrefix(prefix, of []int) bool {
	if len(prefix) > len(of) {
		return false
	}
	for i := range prefix {
		if prefix[i] != of[i] {
			return false
		}
	}
	return true
}

// computeAlternativeSets computes, for the given k, every alternative's
// look-ahead set keyed by (productionID, alternativeIndex), and checks
// pairwise disjointness within each production. If a conflict is found it
// is returned as the second value (formatted per spec §4.6: "naming the
// production and the offending overlap") and sets is nil.
func computeAlternativeSets(g *grammar.Grammar, k int) (map[altKey]util.StringSet, error) {
	memo := map[memoKey]util.StringSet{}
	inProgress := map[memoKey]bool{}

	sets := map[altKey]util.StringSet{}
	for _, p := range g.Productions {
		for i, alt := range p.Alternatives {
			sets[altKey{p.ID, i}] = firstKOfElements(g, alt.Elements, k, memo, inProgress)
		}
	}

	for _, p := range g.Productions {
		for i := 0; i < len(p.Alternatives); i++ {
			for j := i + 1; j < len(p.Alternatives); j++ {
				si := sets[altKey{p.ID, i}]
				sj := sets[altKey{p.ID, j}]
				if overlap := conflictingPairs(si, sj); len(overlap) > 0 {
					return nil, errs.NewPrepError(p.Name, "alternatives %d and %d are ambiguous at k=%d (overlap: %s)",
						i, j, k, util.MakeTextList(overlap))
				}
			}
		}
	}
	return sets, nil
}

type altKey struct {
	prodID int
	altIdx int
}

type memoKey struct {
	kind grammar.ElementKind
	id   int
	k    int
}

// conflictingPairs returns human-readable descriptions of every pair of
// sequences (one from each set) that conflict under the prefix rule
// Matches uses, sorted for deterministic error messages.
func conflictingPairs(a, b util.StringSet) []string {
	if a.Empty() || b.Empty() {
		return nil
	}

	var out []string
	if !a.DisjointWith(b) {
		// Every exact-key match is an equal-length sequence and trivially a
		// prefix of itself; Intersection picks those out in one pass instead
		// of the O(n*m) scan below having to rediscover them.
		for _, key := range a.Intersection(b).Elements() {
			out = append(out, describeSeq(Decode(key)))
		}
	}

	// Sequences of differing length can still conflict under the prefix
	// rule Matches uses, which Intersection's exact-key matching can't
	// catch, so the cross scan still has to run for those.
	for ka := range a {
		for kb := range b {
			if ka == kb {
				continue
			}
			sa, sb := Decode(ka), Decode(kb)
			if isPrefix(sa, sb) || isPrefix(sb, sa) {
				out = append(out, describeSeq(sa))
			}
		}
	}
	sort.Strings(out)
	return dedupe(out)
}

func dedupe(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func describeSeq(ids []int) string {
	if len(ids) == 0 {
		return "ε"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// firstKOfElements computes FIRST_k of an element sequence: the set of
// token-id sequences (length <= k) that the sequence can begin with,
// expanding quantifiers per spec §4.6 ("for optional or repeatable
// elements, sequences from elements to the right of the first optional are
// unioned in").
func firstKOfElements(g *grammar.Grammar, elems []grammar.Element, k int, memo map[memoKey]util.StringSet, inProgress map[memoKey]bool) util.StringSet {
	if k <= 0 || len(elems) == 0 {
		return util.StringSet{"": true}
	}

	e := elems[0]
	rest := elems[1:]
	result := util.NewStringSet()

	if e.Min == 0 {
		result.AddAll(firstKOfElements(g, rest, k, memo, inProgress))
	}

	symSet := firstKOfSymbol(g, e.Kind, e.ID, k, memo, inProgress)

	var nextElems []grammar.Element
	if e.Max == grammar.Unbounded {
		nextElems = append([]grammar.Element{grammar.ZeroOrMore(e.Kind, e.ID)}, rest...)
	} else {
		nextElems = rest
	}

	for key := range symSet {
		seq := Decode(key)
		if len(seq) >= k {
			result.Add(key)
			continue
		}
		cont := nextElems
		if len(seq) == 0 {
			// An empty repetition adds nothing; continuing with the repeated
			// element again would recurse without consuming any budget.
			cont = rest
		}
		contSet := firstKOfElements(g, cont, k-len(seq), memo, inProgress)
		for contKey := range contSet {
			combined := append(append([]int{}, seq...), Decode(contKey)...)
			result.Add(Encode(combined))
		}
	}

	return result
}

// firstKOfSymbol computes FIRST_k of a single token or production
// reference, memoized per (kind, id, remaining k) so a production visited
// more than once at the same remaining budget is computed only once.
func firstKOfSymbol(g *grammar.Grammar, kind grammar.ElementKind, id int, k int, memo map[memoKey]util.StringSet, inProgress map[memoKey]bool) util.StringSet {
	if kind == grammar.TokenRef {
		return util.StringSet{Encode([]int{id}): true}
	}

	key := memoKey{kind, id, k}
	if cached, ok := memo[key]; ok {
		return cached
	}
	if inProgress[key] {
		// Defensive only: detectLeftRecursion should have already rejected
		// any grammar that could reach this. Break the cycle rather than
		// loop forever.
		return util.NewStringSet()
	}
	inProgress[key] = true

	p, ok := g.ProductionByID(id)
	result := util.NewStringSet()
	if ok {
		for _, alt := range p.Alternatives {
			result = result.Union(firstKOfElements(g, alt.Elements, k, memo, inProgress))
		}
	}

	inProgress[key] = false
	memo[key] = result
	return result
}

// attach copies the computed per-alternative look-ahead sets onto the
// grammar's own Alternative values.
func attach(g *grammar.Grammar, sets map[altKey]util.StringSet) {
	for _, p := range g.Productions {
		for i, alt := range p.Alternatives {
			set := sets[altKey{p.ID, i}]
			encoded := make(map[string]bool, len(set))
			for k := range set {
				encoded[k] = true
			}
			alt.Lookahead = encoded
		}
	}
}
