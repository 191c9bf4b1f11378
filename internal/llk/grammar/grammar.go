// Package grammar implements the grammar data model of spec §3: token
// patterns, production patterns, their alternatives and elements, plus the
// structural validation of spec §4.4. It is grounded on the teacher's
// internal/ictiobus/grammar package (id/name lookup, Copy-by-value
// semantics, Equal-style comparisons) and internal/ictiobus/ictiobus.go's
// top-level factory-function style, adapted from the teacher's LR-item
// grammar representation to the arena-of-patterns-plus-elements shape
// spec §9 calls for ("arena + integer id... avoids cycles in the ownership
// graph entirely").
package grammar

import (
	"fmt"
	"sort"
	"strings"
)

// Reserved id ranges, per spec §3: "Pattern ids partitioned by convention
// into ranges: tokens start at 1001, productions at 2001, synthetic
// productions at 3001."
const (
	TokenIDStart      = 1001
	ProductionIDStart = 2001
	SyntheticIDStart  = 3001
)

// Grammar is the ordered collection of token and production patterns that
// together define a language, plus free-form header declarations (spec §3,
// "Grammar"). Patterns are constructed via the Add* methods until Freeze is
// called (by the lookahead package's Prepare step); after that the grammar
// is immutable.
type Grammar struct {
	Tokens      []*TokenPattern
	Productions []*ProductionPattern

	CaseSensitive   bool
	UnwrapSynthetic bool

	// PreparedK is the look-ahead depth the grammar was successfully
	// prepared at (set by lookahead.Prepare on success); zero until then.
	PreparedK int

	headers     *orderedHeaders
	nameToID    map[string]int // canonicalized name -> pattern id (global namespace)
	tokByID     map[int]*TokenPattern
	prodByID    map[int]*ProductionPattern
	nextTokenID int
	nextProdID  int
	nextSynID   int

	frozen bool
}

// New returns an empty, case-sensitive Grammar with synthetic-production
// unwrapping enabled, matching the SPEC_FULL.md default.
func New() *Grammar {
	return &Grammar{
		CaseSensitive:   true,
		UnwrapSynthetic: true,
		headers:         newOrderedHeaders(),
		nameToID:        map[string]int{},
		tokByID:         map[int]*TokenPattern{},
		prodByID:        map[int]*ProductionPattern{},
		nextTokenID:     TokenIDStart,
		nextProdID:      ProductionIDStart,
		nextSynID:       SyntheticIDStart,
	}
}

// Canonicalize upper-cases name and strips everything that is not a letter
// or digit, per spec §3: "names are globally unique under the
// canonicalization 'upper-case, strip non-alphanumerics'."
func Canonicalize(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return strings.ToUpper(sb.String())
}

func (g *Grammar) checkMutable() error {
	if g.frozen {
		return fmt.Errorf("grammar is frozen (already prepared); no further patterns may be added")
	}
	return nil
}

func (g *Grammar) checkNameAvailable(name string) error {
	canon := Canonicalize(name)
	if canon == "" {
		return fmt.Errorf("name %q canonicalizes to the empty string", name)
	}
	if _, taken := g.nameToID[canon]; taken {
		return fmt.Errorf("name %q collides with an existing pattern under canonicalization (%q)", name, canon)
	}
	return nil
}

// AddToken registers a new token pattern and returns it. name must not
// collide, under canonicalization, with any existing token or production
// name.
func (g *Grammar) AddToken(name string, kind PatternKind, text string, opts ...TokenOption) (*TokenPattern, error) {
	if err := g.checkMutable(); err != nil {
		return nil, err
	}
	canon := Canonicalize(name)
	if err := g.checkNameAvailable(name); err != nil {
		return nil, err
	}

	p := &TokenPattern{ID: g.nextTokenID, Name: canon, Kind: kind, Text: text}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	g.nextTokenID++
	g.nameToID[canon] = p.ID
	g.tokByID[p.ID] = p
	g.Tokens = append(g.Tokens, p)
	return p, nil
}

// TokenOption configures optional TokenPattern flags at construction time.
type TokenOption func(*TokenPattern)

// WithIgnore marks the pattern as discarded-after-match (spec: "ignore").
func WithIgnore(message string) TokenOption {
	return func(p *TokenPattern) {
		p.Ignore = true
		p.IgnoreMessage = message
	}
}

// WithError marks the pattern as raising a parse error when matched (spec:
// "error").
func WithError(message string) TokenOption {
	return func(p *TokenPattern) {
		p.Error = true
		p.ErrorMessage = message
	}
}

// AddProduction registers a new, as-yet-empty production pattern. Callers
// append alternatives with AddAlternative before the grammar is prepared.
func (g *Grammar) AddProduction(name string) (*ProductionPattern, error) {
	if err := g.checkMutable(); err != nil {
		return nil, err
	}
	canon := Canonicalize(name)
	if err := g.checkNameAvailable(name); err != nil {
		return nil, err
	}

	p := &ProductionPattern{ID: g.nextProdID, Name: canon}
	g.nextProdID++
	g.nameToID[canon] = p.ID
	g.prodByID[p.ID] = p
	g.Productions = append(g.Productions, p)
	return p, nil
}

// AddSyntheticProduction registers an anonymous production for a
// parenthesized, optional, or repeated sub-expression (spec: "Synthetic
// production"). Its name (SYNTH<id>) is auto-generated and guaranteed not to
// collide: ids whose name is already taken are skipped.
func (g *Grammar) AddSyntheticProduction() (*ProductionPattern, error) {
	if err := g.checkMutable(); err != nil {
		return nil, err
	}
	id := g.nextSynID
	name := fmt.Sprintf("SYNTH%d", id)
	for g.checkNameAvailable(name) != nil {
		id++
		name = fmt.Sprintf("SYNTH%d", id)
	}
	g.nextSynID = id + 1

	p := &ProductionPattern{ID: id, Name: name, Synthetic: true}
	g.nameToID[name] = id
	g.prodByID[id] = p
	g.Productions = append(g.Productions, p)
	return p, nil
}

// AddAlternative appends an alternative to a production already registered
// with this grammar.
func (g *Grammar) AddAlternative(prodID int, elements ...Element) error {
	if err := g.checkMutable(); err != nil {
		return err
	}
	p, ok := g.prodByID[prodID]
	if !ok {
		return fmt.Errorf("no production with id %d in this grammar", prodID)
	}
	alt := &Alternative{Elements: elements}
	if err := alt.validate(); err != nil {
		return err
	}
	p.Alternatives = append(p.Alternatives, alt)
	return nil
}

// TokenByID looks up a token pattern by id.
func (g *Grammar) TokenByID(id int) (*TokenPattern, bool) {
	p, ok := g.tokByID[id]
	return p, ok
}

// ProductionByID looks up a production pattern by id.
func (g *Grammar) ProductionByID(id int) (*ProductionPattern, bool) {
	p, ok := g.prodByID[id]
	return p, ok
}

// ByName resolves a (possibly non-canonical) name to its pattern id and
// whether that id belongs to a token (isToken) or production.
func (g *Grammar) ByName(name string) (id int, isToken bool, ok bool) {
	id, ok = g.nameToID[Canonicalize(name)]
	if !ok {
		return 0, false, false
	}
	_, isToken = g.tokByID[id]
	return id, isToken, true
}

// StartSymbol returns the first production added to the grammar, which
// spec §3 designates as the start symbol.
func (g *Grammar) StartSymbol() (*ProductionPattern, bool) {
	if len(g.Productions) == 0 {
		return nil, false
	}
	return g.Productions[0], true
}

// SetHeader sets a header declaration (spec §3: "a map of header
// declarations"). Recognized keys are preserved case-as-given; unknown keys
// are preserved too.
func (g *Grammar) SetHeader(key, value string) {
	g.headers.set(key, value)
}

// Header retrieves a header declaration by key (case-insensitive, matching
// the grammar file format's free-form `name = "value"` declarations).
func (g *Grammar) Header(key string) (string, bool) {
	return g.headers.get(key)
}

// HeaderKeys returns header keys in the order they were set, for stable
// redisplay by a debug dump.
func (g *Grammar) HeaderKeys() []string {
	return g.headers.keysInOrder()
}

// Frozen reports whether the grammar has completed preparation and may no
// longer accept new patterns.
func (g *Grammar) Frozen() bool {
	return g.frozen
}

// Freeze marks the grammar immutable. Called by lookahead.Prepare once
// look-ahead computation succeeds; idempotent.
func (g *Grammar) Freeze() {
	g.frozen = true
}

// AllPatternNames returns every token and production name, canonicalized,
// sorted, for deterministic inspection (tests use it to check uniqueness).
func (g *Grammar) AllPatternNames() []string {
	names := make([]string, 0, len(g.nameToID))
	for n := range g.nameToID {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// orderedHeaders is a tiny insertion-order-preserving string map, used
// because spec §6's debug dump of grammar headers must redisplay them in
// the order the grammar author wrote them, not map iteration order.
type orderedHeaders struct {
	keys   []string
	values map[string]string
	lookup map[string]string // lower(key) -> original key, for case-insensitive Header()
}

func newOrderedHeaders() *orderedHeaders {
	return &orderedHeaders{values: map[string]string{}, lookup: map[string]string{}}
}

func (h *orderedHeaders) set(key, value string) {
	lower := strings.ToLower(key)
	if orig, exists := h.lookup[lower]; exists {
		h.values[orig] = value
		return
	}
	h.lookup[lower] = key
	h.keys = append(h.keys, key)
	h.values[key] = value
}

func (h *orderedHeaders) get(key string) (string, bool) {
	orig, ok := h.lookup[strings.ToLower(key)]
	if !ok {
		return "", false
	}
	v, ok := h.values[orig]
	return v, ok
}

func (h *orderedHeaders) keysInOrder() []string {
	out := make([]string, len(h.keys))
	copy(out, h.keys)
	return out
}
