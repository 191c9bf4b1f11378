package grammar

import (
	"fmt"
	"strings"
)

// Validate runs the structural checks spec §4.4 requires before look-ahead
// preparation is attempted: the GRAMMARTYPE header (if present) must be
// "LL", the CASESENSITIVE header (if present) is applied to g.CaseSensitive,
// and every element must reference a pattern that exists in this grammar.
// Unreachable productions are returned as warnings, not failures, per spec:
// "unreachable productions are a soft warning, not a failure".
func (g *Grammar) Validate() (warnings []string, err error) {
	if gt, ok := g.Header("GRAMMARTYPE"); ok {
		if !strings.EqualFold(gt, "LL") {
			return nil, fmt.Errorf("unsupported GRAMMARTYPE %q: only \"LL\" is supported", gt)
		}
	}
	if cs, ok := g.Header("CASESENSITIVE"); ok {
		lower := strings.ToLower(strings.TrimSpace(cs))
		g.CaseSensitive = lower != "no" && lower != "false"
	}

	for _, p := range g.Productions {
		if err := p.validate(); err != nil {
			return nil, err
		}
		for i, alt := range p.Alternatives {
			for j, e := range alt.Elements {
				if err := g.checkElementResolves(e); err != nil {
					return nil, fmt.Errorf("production %q alternative %d element %d: %w", p.Name, i, j, err)
				}
			}
		}
	}
	for _, t := range g.Tokens {
		if err := t.validate(); err != nil {
			return nil, err
		}
	}

	warnings = g.unreachableProductions()
	return warnings, nil
}

func (g *Grammar) checkElementResolves(e Element) error {
	switch e.Kind {
	case TokenRef:
		if _, ok := g.tokByID[e.ID]; !ok {
			return fmt.Errorf("references nonexistent token id %d", e.ID)
		}
	case ProductionRef:
		if _, ok := g.prodByID[e.ID]; !ok {
			return fmt.Errorf("references nonexistent production id %d", e.ID)
		}
	default:
		return fmt.Errorf("unknown element kind %d", e.Kind)
	}
	return nil
}

// unreachableProductions returns the names of every production not
// reachable from the start symbol via production-to-production references,
// excluding the start symbol itself (spec §4.4: "every other production
// must be reachable from the first").
func (g *Grammar) unreachableProductions() []string {
	start, ok := g.StartSymbol()
	if !ok {
		return nil
	}

	reached := map[int]bool{start.ID: true}
	queue := []int{start.ID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		p, ok := g.prodByID[id]
		if !ok {
			continue
		}
		for _, alt := range p.Alternatives {
			for _, e := range alt.Elements {
				if e.Kind == ProductionRef && !reached[e.ID] {
					reached[e.ID] = true
					queue = append(queue, e.ID)
				}
			}
		}
	}

	var unreached []string
	for _, p := range g.Productions {
		if !reached[p.ID] {
			unreached = append(unreached, p.Name)
		}
	}
	return unreached
}
