package util

import (
	"fmt"
	"sort"
	"strings"
)

// StringSet is a map[string]bool with set operations added. It backs
// lookahead sets (sequences of token ids joined into one key) and FIRST
// sets throughout the lookahead package.
type StringSet map[string]bool

// NewStringSet creates an empty StringSet.
func NewStringSet() StringSet {
	return StringSet{}
}

func (s StringSet) Add(value string) {
	s[value] = true
}

func (s StringSet) AddAll(o StringSet) {
	for k := range o {
		s.Add(k)
	}
}

func (s StringSet) Has(value string) bool {
	_, has := s[value]
	return has
}

func (s StringSet) Len() int {
	return len(s)
}

func (s StringSet) Empty() bool {
	return s.Len() == 0
}

func (s StringSet) Elements() []string {
	elems := make([]string, 0, len(s))
	for k := range s {
		elems = append(elems, k)
	}
	return elems
}

// Union returns a new StringSet that is the union of s and o.
func (s StringSet) Union(o StringSet) StringSet {
	newSet := NewStringSet()
	newSet.AddAll(s)
	newSet.AddAll(o)
	return newSet
}

// Intersection returns a new StringSet containing elements present in both
// s and o. Used to detect lookahead-set conflicts between alternatives.
func (s StringSet) Intersection(o StringSet) StringSet {
	newSet := NewStringSet()
	for k := range s {
		if o.Has(k) {
			newSet.Add(k)
		}
	}
	return newSet
}

// DisjointWith returns whether s shares no elements with o. Two
// alternatives' lookahead sets must be disjoint for a grammar to be LL(k).
func (s StringSet) DisjointWith(o StringSet) bool {
	for k := range s {
		if o.Has(k) {
			return false
		}
	}
	return true
}

// StringOrdered shows the contents of the set with items alphabetized, for
// deterministic error messages and test assertions.
func (s StringSet) StringOrdered() string {
	convs := make([]string, 0, len(s))
	for k := range s {
		convs = append(convs, k)
	}
	sort.Strings(convs)

	var sb strings.Builder
	sb.WriteRune('{')
	for i := range convs {
		sb.WriteString(convs[i])
		if i+1 < len(convs) {
			sb.WriteString(", ")
		}
	}
	sb.WriteRune('}')
	return sb.String()
}

func (s StringSet) String() string {
	return fmt.Sprintf("%v", s.StringOrdered())
}
