package ident

import (
	"slices"
	"strings"
)

// Set is an immutable sorted set of symbols. The zero value is the empty set.
// Type-class contexts are Sets of class symbols.
type Set struct {
	items []Symbol
}

func NewSet(symbols ...Symbol) Set {
	if len(symbols) == 0 {
		return Set{}
	}
	items := slices.Clone(symbols)
	slices.SortFunc(items, Compare)
	return Set{items: slices.Compact(items)}
}

func (s Set) Len() int {
	return len(s.items)
}

func (s Set) IsEmpty() bool {
	return len(s.items) == 0
}

// Items returns a copy of the members in sorted order.
func (s Set) Items() []Symbol {
	return slices.Clone(s.items)
}

func (s Set) Contains(sym Symbol) bool {
	_, found := slices.BinarySearchFunc(s.items, sym, Compare)
	return found
}

// Union returns s ∪ other.
func (s Set) Union(other Set) Set {
	if other.IsEmpty() {
		return s
	}
	if s.IsEmpty() {
		return other
	}
	merged := make([]Symbol, 0, len(s.items)+len(other.items))
	merged = append(merged, s.items...)
	merged = append(merged, other.items...)
	return NewSet(merged...)
}

// Difference returns the members of s missing from other.
func (s Set) Difference(other Set) Set {
	var out []Symbol
	for _, sym := range s.items {
		if !other.Contains(sym) {
			out = append(out, sym)
		}
	}
	return Set{items: out}
}

// SubsetOf reports whether every member of s is in other.
func (s Set) SubsetOf(other Set) bool {
	return s.Difference(other).IsEmpty()
}

func (s Set) Equal(other Set) bool {
	return slices.Equal(s.items, other.items)
}

func (s Set) String() string {
	parts := make([]string, len(s.items))
	for i, sym := range s.items {
		parts[i] = sym.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
