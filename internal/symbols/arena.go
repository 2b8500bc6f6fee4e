package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"tern/internal/ast"
	"tern/internal/ident"
	"tern/internal/source"
)

// Scopes stores all allocated scopes in a compact slice-based arena.
type Scopes struct {
	data []Scope
}

// NewScopes creates an arena with optional capacity hint.
func NewScopes(capacity uint32) *Scopes {
	if capacity == 0 {
		capacity = 32
	}
	return &Scopes{
		data: make([]Scope, 1, capacity+1), // index 0 reserved for NoScopeID
	}
}

// New allocates a new scope and returns its ID.
func (s *Scopes) New(kind ScopeKind, parent ScopeID, module string, imports []ast.Import, span source.Span) ScopeID {
	value, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("scopes arena overflow: %w", err))
	}
	s.data = append(s.data, Scope{
		Kind:    kind,
		Parent:  parent,
		Module:  module,
		Imports: imports,
		Span:    span,
		Values:  make(map[ident.Symbol]*Entry),
		Types:   make(map[ident.Symbol]*TypeEntry),
	})
	return ScopeID(value)
}

// Get returns the scope pointer or nil if ID is invalid.
func (s *Scopes) Get(id ScopeID) *Scope {
	if !id.IsValid() || int(id) >= len(s.data) {
		return nil
	}
	return &s.data[id]
}

// MustGet is Get for callers that hold an id they allocated themselves.
func (s *Scopes) MustGet(id ScopeID) *Scope {
	scope := s.Get(id)
	if scope == nil {
		panic(fmt.Sprintf("symbols: unknown scope %d", id))
	}
	return scope
}

// release drops id if it is the most recently allocated scope, so child
// scopes of a finished construct do not pile up in the arena.
func (s *Scopes) release(id ScopeID) {
	if int(id) == len(s.data)-1 && s.data[id].Kind == ScopeChild {
		s.data[id] = Scope{}
		s.data = s.data[:id]
	}
}

// Len reports total number of scopes excluding the sentinel.
func (s *Scopes) Len() int { return len(s.data) - 1 }
