package types

import "fmt"

// Substitution is the binding table of type variables. It is a union-find
// forest: bindings only ever grow, and Target compresses the paths it walks.
type Substitution struct {
	bindings map[VarID]Type
}

func NewSubstitution() *Substitution {
	return &Substitution{bindings: make(map[VarID]Type)}
}

// Len reports how many variables are bound.
func (s *Substitution) Len() int {
	return len(s.bindings)
}

// IsBound reports whether id has a binding.
func (s *Substitution) IsBound(id VarID) bool {
	_, ok := s.bindings[id]
	return ok
}

// Bind records v := t. Binding an already bound variable is a bug in the
// caller and panics.
func (s *Substitution) Bind(v Variable, t Type) {
	if prev, ok := s.bindings[v.ID]; ok {
		panic(fmt.Sprintf("types: variable %d already bound to %s", v.ID, Format(prev)))
	}
	if other, ok := t.(Variable); ok && other.ID == v.ID {
		panic(fmt.Sprintf("types: variable %d bound to itself", v.ID))
	}
	s.bindings[v.ID] = t
}

// Target follows variable bindings until it reaches an unbound variable or a
// non-variable type. Every variable passed on the way is re-pointed directly
// at the result.
func (s *Substitution) Target(t Type) Type {
	v, ok := t.(Variable)
	if !ok {
		return t
	}
	next, bound := s.bindings[v.ID]
	if !bound {
		return v
	}
	root := s.Target(next)
	if !sameVariable(next, root) {
		s.bindings[v.ID] = root
	}
	return root
}

func sameVariable(a, b Type) bool {
	va, ok := a.(Variable)
	if !ok {
		return false
	}
	vb, ok := b.(Variable)
	return ok && va.ID == vb.ID
}

// Generate replaces every bound variable in t by its fully generated target.
// The result is a fixed point: Generate(Generate(t)) equals Generate(t).
func (s *Substitution) Generate(t Type) Type {
	switch x := s.Target(t).(type) {
	case Variable:
		return x
	case Function:
		return Function{Arg: s.Generate(x.Arg), Result: s.Generate(x.Result)}
	case Sum:
		if len(x.Params) == 0 {
			return x
		}
		params := make([]Type, len(x.Params))
		for i, p := range x.Params {
			params[i] = s.Generate(p)
		}
		return Sum{Symbol: x.Symbol, Params: params}
	case Instance:
		if target, ok := s.Target(x.Var).(Variable); ok {
			x.Var = target
		}
		return x
	default:
		return t
	}
}
