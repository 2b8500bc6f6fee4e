package types

// FreeVars lists the distinct variables of t in first-occurrence order.
// Bindings are not consulted; call Generate first when they matter.
func FreeVars(t Type) []Variable {
	var out []Variable
	seen := make(map[VarID]bool)
	var walk func(Type)
	walk = func(t Type) {
		switch x := t.(type) {
		case Variable:
			if !seen[x.ID] {
				seen[x.ID] = true
				out = append(out, x)
			}
		case Function:
			walk(x.Arg)
			walk(x.Result)
		case Sum:
			for _, p := range x.Params {
				walk(p)
			}
		case Instance:
			walk(x.Var)
		}
	}
	walk(t)
	return out
}

// Occurs reports whether variable id appears in t.
func Occurs(id VarID, t Type) bool {
	switch x := t.(type) {
	case Variable:
		return x.ID == id
	case Function:
		return Occurs(id, x.Arg) || Occurs(id, x.Result)
	case Sum:
		for _, p := range x.Params {
			if Occurs(id, p) {
				return true
			}
		}
	case Instance:
		return x.Var.ID == id
	}
	return false
}

// Map rebuilds t bottom-up, replacing each variable with fn(variable).
func Map(t Type, fn func(Variable) Type) Type {
	switch x := t.(type) {
	case Variable:
		return fn(x)
	case Function:
		return Function{Arg: Map(x.Arg, fn), Result: Map(x.Result, fn)}
	case Sum:
		if len(x.Params) == 0 {
			return x
		}
		params := make([]Type, len(x.Params))
		for i, p := range x.Params {
			params[i] = Map(p, fn)
		}
		return Sum{Symbol: x.Symbol, Params: params}
	default:
		return t
	}
}

// GenericCopy generates t and replaces every unbound variable that is not
// fixed with a fresh one. Variables shared inside t stay shared in the copy;
// two copies never share variables.
func GenericCopy(t Type, subst *Substitution, gen *VarGen, fixed func(VarID) bool) Type {
	renamed := make(map[VarID]Variable)
	return Map(subst.Generate(t), func(v Variable) Type {
		if fixed != nil && fixed(v.ID) {
			return v
		}
		if nv, ok := renamed[v.ID]; ok {
			return nv
		}
		nv := gen.Fresh(v.Context)
		renamed[v.ID] = nv
		return nv
	})
}

// Instantiate renames every variable of t without consulting any bindings.
// It is used for types that come from outside the unit, whose variable ids
// belong to another run.
func Instantiate(t Type, gen *VarGen) Type {
	return GenericCopy(t, NewSubstitution(), gen, nil)
}

// Match matches pattern against actual one-sidedly: variables of pattern may
// stand for any subterm of actual, consistently. Contexts are not checked.
func Match(pattern, actual Type) (map[VarID]Type, bool) {
	out := make(map[VarID]Type)
	if !match(pattern, actual, out) {
		return nil, false
	}
	return out, true
}

func match(pattern, actual Type, out map[VarID]Type) bool {
	switch p := pattern.(type) {
	case Variable:
		if prev, ok := out[p.ID]; ok {
			return Equal(prev, actual)
		}
		out[p.ID] = actual
		return true
	case Function:
		a, ok := actual.(Function)
		return ok && match(p.Arg, a.Arg, out) && match(p.Result, a.Result, out)
	case Sum:
		a, ok := actual.(Sum)
		if !ok || a.Symbol != p.Symbol || len(a.Params) != len(p.Params) {
			return false
		}
		for i := range p.Params {
			if !match(p.Params[i], a.Params[i], out) {
				return false
			}
		}
		return true
	}
	return false
}
