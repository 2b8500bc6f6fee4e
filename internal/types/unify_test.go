package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tern/internal/ident"
)

var (
	eqClass   = ident.Qualified("Prelude", "Eq")
	ordClass  = ident.Qualified("Prelude", "Ord")
	showClass = ident.Qualified("Prelude", "Show")
	maybeSym  = ident.Qualified("Prelude", "Maybe")
	boolType  = Con(ident.Qualified("Prelude", "Bool"))
)

type instanceTable map[ident.Symbol][]ident.Symbol

func (t instanceTable) HasInstance(class, head ident.Symbol) bool {
	for _, h := range t[class] {
		if h == head {
			return true
		}
	}
	return false
}

func newUnifier(instances instanceTable) *Unifier {
	return &Unifier{Subst: NewSubstitution(), Gen: NewVarGen(), Instances: instances}
}

func TestUnifyIsSymmetric(t *testing.T) {
	instances := instanceTable{eqClass: {IntSymbol}}

	// each case builds its operands from a fresh generator so both directions
	// start from identical, unbound state
	cases := []struct {
		name  string
		build func(g *VarGen) (Type, Type)
	}{
		{"equal sums", func(*VarGen) (Type, Type) { return Int, Int }},
		{"different sums", func(*VarGen) (Type, Type) { return Int, String }},
		{"arity", func(g *VarGen) (Type, Type) { return Con(maybeSym, Int), Con(maybeSym) }},
		{"variable", func(g *VarGen) (Type, Type) { return g.Fresh(ident.Set{}), Func(Int, Int) }},
		{"circular", func(g *VarGen) (Type, Type) {
			v := g.Fresh(ident.Set{})
			return v, Func(Int, v)
		}},
		{"context ok", func(g *VarGen) (Type, Type) { return g.Fresh(ident.NewSet(eqClass)), Int }},
		{"context missing", func(g *VarGen) (Type, Type) { return g.Fresh(ident.NewSet(eqClass)), String }},
		{"function vs sum", func(*VarGen) (Type, Type) { return Func(Int, Int), Int }},
		{"shared variable", func(g *VarGen) (Type, Type) {
			v := g.Fresh(ident.Set{})
			return Func(v, v), Func(Int, String)
		}},
		{"nested", func(g *VarGen) (Type, Type) {
			v := g.Fresh(ident.Set{})
			return Con(maybeSym, Func(v, Int)), Con(maybeSym, Func(String, Int))
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			forward := newUnifier(instances)
			a, b := tc.build(forward.Gen)
			r1 := forward.Unify(a, b)

			backward := newUnifier(instances)
			a, b = tc.build(backward.Gen)
			r2 := backward.Unify(b, a)

			require.Equal(t, r1.OK(), r2.OK())
			require.Equal(t, r1.Outcome, r2.Outcome)
		})
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	u := newUnifier(nil)
	x := u.Gen.Fresh(ident.Set{})
	y := u.Gen.Fresh(ident.Set{})
	z := u.Gen.Fresh(ident.Set{})

	require.True(t, u.Unify(x, y).OK())
	require.True(t, u.Unify(y, Func(z, Int)).OK())
	require.True(t, u.Unify(z, Con(maybeSym, String)).OK())

	tpe := Func(x, Con(maybeSym, y))
	once := u.Subst.Generate(tpe)
	twice := u.Subst.Generate(once)
	require.True(t, Equal(once, twice), "%s != %s", once, twice)
	require.Empty(t, FreeVars(once))
	require.Equal(t,
		"Prelude.Maybe (Builtin.Int -> Prelude.Maybe Builtin.String) -> Builtin.Int -> Prelude.Maybe Builtin.String",
		Format(once))
}

func TestOccursCheck(t *testing.T) {
	u := newUnifier(nil)
	v := u.Gen.Fresh(ident.Set{})

	r := u.Unify(v, Con(maybeSym, v))
	require.Equal(t, CircularReference, r.Outcome)
	require.False(t, u.Subst.IsBound(v.ID))

	// indirect: v := w -> Int, then w := v
	w := u.Gen.Fresh(ident.Set{})
	require.True(t, u.Unify(v, Func(Int, w)).OK())
	r = u.Unify(w, v)
	require.Equal(t, CircularReference, r.Outcome)
}

func TestContextMismatchReportsEveryMissingClass(t *testing.T) {
	u := newUnifier(instanceTable{eqClass: {IntSymbol}, ordClass: {StringSymbol}})
	v := u.Gen.Fresh(ident.NewSet(eqClass, ordClass, showClass))

	r := u.Unify(v, Int)
	require.Equal(t, ContextMismatch, r.Outcome)
	require.True(t, r.Missing.Equal(ident.NewSet(ordClass, showClass)), "missing = %s", r.Missing)
	require.False(t, u.Subst.IsBound(v.ID))
}

func TestUnifyVariablesJoinsContexts(t *testing.T) {
	u := newUnifier(instanceTable{eqClass: {IntSymbol}})
	a := u.Gen.Fresh(ident.NewSet(eqClass))
	b := u.Gen.Fresh(ident.NewSet(ordClass))

	r := u.Unify(a, b)
	require.True(t, r.OK())
	joined, ok := r.Type.(Variable)
	require.True(t, ok)
	require.True(t, joined.Context.Equal(ident.NewSet(eqClass, ordClass)))
	require.NotEqual(t, a.ID, joined.ID)
	require.NotEqual(t, b.ID, joined.ID)

	// Int has Eq but not Ord
	r = u.Unify(a, Int)
	require.Equal(t, ContextMismatch, r.Outcome)
	require.True(t, r.Missing.Equal(ident.NewSet(ordClass)))

	// an unconstrained variable folds into the constrained one
	c := u.Gen.Fresh(ident.Set{})
	r = u.Unify(c, b)
	require.True(t, r.OK())
	require.Equal(t, joined.ID, u.Subst.Target(c).(Variable).ID)
}

func TestTargetCompressesPaths(t *testing.T) {
	s := NewSubstitution()
	g := NewVarGen()
	v1, v2, v3 := g.Fresh(ident.Set{}), g.Fresh(ident.Set{}), g.Fresh(ident.Set{})
	s.Bind(v1, v2)
	s.Bind(v2, v3)
	s.Bind(v3, Int)

	require.True(t, Equal(Int, s.Target(v1)))
	require.True(t, Equal(Int, s.bindings[v1.ID]))
	require.True(t, Equal(Int, s.bindings[v2.ID]))
}

func TestDoubleBindPanics(t *testing.T) {
	s := NewSubstitution()
	v := NewVarGen().Fresh(ident.Set{})
	s.Bind(v, Int)
	require.Panics(t, func() { s.Bind(v, String) })
}

func TestGenericCopy(t *testing.T) {
	s := NewSubstitution()
	g := NewVarGen()
	a := g.Fresh(ident.NewSet(eqClass))
	b := g.Fresh(ident.Set{})
	fixed := g.Fresh(ident.Set{})
	tpe := Func(fixed, a, a, b)

	c1 := GenericCopy(tpe, s, g, func(id VarID) bool { return id == fixed.ID })
	c2 := GenericCopy(tpe, s, g, func(id VarID) bool { return id == fixed.ID })

	v1 := FreeVars(c1)
	v2 := FreeVars(c2)
	require.Len(t, v1, 3)
	require.Equal(t, fixed.ID, v1[2].ID)
	require.NotEqual(t, a.ID, v1[0].ID)
	require.NotEqual(t, v1[0].ID, v2[0].ID)
	require.True(t, v1[0].Context.Equal(ident.NewSet(eqClass)))

	args := c1.(Function)
	require.Equal(t, args.Arg.(Variable).ID, args.Result.(Function).Arg.(Variable).ID)
}

func TestMatch(t *testing.T) {
	g := NewVarGen()
	p := g.Fresh(ident.NewSet(eqClass))
	pattern := Func(boolType, p, p)

	binding, ok := Match(pattern, Func(boolType, Int, Int))
	require.True(t, ok)
	require.True(t, Equal(Int, binding[p.ID]))

	_, ok = Match(pattern, Func(boolType, Int, String))
	require.False(t, ok)
}

func TestFormatSharesNames(t *testing.T) {
	g := NewVarGen()
	a := g.Fresh(ident.NewSet(eqClass))
	b := g.Fresh(ident.Set{})
	left, right := FormatPair(Func(a, a, b), Con(maybeSym, b))
	require.Equal(t, "Prelude.Eq a => a -> b -> a", left)
	require.Equal(t, "Prelude.Maybe b", right)
}
