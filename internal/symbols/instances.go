package symbols

import (
	"fmt"
	"slices"

	"tern/internal/ident"
	"tern/internal/types"
)

// RegisterInstance records an instance in the module scope owning it.
func (t *Table) RegisterInstance(scope ScopeID, inst Instance) error {
	s := t.Scopes.MustGet(scope)
	if s.Kind != ScopeModule || s.Module != inst.Module {
		panic(fmt.Sprintf("symbols: instance %s %s registered outside module %s", inst.Class, inst.Head, inst.Module))
	}
	for _, existing := range s.Instances {
		if existing.Class == inst.Class && existing.Head == inst.Head {
			return fmt.Errorf("instance %s %s: %w", inst.Class, inst.Head, ErrAlreadyDefined)
		}
	}
	s.Instances = append(s.Instances, inst)
	return nil
}

// VisibleModules lists the modules whose instances are visible from scope:
// the module itself, its imports, then the prelude.
func (t *Table) VisibleModules(scope ScopeID) []string {
	mod := t.moduleScopeOf(scope)
	if mod == nil {
		return slices.Clone(t.prelude)
	}
	out := []string{mod.Module}
	for _, imp := range mod.Imports {
		if !slices.Contains(out, imp.Module) {
			out = append(out, imp.Module)
		}
	}
	for _, p := range t.prelude {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

// Instances lists the visible instances of class for head, one per defining
// module, ordered by module name.
func (t *Table) Instances(scope ScopeID, class, head ident.Symbol) []Instance {
	var out []Instance
	var external []Instance
	externalLoaded := false
	for _, module := range t.VisibleModules(scope) {
		if id, ok := t.modules[module]; ok {
			for _, inst := range t.Scopes.MustGet(id).Instances {
				if inst.Class == class && inst.Head == head {
					out = append(out, inst)
				}
			}
			continue
		}
		if !externalLoaded {
			external = t.Resolver.Instances(class, head)
			externalLoaded = true
		}
		for _, inst := range external {
			if inst.Module == module {
				out = append(out, inst)
			}
		}
	}
	slices.SortFunc(out, func(a, b Instance) int {
		switch {
		case a.Module < b.Module:
			return -1
		case a.Module > b.Module:
			return 1
		}
		return 0
	})
	return out
}

// Checker returns the instance oracle used by unification from scope.
func (t *Table) Checker(scope ScopeID) types.InstanceChecker {
	return scopeChecker{table: t, scope: scope}
}

type scopeChecker struct {
	table *Table
	scope ScopeID
}

func (c scopeChecker) HasInstance(class, head ident.Symbol) bool {
	return len(c.table.Instances(c.scope, class, head)) > 0
}

// Unify unifies expected with actual using the bindings of this table and the
// instances visible from scope.
func (t *Table) Unify(scope ScopeID, expected, actual types.Type) types.Result {
	u := types.Unifier{Subst: t.Subst, Gen: t.Gen, Instances: t.Checker(scope)}
	return u.Unify(expected, actual)
}

// Generate applies the current bindings to tpe.
func (t *Table) Generate(tpe types.Type) types.Type {
	return t.Subst.Generate(tpe)
}
