package types

import (
	"sync/atomic"

	"tern/internal/ident"
)

// VarGen hands out fresh type-variable ids. One generator is shared by every
// unit of a run, so it must stay safe for concurrent use.
type VarGen struct {
	last atomic.Uint32
}

func NewVarGen() *VarGen {
	return &VarGen{}
}

// Fresh returns a new variable carrying ctx.
func (g *VarGen) Fresh(ctx ident.Set) Variable {
	id := g.last.Add(1)
	if id == 0 {
		panic("types: type variable ids exhausted")
	}
	return Variable{ID: VarID(id), Context: ctx}
}

// Last returns the most recently issued id.
func (g *VarGen) Last() VarID {
	return VarID(g.last.Load())
}
