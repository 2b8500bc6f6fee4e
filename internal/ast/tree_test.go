package ast

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tern/internal/ident"
	"tern/internal/types"
)

func TestWriteTree(t *testing.T) {
	def := &ValueDefinition{
		Symbol: ident.Qualified("M", "inc"),
		Type:   types.Func(types.Int, types.Int),
		Clauses: []*Clause{{
			Patterns: []Pattern{&Capture{Symbol: ident.Unqualified("x"), Arg: "arg0", Type: types.Int}},
			Body: &Apply{
				Func: &Identifier{Symbol: ident.Qualified("M", "succ"), Type: types.Func(types.Int, types.Int)},
				Arg:  &Identifier{Symbol: ident.Unqualified("x"), Type: types.Int},
				Type: types.Int,
			},
		}},
	}
	var b strings.Builder
	require.NoError(t, WriteTree(&b, DefinitionTree(def)))
	want := `value M.inc : Builtin.Int -> Builtin.Int
└─ clause
   ├─ capture x as arg0 : Builtin.Int
   └─ body
      └─ apply : Builtin.Int
         ├─ M.succ : Builtin.Int -> Builtin.Int
         └─ x : Builtin.Int
`
	require.Equal(t, want, b.String())
}

func TestTreeOfUnshuffledClause(t *testing.T) {
	c := &Clause{
		Head: []PatternAtom{&PatName{Symbol: ident.Unqualified("f")}, &PatWildcard{}},
		Body: &Unshuffled{Atoms: []Value{&Literal{Kind: LitInt, Text: "1"}}},
	}
	n := ClauseTree(c)
	require.Equal(t, "clause", n.Label)
	require.Equal(t, "head f _", n.Children[0].Label)
	require.Equal(t, "unshuffled", n.Children[1].Children[0].Label)
}
