package sema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/ident"
	"tern/internal/source"
	"tern/internal/symbols"
	"tern/internal/types"
	"tern/internal/unitfile"
)

func TestDeclareProblems(t *testing.T) {
	cases := []struct {
		name string
		defs string
		want []diag.Code
	}{
		{
			name: "duplicate value",
			defs: `
      - clause: [x]
        body: 1
      - clause: [y]
        body: 2
      - clause: [x]
        body: 3
`,
			want: []diag.Code{diag.SemaDuplicateSymbol},
		},
		{
			name: "operator redeclared",
			defs: `
      - operator: "+"
        fixity: left infix
        precedence: 6
      - operator: "+"
        fixity: right infix
        precedence: 6
`,
			want: []diag.Code{diag.SemaOperatorRedeclared},
		},
		{
			name: "precedence out of range",
			defs: `
      - operator: "<>"
        fixity: prefix
        precedence: 25
`,
			want: []diag.Code{diag.SemaInvalidPrecedence},
		},
		{
			name: "signature without value",
			defs: `
      - signature: lonely
        type: Int
`,
			want: []diag.Code{diag.SemaSignatureWithoutValue},
		},
		{
			name: "unknown type in signature",
			defs: `
      - signature: v
        type: Widget
      - clause: [v]
        body: 1
`,
			want: []diag.Code{diag.SemaUnresolvedType},
		},
		{
			name: "constraint on unused variable",
			defs: `
      - class: Show
        param: a
        members:
          - name: show
            type: a -> Int
      - signature: v
        type: Show b => Int
      - clause: [v]
        body: 1
`,
			want: []diag.Code{diag.SemaAmbiguousTypeVariable},
		},
		{
			name: "instance problems",
			defs: `
      - data: Unit
        constructors: [Unit]
      - class: Show
        param: a
        members:
          - name: show
            type: a -> Int
          - name: size
            type: a -> Int
      - instance: Show
        head: Unit
        members:
          - clause: [show, _]
            body: 1
          - clause: [colour, _]
            body: 2
      - instance: Unit
        head: Int
`,
			want: []diag.Code{diag.SemaUnknownInstanceMember, diag.SemaMissingInstanceMember, diag.SemaNotAClass},
		},
		{
			name: "duplicate instance",
			defs: `
      - class: Show
        param: a
        members:
          - name: show
            type: a -> Int
      - instance: Show
        head: Int
        members:
          - clause: [show, _]
            body: 1
      - instance: Show
        head: Int
        members:
          - clause: [show, _]
            body: 2
`,
			want: []diag.Code{diag.SemaDuplicateInstance},
		},
		{
			name: "undeclared infix name in head",
			defs: `
      - clause: [f, x, "+", y]
        body: x
`,
			want: []diag.Code{diag.SynNotAnOperator},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := analyze(t, "modules:\n  - module: M\n    definitions:"+tc.defs)
			require.Equal(t, tc.want, codes(g))
		})
	}
}

func TestDuplicateModule(t *testing.T) {
	g := analyze(t, `
modules:
  - module: M
  - module: M
`)
	require.Equal(t, []diag.Code{diag.ProjDuplicateModule}, codes(g))
	require.Equal(t, []string{"M"}, g.Modules)
}

func TestSelfImport(t *testing.T) {
	g := analyze(t, `
modules:
  - module: M
    imports: [M]
`)
	require.Equal(t, []diag.Code{diag.ProjSelfImport}, codes(g))
}

func TestDeclareGroupsAdjacentClauses(t *testing.T) {
	fs := source.NewFileSet()
	unit, err := unitfile.ReadBytes(fs, "t.yaml", []byte(`
modules:
  - module: M
    definitions:
      - clause: [len, 0]
        body: 0
      - clause: [len, n]
        body: 1
      - clause: [other]
        body: 2
`))
	require.NoError(t, err)
	g := Declare(context.Background(), unit, Options{})
	require.Empty(t, g.Diagnostics())

	v, ok := g.Value(ident.Qualified("M", "len"))
	require.True(t, ok)
	require.Len(t, v.Clauses, 2)
	require.Len(t, g.Values(), 2)
}

func TestAnalyzeUsesResolver(t *testing.T) {
	res := symbols.NewMapResolver()
	a := types.Variable{ID: 1}
	res.AddValue(symbols.Declaration{
		Symbol: ident.Qualified("Prelude", "negate"),
		Type:   types.Func(types.Int, types.Int),
	})
	res.AddValue(symbols.Declaration{
		Symbol: ident.Qualified("Prelude", "const"),
		Type:   types.Func(a, a, types.Variable{ID: 2}),
	})

	fs := source.NewFileSet()
	unit, err := unitfile.ReadBytes(fs, "t.yaml", []byte(`
modules:
  - module: Main
    definitions:
      - clause: [y]
        body: [negate, 3]
      - clause: [z]
        body: [const, 1, !str "ignored"]
`))
	require.NoError(t, err)
	out, err := Analyze(context.Background(), unit, Options{Resolver: res, Prelude: []string{"Prelude"}}, "")
	require.NoError(t, err)
	g := out.Final()
	require.Empty(t, g.Diagnostics())

	y, _ := g.Value(ident.Qualified("Main", "y"))
	require.True(t, types.Equal(types.Int, y.Type))
	z, _ := g.Value(ident.Qualified("Main", "z"))
	require.True(t, types.Equal(types.Int, z.Type))

	body := y.Clauses[0].Body.(*ast.Apply)
	require.Equal(t, ident.Qualified("Prelude", "negate"), body.Func.(*ast.Identifier).Symbol)
}
