package sema

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/ident"
	"tern/internal/source"
	"tern/internal/types"
	"tern/internal/unitfile"
)

func analyze(t *testing.T, text string) *Graph {
	t.Helper()
	fs := source.NewFileSet()
	unit, err := unitfile.ReadBytes(fs, "test.yaml", []byte(text))
	require.NoError(t, err)
	res, err := Analyze(context.Background(), unit, Options{}, "")
	require.NoError(t, err)
	return res.Final()
}

func codes(g *Graph) []diag.Code {
	var out []diag.Code
	for _, d := range g.Diagnostics() {
		out = append(out, d.Code)
	}
	return out
}

func countCode(g *Graph, code diag.Code) int {
	n := 0
	for _, d := range g.Diagnostics() {
		if d.Code == code {
			n++
		}
	}
	return n
}

func valueOf(t *testing.T, g *Graph, module, member string) *ast.ValueDefinition {
	t.Helper()
	v, ok := g.Value(ident.Qualified(module, member))
	require.True(t, ok, "no value %s.%s", module, member)
	return v
}

const arithmetic = `
modules:
  - module: Main
    definitions:
      - operator: "+"
        fixity: left infix
        precedence: 7
      - foreign: "(+)"
        type: Int -> Int -> Int
      - clause: [four]
        body: [2, "+", 2]
`

func TestAnalyzeArithmetic(t *testing.T) {
	g := analyze(t, arithmetic)
	require.Empty(t, g.Diagnostics())
	require.Equal(t, "bind", g.Stage)

	four := valueOf(t, g, "Main", "four")
	require.True(t, types.Equal(types.Int, four.Type), "four : %s", types.Format(four.Type))

	outer, ok := four.Clauses[0].Body.(*ast.Apply)
	require.True(t, ok)
	inner, ok := outer.Func.(*ast.Apply)
	require.True(t, ok)
	plus, ok := inner.Func.(*ast.Identifier)
	require.True(t, ok)
	require.Equal(t, ident.Qualified("Main", "+"), plus.Symbol)
	require.Equal(t, "2", inner.Arg.(*ast.Literal).Text)
	require.Equal(t, "2", outer.Arg.(*ast.Literal).Text)
	require.True(t, types.Equal(types.Int, outer.Type))
}

func TestAnalyzeStopAfter(t *testing.T) {
	fs := source.NewFileSet()
	unit, err := unitfile.ReadBytes(fs, "test.yaml", []byte(arithmetic))
	require.NoError(t, err)

	res, err := Analyze(context.Background(), unit, Options{}, "shuffle")
	require.NoError(t, err)
	require.Len(t, res.Graphs, 2)
	require.Equal(t, "shuffle", res.Final().Stage)

	// declare leaves the body unshuffled, shuffle builds the tree
	declared, ok := res.Stage("declare")
	require.True(t, ok)
	v, _ := declared.Value(ident.Qualified("Main", "four"))
	require.IsType(t, &ast.Unshuffled{}, v.Clauses[0].Body)
	v, _ = res.Final().Value(ident.Qualified("Main", "four"))
	require.IsType(t, &ast.Apply{}, v.Clauses[0].Body)

	_, err = Analyze(context.Background(), unit, Options{}, "optimise")
	require.Error(t, err)
}

const classes = `
  - module: Classes
    definitions:
      - data: Bool
        constructors: [True, False]
      - operator: "=="
        fixity: left infix
        precedence: 4
      - class: Eq
        param: a
        members:
          - name: "=="
            type: a -> a -> Bool
`

func TestAnalyzeAmbiguousInstance(t *testing.T) {
	g := analyze(t, `
modules:`+classes+`
  - module: A
    imports: [Classes]
    definitions:
      - instance: Eq
        head: Int
        members:
          - clause: [_, "==", _]
            body: True
  - module: B
    imports: [Classes]
    definitions:
      - instance: Eq
        head: Int
        members:
          - clause: [_, "==", _]
            body: False
  - module: Main
    imports: [Classes, A, B]
    definitions:
      - clause: [test]
        body: [1, "==", 2]
`)
	require.Equal(t, []diag.Code{diag.SemaAmbiguousInstance}, codes(g))
	require.Contains(t, g.Diagnostics()[0].Message, "defined in A, B")
	require.Len(t, g.Diagnostics()[0].Notes, 2)
}

func TestAnalyzeBindsSingleInstance(t *testing.T) {
	g := analyze(t, `
modules:`+classes+`
  - module: Main
    imports: [Classes]
    definitions:
      - instance: Eq
        head: Int
        members:
          - clause: [_, "==", _]
            body: True
      - signature: same
        type: Eq a => a -> a -> Bool
      - clause: [same, x, y]
        body: [x, "==", y]
      - clause: [test]
        body: [same, 1, 2]
      - clause: [direct]
        body: [1, "==", 1]
`)
	require.Empty(t, g.Diagnostics())

	// same keeps its method unbound and takes a dictionary
	same := valueOf(t, g, "Main", "same")
	require.Len(t, same.Dictionaries, 1)
	require.Equal(t, ident.Qualified("Classes", "Eq"), same.Dictionaries[0].Class)
	body := same.Clauses[0].Body.(*ast.Apply).Func.(*ast.Apply).Func
	require.IsType(t, &ast.UnboundMethod{}, body)

	// test passes the Int instance to same
	test := valueOf(t, g, "Main", "test")
	ref := test.Clauses[0].Body.(*ast.Apply).Func.(*ast.Apply).Func.(*ast.Identifier)
	require.Len(t, ref.Dictionaries, 1)
	require.NotNil(t, ref.Dictionaries[0].Bound)
	require.Equal(t, "Main", ref.Dictionaries[0].Bound.Module)
	require.Equal(t, types.IntSymbol, ref.Dictionaries[0].Bound.Head)

	// direct binds the method itself
	direct := valueOf(t, g, "Main", "direct")
	bound, ok := direct.Clauses[0].Body.(*ast.Apply).Func.(*ast.Apply).Func.(*ast.BoundMethod)
	require.True(t, ok)
	require.Equal(t, "Main", bound.Instance.Module)
}

func TestAnalyzeMissingInstance(t *testing.T) {
	g := analyze(t, `
modules:`+classes+`
  - module: Main
    imports: [Classes]
    definitions:
      - clause: [test]
        body: [1, "==", 2]
`)
	// the class variable stays unbound after the failed unification; it
	// is not reported again as ambiguous
	require.Equal(t, []diag.Code{diag.SemaContextMismatch}, codes(g))
}

func TestAnalyzeMissingInstanceThroughReference(t *testing.T) {
	g := analyze(t, `
modules:`+classes+`
  - module: Main
    imports: [Classes]
    definitions:
      - clause: [eqf, x, y]
        body: [x, "==", y]
      - clause: [u]
        body: [eqf, 1, 2]
`)
	require.Equal(t, []diag.Code{diag.SemaContextMismatch}, codes(g))
	require.Contains(t, g.Diagnostics()[0].Message, "Classes.Eq")

	eqf := valueOf(t, g, "Main", "eqf")
	require.Len(t, eqf.Dictionaries, 1)
}

func TestAnalyzeInstanceHeadVariablesHaveNoContext(t *testing.T) {
	// instance heads carry no context of their own: comparing the wrapped
	// values needs Eq a, which the member signature does not promise
	g := analyze(t, `
modules:`+classes+`
  - module: Main
    imports: [Classes]
    definitions:
      - data: Maybe
        params: [a]
        constructors: [Nothing, Just a]
      - instance: Eq
        head: Maybe a
        members:
          - clause: [[Just, x], "==", [Just, y]]
            body: [x, "==", y]
`)
	require.Equal(t, []diag.Code{diag.SemaSignatureTooGeneral}, codes(g))
}

func TestAnalyzeCycleReportedOnce(t *testing.T) {
	g := analyze(t, `
modules:
  - module: M
    definitions:
      - clause: [f]
        body: g
      - clause: [g]
        body: h
      - clause: [h]
        body: f
      - clause: [loop, x]
        body: [loop, x]
`)
	require.Equal(t, []diag.Code{diag.SemaCyclicDependency}, codes(g))
	require.Len(t, g.Diagnostics()[0].Notes, 2)
}

func TestAnalyzeMismatchPerClause(t *testing.T) {
	g := analyze(t, `
modules:
  - module: M
    definitions:
      - data: Bool
        constructors: [True, False]
      - clause: [pick, 0]
        body: 1
      - clause: [pick, 1]
        body: True
      - clause: [pick, 2]
        body: !str "two"
      - clause: [pick, 3]
        body: 4
`)
	require.Equal(t, 2, countCode(g, diag.SemaTypeMismatch))
	require.Len(t, g.Diagnostics(), 2)

	pick := valueOf(t, g, "M", "pick")
	require.True(t, types.Equal(types.Func(types.Int, types.Int), pick.Type))
}

func TestAnalyzeSignatureTooGeneral(t *testing.T) {
	g := analyze(t, `
modules:
  - module: M
    definitions:
      - signature: ident
        type: a -> a
      - clause: [ident, x]
        body: 1
      - signature: fine
        type: a -> a
      - clause: [fine, x]
        body: x
`)
	require.Equal(t, []diag.Code{diag.SemaSignatureTooGeneral}, codes(g))
	require.True(t, strings.Contains(g.Diagnostics()[0].Message, "M.ident"))
}

func TestAnalyzeUnresolvedSymbol(t *testing.T) {
	g := analyze(t, `
modules:
  - module: M
    definitions:
      - clause: [h]
        body: missing
`)
	require.Equal(t, []diag.Code{diag.SemaUnresolvedSymbol}, codes(g))
}

func TestAnalyzeArityMismatch(t *testing.T) {
	g := analyze(t, `
modules:
  - module: M
    definitions:
      - clause: [k, x]
        body: x
      - clause: [k]
        body: 2
`)
	require.Equal(t, []diag.Code{diag.SemaArityMismatch}, codes(g))
}

func TestAnalyzeLetPolymorphism(t *testing.T) {
	g := analyze(t, `
modules:
  - module: M
    definitions:
      - clause: [useId]
        body:
          - let:
              - name: idf
                value:
                  - lambda:
                      - args: [x]
                        body: x
            in: [idf, idf, 1]
`)
	require.Empty(t, g.Diagnostics())
	v := valueOf(t, g, "M", "useId")
	require.True(t, types.Equal(types.Int, v.Type), "useId : %s", types.Format(v.Type))
}

func TestAnalyzeDataConstructors(t *testing.T) {
	g := analyze(t, `
modules:
  - module: M
    definitions:
      - data: Maybe
        params: [a]
        constructors: [Nothing, Just a]
      - clause: [fromMaybe, d, Nothing]
        body: d
      - clause: [fromMaybe, d, [Just, x]]
        body: x
      - clause: [three]
        body: [fromMaybe, 0, [Just, 3]]
      - clause: [bad, [Just, x, y]]
        body: x
`)
	require.Equal(t, []diag.Code{diag.SemaConstructorArity}, codes(g))
	three := valueOf(t, g, "M", "three")
	require.True(t, types.Equal(types.Int, three.Type))
}

func TestAnalyzeMissingImport(t *testing.T) {
	g := analyze(t, `
modules:
  - module: M
    imports: [Nowhere]
    definitions:
      - clause: [x]
        body: 1
`)
	require.Equal(t, []diag.Code{diag.ProjMissingModule}, codes(g))
}

func TestAnalyzeOperatorShadowedByLocal(t *testing.T) {
	g := analyze(t, arithmetic+`
      - clause: [apply, "(+)", x]
        body: [x, "+", x]
`)
	// the local (+) is not an operator, so the message is an error
	require.Contains(t, codes(g), diag.SynNotAnOperator)
}

func TestAnalyzeGoldenDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	unit, err := unitfile.ReadBytes(fs, "golden.yaml", []byte(`
modules:
  - module: M
    definitions:
      - clause: [h]
        body: missing
`))
	require.NoError(t, err)
	res, err := Analyze(context.Background(), unit, Options{}, "")
	require.NoError(t, err)

	got := diag.FormatGoldenDiagnostics(res.Final().Diagnostics(), fs, false)
	require.True(t, strings.HasPrefix(got, "error "+diag.SemaUnresolvedSymbol.ID()+" golden.yaml:"), got)
	require.NotContains(t, got, "\n")
}
