package iface

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"tern/internal/ast"
	"tern/internal/ident"
	"tern/internal/sema"
	"tern/internal/source"
	"tern/internal/symbols"
	"tern/internal/types"
	"tern/internal/unitfile"
)

const libUnit = `
unit: lib
modules:
  - module: Lib
    definitions:
      - data: Bool
        constructors: [True, False]
      - data: Maybe
        params: [a]
        constructors: [Nothing, Just a]
      - operator: "=="
        fixity: left infix
        precedence: 4
      - class: Eq
        param: a
        members:
          - name: "=="
            type: a -> a -> Bool
      - instance: Eq
        head: Int
        members:
          - clause: [_, "==", _]
            body: True
      - clause: [fromMaybe, d, Nothing]
        body: d
      - clause: [fromMaybe, d, [Just, x]]
        body: x
`

func check(t *testing.T, text string, opts sema.Options) *sema.Graph {
	t.Helper()
	fs := source.NewFileSet()
	unit, err := unitfile.ReadBytes(fs, "unit.yaml", []byte(text))
	require.NoError(t, err)
	res, err := sema.Analyze(context.Background(), unit, opts, "")
	require.NoError(t, err)
	return res.Final()
}

func exportLib(t *testing.T) *File {
	t.Helper()
	g := check(t, libUnit, sema.Options{})
	require.Empty(t, g.Diagnostics())
	files, err := Export(g)
	require.NoError(t, err)
	require.Len(t, files, 1)
	return files[0]
}

func TestExportDescribesModule(t *testing.T) {
	f := exportLib(t)
	require.Equal(t, "Lib", f.Module)
	require.Equal(t, "lib", f.Unit)
	require.Len(t, f.Instances, 1)

	r := symbols.NewMapResolver()
	require.NoError(t, Register(r, f))

	eq, ok := r.LookupValue(ident.Qualified("Lib", "=="))
	require.True(t, ok)
	require.NotNil(t, eq.Operator)
	require.Equal(t, ast.FixityLeftInfix, eq.Operator.Fixity)
	require.Equal(t, uint8(4), eq.Operator.Precedence)
	require.NotNil(t, eq.Class)
	require.Equal(t, ident.Qualified("Lib", "Eq"), eq.Class.Class)
	require.True(t, eq.Class.Param.Context.Contains(ident.Qualified("Lib", "Eq")))
	require.True(t, types.Occurs(eq.Class.Param.ID, eq.Type))

	just, ok := r.LookupValue(ident.Qualified("Lib", "Just"))
	require.True(t, ok)
	require.NotNil(t, just.Constructor)
	require.Equal(t, 1, just.Constructor.Arity)
	require.Equal(t, 1, types.Arity(just.Type))

	maybe, ok := r.LookupType(ident.Qualified("Lib", "Maybe"))
	require.True(t, ok)
	require.Equal(t, 1, maybe.Arity)
	require.Equal(t, []ident.Symbol{ident.Qualified("Lib", "Nothing"), ident.Qualified("Lib", "Just")}, maybe.Constructors)

	class, ok := r.LookupType(ident.Qualified("Lib", "Eq"))
	require.True(t, ok)
	require.NotNil(t, class.Class)
	require.Equal(t, []ident.Symbol{ident.Qualified("Lib", "==")}, class.Class.Members)

	insts := r.Instances(ident.Qualified("Lib", "Eq"), types.IntSymbol)
	require.Len(t, insts, 1)
	require.Equal(t, "Lib", insts[0].Module)

	// fromMaybe : a -> Maybe a -> a, variables renumbered from 1
	fm, ok := r.LookupValue(ident.Qualified("Lib", "fromMaybe"))
	require.True(t, ok)
	a := types.Variable{ID: 1}
	want := types.Func(a, a, types.Con(ident.Qualified("Lib", "Maybe"), a))
	require.True(t, types.Equal(want, fm.Type), "fromMaybe : %s", types.Format(fm.Type))
}

func TestEncodeDecode(t *testing.T) {
	f := exportLib(t)
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, f))

	back, err := Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, f, back)
}

func TestDecodeRejectsOtherSchema(t *testing.T) {
	f := exportLib(t)
	f.Schema = schemaVersion + 1
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, f))

	_, err := Decode(&buf)
	require.ErrorIs(t, err, ErrSchema)
}

func TestRegisterRejectsBrokenTables(t *testing.T) {
	f := exportLib(t)
	f.Values[0].Member = 9999
	require.Error(t, Register(symbols.NewMapResolver(), f))

	f = exportLib(t)
	f.Strings = f.Strings[1:]
	require.Error(t, Register(symbols.NewMapResolver(), f))
}

func TestLaterUnitSeesInterface(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteFile(dir, exportLib(t)))
	_, err := os.Stat(filepath.Join(dir, "Lib"+Ext))
	require.NoError(t, err)

	r := symbols.NewMapResolver()
	files, err := LoadDir(r, dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.True(t, r.HasModule("Lib"))

	g := check(t, `
modules:
  - module: Main
    imports: [Lib]
    definitions:
      - clause: [same]
        body: [1, "==", 2]
      - clause: [three]
        body: [fromMaybe, 0, [Just, 3]]
`, sema.Options{Resolver: r})
	require.Empty(t, g.Diagnostics())

	three, ok := g.Value(ident.Qualified("Main", "three"))
	require.True(t, ok)
	require.True(t, types.Equal(types.Int, three.Type))

	same, ok := g.Value(ident.Qualified("Main", "same"))
	require.True(t, ok)
	bound, ok := same.Clauses[0].Body.(*ast.Apply).Func.(*ast.Apply).Func.(*ast.BoundMethod)
	require.True(t, ok)
	require.Equal(t, "Lib", bound.Instance.Module)
}

func TestLoadDirEmpty(t *testing.T) {
	files, err := LoadDir(symbols.NewMapResolver(), t.TempDir())
	require.NoError(t, err)
	require.Empty(t, files)
}
