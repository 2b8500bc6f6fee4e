package diagfmt

import (
	"context"
	"strings"
	"testing"

	"tern/internal/sema"
	"tern/internal/source"
	"tern/internal/unitfile"
)

func TestDumpOrderedUnit(t *testing.T) {
	fs := source.NewFileSet()
	unit, err := unitfile.ReadBytes(fs, "dump.yaml", []byte(`
unit: dump
modules:
  - module: Main
    definitions:
      - data: Box
        params: [a]
        constructors: [Box a]
      - clause: [two]
        body: [id, 2]
      - clause: [id, x]
        body: x
`))
	if err != nil {
		t.Fatal(err)
	}
	res, err := sema.Analyze(context.Background(), unit, sema.Options{}, "")
	if err != nil {
		t.Fatal(err)
	}

	var b strings.Builder
	if err := Dump(&b, res.Final()); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	for _, want := range []string{
		"unit dump (after bind)",
		"└─ module Main",
		"data Main.Box a",
		"value Main.id : a -> a",
		"value Main.two : Builtin.Int",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump lacks %q:\n%s", want, out)
		}
	}
	// id is ordered before its user
	if strings.Index(out, "value Main.id") > strings.Index(out, "value Main.two") {
		t.Errorf("dependency order lost:\n%s", out)
	}
}
