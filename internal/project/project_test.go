package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tern/internal/ast"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	writeFile(t, path, "[unit]\nname = \"demo\"\n")

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Unit.Name != "demo" {
		t.Fatalf("name = %q", m.Unit.Name)
	}
	if m.Analysis.MaxDiagnostics != DefaultMaxDiagnostics || m.Analysis.Jobs != 0 {
		t.Fatalf("defaults not applied: %+v", m.Analysis)
	}
	if len(m.Unit.Sources) != 1 || m.Unit.Sources[0] != DefaultSource {
		t.Fatalf("sources = %v", m.Unit.Sources)
	}
	if m.OutputDir() != "" {
		t.Fatalf("output dir = %q", m.OutputDir())
	}
}

func TestLoadManifestFull(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	writeFile(t, path, `
[unit]
name = "demo"
sources = ["src/**/*.unit.yaml"]
[analysis]
prelude = ["Prelude"]
max_diagnostics = 0
jobs = 4
interfaces = ["iface"]
[output]
interfaces = "build/iface"
`)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Analysis.MaxDiagnostics != 0 || m.Analysis.Jobs != 4 {
		t.Fatalf("analysis = %+v", m.Analysis)
	}
	if got := m.InterfaceDirs(); len(got) != 1 || got[0] != filepath.Join(m.Dir, "iface") {
		t.Fatalf("interface dirs = %v", got)
	}
	if m.OutputDir() != filepath.Join(m.Dir, "build", "iface") {
		t.Fatalf("output dir = %q", m.OutputDir())
	}
}

func TestLoadManifestRejects(t *testing.T) {
	cases := map[string]string{
		"negative jobs":  "[analysis]\njobs = -1\n",
		"bad prelude":    "[analysis]\nprelude = [\"9lives\"]\n",
		"unknown key":    "[unit]\nname = \"x\"\nentry = \"main\"\n",
		"bad glob":       "[unit]\nsources = [\"src/[\"]\n",
		"empty sources":  "[unit]\nsources = []\n",
		"negative limit": "[analysis]\nmax_diagnostics = -5\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ManifestName)
			writeFile(t, path, content)
			_, err := LoadManifest(path)
			if !errors.Is(err, ErrInvalidManifest) {
				t.Fatalf("err = %v, want ErrInvalidManifest", err)
			}
		})
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "[unit]\nname = \"up\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	m, err := Discover(nested)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if dir, ok, err := FindProjectRoot(nested); err != nil || !ok || dir != root {
		t.Fatalf("FindProjectRoot = %q, %v, %v; want %q", dir, ok, err, root)
	}
	if m.Unit.Name != "up" {
		t.Fatalf("found %q", m.Unit.Name)
	}

	lone := t.TempDir()
	m, err = Discover(lone)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if m.Path != "" || m.Unit.Name != filepath.Base(lone) {
		t.Fatalf("default manifest = %+v", m)
	}
}

func TestSelectAndExpand(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"src/a.unit.yaml",
		"src/nested/b.unit.yaml",
		"src/notes.yaml",
		".cache/c.unit.yaml",
		"d.unit.yaml",
	} {
		writeFile(t, filepath.Join(root, filepath.FromSlash(rel)), "modules: []\n")
	}

	got, err := Select(root, []string{"src/**.unit.yaml"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	want := []string{
		filepath.Join(root, "src", "a.unit.yaml"),
		filepath.Join(root, "src", "nested", "b.unit.yaml"),
	}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Select = %v, want %v", got, want)
	}

	single := filepath.Join(root, "src", "notes.yaml")
	got, err = Expand([]string{single, root, single})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	// notes.yaml once, then the three unit documents outside hidden dirs
	if len(got) != 4 || got[0] != single {
		t.Fatalf("Expand = %v", got)
	}

	if _, err := Expand([]string{filepath.Join(root, "missing")}); err == nil {
		t.Fatalf("Expand accepted a missing path")
	}
}

func TestIsValidModuleName(t *testing.T) {
	for name, want := range map[string]bool{
		"Prelude":   true,
		"Data.List": true,
		"_x1":       true,
		"":          false,
		"Data..X":   false,
		"1st":       false,
		"a-b":       false,
	} {
		if got := IsValidModuleName(name); got != want {
			t.Fatalf("IsValidModuleName(%q) = %v", name, got)
		}
	}
}

func TestDescribeUnit(t *testing.T) {
	unit := &ast.Unit{Name: "u", Modules: []*ast.Module{
		{Name: "A", Imports: []ast.Import{{Module: "Prelude"}}},
		{Name: "B", Imports: []ast.Import{{Module: "A"}, {Module: "Prelude"}, {Module: "Lib"}}},
	}}
	meta := DescribeUnit(unit, "u.unit.yaml", []byte("x"))
	if !meta.Defines("A") || meta.Defines("Lib") {
		t.Fatalf("Defines broken")
	}
	ext := meta.ExternalImports()
	if len(ext) != 2 || ext[0].Module != "Prelude" || ext[1].Module != "Lib" {
		t.Fatalf("ExternalImports = %+v", ext)
	}
	if meta.ContentHash != HashContent([]byte("x")) || meta.ContentHash.IsZero() {
		t.Fatalf("content hash not set")
	}
	if Combine(meta.ContentHash) == Combine(meta.ContentHash, HashContent([]byte("y"))) {
		t.Fatalf("Combine ignores dependencies")
	}
}
