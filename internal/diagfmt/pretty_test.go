package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"tern/internal/diag"
	"tern/internal/source"
)

func sampleBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	content := []byte("modules:\n  - module: Main\n    imports: [Lib]\n")
	fileID := fs.AddVirtual("/home/user/project/units/main.unit.yaml", content)

	bag := diag.NewBag(10)
	// "Lib" на третьей строке
	start := uint32(bytes.Index(content, []byte("Lib"))) //nolint:gosec // small test input
	d := diag.NewError(diag.ProjMissingModule, source.Span{File: fileID, Start: start, End: start + 3},
		`module "Main" imports missing module "Lib"`).
		WithNote(source.Span{File: fileID, Start: 21, End: 25}, "imported here")
	bag.Add(d)
	return bag, fs
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	bag, fs := sampleBag(t)

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{name: "Absolute path", mode: PathModeAbsolute, contains: "/home/user/project/units/main.unit.yaml:3:15"},
		{name: "Relative path", mode: PathModeRelative, contains: "units/main.unit.yaml:3:15"},
		{name: "Basename only", mode: PathModeBasename, contains: "main.unit.yaml:3:15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			opts := PrettyOpts{PathMode: tt.mode, BaseDir: "/home/user/project"}
			if err := Pretty(&buf, bag, fs, opts); err != nil {
				t.Fatal(err)
			}
			output := buf.String()

			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			if !strings.Contains(output, "ERROR PRJ5002") {
				t.Errorf("Expected severity and code in output, got:\n%s", output)
			}
		})
	}
}

// TestPrettyCaret проверяет подчёркивание под span
func TestPrettyCaret(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 3 {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
	if lines[1] != " 3 |     imports: [Lib]" {
		t.Errorf("source line = %q", lines[1])
	}
	if lines[2] != "   | "+strings.Repeat(" ", 14)+"^~~" {
		t.Errorf("caret line = %q", lines[2])
	}
	if strings.Contains(buf.String(), "note:") {
		t.Error("notes printed without ShowNotes")
	}
}

func TestPrettyWideRunes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("body: [日本, x]\n")
	fileID := fs.AddVirtual("wide.yaml", content)
	start := uint32(bytes.IndexByte(content, 'x')) //nolint:gosec // small test input

	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.SemaUnresolvedSymbol, source.Span{File: fileID, Start: start, End: start + 1}, "x not found"))

	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(buf.String(), "\n")
	// "body: [" = 7 ячеек, "日本" = 4, ", " = 2
	if want := "   | " + strings.Repeat(" ", 13) + "^"; lines[2] != want {
		t.Errorf("caret line = %q, want %q", lines[2], want)
	}
}

func TestPrettyNotesAndContext(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{ShowNotes: true, Context: 1, PathMode: PathModeBasename}); err != nil {
		t.Fatal(err)
	}
	output := buf.String()
	for _, want := range []string{" 2 |   - module: Main", " 4 | ", "note: main.unit.yaml:2:13: imported here"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, output)
		}
	}
}

func TestPrettyColor(t *testing.T) {
	bag, fs := sampleBag(t)
	var plain, colored bytes.Buffer
	if err := Pretty(&plain, bag, fs, PrettyOpts{}); err != nil {
		t.Fatal(err)
	}
	if err := Pretty(&colored, bag, fs, PrettyOpts{Color: true}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(plain.String(), "\x1b[") {
		t.Error("escape codes without Color")
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Error("no escape codes with Color")
	}
}

func TestPrettyEmptyFile(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("missing.unit.yaml", nil)
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{File: id}, "failed to load file"))

	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "missing.unit.yaml: ERROR IO4001: failed to load file\n" {
		t.Errorf("got %q", got)
	}
}

func TestShort(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := Short(&buf, bag, fs, PathModeBasename); err != nil {
		t.Fatal(err)
	}
	want := "main.unit.yaml:3:15: error PRJ5002: module \"Main\" imports missing module \"Lib\"\n"
	if buf.String() != want {
		t.Errorf("got %q", buf.String())
	}
}
