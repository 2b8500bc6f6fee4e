package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tern/internal/diag"
	"tern/internal/observ"
)

func TestReadUIMode(t *testing.T) {
	cases := []struct {
		input string
		want  uiMode
		fails bool
	}{
		{"", uiModeAuto, false},
		{"AUTO", uiModeAuto, false},
		{" on ", uiModeOn, false},
		{"off", uiModeOff, false},
		{"sometimes", "", true},
	}
	for _, tc := range cases {
		got, err := readUIMode(tc.input)
		if tc.fails {
			if err == nil {
				t.Fatalf("readUIMode(%q) accepted an invalid value", tc.input)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("readUIMode(%q) = %q, %v; want %q", tc.input, got, err, tc.want)
		}
	}
}

func TestRenderVersionJSON(t *testing.T) {
	var buf bytes.Buffer
	info := versionInfo{Version: "1.2.3", GitCommit: "abc123"}
	if err := renderVersionJSON(&buf, info, versionOptions{showHash: true, showDate: true}); err != nil {
		t.Fatal(err)
	}
	var got versionPayload
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Tool != "ternc" || got.Version != "1.2.3" || got.GitCommit != "abc123" {
		t.Fatalf("unexpected payload %+v", got)
	}
	// дата не записана при сборке
	if got.BuildDate != "unknown" || got.GitMessage != "" {
		t.Fatalf("unexpected optional fields %+v", got)
	}
}

func TestRenderVersionPretty(t *testing.T) {
	var buf bytes.Buffer
	if err := renderVersionPretty(&buf, versionInfo{Version: "0.1.0"}, versionOptions{showHash: true}); err != nil {
		t.Fatal(err)
	}
	want := "ternc 0.1.0\ncommit: unknown\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func writeUnit(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func runTernc(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCheckShortReportsErrors(t *testing.T) {
	path := writeUnit(t, "broken.unit.yaml", `unit: broken
modules:
  - module: Main
    definitions:
      - clause: [h]
        body: missing
`)
	out, _, err := runTernc(t, "check", "--format", "short", "--color", "off", path)
	if !errors.Is(err, errHasErrors) {
		t.Fatalf("expected errHasErrors, got %v", err)
	}
	if !strings.Contains(out, "error "+diag.SemaUnresolvedSymbol.ID()) {
		t.Fatalf("missing unresolved symbol in output:\n%s", out)
	}
}

func TestCheckCleanUnit(t *testing.T) {
	path := writeUnit(t, "clean.unit.yaml", `unit: clean
modules:
  - module: Main
    definitions:
      - clause: [id, x]
        body: x
`)
	out, _, err := runTernc(t, "check", "--format", "short", "--color", "off", path)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if out != "" {
		t.Fatalf("expected no diagnostics, got:\n%s", out)
	}
}

func TestPrintTimingsJSON(t *testing.T) {
	timer := observ.NewTimer()
	timer.Measure("analyze demo", func() string { return "defs=1" })

	var buf bytes.Buffer
	printTimings(&buf, timer, "json")
	var report observ.Report
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if len(report.Phases) != 1 || report.Phases[0].Name != "analyze demo" || report.Phases[0].Note != "defs=1" {
		t.Fatalf("unexpected report %+v", report)
	}

	buf.Reset()
	printTimings(&buf, nil, "pretty")
	if buf.Len() != 0 {
		t.Fatalf("nil timer printed %q", buf.String())
	}
}

func TestDumpPrintsTypedTree(t *testing.T) {
	path := writeUnit(t, "dump.unit.yaml", `unit: dump
modules:
  - module: Main
    definitions:
      - clause: [id, x]
        body: x
`)
	out, _, err := runTernc(t, "dump", "--color", "off", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"unit dump (after bind)", "module Main", "value Main.id : a -> a"} {
		if !strings.Contains(out, want) {
			t.Fatalf("dump lacks %q:\n%s", want, out)
		}
	}
}
