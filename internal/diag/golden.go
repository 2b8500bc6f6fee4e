package diag

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"tern/internal/source"
)

// goldenLine is one rendered entry: a diagnostic or, with notes on, one of
// its notes under the pseudo severity "note".
type goldenLine struct {
	sev, code, path string
	line, col       uint32
	msg             string
}

func (g goldenLine) String() string {
	return fmt.Sprintf("%s %s %s:%d:%d %s", g.sev, g.code, g.path, g.line, g.col, g.msg)
}

func compareGolden(a, b goldenLine) int {
	return cmp.Or(
		cmp.Compare(a.path, b.path),
		cmp.Compare(a.line, b.line),
		cmp.Compare(a.col, b.col),
		cmp.Compare(a.sev, b.sev),
		cmp.Compare(a.code, b.code),
		cmp.Compare(a.msg, b.msg),
	)
}

// FormatGoldenDiagnostics renders diags one per line, ordered by position,
// for comparisons in tests. Entries pointing outside fs are skipped and
// line breaks inside messages are flattened.
func FormatGoldenDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil {
		return ""
	}
	var lines []goldenLine
	add := func(sev string, code Code, span source.Span, msg string) {
		if int(span.File) >= fs.Len() {
			return
		}
		start, _ := fs.Resolve(span)
		lines = append(lines, goldenLine{
			sev:  sev,
			code: code.ID(),
			path: strings.TrimPrefix(fs.Get(span.File).Path, "./"),
			line: start.Line,
			col:  start.Col,
			msg:  flattenMessage(msg),
		})
	}
	for _, d := range diags {
		add(SeverityLabel(d.Severity), d.Code, d.Primary, d.Message)
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			add("note", d.Code, n.Span, n.Msg)
		}
	}
	slices.SortStableFunc(lines, compareGolden)

	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return strings.Join(out, "\n")
}

func flattenMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", " ")
	return strings.TrimSpace(strings.ReplaceAll(msg, "\n", " "))
}
