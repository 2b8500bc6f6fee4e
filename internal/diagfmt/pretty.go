package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"tern/internal/diag"
	"tern/internal/source"
)

type palette struct {
	err, warn, info, note, path, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue, color.Bold),
		path:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.path, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с аналогичным форматом.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		if err := prettyOne(w, &d, fs, opts, p); err != nil {
			return err
		}
	}
	if n := bag.Dropped(); n > 0 {
		if _, err := fmt.Fprintf(w, "... %d more diagnostics not shown\n", n); err != nil {
			return err
		}
	}
	return nil
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) error {
	sev := p.severity(d.Severity)
	head := fmt.Sprintf("%s: %s %s: %s\n",
		p.path.Sprint(location(d.Primary, fs, opts.PathMode, opts.BaseDir)),
		sev.Sprint(d.Severity.String()),
		sev.Sprint(d.Code.ID()),
		d.Message)
	if _, err := io.WriteString(w, head); err != nil {
		return err
	}
	if err := snippet(w, d.Primary, fs, opts.Context, p); err != nil {
		return err
	}
	if !opts.ShowNotes {
		return nil
	}
	for _, n := range d.Notes {
		line := fmt.Sprintf("  %s %s: %s\n", p.note.Sprint("note:"),
			location(n.Span, fs, opts.PathMode, opts.BaseDir), n.Msg)
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
		if err := snippet(w, n.Span, fs, 0, p); err != nil {
			return err
		}
	}
	return nil
}

// location renders "path:line:col"; spans of empty files keep the path only.
func location(span source.Span, fs *source.FileSet, mode PathMode, baseDir string) string {
	f := fs.Get(span.File)
	path := f.FormatPath(mode.String(), baseDir)
	if len(f.Content) == 0 {
		return path
	}
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", path, start.Line, start.Col)
}

// snippet prints the primary line with context and a caret underline below
// the span. Widths are measured in terminal cells.
func snippet(w io.Writer, span source.Span, fs *source.FileSet, context int8, p palette) error {
	f := fs.Get(span.File)
	if len(f.Content) == 0 {
		return nil
	}
	start, end := fs.Resolve(span)
	first := int64(start.Line) - int64(max(context, 0))
	if first < 1 {
		first = 1
	}
	last := int64(start.Line) + int64(max(context, 0))
	if total := int64(len(f.LineIdx)) + 1; last > total {
		last = total
	}
	gutter := len(strconv.FormatInt(last, 10))

	for n := first; n <= last; n++ {
		text := strings.TrimRight(f.GetLine(uint32(n)), "\r") //nolint:gosec // bounded by the line index
		num := fmt.Sprintf("%*d", gutter, n)
		if _, err := fmt.Fprintf(w, " %s %s %s\n", p.gutter.Sprint(num), p.gutter.Sprint("|"), text); err != nil {
			return err
		}
		if n != int64(start.Line) {
			continue
		}
		lead, width := caretGeometry(text, start, end)
		marks := "^" + strings.Repeat("~", max(width-1, 0))
		if _, err := fmt.Fprintf(w, " %s %s %s%s\n", strings.Repeat(" ", gutter), p.gutter.Sprint("|"),
			strings.Repeat(" ", lead), p.caret.Sprint(marks)); err != nil {
			return err
		}
	}
	return nil
}

// caretGeometry returns the cell offset and width of the underline for a
// span starting on line. Multi-line spans are underlined to the end of the
// first line.
func caretGeometry(line string, start, end source.LineCol) (lead, width int) {
	from := min(int(start.Col)-1, len(line))
	to := len(line)
	if end.Line == start.Line {
		to = min(int(end.Col)-1, len(line))
	}
	from = max(from, 0)
	to = max(to, from)
	lead = runewidth.StringWidth(line[:from])
	width = max(runewidth.StringWidth(line[from:to]), 1)
	return lead, width
}
