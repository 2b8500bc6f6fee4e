package diagfmt

import (
	"encoding/json"
	"io"

	"tern/internal/diag"
	"tern/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

// UnitInput is one analysed unit handed to RunJSON.
type UnitInput struct {
	Path     string
	Name     string
	UnitHash string
	Skipped  bool
	Bag      *diag.Bag
}

// UnitJSON is the JSON form of one unit's outcome.
type UnitJSON struct {
	Path     string `json:"path"`
	Name     string `json:"name,omitempty"`
	UnitHash string `json:"unit_hash,omitempty"`
	Skipped  bool   `json:"skipped,omitempty"`
	DiagnosticsOutput
}

// RunJSONOutput is the root of `ternc check --format json`.
type RunJSONOutput struct {
	RunID  string     `json:"run_id"`
	Units  []UnitJSON `json:"units"`
	Errors int        `json:"errors"`
}

// makeLocation создаёт LocationJSON из Span
func makeLocation(span source.Span, fs *source.FileSet, opts JSONOpts) LocationJSON {
	f := fs.Get(span.File)
	loc := LocationJSON{
		File:      f.FormatPath(opts.PathMode.String(), opts.BaseDir),
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if opts.IncludePositions && len(f.Content) > 0 {
		startPos, endPos := fs.Resolve(span)
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
	}
	return loc
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}

	diagnostics := make([]DiagnosticJSON, 0, maxItems)
	for i := range maxItems {
		d := items[i]
		out := DiagnosticJSON{
			Severity: diag.SeverityLabel(d.Severity),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: makeLocation(d.Primary, fs, opts),
		}
		if opts.IncludeNotes && len(d.Notes) > 0 {
			out.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				out.Notes[j] = NoteJSON{Message: note.Msg, Location: makeLocation(note.Span, fs, opts)}
			}
		}
		diagnostics = append(diagnostics, out)
	}
	return DiagnosticsOutput{Diagnostics: diagnostics, Count: len(diagnostics)}
}

// JSON форматирует диагностики одного Bag в JSON.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	return encode(w, BuildDiagnosticsOutput(bag, fs, opts))
}

// RunJSON writes the outcome of a whole run, unit by unit.
func RunJSON(w io.Writer, runID string, units []UnitInput, fs *source.FileSet, opts JSONOpts) error {
	out := RunJSONOutput{RunID: runID, Units: make([]UnitJSON, 0, len(units))}
	for _, u := range units {
		bag := u.Bag
		if bag == nil {
			bag = diag.NewBag(0)
		}
		out.Errors += bag.ErrorCount()
		out.Units = append(out.Units, UnitJSON{
			Path:              u.Path,
			Name:              u.Name,
			UnitHash:          u.UnitHash,
			Skipped:           u.Skipped,
			DiagnosticsOutput: BuildDiagnosticsOutput(bag, fs, opts),
		})
	}
	return encode(w, out)
}

func encode(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
