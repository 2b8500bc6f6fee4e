package diag

import "tern/internal/source"

// Reporter receives diagnostics from the stages. Stages never hold a Bag
// directly, so deduplication and limits can be layered in between.
type Reporter interface {
	Report(code Code, sev Severity, primary source.Span, msg string, notes []Note)
}

// ReportBuilder collects notes for one diagnostic; nothing reaches the
// Reporter until Emit.
//
//	diag.ReportError(r, diag.SemaCyclicDependency, span, msg).
//		WithNote(other, "M.f is part of the cycle").
//		Emit()
type ReportBuilder struct {
	to   Reporter
	d    Diagnostic
	done bool
}

func NewReportBuilder(r Reporter, sev Severity, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{to: r, d: New(sev, code, primary, msg)}
}

func ReportError(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, primary, msg)
}

func ReportWarning(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, primary, msg)
}

func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	if b != nil {
		b.d = b.d.WithNote(sp, msg)
	}
	return b
}

// Emit hands the diagnostic over; later calls are no-ops.
func (b *ReportBuilder) Emit() {
	if b == nil || b.done {
		return
	}
	b.done = true
	if b.to != nil {
		b.to.Report(b.d.Code, b.d.Severity, b.d.Primary, b.d.Message, b.d.Notes)
	}
}

// Diagnostic returns what Emit would send.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.d
}

// BagReporter пишет диагностики в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r.Bag != nil {
		r.Bag.Add(Diagnostic{Severity: sev, Code: code, Message: msg, Primary: primary, Notes: notes})
	}
}
