// Package diag defines the diagnostic model shared by every analysis stage.
//
// Diagnostic is the central record: Severity, a numeric Code with a stable
// string form (SYNxxxx for operator shuffling, SEMxxxx for semantic analysis,
// IOxxxx/PRJxxxx for unit loading), a Message, the primary source.Span and
// optional Notes pointing at related spans.
//
// Stages never return user errors as Go errors. They emit through a Reporter,
// usually via ReportError(...).WithNote(...).Emit(), and the pipeline collects
// everything into a Bag. Rendering lives in internal/diagfmt.
package diag
