package diag

import "strings"

// Severity orders diagnostics; only SevError fails a check.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityLabels = [...]string{SevInfo: "info", SevWarning: "warning", SevError: "error"}

// String is the upper-case form used in headers of the pretty output.
func (s Severity) String() string {
	if int(s) < len(severityLabels) {
		return strings.ToUpper(severityLabels[s])
	}
	return "UNKNOWN"
}

// SeverityLabel is the lower-case severity used by text renderers.
// Anything past SevError reads as info.
func SeverityLabel(sev Severity) string {
	if int(sev) < len(severityLabels) {
		return severityLabels[sev]
	}
	return severityLabels[SevInfo]
}
