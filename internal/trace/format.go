package trace

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// Format represents the output format for trace events.
type Format uint8

const (
	FormatAuto   Format = iota // pick by output file extension
	FormatText                 // human-readable text
	FormatNDJSON               // newline-delimited JSON
	FormatChrome               // chrome://tracing / Perfetto event array
)

const (
	chromeHeader = "{\"traceEvents\":[\n"
	chromeSep    = ",\n"
	chromeFooter = "\n]}\n"
)

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	case "chrome":
		return FormatChrome, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson|chrome)", s)
}

// FormatEvent renders ev. start is the time the output began; text and
// Chrome output show times relative to it.
func FormatEvent(ev *Event, format Format, start time.Time) []byte {
	switch format {
	case FormatNDJSON:
		return formatNDJSON(ev)
	case FormatChrome:
		return formatChrome(ev, start)
	default:
		return formatText(ev, start)
	}
}

type jsonEvent struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	RunID    string            `json:"run_id,omitempty"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span_id"`
	ParentID uint64            `json:"parent_id,omitempty"`
	Lane     uint64            `json:"lane,omitempty"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func formatNDJSON(ev *Event) []byte {
	data, err := json.Marshal(jsonEvent{
		Time:     ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:      ev.Seq,
		RunID:    ev.RunID,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		Lane:     ev.Lane,
		Name:     ev.Name,
		Detail:   ev.Detail,
		Extra:    ev.Extra,
	})
	if err != nil {
		return nil
	}
	return append(data, '\n')
}

type chromeEvent struct {
	Name  string            `json:"name"`
	Cat   string            `json:"cat"`
	Phase string            `json:"ph"`
	TS    int64             `json:"ts"`
	PID   int               `json:"pid"`
	TID   uint64            `json:"tid"`
	Args  map[string]string `json:"args,omitempty"`
}

func formatChrome(ev *Event, start time.Time) []byte {
	phase := "i"
	switch ev.Kind {
	case KindSpanBegin:
		phase = "B"
	case KindSpanEnd:
		phase = "E"
	}
	args := ev.Extra
	if ev.Detail != "" {
		args = maps.Clone(ev.Extra)
		if args == nil {
			args = make(map[string]string, 1)
		}
		args["detail"] = ev.Detail
	}
	data, err := json.Marshal(chromeEvent{
		Name:  ev.Name,
		Cat:   ev.Scope.String(),
		Phase: phase,
		TS:    ev.Time.Sub(start).Microseconds(),
		PID:   1,
		TID:   ev.Lane,
		Args:  args,
	})
	if err != nil {
		return nil
	}
	return data
}

// formatText: [elapsed] →/← name (detail) {k=v}
func formatText(ev *Event, start time.Time) []byte {
	var sb strings.Builder

	elapsed := float64(ev.Time.Sub(start).Microseconds()) / 1000
	fmt.Fprintf(&sb, "[%9.3fms] ", elapsed)
	sb.WriteString(strings.Repeat("  ", max(int(ev.Scope)-1, 0)))

	switch ev.Kind {
	case KindSpanBegin:
		sb.WriteString("→ ")
	case KindSpanEnd:
		sb.WriteString("← ")
	case KindPoint:
		sb.WriteString("• ")
	case KindHeartbeat:
		sb.WriteString("♡ ")
	}

	sb.WriteString(ev.Name)
	if ev.Detail != "" {
		sb.WriteString(" (")
		sb.WriteString(ev.Detail)
		sb.WriteString(")")
	}

	if len(ev.Extra) > 0 {
		sb.WriteString(" {")
		for i, k := range slices.Sorted(maps.Keys(ev.Extra)) {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k)
			sb.WriteString("=")
			sb.WriteString(ev.Extra[k])
		}
		sb.WriteString("}")
	}

	sb.WriteString("\n")
	return []byte(sb.String())
}
