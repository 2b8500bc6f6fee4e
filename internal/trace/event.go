package trace

import "time"

// Kind is what an event marks.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

var kindNames = [...]string{"unknown", "begin", "end", "point", "heartbeat"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[0]
}

// Scope is the granularity of an event. Coarser scopes have smaller values.
type Scope uint8

const (
	// ScopeDriver is a whole ternc invocation.
	ScopeDriver Scope = iota + 1
	// ScopeUnit is the analysis of one unit document.
	ScopeUnit
	// ScopeStage is one step of a unit: reading, declare, shuffle, qualify,
	// order, check, bind or export.
	ScopeStage
	// ScopeModule is per-module work inside a stage.
	ScopeModule
	ScopeNode
)

var scopeNames = [...]string{"unknown", "driver", "unit", "stage", "module", "node"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) {
		return scopeNames[s]
	}
	return scopeNames[0]
}

// Event is one trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // stamped by the tracer when zero
	RunID    string
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	// Lane groups the spans of one unit; units run in parallel and each
	// gets its own row in the Chrome view. Lane 0 is the driver.
	Lane   uint64
	Name   string // "check", "unit:demo", "declare", "module:Main"
	Detail string
	Extra  map[string]string
}
