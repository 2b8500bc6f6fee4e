package trace

import (
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
	laneCounter atomic.Uint64
)

// NextSeq returns the next global event number.
func NextSeq() uint64 { return seqCounter.Add(1) }

// NextSpanID returns a fresh span id; zero is never returned.
func NextSpanID() uint64 { return spanCounter.Add(1) }

func nextLane() uint64 { return laneCounter.Add(1) }

// Span is an open interval of work. The zero Span and spans returned while
// tracing is off are inert: End and WithExtra do nothing.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	lane    uint64
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
}

// Begin opens a span on lane under parent (0 for a root span).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	return beginOn(t, scope, name, parent, 0)
}

func beginOn(t Tracer, scope Scope, name string, parent, lane uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return &Span{}
	}
	s := &Span{
		tracer:  t,
		id:      NextSpanID(),
		parent:  parent,
		lane:    lane,
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	t.Emit(s.event(KindSpanBegin, s.started, ""))
	return s
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	ev := &Event{
		Time:     at,
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Lane:     s.lane,
		Name:     s.name,
		Detail:   detail,
	}
	if kind == KindSpanEnd {
		ev.Extra = s.extra
	}
	return ev
}

func (s *Span) live() bool { return s != nil && s.tracer != nil }

// End closes the span and returns how long it was open.
func (s *Span) End(detail string) time.Duration {
	if !s.live() {
		return 0
	}
	now := time.Now()
	s.tracer.Emit(s.event(KindSpanEnd, now, detail))
	return now.Sub(s.started)
}

// WithExtra attaches key=value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if !s.live() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point records an instant event under parent.
func Point(t Tracer, scope Scope, name string, parent uint64, detail string) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		SpanID:   NextSpanID(),
		ParentID: parent,
		Name:     name,
		Detail:   detail,
	})
}
