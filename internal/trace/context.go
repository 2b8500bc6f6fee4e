package trace

import "context"

type (
	tracerKey struct{}
	spanKey   struct{}
)

// FromContext returns the tracer carried by ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// WithTracer returns ctx carrying t. A nil t disables tracing below ctx.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// SpanContext is the innermost open span of a context.
type SpanContext struct {
	SpanID uint64
	Lane   uint64
}

// CurrentSpan returns the innermost span of ctx; zero outside any span.
func CurrentSpan(ctx context.Context) SpanContext {
	if ctx != nil {
		if sc, ok := ctx.Value(spanKey{}).(SpanContext); ok {
			return sc
		}
	}
	return SpanContext{}
}

// Start opens a span nested in the current span of ctx and returns a
// context where it is current. Unit spans start a new lane; every other
// span stays on its parent's lane.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	parent := CurrentSpan(ctx)
	lane := parent.Lane
	t := FromContext(ctx)
	if scope == ScopeUnit && t.Enabled() {
		lane = nextLane()
	}
	s := beginOn(t, scope, name, parent.SpanID, lane)
	if s.id == 0 {
		return ctx, s
	}
	return context.WithValue(ctx, spanKey{}, SpanContext{SpanID: s.id, Lane: s.lane}), s
}
