// Package trace records what ternc spends its time on: one span per
// invocation, per unit, per stage and, at higher levels, per module.
//
// Tracing is enabled with --trace and --trace-level:
//
//	ternc check --trace=trace.json --trace-level=module app.yaml
//
// StreamTracer writes events as they happen (text, NDJSON or Chrome trace
// format), RingTracer keeps the last events for a dump after a crash, and
// MultiTracer combines both. Every event carries the run id of the
// invocation, so traces of parallel runs can be merged.
//
// Tracers travel in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeUnit, "unit:demo")
//	defer span.End("")
package trace
