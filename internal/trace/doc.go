// Package trace records what the checker is doing while it runs.
//
// Tracing is off unless a command line asks for it:
//
//	initcheck check --trace=- --trace-level=phase graph.yaml
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is disabled
//   - StreamTracer: writes every event immediately (file or stderr)
//   - RingTracer: keeps the last N events in memory, dumped on failure
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// Events carry a scope: ScopeDriver (one CLI invocation), ScopePass (a
// pipeline stage over one document), ScopeType (one declared type) and
// ScopeInit (one initializer body). The level decides which scopes are
// emitted: phase shows driver and pass events, detail adds types, debug
// adds initializers.
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "delegation", 0)
//	defer span.End("")
package trace
