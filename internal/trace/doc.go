// Package trace records what the flume front end is doing and how long it takes.
//
// Enable tracing via command-line flags or the [trace] section of flume.toml:
//
//	flume check --trace=- --trace-level=phase main.fl
//
// Tracers:
//
//   - Nop: zero-overhead when disabled
//   - StreamTracer: buffered write (text, NDJSON or msgpack) to a file or stderr
//   - RingTracer: last N events kept in memory, dumped on panic
//   - MultiTracer: stream and ring together
//
// Levels gate scopes: phase shows driver and pass spans, detail adds
// per-script spans, debug shows everything.
//
// The tracer travels through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span, ctx := trace.StartSpan(ctx, trace.ScopePass, "sema.collect")
//	defer span.End("")
package trace
