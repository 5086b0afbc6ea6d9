// Package diag defines the diagnostic model shared by every analysis phase.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Time – when the diagnostic was recorded (stamped by Bag.Add).
//   - Kind – producing phase (lexer, parser, include, resolve, type, semantic,
//     runtime, lint, internal); derived from the Code range.
//   - Severity – Info < Warning < Error < Fatal. Fatal implies Error.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary – the source.Span the diagnostic points at.
//   - Notes – optional secondary spans/messages for additional context.
//
// # Emitting diagnostics
//
// Phases emit through a Reporter and never return user-level problems as Go
// errors. ReportBuilder (ReportError/ReportWarning/ReportFatal) chains notes
// before Emit. BagReporter stores into a Bag; DedupReporter drops repeats of
// the same (code, severity, span, message).
//
// Bag is append-only. HasErrors/HasFatal/HasWarnings stay accurate even when
// the configured limit drops diagnostics; ByKind and BySeverity return
// filtered copies.
//
// Rendering lives in internal/diagfmt; this package performs no IO.
package diag
