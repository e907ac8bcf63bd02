// Package diag defines the diagnostic model shared by every analysis stage.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for the findings of the
//     graph, resolver, delegation and definite-initialization stages.
//   - Offer light-weight utilities (Reporter, Bag) that let stages emit
//     diagnostics without coupling to storage or formatting.
//
// # Scope
//
// Package diag does not format or print anything. Rendering lives in
// internal/diagfmt; the driver decides how a non-empty bag is surfaced.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error (severity.go).
//   - Code – numeric identifier with a stable string form and the taxonomy
//     name used in configuration files (codes.go).
//   - Location – owning type, initializer selector, optional property and the
//     Order triple (type index, initializer index, statement index) that
//     fixes output order.
//   - Message – short, actionable text.
//   - Notes – optional extra context lines.
//
// # Emitting diagnostics
//
// Stages receive a diag.Reporter. ReportError/ReportWarning/ReportInfo build
// a ReportBuilder; WithNote chains context before Emit. BagReporter collects
// into a Bag; DedupReporter and PolicyReporter wrap another reporter.
//
// No stage ever stops on the first finding: reporting is the only failure
// channel and analysis continues after every diagnostic.
package diag
