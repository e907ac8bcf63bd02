// Package check runs the whole analysis over one type graph: superclass
// chain validation, initializer resolution, delegation analysis and the
// definite initialization pass, in that order, collecting every finding.
//
// Nothing aborts a run. A type whose superclass chain is broken is reported
// and skipped together with its descendants; every other type is still
// analyzed.
package check
