// Package driver loads type graph documents and checks them, one goroutine
// per document up to a job limit. Decoding failures are reported as
// diagnostics of the document so that the remaining inputs still run.
package driver
