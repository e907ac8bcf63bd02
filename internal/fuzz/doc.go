// Package fuzztests houses Go fuzz harnesses for the document pipeline
// (bytes -> schema decode -> type graph -> check). They guard against
// panics and runaway analysis on arbitrary input.
package fuzztests
