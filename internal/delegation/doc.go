// Package delegation validates how initializers hand off construction.
//
// Within a type, self.init calls form a graph over the resolved initializer
// set. Every convenience initializer (and every value-type initializer that
// calls self.init) must reach a designated initializer along that graph
// without running into a cycle. Designated initializers of a subclass
// delegate up to exactly one designated initializer of the immediate
// superclass, explicitly or through the implicit super.init() that the
// language inserts when the superclass offers a zero-argument one.
//
// Analyze returns a Plan that later stages consult instead of re-resolving
// delegation targets.
package delegation
