// Package typegraph holds the immutable in-memory model of declared types,
// their stored properties and initializers, and the single-inheritance edges
// between classes.
//
// A Graph is assembled once through a Builder from the front-end's output and
// is read-only afterwards. Supertypes are referenced by qualified id and
// looked up in the graph; a subtype never owns its supertype.
//
// Initializer bodies are flat statement sequences (see Stmt). The only
// control flow modelled is the guarded early exit of failable and throwing
// initializers.
package typegraph
