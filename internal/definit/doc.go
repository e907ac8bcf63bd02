// Package definit proves definite initialization of initializer bodies.
//
// Each body is walked once, front to back. The walk tracks which of the
// type's own stored properties are definitely assigned and whether the
// superclass part has been initialized. A path is Collecting until the
// instance is fully formed (Complete) or it leaves through an unconditional
// early exit (Aborted). Guarded exits split off a terminating path and let
// the fall-through path continue, which is the only branching the model
// knows.
//
// Delegation targets come from a delegation.Plan; the checker trusts that a
// resolved self.init leaves the whole instance initialized instead of
// re-walking the target.
package definit
