// Package resolve computes the effective initializer set of each type:
// declared initializers plus the memberwise, default and inherited ones the
// language synthesizes.
package resolve
