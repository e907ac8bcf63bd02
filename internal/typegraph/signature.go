package typegraph

import (
	"slices"
	"strings"
)

// Signature is the ordered list of external parameter labels. Two
// initializers collide when their signatures are equal.
type Signature []string

// Signature returns the call signature of the initializer.
func (in *Init) Signature() Signature {
	return Signature(in.Labels())
}

func (s Signature) Equal(other Signature) bool {
	return slices.Equal(s, other)
}

func (s Signature) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, l := range s {
		b.WriteString(l)
		b.WriteByte(':')
	}
	b.WriteByte(')')
	return b.String()
}

// ID renders a stable selector for the initializer owned by typeID, e.g.
// "Movie.init(title:director:)", "FuelTank.init?(currentAmount:)" or
// "Astronaut.init(name:age:) throws".
func (in *Init) ID(typeID string) string {
	var b strings.Builder
	b.WriteString(typeID)
	b.WriteString(".init")
	if in.Failure == FailureFailable {
		b.WriteByte('?')
	}
	b.WriteString(in.Signature().String())
	if in.Failure == FailureThrowing {
		b.WriteString(" throws")
	}
	return b.String()
}
