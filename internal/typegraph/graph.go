package typegraph

import (
	"errors"
	"fmt"
)

// ErrDuplicateType is returned by Builder.Add when an id is declared twice.
var ErrDuplicateType = errors.New("duplicate type declaration")

// ErrDuplicateProperty is returned by Builder.Add when a type declares the
// same property name twice.
var ErrDuplicateProperty = errors.New("duplicate property declaration")

// ChainFailure classifies why a superclass chain could not be resolved.
type ChainFailure uint8

const (
	ChainUnknownSuperclass ChainFailure = iota + 1
	ChainInheritanceCycle
	ChainNotAClass
)

// ChainError reports a broken superclass chain starting at Type. At is the
// type whose superclass edge is broken (the type naming a missing supertype,
// or the first type revisited on the current path).
type ChainError struct {
	Failure ChainFailure
	Type    string
	At      string
	Missing string
	Path    []string
}

func (e *ChainError) Error() string {
	switch e.Failure {
	case ChainUnknownSuperclass:
		return fmt.Sprintf("%s: unknown superclass %q named by %s", e.Type, e.Missing, e.At)
	case ChainInheritanceCycle:
		return fmt.Sprintf("%s: inheritance cycle through %s", e.Type, e.At)
	case ChainNotAClass:
		return fmt.Sprintf("%s: superclass %q named by %s is not a class", e.Type, e.Missing, e.At)
	}
	return e.Type + ": broken superclass chain"
}

// Builder collects declarations. It is the only mutation point of a graph.
type Builder struct {
	types []*TypeDecl
	index map[string]int
}

func NewBuilder() *Builder {
	return &Builder{index: make(map[string]int)}
}

// Add appends a declaration. Inits get their declaration indices assigned.
func (b *Builder) Add(t *TypeDecl) error {
	if t == nil {
		return errors.New("nil type declaration")
	}
	id := t.ID()
	if _, ok := b.index[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, id)
	}
	seen := make(map[string]struct{}, len(t.Properties))
	for _, p := range t.Properties {
		if _, ok := seen[p.Name]; ok {
			return fmt.Errorf("%w: %s.%s", ErrDuplicateProperty, id, p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	t.Index = len(b.types)
	for i, in := range t.Inits {
		in.Index = i
		in.Origin = OriginDeclared
		in.Owner = id
	}
	b.index[id] = len(b.types)
	b.types = append(b.types, t)
	return nil
}

// Build freezes the collected declarations. The builder must not be reused.
func (b *Builder) Build() *Graph {
	g := &Graph{types: b.types, index: b.index}
	b.types, b.index = nil, nil
	return g
}

// Graph is an immutable snapshot of all declared types.
type Graph struct {
	types []*TypeDecl
	index map[string]int
}

// Types returns the declarations in declaration order. Callers must not
// modify the returned values.
func (g *Graph) Types() []*TypeDecl {
	return g.types
}

func (g *Graph) Len() int {
	return len(g.types)
}

// Lookup finds a declaration by qualified id.
func (g *Graph) Lookup(id string) (*TypeDecl, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.types[i], true
}

// Superclass returns the immediate supertype of a class, if any.
func (g *Graph) Superclass(t *TypeDecl) (*TypeDecl, bool) {
	if t == nil || t.Superclass == "" {
		return nil, false
	}
	return g.Lookup(t.Superclass)
}

// SuperChain resolves the transitive superclass chain of id, nearest first.
// It fails with a *ChainError on a missing supertype or when following
// superclass edges revisits a type already on the current path.
func (g *Graph) SuperChain(id string) ([]*TypeDecl, error) {
	t, ok := g.Lookup(id)
	if !ok {
		return nil, &ChainError{Failure: ChainUnknownSuperclass, Type: id, At: id, Missing: id}
	}
	onPath := map[string]bool{id: true}
	path := []string{id}
	var chain []*TypeDecl
	for cur := t; cur.Superclass != ""; {
		next, ok := g.Lookup(cur.Superclass)
		if !ok {
			return nil, &ChainError{
				Failure: ChainUnknownSuperclass,
				Type:    id,
				At:      cur.ID(),
				Missing: cur.Superclass,
				Path:    path,
			}
		}
		nid := next.ID()
		if next.Kind != KindClass {
			return nil, &ChainError{
				Failure: ChainNotAClass,
				Type:    id,
				At:      cur.ID(),
				Missing: nid,
				Path:    path,
			}
		}
		if onPath[nid] {
			return nil, &ChainError{Failure: ChainInheritanceCycle, Type: id, At: nid, Path: append(path, nid)}
		}
		onPath[nid] = true
		path = append(path, nid)
		chain = append(chain, next)
		cur = next
	}
	return chain, nil
}

// OnInheritanceCycle reports whether id itself lies on a superclass cycle, as
// opposed to merely inheriting from a type that does.
func (g *Graph) OnInheritanceCycle(id string) bool {
	_, err := g.SuperChain(id)
	var ce *ChainError
	if !errors.As(err, &ce) || ce.Failure != ChainInheritanceCycle {
		return false
	}
	return ce.At == id
}

// InheritedProperties returns the stored properties declared by the
// superclass chain of t, nearest supertype first. Broken chains yield nil.
func (g *Graph) InheritedProperties(t *TypeDecl) []Property {
	chain, err := g.SuperChain(t.ID())
	if err != nil {
		return nil
	}
	var out []Property
	for _, s := range chain {
		out = append(out, s.StoredProperties()...)
	}
	return out
}
