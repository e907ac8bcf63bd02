package typegraph

import (
	"errors"
	"strings"
	"testing"
)

func mustGraph(t *testing.T, decls ...*TypeDecl) *Graph {
	t.Helper()
	b := NewBuilder()
	for _, d := range decls {
		if err := b.Add(d); err != nil {
			t.Fatalf("add %s: %v", d.Name, err)
		}
	}
	return b.Build()
}

func TestBuilderRejectsDuplicates(t *testing.T) {
	b := NewBuilder()
	if err := b.Add(&TypeDecl{Name: "Car", Kind: KindStruct}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := b.Add(&TypeDecl{Name: "Car", Kind: KindClass})
	if !errors.Is(err, ErrDuplicateType) {
		t.Fatalf("expected ErrDuplicateType, got %v", err)
	}
	// same bare name in another module is a different type
	if err := b.Add(&TypeDecl{Name: "Car", Module: "garage", Kind: KindClass}); err != nil {
		t.Fatalf("qualified id should not collide: %v", err)
	}
	g := b.Build()
	if _, ok := g.Lookup("garage.Car"); !ok {
		t.Fatalf("expected garage.Car in graph")
	}
}

func TestBuilderRejectsDuplicateProperty(t *testing.T) {
	b := NewBuilder()
	err := b.Add(&TypeDecl{Name: "P", Kind: KindStruct, Properties: []Property{{Name: "x"}, {Name: "y"}, {Name: "x"}}})
	if !errors.Is(err, ErrDuplicateProperty) {
		t.Fatalf("expected ErrDuplicateProperty, got %v", err)
	}
	if !strings.Contains(err.Error(), "P.x") {
		t.Fatalf("error %q does not name the property", err)
	}
	if err := b.Add(&TypeDecl{Name: "Q", Kind: KindStruct, Properties: []Property{{Name: "x"}}}); err != nil {
		t.Fatalf("rejected type must not block later ones: %v", err)
	}
	if _, ok := b.Build().Lookup("P"); ok {
		t.Fatalf("rejected type must not be indexed")
	}
}

func TestSuperChain(t *testing.T) {
	g := mustGraph(t,
		&TypeDecl{Name: "Vehicle", Kind: KindClass},
		&TypeDecl{Name: "Bicycle", Kind: KindClass, Superclass: "Vehicle"},
		&TypeDecl{Name: "Tandem", Kind: KindClass, Superclass: "Bicycle"},
	)
	chain, err := g.SuperChain("Tandem")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chain) != 2 || chain[0].Name != "Bicycle" || chain[1].Name != "Vehicle" {
		t.Fatalf("unexpected chain: %+v", chain)
	}
}

func TestSuperChainUnknown(t *testing.T) {
	g := mustGraph(t,
		&TypeDecl{Name: "Hoverboard", Kind: KindClass, Superclass: "Vehicle"},
		&TypeDecl{Name: "Skateboard", Kind: KindClass, Superclass: "Hoverboard"},
	)
	_, err := g.SuperChain("Skateboard")
	var ce *ChainError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ChainError, got %v", err)
	}
	if ce.Failure != ChainUnknownSuperclass || ce.At != "Hoverboard" || ce.Missing != "Vehicle" {
		t.Fatalf("unexpected chain error: %+v", ce)
	}
}

func TestSuperChainCycle(t *testing.T) {
	g := mustGraph(t,
		&TypeDecl{Name: "A", Kind: KindClass, Superclass: "B"},
		&TypeDecl{Name: "B", Kind: KindClass, Superclass: "A"},
		&TypeDecl{Name: "C", Kind: KindClass, Superclass: "A"},
	)
	for _, id := range []string{"A", "B", "C"} {
		_, err := g.SuperChain(id)
		var ce *ChainError
		if !errors.As(err, &ce) || ce.Failure != ChainInheritanceCycle {
			t.Fatalf("%s: expected inheritance cycle, got %v", id, err)
		}
	}
	if !g.OnInheritanceCycle("A") || !g.OnInheritanceCycle("B") {
		t.Fatalf("A and B lie on the cycle")
	}
	if g.OnInheritanceCycle("C") {
		t.Fatalf("C only inherits from the cycle")
	}
}

func TestInitID(t *testing.T) {
	cases := []struct {
		in   *Init
		want string
	}{
		{&Init{Params: []Param{{Name: "title"}, {Name: "director"}}}, "Movie.init(title:director:)"},
		{&Init{Failure: FailureFailable, Params: []Param{{Name: "currentAmount"}}}, "Movie.init?(currentAmount:)"},
		{&Init{Failure: FailureThrowing, Params: []Param{{Label: "_", Name: "celsius"}}}, "Movie.init(_:) throws"},
		{&Init{}, "Movie.init()"},
	}
	for _, tc := range cases {
		if got := tc.in.ID("Movie"); got != tc.want {
			t.Errorf("ID() = %q, want %q", got, tc.want)
		}
	}
}

func TestInheritedProperties(t *testing.T) {
	g := mustGraph(t,
		&TypeDecl{Name: "Main", Kind: KindClass, Properties: []Property{{Name: "a", HasDefault: true, Mutable: true}}},
		&TypeDecl{Name: "Secondary", Kind: KindClass, Superclass: "Main", Properties: []Property{{Name: "b"}}},
	)
	sec, _ := g.Lookup("Secondary")
	props := g.InheritedProperties(sec)
	if len(props) != 1 || props[0].Name != "a" {
		t.Fatalf("unexpected inherited properties: %+v", props)
	}
}

func TestSuperChainNotAClass(t *testing.T) {
	g := mustGraph(t,
		&TypeDecl{Name: "Size", Kind: KindStruct},
		&TypeDecl{Name: "Box", Kind: KindClass, Superclass: "Size"},
		&TypeDecl{Name: "Crate", Kind: KindClass, Superclass: "Box"},
	)
	_, err := g.SuperChain("Crate")
	var ce *ChainError
	if !errors.As(err, &ce) || ce.Failure != ChainNotAClass || ce.At != "Box" || ce.Missing != "Size" {
		t.Fatalf("unexpected chain error: %v", err)
	}
}
