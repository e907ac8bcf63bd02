package resolve

import (
	"errors"
	"testing"

	"initcheck/internal/diag"
	"initcheck/internal/typegraph"
)

func buildGraph(t *testing.T, decls ...*typegraph.TypeDecl) *typegraph.Graph {
	t.Helper()
	b := typegraph.NewBuilder()
	for _, d := range decls {
		if err := b.Add(d); err != nil {
			t.Fatalf("add %s: %v", d.Name, err)
		}
	}
	return b.Build()
}

func TestMemberwiseForStructWithoutInitializers(t *testing.T) {
	g := buildGraph(t, &typegraph.TypeDecl{
		Name: "Size",
		Kind: typegraph.KindStruct,
		Properties: []typegraph.Property{
			{Name: "width"},
			{Name: "height"},
		},
	})
	set := New(g).Resolve("Size")
	if len(set) != 1 {
		t.Fatalf("expected exactly one initializer, got %d", len(set))
	}
	in := set[0]
	if in.Origin != typegraph.OriginMemberwise || in.Role != typegraph.RoleDesignated {
		t.Fatalf("expected designated memberwise initializer, got %v/%v", in.Origin, in.Role)
	}
	if got := in.ID("Size"); got != "Size.init(width:height:)" {
		t.Fatalf("unexpected signature %s", got)
	}
}

func TestMemberwiseDefaultedParamsAreOptional(t *testing.T) {
	g := buildGraph(t, &typegraph.TypeDecl{
		Name: "Size",
		Kind: typegraph.KindStruct,
		Properties: []typegraph.Property{
			{Name: "width"},
			{Name: "height"},
			{Name: "mass", HasDefault: true, Mutable: true},
			{Name: "area", Computed: true},
		},
	})
	set := New(g).Resolve("Size")
	if len(set) != 1 {
		t.Fatalf("expected only memberwise, got %d", len(set))
	}
	params := set[0].Params
	if len(params) != 3 {
		t.Fatalf("computed members must not become parameters: %+v", params)
	}
	if params[0].HasDefault || params[1].HasDefault || !params[2].HasDefault {
		t.Fatalf("unexpected defaults: %+v", params)
	}
}

func TestStructWithAllDefaultsGetsMemberwiseAndDefault(t *testing.T) {
	g := buildGraph(t, &typegraph.TypeDecl{
		Name:       "Car",
		Kind:       typegraph.KindStruct,
		Properties: []typegraph.Property{{Name: "engineType", HasDefault: true, Mutable: true}},
	})
	set := New(g).Resolve("Car")
	if len(set) != 2 {
		t.Fatalf("expected memberwise and default, got %d", len(set))
	}
	if set[0].Origin != typegraph.OriginMemberwise || set[1].Origin != typegraph.OriginDefault {
		t.Fatalf("unexpected order: %v, %v", set[0].Origin, set[1].Origin)
	}
	if len(set[1].Params) != 0 {
		t.Fatalf("default initializer must take no parameters")
	}
}

func TestExplicitStructInitializersSuppressSynthesis(t *testing.T) {
	g := buildGraph(t, &typegraph.TypeDecl{
		Name:       "Color",
		Kind:       typegraph.KindStruct,
		Properties: []typegraph.Property{{Name: "red"}, {Name: "green"}, {Name: "blue"}},
		Inits: []*typegraph.Init{{
			Params: []typegraph.Param{{Name: "white"}},
			Body:   []typegraph.Stmt{typegraph.Assign("red"), typegraph.Assign("green"), typegraph.Assign("blue")},
		}},
	})
	set := New(g).Resolve("Color")
	if len(set) != 1 || set[0].Origin != typegraph.OriginDeclared {
		t.Fatalf("expected only the declared initializer, got %d", len(set))
	}
}

func TestEnumDefaultInitializer(t *testing.T) {
	g := buildGraph(t,
		&typegraph.TypeDecl{Name: "CarEngineType", Kind: typegraph.KindEnum},
		&typegraph.TypeDecl{Name: "Payload", Kind: typegraph.KindEnum, Properties: []typegraph.Property{{Name: "value"}}},
	)
	r := New(g)
	if set := r.Resolve("CarEngineType"); len(set) != 1 || set[0].Origin != typegraph.OriginDefault {
		t.Fatalf("expected a default initializer for a stateless enum")
	}
	if set := r.Resolve("Payload"); len(set) != 0 {
		t.Fatalf("enum with associated state gets nothing, got %d", len(set))
	}
}

func TestClassDefaultAndSubclassDefault(t *testing.T) {
	g := buildGraph(t,
		&typegraph.TypeDecl{
			Name:       "Vehicle",
			Kind:       typegraph.KindClass,
			Properties: []typegraph.Property{{Name: "numberOfWheels", HasDefault: true, Mutable: true}},
		},
		&typegraph.TypeDecl{
			Name:       "Scooter",
			Kind:       typegraph.KindClass,
			Superclass: "Vehicle",
			Properties: []typegraph.Property{{Name: "brand", HasDefault: true}},
		},
	)
	r := New(g)
	vehicle := r.Resolve("Vehicle")
	if len(vehicle) != 1 || vehicle[0].Origin != typegraph.OriginDefault || len(vehicle[0].Params) != 0 {
		t.Fatalf("expected a zero-argument default initializer for Vehicle")
	}
	if len(vehicle[0].Body) != 0 {
		t.Fatalf("root default initializer has an empty body")
	}

	scooter := r.Resolve("Scooter")
	if len(scooter) != 1 {
		t.Fatalf("synthesized init() must win over the inherited one, got %d", len(scooter))
	}
	body := scooter[0].Body
	if len(body) != 1 || body[0].Kind != typegraph.StmtDelegate || body[0].Target != typegraph.TargetSuper {
		t.Fatalf("subclass default initializer must delegate to super.init(): %+v", body)
	}
}

func TestSynthesizeDefaultIneligible(t *testing.T) {
	g := buildGraph(t,
		&typegraph.TypeDecl{Name: "Survey", Kind: typegraph.KindClass, Properties: []typegraph.Property{{Name: "question"}}},
		&typegraph.TypeDecl{
			Name:       "Poll",
			Kind:       typegraph.KindClass,
			Superclass: "Survey",
			Properties: []typegraph.Property{{Name: "votes", HasDefault: true}},
		},
	)
	r := New(g)
	for _, id := range []string{"Survey", "Poll", "Missing"} {
		if _, err := r.SynthesizeDefault(id); !errors.Is(err, ErrNoDefaultInitializerEligible) {
			t.Fatalf("%s: expected ErrNoDefaultInitializerEligible, got %v", id, err)
		}
	}
	if set := r.Resolve("Survey"); len(set) != 0 {
		t.Fatalf("ineligibility during resolution is not an error and yields nothing, got %d", len(set))
	}
}

func TestDesignatedInheritance(t *testing.T) {
	movie := &typegraph.TypeDecl{
		Name:       "Movie",
		Kind:       typegraph.KindClass,
		Properties: []typegraph.Property{{Name: "title"}},
		Inits: []*typegraph.Init{
			{Params: []typegraph.Param{{Name: "title"}}, Body: []typegraph.Stmt{typegraph.Assign("title")}},
			{Role: typegraph.RoleConvenience, Body: []typegraph.Stmt{typegraph.SelfInit("title")}},
		},
	}
	short := &typegraph.TypeDecl{
		Name:       "ShortFilm",
		Kind:       typegraph.KindClass,
		Superclass: "Movie",
		Properties: []typegraph.Property{{Name: "minutes", HasDefault: true}},
		Inits: []*typegraph.Init{
			{Role: typegraph.RoleConvenience, Params: []typegraph.Param{{Name: "name"}}, Body: []typegraph.Stmt{typegraph.SelfInit("title")}},
		},
	}
	feature := &typegraph.TypeDecl{
		Name:       "Feature",
		Kind:       typegraph.KindClass,
		Superclass: "Movie",
		Properties: []typegraph.Property{{Name: "studio"}},
	}
	g := buildGraph(t, movie, short, feature)
	r := New(g)

	set := r.Resolve("ShortFilm")
	if len(set) != 2 {
		t.Fatalf("expected own convenience plus inherited designated, got %d", len(set))
	}
	if set[1].Origin != typegraph.OriginInherited || set[1].Owner != "Movie" {
		t.Fatalf("expected an inherited entry owned by Movie, got %v owned by %q", set[1].Origin, set[1].Owner)
	}
	if set[1].Index != 1 {
		t.Fatalf("inherited entry is positioned after own initializers, got %d", set[1].Index)
	}
	if movie.Inits[0].Origin != typegraph.OriginDeclared {
		t.Fatalf("inheritance must not touch the superclass declaration")
	}

	if set := r.Resolve("Feature"); len(set) != 0 {
		t.Fatalf("non-defaulted new property blocks inheritance, got %d", len(set))
	}
	bag := diag.NewBag(8)
	r.Check(feature, diag.BagReporter{Bag: bag})
	if bag.Len() != 1 || bag.Items()[0].Code != diag.NoDesignatedInitializer {
		t.Fatalf("expected NoDesignatedInitializer, got %v", bag.Codes())
	}
}

func TestResolveIsCached(t *testing.T) {
	g := buildGraph(t, &typegraph.TypeDecl{Name: "Size", Kind: typegraph.KindStruct, Properties: []typegraph.Property{{Name: "w"}}})
	r := New(g)
	a := r.Resolve("Size")
	b := r.Resolve("Size")
	if a[0] != b[0] {
		t.Fatalf("expected the cached synthesized initializer")
	}
	sz, _ := g.Lookup("Size")
	if len(sz.Inits) != 0 {
		t.Fatalf("resolution must not mutate the graph")
	}
}

func TestCheckConvenienceInValueType(t *testing.T) {
	car := &typegraph.TypeDecl{
		Name: "SuperCar",
		Kind: typegraph.KindStruct,
		Inits: []*typegraph.Init{
			{},
			{Role: typegraph.RoleConvenience, Body: []typegraph.Stmt{typegraph.SelfInit()}},
		},
	}
	g := buildGraph(t, car)
	bag := diag.NewBag(8)
	New(g).Check(car, diag.BagReporter{Bag: bag})
	if bag.Len() != 1 || bag.Items()[0].Code != diag.ConvenienceInValueType {
		t.Fatalf("expected ConvenienceInValueType, got %v", bag.Codes())
	}
	if bag.Items()[0].Order.Init != 1 {
		t.Fatalf("expected the second initializer to be blamed")
	}
}

func TestRequestDefaultReports(t *testing.T) {
	survey := &typegraph.TypeDecl{Name: "Survey", Kind: typegraph.KindClass, Properties: []typegraph.Property{{Name: "question"}}}
	g := buildGraph(t, survey)
	bag := diag.NewBag(8)
	if def := New(g).RequestDefault(survey, diag.BagReporter{Bag: bag}); def != nil {
		t.Fatalf("expected no default initializer")
	}
	if bag.Count(diag.NoDefaultInitializerEligible) != 1 {
		t.Fatalf("expected NoDefaultInitializerEligible, got %v", bag.Codes())
	}
}
