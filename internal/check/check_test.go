package check

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"initcheck/internal/definit"
	"initcheck/internal/diag"
	"initcheck/internal/typegraph"
)

func build(t *testing.T, decls ...*typegraph.TypeDecl) *typegraph.Graph {
	t.Helper()
	b := typegraph.NewBuilder()
	for _, d := range decls {
		if err := b.Add(d); err != nil {
			t.Fatalf("add %s: %v", d.Name, err)
		}
	}
	return b.Build()
}

func run(t *testing.T, g *typegraph.Graph, opts Options) *Result {
	t.Helper()
	res, err := Run(context.Background(), g, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

func expectCodes(t *testing.T, res *Result, want ...diag.Code) {
	t.Helper()
	if got := res.Bag.Codes(); !slices.Equal(got, want) {
		t.Fatalf("codes = %v, want %v\n%s", got, want, res.Golden())
	}
}

func param(name string) typegraph.Param { return typegraph.Param{Name: name} }

func TestScenarioSizeMemberwise(t *testing.T) {
	g := build(t, &typegraph.TypeDecl{
		Name:       "Size",
		Kind:       typegraph.KindStruct,
		Properties: []typegraph.Property{{Name: "width"}, {Name: "height"}},
	})
	res := run(t, g, Options{})
	expectCodes(t, res)
	set := res.Resolved["Size"]
	if len(set) != 1 || set[0].Origin != typegraph.OriginMemberwise || set[0].ID("Size") != "Size.init(width:height:)" {
		t.Fatalf("expected exactly the memberwise initializer, got %d", len(set))
	}
}

func TestScenarioVehicleBicycle(t *testing.T) {
	g := build(t,
		&typegraph.TypeDecl{
			Name:       "Vehicle",
			Kind:       typegraph.KindClass,
			Properties: []typegraph.Property{{Name: "numberOfWheels", HasDefault: true, Mutable: true}},
		},
		&typegraph.TypeDecl{
			Name:       "Bicycle",
			Kind:       typegraph.KindClass,
			Superclass: "Vehicle",
			Inits: []*typegraph.Init{{
				Override: true,
				Body:     []typegraph.Stmt{typegraph.SuperInit(), typegraph.Assign("numberOfWheels")},
			}},
		},
	)
	res := run(t, g, Options{RequestDefault: []string{"Vehicle"}})
	expectCodes(t, res)
	vehicle := res.Resolved["Vehicle"]
	if len(vehicle) != 1 || vehicle[0].Origin != typegraph.OriginDefault || len(vehicle[0].Params) != 0 {
		t.Fatalf("expected a zero-argument default initializer for Vehicle")
	}
}

func movie(convenience ...typegraph.Stmt) *typegraph.TypeDecl {
	return &typegraph.TypeDecl{
		Name:       "Movie",
		Kind:       typegraph.KindClass,
		Properties: []typegraph.Property{{Name: "title"}, {Name: "director"}, {Name: "budget"}},
		Inits: []*typegraph.Init{
			{
				Params: []typegraph.Param{param("title"), param("director"), param("budget")},
				Body:   []typegraph.Stmt{typegraph.Assign("title"), typegraph.Assign("director"), typegraph.Assign("budget")},
			},
			{Role: typegraph.RoleConvenience, Params: []typegraph.Param{param("title")}, Body: convenience},
		},
	}
}

func TestScenarioMovie(t *testing.T) {
	ok := run(t, build(t, movie(typegraph.SelfInit("title", "director", "budget"))), Options{})
	expectCodes(t, ok)

	bad := run(t, build(t, movie(typegraph.Assign("title"), typegraph.SelfInit("title", "director", "budget"))), Options{})
	expectCodes(t, bad, diag.SelfInitNotFirstStatement)
}

func fuelTank(body ...typegraph.Stmt) *typegraph.TypeDecl {
	return &typegraph.TypeDecl{
		Name:       "FuelTank",
		Kind:       typegraph.KindStruct,
		Properties: []typegraph.Property{{Name: "currentAmount", Mutable: true}, {Name: "currentLiquidType", Mutable: true}},
		Inits: []*typegraph.Init{{
			Failure: typegraph.FailureFailable,
			Params:  []typegraph.Param{param("currentAmount"), param("currentLiquidType")},
			Body:    body,
		}},
	}
}

func TestScenarioFuelTank(t *testing.T) {
	ok := run(t, build(t, fuelTank(typegraph.ReturnNil(), typegraph.Assign("currentAmount"), typegraph.Assign("currentLiquidType"))), Options{})
	expectCodes(t, ok)

	bad := run(t, build(t, fuelTank(typegraph.ReturnNil())), Options{})
	expectCodes(t, bad, diag.PropertyNotInitializedOnPath)
	if bad.Diagnostics()[0].Property != "currentAmount" {
		t.Fatalf("expected currentAmount, got %q", bad.Diagnostics()[0].Property)
	}
}

func scenarioSecondary() *typegraph.Graph {
	b := typegraph.NewBuilder()
	_ = b.Add(&typegraph.TypeDecl{Name: "Main", Kind: typegraph.KindClass})
	_ = b.Add(&typegraph.TypeDecl{
		Name:       "Secondary",
		Kind:       typegraph.KindClass,
		Superclass: "Main",
		Inits: []*typegraph.Init{{
			Override: true,
			Body:     []typegraph.Stmt{typegraph.SuperInit(), typegraph.SuperInit()},
		}},
	})
	return b.Build()
}

func TestScenarioSecondaryGolden(t *testing.T) {
	res := run(t, scenarioSecondary(), Options{})
	want := "error DEF4003 Secondary.init() super.init is called more than once\n" +
		"note DEF4003 Secondary.init() Main was already initialized"
	if got := res.Golden(); got != want {
		t.Fatalf("golden mismatch:\n got: %s\nwant: %s", got, want)
	}
}

func TestBrokenChainsSkipSubtreeOnly(t *testing.T) {
	g := build(t,
		&typegraph.TypeDecl{Name: "A", Kind: typegraph.KindClass, Superclass: "B"},
		&typegraph.TypeDecl{Name: "B", Kind: typegraph.KindClass, Superclass: "A"},
		&typegraph.TypeDecl{Name: "C", Kind: typegraph.KindClass, Superclass: "A"},
		&typegraph.TypeDecl{Name: "Skateboard", Kind: typegraph.KindClass, Superclass: "Board"},
		&typegraph.TypeDecl{Name: "Point", Kind: typegraph.KindStruct, Superclass: "Skateboard"},
		&typegraph.TypeDecl{Name: "Crate", Kind: typegraph.KindClass, Superclass: "Point"},
		fuelTank(typegraph.ReturnNil()),
	)
	res := run(t, g, Options{})
	expectCodes(t, res,
		diag.InheritanceCycle,
		diag.InheritanceCycle,
		diag.SuperclassUnusable,
		diag.UnknownSuperclass,
		diag.SuperclassOnValueType,
		diag.UnknownSuperclass,
		diag.PropertyNotInitializedOnPath,
	)
	if !slices.Equal(res.Skipped, []string{"A", "B", "C", "Skateboard", "Crate"}) {
		t.Fatalf("unexpected skipped types %v", res.Skipped)
	}
	if res.Diagnostics()[2].Severity != diag.SevInfo {
		t.Fatalf("descendants of a broken chain get an info diagnostic")
	}
	if _, ok := res.Plans["FuelTank"]; !ok {
		t.Fatalf("independent types are still analyzed")
	}
}

func TestMaxDiagnosticsKeepsSortedPrefix(t *testing.T) {
	decls := func() []*typegraph.TypeDecl {
		return []*typegraph.TypeDecl{
			{Name: "A", Kind: typegraph.KindStruct, Properties: []typegraph.Property{{Name: "x"}}, Inits: []*typegraph.Init{{}}},
			{Name: "Z", Kind: typegraph.KindClass, Superclass: "Missing"},
		}
	}
	full := run(t, build(t, decls()...), Options{})
	expectCodes(t, full, diag.PropertyNotInitializedOnPath, diag.UnknownSuperclass)
	if full.Truncated != 0 {
		t.Fatalf("nothing to truncate, got %d", full.Truncated)
	}

	limited := run(t, build(t, decls()...), Options{MaxDiagnostics: 1})
	expectCodes(t, limited, diag.PropertyNotInitializedOnPath)
	if limited.Diagnostics()[0].Initializer != full.Diagnostics()[0].Initializer {
		t.Fatalf("expected %s, got %s", full.Diagnostics()[0].Initializer, limited.Diagnostics()[0].Initializer)
	}
	if limited.Truncated != 1 {
		t.Fatalf("expected 1 truncated diagnostic, got %d", limited.Truncated)
	}
}

func TestRequestDefaultIneligible(t *testing.T) {
	g := build(t, &typegraph.TypeDecl{Name: "Survey", Kind: typegraph.KindClass, Properties: []typegraph.Property{{Name: "question"}}})
	res := run(t, g, Options{RequestDefault: []string{"Survey", "Missing"}})
	expectCodes(t, res, diag.NoDefaultInitializerEligible, diag.NoDesignatedInitializer, diag.NoDefaultInitializerEligible)
	if res.Diagnostics()[2].Type != "Missing" {
		t.Fatalf("unknown types sort last, got %s", res.Diagnostics()[2].Type)
	}
}

func TestPolicyRewritesSeverity(t *testing.T) {
	policy, err := diag.ParsePolicy(map[string]string{"MultipleSuperInitCalls": "warning"})
	if err != nil {
		t.Fatal(err)
	}
	res := run(t, scenarioSecondary(), Options{Policy: policy})
	if errs, warns := severities(res); errs != 0 || warns == 0 {
		t.Fatalf("expected the finding to be downgraded:\n%s", res.Golden())
	}

	off, err := diag.ParsePolicy(map[string]string{"DEF4003": "off"})
	if err != nil {
		t.Fatal(err)
	}
	expectCodes(t, run(t, scenarioSecondary(), Options{Policy: off}))
}

func everything() *typegraph.Graph {
	b := typegraph.NewBuilder()
	decls := []*typegraph.TypeDecl{
		movie(typegraph.Assign("title"), typegraph.SelfInit("title", "director", "budget")),
		fuelTank(typegraph.ReturnNil()),
		{Name: "A", Kind: typegraph.KindClass, Superclass: "B"},
		{Name: "B", Kind: typegraph.KindClass, Superclass: "A"},
		{
			Name: "Loop",
			Kind: typegraph.KindClass,
			Inits: []*typegraph.Init{
				{},
				{Role: typegraph.RoleConvenience, Params: []typegraph.Param{param("a")}, Body: []typegraph.Stmt{typegraph.SelfInit("b")}},
				{Role: typegraph.RoleConvenience, Params: []typegraph.Param{param("b")}, Body: []typegraph.Stmt{typegraph.SelfInit("a")}},
			},
		},
	}
	for _, d := range decls {
		_ = b.Add(d)
	}
	return b.Build()
}

func TestIdempotent(t *testing.T) {
	first := run(t, everything(), Options{}).Golden()
	second := run(t, everything(), Options{}).Golden()
	if first == "" || first != second {
		t.Fatalf("runs differ:\n%s\n---\n%s", first, second)
	}
	g := everything()
	if a, b := run(t, g, Options{}).Golden(), run(t, g, Options{}).Golden(); a != b {
		t.Fatalf("re-running on the same snapshot must be byte-identical")
	}
}

func TestCycleLawAcrossTypes(t *testing.T) {
	b := typegraph.NewBuilder()
	const types = 12
	for i := 0; i < types; i++ {
		inits := []*typegraph.Init{{}}
		// i+1 disjoint two-node cycles in type i
		for c := 0; c <= i; c++ {
			x, y := fmt.Sprintf("x%d", c), fmt.Sprintf("y%d", c)
			inits = append(inits,
				&typegraph.Init{Role: typegraph.RoleConvenience, Params: []typegraph.Param{param(x)}, Body: []typegraph.Stmt{typegraph.SelfInit(y)}},
				&typegraph.Init{Role: typegraph.RoleConvenience, Params: []typegraph.Param{param(y)}, Body: []typegraph.Stmt{typegraph.SelfInit(x)}},
			)
		}
		if err := b.Add(&typegraph.TypeDecl{Name: fmt.Sprintf("T%d", i), Kind: typegraph.KindClass, Inits: inits}); err != nil {
			t.Fatal(err)
		}
	}
	res := run(t, b.Build(), Options{})
	if got, want := res.Bag.Count(diag.DelegationCycle), types*(types+1)/2; got != want || res.Bag.Len() != want {
		t.Fatalf("expected %d cycle diagnostics and nothing else, got %d of %d", want, got, res.Bag.Len())
	}
}

func TestOutcomesRecorded(t *testing.T) {
	res := run(t, build(t, fuelTank(typegraph.ReturnNil(), typegraph.Assign("currentAmount"), typegraph.Assign("currentLiquidType"))), Options{})
	out := res.Outcomes["FuelTank"]
	if len(out) != 1 || out[0].Phase != definit.PhaseComplete || out[0].Exits != 1 {
		t.Fatalf("unexpected outcomes %+v", out)
	}
	if len(res.Timer.Report().Phases) != 4 {
		t.Fatalf("expected graph, resolve, delegation and definit phases")
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Run(ctx, everything(), Options{})
	if !errors.Is(err, context.Canceled) || res == nil {
		t.Fatalf("expected a partial result and context.Canceled, got %v", err)
	}
}

func severities(res *Result) (errs, warns int) {
	for _, d := range res.Diagnostics() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	return errs, warns
}
