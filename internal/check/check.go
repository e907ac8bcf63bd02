package check

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"initcheck/internal/definit"
	"initcheck/internal/delegation"
	"initcheck/internal/diag"
	"initcheck/internal/observ"
	"initcheck/internal/resolve"
	"initcheck/internal/trace"
	"initcheck/internal/typegraph"
)

// DefaultMaxDiagnostics bounds the report when Options.MaxDiagnostics is unset.
const DefaultMaxDiagnostics = 10000

// Options tunes one run.
type Options struct {
	// MaxDiagnostics caps the sorted report. Values above diag.MaxLimit are
	// clamped to it.
	MaxDiagnostics int
	// Policy rewrites or drops diagnostics by code. Nil keeps defaults.
	Policy *diag.Policy
	// RequestDefault lists type ids whose default initializer the caller
	// explicitly asks for.
	RequestDefault []string
}

// Result is everything one run produced. Derived structures are owned by the
// result and discarded with it.
type Result struct {
	Graph    *typegraph.Graph
	Bag      *diag.Bag
	Resolved map[string][]*typegraph.Init
	Plans    map[string]*delegation.Plan
	Outcomes map[string][]definit.Result
	// Skipped lists, in declaration order, the types left out because their
	// superclass chain is broken.
	Skipped []string
	// Truncated counts diagnostics dropped past MaxDiagnostics.
	Truncated int
	Timer     *observ.Timer
}

// Diagnostics returns the sorted findings.
func (r *Result) Diagnostics() []diag.Diagnostic {
	return r.Bag.Items()
}

// Golden renders the findings in the stable single-line format.
func (r *Result) Golden() string {
	return diag.FormatGoldenDiagnostics(r.Bag.Items(), true)
}

// Run analyzes g. The only error it returns is the context's.
func Run(ctx context.Context, g *typegraph.Graph, opts Options) (*Result, error) {
	limit := opts.MaxDiagnostics
	if limit <= 0 {
		limit = DefaultMaxDiagnostics
	}
	res := &Result{
		Graph:    g,
		Bag:      diag.NewBag(limit),
		Resolved: make(map[string][]*typegraph.Init, g.Len()),
		Plans:    make(map[string]*delegation.Plan, g.Len()),
		Outcomes: make(map[string][]definit.Result, g.Len()),
		Timer:    observ.NewTimer(),
	}
	var rep diag.Reporter = diag.NewDedupReporter(diag.BagReporter{Bag: res.Bag})
	if opts.Policy != nil {
		rep = diag.PolicyReporter{Policy: opts.Policy, Next: rep}
	}

	ctx, span := trace.Start(ctx, trace.ScopePass, "check")
	defer func() {
		span.WithExtra("diagnostics", fmt.Sprint(res.Bag.Len())).End("")
	}()

	usable := res.validateChains(ctx, rep)
	if err := ctx.Err(); err != nil {
		return res, err
	}

	resolver := resolve.New(g)
	res.phase(ctx, "resolve", func() string {
		for _, t := range usable {
			resolver.Check(t, rep)
			res.Resolved[t.ID()] = resolver.Resolve(t.ID())
		}
		for _, id := range opts.RequestDefault {
			res.requestDefault(resolver, id, rep)
		}
		return fmt.Sprintf("%d types", len(usable))
	})
	if err := ctx.Err(); err != nil {
		return res, err
	}

	analyzer := delegation.New(resolver, rep)
	res.phase(ctx, "delegation", func() string {
		for _, t := range usable {
			res.Plans[t.ID()] = analyzer.Analyze(t)
		}
		return ""
	})
	if err := ctx.Err(); err != nil {
		return res, err
	}

	checker := definit.New(g, rep)
	res.phase(ctx, "definit", func() string {
		inits := 0
		for _, t := range usable {
			tctx, tspan := trace.Start(ctx, trace.ScopeType, "type:"+t.ID())
			outcomes := checker.CheckType(res.Plans[t.ID()])
			for _, o := range outcomes {
				trace.Point(trace.FromContext(tctx), trace.ScopeInit, "init:"+o.Init.ID(t.ID()), o.Phase.String(), trace.CurrentSpan(tctx).SpanID)
			}
			tspan.End("")
			res.Outcomes[t.ID()] = outcomes
			inits += len(outcomes)
		}
		return fmt.Sprintf("%d initializers", inits)
	})

	res.Bag.Sort()
	res.Truncated = res.Bag.Truncate()
	return res, nil
}

func (r *Result) phase(ctx context.Context, name string, fn func() string) {
	_, span := trace.Start(ctx, trace.ScopePass, name)
	r.Timer.Measure(name, func() string {
		note := fn()
		span.End(note)
		return note
	})
}

// validateChains reports value types naming a superclass and broken
// superclass chains, and returns the types that can be analyzed.
func (r *Result) validateChains(ctx context.Context, rep diag.Reporter) []*typegraph.TypeDecl {
	var usable []*typegraph.TypeDecl
	r.phase(ctx, "graph", func() string {
		for _, t := range r.Graph.Types() {
			id := t.ID()
			loc := diag.TypeLocation(id, t.Index)
			if t.Kind.IsValue() {
				if t.Superclass != "" {
					diag.ReportError(rep, diag.SuperclassOnValueType, loc,
						fmt.Sprintf("%s %s cannot inherit from %s", t.Kind, id, t.Superclass)).
						WithNote("only classes take part in inheritance; the superclass is ignored").Emit()
				}
				usable = append(usable, t)
				continue
			}
			_, err := r.Graph.SuperChain(id)
			if err == nil {
				usable = append(usable, t)
				continue
			}
			r.Skipped = append(r.Skipped, id)
			reportChain(rep, t, err)
		}
		return fmt.Sprintf("%d skipped", len(r.Skipped))
	})
	return usable
}

func reportChain(rep diag.Reporter, t *typegraph.TypeDecl, err error) {
	id := t.ID()
	loc := diag.TypeLocation(id, t.Index)
	var ce *typegraph.ChainError
	if !errors.As(err, &ce) {
		diag.ReportError(rep, diag.SuperclassUnusable, loc, err.Error()).Emit()
		return
	}
	if ce.At != id {
		diag.ReportInfo(rep, diag.SuperclassUnusable, loc,
			fmt.Sprintf("%s is not analyzed because the superclass chain is broken at %s", id, ce.At)).Emit()
		return
	}
	switch ce.Failure {
	case typegraph.ChainUnknownSuperclass:
		diag.ReportError(rep, diag.UnknownSuperclass, loc,
			fmt.Sprintf("superclass %s of %s is not declared", ce.Missing, id)).Emit()
	case typegraph.ChainNotAClass:
		diag.ReportError(rep, diag.UnknownSuperclass, loc,
			fmt.Sprintf("superclass %s of %s is not a class", ce.Missing, id)).
			WithNote("structs and enums cannot be inherited from").Emit()
	case typegraph.ChainInheritanceCycle:
		diag.ReportError(rep, diag.InheritanceCycle, loc,
			fmt.Sprintf("class %s inherits from itself", id)).
			WithNote(strings.Join(ce.Path, " -> ")).Emit()
	}
}

func (r *Result) requestDefault(resolver *resolve.Resolver, id string, rep diag.Reporter) {
	t, ok := r.Graph.Lookup(id)
	if !ok {
		diag.ReportError(rep, diag.NoDefaultInitializerEligible, diag.TypeLocation(id, r.Graph.Len()),
			fmt.Sprintf("default initializer requested for unknown type %s", id)).Emit()
		return
	}
	resolver.RequestDefault(t, rep)
}
