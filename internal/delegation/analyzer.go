package delegation

import (
	"fmt"
	"strings"

	"initcheck/internal/diag"
	"initcheck/internal/graphcycle"
	"initcheck/internal/resolve"
	"initcheck/internal/typegraph"
)

// Analyzer validates delegation topology per type. It only inspects declared
// initializers; synthesized and inherited entries of the resolved set serve
// as delegation candidates.
type Analyzer struct {
	res *resolve.Resolver
	rep diag.Reporter
}

func New(res *resolve.Resolver, rep diag.Reporter) *Analyzer {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	return &Analyzer{res: res, rep: rep}
}

// Analyze checks the type and returns its delegation plan. The superclass
// chain of a class must already be known to be intact.
func (a *Analyzer) Analyze(t *typegraph.TypeDecl) *Plan {
	p := newPlan(t, a.res.Resolve(t.ID()))

	var superSet []*typegraph.Init
	hasSuper := t.Kind == typegraph.KindClass && t.Superclass != ""
	if hasSuper {
		superSet = a.res.Resolve(t.Superclass)
	}

	for _, in := range t.Inits {
		loc := locate(t, in)
		a.checkShape(t, in, loc)
		if p.Delegating(in) {
			a.resolveSelf(p, in, loc)
		}
		if hasSuper && in.Role == typegraph.RoleDesignated {
			a.resolveSuper(p, in, superSet, loc)
		}
		a.checkOverride(t, in, hasSuper, superSet, loc)
	}
	a.checkTopology(p)
	return p
}

func locate(t *typegraph.TypeDecl, in *typegraph.Init) diag.Location {
	return diag.Location{
		Type:        t.ID(),
		Initializer: in.ID(t.ID()),
		Order:       diag.Order{Type: t.Index, Init: in.Index, Stmt: -1},
	}
}

func firstCall(in *typegraph.Init, target typegraph.Target) int {
	for i, st := range in.Body {
		if st.Kind == typegraph.StmtDelegate && st.Target == target {
			return i
		}
	}
	return -1
}

// checkShape reports delegation calls that are wrong for the kind of type or
// the role of the initializer.
func (a *Analyzer) checkShape(t *typegraph.TypeDecl, in *typegraph.Init, loc diag.Location) {
	super := firstCall(in, typegraph.TargetSuper)
	self := firstCall(in, typegraph.TargetSelf)

	if t.Kind.IsValue() {
		if super >= 0 {
			diag.ReportError(a.rep, diag.SuperInitInValueType, loc.AtStmt(super),
				fmt.Sprintf("%s %s has no supertype to delegate to", t.Kind, t.ID())).Emit()
		}
		return
	}

	switch in.Role {
	case typegraph.RoleConvenience:
		if super >= 0 {
			diag.ReportError(a.rep, diag.ConvenienceDelegatesUp, loc.AtStmt(super),
				"convenience initializer must delegate across with self.init, not up with super.init").Emit()
		}
	case typegraph.RoleDesignated:
		if self >= 0 {
			diag.ReportError(a.rep, diag.DesignatedDelegatesAcross, loc.AtStmt(self),
				"designated initializer cannot delegate with self.init").
				WithNote("mark the initializer convenience to delegate across").Emit()
		}
		if super >= 0 && t.Superclass == "" {
			diag.ReportError(a.rep, diag.SuperInitInRootClass, loc.AtStmt(super),
				fmt.Sprintf("class %s has no superclass", t.ID())).Emit()
		}
	}
}

func (a *Analyzer) resolveSelf(p *Plan, in *typegraph.Init, loc diag.Location) {
	idx := firstCall(in, typegraph.TargetSelf)
	if idx < 0 {
		// value types only get here through a convenience marker, which the
		// resolver already rejects
		if p.Type.Kind == typegraph.KindClass {
			diag.ReportError(a.rep, diag.ConvenienceDoesNotReachDesignated, loc,
				"convenience initializer never delegates with self.init").Emit()
		}
		return
	}
	call := in.Body[idx]
	target, status := Match(call.Args, p.Set)
	switch status {
	case MatchFound:
		p.targets[in] = target
	case MatchAmbiguous:
		diag.ReportError(a.rep, diag.UnresolvedDelegationTarget, loc.AtStmt(idx),
			fmt.Sprintf("%s is ambiguous", call)).
			WithNote("candidates: " + candidateList(p.Type.ID(), p.Set)).Emit()
	default:
		diag.ReportError(a.rep, diag.UnresolvedDelegationTarget, loc.AtStmt(idx),
			fmt.Sprintf("no initializer of %s matches %s", p.Type.ID(), call)).
			WithNote("candidates: " + candidateList(p.Type.ID(), p.Set)).Emit()
	}
}

func (a *Analyzer) resolveSuper(p *Plan, in *typegraph.Init, superSet []*typegraph.Init, loc diag.Location) {
	superID := p.Type.Superclass
	idx := firstCall(in, typegraph.TargetSuper)
	if idx < 0 {
		for _, cand := range superSet {
			if cand.Role == typegraph.RoleDesignated && resolve.CallableWithoutArgs(cand) {
				p.implicitSuper[in] = true
				return
			}
		}
		// a designated initializer that delegates across is reported as such
		if firstCall(in, typegraph.TargetSelf) >= 0 {
			return
		}
		diag.ReportError(a.rep, diag.MissingSuperInitCall, loc,
			fmt.Sprintf("designated initializer must call super.init; %s has no zero-argument designated initializer to call implicitly", superID)).Emit()
		return
	}

	call := in.Body[idx]
	var designated, convenience []*typegraph.Init
	for _, cand := range superSet {
		if cand.Role == typegraph.RoleDesignated {
			designated = append(designated, cand)
		} else {
			convenience = append(convenience, cand)
		}
	}
	target, status := Match(call.Args, designated)
	switch status {
	case MatchFound:
		p.superTargets[in] = target
		return
	case MatchAmbiguous:
		diag.ReportError(a.rep, diag.SuperInitUnresolved, loc.AtStmt(idx),
			fmt.Sprintf("%s is ambiguous among designated initializers of %s", call, superID)).Emit()
		return
	}
	if conv, st := Match(call.Args, convenience); st == MatchFound {
		diag.ReportError(a.rep, diag.SuperInitTargetNotDesignated, loc.AtStmt(idx),
			fmt.Sprintf("%s resolves to convenience initializer %s", call, conv.ID(superID))).
			WithNote("a subclass can only delegate up to a designated initializer").Emit()
		return
	}
	diag.ReportError(a.rep, diag.SuperInitUnresolved, loc.AtStmt(idx),
		fmt.Sprintf("no designated initializer of %s matches %s", superID, call)).
		WithNote("candidates: " + candidateList(superID, designated)).Emit()
}

// checkOverride applies the signature collision rule against the superclass
// resolved set.
func (a *Analyzer) checkOverride(t *typegraph.TypeDecl, in *typegraph.Init, hasSuper bool, superSet []*typegraph.Init, loc diag.Location) {
	if !hasSuper {
		if in.Override {
			diag.ReportError(a.rep, diag.SpuriousOverrideMarker, loc,
				fmt.Sprintf("%s %s has no superclass initializer to override", t.Kind, t.ID())).Emit()
		}
		return
	}
	sig := in.Signature()
	var designated, convenience *typegraph.Init
	for _, cand := range superSet {
		if !cand.Signature().Equal(sig) {
			continue
		}
		if cand.Role == typegraph.RoleDesignated {
			designated = cand
		} else {
			convenience = cand
		}
	}
	switch {
	case designated != nil && !in.Override:
		diag.ReportError(a.rep, diag.MissingOverrideMarker, loc,
			fmt.Sprintf("initializer overrides designated initializer %s and must be marked override", designated.ID(t.Superclass))).Emit()
	case designated == nil && in.Override && convenience != nil:
		diag.ReportError(a.rep, diag.SpuriousOverrideMarker, loc,
			fmt.Sprintf("%s is a convenience initializer and cannot be overridden", convenience.ID(t.Superclass))).Emit()
	case designated == nil && in.Override:
		diag.ReportError(a.rep, diag.SpuriousOverrideMarker, loc,
			fmt.Sprintf("initializer does not override any designated initializer of %s", t.Superclass)).Emit()
	}
}

// checkTopology reports delegation cycles, one per strongly connected
// component, and delegating initializers that cannot reach a designated one.
func (a *Analyzer) checkTopology(p *Plan) {
	next := func(in *typegraph.Init) []*typegraph.Init {
		if target, ok := p.targets[in]; ok {
			return []*typegraph.Init{target}
		}
		return nil
	}
	cycles := graphcycle.Cycles(graphcycle.Config[*typegraph.Init]{
		Starts: p.Type.Inits,
		Next:   next,
	})
	for _, members := range cycles {
		first := members[0]
		for _, m := range members {
			p.onCycle[m] = true
			if m.Index < first.Index {
				first = m
			}
		}
		path := []string{first.ID(p.Type.ID())}
		for cur := p.targets[first]; cur != first; cur = p.targets[cur] {
			path = append(path, cur.ID(p.Type.ID()))
		}
		path = append(path, first.ID(p.Type.ID()))
		b := diag.ReportError(a.rep, diag.DelegationCycle, locate(p.Type, first),
			fmt.Sprintf("self.init delegation cycle through %d initializer(s)", len(members)))
		b.WithNote(strings.Join(path, " -> ")).Emit()
	}

	for _, in := range p.Type.Inits {
		if !p.Delegating(in) || p.onCycle[in] {
			continue
		}
		cur, ok := p.targets[in]
		for ok && p.Delegating(cur) {
			if p.onCycle[cur] {
				diag.ReportError(a.rep, diag.ConvenienceDoesNotReachDesignated, locate(p.Type, in),
					fmt.Sprintf("delegation never reaches a designated initializer; %s is on a cycle", cur.ID(p.Type.ID()))).Emit()
				break
			}
			next, resolved := p.targets[cur]
			if !resolved {
				// the broken link itself carries the unresolved-target error
				note := fmt.Sprintf("self.init in %s does not resolve", cur.ID(p.Type.ID()))
				if firstCall(cur, typegraph.TargetSelf) < 0 {
					note = fmt.Sprintf("%s never delegates with self.init", cur.ID(p.Type.ID()))
				}
				diag.ReportError(a.rep, diag.ConvenienceDoesNotReachDesignated, locate(p.Type, in),
					"delegation never reaches a designated initializer").WithNote(note).Emit()
				break
			}
			cur = next
		}
	}
}

func candidateList(typeID string, set []*typegraph.Init) string {
	if len(set) == 0 {
		return "none"
	}
	ids := make([]string, len(set))
	for i, in := range set {
		ids[i] = in.ID(typeID)
	}
	return strings.Join(ids, ", ")
}
