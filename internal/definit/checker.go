package definit

import (
	"fmt"

	"initcheck/internal/delegation"
	"initcheck/internal/diag"
	"initcheck/internal/typegraph"
)

// Phase is the state of the fall-through path.
type Phase uint8

const (
	PhaseCollecting Phase = iota
	PhaseComplete
	PhaseAborted
)

func (p Phase) String() string {
	switch p {
	case PhaseComplete:
		return "complete"
	case PhaseAborted:
		return "aborted"
	}
	return "collecting"
}

// Result summarizes the walk over one initializer body.
type Result struct {
	Init *typegraph.Init
	// Skipped is set when the body was not walked because delegation
	// analysis already rejected it.
	Skipped bool
	// Phase of the fall-through path after the last statement.
	Phase Phase
	// Assigned lists the own stored properties definitely assigned on the
	// fall-through path, in declaration order.
	Assigned []string
	// Exits counts the early-exit paths split off the body.
	Exits int
}

// Checker runs the definite initialization pass. It holds no per-run state
// and may be reused across types of the same graph.
type Checker struct {
	graph *typegraph.Graph
	rep   diag.Reporter
}

func New(g *typegraph.Graph, rep diag.Reporter) *Checker {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	return &Checker{graph: g, rep: rep}
}

// CheckType checks every declared initializer of the plan's type in
// declaration order.
func (c *Checker) CheckType(p *delegation.Plan) []Result {
	out := make([]Result, 0, len(p.Type.Inits))
	for _, in := range p.Type.Inits {
		out = append(out, c.Check(p, in))
	}
	return out
}

// Check walks one declared initializer of p.Type.
func (c *Checker) Check(p *delegation.Plan, in *typegraph.Init) Result {
	w := c.newWalker(p, in)
	if w.delegating && !in.Delegating() {
		// a delegating initializer without self.init is a delegation finding
		return Result{Init: in, Skipped: true}
	}
	w.run()
	return w.result()
}

type walker struct {
	rep  diag.Reporter
	plan *delegation.Plan
	t    *typegraph.TypeDecl
	in   *typegraph.Init
	loc  diag.Location

	own       []typegraph.Property
	ownIdx    map[string]int
	computed  map[string]bool
	inherited map[string]typegraph.Property

	hasSuper   bool
	delegating bool

	assigned   bitset
	superDone  bool
	superCalls int
	selfCalls  int
	phase      Phase
	exits      int

	reportedUse   bool
	reportedExit  bool
	reportedOrder bool
}

func (c *Checker) newWalker(p *delegation.Plan, in *typegraph.Init) *walker {
	t := p.Type
	w := &walker{
		rep:        c.rep,
		plan:       p,
		t:          t,
		in:         in,
		loc:        diag.Location{Type: t.ID(), Initializer: in.ID(t.ID()), Order: diag.Order{Type: t.Index, Init: in.Index, Stmt: -1}},
		own:        t.StoredProperties(),
		ownIdx:     make(map[string]int),
		computed:   make(map[string]bool),
		inherited:  make(map[string]typegraph.Property),
		hasSuper:   t.Kind == typegraph.KindClass && t.Superclass != "",
		delegating: p.Delegating(in),
	}
	w.assigned = newBitset(len(w.own))
	for i, prop := range w.own {
		w.ownIdx[prop.Name] = i
		if prop.HasDefault {
			w.assigned.set(i)
		}
	}
	for _, prop := range t.Properties {
		if prop.Computed {
			w.computed[prop.Name] = true
		}
	}
	if w.hasSuper {
		// nearest declaration wins when names repeat up the chain
		for _, prop := range c.graph.InheritedProperties(t) {
			if _, seen := w.inherited[prop.Name]; !seen {
				w.inherited[prop.Name] = prop
			}
		}
	}
	return w
}

func (w *walker) run() {
	selfIdx := -1
	if w.delegating {
		for i, st := range w.in.Body {
			if st.Kind == typegraph.StmtDelegate && st.Target == typegraph.TargetSelf {
				selfIdx = i
				break
			}
		}
	}

	w.advance()
	for i, st := range w.in.Body {
		if w.phase == PhaseAborted {
			diag.ReportWarning(w.rep, diag.UnreachableStatement, w.loc.AtStmt(i),
				fmt.Sprintf("%s is never executed after an unconditional exit", st)).Emit()
			return
		}
		if i < selfIdx && !st.IsExit() {
			w.beforeSelfInit(i, st, selfIdx)
			continue
		}
		switch st.Kind {
		case typegraph.StmtAssign:
			w.assign(i, st)
		case typegraph.StmtDelegate:
			w.delegate(i, st)
		case typegraph.StmtReturnNil, typegraph.StmtThrow:
			w.exit(i, st)
		case typegraph.StmtEffect:
			w.use(i, st)
		}
		w.advance()
	}
	if w.phase == PhaseCollecting {
		w.finish()
	}
}

// beforeSelfInit reports the first statement of a delegating initializer
// that runs ahead of its self.init call. The statement is otherwise ignored.
func (w *walker) beforeSelfInit(i int, st typegraph.Stmt, selfIdx int) {
	if w.reportedOrder {
		return
	}
	w.reportedOrder = true
	diag.ReportError(w.rep, diag.SelfInitNotFirstStatement, w.loc.AtStmt(selfIdx),
		"self.init must be the first statement of a delegating initializer").
		WithNote(fmt.Sprintf("%s at statement %d runs before it", st, i)).Emit()
}

func (w *walker) assign(i int, st typegraph.Stmt) {
	name := st.Property
	if idx, ok := w.ownIdx[name]; ok {
		w.assigned.set(idx)
		return
	}
	if w.computed[name] {
		// a computed setter runs with self
		w.use(i, st)
		return
	}
	if prop, ok := w.inherited[name]; ok {
		switch {
		case !w.delegating && !w.superDone:
			diag.ReportError(w.rep, diag.InheritedPropertyBeforeSuperInit, w.loc.AtStmt(i).WithProperty(name),
				fmt.Sprintf("inherited property %q is assigned before super.init", name)).Emit()
		case !prop.Mutable:
			diag.ReportError(w.rep, diag.ImmutableInheritedProperty, w.loc.AtStmt(i).WithProperty(name),
				fmt.Sprintf("inherited constant %q cannot be assigned by a subclass", name)).Emit()
		}
		return
	}
	diag.ReportError(w.rep, diag.UnknownProperty, w.loc.AtStmt(i).WithProperty(name),
		fmt.Sprintf("%s has no stored property %q", w.t.ID(), name)).Emit()
}

func (w *walker) delegate(i int, st typegraph.Stmt) {
	switch st.Target {
	case typegraph.TargetSelf:
		// self.init in a class designated initializer is a delegation
		// finding; the instance is still complete afterwards
		w.selfCalls++
		if w.selfCalls > 1 {
			diag.ReportError(w.rep, diag.MultipleSelfInitCalls, w.loc.AtStmt(i),
				"self.init is called more than once").Emit()
			return
		}
		w.assigned.fill()
		w.superDone = true
		w.phase = PhaseComplete
	case typegraph.TargetSuper:
		if w.delegating || !w.hasSuper {
			return
		}
		w.superCalls++
		if w.superCalls > 1 {
			diag.ReportError(w.rep, diag.MultipleSuperInitCalls, w.loc.AtStmt(i),
				"super.init is called more than once").
				WithNote(fmt.Sprintf("%s was already initialized", w.t.Superclass)).Emit()
			return
		}
		w.superDone = true
	}
}

func (w *walker) exit(i int, st typegraph.Stmt) {
	w.exits++
	switch w.in.Failure {
	case typegraph.FailureNone:
		if !w.reportedExit {
			w.reportedExit = true
			diag.ReportError(w.rep, diag.IllegalEarlyExitForNonFailing, w.loc.AtStmt(i),
				fmt.Sprintf("%s is only allowed in a failable or throwing initializer", st)).Emit()
		}
	case typegraph.FailureFailable:
		if st.Kind == typegraph.StmtThrow {
			diag.ReportError(w.rep, diag.MismatchedEarlyExit, w.loc.AtStmt(i),
				"a failable initializer fails with return nil, not throw").Emit()
		}
	case typegraph.FailureThrowing:
		if st.Kind == typegraph.StmtReturnNil {
			diag.ReportError(w.rep, diag.MismatchedEarlyExit, w.loc.AtStmt(i),
				"a throwing initializer fails by throwing, not with return nil").Emit()
		}
	}
	if st.Unconditional {
		w.phase = PhaseAborted
	}
}

// use handles a statement that observes self.
func (w *walker) use(i int, st typegraph.Stmt) {
	if w.phase == PhaseComplete || w.reportedUse {
		return
	}
	w.reportedUse = true
	b := diag.ReportError(w.rep, diag.SelfUsedBeforeInitialization, w.loc.AtStmt(i),
		fmt.Sprintf("%s uses self before it is fully initialized", st))
	switch missing := w.assigned.firstMissing(); {
	case missing >= 0:
		b.WithNote(fmt.Sprintf("property %q is not initialized yet", w.own[missing].Name))
	case w.hasSuper && !w.superDone:
		b.WithNote("super.init has not been called yet")
	}
	b.Emit()
}

func (w *walker) advance() {
	if w.phase != PhaseCollecting || w.delegating {
		return
	}
	if !w.assigned.full() {
		return
	}
	if w.hasSuper && !w.superDone {
		return
	}
	w.phase = PhaseComplete
}

// finish applies the end-of-body rules to a fall-through path that has not
// completed yet.
func (w *walker) finish() {
	if w.hasSuper && !w.delegating && w.superCalls == 0 && w.plan.ImplicitSuper(w.in) {
		w.superDone = true
	}
	if missing := w.assigned.firstMissing(); missing >= 0 {
		name := w.own[missing].Name
		diag.ReportError(w.rep, diag.PropertyNotInitializedOnPath, w.loc.AtStmt(len(w.in.Body)).WithProperty(name),
			fmt.Sprintf("property %q is not initialized on every path before the initializer returns", name)).Emit()
	}
	w.advance()
}

func (w *walker) result() Result {
	r := Result{Init: w.in, Phase: w.phase, Exits: w.exits}
	for i, prop := range w.own {
		if w.assigned.has(i) {
			r.Assigned = append(r.Assigned, prop.Name)
		}
	}
	return r
}
