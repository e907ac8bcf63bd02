package delegation

import "initcheck/internal/typegraph"

// Plan is the delegation analysis result for one type. The definite
// initialization checker reads it; nothing writes to it after Analyze.
type Plan struct {
	Type *typegraph.TypeDecl
	// Set is the resolved initializer set the targets were matched against.
	Set []*typegraph.Init

	targets       map[*typegraph.Init]*typegraph.Init
	superTargets  map[*typegraph.Init]*typegraph.Init
	implicitSuper map[*typegraph.Init]bool
	onCycle       map[*typegraph.Init]bool
}

func newPlan(t *typegraph.TypeDecl, set []*typegraph.Init) *Plan {
	return &Plan{
		Type:          t,
		Set:           set,
		targets:       make(map[*typegraph.Init]*typegraph.Init),
		superTargets:  make(map[*typegraph.Init]*typegraph.Init),
		implicitSuper: make(map[*typegraph.Init]bool),
		onCycle:       make(map[*typegraph.Init]bool),
	}
}

// Delegating reports whether the initializer completes construction through
// self.init: every convenience initializer, and value-type initializers that
// call self.init.
func (p *Plan) Delegating(in *typegraph.Init) bool {
	if in.Role == typegraph.RoleConvenience {
		return true
	}
	return p.Type.Kind.IsValue() && in.Delegating()
}

// Target returns the initializer the self.init call of in resolved to.
func (p *Plan) Target(in *typegraph.Init) (*typegraph.Init, bool) {
	target, ok := p.targets[in]
	return target, ok
}

// SuperTarget returns the superclass initializer the super.init call of in
// resolved to.
func (p *Plan) SuperTarget(in *typegraph.Init) (*typegraph.Init, bool) {
	target, ok := p.superTargets[in]
	return target, ok
}

// ImplicitSuper reports whether a super.init() call is implied at the end of
// the body of in.
func (p *Plan) ImplicitSuper(in *typegraph.Init) bool {
	return p.implicitSuper[in]
}

// OnCycle reports whether in is part of a self.init delegation cycle.
func (p *Plan) OnCycle(in *typegraph.Init) bool {
	return p.onCycle[in]
}
