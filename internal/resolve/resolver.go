package resolve

import (
	"errors"
	"fmt"

	"initcheck/internal/diag"
	"initcheck/internal/typegraph"
)

// ErrNoDefaultInitializerEligible is returned by SynthesizeDefault for a type
// that fails the default-initializer eligibility test.
var ErrNoDefaultInitializerEligible = errors.New("no default initializer eligible")

// Resolver computes effective initializer sets. Synthesized initializers live
// in side tables keyed by type id; the graph itself is never modified. A
// Resolver belongs to one analysis run.
type Resolver struct {
	graph     *typegraph.Graph
	cache     map[string][]*typegraph.Init
	defaults  map[string]*typegraph.Init
	resolving map[string]bool
}

func New(g *typegraph.Graph) *Resolver {
	return &Resolver{
		graph:     g,
		cache:     make(map[string][]*typegraph.Init),
		defaults:  make(map[string]*typegraph.Init),
		resolving: make(map[string]bool),
	}
}

// Graph returns the graph the resolver works on.
func (r *Resolver) Graph() *typegraph.Graph {
	return r.graph
}

// Resolve returns the ordered effective initializer set of the type: declared
// initializers, then synthesized memberwise and default initializers, then
// inherited designated initializers. Unknown ids resolve to nil.
func (r *Resolver) Resolve(id string) []*typegraph.Init {
	if set, ok := r.cache[id]; ok {
		return set
	}
	t, ok := r.graph.Lookup(id)
	if !ok || r.resolving[id] {
		return nil
	}
	r.resolving[id] = true
	defer delete(r.resolving, id)

	set := make([]*typegraph.Init, 0, len(t.Inits)+2)
	set = append(set, t.Inits...)

	if len(t.Inits) == 0 {
		switch t.Kind {
		case typegraph.KindStruct:
			if len(t.StoredProperties()) > 0 {
				set = append(set, r.memberwise(t, len(set)))
			}
		}
		if def, err := r.SynthesizeDefault(id); err == nil {
			def.Index = len(set)
			set = append(set, def)
		}
	}

	if t.Kind == typegraph.KindClass {
		set = append(set, r.inherited(t, set)...)
	}

	r.cache[id] = set
	return set
}

// SynthesizeDefault returns the zero-argument default initializer of the
// type or an error wrapping ErrNoDefaultInitializerEligible.
func (r *Resolver) SynthesizeDefault(id string) (*typegraph.Init, error) {
	if def, ok := r.defaults[id]; ok {
		return def, nil
	}
	t, ok := r.graph.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: unknown type %s", ErrNoDefaultInitializerEligible, id)
	}
	if reason := r.defaultIneligibility(t); reason != "" {
		return nil, fmt.Errorf("%w: %s %s", ErrNoDefaultInitializerEligible, id, reason)
	}
	def := &typegraph.Init{
		Role:   typegraph.RoleDesignated,
		Origin: typegraph.OriginDefault,
		Owner:  id,
	}
	if t.Kind == typegraph.KindClass && t.Superclass != "" {
		def.Body = []typegraph.Stmt{typegraph.SuperInit()}
	}
	r.defaults[id] = def
	return def, nil
}

// defaultIneligibility explains why a type gets no default initializer, or
// returns "" when it is eligible.
func (r *Resolver) defaultIneligibility(t *typegraph.TypeDecl) string {
	if len(t.Inits) > 0 {
		return "declares initializers"
	}
	switch t.Kind {
	case typegraph.KindEnum:
		if len(t.StoredProperties()) > 0 {
			return "has associated state"
		}
		return ""
	case typegraph.KindStruct:
		if p, ok := firstRequired(t); ok {
			return fmt.Sprintf("has no default value for %q", p.Name)
		}
		return ""
	case typegraph.KindClass:
		if p, ok := firstRequired(t); ok {
			return fmt.Sprintf("has no default value for %q", p.Name)
		}
		if t.Superclass == "" {
			return ""
		}
		if _, err := r.graph.SuperChain(t.ID()); err != nil {
			return "has a broken superclass chain"
		}
		for _, in := range r.Resolve(t.Superclass) {
			if in.Role == typegraph.RoleDesignated && CallableWithoutArgs(in) {
				return ""
			}
		}
		return fmt.Sprintf("inherits from %s which has no zero-argument designated initializer", t.Superclass)
	}
	return "has an unknown kind"
}

func (r *Resolver) memberwise(t *typegraph.TypeDecl, index int) *typegraph.Init {
	stored := t.StoredProperties()
	in := &typegraph.Init{
		Role:   typegraph.RoleDesignated,
		Origin: typegraph.OriginMemberwise,
		Owner:  t.ID(),
		Index:  index,
		Params: make([]typegraph.Param, 0, len(stored)),
		Body:   make([]typegraph.Stmt, 0, len(stored)),
	}
	for _, p := range stored {
		in.Params = append(in.Params, typegraph.Param{Name: p.Name, HasDefault: p.HasDefault})
		in.Body = append(in.Body, typegraph.Assign(p.Name))
	}
	return in
}

// inherited applies the automatic inheritance rule: a subclass that declares
// no designated initializer, overrides none, and defaults every new stored
// property inherits all designated initializers of its superclass.
func (r *Resolver) inherited(t *typegraph.TypeDecl, own []*typegraph.Init) []*typegraph.Init {
	if t.Superclass == "" || !t.AllDefaulted() {
		return nil
	}
	if _, err := r.graph.SuperChain(t.ID()); err != nil {
		return nil
	}
	for _, in := range t.Inits {
		if in.Role == typegraph.RoleDesignated || in.Override {
			return nil
		}
	}
	var out []*typegraph.Init
	for _, in := range r.Resolve(t.Superclass) {
		if in.Role != typegraph.RoleDesignated || collides(own, in) {
			continue
		}
		cp := *in
		cp.Origin = typegraph.OriginInherited
		cp.Index = len(own) + len(out)
		out = append(out, &cp)
	}
	return out
}

func collides(set []*typegraph.Init, in *typegraph.Init) bool {
	sig := in.Signature()
	for _, other := range set {
		if other.Signature().Equal(sig) {
			return true
		}
	}
	return false
}

func firstRequired(t *typegraph.TypeDecl) (typegraph.Property, bool) {
	for _, p := range t.Properties {
		if p.Required() {
			return p, true
		}
	}
	return typegraph.Property{}, false
}

// CallableWithoutArgs reports whether every parameter has a default.
func CallableWithoutArgs(in *typegraph.Init) bool {
	for _, p := range in.Params {
		if !p.HasDefault {
			return false
		}
	}
	return true
}

// Check reports resolver-level findings for one type: convenience
// initializers on value types and classes left without any designated
// initializer.
func (r *Resolver) Check(t *typegraph.TypeDecl, rep diag.Reporter) {
	id := t.ID()
	if t.Kind.IsValue() {
		for _, in := range t.Inits {
			if in.Role != typegraph.RoleConvenience {
				continue
			}
			loc := diag.Location{
				Type:        id,
				Initializer: in.ID(id),
				Order:       diag.Order{Type: t.Index, Init: in.Index, Stmt: -1},
			}
			diag.ReportError(rep, diag.ConvenienceInValueType, loc,
				fmt.Sprintf("%s %s cannot declare a convenience initializer; delegate with self.init from a plain initializer instead", t.Kind, id)).Emit()
		}
		return
	}

	for _, in := range r.Resolve(id) {
		if in.Role == typegraph.RoleDesignated {
			return
		}
	}
	b := diag.ReportError(rep, diag.NoDesignatedInitializer, diag.TypeLocation(id, t.Index),
		fmt.Sprintf("class %s has no designated initializer", id))
	if p, ok := firstRequired(t); ok {
		b.WithNote(fmt.Sprintf("stored property %q has no default value, so no initializer is inherited or synthesized", p.Name))
	}
	b.Emit()
}

// RequestDefault reports NoDefaultInitializerEligible when the caller asks
// for a default initializer the type cannot have.
func (r *Resolver) RequestDefault(t *typegraph.TypeDecl, rep diag.Reporter) *typegraph.Init {
	def, err := r.SynthesizeDefault(t.ID())
	if err != nil {
		diag.ReportError(rep, diag.NoDefaultInitializerEligible, diag.TypeLocation(t.ID(), t.Index), err.Error()).Emit()
		return nil
	}
	return def
}
