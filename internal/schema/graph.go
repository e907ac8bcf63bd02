package schema

import (
	"fmt"

	"initcheck/internal/typegraph"
)

// Graph builds the type graph. Duplicate qualified ids are an error; all
// other semantic problems are left to the checker.
func (d *Document) Graph() (*typegraph.Graph, error) {
	b := typegraph.NewBuilder()
	for i := range d.Types {
		t, err := d.Types[i].decl()
		if err != nil {
			return nil, fmt.Errorf("types[%d]: %w", i, err)
		}
		if err := b.Add(t); err != nil {
			return nil, fmt.Errorf("types[%d]: %w", i, err)
		}
	}
	return b.Build(), nil
}

func (s *TypeSpec) decl() (*typegraph.TypeDecl, error) {
	t := &typegraph.TypeDecl{Name: s.Name, Module: s.Module, Superclass: s.Superclass}
	switch s.Kind {
	case "struct":
		t.Kind = typegraph.KindStruct
	case "enum":
		t.Kind = typegraph.KindEnum
	case "class":
		t.Kind = typegraph.KindClass
	default:
		return nil, fmt.Errorf("unknown kind %q", s.Kind)
	}
	t.Properties = make([]typegraph.Property, len(s.Properties))
	for i, p := range s.Properties {
		t.Properties[i] = typegraph.Property{Name: p.Name, HasDefault: p.Default, Mutable: p.Mutable, Computed: p.Computed}
	}
	t.Inits = make([]*typegraph.Init, len(s.Initializers))
	for i := range s.Initializers {
		in, err := s.Initializers[i].init()
		if err != nil {
			return nil, fmt.Errorf("initializers[%d]: %w", i, err)
		}
		t.Inits[i] = in
	}
	return t, nil
}

func (s *InitSpec) init() (*typegraph.Init, error) {
	in := &typegraph.Init{Override: s.Override}
	switch s.Role {
	case "", "designated":
		in.Role = typegraph.RoleDesignated
	case "convenience":
		in.Role = typegraph.RoleConvenience
	default:
		return nil, fmt.Errorf("unknown role %q", s.Role)
	}
	switch s.Failure {
	case "", "none":
		in.Failure = typegraph.FailureNone
	case "failable":
		in.Failure = typegraph.FailureFailable
	case "throwing":
		in.Failure = typegraph.FailureThrowing
	default:
		return nil, fmt.Errorf("unknown failure %q", s.Failure)
	}
	in.Params = make([]typegraph.Param, len(s.Params))
	for i, p := range s.Params {
		in.Params[i] = typegraph.Param{Label: p.Label, Name: p.Name, HasDefault: p.Default}
	}
	in.Body = make([]typegraph.Stmt, len(s.Body))
	for i, st := range s.Body {
		stmt, err := st.stmt()
		if err != nil {
			return nil, fmt.Errorf("body[%d]: %w", i, err)
		}
		in.Body[i] = stmt
	}
	return in, nil
}

func (s StmtSpec) stmt() (typegraph.Stmt, error) {
	var st typegraph.Stmt
	switch s.Op {
	case OpAssign:
		st = typegraph.Assign(s.Property)
	case OpSelfInit:
		st = typegraph.SelfInit(s.Args...)
	case OpSuperInit:
		st = typegraph.SuperInit(s.Args...)
	case OpReturnNil:
		st = typegraph.ReturnNil()
	case OpThrow:
		st = typegraph.Throw(s.Error)
	case OpEffect:
		st = typegraph.Effect(s.Text)
	default:
		return st, fmt.Errorf("unknown op %q", s.Op)
	}
	if st.IsExit() {
		st.Unconditional = s.Unconditional
	}
	return st, nil
}

// FromGraph converts a graph back into its document form. Only declared
// initializers are written.
func FromGraph(g *typegraph.Graph) *Document {
	doc := &Document{Types: make([]TypeSpec, 0, g.Len())}
	for _, t := range g.Types() {
		ts := TypeSpec{Name: t.Name, Module: t.Module, Kind: t.Kind.String(), Superclass: t.Superclass}
		for _, p := range t.Properties {
			ts.Properties = append(ts.Properties, PropertySpec{Name: p.Name, Default: p.HasDefault, Mutable: p.Mutable, Computed: p.Computed})
		}
		for _, in := range t.Inits {
			is := InitSpec{Role: in.Role.String(), Failure: in.Failure.String(), Override: in.Override}
			for _, p := range in.Params {
				is.Params = append(is.Params, ParamSpec{Label: p.Label, Name: p.Name, Default: p.HasDefault})
			}
			for _, st := range in.Body {
				is.Body = append(is.Body, specOf(st))
			}
			ts.Initializers = append(ts.Initializers, is)
		}
		doc.Types = append(doc.Types, ts)
	}
	return doc
}

func specOf(st typegraph.Stmt) StmtSpec {
	switch st.Kind {
	case typegraph.StmtAssign:
		return StmtSpec{Op: OpAssign, Property: st.Property}
	case typegraph.StmtDelegate:
		s := StmtSpec{Op: OpSelfInit}
		if st.Target == typegraph.TargetSuper {
			s.Op = OpSuperInit
		}
		for _, a := range st.Args {
			s.Args = append(s.Args, a.Label)
		}
		return s
	case typegraph.StmtReturnNil:
		return StmtSpec{Op: OpReturnNil, Unconditional: st.Unconditional}
	case typegraph.StmtThrow:
		return StmtSpec{Op: OpThrow, Error: st.Error, Unconditional: st.Unconditional}
	}
	return StmtSpec{Op: OpEffect, Text: st.Text}
}
