package typegraph

// Kind classifies a declared type.
type Kind uint8

const (
	KindStruct Kind = iota + 1
	KindEnum
	KindClass
)

func (k Kind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindClass:
		return "class"
	}
	return "unknown"
}

// IsValue reports whether k is a value type (struct or enum).
func (k Kind) IsValue() bool {
	return k == KindStruct || k == KindEnum
}

// Role says how an initializer participates in construction.
type Role uint8

const (
	RoleDesignated Role = iota
	RoleConvenience
)

func (r Role) String() string {
	if r == RoleConvenience {
		return "convenience"
	}
	return "designated"
}

// Failure is the orthogonal failure modifier of an initializer.
type Failure uint8

const (
	FailureNone Failure = iota
	FailureFailable
	FailureThrowing
)

func (f Failure) String() string {
	switch f {
	case FailureFailable:
		return "failable"
	case FailureThrowing:
		return "throwing"
	}
	return "none"
}

// Origin records where an entry of a resolved initializer set came from.
type Origin uint8

const (
	OriginDeclared Origin = iota
	OriginMemberwise
	OriginDefault
	OriginInherited
)

func (o Origin) String() string {
	switch o {
	case OriginMemberwise:
		return "memberwise"
	case OriginDefault:
		return "default"
	case OriginInherited:
		return "inherited"
	}
	return "declared"
}

// Synthesized reports whether the entry was produced by the resolver rather
// than written by the user.
func (o Origin) Synthesized() bool {
	return o == OriginMemberwise || o == OriginDefault
}

// Property is a member of a type. Computed members are kept for completeness
// but never take part in initialization.
type Property struct {
	Name       string
	HasDefault bool
	Mutable    bool
	Computed   bool
}

// Stored reports whether the property carries stored state.
func (p Property) Stored() bool {
	return !p.Computed
}

// Required reports whether an initializer must assign the property.
func (p Property) Required() bool {
	return p.Stored() && !p.HasDefault
}

// Param is one initializer parameter. Label "_" marks an unlabeled parameter.
type Param struct {
	Label      string
	Name       string
	HasDefault bool
}

// ExternalLabel returns the label used at call sites.
func (p Param) ExternalLabel() string {
	if p.Label == "" {
		return p.Name
	}
	return p.Label
}

// Init is a declared, synthesized or inherited initializer.
type Init struct {
	Role     Role
	Failure  Failure
	Params   []Param
	Body     []Stmt
	Override bool

	// Origin and Owner are filled by the resolver for synthesized and
	// inherited entries. Declared initializers have Origin == OriginDeclared
	// and Owner == "" (the declaring type).
	Origin Origin
	Owner  string
	// Index is the declaration index within the owning type.
	Index int
}

// Delegating reports whether the body contains a SelfInit call.
func (in *Init) Delegating() bool {
	for _, st := range in.Body {
		if st.Kind == StmtDelegate && st.Target == TargetSelf {
			return true
		}
	}
	return false
}

// Labels returns the external labels of all parameters.
func (in *Init) Labels() []string {
	out := make([]string, len(in.Params))
	for i, p := range in.Params {
		out[i] = p.ExternalLabel()
	}
	return out
}

// TypeDecl is a declared struct, enum or class.
type TypeDecl struct {
	Name       string
	Module     string
	Kind       Kind
	Properties []Property
	Inits      []*Init
	// Superclass is the qualified id of the supertype. It is a name
	// reference resolved through Graph.Lookup, not an owned declaration.
	Superclass string

	// Index is the position in declaration order.
	Index int
}

// ID returns the qualified id of the type.
func (t *TypeDecl) ID() string {
	return QualifiedID(t.Module, t.Name)
}

// Property looks up an own property by name.
func (t *TypeDecl) Property(name string) (Property, int, bool) {
	for i, p := range t.Properties {
		if p.Name == name {
			return p, i, true
		}
	}
	return Property{}, -1, false
}

// StoredProperties returns the stored properties in declaration order.
func (t *TypeDecl) StoredProperties() []Property {
	out := make([]Property, 0, len(t.Properties))
	for _, p := range t.Properties {
		if p.Stored() {
			out = append(out, p)
		}
	}
	return out
}

// AllDefaulted reports whether every stored property has a default value.
func (t *TypeDecl) AllDefaulted() bool {
	for _, p := range t.Properties {
		if p.Required() {
			return false
		}
	}
	return true
}

// QualifiedID joins module and name.
func QualifiedID(module, name string) string {
	if module == "" {
		return name
	}
	return module + "." + name
}
