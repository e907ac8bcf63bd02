package diag

// Order positions a diagnostic in output order: type declaration index, then
// initializer index inside the resolved set, then statement index. -1 marks
// a finding that is not attached to an initializer or statement.
type Order struct {
	Type int
	Init int
	Stmt int
}

func (o Order) Less(other Order) bool {
	if o.Type != other.Type {
		return o.Type < other.Type
	}
	if o.Init != other.Init {
		return o.Init < other.Init
	}
	return o.Stmt < other.Stmt
}

// Location says where a finding belongs.
type Location struct {
	Type        string
	Initializer string
	Property    string
	Order       Order
}

// TypeLocation addresses a whole type.
func TypeLocation(typeID string, typeIndex int) Location {
	return Location{Type: typeID, Order: Order{Type: typeIndex, Init: -1, Stmt: -1}}
}

// WithProperty returns a copy naming a property.
func (l Location) WithProperty(name string) Location {
	l.Property = name
	return l
}

// AtStmt returns a copy pointing at statement i.
func (l Location) AtStmt(i int) Location {
	l.Order.Stmt = i
	return l
}

type Note struct {
	Msg string
}

type Diagnostic struct {
	Severity    Severity
	Code        Code
	Type        string
	Initializer string
	Property    string
	Message     string
	Notes       []Note
	Order       Order
}

// Location returns the location the diagnostic was reported at.
func (d Diagnostic) Location() Location {
	return Location{Type: d.Type, Initializer: d.Initializer, Property: d.Property, Order: d.Order}
}

// Subject is the most specific thing the diagnostic is about.
func (d Diagnostic) Subject() string {
	if d.Initializer != "" {
		return d.Initializer
	}
	return d.Type
}

func New(sev Severity, code Code, loc Location, msg string) Diagnostic {
	return Diagnostic{
		Severity:    sev,
		Code:        code,
		Type:        loc.Type,
		Initializer: loc.Initializer,
		Property:    loc.Property,
		Message:     msg,
		Order:       loc.Order,
	}
}

func (d Diagnostic) WithNote(msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Msg: msg})
	return d
}
