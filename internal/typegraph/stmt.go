package typegraph

import "strings"

// StmtKind tags a Stmt variant.
type StmtKind uint8

const (
	StmtAssign StmtKind = iota + 1
	StmtDelegate
	StmtReturnNil
	StmtThrow
	StmtEffect
)

func (k StmtKind) String() string {
	switch k {
	case StmtAssign:
		return "assign"
	case StmtDelegate:
		return "delegate"
	case StmtReturnNil:
		return "return-nil"
	case StmtThrow:
		return "throw"
	case StmtEffect:
		return "effect"
	}
	return "unknown"
}

// Target is the receiver of a delegation call.
type Target uint8

const (
	TargetSelf Target = iota + 1
	TargetSuper
)

func (t Target) String() string {
	switch t {
	case TargetSelf:
		return "self.init"
	case TargetSuper:
		return "super.init"
	}
	return "unknown"
}

// Arg is a delegation call argument; only the label matters for matching.
// Label "_" or "" passes an unlabeled argument.
type Arg struct {
	Label string
}

// Stmt is one statement of an initializer body. Only the fields relevant to
// Kind are set.
type Stmt struct {
	Kind StmtKind

	// StmtAssign
	Property string

	// StmtDelegate
	Target Target
	Args   []Arg

	// StmtThrow
	Error string

	// StmtReturnNil, StmtThrow. A guarded exit (the default) splits the path:
	// the exit path terminates and the fall-through path continues.
	Unconditional bool

	// StmtEffect
	Text string
}

// IsExit reports whether the statement is an early exit.
func (s Stmt) IsExit() bool {
	return s.Kind == StmtReturnNil || s.Kind == StmtThrow
}

func Assign(prop string) Stmt { return Stmt{Kind: StmtAssign, Property: prop} }

func SelfInit(labels ...string) Stmt {
	return Stmt{Kind: StmtDelegate, Target: TargetSelf, Args: argsOf(labels)}
}

func SuperInit(labels ...string) Stmt {
	return Stmt{Kind: StmtDelegate, Target: TargetSuper, Args: argsOf(labels)}
}

func ReturnNil() Stmt { return Stmt{Kind: StmtReturnNil} }

func Throw(errValue string) Stmt { return Stmt{Kind: StmtThrow, Error: errValue} }

func Effect(text string) Stmt { return Stmt{Kind: StmtEffect, Text: text} }

func argsOf(labels []string) []Arg {
	if len(labels) == 0 {
		return nil
	}
	out := make([]Arg, len(labels))
	for i, l := range labels {
		out[i] = Arg{Label: l}
	}
	return out
}

func (s Stmt) String() string {
	switch s.Kind {
	case StmtAssign:
		return "self." + s.Property + " = …"
	case StmtDelegate:
		labels := make([]string, len(s.Args))
		for i, a := range s.Args {
			labels[i] = normLabel(a.Label) + ":"
		}
		return s.Target.String() + "(" + strings.Join(labels, "") + ")"
	case StmtReturnNil:
		return "return nil"
	case StmtThrow:
		return "throw " + s.Error
	case StmtEffect:
		return s.Text
	}
	return "?"
}

func normLabel(l string) string {
	if l == "" {
		return "_"
	}
	return l
}
