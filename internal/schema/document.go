package schema

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Document is the top-level decoded form of a type graph.
type Document struct {
	Types []TypeSpec `json:"types" yaml:"types" toml:"types" msgpack:"types" validate:"dive"`
}

// TypeSpec declares one struct, enum or class.
type TypeSpec struct {
	Name         string         `json:"name" yaml:"name" toml:"name" msgpack:"name" validate:"required,ident"`
	Module       string         `json:"module,omitempty" yaml:"module,omitempty" toml:"module,omitempty" msgpack:"module,omitempty" validate:"omitempty,qualified"`
	Kind         string         `json:"kind" yaml:"kind" toml:"kind" msgpack:"kind" validate:"required,oneof=struct enum class"`
	Superclass   string         `json:"superclass,omitempty" yaml:"superclass,omitempty" toml:"superclass,omitempty" msgpack:"superclass,omitempty" validate:"omitempty,qualified"`
	Properties   []PropertySpec `json:"properties,omitempty" yaml:"properties,omitempty" toml:"properties,omitempty" msgpack:"properties,omitempty" validate:"unique=Name,dive"`
	Initializers []InitSpec     `json:"initializers,omitempty" yaml:"initializers,omitempty" toml:"initializers,omitempty" msgpack:"initializers,omitempty" validate:"dive"`
}

type PropertySpec struct {
	Name     string `json:"name" yaml:"name" toml:"name" msgpack:"name" validate:"required,ident"`
	Default  bool   `json:"default,omitempty" yaml:"default,omitempty" toml:"default,omitempty" msgpack:"default,omitempty"`
	Mutable  bool   `json:"mutable,omitempty" yaml:"mutable,omitempty" toml:"mutable,omitempty" msgpack:"mutable,omitempty"`
	Computed bool   `json:"computed,omitempty" yaml:"computed,omitempty" toml:"computed,omitempty" msgpack:"computed,omitempty"`
}

// InitSpec declares one initializer. Empty Role and Failure mean
// designated and none.
type InitSpec struct {
	Role     string      `json:"role,omitempty" yaml:"role,omitempty" toml:"role,omitempty" msgpack:"role,omitempty" validate:"omitempty,oneof=designated convenience"`
	Failure  string      `json:"failure,omitempty" yaml:"failure,omitempty" toml:"failure,omitempty" msgpack:"failure,omitempty" validate:"omitempty,oneof=none failable throwing"`
	Override bool        `json:"override,omitempty" yaml:"override,omitempty" toml:"override,omitempty" msgpack:"override,omitempty"`
	Params   []ParamSpec `json:"params,omitempty" yaml:"params,omitempty" toml:"params,omitempty" msgpack:"params,omitempty" validate:"dive"`
	Body     []StmtSpec  `json:"body,omitempty" yaml:"body,omitempty" toml:"body,omitempty" msgpack:"body,omitempty" validate:"dive"`
}

// ParamSpec is one parameter. Label "_" marks an unlabeled parameter; an
// empty label uses the name.
type ParamSpec struct {
	Label   string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty" msgpack:"label,omitempty" validate:"omitempty,label"`
	Name    string `json:"name" yaml:"name" toml:"name" msgpack:"name" validate:"required,ident"`
	Default bool   `json:"default,omitempty" yaml:"default,omitempty" toml:"default,omitempty" msgpack:"default,omitempty"`
}

// Op names accepted in StmtSpec.Op.
const (
	OpAssign    = "assign"
	OpSelfInit  = "self.init"
	OpSuperInit = "super.init"
	OpReturnNil = "return-nil"
	OpThrow     = "throw"
	OpEffect    = "effect"
)

// StmtSpec is one body statement.
type StmtSpec struct {
	Op            string   `json:"op" yaml:"op" toml:"op" msgpack:"op" validate:"required,oneof=assign self.init super.init return-nil throw effect"`
	Property      string   `json:"property,omitempty" yaml:"property,omitempty" toml:"property,omitempty" msgpack:"property,omitempty" validate:"required_if=Op assign,omitempty,ident"`
	Args          []string `json:"args,omitempty" yaml:"args,omitempty" toml:"args,omitempty" msgpack:"args,omitempty" validate:"dive,label"`
	Error         string   `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty" msgpack:"error,omitempty"`
	Unconditional bool     `json:"unconditional,omitempty" yaml:"unconditional,omitempty" toml:"unconditional,omitempty" msgpack:"unconditional,omitempty"`
	Text          string   `json:"text,omitempty" yaml:"text,omitempty" toml:"text,omitempty" msgpack:"text,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
		return isIdent(fl.Field().String())
	})
	_ = validate.RegisterValidation("qualified", func(fl validator.FieldLevel) bool {
		for _, part := range strings.Split(fl.Field().String(), ".") {
			if !isIdent(part) {
				return false
			}
		}
		return true
	})
	_ = validate.RegisterValidation("label", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || s == "_" || isIdent(s)
	})
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)):
		default:
			return false
		}
	}
	return true
}
