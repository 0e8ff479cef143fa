package typesystem

import (
	"fmt"
	"strings"

	"github.com/funvibe/fsgen/internal/config"
)

// Type is a fully resolved type as handed over by the type checker.
// Nothing here is inferred: the backend only inspects and prints types.
type Type interface {
	String() string
	typeNode()
}

// TVar represents a generic type parameter (e.g. 'a').
type TVar struct {
	Name string
}

func (t TVar) typeNode()      {}
func (t TVar) String() string { return t.Name }

// TCon represents a named type, optionally applied to arguments.
// Module is empty for prelude types.
type TCon struct {
	Module string
	Name   string
	Args   []Type
}

func (t TCon) typeNode() {}

func (t TCon) String() string {
	name := t.Name
	if t.Module != "" {
		name = t.Module + "." + name
	}
	if len(t.Args) == 0 {
		return name
	}
	args := make([]string, 0, len(t.Args))
	for _, a := range t.Args {
		args = append(args, a.String())
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(args, ", "))
}

// TTuple represents a tuple type (e.g. #(Int, Bool)).
type TTuple struct {
	Elements []Type
}

func (t TTuple) typeNode() {}

func (t TTuple) String() string {
	args := []string{}
	for _, el := range t.Elements {
		args = append(args, el.String())
	}
	return fmt.Sprintf("#(%s)", strings.Join(args, ", "))
}

// TFunc represents a function type (e.g. fn(Int, Int) -> Bool).
type TFunc struct {
	Params     []Type
	ReturnType Type
}

func (t TFunc) typeNode() {}

func (t TFunc) String() string {
	params := []string{}
	for _, p := range t.Params {
		params = append(params, p.String())
	}
	ret := "?"
	if t.ReturnType != nil {
		ret = t.ReturnType.String()
	}
	return fmt.Sprintf("fn(%s) -> %s", strings.Join(params, ", "), ret)
}

// Equal reports structural equality of two resolved types.
func Equal(a, b Type) bool {
	switch x := a.(type) {
	case TVar:
		y, ok := b.(TVar)
		return ok && x.Name == y.Name
	case TCon:
		y, ok := b.(TCon)
		return ok && x.Module == y.Module && x.Name == y.Name && equalAll(x.Args, y.Args)
	case TTuple:
		y, ok := b.(TTuple)
		return ok && equalAll(x.Elements, y.Elements)
	case TFunc:
		y, ok := b.(TFunc)
		return ok && equalAll(x.Params, y.Params) && Equal(x.ReturnType, y.ReturnType)
	case nil:
		return b == nil
	}
	return false
}

func equalAll(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func isPrelude(t Type, name string) bool {
	c, ok := t.(TCon)
	return ok && c.Module == "" && c.Name == name
}

func IsNil(t Type) bool      { return isPrelude(t, config.NilTypeName) }
func IsBool(t Type) bool     { return isPrelude(t, config.BoolTypeName) }
func IsInt(t Type) bool      { return isPrelude(t, config.IntTypeName) }
func IsFloat(t Type) bool    { return isPrelude(t, config.FloatTypeName) }
func IsString(t Type) bool   { return isPrelude(t, config.StringTypeName) }
func IsBitArray(t Type) bool { return isPrelude(t, config.BitArrayTypeName) }

// IsFunc reports whether t is a function type.
func IsFunc(t Type) bool {
	_, ok := t.(TFunc)
	return ok
}

// Named returns the constructor of a named type.
func Named(t Type) (TCon, bool) {
	c, ok := t.(TCon)
	return c, ok
}

// TupleArity returns the arity of a tuple type, or -1.
func TupleArity(t Type) int {
	if tt, ok := t.(TTuple); ok {
		return len(tt.Elements)
	}
	return -1
}
