package fsharp

import (
	"strings"

	"github.com/funvibe/fsgen/internal/config"
	"github.com/funvibe/fsgen/internal/typesystem"
)

var preludeTypes = map[string]string{
	config.IntTypeName:       "int64",
	config.FloatTypeName:     "float",
	config.StringTypeName:    "string",
	config.BoolTypeName:      "bool",
	config.NilTypeName:       "unit",
	config.BitArrayTypeName:  "BitArray",
	config.CodepointTypeName: "int",
}

// typeName renders a resolved type as F# type syntax.
func (u *Unit) typeName(t typesystem.Type) string {
	switch t := t.(type) {
	case typesystem.TVar:
		return "'" + t.Name
	case typesystem.TCon:
		if t.Module == "" {
			if name, ok := preludeTypes[t.Name]; ok && len(t.Args) == 0 {
				return name
			}
			if t.Name == config.ListTypeName && len(t.Args) == 1 {
				return "list<" + u.typeName(t.Args[0]) + ">"
			}
		}
		name := u.qualify(t.Module, t.Name)
		if len(t.Args) == 0 {
			return name
		}
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = u.typeName(a)
		}
		return name + "<" + strings.Join(args, ", ") + ">"
	case typesystem.TTuple:
		if len(t.Elements) == 0 {
			return "unit"
		}
		elems := make([]string, len(t.Elements))
		for i, e := range t.Elements {
			elems[i] = u.argTypeName(e)
		}
		return "(" + strings.Join(elems, " * ") + ")"
	case typesystem.TFunc:
		parts := make([]string, 0, len(t.Params)+1)
		if len(t.Params) == 0 {
			parts = append(parts, "unit")
		}
		for _, p := range t.Params {
			parts = append(parts, u.argTypeName(p))
		}
		parts = append(parts, u.typeName(t.ReturnType))
		return strings.Join(parts, " -> ")
	case nil:
		return "_"
	}
	return "_"
}

// argTypeName is typeName for positions where a function type must be
// parenthesised: parameters of a function type, tuple elements and union
// case fields.
func (u *Unit) argTypeName(t typesystem.Type) string {
	s := u.typeName(t)
	if typesystem.IsFunc(t) {
		return "(" + s + ")"
	}
	return s
}
