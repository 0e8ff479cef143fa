// Package ast holds the typed IR handed over by the front end: resolved
// type definitions, expression and pattern trees annotated with their
// types, and literal spellings exactly as authored.
//
// The tree is immutable input to the backend. Nothing in this package
// infers or rewrites; it only describes.
package ast

import (
	"github.com/funvibe/fsgen/internal/token"
	"github.com/funvibe/fsgen/internal/typesystem"
)

// Node is the base interface for all IR nodes.
type Node interface {
	GetToken() token.Token
}

// Definition is a top-level declaration of a module.
type Definition interface {
	Node
	definitionNode()
}

// Statement is a member of a function body or block.
type Statement interface {
	Node
	statementNode()
}

// Expression is a typed expression.
type Expression interface {
	Node
	expressionNode()
	GetType() typesystem.Type
}

// Pattern is a typed pattern.
type Pattern interface {
	Node
	patternNode()
}

// Publicity of a definition.
type Publicity int

const (
	Public Publicity = iota
	Internal
	Private
)

// Module is one compilation unit.
type Module struct {
	Token       token.Token
	Name        string // slash separated, e.g. "app/shapes"
	Definitions []Definition
}

func (m *Module) GetToken() token.Token { return m.Token }

// Import brings another module into scope.
type Import struct {
	Token  token.Token
	Module string
}

func (i *Import) definitionNode()       {}
func (i *Import) GetToken() token.Token { return i.Token }

// CustomType is a sum type; each constructor is one variant.
type CustomType struct {
	Token        token.Token
	Name         string
	Params       []string
	Publicity    Publicity
	Opaque       bool
	Doc          string
	Constructors []*Constructor
}

func (ct *CustomType) definitionNode()       {}
func (ct *CustomType) GetToken() token.Token { return ct.Token }

// Constructor is one variant of a custom type. Fields are positional;
// labels are optional and may differ between variants.
type Constructor struct {
	Token  token.Token
	Name   string
	Fields []*Field
}

func (c *Constructor) GetToken() token.Token { return c.Token }

// FieldIndex returns the position of a labelled field, or -1.
func (c *Constructor) FieldIndex(label string) int {
	for i, f := range c.Fields {
		if f.Label == label {
			return i
		}
	}
	return -1
}

// Field is a constructor argument.
type Field struct {
	Label string // empty when unlabelled
	Type  typesystem.Type
}

// TypeAlias names another type.
type TypeAlias struct {
	Token     token.Token
	Name      string
	Params    []string
	Publicity Publicity
	Type      typesystem.Type
}

func (ta *TypeAlias) definitionNode()       {}
func (ta *TypeAlias) GetToken() token.Token { return ta.Token }

// ModuleConstant is a module level `const`.
type ModuleConstant struct {
	Token     token.Token
	Name      string
	Publicity Publicity
	Doc       string
	Value     Expression
}

func (mc *ModuleConstant) definitionNode()       {}
func (mc *ModuleConstant) GetToken() token.Token { return mc.Token }

// Function is a module function. Body is empty for externals.
type Function struct {
	Token      token.Token
	Name       string
	Publicity  Publicity
	Doc        string
	Deprecated string // deprecation message, empty when not deprecated
	Params     []*Param
	ReturnType typesystem.Type
	Body       []Statement
	External   *External
}

func (f *Function) definitionNode()       {}
func (f *Function) GetToken() token.Token { return f.Token }

// Param is a function parameter. An empty Name is a discard.
type Param struct {
	Name string
	Type typesystem.Type
}

// External points a function at an F# implementation.
type External struct {
	Module   string
	Function string
}
