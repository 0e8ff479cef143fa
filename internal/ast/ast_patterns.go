package ast

import (
	"github.com/funvibe/fsgen/internal/token"
	"github.com/funvibe/fsgen/internal/typesystem"
)

// IntPattern matches an integer literal.
type IntPattern struct {
	Token token.Token
	Value int64
}

func (p *IntPattern) patternNode()          {}
func (p *IntPattern) GetToken() token.Token { return p.Token }

// FloatPattern matches a float literal.
type FloatPattern struct {
	Token token.Token
	Value string
}

func (p *FloatPattern) patternNode()          {}
func (p *FloatPattern) GetToken() token.Token { return p.Token }

// StringPattern matches a string literal; Value is the authored spelling.
type StringPattern struct {
	Token token.Token
	Value string
}

func (p *StringPattern) patternNode()          {}
func (p *StringPattern) GetToken() token.Token { return p.Token }

// VarPattern binds the subject to Name.
type VarPattern struct {
	Token token.Token
	Name  string
	Typ   typesystem.Type
}

func (p *VarPattern) patternNode()          {}
func (p *VarPattern) GetToken() token.Token { return p.Token }

// DiscardPattern matches anything. Name keeps the authored `_name`.
type DiscardPattern struct {
	Token token.Token
	Name  string
}

func (p *DiscardPattern) patternNode()          {}
func (p *DiscardPattern) GetToken() token.Token { return p.Token }

// AssignPattern is `P as name`.
type AssignPattern struct {
	Token   token.Token
	Name    string
	Pattern Pattern
}

func (p *AssignPattern) patternNode()          {}
func (p *AssignPattern) GetToken() token.Token { return p.Token }

// ListPattern is `[a, b, ..tail]`. Tail is nil for an exact-length list.
type ListPattern struct {
	Token    token.Token
	Elements []Pattern
	Tail     Pattern
}

func (p *ListPattern) patternNode()          {}
func (p *ListPattern) GetToken() token.Token { return p.Token }

// TuplePattern is `#(a, b)`.
type TuplePattern struct {
	Token    token.Token
	Elements []Pattern
}

func (p *TuplePattern) patternNode()          {}
func (p *TuplePattern) GetToken() token.Token { return p.Token }

// StringPrefixPattern is `"pre" as p <> rest`. Prefix is the authored
// spelling. PrefixName is empty when the prefix is not bound; Rest is
// empty when the remainder is discarded.
type StringPrefixPattern struct {
	Token      token.Token
	Prefix     string
	PrefixName string
	Rest       string
}

func (p *StringPrefixPattern) patternNode()          {}
func (p *StringPrefixPattern) GetToken() token.Token { return p.Token }

// ConstructorPattern matches a variant. Args are positional after the
// front end has resolved labels; Spread marks a trailing `..`.
type ConstructorPattern struct {
	Token       token.Token
	Constructor *ConstructorInfo
	Args        []*PatternArg
	Spread      bool
	Typ         typesystem.Type
}

func (p *ConstructorPattern) patternNode()          {}
func (p *ConstructorPattern) GetToken() token.Token { return p.Token }

// PatternArg is one constructor pattern argument.
type PatternArg struct {
	Label string
	Value Pattern
}

// ConstantPattern matches the value of a module constant.
type ConstantPattern struct {
	Token  token.Token
	Name   string
	Module string
	Value  Expression
}

func (p *ConstantPattern) patternNode()          {}
func (p *ConstantPattern) GetToken() token.Token { return p.Token }

// BitArrayPattern destructures a bit array.
type BitArrayPattern struct {
	Token    token.Token
	Segments []*PatternSegment
}

func (p *BitArrayPattern) patternNode()          {}
func (p *BitArrayPattern) GetToken() token.Token { return p.Token }
