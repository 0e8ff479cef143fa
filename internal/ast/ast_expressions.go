package ast

import (
	"github.com/funvibe/fsgen/internal/token"
	"github.com/funvibe/fsgen/internal/typesystem"
)

// IntLiteral is an integer literal, already range-checked by the front end.
type IntLiteral struct {
	Token token.Token
	Value int64
	Typ   typesystem.Type
}

func (il *IntLiteral) expressionNode()          {}
func (il *IntLiteral) GetToken() token.Token    { return il.Token }
func (il *IntLiteral) GetType() typesystem.Type { return il.Typ }

// FloatLiteral keeps the authored digits.
type FloatLiteral struct {
	Token token.Token
	Value string
	Typ   typesystem.Type
}

func (fl *FloatLiteral) expressionNode()          {}
func (fl *FloatLiteral) GetToken() token.Token    { return fl.Token }
func (fl *FloatLiteral) GetType() typesystem.Type { return fl.Typ }

// StringLiteral keeps the escape spelling exactly as authored, without
// the surrounding quotes.
type StringLiteral struct {
	Token token.Token
	Value string
	Typ   typesystem.Type
}

func (sl *StringLiteral) expressionNode()          {}
func (sl *StringLiteral) GetToken() token.Token    { return sl.Token }
func (sl *StringLiteral) GetType() typesystem.Type { return sl.Typ }

// VarKind tells what a variable reference resolved to.
type VarKind int

const (
	LocalVar VarKind = iota
	ModuleFn
	ModuleConst
	ConstructorRef
)

// Var is a resolved reference.
type Var struct {
	Token       token.Token
	Name        string
	Module      string // qualifying module for imported names
	Kind        VarKind
	Constructor *ConstructorInfo // set when Kind == ConstructorRef
	Typ         typesystem.Type
}

func (v *Var) expressionNode()          {}
func (v *Var) GetToken() token.Token    { return v.Token }
func (v *Var) GetType() typesystem.Type { return v.Typ }

// ConstructorInfo describes the variant a constructor reference builds or
// matches.
type ConstructorInfo struct {
	TypeName   string
	TypeModule string
	Name       string
	Labels     []string // one entry per field, "" when unlabelled
	// Variants is the total number of variants of the owning type.
	Variants int
}

// IsRecord reports whether the owning type lowers to an F# record: a
// single variant named after its type whose fields are all labelled.
func (ci *ConstructorInfo) IsRecord() bool {
	if ci == nil || ci.Variants != 1 || ci.Name != ci.TypeName || len(ci.Labels) == 0 {
		return false
	}
	for _, l := range ci.Labels {
		if l == "" {
			return false
		}
	}
	return true
}

// Call applies a function (or constructor) to arguments.
type Call struct {
	Token token.Token
	Fun   Expression
	Args  []Expression
	Typ   typesystem.Type
}

func (c *Call) expressionNode()          {}
func (c *Call) GetToken() token.Token    { return c.Token }
func (c *Call) GetType() typesystem.Type { return c.Typ }

// Fn is an anonymous function.
type Fn struct {
	Token  token.Token
	Params []*Param
	Body   []Statement
	Typ    typesystem.Type
}

func (f *Fn) expressionNode()          {}
func (f *Fn) GetToken() token.Token    { return f.Token }
func (f *Fn) GetType() typesystem.Type { return f.Typ }

// List is a list literal, optionally prepended to a tail: [a, b, ..tail].
type List struct {
	Token    token.Token
	Elements []Expression
	Tail     Expression
	Typ      typesystem.Type
}

func (l *List) expressionNode()          {}
func (l *List) GetToken() token.Token    { return l.Token }
func (l *List) GetType() typesystem.Type { return l.Typ }

// Tuple is a tuple literal.
type Tuple struct {
	Token    token.Token
	Elements []Expression
	Typ      typesystem.Type
}

func (t *Tuple) expressionNode()          {}
func (t *Tuple) GetToken() token.Token    { return t.Token }
func (t *Tuple) GetType() typesystem.Type { return t.Typ }

// TupleIndex reads element Index (zero based) of a tuple.
type TupleIndex struct {
	Token token.Token
	Tuple Expression
	Index int
	Typ   typesystem.Type
}

func (ti *TupleIndex) expressionNode()          {}
func (ti *TupleIndex) GetToken() token.Token    { return ti.Token }
func (ti *TupleIndex) GetType() typesystem.Type { return ti.Typ }

// BinOperator enumerates the typed binary operators.
type BinOperator string

const (
	OpAnd         BinOperator = "&&"
	OpOr          BinOperator = "||"
	OpEq          BinOperator = "=="
	OpNotEq       BinOperator = "!="
	OpLtInt       BinOperator = "<"
	OpLtEqInt     BinOperator = "<="
	OpGtInt       BinOperator = ">"
	OpGtEqInt     BinOperator = ">="
	OpLtFloat     BinOperator = "<."
	OpLtEqFloat   BinOperator = "<=."
	OpGtFloat     BinOperator = ">."
	OpGtEqFloat   BinOperator = ">=."
	OpAddInt      BinOperator = "+"
	OpAddFloat    BinOperator = "+."
	OpSubInt      BinOperator = "-"
	OpSubFloat    BinOperator = "-."
	OpMultInt     BinOperator = "*"
	OpMultFloat   BinOperator = "*."
	OpDivInt      BinOperator = "/"
	OpDivFloat    BinOperator = "/."
	OpRemainder   BinOperator = "%"
	OpConcatenate BinOperator = "<>"
)

// BinOp is a binary operation.
type BinOp struct {
	Token token.Token
	Op    BinOperator
	Left  Expression
	Right Expression
	Typ   typesystem.Type
}

func (b *BinOp) expressionNode()          {}
func (b *BinOp) GetToken() token.Token    { return b.Token }
func (b *BinOp) GetType() typesystem.Type { return b.Typ }

// NegateInt is unary integer negation.
type NegateInt struct {
	Token token.Token
	Value Expression
	Typ   typesystem.Type
}

func (n *NegateInt) expressionNode()          {}
func (n *NegateInt) GetToken() token.Token    { return n.Token }
func (n *NegateInt) GetType() typesystem.Type { return n.Typ }

// NegateBool is boolean negation.
type NegateBool struct {
	Token token.Token
	Value Expression
	Typ   typesystem.Type
}

func (n *NegateBool) expressionNode()          {}
func (n *NegateBool) GetToken() token.Token    { return n.Token }
func (n *NegateBool) GetType() typesystem.Type { return n.Typ }

// Case is a pattern match over one or more subjects.
type Case struct {
	Token    token.Token
	Subjects []Expression
	Clauses  []*Clause
	Typ      typesystem.Type
}

func (c *Case) expressionNode()          {}
func (c *Case) GetToken() token.Token    { return c.Token }
func (c *Case) GetType() typesystem.Type { return c.Typ }

// Clause is one arm of a case expression. Patterns holds one pattern per
// subject; Alternatives holds further `|` pattern lists.
type Clause struct {
	Token        token.Token
	Patterns     []Pattern
	Alternatives [][]Pattern
	Guard        Expression
	Body         Expression
}

func (c *Clause) GetToken() token.Token { return c.Token }

// Block is a `{ ... }` sequence of statements.
type Block struct {
	Token      token.Token
	Statements []Statement
	Typ        typesystem.Type
}

func (b *Block) expressionNode()          {}
func (b *Block) GetToken() token.Token    { return b.Token }
func (b *Block) GetType() typesystem.Type { return b.Typ }

// Pipeline is `first |> step1 |> step2 ...`. Each step is applied to the
// previous value as its first argument, followed by the step's own Args.
type Pipeline struct {
	Token token.Token
	First Expression
	Steps []*PipeStep
	Typ   typesystem.Type
}

func (p *Pipeline) expressionNode()          {}
func (p *Pipeline) GetToken() token.Token    { return p.Token }
func (p *Pipeline) GetType() typesystem.Type { return p.Typ }

// PipeStep is one stage of a pipeline.
type PipeStep struct {
	Fun  Expression
	Args []Expression
}

// RecordAccess is `record.label`. Index is the field position in the
// single-variant case and -1 when the variants disagree.
type RecordAccess struct {
	Token  token.Token
	Record Expression
	Label  string
	Index  int
	Typ    typesystem.Type
}

func (ra *RecordAccess) expressionNode()          {}
func (ra *RecordAccess) GetToken() token.Token    { return ra.Token }
func (ra *RecordAccess) GetType() typesystem.Type { return ra.Typ }

// RecordUpdate is `Ctor(..record, label: value)`.
type RecordUpdate struct {
	Token       token.Token
	Constructor *ConstructorInfo
	Record      Expression
	Fields      []*FieldValue
	Typ         typesystem.Type
}

func (ru *RecordUpdate) expressionNode()          {}
func (ru *RecordUpdate) GetToken() token.Token    { return ru.Token }
func (ru *RecordUpdate) GetType() typesystem.Type { return ru.Typ }

// FieldValue is a labelled value.
type FieldValue struct {
	Label string
	Value Expression
}

// Todo is a `todo` expression; it traps when evaluated.
type Todo struct {
	Token   token.Token
	Message Expression
	Typ     typesystem.Type
}

func (t *Todo) expressionNode()          {}
func (t *Todo) GetToken() token.Token    { return t.Token }
func (t *Todo) GetType() typesystem.Type { return t.Typ }

// Panic is a `panic` expression; it traps when evaluated.
type Panic struct {
	Token   token.Token
	Message Expression
	Typ     typesystem.Type
}

func (p *Panic) expressionNode()          {}
func (p *Panic) GetToken() token.Token    { return p.Token }
func (p *Panic) GetType() typesystem.Type { return p.Typ }

// ExpressionStatement evaluates an expression for its value or effect.
type ExpressionStatement struct {
	Token token.Token
	Value Expression
}

func (es *ExpressionStatement) statementNode()        {}
func (es *ExpressionStatement) GetToken() token.Token { return es.Token }

// AssignKind distinguishes plain from assert-bound lets.
type AssignKind int

const (
	LetPlain AssignKind = iota
	LetAssert
)

// Assignment is `let P = e` or `let assert P = e`.
type Assignment struct {
	Token   token.Token
	Kind    AssignKind
	Pattern Pattern
	Value   Expression
}

func (a *Assignment) statementNode()        {}
func (a *Assignment) GetToken() token.Token { return a.Token }
