package irfile

import (
	"gopkg.in/yaml.v3"

	"github.com/funvibe/fsgen/internal/ast"
	"github.com/funvibe/fsgen/internal/config"
)

var varKinds = map[string]ast.VarKind{
	"":            ast.LocalVar,
	"local":       ast.LocalVar,
	"function":    ast.ModuleFn,
	"constant":    ast.ModuleConst,
	"constructor": ast.ConstructorRef,
}

var binOperators = map[ast.BinOperator]bool{}

func init() {
	for _, op := range []ast.BinOperator{
		ast.OpAnd, ast.OpOr, ast.OpEq, ast.OpNotEq,
		ast.OpLtInt, ast.OpLtEqInt, ast.OpGtInt, ast.OpGtEqInt,
		ast.OpLtFloat, ast.OpLtEqFloat, ast.OpGtFloat, ast.OpGtEqFloat,
		ast.OpAddInt, ast.OpAddFloat, ast.OpSubInt, ast.OpSubFloat,
		ast.OpMultInt, ast.OpMultFloat, ast.OpDivInt, ast.OpDivFloat,
		ast.OpRemainder, ast.OpConcatenate,
	} {
		binOperators[op] = true
	}
}

func (d *decoder) statements(nodes []*yaml.Node) []ast.Statement {
	var out []ast.Statement
	for _, n := range nodes {
		if s := d.statement(n); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (d *decoder) statement(n *yaml.Node) ast.Statement {
	if n.Kind == yaml.MappingNode {
		o := d.object(n, "statement")
		if o.str("kind") == "let" {
			a := &ast.Assignment{
				Token:   d.tok(o),
				Pattern: d.pattern(o.require("pattern")),
				Value:   d.expr(o.require("value")),
			}
			if o.bool("assert") {
				a.Kind = ast.LetAssert
			}
			return a
		}
	}
	e := d.expr(n)
	if e == nil {
		return nil
	}
	return &ast.ExpressionStatement{Token: e.GetToken(), Value: e}
}

func (d *decoder) exprs(nodes []*yaml.Node) []ast.Expression {
	var out []ast.Expression
	for _, n := range nodes {
		out = append(out, d.expr(n))
	}
	return out
}

// expr decodes an expression node. Plain integer and float scalars stand
// for literals of the prelude types.
func (d *decoder) expr(n *yaml.Node) ast.Expression {
	if n == nil {
		return nil
	}
	if n.Kind == yaml.ScalarNode {
		tok := d.tok(&object{node: n})
		switch n.Tag {
		case "!!int":
			if v, ok := parseInt(n.Value); ok {
				return &ast.IntLiteral{Token: tok, Value: v, Typ: intType}
			}
		case "!!float":
			return &ast.FloatLiteral{Token: tok, Value: n.Value, Typ: prelude(config.FloatTypeName)}
		}
		d.unexpected(n, "expression")
		return nil
	}

	o := d.object(n, "expression")
	tok := d.tok(o)
	typ := o.typ("type")
	switch kind := o.reqStr("kind"); kind {
	case "int":
		return &ast.IntLiteral{Token: tok, Value: o.int("value", 0), Typ: typeOr(typ, config.IntTypeName)}
	case "float":
		return &ast.FloatLiteral{Token: tok, Value: o.scalar("value"), Typ: typeOr(typ, config.FloatTypeName)}
	case "string":
		return &ast.StringLiteral{Token: tok, Value: o.str("value"), Typ: typeOr(typ, config.StringTypeName)}
	case "var":
		ref := o.str("ref")
		vk, ok := varKinds[ref]
		if !ok {
			d.failf(o.get("ref"), "unknown reference kind %q", ref)
		}
		v := &ast.Var{Token: tok, Name: o.reqStr("name"), Module: o.str("module"), Kind: vk, Typ: typ}
		if vk == ast.ConstructorRef {
			v.Constructor = d.constructorInfo(o.require("constructor"))
		}
		return v
	case "call":
		return &ast.Call{Token: tok, Fun: d.expr(o.require("fun")), Args: d.exprs(o.seq("args")), Typ: typ}
	case "fn":
		return &ast.Fn{Token: tok, Params: d.params(o.seq("params")), Body: d.statements(o.seq("body")), Typ: typ}
	case "list":
		l := &ast.List{Token: tok, Elements: d.exprs(o.seq("elements")), Typ: typ}
		if tail := o.get("tail"); tail != nil {
			l.Tail = d.expr(tail)
		}
		return l
	case "tuple":
		return &ast.Tuple{Token: tok, Elements: d.exprs(o.seq("elements")), Typ: typ}
	case "tuple_index":
		return &ast.TupleIndex{Token: tok, Tuple: d.expr(o.require("tuple")), Index: int(o.int("index", 0)), Typ: typ}
	case "binop":
		op := ast.BinOperator(o.reqStr("op"))
		if !binOperators[op] && o.has("op") {
			d.failf(o.get("op"), "unknown operator %q", op)
		}
		return &ast.BinOp{Token: tok, Op: op, Left: d.expr(o.require("left")), Right: d.expr(o.require("right")), Typ: typ}
	case "negate_int":
		return &ast.NegateInt{Token: tok, Value: d.expr(o.require("value")), Typ: typeOr(typ, config.IntTypeName)}
	case "negate_bool":
		return &ast.NegateBool{Token: tok, Value: d.expr(o.require("value")), Typ: typeOr(typ, config.BoolTypeName)}
	case "case":
		c := &ast.Case{Token: tok, Subjects: d.exprs(o.seq("subjects")), Typ: typ}
		for _, cn := range o.seq("clauses") {
			c.Clauses = append(c.Clauses, d.clause(cn))
		}
		return c
	case "block":
		return &ast.Block{Token: tok, Statements: d.statements(o.seq("statements")), Typ: typ}
	case "pipeline":
		p := &ast.Pipeline{Token: tok, First: d.expr(o.require("first")), Typ: typ}
		for _, sn := range o.seq("steps") {
			s := d.object(sn, "pipeline step")
			p.Steps = append(p.Steps, &ast.PipeStep{Fun: d.expr(s.require("fun")), Args: d.exprs(s.seq("args"))})
		}
		return p
	case "record_access":
		return &ast.RecordAccess{
			Token:  tok,
			Record: d.expr(o.require("record")),
			Label:  o.reqStr("label"),
			Index:  int(o.int("index", -1)),
			Typ:    typ,
		}
	case "record_update":
		u := &ast.RecordUpdate{
			Token:       tok,
			Constructor: d.constructorInfo(o.require("constructor")),
			Record:      d.expr(o.require("record")),
			Typ:         typ,
		}
		for _, fn := range o.seq("fields") {
			f := d.object(fn, "field")
			u.Fields = append(u.Fields, &ast.FieldValue{Label: f.reqStr("label"), Value: d.expr(f.require("value"))})
		}
		return u
	case "bit_array":
		b := &ast.BitArray{Token: tok, Typ: typeOr(typ, config.BitArrayTypeName)}
		for _, sn := range o.seq("segments") {
			b.Segments = append(b.Segments, d.segment(sn))
		}
		return b
	case "todo":
		return &ast.Todo{Token: tok, Message: d.optExpr(o.get("message")), Typ: typ}
	case "panic":
		return &ast.Panic{Token: tok, Message: d.optExpr(o.get("message")), Typ: typ}
	case "":
		return nil
	default:
		d.failf(n, "unknown expression kind %q", kind)
		return nil
	}
}

func (d *decoder) optExpr(n *yaml.Node) ast.Expression {
	if n == nil {
		return nil
	}
	return d.expr(n)
}

func (d *decoder) clause(n *yaml.Node) *ast.Clause {
	o := d.object(n, "clause")
	c := &ast.Clause{
		Token:    d.tok(o),
		Patterns: d.patterns(o.seq("patterns")),
		Body:     d.expr(o.require("body")),
	}
	for _, alt := range o.seq("alternatives") {
		if alt.Kind != yaml.SequenceNode {
			d.failf(alt, "alternative must be a sequence of patterns")
			continue
		}
		c.Alternatives = append(c.Alternatives, d.patterns(alt.Content))
	}
	if g := o.get("guard"); g != nil {
		c.Guard = d.expr(g)
	}
	return c
}

// scalar returns the raw text of a scalar field, keeping float spellings
// such as 1.0e3 as written.
func (o *object) scalar(key string) string {
	n := o.require(key)
	if n == nil {
		return ""
	}
	if n.Kind != yaml.ScalarNode {
		o.d.failf(n, "%s must be a scalar", key)
		return ""
	}
	return n.Value
}
