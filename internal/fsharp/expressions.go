package fsharp

import (
	"fmt"
	"strings"

	"github.com/funvibe/fsgen/internal/ast"
	"github.com/funvibe/fsgen/internal/config"
	"github.com/funvibe/fsgen/internal/diagnostics"
	"github.com/funvibe/fsgen/internal/lexer"
	"github.com/funvibe/fsgen/internal/prettyprinter"
	"github.com/funvibe/fsgen/internal/typesystem"
)

// Expressions render to fragments: possibly multi-line text whose lines
// are indented relative to the line the fragment starts on. A fragment
// embedded in a larger expression goes through prettyprinter.Paren when it
// is not atomic.

// binOps maps operators with a direct F# spelling.
var binOps = map[ast.BinOperator]string{
	ast.OpAnd:         "&&",
	ast.OpOr:          "||",
	ast.OpEq:          "=",
	ast.OpNotEq:       "<>",
	ast.OpLtInt:       "<",
	ast.OpLtEqInt:     "<=",
	ast.OpGtInt:       ">",
	ast.OpGtEqInt:     ">=",
	ast.OpLtFloat:     "<",
	ast.OpLtEqFloat:   "<=",
	ast.OpGtFloat:     ">",
	ast.OpGtEqFloat:   ">=",
	ast.OpAddInt:      "+",
	ast.OpAddFloat:    "+",
	ast.OpSubInt:      "-",
	ast.OpSubFloat:    "-",
	ast.OpMultInt:     "*",
	ast.OpMultFloat:   "*",
	ast.OpConcatenate: "+",
}

// Division returns zero on a zero divisor; the prelude implements it.
var divOps = map[ast.BinOperator]string{
	ast.OpDivInt:    "divideInt",
	ast.OpDivFloat:  "divideFloat",
	ast.OpRemainder: "remainderInt",
}

func (u *Unit) expr(e ast.Expression) string {
	switch e := e.(type) {
	case *ast.IntLiteral:
		return fmt.Sprintf("%dL", e.Value)
	case *ast.FloatLiteral:
		return floatLiteral(e.Value)
	case *ast.StringLiteral:
		return u.stringLiteral(e.Value, e)
	case *ast.Var:
		return u.variable(e)
	case *ast.Call:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = u.expr(a)
		}
		return u.apply(e.Fun, args)
	case *ast.Fn:
		return u.fn(e)
	case *ast.List:
		return u.list(e)
	case *ast.Tuple:
		return u.tuple(e)
	case *ast.TupleIndex:
		return u.tupleIndex(e)
	case *ast.BinOp:
		return u.binOp(e)
	case *ast.NegateInt:
		inner := u.operand(e.Value)
		if strings.HasPrefix(inner, "-") {
			return "-(" + inner + ")"
		}
		return "-" + inner
	case *ast.NegateBool:
		return "not " + u.operand(e.Value)
	case *ast.Case:
		return u.caseExpr(e)
	case *ast.Block:
		return u.statements(e.Statements)
	case *ast.Pipeline:
		return u.pipeline(e)
	case *ast.RecordAccess:
		return u.operand(e.Record) + "." + Ident(e.Label)
	case *ast.RecordUpdate:
		return u.recordUpdate(e)
	case *ast.BitArray:
		return u.bitArray(e)
	case *ast.Todo:
		return u.trap(e.Message, "Not implemented")
	case *ast.Panic:
		return u.trap(e.Message, "Panic encountered")
	case nil:
		u.failf(diagnostics.ErrL006, u.module.Token, "missing expression in %s", u.fnName)
		return "()"
	}
	u.failf(diagnostics.ErrL006, e.GetToken(), "unsupported expression %T", e)
	return "()"
}

func floatLiteral(v string) string {
	if !strings.ContainsAny(v, ".eE") {
		return v + ".0"
	}
	return v
}

func (u *Unit) stringLiteral(raw string, n ast.Node) string {
	lit, err := lexer.Canonicalize(raw)
	if err != nil {
		u.fail(diagnostics.NewError(diagnostics.ErrL005, n.GetToken(), err.Error()))
		return `""`
	}
	return lit.Quoted()
}

// atomic reports whether the fragment of e can be used as an operand or a
// receiver without parentheses.
func atomic(e ast.Expression, text string) bool {
	if prettyprinter.Multiline(text) {
		return false
	}
	switch e := e.(type) {
	case *ast.IntLiteral:
		return e.Value >= 0
	case *ast.FloatLiteral:
		return !strings.HasPrefix(e.Value, "-")
	case *ast.StringLiteral, *ast.Var, *ast.Tuple, *ast.TupleIndex, *ast.RecordAccess:
		return true
	case *ast.List:
		return e.Tail == nil
	case *ast.Block:
		if len(e.Statements) == 1 {
			if es, ok := e.Statements[0].(*ast.ExpressionStatement); ok {
				return atomic(es.Value, text)
			}
		}
	case *ast.Call, *ast.RecordUpdate:
		return strings.HasPrefix(text, "{")
	}
	return false
}

// operand renders e as the argument of a prefix operator or the receiver
// of a field read.
func (u *Unit) operand(e ast.Expression) string {
	text := u.expr(e)
	if atomic(e, text) {
		return text
	}
	return prettyprinter.Paren(text)
}

// element renders a tuple, list or constructor element; lambdas would
// swallow the separators that follow them.
func element(text string) string {
	if prettyprinter.Multiline(text) || strings.HasPrefix(text, "fun ") {
		return prettyprinter.Paren(text)
	}
	return text
}

// arg renders a curried call argument.
func arg(text string) string {
	return prettyprinter.Paren(text)
}

func (u *Unit) variable(v *ast.Var) string {
	if v.Kind == ast.ConstructorRef {
		if v.Constructor == nil {
			u.failf(diagnostics.ErrL006, v.Token, "constructor reference %s without constructor info", v.Name)
			return Ident(v.Name)
		}
		return u.constructorValue(v.Constructor)
	}
	if v.Kind == ast.LocalVar {
		return Ident(v.Name)
	}
	return u.qualify(v.Module, v.Name)
}

func isPreludeCtor(ci *ast.ConstructorInfo, typeName string) bool {
	return ci.TypeModule == "" && ci.TypeName == typeName
}

// constructorValue renders a constructor used as a value rather than
// called.
func (u *Unit) constructorValue(ci *ast.ConstructorInfo) string {
	switch {
	case isPreludeCtor(ci, config.BoolTypeName):
		if ci.Name == config.TrueCtorName {
			return "true"
		}
		return "false"
	case isPreludeCtor(ci, config.NilTypeName):
		return "()"
	case isPreludeCtor(ci, config.ResultTypeName):
		return ci.Name
	case len(ci.Labels) == 0:
		return u.caseName(ci)
	}
	params := make([]string, len(ci.Labels))
	for i := range params {
		params[i] = fmt.Sprintf("%sarg%d", config.TempPrefix, i)
	}
	return "(fun " + strings.Join(params, " ") + " -> " + u.construct(ci, params) + ")"
}

func (u *Unit) caseName(ci *ast.ConstructorInfo) string {
	return u.qualify(ci.TypeModule, ci.TypeName) + "." + Ident(ci.Name)
}

// construct builds a variant from rendered arguments.
func (u *Unit) construct(ci *ast.ConstructorInfo, args []string) string {
	switch {
	case isPreludeCtor(ci, config.ResultTypeName):
		if len(args) == 1 {
			return ci.Name + " " + arg(args[0])
		}
	case ci.IsRecord():
		if len(args) != len(ci.Labels) {
			break
		}
		fields := make([]string, len(args))
		for i, a := range args {
			label := Ident(ci.Labels[i])
			if i == 0 {
				label = u.qualify(ci.TypeModule, ci.TypeName) + "." + label
			}
			fields[i] = label + " = " + element(a)
		}
		return "{ " + strings.Join(fields, "; ") + " }"
	default:
		if len(args) == 0 {
			return u.caseName(ci)
		}
		elems := make([]string, len(args))
		for i, a := range args {
			elems[i] = element(a)
		}
		return u.caseName(ci) + " (" + strings.Join(elems, ", ") + ")"
	}
	u.failf(diagnostics.ErrL006, u.module.Token, "constructor %s applied to %d arguments", ci.Name, len(args))
	return "()"
}

// apply calls fun with rendered arguments: `f (a) (b)`, or `f ()` without
// arguments.
func (u *Unit) apply(fun ast.Expression, args []string) string {
	if v, ok := fun.(*ast.Var); ok && v.Kind == ast.ConstructorRef && v.Constructor != nil {
		return u.construct(v.Constructor, args)
	}
	var callee string
	switch f := fun.(type) {
	case *ast.Var:
		callee = u.variable(f)
	case *ast.Call:
		callee = u.expr(f)
		if prettyprinter.Multiline(callee) {
			callee = prettyprinter.Paren(callee)
		}
	default:
		callee = prettyprinter.Paren(u.expr(fun))
	}
	if len(args) == 0 {
		return callee + " ()"
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = arg(a)
	}
	return callee + " " + strings.Join(parts, " ")
}

func (u *Unit) params(ps []*ast.Param) string {
	if len(ps) == 0 {
		return "()"
	}
	out := make([]string, len(ps))
	for i, p := range ps {
		name := "_"
		if p.Name != "" {
			name = Ident(p.Name)
		}
		out[i] = "(" + name + ": " + u.typeName(p.Type) + ")"
	}
	return strings.Join(out, " ")
}

func (u *Unit) fn(f *ast.Fn) string {
	head := "fun " + u.params(f.Params) + " ->"
	body := u.statements(f.Body)
	if prettyprinter.Multiline(body) {
		return head + "\n" + prettyprinter.Indent(body)
	}
	return head + " " + body
}

func (u *Unit) list(l *ast.List) string {
	if l.Tail != nil {
		parts := make([]string, 0, len(l.Elements)+1)
		for _, e := range l.Elements {
			parts = append(parts, u.binOperand(e, "::", false))
		}
		parts = append(parts, u.binOperand(l.Tail, "::", true))
		return strings.Join(parts, " :: ")
	}
	if len(l.Elements) == 0 {
		return "[]"
	}
	elems := make([]string, len(l.Elements))
	multi := false
	for i, e := range l.Elements {
		elems[i] = element(u.expr(e))
		multi = multi || prettyprinter.Multiline(elems[i])
	}
	flat := "[" + strings.Join(elems, "; ") + "]"
	if !multi && u.out.Fits(flat) {
		return flat
	}
	return "[\n" + prettyprinter.Indent(strings.Join(elems, "\n")) + "\n]"
}

func (u *Unit) tuple(t *ast.Tuple) string {
	if len(t.Elements) == 0 {
		return "()"
	}
	if len(t.Elements) == 1 {
		u.failf(diagnostics.ErrL006, t.Token, "one element tuples have no F# form")
		return "()"
	}
	elems := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		elems[i] = element(u.expr(e))
	}
	return "(" + strings.Join(elems, ", ") + ")"
}

// tupleIndex reads one element by destructuring the whole tuple.
func (u *Unit) tupleIndex(ti *ast.TupleIndex) string {
	arity := typesystem.TupleArity(ti.Tuple.GetType())
	if arity < 2 || ti.Index < 0 || ti.Index >= arity {
		u.failf(diagnostics.ErrL006, ti.Token, "index %d into a tuple of type %v", ti.Index, ti.Tuple.GetType())
		return "()"
	}
	item := config.TempPrefix + "item"
	slots := make([]string, arity)
	for i := range slots {
		slots[i] = "_"
	}
	slots[ti.Index] = item
	pattern := "(" + strings.Join(slots, ", ") + ")"

	value := u.expr(ti.Tuple)
	if prettyprinter.Multiline(value) {
		return "let " + pattern + " =\n" + prettyprinter.Indent(value) + "\n" + item
	}
	return "(let " + pattern + " = " + value + " in " + item + ")"
}

// binOperand renders an operand of the F# operator op.
func (u *Unit) binOperand(e ast.Expression, op string, isRight bool) string {
	if b, ok := e.(*ast.BinOp); ok {
		text := u.expr(b)
		if child, ok := binOps[b.Op]; ok && !prettyprinter.Multiline(text) && !prettyprinter.NeedsParens(op, child, isRight) {
			return text
		}
		if _, ok := divOps[b.Op]; ok && !prettyprinter.Multiline(text) {
			return text
		}
		return prettyprinter.Paren(text)
	}
	text := u.expr(e)
	switch e.(type) {
	case *ast.Call, *ast.NegateBool:
		if !prettyprinter.Multiline(text) && !strings.HasPrefix(text, "fun ") {
			return text
		}
	}
	if atomic(e, text) {
		return text
	}
	return prettyprinter.Paren(text)
}

func (u *Unit) binOp(b *ast.BinOp) string {
	if fn, ok := divOps[b.Op]; ok {
		return fn + " " + arg(u.expr(b.Left)) + " " + arg(u.expr(b.Right))
	}
	op, ok := binOps[b.Op]
	if !ok {
		u.failf(diagnostics.ErrL006, b.Token, "unknown operator %q", b.Op)
		return "()"
	}
	return u.binOperand(b.Left, op, false) + " " + op + " " + u.binOperand(b.Right, op, true)
}

// pipeline lowers `x |> f |> g(a)`. Steps that name a function nest into
// `g (f (x)) (a)`. A step whose callee is computed binds the value piped so
// far first, so the callee is evaluated after the value it receives.
func (u *Unit) pipeline(p *ast.Pipeline) string {
	var lines []string
	cur := u.expr(p.First)
	for _, s := range p.Steps {
		if _, named := s.Fun.(*ast.Var); !named {
			name := u.temp("pipe")
			lines = append(lines, binding("let "+name, cur))
			cur = name
		}
		args := make([]string, 0, len(s.Args)+1)
		args = append(args, cur)
		for _, a := range s.Args {
			args = append(args, u.expr(a))
		}
		cur = u.apply(s.Fun, args)
	}
	return strings.Join(append(lines, cur), "\n")
}

func (u *Unit) recordUpdate(ru *ast.RecordUpdate) string {
	ci := ru.Constructor
	if ci == nil {
		if ct := u.localType(ru.GetType()); ct != nil && len(ct.Constructors) == 1 {
			ci = constructorInfo(ct, ct.Constructors[0])
		}
	}
	if ci == nil {
		u.failf(diagnostics.ErrL006, ru.Token, "record update of %v without constructor info", ru.GetType())
		return "()"
	}

	record := u.expr(ru.Record)
	var prefix string
	if !atomic(ru.Record, record) {
		name := u.temp("record")
		prefix = "let " + name + " =\n" + prettyprinter.Indent(record) + "\n"
		if !prettyprinter.Multiline(record) {
			prefix = "let " + name + " = " + record + "\n"
		}
		record = name
	}

	if ci.IsRecord() {
		fields := make([]string, len(ru.Fields))
		for i, f := range ru.Fields {
			fields[i] = Ident(f.Label) + " = " + element(u.expr(f.Value))
		}
		return prefix + "{ " + record + " with " + strings.Join(fields, "; ") + " }"
	}

	// Single variant union: rebuild the variant with the updated fields.
	slots := make([]string, len(ci.Labels))
	args := make([]string, len(ci.Labels))
	for i := range slots {
		slots[i] = fmt.Sprintf("%sf%d", config.TempPrefix, i)
		args[i] = slots[i]
	}
	for _, f := range ru.Fields {
		i := indexOf(ci.Labels, f.Label)
		if i < 0 {
			u.failf(diagnostics.ErrL001, ru.Token, "variant %s has no field %s", ci.Name, f.Label)
			return "()"
		}
		args[i] = u.expr(f.Value)
	}
	pattern := u.caseName(ci)
	if len(slots) > 0 {
		pattern += " (" + strings.Join(slots, ", ") + ")"
	}
	body := u.construct(ci, args)
	arm := "| " + pattern + " -> " + body
	if prettyprinter.Multiline(body) {
		arm = "| " + pattern + " ->\n" + prettyprinter.Indent(body)
	}
	return prefix + "match " + record + " with\n" + arm
}

func indexOf(labels []string, label string) int {
	for i, l := range labels {
		if l == label {
			return i
		}
	}
	return -1
}

func constructorInfo(ct *ast.CustomType, c *ast.Constructor) *ast.ConstructorInfo {
	labels := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		labels[i] = f.Label
	}
	return &ast.ConstructorInfo{TypeName: ct.Name, Name: c.Name, Labels: labels, Variants: len(ct.Constructors)}
}

func (u *Unit) trap(message ast.Expression, fallback string) string {
	if message == nil {
		return "failwith " + lexer.Quote(fallback)
	}
	return "failwith " + arg(u.expr(message))
}

func (u *Unit) caseExpr(c *ast.Case) string {
	if len(c.Subjects) == 0 {
		u.failf(diagnostics.ErrL006, c.Token, "case without subjects")
		return "()"
	}
	var prefix []string
	subjects := make([]string, len(c.Subjects))
	for i, s := range c.Subjects {
		text := u.expr(s)
		if prettyprinter.Multiline(text) {
			name := u.temp("subject")
			prefix = append(prefix, "let "+name+" =\n"+prettyprinter.Indent(text))
			text = name
		}
		subjects[i] = element(text)
	}
	subject := subjects[0]
	if len(subjects) > 1 {
		subject = "(" + strings.Join(subjects, ", ") + ")"
	}

	lines := append(prefix, "match "+subject+" with")
	for _, cl := range c.Clauses {
		lines = append(lines, u.clause(cl, len(c.Subjects)))
	}
	return strings.Join(lines, "\n")
}

func (u *Unit) clause(cl *ast.Clause, subjects int) string {
	alts := make([]string, 0, 1+len(cl.Alternatives))
	for _, pats := range append([][]ast.Pattern{cl.Patterns}, cl.Alternatives...) {
		if len(pats) != subjects {
			u.failf(diagnostics.ErrL006, cl.Token, "clause has %d patterns for %d subjects", len(pats), subjects)
			return ""
		}
		if subjects == 1 {
			alts = append(alts, u.pattern(pats[0]))
			continue
		}
		parts := make([]string, len(pats))
		for i, p := range pats {
			parts[i] = u.patternArg(p)
		}
		alts = append(alts, "("+strings.Join(parts, ", ")+")")
	}
	if len(alts) > 1 {
		for i, a := range alts {
			if strings.Contains(a, " ") && !strings.HasPrefix(a, "(") {
				alts[i] = "(" + a + ")"
			}
		}
	}
	head := "| " + strings.Join(alts, " | ")
	if cl.Guard != nil {
		guard := u.expr(cl.Guard)
		if prettyprinter.Multiline(guard) {
			guard = prettyprinter.Paren(guard)
		}
		head += " when " + guard
	}
	body := u.expr(cl.Body)
	if prettyprinter.Multiline(body) {
		return head + " ->\n" + prettyprinter.Indent(body)
	}
	return head + " -> " + body
}
