package fsharp

import (
	"fmt"
	"strings"

	"github.com/funvibe/fsgen/internal/ast"
	"github.com/funvibe/fsgen/internal/diagnostics"
	"github.com/funvibe/fsgen/internal/lexer"
	"github.com/funvibe/fsgen/internal/prettyprinter"
	"github.com/funvibe/fsgen/internal/typesystem"
)

// statements renders a sequence whose value is the value of its last
// statement. A trailing assignment evaluates to the assigned value.
func (u *Unit) statements(stmts []ast.Statement) string {
	if len(stmts) == 0 {
		return "()"
	}
	lines := make([]string, 0, len(stmts)+1)
	for i, s := range stmts {
		last := i == len(stmts)-1
		switch s := s.(type) {
		case *ast.ExpressionStatement:
			text := u.expr(s.Value)
			switch {
			case last:
			case s.Value != nil && typesystem.IsNil(s.Value.GetType()):
				if prettyprinter.Multiline(text) {
					text = prettyprinter.Paren(text)
				}
			default:
				text = "ignore " + prettyprinter.Paren(text)
			}
			lines = append(lines, text)
		case *ast.Assignment:
			lines = append(lines, u.assignment(s, last)...)
		default:
			u.failf(diagnostics.ErrL006, s.GetToken(), "unsupported statement %T", s)
		}
	}
	return strings.Join(lines, "\n")
}

func binding(head, value string) string {
	if prettyprinter.Multiline(value) {
		return head + " =\n" + prettyprinter.Indent(value)
	}
	return head + " = " + value
}

func (u *Unit) assignment(a *ast.Assignment, last bool) []string {
	value := u.expr(a.Value)
	var lines []string

	// The value of a trailing let is the whole assigned value.
	result := ""
	if last {
		if v, ok := a.Pattern.(*ast.VarPattern); ok {
			result = Ident(v.Name)
		} else {
			result = u.temp("value")
			lines = append(lines, binding("let "+result, value))
			value = result
		}
	}

	if a.Kind == ast.LetAssert {
		lines = append(lines, u.assertBinding(a, value))
	} else {
		lines = append(lines, binding("let "+u.letPattern(a.Pattern), value))
	}
	if result != "" {
		lines = append(lines, result)
	}
	return lines
}

// letPattern renders the left side of a plain let.
func (u *Unit) letPattern(p ast.Pattern) string {
	switch p.(type) {
	case *ast.VarPattern, *ast.DiscardPattern, *ast.TuplePattern:
		return u.pattern(p)
	}
	text := u.pattern(p)
	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
		return text
	}
	return "(" + text + ")"
}

// assertBinding lowers `let assert P = e` to a match that yields the
// variables P binds and traps when e does not match.
func (u *Unit) assertBinding(a *ast.Assignment, value string) string {
	names := boundNames(a.Pattern)
	for i, n := range names {
		names[i] = Ident(n)
	}
	binders := "()"
	switch len(names) {
	case 0:
	case 1:
		binders = names[0]
	default:
		binders = "(" + strings.Join(names, ", ") + ")"
	}

	var body []string
	subject := value
	if prettyprinter.Multiline(value) {
		subject = u.temp("subject")
		body = append(body, "let "+subject+" =\n"+prettyprinter.Indent(value))
	}
	body = append(body,
		"match "+subject+" with",
		"| "+u.pattern(a.Pattern)+" -> "+binders,
		"| _ -> failwith "+lexer.Quote(u.assertMessage(a)),
	)
	return "let " + binders + " =\n" + prettyprinter.Indent(strings.Join(body, "\n"))
}

func (u *Unit) assertMessage(a *ast.Assignment) string {
	msg := u.opts.AssertMessage + ": " + u.module.Name
	if u.fnName != "" {
		msg += "." + u.fnName
	}
	if line := a.Token.Line; line > 0 {
		msg += fmt.Sprintf(" line %d", line)
	}
	return msg
}
