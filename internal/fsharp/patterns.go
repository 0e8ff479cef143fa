package fsharp

import (
	"fmt"
	"strings"

	"github.com/funvibe/fsgen/internal/ast"
	"github.com/funvibe/fsgen/internal/config"
	"github.com/funvibe/fsgen/internal/diagnostics"
)

func (u *Unit) pattern(p ast.Pattern) string {
	switch p := p.(type) {
	case *ast.IntPattern:
		return fmt.Sprintf("%dL", p.Value)
	case *ast.FloatPattern:
		return floatLiteral(p.Value)
	case *ast.StringPattern:
		return u.stringLiteral(p.Value, p)
	case *ast.VarPattern:
		return Ident(p.Name)
	case *ast.DiscardPattern:
		return "_"
	case *ast.AssignPattern:
		return "(" + u.pattern(p.Pattern) + " as " + Ident(p.Name) + ")"
	case *ast.ListPattern:
		return u.listPattern(p)
	case *ast.TuplePattern:
		return u.tuplePattern(p)
	case *ast.StringPrefixPattern:
		return u.prefixPattern(p)
	case *ast.ConstructorPattern:
		return u.constructorPattern(p)
	case *ast.ConstantPattern:
		return u.constPattern(p.Value)
	case *ast.BitArrayPattern:
		return u.bitPattern(p)
	case nil:
		u.failf(diagnostics.ErrL006, u.module.Token, "missing pattern in %s", u.fnName)
		return "_"
	}
	u.failf(diagnostics.ErrL006, p.GetToken(), "unsupported pattern %T", p)
	return "_"
}

// patternArg renders p where it is nested in another pattern, with
// parentheses around anything that is not a single token.
func (u *Unit) patternArg(p ast.Pattern) string {
	text := u.pattern(p)
	switch p := p.(type) {
	case *ast.ListPattern:
		if p.Tail != nil {
			return "(" + text + ")"
		}
	case *ast.ConstructorPattern, *ast.StringPrefixPattern, *ast.BitArrayPattern, *ast.ConstantPattern:
		if strings.Contains(text, " ") && !strings.HasPrefix(text, "(") && !strings.HasPrefix(text, "{") {
			return "(" + text + ")"
		}
	case *ast.IntPattern, *ast.FloatPattern:
		if strings.HasPrefix(text, "-") {
			return "(" + text + ")"
		}
	}
	return text
}

func (u *Unit) listPattern(p *ast.ListPattern) string {
	if p.Tail == nil {
		elems := make([]string, len(p.Elements))
		for i, e := range p.Elements {
			elems[i] = u.patternArg(e)
		}
		return "[" + strings.Join(elems, "; ") + "]"
	}
	parts := make([]string, 0, len(p.Elements)+1)
	for _, e := range p.Elements {
		parts = append(parts, u.patternArg(e))
	}
	parts = append(parts, u.patternArg(p.Tail))
	return strings.Join(parts, " :: ")
}

func (u *Unit) tuplePattern(p *ast.TuplePattern) string {
	if len(p.Elements) == 0 {
		return "()"
	}
	if len(p.Elements) == 1 {
		u.failf(diagnostics.ErrL006, p.Token, "one element tuples have no F# form")
		return "_"
	}
	elems := make([]string, len(p.Elements))
	for i, e := range p.Elements {
		elems[i] = u.patternArg(e)
	}
	return "(" + strings.Join(elems, ", ") + ")"
}

// prefixPattern matches a string prefix through one of the shared active
// patterns; a miss falls through to the next arm.
func (u *Unit) prefixPattern(p *ast.StringPrefixPattern) string {
	entry, err := u.prefixes.Intern(p.Prefix)
	if err != nil {
		u.fail(diagnostics.NewError(diagnostics.ErrL005, p.Token, err.Error()))
		return "_"
	}
	rest := "_"
	if p.Rest != "" {
		rest = Ident(p.Rest)
	}
	if p.PrefixName == "" {
		u.prefixes.needPrefix = true
		return config.StringPatternPrefix + " " + entry.Literal.Quoted() + " " + rest
	}
	u.prefixes.needParts = true
	return config.StringPatternParts + " " + entry.Literal.Quoted() + " (" + Ident(p.PrefixName) + ", " + rest + ")"
}

func (u *Unit) constructorPattern(p *ast.ConstructorPattern) string {
	ci := p.Constructor
	if ci == nil {
		u.failf(diagnostics.ErrL006, p.Token, "constructor pattern without constructor info")
		return "_"
	}
	switch {
	case isPreludeCtor(ci, config.BoolTypeName):
		if ci.Name == config.TrueCtorName {
			return "true"
		}
		return "false"
	case isPreludeCtor(ci, config.NilTypeName):
		return "()"
	}

	slots, ok := u.patternSlots(p)
	if !ok {
		return "_"
	}

	switch {
	case isPreludeCtor(ci, config.ResultTypeName):
		if len(slots) != 1 {
			u.failf(diagnostics.ErrL006, p.Token, "%s pattern with %d arguments", ci.Name, len(slots))
			return "_"
		}
		return ci.Name + " " + slots[0]
	case ci.IsRecord():
		var fields []string
		for i, s := range slots {
			if s == "_" {
				continue
			}
			label := Ident(ci.Labels[i])
			if len(fields) == 0 {
				label = u.qualify(ci.TypeModule, ci.TypeName) + "." + label
			}
			fields = append(fields, label+" = "+s)
		}
		if len(fields) == 0 {
			return "_"
		}
		return "{ " + strings.Join(fields, "; ") + " }"
	case len(slots) == 0:
		return u.caseName(ci)
	}
	return u.caseName(ci) + " (" + strings.Join(slots, ", ") + ")"
}

// patternSlots places the arguments of a constructor pattern at their
// field positions. Labelled arguments go to their label, the others fill
// positions left to right; fields a spread skips are wildcards.
func (u *Unit) patternSlots(p *ast.ConstructorPattern) ([]string, bool) {
	ci := p.Constructor
	n := len(ci.Labels)
	if len(p.Args) > n || (!p.Spread && len(p.Args) != n) {
		u.failf(diagnostics.ErrL006, p.Token, "constructor %s has %d fields, pattern has %d arguments", ci.Name, n, len(p.Args))
		return nil, false
	}
	slots := make([]string, n)
	next := 0
	for _, a := range p.Args {
		i := next
		if a.Label != "" {
			i = indexOf(ci.Labels, a.Label)
			if i < 0 {
				u.failf(diagnostics.ErrL001, p.Token, "variant %s has no field %s", ci.Name, a.Label)
				return nil, false
			}
		} else {
			for next < n && slots[next] != "" {
				next++
			}
			i = next
		}
		if i >= n || slots[i] != "" {
			u.failf(diagnostics.ErrL006, p.Token, "constructor %s pattern fills field %d twice", ci.Name, i)
			return nil, false
		}
		slots[i] = u.patternArg(a.Value)
	}
	for i := range slots {
		if slots[i] == "" {
			slots[i] = "_"
		}
	}
	return slots, true
}

// constPattern inlines the value of a module constant as a pattern.
func (u *Unit) constPattern(e ast.Expression) string {
	switch e := e.(type) {
	case *ast.IntLiteral, *ast.FloatLiteral, *ast.StringLiteral:
		return u.expr(e)
	case *ast.NegateInt:
		if lit, ok := e.Value.(*ast.IntLiteral); ok {
			return fmt.Sprintf("%dL", -lit.Value)
		}
	case *ast.Tuple:
		elems := make([]string, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = u.constPattern(el)
		}
		return "(" + strings.Join(elems, ", ") + ")"
	case *ast.List:
		if e.Tail == nil {
			elems := make([]string, len(e.Elements))
			for i, el := range e.Elements {
				elems[i] = u.constPattern(el)
			}
			return "[" + strings.Join(elems, "; ") + "]"
		}
	case *ast.Var:
		if e.Kind == ast.ConstructorRef && e.Constructor != nil && len(e.Constructor.Labels) == 0 {
			return u.constructorValue(e.Constructor)
		}
	case *ast.Call:
		v, ok := e.Fun.(*ast.Var)
		if ok && v.Kind == ast.ConstructorRef && v.Constructor != nil {
			args := make([]*ast.PatternArg, len(e.Args))
			for i, a := range e.Args {
				args[i] = &ast.PatternArg{Value: &ast.ConstantPattern{Token: e.Token, Value: a}}
			}
			return u.constructorPattern(&ast.ConstructorPattern{Token: e.Token, Constructor: v.Constructor, Args: args})
		}
	}
	if e == nil {
		u.failf(diagnostics.ErrL006, u.module.Token, "constant pattern without a value")
		return "_"
	}
	u.failf(diagnostics.ErrL006, e.GetToken(), "constant %T cannot be used as a pattern", e)
	return "_"
}

// boundNames lists the variables a pattern binds, in first-seen order.
func boundNames(p ast.Pattern) []string {
	var names []string
	seen := map[string]bool{}
	add := func(n string) {
		if n != "" && !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	ast.Walk(p, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.VarPattern:
			add(n.Name)
		case *ast.AssignPattern:
			add(n.Name)
		case *ast.StringPrefixPattern:
			add(n.PrefixName)
			add(n.Rest)
		case *ast.ConstantPattern:
			return false
		}
		return true
	})
	return names
}
